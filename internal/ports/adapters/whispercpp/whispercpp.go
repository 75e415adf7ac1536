package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/forPelevin/capgen/internal/types"
)

type Adapter struct {
	bin   string
	model string
}

func New(binPath, modelPath string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath}
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error) {
	outPrefix := filepath.Join(cacheDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
		"-owts",
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}

	// whisper.cpp names the word field "word"; our transcript uses "text".
	var raw struct {
		Segments []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
			Words []struct {
				Start float64 `json:"start"`
				End   float64 `json:"end"`
				Word  string  `json:"word"`
			} `json:"words,omitempty"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(jb, &raw); err != nil {
		return types.Transcript{}, err
	}

	var tr types.Transcript
	for _, s := range raw.Segments {
		seg := types.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		}
		for _, w := range s.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" {
				continue
			}
			seg.Words = append(seg.Words, types.Word{Text: text, Start: w.Start, End: w.End})
		}
		tr.Segments = append(tr.Segments, seg)
	}
	return tr, nil
}

// FlattenWords collapses segment words into the flat ordered word list the
// caption compiler consumes.
func FlattenWords(tr types.Transcript) []types.Word {
	var out []types.Word
	for _, s := range tr.Segments {
		out = append(out, s.Words...)
	}
	return out
}
