package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forPelevin/capgen/internal/domain/captions"
	"github.com/forPelevin/capgen/internal/domain/silence"
	"github.com/forPelevin/capgen/internal/ports"
	"github.com/forPelevin/capgen/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/capgen/internal/types"
)

type Deps struct {
	Video   ports.VideoTool
	ASR     ports.ASR
	Grouper ports.GroupSuggester // optional; nil disables semantic grouping
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	InputVideo string
	OutDir     string
	CacheDir   string

	Style  captions.Style
	Width  int // 0 = probe from the video
	Height int

	CutSilence bool
	MinSilence time.Duration
	Padding    time.Duration

	UseLLMGroups bool
	BurnIn       bool

	Logf func(format string, args ...any)
}

type Result struct {
	Manifest types.Manifest
	Words    []types.Word
	Groups   []types.Group
}

// Run drives the full caption pipeline: transcribe, optionally cut silences
// and remap timestamps, group, compile the ASS document, optionally burn it
// into the video.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	for _, dir := range []string{in.OutDir, in.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, err
		}
	}

	wav := filepath.Join(in.CacheDir, "audio.wav")
	if err := u.d.Video.ExtractAudioMono16k(ctx, in.InputVideo, wav); err != nil {
		return Result{}, err
	}

	tr, err := u.d.ASR.Transcribe(ctx, wav, in.CacheDir)
	if err != nil {
		return Result{}, err
	}
	words := whispercpp.FlattenWords(tr)
	logf("transcribed %d words", len(words))

	workVideo := in.InputVideo
	var removed float64
	if in.CutSilence && len(words) > 0 {
		duration, err := u.d.Video.ProbeDuration(ctx, in.InputVideo)
		if err != nil {
			return Result{}, err
		}
		kept := silence.Clamp(silence.DetectSpeech(words, in.MinSilence, in.Padding), duration)
		cutPath := filepath.Join(in.OutDir, baseName(in.InputVideo)+"_cut.mp4")
		if err := u.d.Video.CutSegments(ctx, in.InputVideo, kept, cutPath); err != nil {
			return Result{}, err
		}
		words = silence.RemapWords(words, kept)
		removed = silence.Removed(kept, duration)
		workVideo = cutPath
		logf("silence cut: %.1fs removed, %d words remain", removed, len(words))
	}

	var suggestions []types.GroupSuggestion
	if in.UseLLMGroups && u.d.Grouper != nil && len(words) > 0 {
		suggestions, err = u.d.Grouper.SuggestGroups(ctx, words)
		if err != nil {
			// The oracle is best-effort; deterministic grouping covers us.
			logf("group suggestion failed, falling back: %v", err)
			suggestions = nil
		}
	}
	groups := captions.BuildGroups(words, suggestions, nil, in.Style.WordsPerGroup)
	logf("built %d groups", len(groups))

	width, height := in.Width, in.Height
	if width <= 0 || height <= 0 {
		width, height, err = u.d.Video.ProbeDimensions(ctx, workVideo)
		if err != nil {
			return Result{}, err
		}
	}

	doc := captions.GenerateASS(words, groups, width, height, in.Style, nil)
	assPath := filepath.Join(in.OutDir, baseName(in.InputVideo)+".ass")
	if err := writeFile(assPath, []byte(doc)); err != nil {
		return Result{}, err
	}
	logf("subtitles written: %s", assPath)

	m := types.Manifest{
		Input:           in.InputVideo,
		Subtitles:       assPath,
		WordCount:       len(words),
		GroupCount:      len(groups),
		SilenceRemovedS: removed,
	}

	if in.BurnIn {
		burnPath := filepath.Join(in.OutDir, baseName(in.InputVideo)+"_captioned.mp4")
		if err := u.d.Video.BurnCaptions(ctx, workVideo, assPath, burnPath); err != nil {
			return Result{}, fmt.Errorf("burn captions: %w", err)
		}
		m.Video = burnPath
		logf("captioned video written: %s", burnPath)
	} else if workVideo != in.InputVideo {
		m.Video = workVideo
	}

	return Result{Manifest: m, Words: words, Groups: groups}, nil
}

func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
