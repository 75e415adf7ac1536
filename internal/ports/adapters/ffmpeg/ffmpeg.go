package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/forPelevin/capgen/internal/domain/reframe"
	"github.com/forPelevin/capgen/internal/domain/silence"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inVideo, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, inVideo string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inVideo,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

func (a *Adapter) ProbeDimensions(ctx context.Context, inVideo string) (int, int, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		inVideo,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe dimensions: %w\n%s", err, string(b))
	}
	parts := strings.Split(strings.TrimSpace(string(b)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("ffprobe dimensions: unexpected output %q", strings.TrimSpace(string(b)))
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parse width %q: %w", parts[0], err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parse height %q: %w", parts[1], err)
	}
	return w, h, nil
}

func (a *Adapter) BurnCaptions(ctx context.Context, inVideo, assPath, outVideo string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-vf", "subtitles="+escapeFilterPath(assPath),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		outVideo,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg burn captions: %w\n%s", err, string(b))
	}
	return nil
}

// CutSegments uses the concat demuxer with inpoint/outpoint and -c copy, so
// the kept pieces are stitched without re-encoding.
func (a *Adapter) CutSegments(ctx context.Context, inVideo string, kept []silence.Segment, outVideo string) error {
	if len(kept) == 0 {
		return fmt.Errorf("ffmpeg cut segments: no segments to keep")
	}

	var list strings.Builder
	escaped := strings.ReplaceAll(inVideo, "'", "'\\''")
	for _, seg := range kept {
		fmt.Fprintf(&list, "file '%s'\n", escaped)
		fmt.Fprintf(&list, "inpoint %s\n", fmtSeconds(seg.Start))
		fmt.Fprintf(&list, "outpoint %s\n", fmtSeconds(seg.End))
	}

	listPath := filepath.Join(filepath.Dir(outVideo), ".concat-"+filepath.Base(outVideo)+".txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return err
	}
	defer os.Remove(listPath)

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
		outVideo,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg cut segments: %w\n%s", err, string(b))
	}
	return nil
}

// RenderReframe crops the source twice, scales each region to its section
// size, and stacks them vertically.
func (a *Adapter) RenderReframe(ctx context.Context, inVideo string, top, bottom reframe.Crop, outW, topH, bottomH int, outVideo string) error {
	filter := fmt.Sprintf(
		"[0:v]crop=%d:%d:%d:%d,scale=%d:%d[top];"+
			"[0:v]crop=%d:%d:%d:%d,scale=%d:%d[bot];"+
			"[top][bot]vstack=inputs=2[out]",
		top.W, top.H, top.X, top.Y, outW, topH,
		bottom.W, bottom.H, bottom.X, bottom.Y, outW, bottomH,
	)
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-filter_complex", filter,
		"-map", "[out]",
		"-map", "0:a?",
		"-c:v", "libx264",
		"-crf", "18",
		"-preset", "medium",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		outVideo,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg reframe: %w\n%s", err, string(b))
	}
	return nil
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}
