package ports

import (
	"context"

	"github.com/forPelevin/capgen/internal/domain/reframe"
	"github.com/forPelevin/capgen/internal/domain/silence"
	"github.com/forPelevin/capgen/internal/types"
)

// VideoTool wraps the external media toolchain. All operations may be slow
// and honor context cancellation.
type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, inVideo, outWav string) error
	ProbeDuration(ctx context.Context, inVideo string) (float64, error)
	ProbeDimensions(ctx context.Context, inVideo string) (width, height int, err error)
	// BurnCaptions renders inVideo with the ASS file burned in.
	BurnCaptions(ctx context.Context, inVideo, assPath, outVideo string) error
	// CutSegments concatenates the kept segments without re-encoding.
	CutSegments(ctx context.Context, inVideo string, kept []silence.Segment, outVideo string) error
	// RenderReframe stacks two independently cropped regions into a vertical
	// canvas of outW x (topH + bottomH).
	RenderReframe(ctx context.Context, inVideo string, top, bottom reframe.Crop, outW, topH, bottomH int, outVideo string) error
}

// ASR produces word-level timestamps from an audio file.
type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error)
}

// GroupSuggester asks an external oracle (an LLM) for semantic caption
// groups. Its output is untrusted: callers must validate every suggestion
// and fall back to deterministic grouping on any failure.
type GroupSuggester interface {
	SuggestGroups(ctx context.Context, words []types.Word) ([]types.GroupSuggestion, error)
}
