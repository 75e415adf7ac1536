package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forPelevin/capgen/internal/domain/captions"
	"github.com/forPelevin/capgen/internal/domain/reframe"
	"github.com/forPelevin/capgen/internal/jobs"
	"github.com/forPelevin/capgen/internal/pipeline"
	"github.com/forPelevin/capgen/internal/ports"
	"github.com/forPelevin/capgen/internal/types"
)

// RenderRequest starts a caption render. When Words are supplied (an edited
// transcript from a client), transcription is skipped and the captions are
// compiled from them directly; otherwise the full pipeline runs on the input.
type RenderRequest struct {
	Input  string        `json:"input"`
	Words  []types.Word  `json:"words,omitempty"`
	Groups []types.Group `json:"word_groups,omitempty"`
	// Style is layered over the defaults, so a sparse object keeps
	// dynamic_mode/uppercase/bold and the rest of the default style.
	Style      json.RawMessage `json:"style,omitempty"`
	CutSilence bool            `json:"cut_silence,omitempty"`
	LLMGroups  bool            `json:"llm_groups,omitempty"`
	Burn       bool            `json:"burn,omitempty"`
}

// ReframeRequest renders a vertical split-screen: the top pane takes 40% of
// the output height, the bottom pane the rest. Pans are percentages in
// [-100, 100].
type ReframeRequest struct {
	Input      string  `json:"input"`
	TopZoom    float64 `json:"top_zoom"`
	TopPanX    float64 `json:"top_pan_x"`
	TopPanY    float64 `json:"top_pan_y"`
	BottomZoom float64 `json:"bottom_zoom"`
	BottomPanX float64 `json:"bottom_pan_x"`
	BottomPanY float64 `json:"bottom_pan_y"`
	OutWidth   int     `json:"out_width"`
	OutHeight  int     `json:"out_height"`
}

type RenderResult struct {
	Subtitles  string `json:"subtitles"`
	Video      string `json:"video,omitempty"`
	WordCount  int    `json:"word_count"`
	GroupCount int    `json:"group_count"`
}

type ReframeResult struct {
	Video     string `json:"video"`
	OutWidth  int    `json:"out_width"`
	OutHeight int    `json:"out_height"`
}

func inputPath(kind string, body []byte) (string, error) {
	var req struct {
		Input string `json:"input"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return "", fmt.Errorf("invalid %s request: %w", kind, err)
	}
	if req.Input == "" {
		return "", errors.New("input is required")
	}
	return req.Input, nil
}

// RunnerDeps carries what the job runners need: the media toolchain, the
// pipeline defaults from the daemon config, and where outputs land.
type RunnerDeps struct {
	Video  ports.VideoTool
	Base   pipeline.Config
	OutDir string
}

func RenderRunner(d RunnerDeps) jobs.Runner {
	return func(ctx context.Context, job jobs.Job) (json.RawMessage, error) {
		var req RenderRequest
		if err := json.Unmarshal(job.Payload, &req); err != nil {
			return nil, fmt.Errorf("decode render request: %w", err)
		}

		style := captions.DefaultStyle()
		if len(req.Style) > 0 {
			if err := json.Unmarshal(req.Style, &style); err != nil {
				return nil, fmt.Errorf("decode style: %w", err)
			}
			style = style.Normalized()
		}

		if len(req.Words) > 0 {
			return renderFromWords(ctx, d, job.ID, req, style)
		}

		cfg := d.Base
		cfg.InputVideo = req.Input
		cfg.OutDir = d.OutDir
		cfg.Style = style
		cfg.CutSilence = req.CutSilence
		cfg.UseLLMGroups = req.LLMGroups
		cfg.BurnIn = req.Burn
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		m, err := pipeline.Run(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return json.Marshal(RenderResult{
			Subtitles:  m.Subtitles,
			Video:      m.Video,
			WordCount:  m.WordCount,
			GroupCount: m.GroupCount,
		})
	}
}

// renderFromWords compiles captions from a client-edited transcript without
// touching the ASR.
func renderFromWords(ctx context.Context, d RunnerDeps, jobID string, req RenderRequest, style captions.Style) (json.RawMessage, error) {
	width, height, err := d.Video.ProbeDimensions(ctx, req.Input)
	if err != nil {
		return nil, err
	}

	groups := req.Groups
	if len(groups) == 0 {
		groups = captions.BuildGroups(req.Words, nil, nil, style.WordsPerGroup)
	}

	doc := captions.GenerateASS(req.Words, groups, width, height, style, nil)
	if err := os.MkdirAll(d.OutDir, 0o755); err != nil {
		return nil, err
	}
	assPath := filepath.Join(d.OutDir, jobID+"_captions.ass")
	if err := os.WriteFile(assPath, []byte(doc), 0o644); err != nil {
		return nil, err
	}

	res := RenderResult{
		Subtitles:  assPath,
		WordCount:  len(req.Words),
		GroupCount: len(groups),
	}
	if req.Burn {
		outPath := filepath.Join(d.OutDir, fmt.Sprintf("%s_captioned_%s.mp4", videoStem(req.Input), jobID))
		if err := d.Video.BurnCaptions(ctx, req.Input, assPath, outPath); err != nil {
			return nil, fmt.Errorf("burn captions: %w", err)
		}
		res.Video = outPath
	}
	return json.Marshal(res)
}

func ReframeRunner(video ports.VideoTool, outDir string) jobs.Runner {
	return func(ctx context.Context, job jobs.Job) (json.RawMessage, error) {
		var req ReframeRequest
		if err := json.Unmarshal(job.Payload, &req); err != nil {
			return nil, fmt.Errorf("decode reframe request: %w", err)
		}
		if req.OutWidth <= 0 {
			req.OutWidth = 1080
		}
		if req.OutHeight <= 0 {
			req.OutHeight = 1920
		}

		srcW, srcH, err := video.ProbeDimensions(ctx, req.Input)
		if err != nil {
			return nil, err
		}

		topH := req.OutHeight * 40 / 100
		bottomH := req.OutHeight - topH
		top := reframe.ComputeCrop(srcW, srcH, req.OutWidth, topH, req.TopZoom, req.TopPanX, req.TopPanY)
		bottom := reframe.ComputeCrop(srcW, srcH, req.OutWidth, bottomH, req.BottomZoom, req.BottomPanX, req.BottomPanY)

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, err
		}
		outPath := filepath.Join(outDir, fmt.Sprintf("%s_reframed_%s.mp4", videoStem(req.Input), job.ID))
		if err := video.RenderReframe(ctx, req.Input, top, bottom, req.OutWidth, topH, bottomH, outPath); err != nil {
			return nil, fmt.Errorf("render reframe: %w", err)
		}
		return json.Marshal(ReframeResult{Video: outPath, OutWidth: req.OutWidth, OutHeight: req.OutHeight})
	}
}

func videoStem(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}
