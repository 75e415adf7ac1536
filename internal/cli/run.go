package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/capgen/internal/domain/captions"
	"github.com/forPelevin/capgen/internal/pipeline"
)

func run(cmd *cobra.Command, input string) error {
	outDir, _ := cmd.Flags().GetString("out")
	configPath, _ := cmd.Flags().GetString("config")
	stylePath, _ := cmd.Flags().GetString("style")
	noSilenceCut, _ := cmd.Flags().GetBool("no-silence-cut")
	llmGroups, _ := cmd.Flags().GetBool("llm-groups")
	burn, _ := cmd.Flags().GetBool("burn")
	minSilenceMS, _ := cmd.Flags().GetInt("min-silence-ms")
	paddingMS, _ := cmd.Flags().GetInt("padding-ms")

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()

	cfg := pipeline.Config{
		InputVideo: absIn,
		OutDir:     outDir,
		Style:      captions.DefaultStyle(),
		Logf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		},

		CutSilence: !noSilenceCut,
		MinSilence: time.Duration(minSilenceMS) * time.Millisecond,
		Padding:    time.Duration(paddingMS) * time.Millisecond,

		UseLLMGroups: llmGroups,
		BurnIn:       burn,

		OpenRouterModel:   getenvDefault("OPENROUTER_MODEL", ""),
		OpenRouterBaseURL: getenvDefault("OPENROUTER_BASE_URL", "https://openrouter.ai"),
	}

	if configPath != "" {
		fc, err := pipeline.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		fc.Apply(&cfg)
		if stylePath == "" {
			stylePath = fc.StylePreset
		}
	}
	applyToolDefaults(&cfg)

	if stylePath != "" {
		s, err := pipeline.LoadStylePreset(stylePath)
		if err != nil {
			return fmt.Errorf("style: %w", err)
		}
		cfg.Style = s
	}

	if llmGroups {
		cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
		if cfg.OpenRouterAPIKey == "" {
			return errors.New("OPENROUTER_API_KEY is required for --llm-groups (set it in .env)")
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	_, err = pipeline.Run(ctx, cfg)
	return err
}

// applyToolDefaults fills tool paths left unset by flags and config file.
func applyToolDefaults(cfg *pipeline.Config) {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.WhisperBin == "" {
		cfg.WhisperBin = ".cache/bin/whisper.cpp"
	}
	if cfg.WhisperModel == "" {
		cfg.WhisperModel = ".cache/models/ggml-base.bin"
	}
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
