package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/forPelevin/capgen/internal/domain/captions"
	"github.com/forPelevin/capgen/internal/ports"
	"github.com/forPelevin/capgen/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/capgen/internal/ports/adapters/openrouter"
	"github.com/forPelevin/capgen/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/capgen/internal/types"
	"github.com/forPelevin/capgen/internal/usecase"
)

type Config struct {
	InputVideo string
	OutDir     string
	Style      captions.Style
	Logf       func(format string, args ...any)

	CutSilence bool
	MinSilence time.Duration
	Padding    time.Duration

	UseLLMGroups bool
	BurnIn       bool

	// CacheDir is the base directory for local artifacts (audio, transcripts,
	// etc.). If empty, defaults to ".cache".
	CacheDir string

	FFmpegPath  string
	FFprobePath string

	WhisperBin   string
	WhisperModel string

	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string
}

func (c Config) Validate() error {
	if c.InputVideo == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputVideo); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if c.WhisperModel == "" {
		return fmt.Errorf("whisper model path is required")
	}
	if c.CutSilence {
		if c.MinSilence <= 0 {
			return fmt.Errorf("min silence must be > 0")
		}
		if c.Padding < 0 {
			return fmt.Errorf("padding must be >= 0")
		}
	}
	if c.UseLLMGroups && c.OpenRouterAPIKey == "" {
		return fmt.Errorf("llm grouping requires an OpenRouter API key")
	}
	return openrouter.ValidateBaseURL(
		c.OpenRouterBaseURL,
		c.OpenRouterAllowedHosts,
	)
}

// FileConfig is the on-disk TOML config. Only fields left empty on the
// in-memory Config are taken from the file, so flags win over the file.
type FileConfig struct {
	OutDir            string `toml:"out_dir"`
	CacheDir          string `toml:"cache_dir"`
	FFmpegPath        string `toml:"ffmpeg_path"`
	FFprobePath       string `toml:"ffprobe_path"`
	WhisperBin        string `toml:"whisper_bin"`
	WhisperModel      string `toml:"whisper_model"`
	OpenRouterModel   string `toml:"openrouter_model"`
	OpenRouterBaseURL string `toml:"openrouter_base_url"`
	MinSilenceMS      int    `toml:"min_silence_ms"`
	PaddingMS         int    `toml:"padding_ms"`
	StylePreset       string `toml:"style_preset"`
}

func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// Apply fills unset Config fields from the file.
func (f FileConfig) Apply(c *Config) {
	if c.OutDir == "" {
		c.OutDir = f.OutDir
	}
	if c.CacheDir == "" {
		c.CacheDir = f.CacheDir
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = f.FFmpegPath
	}
	if c.FFprobePath == "" {
		c.FFprobePath = f.FFprobePath
	}
	if c.WhisperBin == "" {
		c.WhisperBin = f.WhisperBin
	}
	if c.WhisperModel == "" {
		c.WhisperModel = f.WhisperModel
	}
	if c.OpenRouterModel == "" {
		c.OpenRouterModel = f.OpenRouterModel
	}
	if c.OpenRouterBaseURL == "" {
		c.OpenRouterBaseURL = f.OpenRouterBaseURL
	}
	if c.MinSilence == 0 && f.MinSilenceMS > 0 {
		c.MinSilence = time.Duration(f.MinSilenceMS) * time.Millisecond
	}
	if c.Padding == 0 && f.PaddingMS > 0 {
		c.Padding = time.Duration(f.PaddingMS) * time.Millisecond
	}
}

// LoadStylePreset reads a YAML style preset layered over the defaults.
func LoadStylePreset(path string) (captions.Style, error) {
	s := captions.DefaultStyle()
	b, err := os.ReadFile(path)
	if err != nil {
		return captions.Style{}, err
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return captions.Style{}, fmt.Errorf("parse style preset %s: %w", path, err)
	}
	return s.Normalized(), nil
}

func Run(ctx context.Context, cfg Config) (types.Manifest, error) {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	// adapters
	v := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	asr := whispercpp.New(cfg.WhisperBin, cfg.WhisperModel)

	deps := usecase.Deps{
		Video: v,
		ASR:   asr,
	}
	if cfg.UseLLMGroups {
		deps.Grouper = openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL)
	}

	uc := usecase.New(deps)

	jobID := hash(cfg.InputVideo)
	baseCache := cfg.CacheDir
	if baseCache == "" {
		baseCache = ".cache"
	}
	cacheDir := filepath.Join(baseCache, "runs", jobID)
	logf("preparing workspace")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return types.Manifest{}, err
	}
	logf("cache: %s", cacheDir)

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, cfg.InputVideo, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return types.Manifest{}, err
	}
	logf("output run dir: %s", runOutDir)

	res, err := uc.Run(ctx, usecase.Input{
		InputVideo:   cfg.InputVideo,
		OutDir:       runOutDir,
		CacheDir:     cacheDir,
		Style:        cfg.Style.Normalized(),
		CutSilence:   cfg.CutSilence,
		MinSilence:   cfg.MinSilence,
		Padding:      cfg.Padding,
		UseLLMGroups: cfg.UseLLMGroups,
		BurnIn:       cfg.BurnIn,
		Logf:         logf,
	})
	if err != nil {
		return types.Manifest{}, err
	}

	b, err := json.MarshalIndent(res.Manifest, "", "  ")
	if err != nil {
		return types.Manifest{}, fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(runOutDir, "manifest.json")
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return types.Manifest{}, err
	}
	logf("manifest written (%d words, %d groups): %s",
		res.Manifest.WordCount, res.Manifest.GroupCount, manifestPath)
	return res.Manifest, nil
}

func buildRunOutDir(outRoot, inputVideo string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(inputVideo), filepath.Ext(inputVideo))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", inputVideo, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.GroupSuggester = (*openrouter.Adapter)(nil)
