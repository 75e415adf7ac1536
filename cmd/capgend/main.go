package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/forPelevin/capgen/internal/jobs"
	"github.com/forPelevin/capgen/internal/pipeline"
	"github.com/forPelevin/capgen/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/capgen/internal/server"
)

func main() {
	_ = godotenv.Load()

	var (
		addr       = flag.String("addr", ":8077", "listen address")
		configPath = flag.String("config", "", "TOML config file")
		outDir     = flag.String("out", "rendered", "output directory")
		dataDir    = flag.String("data", ".cache", "data directory for the job store")
		workers    = flag.Int("workers", 2, "concurrent render workers")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	base := pipeline.Config{
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   os.Getenv("OPENROUTER_MODEL"),
		OpenRouterBaseURL: os.Getenv("OPENROUTER_BASE_URL"),
		CacheDir:          *dataDir,
		Logf: func(format string, args ...any) {
			log.Info("pipeline", "msg", fmt.Sprintf(format, args...))
		},
	}
	if *configPath != "" {
		fc, err := pipeline.LoadConfigFile(*configPath)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		fc.Apply(&base)
	}
	if base.OpenRouterBaseURL == "" {
		base.OpenRouterBaseURL = "https://openrouter.ai"
	}
	if base.FFmpegPath == "" {
		base.FFmpegPath = "ffmpeg"
	}
	if base.FFprobePath == "" {
		base.FFprobePath = "ffprobe"
	}
	if base.WhisperBin == "" {
		base.WhisperBin = ".cache/bin/whisper.cpp"
	}
	if base.WhisperModel == "" {
		base.WhisperModel = ".cache/models/ggml-base.bin"
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Error("create data dir", "error", err)
		os.Exit(1)
	}
	store, err := jobs.OpenStore(filepath.Join(*dataDir, "jobs.db"))
	if err != nil {
		log.Error("open job store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	video := ffmpeg.New(base.FFmpegPath, base.FFprobePath)
	deps := server.RunnerDeps{Video: video, Base: base, OutDir: *outDir}

	pool := jobs.NewPool(store, 64, log)
	pool.Register(jobs.KindRender, server.RenderRunner(deps))
	pool.Register(jobs.KindReframe, server.ReframeRunner(video, *outDir))
	pool.Start(ctx, *workers)

	app := server.New(pool, store, log).App()
	go func() {
		log.Info("listening", "addr", *addr)
		if err := app.Listen(*addr); err != nil {
			log.Error("serve", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
	pool.Shutdown()
}
