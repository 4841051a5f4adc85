// Command reelforged runs the video production orchestration server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reelforge/reelforge/asset"
	"github.com/reelforge/reelforge/asset/minio"
	"github.com/reelforge/reelforge/assemble"
	"github.com/reelforge/reelforge/config"
	"github.com/reelforge/reelforge/fanout"
	"github.com/reelforge/reelforge/logging"
	"github.com/reelforge/reelforge/orchestrator"
	"github.com/reelforge/reelforge/provider"
	anthropicprovider "github.com/reelforge/reelforge/provider/anthropic"
	"github.com/reelforge/reelforge/provider/gemini"
	openaiprovider "github.com/reelforge/reelforge/provider/openai"
	"github.com/reelforge/reelforge/provider/voiceworker"
	"github.com/reelforge/reelforge/server"
	"github.com/reelforge/reelforge/session"
	"github.com/reelforge/reelforge/tool"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(&logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store asset.Store
	if cfg.MinIO.Endpoint != "" {
		store, err = minio.New(minio.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("minio: %w", err)
		}
	} else {
		logger.Warn("asset.store.in_memory", "reason", "no minio endpoint configured")
		store = asset.NewInMemoryStore()
	}

	gem, err := gemini.New(ctx, func(o *gemini.Options) {
		o.APIKey = cfg.Provider.GeminiAPIKey
	})
	if err != nil {
		return fmt.Errorf("gemini: %w", err)
	}

	var chat provider.Conversational = gem
	if cfg.Provider.Chat == "anthropic" {
		chat = anthropicprovider.New(func(o *anthropicprovider.Options) {
			o.APIKey = cfg.Provider.ClaudeAPIKey
		})
	}

	var images provider.ImageGenerator = gem
	if cfg.Provider.Images == "openai" {
		images = openaiprovider.New(func(o *openaiprovider.Options) {
			o.APIKey = cfg.Provider.OpenAIAPIKey
		})
	}

	voice := voiceworker.New(func(o *voiceworker.Options) {
		o.Addr = cfg.VoiceWorker.Addr
	})

	env := tool.Env{
		Images: images,
		Video:  gem,
		Voice:  voice,
		Script: gem,
		Assets: store,
		Batch:  fanout.NewRunner(cfg.Fanout.Workers, logger),
		Stitcher: assemble.NewStitcher(store, func(o *assemble.Options) {
			o.Logger = logger
			o.Concat = &assemble.FFmpegConcatenator{Binary: cfg.FFmpeg.Binary}
		}),
		Logger: logger,
	}
	dispatcher := tool.NewDispatcher(env)

	orch := orchestrator.New(chat, dispatcher, store, func(o *orchestrator.Options) {
		o.Logger = logger
		if cfg.Loop.MaxIterations > 0 {
			o.MaxIterations = cfg.Loop.MaxIterations
		}
	})

	srv := server.New(orch, dispatcher, session.NewInMemoryStore(), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.Server.Addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
