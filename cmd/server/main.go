package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/avivbaron/uri-analyzer/internal/analysis"
	"github.com/avivbaron/uri-analyzer/internal/buildinfo"
	"github.com/avivbaron/uri-analyzer/internal/cache"
	"github.com/avivbaron/uri-analyzer/internal/config"
	"github.com/avivbaron/uri-analyzer/internal/httpserver"
	"github.com/avivbaron/uri-analyzer/internal/logs"
	"github.com/avivbaron/uri-analyzer/internal/ratelimit"
)

func loadDotenv() {
	// Load .env if it exists, but don't fail if it's missing.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("warning: couldn't load .env: %v", err)
		}
	}
}

func main() {
	loadDotenv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logs.NewWithOptions(logs.Options{
		Level:          cfg.LogLevel,
		Output:         cfg.LogOutput,
		Component:      "server",
		FilePath:       cfg.LogFilePath,
		FileMaxSizeMB:  cfg.LogFileMaxSize,
		FileMaxBackups: cfg.LogFileMaxBackups,
		FileMaxAgeDays: cfg.LogFileMaxAge,
		FileCompress:   cfg.LogFileCompress,
	})
	bi := buildinfo.Get()
	logger.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("starting")

	limiter := ratelimit.New(cfg.RatePerSec, cfg.RateBurst)
	defer limiter.Close()

	c, closeCache, err := cache.NewFromConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.CacheBackend).Msg("cache init failed")
	}
	defer closeCache()

	svc := analysis.NewService(analysis.NewAnalyzer(), c, cfg.CacheTTL, logger)

	srv := httpserver.New(":"+cfg.Port, logger, limiter, httpserver.Deps{
		Cache:        c,
		Visits:       svc,
		Records:      svc.Analyzer().Len,
		DefaultLevel: cfg.DefaultLevel,
		MaxBodyBytes: cfg.MaxBodyBytes,
		CORSOrigins:  cfg.CORSOrigins,
	}, cfg.MetricsEnabled)

	// os.Interrupt is Ctrl+C, SIGTERM comes from Docker/k8s.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server error")
	}
	logger.Info().Int("records", svc.Analyzer().Len()).Msg("server stopped")
}
