package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aizithy/audio-extractor-cloud/internal/credentials"
	"github.com/aizithy/audio-extractor-cloud/internal/extract"
	"github.com/aizithy/audio-extractor-cloud/internal/history"
	"github.com/aizithy/audio-extractor-cloud/internal/platform"
	"github.com/aizithy/audio-extractor-cloud/internal/server"
	"github.com/aizithy/audio-extractor-cloud/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Serve builds the full extraction stack and runs the HTTP service until
// interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config
	if port := cmd.Int("port"); port != 0 {
		cfg.Server.Port = port
	}
	if dir := cmd.String("dir"); dir != "" {
		cfg.Storage.Dir = dir
	}

	if err := os.MkdirAll(cfg.Storage.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	engine := extract.NewCLI(cfg.Extractor.Binary, r.logger)
	if err := engine.CheckBinary(); err != nil {
		r.logger.Warn("extraction binary not found, jobs will fail", "binary", cfg.Extractor.Binary, "err", err)
	}

	selector := platform.NewSelector()
	// Cookie material lives in a subdirectory the retention sweep leaves alone.
	resolver := credentials.NewResolver(filepath.Join(cfg.Storage.Dir, "cookies"), cfg.Credentials, r.httpClient, r.logger)
	builder := extract.NewBuilder(selector, resolver, extract.BuilderOpts{
		OutputDir:      cfg.Storage.Dir,
		ProxyURL:       cfg.Extractor.ProxyURL,
		GeoCountry:     cfg.Extractor.GeoCountry,
		ClientOverride: cfg.Extractor.ClientOverride,
	})
	executor := extract.NewExecutor(engine, cfg.Storage.Dir, r.logger)

	store := tasks.NewStore()

	var archive *history.Archive
	var archiver tasks.Archiver
	var stats server.HistoryStats
	if cfg.History.Enabled {
		var err error
		archive, err = history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("failed to open history archive: %w", err)
		}
		defer archive.Close()
		archiver = archive
		stats = archive
		r.logger.Info("history archive enabled", "path", cfg.History.Path)
	}

	scheduler := tasks.NewScheduler(tasks.SchedulerOpts{
		Store:     store,
		Builder:   builder,
		Executor:  executor,
		Selector:  selector,
		Archive:   archiver,
		Logger:    r.logger,
		QueueSize: cfg.Scheduler.QueueSize,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	scheduler.Start(runCtx, cfg.Scheduler.Workers)
	defer scheduler.Stop()

	maxAge := time.Duration(cfg.Storage.MaxAgeHours) * time.Hour
	sweeper := tasks.NewSweeper(store, cfg.Storage.Dir, r.logger)
	sweeper.Sweep(maxAge, maxAge)

	api := server.NewAPI(server.APIOpts{
		Store:      store,
		Scheduler:  scheduler,
		Sweeper:    sweeper,
		Selector:   selector,
		OutputDir:  cfg.Storage.Dir,
		FileMaxAge: maxAge,
		TaskMaxAge: maxAge,
		History:    stats,
		Version:    version,
		Logger:     r.logger,
	})

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger), server.CORS(), server.RateLimit(cfg.Server.RateLimit))
	api.Register(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("service listening", "addr", srv.Addr, "workers", cfg.Scheduler.Workers, "dir", cfg.Storage.Dir)
		errCh <- srv.ListenAndServe()
	}()

	sigCtx, stop := signal.NotifyContext(runCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
