package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	"github.com/charmbracelet/log"
)

// Result is the outcome of a successful extraction run.
type Result struct {
	Filename string // base name of the produced file, extension included
	Title    string
	Duration int
}

// Executor runs the engine's two-phase protocol with a bounded fallback
// policy: probe, download, and on download failure retry exactly once on
// the platform's alternate client list. No backoff, no further retries.
type Executor struct {
	engine    Engine
	outputDir string
	logger    *log.Logger
}

// NewExecutor creates an Executor over the given engine.
func NewExecutor(engine Engine, outputDir string, logger *log.Logger) *Executor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Executor{engine: engine, outputDir: outputDir, logger: logger}
}

// Execute runs one extraction. Probe failures fail fast and are never
// retried; download failures get the single fallback attempt when the
// configuration carries an alternate client list, and the original failure
// is what propagates if the fallback also fails.
func (e *Executor) Execute(ctx context.Context, cfg *Config) (*Result, error) {
	meta, err := e.engine.Probe(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProbeFailed, err)
	}

	if err := e.engine.Download(ctx, cfg); err != nil {
		if len(cfg.FallbackClients) == 0 {
			return nil, fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
		}

		e.logger.Warn("primary download failed, trying fallback clients",
			"platform", cfg.Platform, "clients", cfg.FallbackClients, "err", err)

		if retryErr := e.engine.Download(ctx, cfg.WithClients(cfg.FallbackClients)); retryErr != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrFallbackExhausted, err)
		}
	}

	filename, err := e.findOutput(cfg.BaseName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
	}

	return &Result{Filename: filename, Title: meta.Title, Duration: meta.Duration}, nil
}

// findOutput locates the produced file by globbing on the base name; the
// engine decides the extension.
func (e *Executor) findOutput(baseName string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(e.outputDir, baseName+".*"))
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			return filepath.Base(m), nil
		}
	}
	return "", fmt.Errorf("no output file produced for %s", baseName)
}
