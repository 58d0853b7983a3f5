package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aizithy/audio-extractor-cloud/internal/credentials"
	"github.com/aizithy/audio-extractor-cloud/internal/extract"
	"github.com/aizithy/audio-extractor-cloud/internal/platform"
	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	"github.com/urfave/cli/v3"
)

// Extract runs a one-shot synchronous extraction, bypassing the service.
func (r *Runner) Extract(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: url argument is required", shared.ErrMissingArgument)
	}

	cfg := r.config
	outputDir := cmd.String("output")
	if outputDir == "" {
		outputDir = cfg.Storage.Dir
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	engine := extract.NewCLI(cfg.Extractor.Binary, r.logger)
	if err := engine.CheckBinary(); err != nil {
		return fmt.Errorf("%w: %s not found on PATH", shared.ErrServiceUnavailable, cfg.Extractor.Binary)
	}

	selector := platform.NewSelector()
	resolver := credentials.NewResolver(filepath.Join(outputDir, "cookies"), cfg.Credentials, r.httpClient, r.logger)
	builder := extract.NewBuilder(selector, resolver, extract.BuilderOpts{
		OutputDir:      outputDir,
		ProxyURL:       cfg.Extractor.ProxyURL,
		GeoCountry:     cfg.Extractor.GeoCountry,
		ClientOverride: cfg.Extractor.ClientOverride,
	})
	executor := extract.NewExecutor(engine, outputDir, r.logger)

	baseName := fmt.Sprintf("%s_%s", shared.HashURL(url), shared.Timestamp(time.Now()))

	type output struct {
		Title    string `json:"title"`
		Duration int    `json:"duration"`
		Audio    string `json:"audio_file,omitempty"`
		Video    string `json:"video_file,omitempty"`
	}
	var result output

	r.logger.Info("extracting audio", "url", url)
	audioCfg, err := builder.Build(ctx, url, extract.KindAudio, cmd.String("format"), cmd.String("quality"), baseName)
	if err != nil {
		return err
	}
	audioRes, err := executor.Execute(ctx, audioCfg)
	if err != nil {
		return err
	}
	result.Title = audioRes.Title
	result.Duration = audioRes.Duration
	result.Audio = audioRes.Filename

	if cmd.Bool("video") {
		r.logger.Info("downloading video", "url", url)
		videoCfg, err := builder.Build(ctx, url, extract.KindVideo, cmd.String("format"), cmd.String("quality"), baseName)
		if err != nil {
			return err
		}
		videoRes, err := executor.Execute(ctx, videoCfg)
		if err != nil {
			return err
		}
		result.Video = videoRes.Filename
	}

	return r.writeJSON(result, true)
}
