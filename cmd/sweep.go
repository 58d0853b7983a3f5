package main

import (
	"context"
	"time"

	"github.com/aizithy/audio-extractor-cloud/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sweep removes old output files from the local output directory. Task
// records live inside the service process, so only files are affected here.
func (r *Runner) Sweep(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	if dir == "" {
		dir = r.config.Storage.Dir
	}
	hours := cmd.Int("max-age-hours")
	if hours <= 0 {
		hours = r.config.Storage.MaxAgeHours
	}
	maxAge := time.Duration(hours) * time.Hour

	sweeper := tasks.NewSweeper(tasks.NewStore(), dir, r.logger)
	files, _ := sweeper.Sweep(maxAge, maxAge)

	return r.writePlain("removed %d file(s) older than %s from %s\n", files, maxAge, dir)
}
