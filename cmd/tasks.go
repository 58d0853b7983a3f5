package main

import (
	"context"
	"fmt"

	"github.com/aizithy/audio-extractor-cloud/internal/formatter"
	"github.com/aizithy/audio-extractor-cloud/internal/services"
	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	"github.com/urfave/cli/v3"
)

// TasksSubmit submits an extraction task to a running service.
func (r *Runner) TasksSubmit(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: url argument is required", shared.ErrMissingArgument)
	}

	result, err := r.client.Submit(ctx, services.Submission{
		URL:          url,
		ExtractAudio: true,
		KeepVideo:    cmd.Bool("video"),
		AudioFormat:  cmd.String("format"),
		AudioQuality: cmd.String("quality"),
	})
	if err != nil {
		return err
	}

	r.logger.Info("task submitted", "id", result.TaskID)
	return r.writeJSON(result, true)
}

// TasksList prints the service's task listing in the requested format.
func (r *Runner) TasksList(ctx context.Context, cmd *cli.Command) error {
	listing, err := r.client.List(ctx, cmd.String("status"))
	if err != nil {
		return err
	}

	data, err := formatter.Tasks(listing.Tasks, formatter.Format(cmd.String("format")))
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// TasksStatus prints one task's full state.
func (r *Runner) TasksStatus(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id argument is required", shared.ErrMissingArgument)
	}

	view, err := r.client.Status(ctx, id)
	if err != nil {
		return err
	}
	return r.writeJSON(view, true)
}

// TasksDelete removes a task and its output files from a running service.
func (r *Runner) TasksDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id argument is required", shared.ErrMissingArgument)
	}

	if err := r.client.Remove(ctx, id); err != nil {
		return err
	}
	return r.writePlain("deleted %s\n", id)
}
