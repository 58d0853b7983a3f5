// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the extraction HTTP service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the extraction HTTP service",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Output directory for extracted files (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// extractCommand runs a one-shot extraction without the service.
func extractCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Extract audio from a URL synchronously",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "url",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "video",
				Usage: "Keep the full video as well",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Audio format (mp3, m4a, wav)",
				Value:   "mp3",
			},
			&cli.StringFlag{
				Name:    "quality",
				Aliases: []string{"q"},
				Usage:   "Audio quality (best, good, normal)",
				Value:   "best",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (overrides config)",
			},
		},
		Action: r.Extract,
	}
}

// tasksCommand talks to a running service about its tasks.
func tasksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Manage tasks on a running service",
		Commands: []*cli.Command{
			{
				Name:  "submit",
				Usage: "Submit an extraction task",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "url",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "video",
						Usage: "Keep the full video as well",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Audio format (mp3, m4a, wav)",
						Value:   "mp3",
					},
					&cli.StringFlag{
						Name:    "quality",
						Aliases: []string{"q"},
						Usage:   "Audio quality (best, good, normal)",
						Value:   "best",
					},
				},
				Action: r.TasksSubmit,
			},
			{
				Name:  "list",
				Usage: "List tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (pending, processing, completed, failed)",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (table, json, csv)",
						Value: "table",
					},
				},
				Action: r.TasksList,
			},
			{
				Name:  "status",
				Usage: "Show one task's state",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.TasksStatus,
			},
			{
				Name:  "delete",
				Usage: "Delete a task and its output files",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.TasksDelete,
			},
		},
	}
}

// sweepCommand evicts old output files locally.
func sweepCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Remove output files older than the retention age",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Output directory to sweep (overrides config)",
			},
			&cli.IntFlag{
				Name:  "max-age-hours",
				Usage: "Age threshold in hours (overrides config)",
			},
		},
		Action: r.Sweep,
	}
}

// configCommand handles configuration file management.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write an example config.toml to the given path",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Destination path",
						Value:   "config.toml",
					},
				},
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Action: r.ConfigShow,
			},
		},
	}
}

// apiCommand handles raw API calls to a running service.
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to a running service",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:   "health",
				Usage:  "Check service health",
				Action: r.APIHealth,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive task monitoring.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive task monitor",
		Action:  r.TUI,
	}
}
