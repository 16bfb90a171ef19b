// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag is shared by every command that reads config.toml
func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// runCommand starts or resumes the batch restore pipeline
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Restore missing artwork across a podcast's episodes",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "podcast",
				Aliases:  []string{"p"},
				Usage:    "Podcast ID to process",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "batch-size",
				Aliases: []string{"b"},
				Usage:   "Episodes per page (defaults to config)",
			},
			&cli.IntFlag{
				Name:  "start-page",
				Usage: "Page to start from, overriding the saved position",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Download and validate artwork without uploading",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Re-process episodes that already have a recorded outcome",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Continue between batches without prompting",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a failure report to this path (.csv or .json)",
			},
		},
		Action: r.Run,
	}
}

// resumeCommand continues the run recorded in the progress ledger
func resumeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resume",
		Usage: "Continue the interrupted run from the saved position",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Download and validate artwork without uploading",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Continue between batches without prompting",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a failure report to this path (.csv or .json)",
			},
		},
		Action: r.Resume,
	}
}

// resetCommand discards recorded progress
func resetCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Delete the progress ledger so the next run starts fresh",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: r.Reset,
	}
}

// statusCommand inspects the progress ledger
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the recorded run's progress and failures",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Status,
	}
}

// searchCommand launches the interactive single-episode restore flow
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Find episodes by title and restore artwork interactively",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "podcast",
				Aliases:  []string{"p"},
				Usage:    "Podcast ID to search",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Download and validate artwork without uploading",
			},
		},
		Action: r.Search,
	}
}

// cacheCommand handles opt-in episode metadata caching
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Cache episode metadata locally",
		Commands: []*cli.Command{
			{
				Name:  "podcast",
				Usage: "Cache all episode metadata for a podcast",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Podcast ID to cache",
						Required: true,
					},
				},
				Action: r.CachePodcast,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Create a config.toml from the bundled template",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the episode cache database and run migrations",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
