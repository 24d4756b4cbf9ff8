// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// extractCommand handles single-playlist extraction
func extractCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "extract",
		Aliases: []string{"x"},
		Usage:   "Extract playlist data and print a summary",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "playlist",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the full extraction result as JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Skip the extraction cache",
			},
		},
		Action: r.ExtractPlaylist,
	}
}

// exportCommand handles artifact generation
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export playlist data to CSV/Excel files",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Extract one playlist and write its artifacts",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "playlist",
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringSliceFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export formats: csv, xlsx (repeatable)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   ".",
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Skip the extraction cache",
					},
				},
				Action: r.ExportPlaylist,
			},
			{
				Name:  "bulk",
				Usage: "Extract and export multiple playlists concurrently",
				Arguments: []cli.Argument{
					&cli.StringArgs{
						Name: "playlists",
						Min:  1,
						Max:  -1,
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringSliceFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export formats: csv, xlsx (repeatable)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: spotify_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Upstream fetches per second",
						Value: 2,
					},
				},
				Action: r.BulkExport,
			},
		},
	}
}

// serveCommand starts the HTTP server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the extraction HTTP server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// cacheCommand manages the extraction cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Extraction cache operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the cached extraction for a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "playlist",
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CacheShow,
			},
			{
				Name:  "purge",
				Usage: "Delete stale cached extractions",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Delete every cached extraction",
					},
				},
				Action: r.CachePurge,
			},
		},
	}
}

// setupCommand handles config and database initialization
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the cache database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}
