// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// syncCommand handles watchlist sync operations
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync Letterboxd watchlists into Emby playlists",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run one sync pass over all linked users",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "user",
						Usage: "Sync a single Letterboxd username instead of all links",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output results as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "Write unmatched titles to a CSV file at this path",
					},
				},
				Action: r.SyncRun,
			},
			{
				Name:  "daemon",
				Usage: "Run sync passes continuously with an idle delay between them",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "interval",
						Usage: "Idle delay between passes in milliseconds (overrides config)",
					},
				},
				Action: r.SyncDaemon,
			},
		},
	}
}

// linkCommand manages Letterboxd to Emby account links
func linkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "link",
		Usage: "Manage Letterboxd to Emby account links",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Link a Letterboxd account to an Emby account and its watchlist playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "letterboxd",
						Aliases:  []string{"l"},
						Usage:    "Letterboxd username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "emby",
						Aliases:  []string{"e"},
						Usage:    "Emby username",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "playlist",
						Usage: "Playlist name (default: \"<letterboxd user>'s Letterboxd Watchlist\")",
					},
				},
				Action: r.LinkAdd,
			},
			{
				Name:  "list",
				Usage: "List configured account links",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.LinkList,
			},
			{
				Name:  "remove",
				Usage: "Remove an account link by Letterboxd username",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "letterboxd",
					},
				},
				Action: r.LinkRemove,
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
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
