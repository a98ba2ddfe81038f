// Package cmd wires the daemon commands together.
package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func App() *cli.App {
	return &cli.App{
		Name:  "podcastd",
		Usage: "A podcast feed aggregation daemon",
		Description: `Periodically pulls the configured podcast feeds, stores the parsed
podcasts and episodes in an SQLite database and serves the catalog
over a JSON API.

Flags can also be set via environment variables, e.g.:

--config => PODCASTD_CONFIG=podcastd.toml
--devel  => PODCASTD_DEVEL=true
`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the configuration file",
				EnvVars: []string{"PODCASTD_CONFIG"},
				Value:   "podcastd.toml",
			},
			&cli.BoolFlag{
				Name:    "devel",
				Usage:   "development mode: debug logs, no periodic refresh",
				EnvVars: []string{"PODCASTD_DEVEL"},
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			refreshCmd(),
			migrateCmd(),
		},
		Action: func(c *cli.Context) error {
			return cli.ShowAppHelp(c)
		},
	}
}

func Execute() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s.\n", err)
		os.Exit(1)
	}
}
