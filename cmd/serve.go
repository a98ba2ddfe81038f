package cmd

import (
	"github.com/urfave/cli/v2"

	"podcastd/internal/config"
	"podcastd/internal/refresher"
	"podcastd/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the daemon",
		Description: `Applies database migrations, starts the periodic feed refresh and
serves the catalog API and Prometheus metrics until interrupted.`,
		Action: func(c *cli.Context) error {
			ctx, cancel, err := newContext(c)
			if err != nil {
				return err
			}
			defer cancel()

			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			db, err := openStore(ctx, cfg.Store.Path)
			if err != nil {
				return err
			}
			defer closeStore(ctx, db)

			daemon := refresher.New(db, cfg.Refresh)
			return server.New(db, daemon).Serve(ctx, cfg.Listen.API, cfg.Listen.Metrics, c.Bool("devel"))
		},
	}
}
