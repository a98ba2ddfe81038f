package cmd

import (
	"github.com/urfave/cli/v2"

	"podcastd/internal/config"
	"podcastd/internal/store"
)

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database migrations and exit",
		Description: `Creates the database when it doesn't exist yet. The serve and
refresh commands migrate on startup, so running this by hand is only
needed for provisioning.`,
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

			return store.Migrate(ctx, cfg.Store.Path)
		},
	}
}
