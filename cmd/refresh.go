package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"podcastd/internal/config"
	"podcastd/internal/refresher"
)

func refreshCmd() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Refresh all configured feeds once and exit",
		Description: `Pulls every configured feed into the database in the caller's
process, prints a per-feed summary and exits. The exit code is
non-zero only when every feed failed.`,
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

			result := refresher.New(db, cfg.Refresh).RunOnce(ctx)
			for _, feed := range result.Feeds {
				if feed.Err != nil {
					fmt.Printf("%s: %s: %s\n", feed.FeedURL, feed.Status, feed.Err)
				} else {
					fmt.Printf("%s: %s, %d episodes\n", feed.FeedURL, feed.Status, feed.Episodes)
				}
			}

			if result.Succeeded() == 0 {
				return fmt.Errorf("all %d feeds failed to refresh", len(result.Feeds))
			}
			return nil
		},
	}
}
