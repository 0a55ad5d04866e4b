package cli

import (
	"fmt"

	"github.com/dmorgan81/imagine/internal/feed"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

func newFeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "feed",
		Short: "Print the RSS feed of images stored in S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Store.Backend != "s3" {
				return fmt.Errorf("the feed needs the s3 store (got %q)", a.cfg.Store.Backend)
			}
			g, err := do.Invoke[*feed.Generator](a.injector)
			if err != nil {
				return err
			}
			rss, err := g.Generate(a.ctx)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(rss)
			return err
		},
	}
}
