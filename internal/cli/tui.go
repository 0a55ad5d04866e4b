package cli

import (
	"strings"

	"github.com/dmorgan81/imagine/internal/controller"
	"github.com/dmorgan81/imagine/internal/handler"
	"github.com/dmorgan81/imagine/internal/notify"
	"github.com/dmorgan81/imagine/internal/prompt"
	"github.com/dmorgan81/imagine/internal/ui"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

func newTUICommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "tui [prompt...]",
		Short:       "Generate images interactively",
		Annotations: map[string]string{fullscreenAnnotation: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			notifier := ui.NewNotifier()
			do.OverrideValue[notify.Notifier](a.injector, notifier)

			c, err := do.Invoke[*controller.Controller](a.injector)
			if err != nil {
				return err
			}
			h, err := do.Invoke[*handler.Handler](a.injector)
			if err != nil {
				return err
			}
			suggester, err := do.Invoke[*prompt.Randomizer](a.injector)
			if err != nil {
				return err
			}

			c.SetPrompt(strings.Join(args, " "))
			return ui.Run(a.ctx, c, h, suggester, notifier)
		},
	}
	cmd.Flags().String("log-file", "", "write logs to this file instead of discarding them")
	return cmd
}
