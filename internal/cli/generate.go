package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmorgan81/imagine/internal/handler"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

func newGenerateCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "generate [prompt...]",
		Short: "Generate one image and save it",
		Example: `  imagine generate "a cute astronaut cat on the moon"
  imagine generate --html -o ./images a lighthouse in a storm`,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := do.Invoke[*handler.Handler](a.injector)
			if err != nil {
				return err
			}

			out, err := h.Handle(a.ctx, handler.Input{Prompt: strings.Join(args, " ")})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Image)
			if out.Page != "" {
				fmt.Fprintln(cmd.OutOrStdout(), out.Page)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}
