package cli

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/dmorgan81/imagine/internal/handler"
	"github.com/dmorgan81/imagine/internal/log"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

func newLambdaCommand(a *app) *cobra.Command {
	var pages bool

	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Serve generation requests as an AWS Lambda function",
		Long: `Serve {"prompt": "..."} invocations. Each one generates an image, stores it
with its page and the refreshed feed, and invalidates CloudFront.

With --pages the function instead answers S3 Object Lambda requests for
<name>.html by rendering the page for the stored image.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			shutdown := lambda.WithEnableSIGTERM(func() {
				if err := a.injector.Shutdown(); err != nil {
					log.FromContextOrDiscard(a.ctx).Error("shutdown failed", "error", err)
				}
			})

			if pages {
				h, err := do.Invoke[*handler.PageHandler](a.injector)
				if err != nil {
					return err
				}
				lambda.StartWithOptions(h.Handle, lambda.WithContext(a.ctx), shutdown)
				return nil
			}

			h, err := do.Invoke[*handler.Handler](a.injector)
			if err != nil {
				return err
			}
			lambda.StartWithOptions(h.Handle, lambda.WithContext(a.ctx), shutdown)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pages, "pages", false, "serve S3 Object Lambda page requests")
	return cmd
}
