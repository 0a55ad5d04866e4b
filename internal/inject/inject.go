package inject

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/imagine/internal/config"
	"github.com/dmorgan81/imagine/internal/controller"
	"github.com/dmorgan81/imagine/internal/feed"
	"github.com/dmorgan81/imagine/internal/handler"
	"github.com/dmorgan81/imagine/internal/image"
	"github.com/dmorgan81/imagine/internal/log"
	"github.com/dmorgan81/imagine/internal/notify"
	"github.com/dmorgan81/imagine/internal/page"
	"github.com/dmorgan81/imagine/internal/param"
	"github.com/dmorgan81/imagine/internal/prompt"
	"github.com/dmorgan81/imagine/internal/store"
	"github.com/samber/do"
)

// Setup registers every provider. Nothing is constructed until invoked, so AWS
// configuration is only loaded by commands that touch AWS.
func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*cloudfront.Client](injector, func(i *do.Injector) (*cloudfront.Client, error) {
		return cloudfront.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, &http.Client{})

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)
	do.Provide[image.Generator](injector, image.NewWebhookGenerator)
	do.ProvideValue[notify.Notifier](injector, notify.LogNotifier{})
	do.Provide[*controller.Controller](injector, controller.NewController)
	do.Provide[*page.Templator](injector, page.NewTemplator)
	do.Provide[*prompt.Randomizer](injector, prompt.NewRandomizer)
	do.Provide[*feed.Generator](injector, feed.NewS3Generator)
	do.Provide[*handler.PageHandler](injector, handler.NewPageHandler)

	if cfg.Store.Backend == "s3" {
		do.Provide[store.Uploader](injector, store.NewS3Uploader)
		do.Provide[store.Invalidator](injector, store.NewCloudFrontInvalidator)
	} else {
		do.Provide[store.Uploader](injector, store.NewFileUploader)
		do.ProvideValue[store.Invalidator](injector, store.NopInvalidator{})
	}

	do.ProvideNamed[string](injector, "endpoint", func(i *do.Injector) (string, error) {
		if cfg.Endpoint != "" {
			return cfg.Endpoint, nil
		}
		return param.String(ctx, do.MustInvoke[param.Fetcher](i), cfg.Endpoint, cfg.EndpointParam)
	})
	do.ProvideNamed[[]string](injector, "suggestions", func(i *do.Injector) ([]string, error) {
		if len(cfg.Suggestions) > 0 || cfg.SuggestionsParam == "" {
			return cfg.Suggestions, nil
		}
		return param.Strings(ctx, do.MustInvoke[param.Fetcher](i), cfg.Suggestions, cfg.SuggestionsParam)
	})
	do.ProvideNamedValue[time.Duration](injector, "timeout", cfg.Timeout)
	do.ProvideNamedValue[string](injector, "output_dir", cfg.Output.Dir)
	do.ProvideNamedValue[string](injector, "bucket", cfg.Store.Bucket)
	do.ProvideNamedValue[string](injector, "distribution", cfg.Store.Distribution)
	do.ProvideNamedValue[string](injector, "prefix", cfg.Store.Prefix)
	do.ProvideNamedValue[string](injector, "site_url", cfg.Store.SiteURL)

	do.Provide[*handler.Handler](injector, func(i *do.Injector) (*handler.Handler, error) {
		opts := []handler.Option{handler.WithInvalidator(do.MustInvoke[store.Invalidator](i))}
		if cfg.Output.HTML {
			opts = append(opts, handler.WithPage(do.MustInvoke[*page.Templator](i)))
		}
		if cfg.Output.HTML && cfg.Store.Backend != "s3" {
			opts = append(opts, handler.WithInlineImage())
		}
		if cfg.Store.Backend == "s3" {
			opts = append(opts, handler.WithFeed(do.MustInvoke[*feed.Generator](i)))
		}
		return handler.New(do.MustInvoke[*controller.Controller](i), do.MustInvoke[store.Uploader](i), opts...), nil
	})

	return injector
}
