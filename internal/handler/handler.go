package handler

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/dmorgan81/imagine/internal/controller"
	"github.com/dmorgan81/imagine/internal/feed"
	"github.com/dmorgan81/imagine/internal/log"
	"github.com/dmorgan81/imagine/internal/page"
	"github.com/dmorgan81/imagine/internal/store"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type Input struct {
	Prompt string `json:"prompt"`
}

type Output struct {
	Prompt      string `json:"prompt"`
	Image       string `json:"image"`
	Page        string `json:"page,omitempty"`
	Feed        string `json:"feed,omitempty"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

type FeedGenerator interface {
	Generate(context.Context) ([]byte, error)
}

type Option func(*Handler)

// WithPage writes an HTML page beside every image.
func WithPage(templator *page.Templator) Option {
	return func(h *Handler) { h.templator = templator }
}

// WithFeed regenerates and stores the RSS feed after every image.
func WithFeed(g FeedGenerator) Option {
	return func(h *Handler) { h.feed = g }
}

func WithInvalidator(i store.Invalidator) Option {
	return func(h *Handler) { h.invalidator = i }
}

// WithInlineImage embeds the image in the page as a data URI instead of
// linking to the stored object, so the page works on its own.
func WithInlineImage() Option {
	return func(h *Handler) { h.inline = true }
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// Handler runs one generation through the controller and stores the result.
type Handler struct {
	controller  *controller.Controller
	uploader    store.Uploader
	invalidator store.Invalidator
	templator   *page.Templator
	feed        FeedGenerator
	inline      bool
	now         func() time.Time
}

func New(c *controller.Controller, uploader store.Uploader, opts ...Option) *Handler {
	h := &Handler{
		controller:  c,
		uploader:    uploader,
		invalidator: store.NopInvalidator{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Handle(ctx context.Context, input Input) (Output, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("handler").With("prompt", input.Prompt)
	log.Info("handling generation request")

	if err := h.controller.Submit(ctx, input.Prompt); err != nil {
		return Output{}, err
	}
	state := h.controller.State()
	img := state.Image
	if state.Status != controller.Succeeded || img == nil {
		return Output{}, fmt.Errorf("generation finished in state %s", state.Status)
	}

	created := h.now().UTC()
	base := objectName(created)
	metadata := map[string]string{
		"prompt":  input.Prompt,
		"created": created.Format(time.RFC3339),
	}

	uploads := []store.UploadParams{{
		Name:        base + img.Extension(),
		Data:        img.Bytes(),
		ContentType: img.ContentType(),
		Metadata:    metadata,
	}}
	if h.templator != nil {
		html, err := h.templator.Template(ctx, page.Params{
			Image:   lo.Ternary(h.inline, img.DataURI(), base+img.Extension()),
			Prompt:  input.Prompt,
			Created: metadata["created"],
		})
		if err != nil {
			return Output{}, err
		}
		uploads = append(uploads, store.UploadParams{
			Name:        base + ".html",
			Data:        html,
			ContentType: "text/html",
			Metadata:    metadata,
		})
	}

	locations, err := h.upload(ctx, uploads)
	if err != nil {
		return Output{}, err
	}

	output := Output{
		Prompt:      input.Prompt,
		Image:       locations[0],
		ContentType: img.ContentType(),
		Size:        img.Size(),
	}
	if len(locations) > 1 {
		output.Page = locations[1]
	}

	if h.feed != nil {
		rss, err := h.feed.Generate(ctx)
		if err != nil {
			return Output{}, err
		}
		output.Feed, err = h.uploader.Upload(ctx, store.UploadParams{
			Name:        feed.Name,
			Data:        rss,
			ContentType: "application/rss+xml",
		})
		if err != nil {
			return Output{}, err
		}
	}

	paths := lo.Map(uploads, func(u store.UploadParams, _ int) string { return u.Name })
	if output.Feed != "" {
		paths = append(paths, feed.Name)
	}
	if err := h.invalidator.Invalidate(ctx, lo.Map(paths, func(p string, _ int) string {
		return path.Join("/", p)
	})); err != nil {
		return Output{}, err
	}

	log.Info("stored generated image", "image", output.Image, "page", output.Page)
	return output, nil
}

// objectName keeps millisecond precision so back-to-back generations do not
// overwrite each other.
func objectName(t time.Time) string {
	return fmt.Sprintf("%s%03d", t.Format("20060102T150405"), t.Nanosecond()/int(time.Millisecond))
}

func (h *Handler) upload(ctx context.Context, uploads []store.UploadParams) ([]string, error) {
	locations := make([]string, len(uploads))
	group, gctx := errgroup.WithContext(ctx)
	for i, u := range uploads {
		group.Go(func() error {
			loc, err := h.uploader.Upload(gctx, u)
			if err != nil {
				return fmt.Errorf("upload %s: %w", u.Name, err)
			}
			locations[i] = loc
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return locations, nil
}
