package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmorgan81/imagine/internal/image"
	"github.com/dmorgan81/imagine/internal/log"
	"github.com/dmorgan81/imagine/internal/notify"
	"github.com/samber/do"
	"github.com/samber/lo"
)

var (
	ErrEmptyPrompt = errors.New("please enter a prompt")
	ErrInFlight    = errors.New("a generation is already in flight")
	ErrDiscarded   = errors.New("controller was reset while generating")
	errNoImage     = errors.New("webhook returned no image")
)

const fallbackMessage = "Please try again"

var (
	emptyPromptNotice = notify.Notification{
		Title:       "Please enter a prompt",
		Description: "Describe the image you want to generate",
		Severity:    notify.Destructive,
	}
	successNotice = notify.Notification{
		Title:       "Image generated!",
		Description: "Your AI-generated image is ready",
		Severity:    notify.Info,
	}
)

type Option func(*Controller)

// WithTimeout bounds each webhook call. Zero leaves the call unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithObserver registers a callback that receives every state transition.
func WithObserver(fn func(State)) Option {
	return func(c *Controller) { c.observers = append(c.observers, fn) }
}

// Controller owns the prompt and the result of the latest generation. At
// most one generation is in flight at any time.
type Controller struct {
	generator image.Generator
	notifier  notify.Notifier
	timeout   time.Duration
	observers []func(State)

	mu     sync.Mutex
	prompt string
	state  State
	epoch  uint64
}

func New(generator image.Generator, opts ...Option) *Controller {
	c := &Controller{generator: generator, notifier: notify.LogNotifier{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func NewController(i *do.Injector) (*Controller, error) {
	return New(
		do.MustInvoke[image.Generator](i),
		WithNotifier(do.MustInvoke[notify.Notifier](i)),
		WithTimeout(do.MustInvokeNamed[time.Duration](i, "timeout")),
	), nil
}

func (c *Controller) SetPrompt(prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompt = prompt
}

func (c *Controller) Prompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompt
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CanSubmit reports whether Submit would issue a request for the current prompt.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Status != InFlight && strings.TrimSpace(c.prompt) != ""
}

// Submit stores prompt and, when it is non-blank and nothing is in flight,
// issues exactly one generation request. It blocks until the request settles.
func (c *Controller) Submit(ctx context.Context, prompt string) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("controller")

	c.mu.Lock()
	c.prompt = prompt
	if strings.TrimSpace(prompt) == "" {
		c.mu.Unlock()
		log.Info("rejecting empty prompt")
		c.notifier.Notify(ctx, emptyPromptNotice)
		return ErrEmptyPrompt
	}
	if c.state.Status == InFlight {
		c.mu.Unlock()
		log.Info("rejecting submit while in flight")
		return ErrInFlight
	}
	previous := c.state.Image
	c.state = State{Status: InFlight}
	epoch := c.epoch
	c.mu.Unlock()

	previous.Release()
	c.publish(State{Status: InFlight})
	log.Info("submitting prompt", "prompt", prompt)

	handle, err := c.generate(ctx, prompt)
	if err == nil && handle == nil {
		err = errNoImage
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		handle.Release()
		log.Info("discarding result of reset generation")
		return ErrDiscarded
	}
	c.state = lo.Ternary(err == nil,
		State{Status: Succeeded, Image: handle},
		State{Status: Failed, Err: err})
	next := c.state
	c.mu.Unlock()

	c.publish(next)
	if err != nil {
		log.Warn("generation failed", "error", err)
		c.notifier.Notify(ctx, notify.Notification{
			Title:       "Generation failed",
			Description: errorMessage(err),
			Severity:    notify.Destructive,
		})
		return err
	}

	log.Info("generation succeeded", "size", handle.Size(), "content-type", handle.ContentType())
	c.notifier.Notify(ctx, successNotice)
	return nil
}

func (c *Controller) generate(ctx context.Context, prompt string) (*image.Handle, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.generator.Generate(ctx, image.Params{Prompt: prompt})
}

// Close releases the current image and resets the controller to Idle. A
// generation still in flight is discarded when it settles.
func (c *Controller) Close() error {
	c.mu.Lock()
	current := c.state.Image
	c.state = State{}
	c.epoch++
	c.mu.Unlock()

	current.Release()
	c.publish(State{})
	return nil
}

// Shutdown lets the injector tear the controller down.
func (c *Controller) Shutdown() error {
	return c.Close()
}

func (c *Controller) publish(s State) {
	for _, fn := range c.observers {
		fn(s)
	}
}

func errorMessage(err error) string {
	msg := strings.TrimSpace(err.Error())
	return lo.Ternary(msg != "", msg, fallbackMessage)
}
