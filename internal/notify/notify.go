package notify

import (
	"context"

	"github.com/dmorgan81/imagine/internal/log"
	"github.com/samber/lo"
)

type Severity int

const (
	Info Severity = iota
	Destructive
)

func (s Severity) String() string {
	return lo.Ternary(s == Destructive, "destructive", "info")
}

type Notification struct {
	Title       string
	Description string
	Severity    Severity
}

type Notifier interface {
	Notify(context.Context, Notification)
}

type Func func(context.Context, Notification)

func (f Func) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// Multi delivers every notification to each notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	lo.ForEach(m, func(notifier Notifier, _ int) {
		notifier.Notify(ctx, n)
	})
}

// LogNotifier writes notifications to the context logger.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n Notification) {
	log := log.FromContextOrDiscard(ctx).WithGroup("notification")
	args := []any{"title", n.Title, "description", n.Description, "severity", n.Severity.String()}
	if n.Severity == Destructive {
		log.Warn(n.Title, args...)
		return
	}
	log.Info(n.Title, args...)
}
