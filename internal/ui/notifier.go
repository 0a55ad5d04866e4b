package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dmorgan81/imagine/internal/notify"
)

type notificationMsg notify.Notification

// Notifier forwards controller notifications into the bubbletea event loop.
type Notifier struct {
	ch chan notify.Notification
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan notify.Notification, 16)}
}

// Notify drops the notification rather than block the controller when
// nobody is listening.
func (n *Notifier) Notify(_ context.Context, note notify.Notification) {
	select {
	case n.ch <- note:
	default:
	}
}

func (n *Notifier) listen() tea.Cmd {
	return func() tea.Msg {
		return notificationMsg(<-n.ch)
	}
}
