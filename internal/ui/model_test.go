package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dmorgan81/imagine/internal/controller"
	"github.com/dmorgan81/imagine/internal/handler"
	"github.com/dmorgan81/imagine/internal/image"
	"github.com/dmorgan81/imagine/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00}

type generatorFunc func(context.Context, image.Params) (*image.Handle, error)

func (f generatorFunc) Generate(ctx context.Context, p image.Params) (*image.Handle, error) {
	return f(ctx, p)
}

// controllerSubmitter stands in for handler.Handler without storage.
type controllerSubmitter struct {
	c     *controller.Controller
	calls int
}

func (s *controllerSubmitter) Handle(ctx context.Context, in handler.Input) (handler.Output, error) {
	s.calls++
	if err := s.c.Submit(ctx, in.Prompt); err != nil {
		return handler.Output{}, err
	}
	return handler.Output{Prompt: in.Prompt, Image: "out/image.png"}, nil
}

type fixedSuggester string

func (s fixedSuggester) Randomize(context.Context) (string, bool) {
	return string(s), s != ""
}

func newTestModel(gen generatorFunc) (*Model, *controllerSubmitter, *Notifier) {
	notifier := NewNotifier()
	c := controller.New(gen, controller.WithNotifier(notifier))
	sub := &controllerSubmitter{c: c}
	return NewModel(context.Background(), c, sub, fixedSuggester(placeholder), notifier), sub, notifier
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// runCmd executes cmd, expanding batches, and feeds each message except
// blocking ones back into the model.
func runCmd(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			runCmd(t, m, c)
		}
	default:
		m.Update(msg)
	}
}

func drainToast(t *testing.T, m *Model, n *Notifier) {
	t.Helper()
	select {
	case note := <-n.ch:
		m.Update(notificationMsg(note))
	default:
		t.Fatal("expected a notification")
	}
}

func TestModel_EmptyPrompt(t *testing.T) {
	calls := 0
	m, _, n := newTestModel(func(context.Context, image.Params) (*image.Handle, error) {
		calls++
		return image.NewHandle(pngBytes, ""), nil
	})
	typeText(m, "   ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.generating)
	runCmd(t, m, cmd)
	drainToast(t, m, n)

	assert.Zero(t, calls)
	assert.Equal(t, controller.Idle, m.controller.State().Status)
	require.NotNil(t, m.toast)
	assert.Equal(t, "Please enter a prompt", m.toast.Title)
	assert.Contains(t, m.View(), "Please enter a prompt")
}

func TestModel_Success(t *testing.T) {
	m, sub, n := newTestModel(func(context.Context, image.Params) (*image.Handle, error) {
		return image.NewHandle(pngBytes, ""), nil
	})
	typeText(m, "a red fox")
	assert.Equal(t, "a red fox", m.controller.Prompt())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.generating)
	assert.Contains(t, m.View(), "Creating your masterpiece...")

	// a second enter while generating is ignored
	_, again := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)

	runCmd(t, m, cmd)
	drainToast(t, m, n)

	assert.Equal(t, 1, sub.calls)
	assert.False(t, m.generating)
	assert.Equal(t, controller.Succeeded, m.controller.State().Status)
	view := m.View()
	assert.Contains(t, view, "image/png")
	assert.Contains(t, view, "saved to out/image.png")
	assert.Contains(t, view, "Image generated!")
}

func TestModel_Failure(t *testing.T) {
	m, _, n := newTestModel(func(context.Context, image.Params) (*image.Handle, error) {
		return nil, &image.HTTPError{StatusCode: 500, StatusText: "Internal Server Error"}
	})
	typeText(m, "x")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(t, m, cmd)
	drainToast(t, m, n)

	assert.Equal(t, controller.Failed, m.controller.State().Status)
	assert.Equal(t, notify.Destructive, m.toast.Severity)
	assert.Contains(t, m.View(), "Internal Server Error")
}

func TestModel_InputLockedWhileGenerating(t *testing.T) {
	m, _, _ := newTestModel(func(context.Context, image.Params) (*image.Handle, error) {
		return nil, errors.New("unused")
	})
	typeText(m, "cat")
	m.generating = true

	typeText(m, "dog")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Equal(t, "cat", m.input.Value())
	assert.Equal(t, "cat", m.controller.Prompt())
}

func TestModel_Suggest(t *testing.T) {
	m, _, _ := newTestModel(nil)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Equal(t, placeholder, m.input.Value())
	assert.Equal(t, placeholder, m.controller.Prompt())
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestNotifierDoesNotBlock(t *testing.T) {
	n := &Notifier{ch: make(chan notify.Notification)}
	n.Notify(context.Background(), notify.Notification{Title: "dropped"})
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", humanSize(512))
	assert.Equal(t, "1.5 KB", humanSize(1536))
	assert.Equal(t, "2.0 MB", humanSize(2<<20))
}

type failingStore struct {
	c *controller.Controller
}

func (s failingStore) Handle(ctx context.Context, in handler.Input) (handler.Output, error) {
	if err := s.c.Submit(ctx, in.Prompt); err != nil {
		return handler.Output{}, err
	}
	return handler.Output{}, errors.New("disk full")
}

func TestModel_StorageFailure(t *testing.T) {
	notifier := NewNotifier()
	c := controller.New(generatorFunc(func(context.Context, image.Params) (*image.Handle, error) {
		return image.NewHandle(pngBytes, ""), nil
	}), controller.WithNotifier(notify.Func(func(context.Context, notify.Notification) {})))
	m := NewModel(context.Background(), c, failingStore{c: c}, nil, notifier)
	typeText(m, "x")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(t, m, cmd)

	require.NotNil(t, m.toast)
	assert.Equal(t, "Saving failed", m.toast.Title)
	assert.Contains(t, m.View(), "disk full")
}

func TestModel_EmptyAfterSuccess(t *testing.T) {
	m, sub, n := newTestModel(func(context.Context, image.Params) (*image.Handle, error) {
		return image.NewHandle(pngBytes, ""), nil
	})
	typeText(m, "a red fox")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(t, m, cmd)
	drainToast(t, m, n)

	m.input.SetValue("  ")
	m.controller.SetPrompt("  ")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(t, m, cmd)
	drainToast(t, m, n)

	assert.Equal(t, 2, sub.calls)
	assert.Equal(t, controller.Succeeded, m.controller.State().Status)
	require.NotNil(t, m.toast)
	assert.Equal(t, "Please enter a prompt", m.toast.Title)
	assert.Equal(t, notify.Destructive, m.toast.Severity)
	view := m.View()
	assert.NotContains(t, view, "Saving failed")
	assert.Contains(t, view, "saved to out/image.png")
}
