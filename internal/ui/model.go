package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dmorgan81/imagine/internal/controller"
	"github.com/dmorgan81/imagine/internal/handler"
	"github.com/dmorgan81/imagine/internal/notify"
)

const placeholder = "a cute astronaut cat on the moon"

type Submitter interface {
	Handle(context.Context, handler.Input) (handler.Output, error)
}

type Suggester interface {
	Randomize(context.Context) (string, bool)
}

type generationDoneMsg struct {
	output handler.Output
	err    error
}

// Model is the terminal front end. It renders controller state and never
// decides generation outcomes itself.
type Model struct {
	ctx        context.Context
	controller *controller.Controller
	submitter  Submitter
	suggester  Suggester
	notifier   *Notifier

	input   textinput.Model
	spinner spinner.Model

	generating bool
	output     handler.Output
	toast      *notify.Notification
	width      int
	quitting   bool
}

func NewModel(ctx context.Context, c *controller.Controller, submitter Submitter, suggester Suggester, notifier *Notifier) *Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 1000
	ti.SetValue(c.Prompt())
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primary)

	return &Model{
		ctx:        ctx,
		controller: c,
		submitter:  submitter,
		suggester:  suggester,
		notifier:   notifier,
		input:      ti,
		spinner:    s,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.notifier.listen())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(20, min(msg.Width-12, 80))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		case tea.KeyCtrlR:
			if m.generating || m.suggester == nil {
				return m, nil
			}
			if p, ok := m.suggester.Randomize(m.ctx); ok {
				m.input.SetValue(p)
				m.input.CursorEnd()
				m.controller.SetPrompt(p)
			}
			return m, nil
		}
		// the input is read-only while a request is in flight
		if m.generating {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.controller.SetPrompt(m.input.Value())
		return m, cmd

	case generationDoneMsg:
		// a blank prompt never starts a request; its notice comes through the
		// notifier and the previous result stays on screen
		if !m.generating {
			return m, nil
		}
		m.generating = false
		m.output = msg.output
		m.input.Focus()
		// generation failures arrive as notifications; this covers storage
		if msg.err != nil && m.controller.State().Status == controller.Succeeded {
			m.toast = &notify.Notification{Title: "Saving failed", Description: msg.err.Error(), Severity: notify.Destructive}
		}
		return m, nil

	case notificationMsg:
		note := notify.Notification(msg)
		m.toast = &note
		return m, m.notifier.listen()

	case spinner.TickMsg:
		if !m.generating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit mirrors the generate button: ignored while in flight, otherwise the
// controller decides between a validation notice and a request.
func (m *Model) submit() tea.Cmd {
	if m.generating {
		return nil
	}
	prompt := m.input.Value()
	run := func() tea.Msg {
		out, err := m.submitter.Handle(m.ctx, handler.Input{Prompt: prompt})
		return generationDoneMsg{output: out, err: err}
	}
	if strings.TrimSpace(prompt) == "" {
		return run
	}

	m.generating = true
	m.output = handler.Output{}
	m.toast = nil
	m.input.Blur()
	return tea.Batch(run, m.spinner.Tick)
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Create Amazing Images"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Transform your ideas into stunning visuals with AI-powered image generation"))
	b.WriteString("\n\n")

	var button lipgloss.Style
	label := "Generate Image"
	switch {
	case m.generating:
		button, label = disabledStyle, "Generating..."
	case strings.TrimSpace(m.input.Value()) == "":
		button = disabledStyle
	default:
		button = buttonStyle
	}
	b.WriteString(cardStyle.Render(
		"Describe your image\n\n" + m.input.View() + "\n\n" + button.Render(label),
	))
	b.WriteString("\n")

	if result := m.resultView(); result != "" {
		b.WriteString(cardStyle.Render(result))
		b.WriteString("\n")
	}
	if m.toast != nil {
		b.WriteString(toastView(*m.toast))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter: generate • ctrl+r: suggest a prompt • esc: quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) resultView() string {
	if m.generating {
		return m.spinner.View() + " Creating your masterpiece..."
	}
	state := m.controller.State()
	switch state.Status {
	case controller.Succeeded:
		img := state.Image
		lines := []string{
			successStyle.Render("Generated image"),
			fmt.Sprintf("%s • %s", img.ContentType(), humanSize(img.Size())),
		}
		if m.output.Image != "" {
			lines = append(lines, "saved to "+m.output.Image)
		}
		if m.output.Page != "" {
			lines = append(lines, "page at "+m.output.Page)
		}
		return strings.Join(lines, "\n")
	case controller.Failed:
		return errorStyle.Render(state.Message())
	}
	return ""
}

func toastView(n notify.Notification) string {
	style := successStyle
	if n.Severity == notify.Destructive {
		style = errorStyle
	}
	return style.Bold(true).Render(n.Title) + " " + subtitleStyle.Render(n.Description)
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctx context.Context, c *controller.Controller, submitter Submitter, suggester Suggester, notifier *Notifier) error {
	p := tea.NewProgram(NewModel(ctx, c, submitter, suggester, notifier), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
