// Package tui provides the interactive load progress view.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docloader/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docloader/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docloader/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driving"
)

// PollInterval is how often the loader status is refreshed.
const PollInterval = 100 * time.Millisecond

const maxBarWidth = 60

// Ensure Progress implements tea.Model.
var _ tea.Model = (*Progress)(nil)

// Progress runs a load and renders its progress.
// It implements tea.Model for use with Bubbletea.
type Progress struct {
	ctx    context.Context
	cancel context.CancelFunc
	loader driving.FileLoader
	paths  []string

	styles  *styles.Styles
	keys    *keymap.KeyMap
	spinner spinner.Model
	bar     progress.Model

	status    driving.LoadStatus
	documents []*domain.Document
	err       error
	done      bool
	cancelled bool
}

// NewProgress creates a progress model that loads paths with loader.
func NewProgress(ctx context.Context, loader driving.FileLoader, paths []string) *Progress {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	s := styles.DefaultStyles()
	theme := s.Theme()

	return &Progress{
		ctx:     ctx,
		cancel:  cancel,
		loader:  loader,
		paths:   paths,
		styles:  s,
		keys:    keymap.DefaultKeyMap(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Title)),
		bar: progress.New(
			progress.WithGradient(string(theme.Primary), string(theme.Secondary)),
			progress.WithWidth(40),
		),
	}
}

// Init starts the load, the spinner and status polling.
func (m *Progress) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(), m.poll())
}

func (m *Progress) load() tea.Cmd {
	return func() tea.Msg {
		docs, err := m.loader.LoadFiles(m.ctx, m.paths...)
		return messages.LoadCompleted{Documents: docs, Err: err}
	}
}

func (m *Progress) poll() tea.Cmd {
	return tea.Tick(PollInterval, func(time.Time) tea.Msg {
		return messages.StatusPolled{Status: m.loader.Status()}
	})
}

// Update handles messages.
func (m *Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && !m.done {
			// The load returns once it observes the cancellation.
			m.cancelled = true
			m.cancel()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, maxBarWidth)
		return m, nil

	case messages.StatusPolled:
		m.status = msg.Status
		if m.done {
			return m, nil
		}
		return m, m.poll()

	case messages.LoadCompleted:
		m.done = true
		m.documents = msg.Documents
		m.err = msg.Err
		m.status = m.loader.Status()
		m.cancel()
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress view.
func (m *Progress) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Loading " + strings.Join(m.paths, ", ")))
	b.WriteString("\n\n")

	switch {
	case m.done && m.err != nil:
		b.WriteString(m.styles.Error.Render("Load failed: " + m.err.Error()))
		b.WriteString("\n")
		return b.String()
	case m.done:
		b.WriteString(m.styles.Success.Render(fmt.Sprintf("Loaded %d documents in %d batches",
			m.status.DocumentsWritten, m.status.BatchesWritten)))
		b.WriteString("\n")
		return b.String()
	case m.status.DocumentsRead == 0:
		b.WriteString(m.spinner.View() + " " + m.styles.Normal.Render("Discovering files..."))
	default:
		b.WriteString(m.bar.ViewAs(m.Percent()))
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d of %d documents, %d batches",
			m.status.DocumentsWritten, m.status.DocumentsRead, m.status.BatchesWritten)))
	}

	if m.cancelled {
		b.WriteString("\n" + m.styles.Muted.Render("Cancelling..."))
	}

	help := make([]string, 0, len(m.keys.ShortHelp()))
	for _, k := range m.keys.ShortHelp() {
		help = append(help, k.Help().Key+" "+k.Help().Desc)
	}
	b.WriteString("\n" + m.styles.Help.Render(strings.Join(help, " • ")) + "\n")
	return b.String()
}

// Percent returns the fraction of discovered documents written so far.
func (m *Progress) Percent() float64 {
	if m.status.DocumentsRead == 0 {
		return 0
	}
	return float64(m.status.DocumentsWritten) / float64(m.status.DocumentsRead)
}

// Result returns the outcome of the load once the program has exited.
func (m *Progress) Result() ([]*domain.Document, error) {
	if !m.done {
		return nil, errors.New("load did not complete")
	}
	return m.documents, m.err
}

// Run runs the progress view as a Bubbletea program and returns the load
// result.
func Run(ctx context.Context, loader driving.FileLoader, paths []string, opts ...tea.ProgramOption) ([]*domain.Document, error) {
	m := NewProgress(ctx, loader, paths)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}
	return m.Result()
}
