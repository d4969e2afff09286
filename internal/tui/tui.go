package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	appLog "evcal/internal/log"
	"evcal/internal/model"
	"evcal/internal/shell"
	"evcal/internal/store"
)

const refreshInterval = 5 * time.Second

// maxOutputLines bounds the command output pane.
const maxOutputLines = 12

type tickMsg time.Time

// Model is the bubbletea model: a table of active events above the output
// of the last command and a command line. Commands go through the same
// dispatcher as the line shell.
type Model struct {
	store *store.Store
	shell *shell.Shell

	input   textinput.Model
	events  []model.Event
	history int
	output  []string
	width   int
	done    bool
}

func New(st *store.Store, sh *shell.Shell) Model {
	ti := textinput.New()
	ti.Placeholder = `add --title Lunch --start "01/06/2025 12:00 PM" --end "01/06/2025 1:00 PM"`
	ti.Prompt = "> "
	ti.CharLimit = 512
	ti.Width = 80
	ti.Focus()

	m := Model{store: st, shell: sh, input: ti, width: 100}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) refresh() {
	m.events = m.store.Active()
	_, m.history = m.store.Len()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 20)
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if line == "" {
		return m, nil
	}

	var buf bytes.Buffer
	quit := m.shell.Exec(line, &buf)
	m.output = append([]string{"> " + line}, splitLines(buf.String())...)
	if len(m.output) > maxOutputLines {
		m.output = append(m.output[:maxOutputLines-1], "...")
	}
	m.refresh()

	if quit {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func (m Model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "evcal  %d active, %d archived\n\n", len(m.events), m.history)

	if len(m.events) == 0 {
		b.WriteString("  no upcoming events\n")
	} else {
		b.WriteString(truncate(fmt.Sprintf("  %-19s  %-19s  %-8s  %s", "START", "END", "PRIORITY", "TITLE"), m.width))
		b.WriteByte('\n')
		for _, ev := range m.events {
			row := fmt.Sprintf("  %-19s  %-19s  %-8s  %s", model.FormatTimestamp(ev.Start), model.FormatTimestamp(ev.End), ev.Priority, ev.Title)
			if ev.Location != "" {
				row += " @ " + ev.Location
			}
			b.WriteString(truncate(row, m.width))
			b.WriteByte('\n')
		}
	}

	b.WriteString("\n" + strings.Repeat("-", max(min(m.width, 100), 10)) + "\n")
	for _, l := range m.output {
		b.WriteString(truncate(l, m.width))
		b.WriteByte('\n')
	}
	b.WriteString("\n" + m.input.View() + "\n")
	b.WriteString("enter: run  esc/ctrl+c: quit  help: commands\n")
	return b.String()
}

func truncate(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}

// Run shows the full-screen interface until the user quits or ctx is done.
func Run(ctx context.Context, st *store.Store, sh *shell.Shell) error {
	p := tea.NewProgram(New(st, sh), tea.WithAltScreen())

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			p.Quit()
		case <-stop:
		}
	}()

	if _, err := p.Run(); err != nil {
		appLog.Error("tui exited with error", err)
		return err
	}
	return nil
}
