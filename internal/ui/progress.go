package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"krait/internal/linter"
)

// maxActive bounds the rows of in-flight files shown under the header.
const maxActive = 8

type progressModel struct {
	title   string
	events  <-chan linter.Event
	spinner spinner.Model
	prog    progress.Model
	status  map[string]linter.Status
	active  map[string]struct{}
	total   int
	counts  map[linter.Status]int
	diags   int
	width   int
	done    bool
}

type eventMsg linter.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders lint progress
// fed by events. The model quits once events is closed.
func NewProgressModel(title string, events <-chan linter.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		status:  make(map[string]linter.Status),
		active:  make(map[string]struct{}),
		counts:  make(map[linter.Status]int),
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(linter.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if m.total == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d files)", m.title, m.finished(), m.total)
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 10
	nameWidth := max(m.width-statusWidth-4, 20)
	active := make([]string, 0, len(m.active))
	for path := range m.active {
		active = append(active, path)
	}
	slices.Sort(active)
	for i, path := range active {
		if i == maxActive {
			fmt.Fprintf(&b, "  %*s and %d more\n", statusWidth, "", len(active)-maxActive)
			break
		}
		status := string(m.status[path])
		fmt.Fprintf(&b, "  %s %s\n", styleStatus(status).Render(fmt.Sprintf("%*s", statusWidth, status)), truncate(path, nameWidth))
	}

	fmt.Fprintf(&b, "\n  %s  %s  %s\n",
		styleStatus("done").Render(fmt.Sprintf("%d linted", m.counts[linter.StatusDone])),
		styleStatus("cached").Render(fmt.Sprintf("%d cached", m.counts[linter.StatusCached])),
		styleStatus("error").Render(fmt.Sprintf("%d unreadable", m.counts[linter.StatusError])))
	fmt.Fprintf(&b, "  %d diagnostics\n\n", m.diags)
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) finished() int {
	return m.counts[linter.StatusDone] + m.counts[linter.StatusCached] + m.counts[linter.StatusError]
}

func (m *progressModel) applyEvent(ev linter.Event) tea.Cmd {
	if _, seen := m.status[ev.Path]; !seen {
		m.total++
	}
	m.status[ev.Path] = ev.Status
	switch ev.Status {
	case linter.StatusLinting:
		m.active[ev.Path] = struct{}{}
		return nil
	case linter.StatusQueued:
		return nil
	}
	delete(m.active, ev.Path)
	m.counts[ev.Status]++
	m.diags += ev.Diagnostics
	return m.prog.SetPercent(float64(m.finished()) / float64(m.total))
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "linting":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
