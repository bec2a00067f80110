// Package ui renders validation progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ebacheck/internal/engine"
)

type progressModel struct {
	title   string
	events  <-chan engine.Event
	spinner spinner.Model
	prog    progress.Model
	items   []stageItem
	width   int
	done    bool
}

type stageItem struct {
	stage   engine.Stage
	status  string
	done    int
	total   int
	elapsed string
}

type eventMsg engine.Event
type doneMsg struct{}

// веса стадий в общем прогрессе
var stageWeights = map[engine.Stage]float64{
	engine.StageNodes:  0.6,
	engine.StageIndex:  0.1,
	engine.StageGroups: 0.3,
}

// NewProgressModel returns a Bubble Tea model that renders run progress.
// The model quits when events is closed.
func NewProgressModel(title string, events <-chan engine.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	stages := []engine.Stage{engine.StageNodes, engine.StageIndex, engine.StageGroups}
	items := make([]stageItem, 0, len(stages))
	for _, st := range stages {
		items = append(items, stageItem{stage: st, status: "queued"})
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(engine.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
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
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := truncate(m.title, m.width-4)
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	for _, item := range m.items {
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%10s", item.status))
		line := fmt.Sprintf("  %s %-7s", statusStyled, item.stage)
		if item.total > 0 {
			line += fmt.Sprintf(" %d/%d", item.done, item.total)
		}
		if item.elapsed != "" {
			line += " " + item.elapsed
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(m.percent()))
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

func (m *progressModel) applyEvent(ev engine.Event) tea.Cmd {
	if ev.Status == engine.StatusCanceled {
		for i := range m.items {
			if m.items[i].status != "done" {
				m.items[i].status = "canceled"
			}
		}
		return nil
	}
	for i := range m.items {
		item := &m.items[i]
		if item.stage != ev.Stage {
			continue
		}
		item.done, item.total = ev.Done, ev.Total
		item.status = statusLabel(ev.Status)
		if ev.Elapsed > 0 {
			item.elapsed = ev.Elapsed.Round(time.Millisecond).String()
		}
	}
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	total := 0.0
	for _, item := range m.items {
		w := stageWeights[item.stage]
		switch {
		case item.status == "done":
			total += w
		case item.total > 0:
			total += w * float64(item.done) / float64(item.total)
		}
	}
	if total > 1 {
		return 1
	}
	return total
}

func statusLabel(status engine.Status) string {
	switch status {
	case engine.StatusDone:
		return "done"
	case engine.StatusCanceled:
		return "canceled"
	default:
		return "checking"
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "canceled":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "checking":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
