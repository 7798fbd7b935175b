// Package tui implements the live dashboard behind "ppg aggregate --watch":
// a bubbletea program that polls the kernel's reconciled read model and
// repaints a scrollable worktree/agent tree, mirroring the teacher's
// feed.Model polling-and-repaint shape but driven by worktrees and agents
// instead of beads events.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ppgtool/ppg/internal/kernel"
	"github.com/ppgtool/ppg/internal/style"
)

// pollInterval is how often the dashboard re-reconciles against the mux
// and rewrites the manifest (spec §9: "expose its quiescence threshold as
// a configuration knob" — the poll cadence is the dashboard-side analog).
const pollInterval = 2 * time.Second

// KeyMap binds the dashboard's input handling.
type KeyMap struct {
	Quit    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Up      key.Binding
	Down    key.Binding
}

// DefaultKeyMap is the dashboard's standard binding set.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh now")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
	}
}

// ShortHelp and FullHelp satisfy help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Refresh, k.Help, k.Quit}}
}

// Model is the dashboard's bubbletea model.
type Model struct {
	kernel *kernel.Kernel

	width, height int
	viewport      viewport.Model
	keys          KeyMap
	help          help.Model
	showHelp      bool

	agg     *kernel.AggregateResult
	err     error
	lastErr string
}

// New builds a dashboard Model over k.
func New(k *kernel.Kernel) *Model {
	h := help.New()
	h.ShowAll = false
	return &Model{
		kernel:   k,
		viewport: viewport.New(0, 0),
		keys:     DefaultKeyMap(),
		help:     h,
	}
}

type tickMsg time.Time

type aggregateMsg struct {
	agg *kernel.AggregateResult
	err error
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.reconcile(), tea.SetWindowTitle("ppg aggregate"))
}

func (m *Model) reconcile() tea.Cmd {
	return func() tea.Msg {
		agg, err := m.kernel.Aggregate(context.Background())
		return aggregateMsg{agg: agg, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		case key.Matches(msg, m.keys.Refresh):
			return m, m.reconcile()
		case key.Matches(msg, m.keys.Up):
			m.viewport.LineUp(1)
		case key.Matches(msg, m.keys.Down):
			m.viewport.LineDown(1)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 3

	case aggregateMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		} else {
			m.agg = msg.agg
			m.lastErr = ""
		}
		m.viewport.SetContent(m.renderTree())
		return m, tick()

	case tickMsg:
		return m, m.reconcile()
	}

	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("ppg aggregate") + "\n")
	b.WriteString(m.viewport.View())
	if m.lastErr != "" {
		b.WriteString("\n" + style.ErrorStyle.Render(m.lastErr))
	}
	if m.showHelp {
		b.WriteString("\n" + m.help.View(m.keys))
	}
	return b.String()
}

func (m *Model) renderTree() string {
	if m.agg == nil {
		return "reconciling..."
	}
	var lines []string
	for _, v := range m.agg.Worktrees {
		lines = append(lines, fmt.Sprintf("%s  %-24s %s",
			v.Worktree.ID, v.Worktree.Branch, style.StatusStyle(string(v.Lifecycle)).Render(string(v.Lifecycle))))
		for _, a := range v.Worktree.Agents {
			lines = append(lines, fmt.Sprintf("  └─ %s  %-10s %s",
				a.ID, a.AgentType, style.StatusStyle(string(a.Status)).Render(string(a.Status))))
		}
	}
	for _, a := range m.agg.MasterAgents {
		lines = append(lines, fmt.Sprintf("master  %s  %-10s %s",
			a.ID, a.AgentType, style.StatusStyle(string(a.Status)).Render(string(a.Status))))
	}
	if len(lines) == 0 {
		return style.DimStyle.Render("no worktrees")
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Run launches the dashboard program and blocks until the user quits.
func Run(k *kernel.Kernel) error {
	p := tea.NewProgram(New(k), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
