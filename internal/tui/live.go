// Package tui is a live terminal viewer: it steps the relaxation engine on a
// frame tick and renders the scene next to convergence statistics.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/tscircuit/fastforce/internal/engine"
	"github.com/tscircuit/fastforce/internal/problem"
	"github.com/tscircuit/fastforce/internal/viz"
)

const (
	canvasWidth  = 72
	canvasHeight = 26
	historyCap   = 240
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	solvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type tickMsg time.Time

// Model drives one relaxation run interactively.
type Model struct {
	name string
	prob *problem.Problem
	eng  *engine.Engine

	initial []problem.Point
	history []float64

	stepsPerFrame int
	paused        bool
}

// NewModel wraps a problem for interactive viewing.
func NewModel(name string, p *problem.Problem) Model {
	initial := make([]problem.Point, len(p.Points))
	for i, pt := range p.Points {
		initial[i] = *pt
	}
	return Model{
		name:          name,
		prob:          p,
		eng:           engine.New(p),
		initial:       initial,
		history:       make([]float64, 0, historyCap),
		stepsPerFrame: 1,
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "r":
			m.reset()
		case "+", "=":
			if m.stepsPerFrame < 64 {
				m.stepsPerFrame *= 2
			}
		case "-", "_":
			if m.stepsPerFrame > 1 {
				m.stepsPerFrame /= 2
			}
		}
	case tickMsg:
		if !m.paused && !m.eng.Solved() && m.eng.Iterations() < m.prob.Schedule.MaxSteps {
			for i := 0; i < m.stepsPerFrame; i++ {
				m.eng.Step()
				m.history = append(m.history, m.eng.MaxMove())
				if m.eng.Solved() || m.eng.Iterations() >= m.prob.Schedule.MaxSteps {
					break
				}
			}
			if len(m.history) > historyCap {
				m.history = m.history[len(m.history)-historyCap:]
			}
		}
		return m, tick()
	}
	return m, nil
}

// reset restores the starting positions and swaps in a fresh engine, so rest
// lengths and angles are recaptured from the original pose.
func (m *Model) reset() {
	for i, pt := range m.prob.Points {
		*pt = m.initial[i]
	}
	m.eng = engine.New(m.prob)
	m.history = m.history[:0]
	m.paused = false
}

func (m Model) View() string {
	canvas := viz.Render(m.eng.Visualize(), canvasWidth, canvasHeight)

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	status := "RUNNING"
	style := valueStyle
	switch {
	case m.eng.Solved():
		status, style = "SOLVED", solvedStyle
	case m.eng.Iterations() >= m.prob.Schedule.MaxSteps:
		status, style = "STEP LIMIT", pausedStyle
	case m.paused:
		status, style = "PAUSED", pausedStyle
	}
	s.WriteString(style.Render(status) + "\n\n")

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(5),
			asciigraph.Width(30),
			asciigraph.Caption("max move"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Iterations") +
		valueStyle.Render(fmt.Sprintf("%d / %d", m.eng.Iterations(), m.prob.Schedule.MaxSteps)) + "\n")
	s.WriteString(labelStyle.Render("Max move") +
		valueStyle.Render(fmt.Sprintf("%.5f", m.eng.MaxMove())) + "\n")
	s.WriteString(labelStyle.Render("Progress") +
		valueStyle.Render(progressBar(m.eng.Progress(), 20)) + "\n")
	s.WriteString(labelStyle.Render("Speed") +
		valueStyle.Render(fmt.Sprintf("%d step/frame", m.stepsPerFrame)) + "\n")
	s.WriteString(labelStyle.Render("Points") +
		valueStyle.Render(fmt.Sprintf("%d (%d segments)", len(m.prob.Points), len(m.prob.Segments))) + "\n")

	s.WriteString(helpStyle.Render("\nSP:Pause  R:Reset  +/-:Speed  Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(canvas.String()),
		statsStyle.Render(s.String()),
	)
}

func progressBar(frac float64, width int) string {
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}

// Run starts the viewer and blocks until quit.
func Run(name string, p *problem.Problem) error {
	_, err := tea.NewProgram(NewModel(name, p), tea.WithAltScreen()).Run()
	return err
}
