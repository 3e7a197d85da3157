package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cafebrew/cafe-runtime/proc"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	phaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateReady modelState = iota
	stateRunning
	stateDone
	stateFailed
)

type interactiveModel struct {
	err      error
	backend  string
	heapKB   uint
	surface  backend
	cleanup  func()
	runner   *runner
	scenario *Scenario
	results  []PhaseResult
	bar      progress.Model
	phase    int
	state    modelState
}

type phaseDoneMsg struct {
	result PhaseResult
	index  int
}

type failedMsg struct{ err error }

func newInteractiveModel(backendName string, heapKB uint, sc *Scenario) *interactiveModel {
	return &interactiveModel{
		backend:  backendName,
		heapKB:   heapKB,
		scenario: sc,
		bar:      progress.New(progress.WithDefaultGradient()),
		state:    stateReady,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) start() tea.Cmd {
	surface, cleanup, err := newBackend(m.backend, m.heapKB)
	if err != nil {
		return func() tea.Msg { return failedMsg{err} }
	}
	if err := proc.Init(surface); err != nil {
		cleanup()
		return func() tea.Msg { return failedMsg{err} }
	}
	m.surface = surface
	m.cleanup = cleanup
	m.runner = newRunner(surface, m.scenario.Seed)
	m.state = stateRunning
	m.phase = 0
	return m.phaseCmd(0)
}

// phaseCmd runs one phase inside the panic boundary and reports back.
func (m *interactiveModel) phaseCmd(i int) tea.Cmd {
	return func() tea.Msg {
		var res PhaseResult
		err := proc.Run(func() {
			res = m.runner.runPhase(m.scenario.Phases[i])
		})
		if err != nil {
			return failedMsg{err}
		}
		return phaseDoneMsg{index: i, result: res}
	}
}

func (m *interactiveModel) teardown() {
	if m.runner != nil {
		m.runner.close()
		m.runner = nil
	}
	if proc.Running() {
		_ = proc.Shutdown()
	}
	if m.cleanup != nil {
		m.cleanup()
		m.cleanup = nil
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.teardown()
			return m, tea.Quit

		case "enter":
			if m.state == stateReady {
				return m, m.start()
			}
		}

	case phaseDoneMsg:
		m.results = append(m.results, msg.result)
		m.phase = msg.index + 1
		if m.phase < len(m.scenario.Phases) {
			return m, m.phaseCmd(m.phase)
		}
		m.state = stateDone

	case failedMsg:
		m.err = msg.err
		m.state = stateFailed

	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 8
		if m.bar.Width > 60 {
			m.bar.Width = 60
		}
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Heap Workload"))
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf("%s on %s (%d KB)\n\n", m.scenario.Name, m.backend, m.heapKB))

	switch m.state {
	case stateReady:
		b.WriteString(fmt.Sprintf("%d phases queued:\n\n", len(m.scenario.Phases)))
		for _, p := range m.scenario.Phases {
			b.WriteString(fmt.Sprintf("  %s %s\n",
				phaseStyle.Render(p.Name),
				dimStyle.Render(fmt.Sprintf("%d ins / %d del / %d get, %dB values",
					p.Inserts, p.Deletes, p.Lookups, p.ValueSize))))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter start • q quit"))

	case stateRunning, stateDone, stateFailed:
		frac := float64(m.phase) / float64(len(m.scenario.Phases))
		b.WriteString(m.bar.ViewAs(frac))
		b.WriteString("\n\n")

		for _, res := range m.results {
			b.WriteString(fmt.Sprintf("  %s %s\n",
				phaseStyle.Render(fmt.Sprintf("%-12s", res.Name)),
				dimStyle.Render(fmt.Sprintf("%d ins / %d del / %d get (%d hits, %d exhausted) in %s",
					res.Inserts, res.Deletes, res.Lookups,
					res.Hits, res.Exhausted, res.Duration.Round(time.Microsecond)))))
		}

		switch m.state {
		case stateRunning:
			b.WriteString("\n")
			b.WriteString(fmt.Sprintf("  running %s...\n", phaseStyle.Render(m.scenario.Phases[m.phase].Name)))

		case stateDone:
			st := m.runner.adapter.Stats()
			b.WriteString("\n")
			b.WriteString(resultStyle.Render(fmt.Sprintf(
				"  done: %d bytes live, %d allocs, %d frees, %d exhaustion failures",
				st.LiveBytes, st.Allocs, st.Frees, st.Fails)))
			b.WriteString("\n")
			b.WriteString(resultStyle.Render(fmt.Sprintf(
				"  surface: %d bytes free, table: %d entries in %d slots",
				m.surface.FreeBytes(), m.runner.table.Len(), m.runner.table.Slots())))
			b.WriteString("\n\n")
			b.WriteString(helpStyle.Render("q quit"))

		case stateFailed:
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
			if rec, ok := proc.LastPanic(); ok {
				b.WriteString("\n")
				b.WriteString(errorStyle.Render("  panic: " + rec.Message))
			}
			b.WriteString("\n\n")
			b.WriteString(helpStyle.Render("q quit"))
		}
	}

	return b.String()
}

func runInteractive(backendName string, heapKB uint, sc *Scenario) error {
	p := tea.NewProgram(newInteractiveModel(backendName, heapKB, sc), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
