package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	scenarioStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectScenario modelState = iota
	stateInputDelay
	stateShowResult
)

type interactiveModel struct {
	err      error
	delay    textinput.Model
	result   []string
	scenario string
	selected int
	state    modelState
}

type scenarioDoneMsg struct {
	err   error
	lines []string
}

func newInteractiveModel(delay time.Duration) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "delay in milliseconds"
	ti.SetValue(strconv.Itoa(int(delay.Milliseconds())))
	ti.CharLimit = 6
	return &interactiveModel{
		delay: ti,
		state: stateSelectScenario,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateInputDelay || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case "up", "k":
			if m.state == stateSelectScenario && m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.state == stateSelectScenario && m.selected < len(scenarioNames)-1 {
				m.selected++
			}
		case "enter":
			switch m.state {
			case stateSelectScenario:
				m.scenario = scenarioNames[m.selected]
				m.state = stateInputDelay
				m.delay.Focus()
				return m, textinput.Blink
			case stateInputDelay:
				ms, err := strconv.Atoi(strings.TrimSpace(m.delay.Value()))
				if err != nil || ms <= 0 {
					m.err = fmt.Errorf("invalid delay %q", m.delay.Value())
					m.state = stateShowResult
					return m, nil
				}
				m.state = stateShowResult
				return m, runScenarioCmd(m.scenario, time.Duration(ms)*time.Millisecond)
			case stateShowResult:
				m.err = nil
				m.result = nil
				m.state = stateSelectScenario
			}
		case "esc":
			m.err = nil
			m.result = nil
			m.state = stateSelectScenario
		}

	case scenarioDoneMsg:
		m.err = msg.err
		m.result = msg.lines
	}

	if m.state == stateInputDelay {
		var cmd tea.Cmd
		m.delay, cmd = m.delay.Update(msg)
		return m, cmd
	}
	return m, nil
}

func runScenarioCmd(name string, delay time.Duration) tea.Cmd {
	return func() tea.Msg {
		lines, err := runScenario(name, delay)
		return scenarioDoneMsg{lines: lines, err: err}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("safecall scenarios"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectScenario:
		b.WriteString("Select a teardown timing:\n\n")
		for i, name := range scenarioNames {
			line := fmt.Sprintf("%-8s %s", name, scenarioDescription(name))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString(scenarioStyle.Render("  " + line))
			}
			b.WriteByte('\n')
		}
		b.WriteString(helpStyle.Render("\n↑/↓ select · enter confirm · q quit"))

	case stateInputDelay:
		b.WriteString(fmt.Sprintf("Scenario: %s\n\n", scenarioStyle.Render(m.scenario)))
		b.WriteString("Caller delay (ms):\n")
		b.WriteString(m.delay.View())
		b.WriteString(helpStyle.Render("\n\nenter run · esc back"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else if m.result == nil {
			b.WriteString("Running...")
		} else {
			for _, line := range m.result {
				b.WriteString(resultStyle.Render(line))
				b.WriteByte('\n')
			}
		}
		b.WriteString(helpStyle.Render("\nenter/esc back · q quit"))
	}

	b.WriteByte('\n')
	return b.String()
}

func runInteractive(delay time.Duration) error {
	p := tea.NewProgram(newInteractiveModel(delay))
	_, err := p.Run()
	return err
}
