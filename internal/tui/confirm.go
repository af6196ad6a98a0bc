package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel is a yes/no question. Anything but "y" declines.
type ConfirmModel struct {
	prompt   string
	answered bool
	yes      bool
}

// NewConfirmModel creates a confirmation prompt.
func NewConfirmModel(prompt string) ConfirmModel {
	return ConfirmModel{prompt: prompt}
}

// Init implements tea.Model.
func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "y", "Y":
			m.answered, m.yes = true, true
			return m, tea.Quit
		case "n", "N", "enter", "esc", "q", "ctrl+c":
			m.answered, m.yes = true, false
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m ConfirmModel) View() string {
	if m.answered {
		answer := "no"
		if m.yes {
			answer = "yes"
		}
		return m.prompt + " " + MutedStyle.Render(answer) + "\n"
	}
	return RenderWarning(m.prompt) + " " + RenderMuted("[y/N]") + " "
}

// Confirmed reports whether the operator answered yes.
func (m ConfirmModel) Confirmed() bool {
	return m.yes
}

// RunConfirm asks prompt and reports the answer.
func RunConfirm(prompt string) (bool, error) {
	finalModel, err := tea.NewProgram(NewConfirmModel(prompt)).Run()
	if err != nil {
		return false, fmt.Errorf("failed to run prompt: %w", err)
	}
	return finalModel.(ConfirmModel).Confirmed(), nil
}
