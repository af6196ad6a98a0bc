package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// SelectModel is a selection menu with arrow-key navigation.
type SelectModel struct {
	title    string
	choices  []string
	cursor   int
	selected int
	done     bool
}

// NewSelectModel creates a new selection menu with the given choices.
func NewSelectModel(title string, choices []string) SelectModel {
	return SelectModel{title: title, choices: choices, selected: -1}
}

// Init implements tea.Model.
func (m SelectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter":
			m.selected = m.cursor
			m.done = true
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			m.selected = -1
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m SelectModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(m.title) + "\n\n")
	for i, choice := range m.choices {
		b.WriteString(RenderListItem(choice, i == m.cursor) + "\n")
	}
	b.WriteString("\n" + MutedStyle.Render("(up/down to move, Enter to select, q to quit)") + "\n")
	return b.String()
}

// Selected returns the index of the selected choice, or -1 if cancelled.
func (m SelectModel) Selected() int {
	return m.selected
}

// RunSelect shows the menu and returns the selected index, or ErrCancelled.
func RunSelect(title string, choices []string) (int, error) {
	if len(choices) == 0 {
		return -1, fmt.Errorf("no choices provided")
	}

	finalModel, err := tea.NewProgram(NewSelectModel(title, choices)).Run()
	if err != nil {
		return -1, fmt.Errorf("failed to run select menu: %w", err)
	}

	m, ok := finalModel.(SelectModel)
	if !ok {
		return -1, fmt.Errorf("unexpected model type")
	}
	if m.Selected() < 0 {
		return -1, ErrCancelled
	}
	return m.Selected(), nil
}
