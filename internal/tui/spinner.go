package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// DoneMsg signals that the spinner operation has completed.
type DoneMsg struct {
	Success bool
	Message string
}

// SpinnerModel shows one in-flight operation.
type SpinnerModel struct {
	spinner      spinner.Model
	message      string
	done         bool
	success      bool
	finalMessage string
}

// NewSpinnerModel creates a new spinner model with the given message.
func NewSpinnerModel(message string) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return SpinnerModel{spinner: s, message: message}
}

// Init starts the animation.
func (m SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the spinner state.
func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.finalMessage = "Cancelled"
			return m, tea.Quit
		}

	case DoneMsg:
		m.done = true
		m.success = msg.Success
		m.finalMessage = msg.Message
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the spinner to a string.
func (m SpinnerModel) View() string {
	if m.done {
		if m.finalMessage == "" {
			return ""
		}
		if m.success {
			return RenderSuccess(m.finalMessage) + "\n"
		}
		return RenderError(m.finalMessage) + "\n"
	}

	return m.spinner.View() + " " + m.message
}

// IsSuccess returns whether the spinner completed successfully.
func (m SpinnerModel) IsSuccess() bool {
	return m.success
}

// RunSpinnerWithTask executes task while showing a spinner and returns the
// task's error.
func RunSpinnerWithTask(message string, task func() error) error {
	p := tea.NewProgram(NewSpinnerModel(message))

	done := make(chan error, 1)
	go func() {
		err := task()
		if err != nil {
			p.Send(DoneMsg{Success: false, Message: fmt.Sprintf("%s: failed", message)})
		} else {
			p.Send(DoneMsg{Success: true, Message: message})
		}
		done <- err
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("spinner error: %w", err)
	}

	return <-done
}
