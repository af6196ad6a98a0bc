package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ValidationFunc returns an error message for an invalid value, or "".
type ValidationFunc func(value string) string

type formField struct {
	label           string
	input           textinput.Model
	validate        ValidationFunc
	validationError string
}

// CredentialsModel collects an email and a password.
type CredentialsModel struct {
	title     string
	fields    []formField
	focus     int
	done      bool
	submitted bool
}

const (
	fieldEmail = iota
	fieldPassword
)

// NewCredentialsModel creates the form. email pre-fills the first field.
func NewCredentialsModel(title, email string) CredentialsModel {
	emailInput := textinput.New()
	emailInput.Placeholder = "you@example.com"
	emailInput.CharLimit = 254
	emailInput.Width = 40
	emailInput.SetValue(email)

	passwordInput := textinput.New()
	passwordInput.Placeholder = "password"
	passwordInput.CharLimit = 128
	passwordInput.Width = 40
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '•'

	m := CredentialsModel{
		title: title,
		fields: []formField{
			{label: "Email", input: emailInput, validate: validateEmail},
			{label: "Password", input: passwordInput, validate: validatePassword},
		},
	}
	if email != "" {
		m.focus = fieldPassword
	}
	m.fields[m.focus].input.Focus()
	return m
}

func validateEmail(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "Email is required"
	}
	if !strings.Contains(v, "@") {
		return "Email must contain @"
	}
	return ""
}

func validatePassword(v string) string {
	if v == "" {
		return "Password is required"
	}
	return ""
}

// Init implements tea.Model.
func (m CredentialsModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m CredentialsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.done = true
			m.submitted = false
			return m, tea.Quit

		case "tab", "shift+tab", "enter", "up", "down":
			s := key.String()
			f := &m.fields[m.focus]
			f.validationError = f.validate(f.input.Value())

			if s == "enter" && m.focus == len(m.fields)-1 {
				if m.validateAll() {
					m.done = true
					m.submitted = true
					return m, tea.Quit
				}
				return m, nil
			}

			if s == "up" || s == "shift+tab" {
				m.focus = (m.focus + len(m.fields) - 1) % len(m.fields)
			} else {
				m.focus = (m.focus + 1) % len(m.fields)
			}

			var cmd tea.Cmd
			for i := range m.fields {
				if i == m.focus {
					cmd = m.fields[i].input.Focus()
				} else {
					m.fields[i].input.Blur()
				}
			}
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	return m, cmd
}

func (m *CredentialsModel) validateAll() bool {
	ok := true
	for i := range m.fields {
		f := &m.fields[i]
		f.validationError = f.validate(f.input.Value())
		if f.validationError != "" {
			ok = false
		}
	}
	return ok
}

// View implements tea.Model.
func (m CredentialsModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(RenderTitle(m.title))
		b.WriteString("\n")
	}

	for i, f := range m.fields {
		label := MutedStyle.Render(f.label)
		if i == m.focus {
			label = HeaderStyle.Render(f.label)
		}
		b.WriteString(label + ":\n")
		b.WriteString(f.input.View() + "\n")
		if f.validationError != "" {
			b.WriteString(ErrorStyle.Render("  "+f.validationError) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(MutedStyle.Render("(Tab to navigate, Enter to submit, Esc to cancel)"))
	b.WriteString("\n")
	return b.String()
}

// Values returns the email and password, or empty strings if cancelled.
func (m CredentialsModel) Values() (email, password string) {
	if !m.submitted {
		return "", ""
	}
	return strings.TrimSpace(m.fields[fieldEmail].input.Value()), m.fields[fieldPassword].input.Value()
}

// IsSubmitted returns true if the form was submitted.
func (m CredentialsModel) IsSubmitted() bool {
	return m.submitted
}

// ErrCancelled is returned when the operator abandons a prompt.
var ErrCancelled = errors.New("cancelled")

// RunCredentialsForm prompts for an email and a password.
func RunCredentialsForm(title, email string) (string, string, error) {
	finalModel, err := tea.NewProgram(NewCredentialsModel(title, email)).Run()
	if err != nil {
		return "", "", fmt.Errorf("failed to run form: %w", err)
	}

	m := finalModel.(CredentialsModel)
	if !m.IsSubmitted() {
		return "", "", ErrCancelled
	}
	e, p := m.Values()
	return e, p, nil
}
