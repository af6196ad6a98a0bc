package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aetherengine/aether-cli/internal/pipeline"
	"github.com/aetherengine/aether-cli/pkg/api"
)

// maxNotices is how many progress notices stay on screen
const maxNotices = 5

// TaskState represents the current status of a step.
type TaskState int

const (
	TaskStatePending TaskState = iota
	TaskStateRunning
	TaskStateSuccess
	TaskStateFailed
	TaskStateSkipped
)

type step struct {
	stage    pipeline.Stage
	state    TaskState
	err      error
	started  time.Time
	duration time.Duration
}

// StageEventMsg carries a pipeline event into the progress view
type StageEventMsg pipeline.Event

// NoticeMsg is a free-form progress line, e.g. from the build runner
type NoticeMsg string

// ConfirmRequestMsg asks the operator a yes/no question. The answer is sent
// on Reply, which must be buffered.
type ConfirmRequestMsg struct {
	Prompt string
	Reply  chan<- bool
}

// FinishedMsg ends the progress view
type FinishedMsg struct {
	Err      error
	Declined bool
}

// DeployProgressModel renders the pipeline stages as a checklist.
type DeployProgressModel struct {
	title       string
	steps       []step
	spinner     spinner.Model
	notices     []string
	confirm     *ConfirmRequestMsg
	done        bool
	declined    bool
	interrupted bool
	err         error
}

// NewDeployProgressModel creates a checklist of every pipeline stage.
func NewDeployProgressModel(title string) DeployProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	steps := make([]step, len(pipeline.Stages))
	for i, stage := range pipeline.Stages {
		steps[i] = step{stage: stage}
	}
	return DeployProgressModel{title: title, steps: steps, spinner: s}
}

// Init starts the spinner.
func (m DeployProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles stage events, notices, confirmation keys and completion.
func (m DeployProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirm != nil {
			switch msg.String() {
			case "y", "Y":
				m.answer(true)
			case "n", "N", "enter", "esc":
				m.answer(false)
			case "ctrl+c":
				m.answer(false)
				m.interrupted = true
				return m, tea.Quit
			}
			return m, nil
		}
		if msg.String() == "ctrl+c" {
			m.interrupted = true
			return m, tea.Quit
		}

	case StageEventMsg:
		m.applyEvent(pipeline.Event(msg))

	case NoticeMsg:
		m.notices = append(m.notices, string(msg))
		if len(m.notices) > maxNotices {
			m.notices = m.notices[len(m.notices)-maxNotices:]
		}

	case ConfirmRequestMsg:
		m.confirm = &msg

	case FinishedMsg:
		m.done = true
		m.err = msg.Err
		m.declined = msg.Declined
		if msg.Declined {
			for i := range m.steps {
				if m.steps[i].state == TaskStatePending {
					m.steps[i].state = TaskStateSkipped
				}
			}
		}
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *DeployProgressModel) answer(ok bool) {
	m.confirm.Reply <- ok
	m.confirm = nil
}

func (m *DeployProgressModel) applyEvent(ev pipeline.Event) {
	for i := range m.steps {
		if m.steps[i].stage != ev.Stage {
			continue
		}
		s := &m.steps[i]
		switch ev.Status {
		case pipeline.StatusStarted:
			s.state = TaskStateRunning
			s.started = time.Now()
		case pipeline.StatusSucceeded:
			s.state = TaskStateSuccess
			s.duration = time.Since(s.started)
		case pipeline.StatusSkipped:
			s.state = TaskStateSkipped
		case pipeline.StatusFailed:
			s.state = TaskStateFailed
			s.err = ev.Err
			s.duration = time.Since(s.started)
		}
		return
	}
}

// View renders the checklist.
func (m DeployProgressModel) View() string {
	var b strings.Builder
	b.WriteString(RenderTitle(m.title))
	b.WriteString("\n")

	for _, s := range m.steps {
		var prefix string
		style := lipgloss.NewStyle()

		switch s.state {
		case TaskStatePending:
			prefix = MutedStyle.Render(MarkPending)
			style = MutedStyle
		case TaskStateRunning:
			prefix = m.spinner.View()
		case TaskStateSuccess:
			prefix = SuccessStyle.Render(MarkSuccess)
		case TaskStateFailed:
			prefix = ErrorStyle.Render(MarkFailed)
			style = ErrorStyle
		case TaskStateSkipped:
			prefix = WarningStyle.Render(MarkSkipped)
			style = MutedStyle
		}

		b.WriteString(prefix + " " + style.Render(s.stage.Title()))
		if s.state == TaskStateSuccess || s.state == TaskStateFailed {
			b.WriteString(MutedStyle.Render(fmt.Sprintf(" (%s)", s.duration.Round(time.Millisecond))))
		}
		b.WriteString("\n")
	}

	if len(m.notices) > 0 && !m.done {
		b.WriteString("\n")
		for _, n := range m.notices {
			b.WriteString(MutedStyle.Render("  "+n) + "\n")
		}
	}

	if m.confirm != nil {
		b.WriteString("\n" + WarningStyle.Render(m.confirm.Prompt) + " " + MutedStyle.Render("[y/N]") + "\n")
	}

	return b.String()
}

// Interrupted reports whether the operator pressed ctrl+c.
func (m DeployProgressModel) Interrupted() bool {
	return m.interrupted
}

// ProgressHooks connect a pipeline run to the progress view.
type ProgressHooks struct {
	Listener pipeline.Listener
	Notify   func(string)
	Confirm  pipeline.ConfirmFunc
}

// RunDeployProgress runs fn while rendering its stages. ctx handed to fn is
// cancelled when the operator interrupts the view.
func RunDeployProgress(ctx context.Context, title string, fn func(ctx context.Context, hooks ProgressHooks) (*pipeline.Result, error)) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewDeployProgressModel(title))

	hooks := ProgressHooks{
		Listener: func(ev pipeline.Event) { p.Send(StageEventMsg(ev)) },
		Notify:   func(s string) { p.Send(NoticeMsg(s)) },
		Confirm: func(app *api.Application) (bool, error) {
			reply := make(chan bool, 1)
			p.Send(ConfirmRequestMsg{
				Prompt: fmt.Sprintf("Application %q already exists. Deploy a new version?", app.Name),
				Reply:  reply,
			})
			select {
			case ok := <-reply:
				return ok, nil
			case <-ctx.Done():
				return false, ctx.Err()
			}
		},
	}

	type outcome struct {
		res *pipeline.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := fn(ctx, hooks)
		p.Send(FinishedMsg{Err: err, Declined: res != nil && res.Declined})
		done <- outcome{res, err}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("progress view error: %w", err)
	}

	cancel()
	out := <-done
	return out.res, out.err
}
