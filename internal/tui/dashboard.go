package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/aetherengine/aether-cli/internal/session"
	"github.com/aetherengine/aether-cli/pkg/api"
	"github.com/aetherengine/aether-cli/pkg/logtail"
)

const (
	// maxLogLines bounds the log buffer kept by the Logs tab
	maxLogLines = 1000

	// fetchTimeout bounds one control-plane call made by the dashboard
	fetchTimeout = 10 * time.Second

	// statusDeployments is how many deployments the Status tab lists
	statusDeployments = 5
)

// Tab is a dashboard page
type Tab int

const (
	TabApps Tab = iota
	TabLogs
	TabStatus
)

var tabNames = []string{"Apps", "Logs", "Status"}

func (t Tab) String() string {
	return tabNames[t]
}

// DashboardClient is the part of the control-plane client the dashboard uses
type DashboardClient interface {
	session.AppLister
	logtail.Fetcher
	ListDeployments(ctx context.Context, appID uuid.UUID) ([]api.Deployment, error)
}

type appsLoadedMsg struct {
	apps []api.Application
	err  error
}

type deploymentsLoadedMsg struct {
	appID       uuid.UUID
	deployments []api.Deployment
	err         error
}

// logsTickMsg and logsFetchedMsg carry the follow generation so that a
// superseded follow loop stops on its next message
type logsTickMsg struct {
	gen int
}

type logsFetchedMsg struct {
	gen   int
	lines []string
	err   error
}

// DashboardModel is the interactive dashboard. All long-lived state lives in
// the session; the model only holds what the current view needs.
type DashboardModel struct {
	ctx      context.Context
	client   DashboardClient
	sess     *session.Session
	interval time.Duration

	tab       Tab
	width     int
	height    int
	status    string
	statusErr bool
	loading   bool

	// logs
	following   *api.Application
	gen         int
	tail        *logtail.Tail
	primed      bool
	logLines    []string
	logView     viewport.Model
	initialSize int

	// status
	deployments   []api.Deployment
	deploymentsOf uuid.UUID
}

// NewDashboardModel creates the dashboard
func NewDashboardModel(ctx context.Context, client DashboardClient, sess *session.Session) DashboardModel {
	vp := viewport.New(80, 20)
	return DashboardModel{
		ctx:         ctx,
		client:      client,
		sess:        sess,
		interval:    logtail.DefaultInterval,
		width:       80,
		height:      24,
		logView:     vp,
		initialSize: logtail.FollowLines,
	}
}

// Init loads the application list
func (m DashboardModel) Init() tea.Cmd {
	return m.loadApps()
}

func (m DashboardModel) loadApps() tea.Cmd {
	ctx, client, sess := m.ctx, m.client, m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		err := sess.Refresh(ctx, client)
		return appsLoadedMsg{apps: sess.Apps(), err: err}
	}
}

func (m DashboardModel) loadDeployments(appID uuid.UUID) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		deps, err := client.ListDeployments(ctx, appID)
		return deploymentsLoadedMsg{appID: appID, deployments: deps, err: err}
	}
}

func (m DashboardModel) fetchLogs(gen int, appID uuid.UUID, lines int) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		fetched, err := client.Logs(ctx, appID, lines)
		return logsFetchedMsg{gen: gen, lines: fetched, err: err}
	}
}

func (m DashboardModel) scheduleTick(gen int) tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return logsTickMsg{gen: gen}
	})
}

// follow starts a new follow loop on the selected application
func (m *DashboardModel) follow() tea.Cmd {
	app := m.sess.Selected()
	if app == nil {
		m.setStatus("No application selected")
		return nil
	}

	m.gen++
	m.following = app
	m.tail = &logtail.Tail{}
	m.primed = false
	m.logLines = nil
	m.logView.SetContent("")
	m.setStatus(fmt.Sprintf("Following %s", app.Name))
	m.sess.Record("logs " + app.Name)
	return m.fetchLogs(m.gen, app.ID, m.initialSize)
}

func (m *DashboardModel) appendLogs(lines []string) {
	if len(lines) == 0 {
		return
	}
	atBottom := m.logView.AtBottom() || len(m.logLines) == 0
	m.logLines = append(m.logLines, lines...)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.logView.SetContent(strings.Join(m.logLines, "\n"))
	if atBottom {
		m.logView.GotoBottom()
	}
}

func (m *DashboardModel) openStatus() tea.Cmd {
	app := m.sess.Selected()
	if app == nil {
		return nil
	}
	m.loading = true
	m.sess.Record("status " + app.Name)
	return m.loadDeployments(app.ID)
}

func (m *DashboardModel) resize(width, height int) {
	m.width, m.height = width, height
	// tabs, pane border and help line
	m.logView.Width = max(width-4, 10)
	m.logView.Height = max(height-7, 3)
}

// Update implements tea.Model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case appsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setError("Refresh failed", msg.err)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("%d applications", len(msg.apps)))
		return m, nil

	case deploymentsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setError("Loading deployments failed", msg.err)
			return m, nil
		}
		m.deploymentsOf = msg.appID
		m.deployments = msg.deployments
		return m, nil

	case logsTickMsg:
		if msg.gen != m.gen || m.following == nil {
			return m, nil
		}
		return m, m.fetchLogs(msg.gen, m.following.ID, logtail.FollowLines)

	case logsFetchedMsg:
		if msg.gen != m.gen || m.following == nil {
			return m, nil
		}
		if msg.err != nil {
			m.setError("Log fetch failed", msg.err)
		} else if !m.primed {
			// the first window is shown in full and only primes the cursor
			m.appendLogs(msg.lines)
			m.tail.Observe(msg.lines)
			m.primed = true
		} else {
			m.appendLogs(m.tail.Observe(msg.lines))
		}
		return m, m.scheduleTick(msg.gen)
	}

	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		return m, m.enterTab()

	case "shift+tab":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		return m, m.enterTab()

	case "up", "k":
		if m.tab == TabLogs {
			m.logView.LineUp(1)
		} else {
			m.sess.Move(-1)
		}
		return m, nil

	case "down", "j":
		if m.tab == TabLogs {
			m.logView.LineDown(1)
		} else {
			m.sess.Move(1)
		}
		return m, nil

	case "enter":
		if m.tab == TabApps {
			m.tab = TabLogs
			return m, m.follow()
		}
		return m, nil

	case "r":
		switch m.tab {
		case TabApps:
			m.loading = true
			m.setStatus("Refreshing...")
			m.sess.Record("list")
			return m, m.loadApps()
		case TabLogs:
			return m, m.follow()
		case TabStatus:
			return m, m.openStatus()
		}
	}

	return m, nil
}

// enterTab starts whatever the new tab needs
func (m *DashboardModel) enterTab() tea.Cmd {
	app := m.sess.Selected()
	switch m.tab {
	case TabLogs:
		if app != nil && (m.following == nil || m.following.ID != app.ID) {
			return m.follow()
		}
	case TabStatus:
		if app != nil && m.deploymentsOf != app.ID {
			return m.openStatus()
		}
	}
	return nil
}

// View implements tea.Model
func (m DashboardModel) View() string {
	var tabs []string
	for i, name := range tabNames {
		if Tab(i) == m.tab {
			tabs = append(tabs, ActiveTabStyle.Render(name))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	var body string
	switch m.tab {
	case TabApps:
		body = m.viewApps()
	case TabLogs:
		body = m.viewLogs()
	case TabStatus:
		body = m.viewStatus()
	}

	pane := PaneStyle.Width(max(m.width-2, 20)).Render(body)
	help := MutedStyle.Render("tab switch • ↑/↓ select • enter logs • r refresh • q quit")
	switch {
	case m.statusErr:
		help = RenderError(m.status) + "  " + help
	case m.status != "":
		help = MutedStyle.Render(m.status) + "  " + help
	}

	return header + "\n" + pane + "\n" + help
}

func (m DashboardModel) viewApps() string {
	apps := m.sess.Apps()
	if len(apps) == 0 {
		if m.loading {
			return MutedStyle.Render("Loading applications...")
		}
		return MutedStyle.Render("No applications yet. Run 'aether deploy' in a project directory.")
	}

	selected := m.sess.SelectedIndex()
	var b strings.Builder
	for i, app := range apps {
		line := fmt.Sprintf("%-32s %-10s %s", app.Name, app.Runtime, app.DeploymentURL)
		b.WriteString(RenderListItem(line, i == selected))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m DashboardModel) viewLogs() string {
	if m.following == nil {
		return MutedStyle.Render("Select an application on the Apps tab and press enter.")
	}
	if len(m.logLines) == 0 {
		return HeaderStyle.Render(m.following.Name) + "\n" + MutedStyle.Render("Waiting for log output...")
	}
	return HeaderStyle.Render(m.following.Name) + "\n" + m.logView.View()
}

func (m DashboardModel) viewStatus() string {
	app := m.sess.Selected()
	if app == nil {
		return MutedStyle.Render("No application selected.")
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(app.Name) + "\n")
	b.WriteString(RenderField("ID", app.ID.String()) + "\n")
	b.WriteString(RenderField("Runtime", app.Runtime) + "\n")
	if app.DeploymentURL != "" {
		b.WriteString(RenderField("URL", app.DeploymentURL) + "\n")
	}
	b.WriteString(RenderField("Created", app.CreatedAt.Format(time.RFC3339)) + "\n\n")

	if m.loading {
		b.WriteString(MutedStyle.Render("Loading deployments..."))
		return b.String()
	}
	if m.deploymentsOf != app.ID || len(m.deployments) == 0 {
		b.WriteString(MutedStyle.Render("No deployments."))
		return b.String()
	}

	b.WriteString(LabelStyle.Render("Recent deployments") + "\n")
	for i, d := range m.deployments {
		if i == statusDeployments {
			break
		}
		b.WriteString(fmt.Sprintf("  %-10s %s  %s\n", d.Version, RenderStatus(d.Status), MutedStyle.Render(d.CreatedAt.Format("2006-01-02 15:04"))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *DashboardModel) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *DashboardModel) setError(what string, err error) {
	m.status = what + ": " + err.Error()
	m.statusErr = true
}

// ActiveTab returns the active tab
func (m DashboardModel) ActiveTab() Tab {
	return m.tab
}

// LogLines returns the lines shown on the Logs tab
func (m DashboardModel) LogLines() []string {
	return m.logLines
}

// RunDashboard runs the dashboard until the operator quits
func RunDashboard(ctx context.Context, client DashboardClient, sess *session.Session) error {
	p := tea.NewProgram(NewDashboardModel(ctx, client, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
