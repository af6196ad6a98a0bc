package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/aetherengine/aether-cli/internal/session"
	"github.com/aetherengine/aether-cli/pkg/api"
	"github.com/aetherengine/aether-cli/pkg/logtail"
)

type fakeDashboardClient struct {
	apps        []api.Application
	deployments []api.Deployment
	logs        [][]string
	logCalls    int
	lastLines   int
}

func (f *fakeDashboardClient) ListApplications(ctx context.Context) ([]api.Application, error) {
	return f.apps, nil
}

func (f *fakeDashboardClient) ListDeployments(ctx context.Context, appID uuid.UUID) ([]api.Deployment, error) {
	return f.deployments, nil
}

func (f *fakeDashboardClient) Logs(ctx context.Context, appID uuid.UUID, lines int) ([]string, error) {
	f.lastLines = lines
	i := f.logCalls
	if i >= len(f.logs) {
		i = len(f.logs) - 1
	}
	f.logCalls++
	return f.logs[i], nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// applyMsg feeds msg to the model and returns the command it produced
func applyMsg(t *testing.T, m DashboardModel, msg tea.Msg) (DashboardModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(DashboardModel), cmd
}

func runCmd(t *testing.T, m DashboardModel, cmd tea.Cmd) DashboardModel {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m, _ = applyMsg(t, m, cmd())
	return m
}

func newDashboard(t *testing.T, client *fakeDashboardClient) (DashboardModel, *session.Session) {
	t.Helper()
	sess := session.New(t.TempDir())
	m := NewDashboardModel(context.Background(), client, sess)
	m = runCmd(t, m, m.Init())
	return m, sess
}

func TestDashboardLoadsAndSelects(t *testing.T) {
	client := &fakeDashboardClient{apps: []api.Application{
		{ID: uuid.New(), Name: "api", Runtime: "node:20"},
		{ID: uuid.New(), Name: "web", Runtime: "node:18"},
	}}
	m, sess := newDashboard(t, client)

	if len(sess.Apps()) != 2 {
		t.Fatalf("apps not cached: %v", sess.Apps())
	}
	if !strings.Contains(m.View(), "web") {
		t.Error("Apps tab should list applications")
	}

	m, _ = applyMsg(t, m, key("down"))
	if sess.Selected().Name != "web" {
		t.Errorf("selected %q", sess.Selected().Name)
	}

	m, _ = applyMsg(t, m, key("tab"))
	if m.ActiveTab() != TabLogs {
		t.Errorf("tab = %v", m.ActiveTab())
	}
}

func TestDashboardFollowLogs(t *testing.T) {
	client := &fakeDashboardClient{
		apps: []api.Application{{ID: uuid.New(), Name: "api"}},
		logs: [][]string{
			{"a"},
			{"a", "b"},
			{"a", "b", "c"},
			{"b", "c", "d"},
		},
	}
	m, sess := newDashboard(t, client)

	m, cmd := applyMsg(t, m, key("enter"))
	if m.ActiveTab() != TabLogs {
		t.Fatalf("enter should open logs, tab = %v", m.ActiveTab())
	}
	m = runCmd(t, m, cmd)
	if got := m.LogLines(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("initial window = %v", got)
	}
	if client.lastLines != logtail.FollowLines {
		t.Errorf("requested %d lines", client.lastLines)
	}

	// three ticks
	for i := 0; i < 3; i++ {
		m, cmd = applyMsg(t, m, logsTickMsg{gen: m.gen})
		m = runCmd(t, m, cmd)
	}

	want := []string{"a", "b", "c", logtail.LatestPrefix + "d"}
	got := m.LogLines()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("LogLines() = %v, want %v", got, want)
	}

	if h := sess.History(); len(h) == 0 || h[len(h)-1] != "logs api" {
		t.Errorf("history = %v", h)
	}
}

func TestDashboardIgnoresStaleFollow(t *testing.T) {
	client := &fakeDashboardClient{
		apps: []api.Application{{ID: uuid.New(), Name: "api"}},
		logs: [][]string{{"a"}},
	}
	m, _ := newDashboard(t, client)

	m, cmd := applyMsg(t, m, key("enter"))
	m = runCmd(t, m, cmd)
	stale := m.gen

	m, cmd = applyMsg(t, m, key("r"))
	m = runCmd(t, m, cmd)
	calls := client.logCalls

	_, cmd = applyMsg(t, m, logsTickMsg{gen: stale})
	if cmd != nil {
		t.Error("tick from a superseded follow should be dropped")
	}
	if client.logCalls != calls {
		t.Error("stale tick should not fetch")
	}
}

func TestDashboardStatusTab(t *testing.T) {
	appID := uuid.New()
	client := &fakeDashboardClient{
		apps:        []api.Application{{ID: appID, Name: "api", Runtime: "node:20"}},
		deployments: []api.Deployment{{ID: uuid.New(), AppID: appID, Version: "2.0.0", Status: "running"}},
		logs:        [][]string{{}},
	}
	m, _ := newDashboard(t, client)

	m, cmd := applyMsg(t, m, key("tab"))
	m = runCmd(t, m, cmd)
	m, cmd = applyMsg(t, m, key("tab"))
	if m.ActiveTab() != TabStatus {
		t.Fatalf("tab = %v", m.ActiveTab())
	}
	m = runCmd(t, m, cmd)

	view := m.View()
	if !strings.Contains(view, "2.0.0") || !strings.Contains(view, "node:20") {
		t.Errorf("status view missing details:\n%s", view)
	}
}

func TestDashboardQuit(t *testing.T) {
	m, _ := newDashboard(t, &fakeDashboardClient{})
	_, cmd := applyMsg(t, m, key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
