// Package session holds the mutable state of an interactive dashboard: the
// working directory, the selected application, a cache of the account's
// applications and the command history. Nothing here touches a terminal, so
// the dashboard's behavior can be tested without one.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aetherengine/aether-cli/pkg/api"
)

// MaxHistory bounds the recorded command history
const MaxHistory = 100

// AppLister is the part of the control-plane client the cache refreshes from
type AppLister interface {
	ListApplications(ctx context.Context) ([]api.Application, error)
}

// Session is the state of one dashboard run
type Session struct {
	mu sync.RWMutex

	workingDir  string
	apps        []api.Application
	refreshedAt time.Time
	selected    int
	history     []string
}

// New creates a session rooted at workingDir
func New(workingDir string) *Session {
	return &Session{workingDir: workingDir}
}

// WorkingDir returns the directory deploys run from
func (s *Session) WorkingDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workingDir
}

// SetWorkingDir changes the directory deploys run from
func (s *Session) SetWorkingDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workingDir = dir
}

// Refresh replaces the application cache from the control plane. The
// selection follows the previously selected application when it still exists.
func (s *Session) Refresh(ctx context.Context, lister AppLister) error {
	apps, err := lister.ListApplications(ctx)
	if err != nil {
		return err
	}
	s.SetApps(apps)
	return nil
}

// SetApps replaces the application cache
func (s *Session) SetApps(apps []api.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prev uuid.UUID
	if s.selected < len(s.apps) {
		prev = s.apps[s.selected].ID
	}

	s.apps = apps
	s.refreshedAt = time.Now()
	s.selected = 0
	for i, app := range apps {
		if app.ID == prev {
			s.selected = i
			break
		}
	}
}

// Apps returns a copy of the cached applications
func (s *Session) Apps() []api.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Application, len(s.apps))
	copy(out, s.apps)
	return out
}

// RefreshedAt reports when the cache was last filled
func (s *Session) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}

// Selected returns the selected application, or nil when the cache is empty
func (s *Session) Selected() *api.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected >= len(s.apps) {
		return nil
	}
	app := s.apps[s.selected]
	return &app
}

// SelectedIndex returns the cursor position in Apps
func (s *Session) SelectedIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Move shifts the selection by delta, clamped to the cache bounds
func (s *Session) Move(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.apps) == 0 {
		return
	}
	s.selected += delta
	if s.selected < 0 {
		s.selected = 0
	}
	if s.selected >= len(s.apps) {
		s.selected = len(s.apps) - 1
	}
}

// Select selects the application with this name or ID. It reports false when
// nothing in the cache matches.
func (s *Session) Select(ident string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, app := range s.apps {
		if app.Name == ident || app.ID.String() == ident {
			s.selected = i
			return true
		}
	}
	return false
}

// Record appends a command to the history, dropping the oldest entries past
// MaxHistory
func (s *Session) Record(cmd string) {
	if cmd == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, cmd)
	if len(s.history) > MaxHistory {
		s.history = s.history[len(s.history)-MaxHistory:]
	}
}

// History returns the recorded commands, oldest first
func (s *Session) History() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}
