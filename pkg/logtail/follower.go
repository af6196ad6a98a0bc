package logtail

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultInterval is the fixed poll period
	DefaultInterval = 500 * time.Millisecond

	// FollowLines is the window requested on every follow poll
	FollowLines = 200
)

// Fetcher returns up to the last `lines` log lines of an application
type Fetcher interface {
	Logs(ctx context.Context, appID uuid.UUID, lines int) ([]string, error)
}

// Tail holds the cursor of one follow session. The first observation only
// primes the cursor, since those lines were already displayed.
type Tail struct {
	cursor Cursor
	primed bool
}

// Observe feeds one fetch result and returns the lines to display
func (t *Tail) Observe(fetched []string) []string {
	if !t.primed {
		t.cursor = NewCursor(fetched)
		t.primed = true
		return nil
	}
	out, next := Sync(t.cursor, fetched)
	t.cursor = next
	return out
}

// Cursor returns the current cursor
func (t *Tail) Cursor() Cursor {
	return t.cursor
}

// Follower polls a Fetcher until its context is cancelled
type Follower struct {
	fetcher Fetcher
	appID   uuid.UUID
	logger  hclog.Logger
	tail    Tail

	// Lines is the window size requested per poll
	Lines int

	// Interval is the poll period. Without Prime, the first poll only sets
	// the baseline.
	Interval time.Duration

	// Emit receives every line to display
	Emit func(line string)
}

// NewFollower creates a Follower with the default window and interval
func NewFollower(fetcher Fetcher, appID uuid.UUID, logger hclog.Logger) *Follower {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Follower{
		fetcher:  fetcher,
		appID:    appID,
		logger:   logger,
		Lines:    FollowLines,
		Interval: DefaultInterval,
		Emit:     func(string) {},
	}
}

// Prime seeds the baseline with lines already displayed, so the first poll
// reports what was written since they were fetched. Only the newest Lines of
// them are kept, which is what a poll returns. displayed must be a complete
// window: either at least Lines long or the whole log.
func (f *Follower) Prime(displayed []string) {
	if len(displayed) > f.Lines {
		displayed = displayed[len(displayed)-f.Lines:]
	}
	f.tail = Tail{}
	f.tail.Observe(displayed)
}

// Run polls until ctx is done and then returns nil. A failed fetch is logged
// and the next tick tries again. Each fetch is bound to ctx, so cancellation
// takes effect within one tick.
func (f *Follower) Run(ctx context.Context) error {
	tail := &f.tail
	ticker := time.NewTicker(f.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		lines, err := f.fetcher.Logs(ctx, f.appID, f.Lines)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			f.logger.Warn("failed to fetch logs", "app", f.appID, "error", err)
			continue
		}

		for _, line := range tail.Observe(lines) {
			f.Emit(line)
		}
	}
}
