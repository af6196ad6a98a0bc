// Package logtail emulates a live log tail over an endpoint that only returns
// the last N lines.
//
// The emulation is best effort. Each poll refetches a bounded window, so when
// more lines are written between two polls than the window holds, the lines
// that scrolled out are never shown. When the window shifts without growing
// (rotation, truncation, or a full window) only a single "Latest:" notice for
// the newest line is emitted; the missed content is not reconstructed.
package logtail

// LatestPrefix marks a change notice emitted when growth cannot be detected
const LatestPrefix = "Latest: "

// Cursor is what the tail has already shown
type Cursor struct {
	LastFullText  []string
	LastLineCount int
}

// NewCursor primes a cursor from lines that were already displayed
func NewCursor(lines []string) Cursor {
	return Cursor{LastFullText: append([]string(nil), lines...), LastLineCount: len(lines)}
}

// Sync diffs a fresh fetch against the cursor. It returns the lines to emit
// and the next cursor. The cursor only advances when something is emitted,
// so an empty or unchanged fetch never erases history.
func Sync(prev Cursor, fetched []string) ([]string, Cursor) {
	if len(fetched) > prev.LastLineCount {
		out := append([]string(nil), fetched[prev.LastLineCount:]...)
		return out, NewCursor(fetched)
	}

	if len(fetched) == 0 {
		return nil, prev
	}

	last := fetched[len(fetched)-1]
	if len(prev.LastFullText) == 0 || last != prev.LastFullText[len(prev.LastFullText)-1] {
		return []string{LatestPrefix + last}, NewCursor(fetched)
	}

	return nil, prev
}
