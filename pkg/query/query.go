// Package query filters and orders task lists. It is a pure reduction:
// it never touches the store and never mutates its input.
package query

import (
	"sort"
	"strings"

	"github.com/zenflowapp/zenflow/pkg/task"
)

type FilterKind int

const (
	All FilterKind = iota
	Completed
	Pinned
	ByPriority
)

// Filter selects tasks for a view. Search is matched against the title
// case-insensitively and combines with the kind; an empty search
// matches everything.
type Filter struct {
	Kind     FilterKind
	Priority task.Priority // only read when Kind == ByPriority
	Search   string
}

// Matches reports whether a single task passes the filter.
func (f Filter) Matches(t task.Task) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
		return false
	}
	switch f.Kind {
	case Completed:
		return t.Completed()
	case Pinned:
		return t.IsPinned
	case ByPriority:
		return t.Priority == f.Priority && !t.Completed()
	default:
		return true
	}
}

type SortKey int

const (
	KeyPriority SortKey = iota
	KeyDueDate
	KeyCreated
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

type SortConfig struct {
	Key       SortKey
	Direction Direction
}

// Apply filters tasks and returns them in display order. The order is
// total: completed tasks always sort last, pinned tasks lead the
// non-completed ones, then the configured key applies, and remaining
// ties fall back to newest-created first.
func Apply(tasks []task.Task, f Filter, cfg SortConfig) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j], cfg)
	})
	return out
}

func less(a, b task.Task, cfg SortConfig) bool {
	if a.Completed() != b.Completed() {
		return b.Completed()
	}
	if !a.Completed() && a.IsPinned != b.IsPinned {
		return a.IsPinned
	}

	var diff int64
	switch cfg.Key {
	case KeyPriority:
		diff = int64(a.Priority.Rank() - b.Priority.Rank())
	case KeyDueDate:
		switch {
		case a.EndDate != nil && b.EndDate == nil:
			diff = -1
		case a.EndDate == nil && b.EndDate != nil:
			diff = 1
		case a.EndDate == nil && b.EndDate == nil:
			diff = 0
		default:
			diff = *a.EndDate - *b.EndDate
		}
	case KeyCreated:
		diff = a.CreatedAt - b.CreatedAt
	}

	if diff != 0 {
		// Due-date order is always soonest-first, whatever the
		// configured direction says.
		if cfg.Key == KeyDueDate {
			return diff < 0
		}
		if cfg.Direction == Asc {
			return diff < 0
		}
		return diff > 0
	}

	// newest first
	return a.CreatedAt > b.CreatedAt
}

// CountActive counts tasks that still need doing.
func CountActive(tasks []task.Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Completed() {
			n++
		}
	}
	return n
}
