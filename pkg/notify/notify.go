// Package notify classifies tasks into overdue and due-soon buckets.
// Like query, it is a pure reduction over a task snapshot.
package notify

import (
	"time"

	"github.com/zenflowapp/zenflow/pkg/task"
)

// Window is how far ahead a task counts as due soon.
const Window = 24 * time.Hour

// Summary holds the two notification buckets. They are disjoint: a
// task is overdue or due soon, never both.
type Summary struct {
	Overdue []task.Task
	DueSoon []task.Task
}

func (s Summary) OverdueCount() int { return len(s.Overdue) }
func (s Summary) DueSoonCount() int { return len(s.DueSoon) }

// Any reports whether there is anything worth a banner.
func (s Summary) Any() bool {
	return len(s.Overdue) > 0 || len(s.DueSoon) > 0
}

// Evaluate buckets every non-completed task with an end date: past
// dates are overdue, dates within the next Window are due soon.
func Evaluate(tasks []task.Task, now time.Time) Summary {
	var (
		nowMs  = now.UnixMilli()
		soonMs = nowMs + Window.Milliseconds()
		s      Summary
	)
	for _, t := range tasks {
		if t.Completed() || t.EndDate == nil {
			continue
		}
		switch end := *t.EndDate; {
		case end < nowMs:
			s.Overdue = append(s.Overdue, t)
		case end > nowMs && end < soonMs:
			s.DueSoon = append(s.DueSoon, t)
		}
	}
	return s
}
