// Package track records work sessions against tasks as TimeLogs.
package track

import (
	"context"
	"time"

	"github.com/zenflowapp/zenflow/pkg/store"
	"github.com/zenflowapp/zenflow/pkg/task"
)

type Tracker struct {
	store *store.Store
}

func New(s *store.Store) *Tracker {
	return &Tracker{store: s}
}

// Start opens a session of the given type against a task and returns
// the running log.
func (tr *Tracker) Start(ctx context.Context, taskID task.ID, typ task.LogType, now time.Time) (task.TimeLog, error) {
	l := task.TimeLog{
		ID:        task.NewID(),
		TaskID:    taskID,
		StartTime: task.Millis(now),
		Type:      typ,
	}
	if err := tr.store.AddLog(ctx, l); err != nil {
		return task.TimeLog{}, err
	}
	return l, nil
}

// Stop finalizes a running session, computing its duration.
func (tr *Tracker) Stop(ctx context.Context, logID task.ID, now time.Time) (task.TimeLog, error) {
	return tr.store.FinishLog(ctx, logID, now)
}

// Logged sums the finished seconds tracked against a task.
func (tr *Tracker) Logged(ctx context.Context, taskID task.ID) (time.Duration, error) {
	logs, err := tr.store.LogsByTask(ctx, taskID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, l := range logs {
		total += l.DurationSeconds
	}
	return time.Duration(total) * time.Second, nil
}
