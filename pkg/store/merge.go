package store

import (
	"context"
	"fmt"

	"github.com/zenflowapp/zenflow/pkg/task"
)

// Snapshot carries at most one slice per collection. A nil slice means
// "leave that collection alone"; an empty non-nil slice is a merge of
// zero records, which is also a no-op but was explicitly asked for.
type Snapshot struct {
	Tasks    []task.Task
	Projects []task.Project
	Tags     []task.Tag
	Logs     []task.TimeLog
}

// BulkMerge upserts every supplied record by id inside one
// transaction spanning all four collections. Either the whole
// snapshot lands or none of it does.
func (s *Store) BulkMerge(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("bulk merge: begin: %w", err)
	}
	defer tx.Rollback()

	for _, t := range snap.Tasks {
		if err := putTask(ctx, tx, t, true); err != nil {
			s.log.WithError(err).WithField("id", t.ID).Warn("bulk merge aborted on task")
			return fmt.Errorf("bulk merge task %s: %w", t.ID, err)
		}
	}
	for _, p := range snap.Projects {
		if err := putProject(ctx, tx, p, true); err != nil {
			s.log.WithError(err).WithField("id", p.ID).Warn("bulk merge aborted on project")
			return fmt.Errorf("bulk merge project %s: %w", p.ID, err)
		}
	}
	for _, t := range snap.Tags {
		if err := putTag(ctx, tx, t, true); err != nil {
			s.log.WithError(err).WithField("id", t.ID).Warn("bulk merge aborted on tag")
			return fmt.Errorf("bulk merge tag %s: %w", t.ID, err)
		}
	}
	for _, l := range snap.Logs {
		if err := putLog(ctx, tx, l, true); err != nil {
			s.log.WithError(err).WithField("id", l.ID).Warn("bulk merge aborted on time log")
			return fmt.Errorf("bulk merge time log %s: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("bulk merge: commit: %w", err)
	}
	s.log.WithFields(map[string]interface{}{
		"tasks":    len(snap.Tasks),
		"projects": len(snap.Projects),
		"tags":     len(snap.Tags),
		"logs":     len(snap.Logs),
	}).Info("bulk merge applied")
	return nil
}

var defaultProjects = []task.Project{
	{ID: "p1", Name: "Development", Color: "#3b82f6"},
	{ID: "p2", Name: "Design", Color: "#ec4899"},
	{ID: "p3", Name: "Marketing", Color: "#f59e0b"},
}

var defaultTags = []task.Tag{
	{ID: "t1", Name: "Urgent", Color: "#ef4444"},
	{ID: "t2", Name: "Bug", Color: "#ef4444"},
	{ID: "t3", Name: "Feature", Color: "#3b82f6"},
}

// Seed populates the default projects and tags, but only into a store
// that has never had projects. Safe to call on every startup.
func (s *Store) Seed(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM projects`).Scan(&n); err != nil {
		return fmt.Errorf("seed: count projects: %w", err)
	}
	if n > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer tx.Rollback()

	for _, p := range defaultProjects {
		if err := putProject(ctx, tx, p, false); err != nil {
			return fmt.Errorf("seed project %s: %w", p.ID, err)
		}
	}
	for _, t := range defaultTags {
		if err := putTag(ctx, tx, t, false); err != nil {
			return fmt.Errorf("seed tag %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	s.log.Info("seeded default projects and tags")
	return nil
}

// ResetAll wipes every collection and reseeds the defaults. There is
// no undo; callers must confirm with the user first.
func (s *Store) ResetAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reset: begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"tasks", "projects", "tags", "time_logs"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("reset: commit: %w", err)
	}
	s.log.Warn("store reset, all collections cleared")
	return s.Seed(ctx)
}
