// Package store is the durable home of every ZenFlow collection. Rows
// keep the indexed columns alongside the full entity encoded as JSON,
// so fields the indexes don't care about round-trip untouched.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"

	"github.com/zenflowapp/zenflow/pkg/task"
)

var (
	ErrDuplicateID = errors.New("record with the given id already exists")
	ErrNotFound    = errors.New("record not found")
	ErrEmptyTitle  = errors.New("title must not be empty")
)

type Store struct {
	db  *sql.DB
	log *log.Logger
}

// Open initializes the SQLite database at path and runs migrations.
// Migrations only ever create, so reopening an existing file is safe.
func Open(path string, logger *log.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer, single client
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: logger}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.WithField("path", path).Debug("store opened")
	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
            id TEXT PRIMARY KEY,
            parent_id TEXT,
            project_id TEXT,
            status TEXT NOT NULL,
            created_at INTEGER NOT NULL,
            data BLOB NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at);`,
		`CREATE TABLE IF NOT EXISTS projects (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            data BLOB NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_projects_name ON projects(name);`,
		`CREATE TABLE IF NOT EXISTS tags (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            data BLOB NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_tags_name ON tags(name);`,
		`CREATE TABLE IF NOT EXISTS time_logs (
            id TEXT PRIMARY KEY,
            task_id TEXT NOT NULL,
            start_time INTEGER NOT NULL,
            type TEXT NOT NULL,
            data BLOB NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_time_logs_task ON time_logs(task_id);`,
		`CREATE INDEX IF NOT EXISTS idx_time_logs_start ON time_logs(start_time);`,
		`CREATE INDEX IF NOT EXISTS idx_time_logs_type ON time_logs(type);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// duplicateKey translates the driver's unique-constraint error.
func duplicateKey(err error) error {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && sqlErr.Code == sqlite3.ErrConstraint {
		return ErrDuplicateID
	}
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putTask(ctx context.Context, e execer, t task.Task, replace bool) error {
	data, err := sonic.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	verb := "INSERT"
	if replace {
		verb = "INSERT OR REPLACE"
	}
	_, err = e.ExecContext(ctx,
		verb+` INTO tasks(id, parent_id, project_id, status, created_at, data) VALUES(?, ?, ?, ?, ?, ?)`,
		t.ID, t.ParentID, t.ProjectID, string(t.Status), t.CreatedAt, data)
	return err
}

func putProject(ctx context.Context, e execer, p task.Project, replace bool) error {
	data, err := sonic.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	verb := "INSERT"
	if replace {
		verb = "INSERT OR REPLACE"
	}
	_, err = e.ExecContext(ctx, verb+` INTO projects(id, name, data) VALUES(?, ?, ?)`, p.ID, p.Name, data)
	return err
}

func putTag(ctx context.Context, e execer, t task.Tag, replace bool) error {
	data, err := sonic.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode tag: %w", err)
	}
	verb := "INSERT"
	if replace {
		verb = "INSERT OR REPLACE"
	}
	_, err = e.ExecContext(ctx, verb+` INTO tags(id, name, data) VALUES(?, ?, ?)`, t.ID, t.Name, data)
	return err
}

func putLog(ctx context.Context, e execer, l task.TimeLog, replace bool) error {
	data, err := sonic.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode time log: %w", err)
	}
	verb := "INSERT"
	if replace {
		verb = "INSERT OR REPLACE"
	}
	_, err = e.ExecContext(ctx,
		verb+` INTO time_logs(id, task_id, start_time, type, data) VALUES(?, ?, ?, ?, ?)`,
		l.ID, l.TaskID, l.StartTime, string(l.Type), data)
	return err
}

// AddTask inserts a new task. The id must be unused and the title
// must survive validation.
func (s *Store) AddTask(ctx context.Context, t task.Task) error {
	if !task.ValidTitle(t.Title) {
		return ErrEmptyTitle
	}
	if err := putTask(ctx, s.db, t, false); err != nil {
		return fmt.Errorf("add task: %w", duplicateKey(err))
	}
	return nil
}

// GetTask fetches a single task by id.
func (s *Store) GetTask(ctx context.Context, id task.ID) (task.Task, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM tasks WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	var t task.Task
	if err := sonic.Unmarshal(data, &t); err != nil {
		return task.Task{}, fmt.Errorf("decode task: %w", err)
	}
	return t, nil
}

// TaskPatch is a partial update. Nil fields are left unchanged.
// ClearDates drops the scheduling window before date fields apply,
// which is how the edit form replaces dates wholesale.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *task.Status
	Priority    *task.Priority
	Pinned      *bool
	ProjectID   *task.ID
	Tags        *[]task.ID
	StartDate   *int64
	EndDate     *int64
	DueDate     *int64
	ClearDates  bool
}

func (p TaskPatch) apply(t *task.Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Pinned != nil {
		t.IsPinned = *p.Pinned
	}
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	if p.Tags != nil {
		t.Tags = *p.Tags
	}
	if p.ClearDates {
		t.StartDate, t.EndDate, t.DueDate = nil, nil, nil
	}
	if p.StartDate != nil {
		t.StartDate = p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = p.EndDate
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
}

// UpdateTask merges the patch into an existing task and stamps
// updatedAt. A missing id is a surfaced ErrNotFound; a blank title in
// the patch is rejected before anything is written.
func (s *Store) UpdateTask(ctx context.Context, id task.ID, p TaskPatch) (task.Task, error) {
	if p.Title != nil && !task.ValidTitle(*p.Title) {
		return task.Task{}, ErrEmptyTitle
	}
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	p.apply(&t)
	now := task.Millis(time.Now())
	t.UpdatedAt = &now
	if err := putTask(ctx, s.db, t, true); err != nil {
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

// DeleteTask removes a task. Deleting an absent id is a no-op, and
// the task's time logs deliberately stay behind (no cascade).
func (s *Store) DeleteTask(ctx context.Context, id task.ID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// Tasks returns every task. Ordering is the query engine's job.
func (s *Store) Tasks(ctx context.Context) ([]task.Task, error) {
	return s.queryTasks(ctx, `SELECT data FROM tasks`)
}

// TasksByProject returns the tasks assigned to one project.
func (s *Store) TasksByProject(ctx context.Context, projectID task.ID) ([]task.Task, error) {
	return s.queryTasks(ctx, `SELECT data FROM tasks WHERE project_id = ?`, projectID)
}

// TasksByStatus returns the tasks with the given status.
func (s *Store) TasksByStatus(ctx context.Context, st task.Status) ([]task.Task, error) {
	return s.queryTasks(ctx, `SELECT data FROM tasks WHERE status = ?`, string(st))
}

// Subtasks returns the direct children of a task.
func (s *Store) Subtasks(ctx context.Context, parentID task.ID) ([]task.Task, error) {
	return s.queryTasks(ctx, `SELECT data FROM tasks WHERE parent_id = ?`, parentID)
}

func (s *Store) queryTasks(ctx context.Context, q string, args ...any) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		var t task.Task
		if err := sonic.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// AddProject inserts a new project.
func (s *Store) AddProject(ctx context.Context, p task.Project) error {
	if err := putProject(ctx, s.db, p, false); err != nil {
		return fmt.Errorf("add project: %w", duplicateKey(err))
	}
	return nil
}

// Projects returns every project.
func (s *Store) Projects(ctx context.Context) ([]task.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM projects`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []task.Project
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		var p task.Project
		if err := sonic.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project; no-op when absent.
func (s *Store) DeleteProject(ctx context.Context, id task.ID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// AddTag inserts a new tag.
func (s *Store) AddTag(ctx context.Context, t task.Tag) error {
	if err := putTag(ctx, s.db, t, false); err != nil {
		return fmt.Errorf("add tag: %w", duplicateKey(err))
	}
	return nil
}

// Tags returns every tag.
func (s *Store) Tags(ctx context.Context) ([]task.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM tags`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []task.Tag
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		var t task.Tag
		if err := sonic.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("decode tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// DeleteTag removes a tag; no-op when absent.
func (s *Store) DeleteTag(ctx context.Context, id task.ID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

// AddLog inserts a new time log.
func (s *Store) AddLog(ctx context.Context, l task.TimeLog) error {
	if err := putLog(ctx, s.db, l, false); err != nil {
		return fmt.Errorf("add time log: %w", duplicateKey(err))
	}
	return nil
}

// GetLog fetches a single time log by id.
func (s *Store) GetLog(ctx context.Context, id task.ID) (task.TimeLog, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM time_logs WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return task.TimeLog{}, ErrNotFound
	}
	if err != nil {
		return task.TimeLog{}, fmt.Errorf("get time log: %w", err)
	}
	var l task.TimeLog
	if err := sonic.Unmarshal(data, &l); err != nil {
		return task.TimeLog{}, fmt.Errorf("decode time log: %w", err)
	}
	return l, nil
}

// FinishLog closes a running session: sets the end time and the
// accumulated duration in whole seconds.
func (s *Store) FinishLog(ctx context.Context, id task.ID, end time.Time) (task.TimeLog, error) {
	l, err := s.GetLog(ctx, id)
	if err != nil {
		return task.TimeLog{}, err
	}
	endMs := task.Millis(end)
	l.EndTime = &endMs
	l.DurationSeconds = (endMs - l.StartTime) / 1000
	if err := putLog(ctx, s.db, l, true); err != nil {
		return task.TimeLog{}, fmt.Errorf("finish time log: %w", err)
	}
	return l, nil
}

// Logs returns every time log.
func (s *Store) Logs(ctx context.Context) ([]task.TimeLog, error) {
	return s.queryLogs(ctx, `SELECT data FROM time_logs`)
}

// LogsByTask returns the sessions tracked against one task, including
// orphans whose task has since been deleted.
func (s *Store) LogsByTask(ctx context.Context, taskID task.ID) ([]task.TimeLog, error) {
	return s.queryLogs(ctx, `SELECT data FROM time_logs WHERE task_id = ?`, taskID)
}

func (s *Store) queryLogs(ctx context.Context, q string, args ...any) ([]task.TimeLog, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list time logs: %w", err)
	}
	defer rows.Close()

	var logs []task.TimeLog
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan time log: %w", err)
		}
		var l task.TimeLog
		if err := sonic.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("decode time log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// DeleteLog removes a time log; no-op when absent.
func (s *Store) DeleteLog(ctx context.Context, id task.ID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM time_logs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete time log: %w", err)
	}
	return nil
}
