package backup

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/matryer/is"
	log "github.com/sirupsen/logrus"

	"github.com/zenflowapp/zenflow/pkg/store"
	"github.com/zenflowapp/zenflow/pkg/task"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)
	s, err := store.Open(filepath.Join(t.TempDir(), "zenflow.db"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func quiet() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func newTask(id, title string) task.Task {
	return task.Task{
		ID:        id,
		Title:     title,
		Status:    task.StatusTodo,
		Priority:  task.PriorityMedium,
		Tags:      []task.ID{},
		CreatedAt: 1000,
	}
}

func byID(tasks []task.Task) []task.Task {
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

func TestRoundTrip(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	src := newTestStore(t)
	is.NoErr(src.Seed(ctx))
	one := newTask("a", "first")
	one.EndDate = task.MillisPtr(time.Now().Add(time.Hour))
	one.IsPinned = true
	is.NoErr(src.AddTask(ctx, one))
	is.NoErr(src.AddTask(ctx, newTask("b", "second")))
	is.NoErr(src.AddLog(ctx, task.TimeLog{ID: "l1", TaskID: "a", StartTime: 5, DurationSeconds: 60, Type: task.LogPomodoro}))

	data, err := New(src, quiet()).Export(ctx)
	is.NoErr(err)

	dst := newTestStore(t)
	is.NoErr(New(dst, quiet()).Import(ctx, data))

	srcTasks, err := src.Tasks(ctx)
	is.NoErr(err)
	dstTasks, err := dst.Tasks(ctx)
	is.NoErr(err)
	is.Equal(byID(dstTasks), byID(srcTasks))

	srcProjects, err := src.Projects(ctx)
	is.NoErr(err)
	dstProjects, err := dst.Projects(ctx)
	is.NoErr(err)
	is.Equal(len(dstProjects), len(srcProjects))

	dstLogs, err := dst.Logs(ctx)
	is.NoErr(err)
	is.Equal(len(dstLogs), 1)
	is.Equal(dstLogs[0].Type, task.LogPomodoro)
}

func TestSnapshotShape(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	doc, err := New(newTestStore(t), quiet()).Snapshot(ctx)
	is.NoErr(err)
	is.Equal(doc.Version, 1)
	_, err = time.Parse(time.RFC3339, doc.ExportedAt)
	is.NoErr(err)
	// empty store still exports all four arrays, not nulls
	is.True(doc.Tasks != nil)
	is.True(doc.Projects != nil)
	is.True(doc.Tags != nil)
	is.True(doc.Logs != nil)
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	t.Run("merges, never replaces", func(t *testing.T) {
		is := is.New(t)
		s := newTestStore(t)
		is.NoErr(s.AddTask(ctx, newTask("existing", "stays")))

		doc := []byte(`{"version":1,"exportedAt":"2026-01-01T00:00:00Z","tasks":[
			{"id":"imported","title":"new","status":"TODO","priority":"LOW","tags":[],"createdAt":1}
		]}`)
		is.NoErr(New(s, quiet()).Import(ctx, doc))

		tasks, err := s.Tasks(ctx)
		is.NoErr(err)
		is.Equal(len(tasks), 2)
	})

	t.Run("absent keys leave collections untouched", func(t *testing.T) {
		is := is.New(t)
		s := newTestStore(t)
		is.NoErr(s.Seed(ctx))

		doc := []byte(`{"version":1,"exportedAt":"2026-01-01T00:00:00Z","tags":[{"id":"t9","name":"Extra","color":"#fff"}]}`)
		is.NoErr(New(s, quiet()).Import(ctx, doc))

		projects, err := s.Projects(ctx)
		is.NoErr(err)
		is.Equal(len(projects), 3) // seeded set untouched
		tags, err := s.Tags(ctx)
		is.NoErr(err)
		is.Equal(len(tags), 4)
	})

	t.Run("malformed input fails with ErrMalformed", func(t *testing.T) {
		is := is.New(t)
		s := newTestStore(t)
		err := New(s, quiet()).Import(ctx, []byte(`{"version":`))
		is.True(errors.Is(err, ErrMalformed))
	})
}

func TestFiles(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	src := newTestStore(t)
	is.NoErr(src.AddTask(ctx, newTask("a", "on disk")))

	path := filepath.Join(t.TempDir(), Filename(time.Now()))
	is.NoErr(New(src, quiet()).ExportToFile(ctx, path))

	dst := newTestStore(t)
	is.NoErr(New(dst, quiet()).ImportFromFile(ctx, path))
	got, err := dst.GetTask(ctx, "a")
	is.NoErr(err)
	is.Equal(got.Title, "on disk")
}

func TestFilename(t *testing.T) {
	is := is.New(t)

	day := time.Date(2026, 8, 31, 15, 4, 5, 0, time.UTC)
	is.Equal(Filename(day), "zenflow-backup-2026-08-31.json")
}
