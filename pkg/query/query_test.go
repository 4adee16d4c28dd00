package query

import (
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/zenflowapp/zenflow/pkg/task"
)

func mk(id string, mut ...func(*task.Task)) task.Task {
	t := task.Task{
		ID:        id,
		Title:     id,
		Status:    task.StatusTodo,
		Priority:  task.PriorityMedium,
		CreatedAt: 1000,
	}
	for _, m := range mut {
		m(&t)
	}
	return t
}

func completed(t *task.Task) { t.Status = task.StatusCompleted }
func pinned(t *task.Task)    { t.IsPinned = true }

func prio(p task.Priority) func(*task.Task) {
	return func(t *task.Task) { t.Priority = p }
}
func ends(ms int64) func(*task.Task) {
	return func(t *task.Task) { t.EndDate = &ms }
}
func created(ms int64) func(*task.Task) {
	return func(t *task.Task) { t.CreatedAt = ms }
}

func ids(ts []task.Task) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestFilterMatches(t *testing.T) {
	t.Run("search is case-insensitive and vacuous when empty", func(t *testing.T) {
		is := is.New(t)
		buy := mk("a", func(t *task.Task) { t.Title = "Buy milk" })
		is.True(Filter{Kind: All}.Matches(buy))
		is.True(Filter{Kind: All, Search: "MILK"}.Matches(buy))
		is.True(!Filter{Kind: All, Search: "bread"}.Matches(buy))
	})

	t.Run("completed view", func(t *testing.T) {
		is := is.New(t)
		f := Filter{Kind: Completed}
		is.True(f.Matches(mk("a", completed)))
		is.True(!f.Matches(mk("b")))
	})

	t.Run("pinned view ignores status", func(t *testing.T) {
		is := is.New(t)
		f := Filter{Kind: Pinned}
		is.True(f.Matches(mk("a", pinned)))
		is.True(f.Matches(mk("b", pinned, completed)))
		is.True(!f.Matches(mk("c")))
	})

	t.Run("priority view excludes completed", func(t *testing.T) {
		is := is.New(t)
		f := Filter{Kind: ByPriority, Priority: task.PriorityHigh}
		is.True(f.Matches(mk("a", prio(task.PriorityHigh))))
		is.True(!f.Matches(mk("b", prio(task.PriorityHigh), completed)))
		is.True(!f.Matches(mk("c", prio(task.PriorityLow))))
	})
}

func TestApply_CompletedAlwaysLast(t *testing.T) {
	is := is.New(t)

	tasks := []task.Task{
		mk("done-high", completed, prio(task.PriorityHigh), pinned),
		mk("todo-low", prio(task.PriorityLow)),
	}
	got := Apply(tasks, Filter{Kind: All}, SortConfig{Key: KeyPriority, Direction: Desc})
	is.Equal(ids(got), []string{"todo-low", "done-high"})
}

func TestApply_PinnedFirstAmongActive(t *testing.T) {
	is := is.New(t)

	tasks := []task.Task{
		mk("plain-high", prio(task.PriorityHigh)),
		mk("pinned-low", pinned, prio(task.PriorityLow)),
	}
	got := Apply(tasks, Filter{Kind: All}, SortConfig{Key: KeyPriority, Direction: Desc})
	is.Equal(ids(got), []string{"pinned-low", "plain-high"})
}

func TestApply_PriorityDesc(t *testing.T) {
	is := is.New(t)

	tasks := []task.Task{
		mk("med", prio(task.PriorityMedium)),
		mk("low", prio(task.PriorityLow)),
		mk("high", prio(task.PriorityHigh)),
	}
	got := Apply(tasks, Filter{Kind: All}, SortConfig{Key: KeyPriority, Direction: Desc})
	is.Equal(ids(got), []string{"high", "med", "low"})
}

func TestApply_DueDate(t *testing.T) {
	is := is.New(t)

	tasks := []task.Task{
		mk("undated"),
		mk("later", ends(5000)),
		mk("soon", ends(2000)),
	}

	t.Run("dated before undated, soonest first", func(t *testing.T) {
		is := is.New(t)
		got := Apply(tasks, Filter{Kind: All}, SortConfig{Key: KeyDueDate, Direction: Asc})
		is.Equal(ids(got), []string{"soon", "later", "undated"})
	})

	t.Run("direction does not flip the date order", func(t *testing.T) {
		is := is.New(t)
		got := Apply(tasks, Filter{Kind: All}, SortConfig{Key: KeyDueDate, Direction: Desc})
		is.Equal(ids(got), []string{"soon", "later", "undated"})
	})
}

func TestApply_CreatedDesc(t *testing.T) {
	is := is.New(t)

	tasks := []task.Task{
		mk("old", created(100)),
		mk("new", created(300)),
		mk("mid", created(200)),
	}
	got := Apply(tasks, Filter{Kind: All}, SortConfig{Key: KeyCreated, Direction: Desc})
	is.Equal(ids(got), []string{"new", "mid", "old"})

	got = Apply(tasks, Filter{Kind: All}, SortConfig{Key: KeyCreated, Direction: Asc})
	is.Equal(ids(got), []string{"old", "mid", "new"})
}

func TestApply_TieBreakNewestFirst(t *testing.T) {
	is := is.New(t)

	// equal priority, so the tie-break decides
	tasks := []task.Task{
		mk("older", created(100)),
		mk("newer", created(200)),
	}
	got := Apply(tasks, Filter{Kind: All}, SortConfig{Key: KeyPriority, Direction: Desc})
	is.Equal(ids(got), []string{"newer", "older"})
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	is := is.New(t)

	tasks := []task.Task{
		mk("b", created(100)),
		mk("a", created(200)),
	}
	_ = Apply(tasks, Filter{Kind: All}, SortConfig{Key: KeyCreated, Direction: Desc})
	is.Equal(ids(tasks), []string{"b", "a"})
}

func TestApply_ToggleMovesToBottomEverywhere(t *testing.T) {
	is := is.New(t)

	tasks := []task.Task{
		mk("urgent", prio(task.PriorityHigh), pinned, ends(10)),
		mk("other", prio(task.PriorityLow), created(1)),
	}
	// completing the strongest task demotes it under every sort key
	tasks[0].Status = task.StatusCompleted
	for _, key := range []SortKey{KeyPriority, KeyDueDate, KeyCreated} {
		got := Apply(tasks, Filter{Kind: All}, SortConfig{Key: key, Direction: Desc})
		is.Equal(ids(got), []string{"other", "urgent"})
	}
}

func TestNewTaskLandsInDefaultViews(t *testing.T) {
	is := is.New(t)

	fresh := task.New("Buy milk")
	fresh.StartDate = task.MillisPtr(time.Now())
	all := []task.Task{fresh}

	is.Equal(len(Apply(all, Filter{Kind: All}, SortConfig{})), 1)
	is.Equal(len(Apply(all, Filter{Kind: Pinned}, SortConfig{})), 0)
	is.Equal(len(Apply(all, Filter{Kind: Completed}, SortConfig{})), 0)
	is.Equal(CountActive(all), 1)
}

func TestCountActive(t *testing.T) {
	is := is.New(t)

	tasks := []task.Task{mk("a"), mk("b", completed), mk("c", func(t *task.Task) { t.Status = task.StatusInProgress })}
	is.Equal(CountActive(tasks), 2)
}
