package task

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestNew(t *testing.T) {
	is := is.New(t)

	before := Millis(time.Now())
	tk := New("Buy milk")
	after := Millis(time.Now())

	is.Equal(tk.Title, "Buy milk")
	is.Equal(tk.Status, StatusTodo)
	is.Equal(tk.Priority, PriorityMedium)
	is.Equal(tk.IsPinned, false)
	is.Equal(len(tk.Tags), 0)
	is.True(tk.ID != "")
	is.True(tk.CreatedAt >= before && tk.CreatedAt <= after)
	is.Equal(tk.UpdatedAt, (*int64)(nil))

	// ids must not collide
	is.True(New("x").ID != New("x").ID)
}

func TestPriorityRank(t *testing.T) {
	is := is.New(t)

	is.True(PriorityHigh.Rank() > PriorityMedium.Rank())
	is.True(PriorityMedium.Rank() > PriorityLow.Rank())
	// unknown priorities rank as low
	is.Equal(Priority("").Rank(), PriorityLow.Rank())
}

func TestValidTitle(t *testing.T) {
	is := is.New(t)

	is.True(ValidTitle("a"))
	is.True(!ValidTitle(""))
	is.True(!ValidTitle("   "))
	is.True(!ValidTitle("\t\n"))
}

func TestMillisRoundTrip(t *testing.T) {
	is := is.New(t)

	now := time.Now().Truncate(time.Millisecond)
	is.Equal(FromMillis(Millis(now)).UnixMilli(), now.UnixMilli())
}
