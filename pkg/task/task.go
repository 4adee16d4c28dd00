package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ID = string

// NewID returns a fresh globally unique task/log id.
func NewID() ID {
	return uuid.NewString()
}

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Rank maps a priority to a comparable weight. Unknown values rank
// alongside LOW so a malformed import never breaks a sort.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

type LogType string

const (
	LogPomodoro LogType = "POMODORO"
	LogManual   LogType = "MANUAL"
	LogFlow     LogType = "FLOW"
)

// Task is the central to-do item. Instants are epoch milliseconds;
// optional ones are pointers so absent values stay absent on the wire.
type Task struct {
	ID               ID           `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description,omitempty"`
	ParentID         ID           `json:"parentId,omitempty"`
	ProjectID        ID           `json:"projectId,omitempty"`
	Status           Status       `json:"status"`
	Priority         Priority     `json:"priority"`
	Tags             []ID         `json:"tags"`
	DueDate          *int64       `json:"dueDate,omitempty"`
	StartDate        *int64       `json:"startDate,omitempty"`
	EndDate          *int64       `json:"endDate,omitempty"`
	EstimatedMinutes *int         `json:"estimatedMinutes,omitempty"`
	CreatedAt        int64        `json:"createdAt"`
	UpdatedAt        *int64       `json:"updatedAt,omitempty"`
	IsPinned         bool         `json:"isPinned"`
	Attachments      []Attachment `json:"attachments,omitempty"`
}

func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

type Attachment struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

type Project struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon,omitempty"`
}

type Tag struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TimeLog is one tracked work session against a task. A log with no
// EndTime is still running.
type TimeLog struct {
	ID              ID      `json:"id"`
	TaskID          ID      `json:"taskId"`
	StartTime       int64   `json:"startTime"`
	EndTime         *int64  `json:"endTime,omitempty"`
	DurationSeconds int64   `json:"durationSeconds"`
	Type            LogType `json:"type"`
}

// New creates a task with the creation-time defaults: status TODO,
// priority MEDIUM, unpinned, no tags.
func New(title string) Task {
	return Task{
		ID:        NewID(),
		Title:     title,
		Status:    StatusTodo,
		Priority:  PriorityMedium,
		Tags:      []ID{},
		CreatedAt: Millis(time.Now()),
	}
}

// ValidTitle reports whether a title survives validation: it must
// contain at least one non-whitespace character.
func ValidTitle(s string) bool {
	return strings.TrimSpace(s) != ""
}

// Millis converts a time to epoch milliseconds, the unit every stored
// instant uses.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// MillisPtr is a convenience for filling optional instants.
func MillisPtr(t time.Time) *int64 {
	ms := t.UnixMilli()
	return &ms
}
