package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/record"
)

// TaskState represents where a task is in its lifecycle
type TaskState string

// Possible task states
const (
	TaskStatePending    TaskState = "pending"
	TaskStateInProgress TaskState = "in_progress"
	TaskStateCompleted  TaskState = "completed"
)

// TaskStates returns every state in lifecycle order.
func TaskStates() []TaskState {
	return []TaskState{TaskStatePending, TaskStateInProgress, TaskStateCompleted}
}

// ParseTaskState converts text to a TaskState.
func ParseTaskState(s string) (TaskState, error) {
	state := TaskState(strings.ToLower(strings.TrimSpace(s)))
	switch state {
	case TaskStatePending, TaskStateInProgress, TaskStateCompleted:
		return state, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTaskState, s)
}

// Priority ranks how urgent a task is
type Priority string

// Possible priorities
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority converts text to a Priority. Empty text yields PriorityLow.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "":
		return PriorityLow, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// Task is a unit of work that can be assigned to a user and tracked
// through its states until completion.
type Task struct {
	ID          string `validate:"required"`
	Title       string `validate:"required"`
	Description string
	CreatedAt   time.Time `validate:"required"`
	DueAt       *time.Time
	CompletedAt *time.Time
	State       TaskState `validate:"required,oneof=pending in_progress completed"`
	OwnerID     string
	Priority    Priority `validate:"required,oneof=low medium high"`
}

// NewTask creates a pending Task with a fresh ID.
// Returns an error if validation fails.
func NewTask(title, description string, due *time.Time, ownerID string, priority Priority) (*Task, error) {
	if priority == "" {
		priority = PriorityLow
	}

	task := &Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now(),
		DueAt:       due,
		State:       TaskStatePending,
		OwnerID:     ownerID,
		Priority:    priority,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	return validateStruct(t)
}

// SetState moves the task to state. Completing a task stamps CompletedAt;
// leaving the completed state clears it.
func (t *Task) SetState(state TaskState, now time.Time) error {
	if _, err := ParseTaskState(string(state)); err != nil {
		return err
	}
	t.State = state
	if state == TaskStateCompleted {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	return nil
}

// Reassign changes the owner. An empty ownerID unassigns the task.
func (t *Task) Reassign(ownerID string) {
	t.OwnerID = ownerID
}

// HasDue reports whether the task has a due date.
func (t *Task) HasDue() bool {
	return t.DueAt != nil
}

// IsOverdue reports whether now is past the due date. Tasks without a due
// date are never overdue.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueAt != nil && now.After(*t.DueAt)
}

// DaysRemaining returns the whole days from now until the due date, rounded
// towards negative infinity, so a task due in 2h is 0 days away and a task
// 1h overdue is -1. ok is false when the task has no due date.
func (t *Task) DaysRemaining(now time.Time) (days int, ok bool) {
	if t.DueAt == nil {
		return 0, false
	}
	const day = 24 * time.Hour
	d := t.DueAt.Sub(now)
	days = int(d / day)
	if d%day < 0 {
		days--
	}
	return days, true
}

// ToRecord implements record.Recorder.
func (t *Task) ToRecord() record.Record {
	return record.Record{
		"id":           t.ID,
		"title":        t.Title,
		"description":  optionalString(t.Description),
		"created_at":   t.CreatedAt,
		"due_at":       optionalTime(t.DueAt),
		"completed_at": optionalTime(t.CompletedAt),
		"state":        string(t.State),
		"owner_id":     optionalString(t.OwnerID),
		"priority":     string(t.Priority),
	}
}

// TaskFromRecord rebuilds a Task from a record written by either storage format.
func TaskFromRecord(r record.Record) (*Task, error) {
	var (
		t   Task
		err error
	)

	if t.ID, err = stringField(r, "id"); err != nil {
		return nil, err
	}
	if t.Title, err = stringField(r, "title"); err != nil {
		return nil, err
	}
	if t.Description, err = optionalStringField(r, "description"); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = timeField(r, "created_at"); err != nil {
		return nil, err
	}
	if t.DueAt, err = optionalTimeField(r, "due_at"); err != nil {
		return nil, err
	}
	if t.CompletedAt, err = optionalTimeField(r, "completed_at"); err != nil {
		return nil, err
	}
	if t.OwnerID, err = optionalStringField(r, "owner_id"); err != nil {
		return nil, err
	}

	state, err := stringField(r, "state")
	if err != nil {
		return nil, err
	}
	if t.State, err = ParseTaskState(state); err != nil {
		return nil, err
	}

	priority, err := optionalStringField(r, "priority")
	if err != nil {
		return nil, err
	}
	if t.Priority, err = ParsePriority(priority); err != nil {
		return nil, err
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
