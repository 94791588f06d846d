package query_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 5, 15, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

const day = 24 * time.Hour

// newTask builds a valid task without going through NewTask so IDs are predictable.
func newTask(t *testing.T, id string, state domain.TaskState, due *time.Time) *domain.Task {
	t.Helper()
	task := &domain.Task{
		ID:        id,
		Title:     "Task " + id,
		CreatedAt: now.Add(-30 * day),
		DueAt:     due,
		State:     domain.TaskStatePending,
		Priority:  domain.PriorityLow,
	}
	require.NoError(t, task.SetState(state, now))
	require.NoError(t, task.Validate())
	return task
}

// tenTasks returns 5 pending, 2 in-progress and 3 completed tasks in an interleaved order.
func tenTasks(t *testing.T) []*domain.Task {
	t.Helper()
	states := []domain.TaskState{
		domain.TaskStatePending,
		domain.TaskStateInProgress,
		domain.TaskStateCompleted,
		domain.TaskStatePending,
		domain.TaskStatePending,
		domain.TaskStateCompleted,
		domain.TaskStateInProgress,
		domain.TaskStatePending,
		domain.TaskStateCompleted,
		domain.TaskStatePending,
	}
	tasks := make([]*domain.Task, len(states))
	for i, state := range states {
		tasks[i] = newTask(t, fmt.Sprintf("t%02d", i), state, at(time.Duration(i-5)*day))
	}
	return tasks
}

func ids(tasks []*domain.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}
