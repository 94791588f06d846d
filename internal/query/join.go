package query

import (
	"iter"

	"github.com/phrazzld/tasktrack/internal/domain"
)

// UserTasks is a user together with the tasks assigned to them.
type UserTasks struct {
	User       *domain.User
	Tasks      []*domain.Task
	Pending    []*domain.Task
	InProgress []*domain.Task
	Completed  []*domain.Task
}

// Total returns the number of tasks assigned to the user.
func (u UserTasks) Total() int {
	return len(u.Tasks)
}

// UsersWithTasks yields every user with the tasks whose owner is that user,
// in user order. Tasks are indexed once per iteration; unassigned tasks and
// tasks owned by unknown users are ignored.
func UsersWithTasks(users iter.Seq[*domain.User], tasks iter.Seq[*domain.Task]) iter.Seq[UserTasks] {
	return func(yield func(UserTasks) bool) {
		byOwner := make(map[string][]*domain.Task)
		for t := range tasks {
			if t == nil || t.OwnerID == "" {
				continue
			}
			byOwner[t.OwnerID] = append(byOwner[t.OwnerID], t)
		}

		for u := range users {
			if u == nil {
				continue
			}
			entry := UserTasks{User: u, Tasks: byOwner[u.ID]}
			for _, t := range entry.Tasks {
				switch t.State {
				case domain.TaskStatePending:
					entry.Pending = append(entry.Pending, t)
				case domain.TaskStateInProgress:
					entry.InProgress = append(entry.InProgress, t)
				case domain.TaskStateCompleted:
					entry.Completed = append(entry.Completed, t)
				}
			}
			if !yield(entry) {
				return
			}
		}
	}
}
