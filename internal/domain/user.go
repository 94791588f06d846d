package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/record"
)

// User represents a person tasks can be assigned to.
type User struct {
	ID              string `validate:"required"`
	Name            string `validate:"required"`
	Email           string `validate:"required,email"`
	Phone           string
	RegisteredAt    time.Time `validate:"required"`
	AssignedTaskIDs []string
}

// NewUser creates a new User with a fresh ID and registration time.
// The email is normalised to lower case.
// Returns an error if validation fails.
func NewUser(name, email, phone string) (*User, error) {
	user := &User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Phone:        strings.TrimSpace(phone),
		RegisteredAt: time.Now(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	return validateStruct(u)
}

// AssignTask records taskID as assigned to the user. It returns false when
// the task was already assigned.
func (u *User) AssignTask(taskID string) (bool, error) {
	if strings.TrimSpace(taskID) == "" {
		return false, ErrEmptyTaskID
	}
	if slices.Contains(u.AssignedTaskIDs, taskID) {
		return false, nil
	}
	u.AssignedTaskIDs = append(u.AssignedTaskIDs, taskID)
	return true, nil
}

// UnassignTask removes taskID and reports whether it was present.
func (u *User) UnassignTask(taskID string) bool {
	i := slices.Index(u.AssignedTaskIDs, taskID)
	if i < 0 {
		return false
	}
	u.AssignedTaskIDs = slices.Delete(u.AssignedTaskIDs, i, i+1)
	return true
}

// ToRecord implements record.Recorder.
func (u *User) ToRecord() record.Record {
	assigned := make([]any, len(u.AssignedTaskIDs))
	for i, id := range u.AssignedTaskIDs {
		assigned[i] = id
	}
	return record.Record{
		"id":                u.ID,
		"name":              u.Name,
		"email":             u.Email,
		"phone":             optionalString(u.Phone),
		"registered_at":     u.RegisteredAt,
		"assigned_task_ids": assigned,
	}
}

// UserFromRecord rebuilds a User from a record written by either storage format.
func UserFromRecord(r record.Record) (*User, error) {
	var (
		u   User
		err error
	)

	if u.ID, err = stringField(r, "id"); err != nil {
		return nil, err
	}
	if u.Name, err = stringField(r, "name"); err != nil {
		return nil, err
	}
	if u.Email, err = stringField(r, "email"); err != nil {
		return nil, err
	}
	if u.Phone, err = optionalStringField(r, "phone"); err != nil {
		return nil, err
	}
	if u.RegisteredAt, err = timeField(r, "registered_at"); err != nil {
		return nil, err
	}
	if u.AssignedTaskIDs, err = stringSliceField(r, "assigned_task_ids"); err != nil {
		return nil, err
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}
	return &u, nil
}
