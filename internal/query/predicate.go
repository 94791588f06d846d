package query

import (
	"iter"
	"strings"
	"time"

	"github.com/phrazzld/tasktrack/internal/domain"
	"golang.org/x/text/cases"
)

// Predicate reports whether an element should be kept.
type Predicate[T any] func(T) bool

// Compose returns a predicate that holds only when every pred holds.
// With no arguments it accepts everything.
func Compose[T any](preds ...Predicate[T]) Predicate[T] {
	return func(v T) bool {
		for _, p := range preds {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

// AnyOf returns a predicate that holds when at least one pred holds.
func AnyOf[T any](preds ...Predicate[T]) Predicate[T] {
	return func(v T) bool {
		for _, p := range preds {
			if p(v) {
				return true
			}
		}
		return false
	}
}

// Not negates pred.
func Not[T any](pred Predicate[T]) Predicate[T] {
	return func(v T) bool {
		return !pred(v)
	}
}

// Filter lazily yields the elements of seq accepted by pred, in order.
func Filter[T any](seq iter.Seq[T], pred Predicate[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			if pred(v) && !yield(v) {
				return
			}
		}
	}
}

// StateIs matches tasks in state.
func StateIs(state domain.TaskState) Predicate[*domain.Task] {
	return func(t *domain.Task) bool {
		return t != nil && t.State == state
	}
}

// PriorityIs matches tasks with priority.
func PriorityIs(priority domain.Priority) Predicate[*domain.Task] {
	return func(t *domain.Task) bool {
		return t != nil && t.Priority == priority
	}
}

// OwnedBy matches tasks assigned to ownerID.
func OwnedBy(ownerID string) Predicate[*domain.Task] {
	return func(t *domain.Task) bool {
		return t != nil && t.OwnerID == ownerID
	}
}

// IsOverdue matches tasks whose due date is before now.
func IsOverdue(now time.Time) Predicate[*domain.Task] {
	return func(t *domain.Task) bool {
		return t != nil && t.IsOverdue(now)
	}
}

// DueWithinDays matches tasks with between 0 and days whole days left.
func DueWithinDays(now time.Time, days int) Predicate[*domain.Task] {
	return func(t *domain.Task) bool {
		if t == nil {
			return false
		}
		remaining, ok := t.DaysRemaining(now)
		return ok && remaining >= 0 && remaining <= days
	}
}

// DueBetween matches tasks due in [start, end], both ends inclusive.
func DueBetween(start, end time.Time) Predicate[*domain.Task] {
	return func(t *domain.Task) bool {
		return t != nil && t.DueAt != nil && !t.DueAt.Before(start) && !t.DueAt.After(end)
	}
}

// TitleContains matches tasks whose title contains text, ignoring case.
func TitleContains(text string) Predicate[*domain.Task] {
	needle := fold(text)
	return func(t *domain.Task) bool {
		return t != nil && strings.Contains(fold(t.Title), needle)
	}
}

// DescriptionContains matches tasks whose description contains text, ignoring case.
func DescriptionContains(text string) Predicate[*domain.Task] {
	needle := fold(text)
	return func(t *domain.Task) bool {
		return t != nil && strings.Contains(fold(t.Description), needle)
	}
}

// TextContains matches tasks whose title or description contains text, ignoring case.
func TextContains(text string) Predicate[*domain.Task] {
	return AnyOf(TitleContains(text), DescriptionContains(text))
}

// fold applies Unicode case folding, so "ÉCOLE" matches "école".
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// ByState lazily yields the tasks in state, preserving their relative order.
func ByState(tasks iter.Seq[*domain.Task], state domain.TaskState) iter.Seq[*domain.Task] {
	return Filter(tasks, StateIs(state))
}

// ByPriority lazily yields the tasks with priority.
func ByPriority(tasks iter.Seq[*domain.Task], priority domain.Priority) iter.Seq[*domain.Task] {
	return Filter(tasks, PriorityIs(priority))
}

// ByOwner lazily yields the tasks assigned to ownerID.
func ByOwner(tasks iter.Seq[*domain.Task], ownerID string) iter.Seq[*domain.Task] {
	return Filter(tasks, OwnedBy(ownerID))
}

// Overdue lazily yields the tasks whose due date has passed at now.
func Overdue(tasks iter.Seq[*domain.Task], now time.Time) iter.Seq[*domain.Task] {
	return Filter(tasks, IsOverdue(now))
}

// DueWithin lazily yields the tasks due within days whole days of now.
func DueWithin(tasks iter.Seq[*domain.Task], now time.Time, days int) iter.Seq[*domain.Task] {
	return Filter(tasks, DueWithinDays(now, days))
}
