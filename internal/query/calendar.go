package query

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"time"

	"github.com/phrazzld/tasktrack/internal/domain"
)

// CalendarDay groups the tasks due on one day of a month.
type CalendarDay struct {
	Date    time.Time
	Day     int
	Tasks   []*domain.Task
	Count   int
	Summary string
}

// Calendar yields one CalendarDay for each day of year/month on which at
// least one task is due, in ascending day order. Due dates are read in loc;
// a nil loc means time.Local. Tasks keep their source order within a day.
func Calendar(tasks iter.Seq[*domain.Task], year int, month time.Month, loc *time.Location) iter.Seq[CalendarDay] {
	if loc == nil {
		loc = time.Local
	}
	return func(yield func(CalendarDay) bool) {
		byDay := make(map[int][]*domain.Task)
		for t := range tasks {
			if t == nil || t.DueAt == nil {
				continue
			}
			due := t.DueAt.In(loc)
			if due.Year() != year || due.Month() != month {
				continue
			}
			byDay[due.Day()] = append(byDay[due.Day()], t)
		}

		for _, day := range slices.Sorted(maps.Keys(byDay)) {
			dayTasks := byDay[day]
			entry := CalendarDay{
				Date:    time.Date(year, month, day, 0, 0, 0, 0, loc),
				Day:     day,
				Tasks:   dayTasks,
				Count:   len(dayTasks),
				Summary: taskCount(len(dayTasks)),
			}
			if !yield(entry) {
				return
			}
		}
	}
}

func taskCount(n int) string {
	if n == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", n)
}
