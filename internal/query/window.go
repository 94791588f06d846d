package query

import (
	"iter"

	"github.com/phrazzld/tasktrack/internal/domain"
)

// Windows lazily partitions seq into consecutive slices of at most size
// elements. Only one window is held in memory at a time. size must be
// positive.
func Windows[T any](seq iter.Seq[T], size int) iter.Seq[[]T] {
	if size < 1 {
		panic("query: window size must be positive")
	}
	return func(yield func([]T) bool) {
		window := make([]T, 0, size)
		for v := range seq {
			window = append(window, v)
			if len(window) == size {
				if !yield(window) {
					return
				}
				window = make([]T, 0, size)
			}
		}
		if len(window) > 0 {
			yield(window)
		}
	}
}

// WindowStats summarizes one window of tasks. The counts and the
// percentage cover this window only, never the windows before it.
type WindowStats struct {
	// Number is the 1-based position of the window.
	Number int
	// Start and End are the inclusive indexes of the window in the source.
	Start int
	End   int

	Total      int
	Pending    int
	InProgress int
	Completed  int

	// PercentCompleted is Completed / Total * 100.
	PercentCompleted float64
}

// DefaultWindowSize is used by WindowedStats when size is not positive.
const DefaultWindowSize = 10

// WindowedStats lazily yields per-window state counts for tasks.
func WindowedStats(tasks iter.Seq[*domain.Task], size int) iter.Seq[WindowStats] {
	if size < 1 {
		size = DefaultWindowSize
	}
	return func(yield func(WindowStats) bool) {
		number := 0
		for window := range Windows(tasks, size) {
			stats := WindowStats{
				Number: number + 1,
				Start:  number * size,
				End:    number*size + len(window) - 1,
				Total:  len(window),
			}
			for _, t := range window {
				if t == nil {
					continue
				}
				switch t.State {
				case domain.TaskStatePending:
					stats.Pending++
				case domain.TaskStateInProgress:
					stats.InProgress++
				case domain.TaskStateCompleted:
					stats.Completed++
				}
			}
			stats.PercentCompleted = float64(stats.Completed) / float64(stats.Total) * 100
			if !yield(stats) {
				return
			}
			number++
		}
	}
}
