package query

import (
	"iter"
	"slices"
)

// Iterator is a single-pass, forward-only cursor over a sequence with an
// optional predicate. Elements the predicate rejects are skipped. An
// Iterator is not safe for concurrent use.
type Iterator[T any] struct {
	next func() (T, bool)
	stop func()
	pred Predicate[T]
	done bool
}

// Iterate wraps seq. pred may be nil to accept every element. Callers that
// abandon the iterator before exhausting it should call Stop.
func Iterate[T any](seq iter.Seq[T], pred Predicate[T]) *Iterator[T] {
	next, stop := iter.Pull(seq)
	return &Iterator[T]{next: next, stop: stop, pred: pred}
}

// IterateSlice is Iterate over the elements of items.
func IterateSlice[T any](items []T, pred Predicate[T]) *Iterator[T] {
	return Iterate(slices.Values(items), pred)
}

// Next advances to the next accepted element. ok is false once the source
// is exhausted or Stop has been called, and stays false from then on.
func (it *Iterator[T]) Next() (v T, ok bool) {
	for !it.done {
		v, ok = it.next()
		if !ok {
			it.Stop()
			break
		}
		if it.pred == nil || it.pred(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Done reports whether the iterator is exhausted.
func (it *Iterator[T]) Done() bool {
	return it.done
}

// Stop releases the underlying sequence. It is safe to call more than once.
func (it *Iterator[T]) Stop() {
	if it.done {
		return
	}
	it.done = true
	it.stop()
}

// Seq drains the remaining elements as a sequence. Ranging over it a second
// time yields nothing.
func (it *Iterator[T]) Seq() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
