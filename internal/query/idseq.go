package query

import (
	"fmt"
	"iter"
)

// DefaultIDPrefix is used by NewIDSequence when prefix is empty.
const DefaultIDPrefix = "ID"

// IDSequence produces identifiers of the form {prefix}_{000001}. The counter
// is held in memory only, so a new sequence starts again from 1; it does not
// guarantee uniqueness across process restarts. IDSequence is not safe for
// concurrent use.
type IDSequence struct {
	prefix string
	n      int
}

// NewIDSequence creates a sequence whose first identifier is {prefix}_000001.
func NewIDSequence(prefix string) *IDSequence {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	return &IDSequence{prefix: prefix}
}

// Next advances the counter and returns the new identifier.
func (s *IDSequence) Next() string {
	s.n++
	return fmt.Sprintf("%s_%06d", s.prefix, s.n)
}

// Cursor returns how many identifiers have been issued.
func (s *IDSequence) Cursor() int {
	return s.n
}

// All returns an unbounded sequence of identifiers that advances the same
// counter as Next.
func (s *IDSequence) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			if !yield(s.Next()) {
				return
			}
		}
	}
}
