// Package record defines the plain nested representation every persisted
// entity is reduced to before it reaches a codec. The persistence layer never
// interprets field semantics; it only descends into maps and sequences and
// converts values that know how to describe themselves as a Record.
package record

import (
	"errors"
	"fmt"
	"reflect"
	"time"
)

// ErrUnsupportedValue is returned by Normalize when a value cannot be reduced
// to a plain structure and no fallback was supplied.
var ErrUnsupportedValue = errors.New("unsupported value")

// Record is a plain mapping from field name to a scalar, a nested Record-like
// map or a sequence of such values. It carries no behaviour.
type Record map[string]any

// Recorder is implemented by every persisted entity. ToRecord must return a
// fresh Record that the caller is free to keep.
type Recorder interface {
	ToRecord() Record
}

// ToRecord lets a Record be saved anywhere a Recorder is accepted.
func (r Record) ToRecord() Record {
	return r
}

// Fallback converts a value Normalize cannot descend into. Codecs use it to
// decide between a textual rendering and a hard failure.
type Fallback func(v any) (any, error)

// From adapts a typed slice of entities to the []Recorder form the stores accept.
func From[T Recorder](items []T) []Recorder {
	out := make([]Recorder, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// NormalizeAll converts every item to a plain map. A nil item yields a nil map.
func NormalizeAll(items []Recorder, fallback Fallback) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		if isNil(item) {
			out = append(out, nil)
			continue
		}
		n := newNormalizer(fallback)
		m, err := n.normalizeMap(reflect.ValueOf(map[string]any(item.ToRecord())))
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// Normalize reduces v to nil, a scalar, time.Time, []byte, map[string]any or
// []any, recursing through pointers, maps with string keys, slices and arrays.
// Values implementing Recorder are expanded through ToRecord. Anything else
// is handed to fallback, or rejected with ErrUnsupportedValue when fallback is nil.
// A value that contains itself is rejected with ErrUnsupportedValue.
func Normalize(v any, fallback Fallback) (any, error) {
	return newNormalizer(fallback).normalize(v)
}

// visit identifies a map, slice or pointer currently being descended into.
// Slices are keyed by length too, so a shorter view of the same array is not
// mistaken for its parent.
type visit struct {
	ptr uintptr
	len int
}

type normalizer struct {
	fallback Fallback
	visiting map[visit]struct{}
}

func newNormalizer(fallback Fallback) *normalizer {
	return &normalizer{fallback: fallback, visiting: make(map[visit]struct{})}
}

// enter marks rv as being visited and returns the func that unmarks it.
func (n *normalizer) enter(rv reflect.Value) (func(), error) {
	key := visit{ptr: rv.Pointer()}
	if rv.Kind() == reflect.Slice {
		key.len = rv.Len()
	}
	if _, ok := n.visiting[key]; ok {
		return nil, fmt.Errorf("%w: cycle through %s", ErrUnsupportedValue, rv.Type())
	}
	n.visiting[key] = struct{}{}
	return func() { delete(n.visiting, key) }, nil
}

func (n *normalizer) normalize(v any) (any, error) {
	if isNil(v) {
		return nil, nil
	}

	switch x := v.(type) {
	case Recorder:
		return n.normalizeMap(reflect.ValueOf(map[string]any(x.ToRecord())))
	case string, bool, []byte, time.Time,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return x, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		leave, err := n.enter(rv)
		if err != nil {
			return nil, err
		}
		defer leave()
		return n.normalize(rv.Elem().Interface())
	case reflect.Interface:
		return n.normalize(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		return n.normalizeSlice(rv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return applyFallback(v, n.fallback)
		}
		return n.normalizeMap(rv)
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}

	return applyFallback(v, n.fallback)
}

// normalizeMap converts a map with string keys.
func (n *normalizer) normalizeMap(rv reflect.Value) (map[string]any, error) {
	if rv.IsNil() {
		return nil, nil
	}
	leave, err := n.enter(rv)
	if err != nil {
		return nil, err
	}
	defer leave()

	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key().String()
		v, err := n.normalize(iter.Value().Interface())
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func (n *normalizer) normalizeSlice(rv reflect.Value) ([]any, error) {
	if rv.Kind() == reflect.Slice {
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Len() > 0 {
			leave, err := n.enter(rv)
			if err != nil {
				return nil, err
			}
			defer leave()
		}
	}

	out := make([]any, rv.Len())
	for i := range out {
		v, err := n.normalize(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func applyFallback(v any, fallback Fallback) (any, error) {
	if fallback == nil {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
	return fallback(v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
