package domain

import (
	"fmt"
	"time"

	"github.com/phrazzld/tasktrack/internal/record"
)

// Timestamps arrive as time.Time from the opaque format and as RFC 3339
// text from the structured format; both are accepted.

func stringField(r record.Record, key string) (string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: missing field %q", ErrInvalidFormat, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, want string", ErrInvalidFormat, key, v)
	}
	return s, nil
}

func optionalStringField(r record.Record, key string) (string, error) {
	if v, ok := r[key]; !ok || v == nil {
		return "", nil
	}
	return stringField(r, key)
}

func timeField(r record.Record, key string) (time.Time, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return time.Time{}, fmt.Errorf("%w: missing field %q", ErrInvalidFormat, key)
	}
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: field %q: %v", ErrInvalidFormat, key, err)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: field %q is %T, want timestamp", ErrInvalidFormat, key, v)
}

func optionalTimeField(r record.Record, key string) (*time.Time, error) {
	if v, ok := r[key]; !ok || v == nil {
		return nil, nil
	}
	t, err := timeField(r, key)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func stringSliceField(r record.Record, key string) ([]string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case []string:
		return append([]string(nil), x...), nil
	case []any:
		out := make([]string, 0, len(x))
		for i, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: field %q[%d] is %T, want string", ErrInvalidFormat, key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: field %q is %T, want list", ErrInvalidFormat, key, v)
}

func optionalString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
