package record

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
}

type labelled struct {
	Name string
	At   *point
}

func (l *labelled) ToRecord() Record {
	return Record{"name": l.Name, "at": l.At}
}

type level int

func TestNormalize(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	var nilPtr *labelled

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"nil pointer", nilPtr, nil},
		{"string", "héllo", "héllo"},
		{"int", 42, 42},
		{"time", now, now},
		{"named int", level(3), int64(3)},
		{"pointer to scalar", func() *string { s := "x"; return &s }(), "x"},
		{"string slice", []string{"a", "b"}, []any{"a", "b"}},
		{"typed map", map[string]int{"a": 1}, map[string]any{"a": 1}},
		{"nested recorder", &labelled{Name: "n"}, map[string]any{"name": "n", "at": nil}},
		{"record", Record{"k": []int{1}}, map[string]any{"k": []any{1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeUnsupported(t *testing.T) {
	_, err := Normalize(point{1, 2}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = Normalize(map[int]string{1: "a"}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	stringify := func(v any) (any, error) { return fmt.Sprint(v), nil }
	got, err := Normalize(&labelled{Name: "n", At: &point{1, 2}}, stringify)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "n", "at": "{1 2}"}, got)

	boom := errors.New("boom")
	_, err = Normalize(Record{"c": make(chan int)}, func(any) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `field "c"`)
}

func TestNormalizeAll(t *testing.T) {
	var missing *labelled
	items := From([]*labelled{{Name: "a"}, missing, {Name: "c"}})

	out, err := NormalizeAll(items, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0]["name"])
	assert.Nil(t, out[1])
	assert.Equal(t, "c", out[2]["name"])

	_, err = NormalizeAll([]Recorder{Record{"p": point{}}}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedValue)
	assert.Contains(t, err.Error(), "item 0")
}

func TestNormalizeRejectsCycles(t *testing.T) {
	selfMap := map[string]any{"k": "v"}
	selfMap["self"] = selfMap

	selfSlice := []any{1, nil}
	selfSlice[1] = selfSlice

	var selfPtr any
	selfPtr = &selfPtr

	deep := Record{"outer": map[string]any{"list": []any{selfMap}}}

	tests := []struct {
		name string
		in   any
	}{
		{"map", selfMap},
		{"slice", selfSlice},
		{"pointer", selfPtr},
		{"nested", deep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.in, func(v any) (any, error) { return fmt.Sprint(v), nil })
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedValue)
			assert.Contains(t, err.Error(), "cycle")
		})
	}
}

func TestNormalizeSharedValues(t *testing.T) {
	shared := []any{"x"}
	inner := map[string]any{"n": 1}

	got, err := Normalize(Record{"a": shared, "b": shared, "c": inner, "d": []any{inner, inner}}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": []any{"x"},
		"b": []any{"x"},
		"c": map[string]any{"n": 1},
		"d": []any{map[string]any{"n": 1}, map[string]any{"n": 1}},
	}, got)

	sub := shared[:0:1]
	got, err = Normalize([]any{sub}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{}}, got)
}
