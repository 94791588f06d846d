package query_test

import (
	"slices"
	"testing"
	"time"

	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprPredicate(t *testing.T) {
	t.Parallel()

	urgent := newTask(t, "urgent", domain.TaskStatePending, at(2*day))
	urgent.Priority = domain.PriorityHigh
	relaxed := newTask(t, "relaxed", domain.TaskStatePending, at(20*day))
	relaxed.Priority = domain.PriorityHigh
	done := newTask(t, "done", domain.TaskStateCompleted, at(-time.Hour))
	tasks := []*domain.Task{urgent, relaxed, done}

	tests := []struct {
		expression string
		want       []string
	}{
		{`State == "pending" && Priority == "high" && DaysRemaining <= 3`, []string{"urgent"}},
		{`Overdue`, []string{"done"}},
		{`HasDue && !Assigned`, []string{"urgent", "relaxed", "done"}},
		{`Title contains "relax"`, []string{"relaxed"}},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			pred, err := query.ExprPredicate(tt.expression, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(slices.Collect(query.Filter(slices.Values(tasks), pred))))
		})
	}
}

func TestExprPredicateInvalid(t *testing.T) {
	t.Parallel()

	for _, expression := range []string{`State ==`, `Unknown == 1`, `Title`} {
		_, err := query.ExprPredicate(expression, now)
		assert.ErrorIs(t, err, query.ErrInvalidExpression, expression)
	}
}
