package query

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/phrazzld/tasktrack/internal/domain"
)

// ErrInvalidExpression is returned when a filter expression does not compile.
var ErrInvalidExpression = errors.New("invalid filter expression")

// TaskEnv is the environment filter expressions are evaluated against.
// Field names are the identifiers available to an expression, for example
//
//	State == "pending" && Priority == "high" && DaysRemaining <= 3
type TaskEnv struct {
	ID            string
	Title         string
	Description   string
	State         string
	Priority      string
	OwnerID       string
	Assigned      bool
	HasDue        bool
	Overdue       bool
	DaysRemaining int
	CreatedAt     time.Time
	DueAt         time.Time
}

// NewTaskEnv builds the expression environment for t as seen at now.
func NewTaskEnv(t *domain.Task, now time.Time) TaskEnv {
	env := TaskEnv{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		State:       string(t.State),
		Priority:    string(t.Priority),
		OwnerID:     t.OwnerID,
		Assigned:    t.OwnerID != "",
		HasDue:      t.HasDue(),
		Overdue:     t.IsOverdue(now),
		CreatedAt:   t.CreatedAt,
	}
	if days, ok := t.DaysRemaining(now); ok {
		env.DaysRemaining = days
		env.DueAt = *t.DueAt
	}
	return env
}

// ExprPredicate compiles expression once and returns a predicate that
// evaluates it for each task at now. The expression must yield a boolean.
// A task for which evaluation fails is rejected.
func ExprPredicate(expression string, now time.Time) (Predicate[*domain.Task], error) {
	program, err := compileTaskExpr(expression)
	if err != nil {
		return nil, err
	}

	return func(t *domain.Task) bool {
		if t == nil {
			return false
		}
		out, err := expr.Run(program, NewTaskEnv(t, now))
		if err != nil {
			slog.Warn("filter expression evaluation failed",
				"expression", expression,
				"task_id", t.ID,
				"error", err)
			return false
		}
		b, _ := out.(bool)
		return b
	}, nil
}

func compileTaskExpr(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression,
		expr.Env(TaskEnv{}),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpression, err)
	}
	return program, nil
}
