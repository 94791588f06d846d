package query_test

import (
	"testing"

	"github.com/phrazzld/tasktrack/internal/query"
	"github.com/stretchr/testify/assert"
)

func TestIDSequence(t *testing.T) {
	t.Parallel()

	seq := query.NewIDSequence("TASK")
	assert.Equal(t, "TASK_000001", seq.Next())
	assert.Equal(t, "TASK_000002", seq.Next())
	assert.Equal(t, 2, seq.Cursor())

	var more []string
	for id := range seq.All() {
		more = append(more, id)
		if len(more) == 3 {
			break
		}
	}
	assert.Equal(t, []string{"TASK_000003", "TASK_000004", "TASK_000005"}, more)
	assert.Equal(t, "TASK_000006", seq.Next(), "All shares the counter with Next")

	assert.Equal(t, "ID_000001", query.NewIDSequence("").Next())
	assert.Equal(t, "TASK_000001", query.NewIDSequence("TASK").Next(), "a new sequence starts over")
}
