package board

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard/internal/domain"
)

func task(title string, status domain.TaskStatus) domain.Task {
	return domain.Task{ID: uuid.New(), Title: title, Status: status}
}

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestProjectPartitionsByStatus(t *testing.T) {
	t.Parallel()

	tasks := []domain.Task{
		task("a", domain.TaskStatusTodo),
		task("b", domain.TaskStatusDone),
		task("c", domain.TaskStatusInProgress),
		task("d", domain.TaskStatusTodo),
		task("e", domain.TaskStatusDone),
	}

	view := Project(tasks)
	assert.Equal(t, []string{"a", "d"}, titles(view.Todo))
	assert.Equal(t, []string{"c"}, titles(view.InProgress))
	assert.Equal(t, []string{"b", "e"}, titles(view.Done))
}

func TestProjectEmptyInput(t *testing.T) {
	t.Parallel()

	view := Project(nil)
	assert.Empty(t, view.Todo)
	assert.Empty(t, view.InProgress)
	assert.Empty(t, view.Done)
	assert.NotNil(t, view.Todo)
}

func TestProjectIsIdempotent(t *testing.T) {
	t.Parallel()

	tasks := []domain.Task{
		task("a", domain.TaskStatusDone),
		task("b", domain.TaskStatusTodo),
		task("c", domain.TaskStatusInProgress),
	}

	once := Project(tasks)

	// Re-projecting the concatenation of the columns yields the same
	// partition.
	flattened := append(append(append([]domain.Task{}, once.Todo...), once.InProgress...), once.Done...)
	twice := Project(flattened)
	assert.Equal(t, once, twice)
}

func TestDetectMoveNoChange(t *testing.T) {
	t.Parallel()

	tasks := []domain.Task{
		task("a", domain.TaskStatusTodo),
		task("b", domain.TaskStatusDone),
	}

	_, ok := DetectMove(tasks, Project(tasks))
	assert.False(t, ok, "identical layout must not produce a move")
}

func TestDetectMoveSingleChange(t *testing.T) {
	t.Parallel()

	a := task("a", domain.TaskStatusTodo)
	b := task("b", domain.TaskStatusDone)
	confirmed := []domain.Task{a, b}

	proposed := Project(confirmed)
	// Drag a from TODO to DONE.
	proposed.Todo = nil
	proposed.Done = append([]domain.Task{a}, proposed.Done...)

	move, ok := DetectMove(confirmed, proposed)
	require.True(t, ok)
	assert.Equal(t, a.ID, move.TaskID)
	assert.Equal(t, domain.TaskStatusTodo, move.From)
	assert.Equal(t, domain.TaskStatusDone, move.To)
}

func TestDetectMoveReportsOnlyFirstOfBatch(t *testing.T) {
	t.Parallel()

	a := task("a", domain.TaskStatusTodo)
	b := task("b", domain.TaskStatusTodo)
	confirmed := []domain.Task{a, b}

	// Both a and b dragged to DONE in the same batch.
	proposed := ColumnView{
		Todo:       []domain.Task{},
		InProgress: []domain.Task{},
		Done:       []domain.Task{a, b},
	}

	move, ok := DetectMove(confirmed, proposed)
	require.True(t, ok)
	assert.Equal(t, a.ID, move.TaskID, "only the first changed task is reported")
}

func TestDetectMoveIgnoresUnknownTasks(t *testing.T) {
	t.Parallel()

	a := task("a", domain.TaskStatusTodo)
	stranger := task("stranger", domain.TaskStatusDone)

	proposed := ColumnView{
		Todo:       []domain.Task{a},
		InProgress: []domain.Task{},
		Done:       []domain.Task{stranger},
	}

	_, ok := DetectMove([]domain.Task{a}, proposed)
	assert.False(t, ok)
}
