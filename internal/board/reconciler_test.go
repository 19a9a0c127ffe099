package board

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/gateway"
	"github.com/phrazzld/taskboard/internal/taskstore"
)

// fakeSource replays scripted store behavior so reconciliation can be
// tested without a transport.
type fakeSource struct {
	tasks       []domain.Task
	serverTasks []domain.Task
	inFlight    map[uuid.UUID]bool
	updateErr   error
	fetchErr    error

	updateCalls []uuid.UUID
	fetchCalls  int
}

func (f *fakeSource) Tasks() []domain.Task {
	snapshot := make([]domain.Task, len(f.tasks))
	copy(snapshot, f.tasks)
	return snapshot
}

func (f *fakeSource) Update(ctx context.Context, id uuid.UUID, input taskstore.UpdateInput) (*domain.Task, error) {
	f.updateCalls = append(f.updateCalls, id)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			if input.Status != nil {
				f.tasks[i].Status = domain.TaskStatus(*input.Status)
			}
			task := f.tasks[i]
			return &task, nil
		}
	}
	return nil, &taskstore.OpError{
		Kind: taskstore.OpUpdate,
		Err:  &gateway.APIError{Kind: gateway.KindNotFound, Message: "Task not found"},
	}
}

func (f *fakeSource) FetchAll(ctx context.Context) error {
	f.fetchCalls++
	if f.fetchErr != nil {
		f.tasks = nil
		return f.fetchErr
	}
	f.tasks = append([]domain.Task{}, f.serverTasks...)
	return nil
}

func (f *fakeSource) MutationInFlight(id uuid.UUID) bool {
	return f.inFlight[id]
}

func newTestReconciler(src TaskSource) *Reconciler {
	return NewReconciler(src, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestApplyNoChangeIsNoOp(t *testing.T) {
	t.Parallel()

	a := task("a", domain.TaskStatusTodo)
	src := &fakeSource{tasks: []domain.Task{a}}
	rec := newTestReconciler(src)

	view, err := rec.Apply(context.Background(), rec.View())
	require.NoError(t, err)
	assert.Empty(t, src.updateCalls)
	assert.Equal(t, []string{"a"}, titles(view.Todo))
}

func TestApplyConfirmedMoveUpdatesView(t *testing.T) {
	t.Parallel()

	a := task("a", domain.TaskStatusTodo)
	src := &fakeSource{tasks: []domain.Task{a}}
	rec := newTestReconciler(src)

	proposed := ColumnView{Done: []domain.Task{a}}
	view, err := rec.Apply(context.Background(), proposed)
	require.NoError(t, err)

	require.Len(t, src.updateCalls, 1)
	assert.Equal(t, a.ID, src.updateCalls[0])
	assert.Empty(t, view.Todo)
	assert.Equal(t, []string{"a"}, titles(view.Done))
}

func TestApplyRejectedMoveResyncsAndReverts(t *testing.T) {
	t.Parallel()

	a := task("a", domain.TaskStatusTodo)
	src := &fakeSource{
		tasks:       []domain.Task{a},
		serverTasks: []domain.Task{a}, // the server still says TODO
		updateErr: &taskstore.OpError{
			Kind: taskstore.OpUpdate,
			Err:  &gateway.APIError{Kind: gateway.KindUpstream, Message: "upstream failed"},
		},
	}
	rec := newTestReconciler(src)

	proposed := ColumnView{Done: []domain.Task{a}}
	view, err := rec.Apply(context.Background(), proposed)
	require.Error(t, err)
	assert.True(t, taskstore.IsOp(err, taskstore.OpUpdate))

	assert.Equal(t, 1, src.fetchCalls, "failed move triggers a full resync")
	assert.Equal(t, []string{"a"}, titles(view.Todo), "view reverts to the server's state")
	assert.Empty(t, view.Done)
}

func TestApplyDropsMoveWhenMutationInFlight(t *testing.T) {
	t.Parallel()

	a := task("a", domain.TaskStatusTodo)
	src := &fakeSource{
		tasks:    []domain.Task{a},
		inFlight: map[uuid.UUID]bool{a.ID: true},
	}
	rec := newTestReconciler(src)

	proposed := ColumnView{Done: []domain.Task{a}}
	view, err := rec.Apply(context.Background(), proposed)
	require.NoError(t, err)
	assert.Empty(t, src.updateCalls, "in-flight task must not receive a second update")
	assert.Equal(t, []string{"a"}, titles(view.Todo))
}

func TestApplyTreatsInFlightRaceAsDrop(t *testing.T) {
	t.Parallel()

	a := task("a", domain.TaskStatusTodo)
	src := &fakeSource{
		tasks:     []domain.Task{a},
		updateErr: taskstore.ErrMutationInFlight,
	}
	rec := newTestReconciler(src)

	proposed := ColumnView{Done: []domain.Task{a}}
	view, err := rec.Apply(context.Background(), proposed)
	require.NoError(t, err, "losing the race is a drop, not a failure")
	assert.Equal(t, 0, src.fetchCalls)
	assert.Equal(t, []string{"a"}, titles(view.Todo))
}

func TestApplySecondTaskOfBatchSurvivesNextApply(t *testing.T) {
	t.Parallel()

	a := task("a", domain.TaskStatusTodo)
	b := task("b", domain.TaskStatusTodo)
	src := &fakeSource{tasks: []domain.Task{a, b}}
	rec := newTestReconciler(src)

	// Both dragged to DONE in one batch: only a is applied.
	proposed := ColumnView{Done: []domain.Task{a, b}}
	view, err := rec.Apply(context.Background(), proposed)
	require.NoError(t, err)
	require.Len(t, src.updateCalls, 1)
	assert.Equal(t, []string{"a"}, titles(view.Done))
	assert.Equal(t, []string{"b"}, titles(view.Todo))

	// Re-applying the same proposal picks up b.
	view, err = rec.Apply(context.Background(), proposed)
	require.NoError(t, err)
	require.Len(t, src.updateCalls, 2)
	assert.Equal(t, b.ID, src.updateCalls[1])
	assert.Equal(t, []string{"a", "b"}, titles(view.Done))
}
