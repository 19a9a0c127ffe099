package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/taskstore"
)

// TaskSource is the slice of the task store the reconciler needs.
type TaskSource interface {
	Tasks() []domain.Task
	Update(ctx context.Context, id uuid.UUID, input taskstore.UpdateInput) (*domain.Task, error)
	FetchAll(ctx context.Context) error
	MutationInFlight(id uuid.UUID) bool
}

// Reconciler turns proposed board layouts into confirmed server state.
// The rendered view is always derived from the store's confirmed
// cache, never from the proposal itself.
type Reconciler struct {
	store  TaskSource
	logger *slog.Logger
}

// NewReconciler creates a reconciler over the given task source.
func NewReconciler(store TaskSource, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		store:  store,
		logger: log.With(slog.String("component", "board")),
	}
}

// View projects the current confirmed cache into columns.
func (r *Reconciler) View() ColumnView {
	return Project(r.store.Tasks())
}

// Apply reconciles a proposed layout. The first detected column change
// is sent to the server as a status update; a proposal with no change
// is a no-op. A move targeting a task with an unconfirmed mutation is
// dropped until that mutation resolves. On update failure the cache is
// resynced from the server so the returned view reflects truth, and
// the failure is reported. The returned view is always derived from
// the confirmed cache.
func (r *Reconciler) Apply(ctx context.Context, proposed ColumnView) (ColumnView, error) {
	move, ok := DetectMove(r.store.Tasks(), proposed)
	if !ok {
		return r.View(), nil
	}

	if r.store.MutationInFlight(move.TaskID) {
		r.logger.Debug("move dropped, task has a mutation in flight",
			slog.String("task_id", move.TaskID.String()))
		return r.View(), nil
	}

	status := string(move.To)
	_, err := r.store.Update(ctx, move.TaskID, taskstore.UpdateInput{Status: &status})
	if err != nil {
		if errors.Is(err, taskstore.ErrMutationInFlight) {
			// Lost the race to another mutation; drop the move.
			return r.View(), nil
		}
		r.logger.Warn("move rejected, resyncing board",
			slog.String("task_id", move.TaskID.String()),
			slog.String("to", string(move.To)),
			slog.String("error", err.Error()))
		if syncErr := r.store.FetchAll(ctx); syncErr != nil {
			return r.View(), fmt.Errorf("resync after failed move: %w", syncErr)
		}
		return r.View(), fmt.Errorf("move task to %s: %w", move.To, err)
	}

	return r.View(), nil
}
