// Package suggest manages a batch of task suggestions on the client:
// generation, positional selection, and committing selected
// suggestions into real tasks through the task store.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/taskstore"
)

// ErrNoSelection is returned by CommitSelection when nothing is
// selected.
var ErrNoSelection = errors.New("no suggestions selected")

// ErrIndexOutOfRange is returned when a selection index does not refer
// to a suggestion in the current batch.
var ErrIndexOutOfRange = errors.New("suggestion index out of range")

// commitConcurrency bounds how many task creations a single commit
// issues at once.
const commitConcurrency = 4

// TaskCreator is the slice of the task store the adapter needs.
type TaskCreator interface {
	Suggestions(ctx context.Context, contextText string) ([]domain.TaskSuggestion, error)
	Create(ctx context.Context, input taskstore.CreateInput) (*domain.Task, error)
}

// CommitFailure records one suggestion that could not be created.
type CommitFailure struct {
	Index int
	Title string
	Err   error
}

// CommitError reports a partially failed commit: it names exactly the
// selected suggestions whose creation failed. Suggestions not listed
// were created successfully.
type CommitError struct {
	Failures []CommitFailure
}

func (e *CommitError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("[%d] %q: %v", f.Index, f.Title, f.Err)
	}
	return "commit failed for " + strings.Join(parts, ", ")
}

// Adapter holds the current suggestion batch and its selection.
// Selection is positional: indices refer to the batch that produced
// them, so regenerating clears the selection rather than letting stale
// indices point at new suggestions.
type Adapter struct {
	store  TaskCreator
	logger *slog.Logger

	mu       sync.Mutex
	batch    []domain.TaskSuggestion
	selected map[int]struct{}
}

// NewAdapter creates an adapter with an empty batch.
func NewAdapter(store TaskCreator, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		store:    store,
		logger:   log.With(slog.String("component", "suggest")),
		selected: make(map[int]struct{}),
	}
}

// Generate fetches a fresh batch of suggestions, replacing the current
// one and clearing the selection. The batch is capped at
// domain.MaxSuggestions regardless of what the server returns.
func (a *Adapter) Generate(ctx context.Context, contextText string) ([]domain.TaskSuggestion, error) {
	suggestions, err := a.store.Suggestions(ctx, contextText)
	if err != nil {
		return nil, err
	}
	if len(suggestions) > domain.MaxSuggestions {
		suggestions = suggestions[:domain.MaxSuggestions]
	}

	a.mu.Lock()
	a.batch = suggestions
	a.selected = make(map[int]struct{})
	a.mu.Unlock()

	a.logger.Debug("suggestion batch replaced", slog.Int("count", len(suggestions)))
	return a.Suggestions(), nil
}

// Suggestions returns a snapshot copy of the current batch.
func (a *Adapter) Suggestions() []domain.TaskSuggestion {
	a.mu.Lock()
	defer a.mu.Unlock()
	snapshot := make([]domain.TaskSuggestion, len(a.batch))
	copy(snapshot, a.batch)
	return snapshot
}

// Select marks the suggestion at index as selected.
func (a *Adapter) Select(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.batch) {
		return ErrIndexOutOfRange
	}
	a.selected[index] = struct{}{}
	return nil
}

// Deselect unmarks the suggestion at index. Deselecting an unselected
// index is a no-op.
func (a *Adapter) Deselect(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.batch) {
		return ErrIndexOutOfRange
	}
	delete(a.selected, index)
	return nil
}

// Toggle flips the selection state of the suggestion at index.
func (a *Adapter) Toggle(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.batch) {
		return ErrIndexOutOfRange
	}
	if _, ok := a.selected[index]; ok {
		delete(a.selected, index)
	} else {
		a.selected[index] = struct{}{}
	}
	return nil
}

// Selected returns the selected indices in ascending order.
func (a *Adapter) Selected() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	indices := make([]int, 0, len(a.selected))
	for i := range a.selected {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

// CommitSelection creates a task for every selected suggestion.
// Creations run concurrently through the task store. Successfully
// committed suggestions are deselected; on partial failure the failed
// ones stay selected for retry and a CommitError names them. Returns
// the created tasks in selection-index order.
func (a *Adapter) CommitSelection(ctx context.Context) ([]domain.Task, error) {
	a.mu.Lock()
	if len(a.selected) == 0 {
		a.mu.Unlock()
		return nil, ErrNoSelection
	}
	indices := make([]int, 0, len(a.selected))
	for i := range a.selected {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	picked := make([]domain.TaskSuggestion, len(indices))
	for i, idx := range indices {
		picked[i] = a.batch[idx]
	}
	a.mu.Unlock()

	created := make([]*domain.Task, len(indices))
	failures := make([]error, len(indices))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(commitConcurrency)
	for i := range indices {
		i := i
		g.Go(func() error {
			task, err := a.store.Create(ctx, taskstore.CreateInput{
				Title:       picked[i].Title,
				Description: picked[i].Description,
			})
			if err != nil {
				failures[i] = err
				return nil
			}
			created[i] = task
			return nil
		})
	}
	_ = g.Wait()

	var tasks []domain.Task
	var commitErr CommitError
	a.mu.Lock()
	for i, idx := range indices {
		switch {
		case failures[i] != nil:
			commitErr.Failures = append(commitErr.Failures, CommitFailure{
				Index: idx,
				Title: picked[i].Title,
				Err:   failures[i],
			})
		default:
			tasks = append(tasks, *created[i])
			delete(a.selected, idx)
		}
	}
	a.mu.Unlock()

	if len(commitErr.Failures) > 0 {
		a.logger.Warn("suggestion commit partially failed",
			slog.Int("failed", len(commitErr.Failures)),
			slog.Int("created", len(tasks)))
		return tasks, &commitErr
	}
	return tasks, nil
}
