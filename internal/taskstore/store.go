// Package taskstore maintains the client-side cache of the user's
// tasks. The cache is authoritative for rendering and mutates only
// after the server confirms an operation; there are no optimistic
// writes and therefore nothing to roll back.
package taskstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard/internal/domain"
)

// Gateway is the transport the store issues API calls through.
// *gateway.Client satisfies it.
type Gateway interface {
	Do(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error)
}

// CreateInput describes a task to be created. Status may be empty,
// in which case the server defaults it to TODO.
type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// UpdateInput describes a partial task update. Nil fields are left
// unchanged by the server.
type UpdateInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Store caches the user's tasks and serializes mutations per task ID.
// A second mutation for a task whose previous mutation has not yet
// resolved is rejected with ErrMutationInFlight.
type Store struct {
	gw     Gateway
	logger *slog.Logger

	mu       sync.Mutex
	tasks    []domain.Task
	inFlight map[uuid.UUID]struct{}
}

// NewStore creates an empty task store backed by the given gateway.
func NewStore(gw Gateway, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		gw:       gw,
		logger:   log.With(slog.String("component", "taskstore")),
		inFlight: make(map[uuid.UUID]struct{}),
	}
}

// Tasks returns a snapshot copy of the cached tasks. Callers may not
// mutate the collection through it; only confirmed server responses
// change the cache.
func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]domain.Task, len(s.tasks))
	copy(snapshot, s.tasks)
	return snapshot
}

// MutationInFlight reports whether the given task currently has an
// unconfirmed mutation.
func (s *Store) MutationInFlight(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inFlight[id]
	return busy
}

// FetchAll replaces the cache with the server's task list. On failure
// the cache is emptied rather than left stale.
func (s *Store) FetchAll(ctx context.Context) error {
	data, err := s.gw.Do(ctx, http.MethodGet, "/tasks", nil, nil)
	if err != nil {
		s.mu.Lock()
		s.tasks = nil
		s.mu.Unlock()
		return &OpError{Kind: OpFetch, Err: err}
	}

	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		s.mu.Lock()
		s.tasks = nil
		s.mu.Unlock()
		return &OpError{Kind: OpFetch, Err: err}
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	s.logger.Debug("task cache refreshed", slog.Int("count", len(tasks)))
	return nil
}

// Create persists a new task and, on confirmation, prepends it to the
// cache so the newest task renders first.
func (s *Store) Create(ctx context.Context, input CreateInput) (*domain.Task, error) {
	data, err := s.gw.Do(ctx, http.MethodPost, "/tasks", nil, input)
	if err != nil {
		return nil, &OpError{Kind: OpCreate, Err: err}
	}

	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, &OpError{Kind: OpCreate, Err: err}
	}

	s.mu.Lock()
	s.tasks = append([]domain.Task{task}, s.tasks...)
	s.mu.Unlock()
	return &task, nil
}

// Update applies a partial update to a task. The cached entry is
// replaced in place, preserving list order. Returns
// ErrMutationInFlight if the task already has an unconfirmed mutation.
func (s *Store) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*domain.Task, error) {
	if err := s.beginMutation(id); err != nil {
		return nil, err
	}
	defer s.endMutation(id)

	data, err := s.gw.Do(ctx, http.MethodPatch, "/tasks/"+id.String(), nil, input)
	if err != nil {
		return nil, &OpError{Kind: OpUpdate, Err: err}
	}

	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, &OpError{Kind: OpUpdate, Err: err}
	}

	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = task
			break
		}
	}
	s.mu.Unlock()
	return &task, nil
}

// Delete removes a task. The cached entry is removed only after the
// server confirms the deletion; a failed delete leaves the cache
// unchanged. Returns ErrMutationInFlight if the task already has an
// unconfirmed mutation.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.beginMutation(id); err != nil {
		return err
	}
	defer s.endMutation(id)

	if _, err := s.gw.Do(ctx, http.MethodDelete, "/tasks/"+id.String(), nil, nil); err != nil {
		return &OpError{Kind: OpDelete, Err: err}
	}

	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// Suggestions asks the server for task suggestions. The result is not
// cached; suggestions become tasks only through Create.
func (s *Store) Suggestions(ctx context.Context, contextText string) ([]domain.TaskSuggestion, error) {
	query := url.Values{}
	if contextText != "" {
		query.Set("context", contextText)
	}
	data, err := s.gw.Do(ctx, http.MethodGet, "/tasks/suggestions", query, nil)
	if err != nil {
		return nil, &OpError{Kind: OpSuggestions, Err: err}
	}

	var body struct {
		Suggestions []domain.TaskSuggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, &OpError{Kind: OpSuggestions, Err: err}
	}
	return body.Suggestions, nil
}

func (s *Store) beginMutation(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return ErrMutationInFlight
	}
	s.inFlight[id] = struct{}{}
	return nil
}

func (s *Store) endMutation(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}
