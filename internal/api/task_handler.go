package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/phrazzld/taskboard/internal/api/shared"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/events"
	"github.com/phrazzld/taskboard/internal/generation"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/phrazzld/taskboard/internal/store"
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskStore    store.TaskStore
	userStore    store.UserStore
	generator    generation.SuggestionGenerator
	fallback     generation.SuggestionGenerator
	eventEmitter events.EventEmitter
	validator    *validator.Validate
	logger       *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
// generator may be nil when no LLM is configured; suggestions then come
// from the fallback generator. The event emitter may also be nil.
func NewTaskHandler(
	taskStore store.TaskStore,
	userStore store.UserStore,
	generator generation.SuggestionGenerator,
	fallback generation.SuggestionGenerator,
	eventEmitter events.EventEmitter,
	log *slog.Logger,
) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}
	if fallback == nil {
		fallback = generation.NewFallbackGenerator(log)
	}
	return &TaskHandler{
		taskStore:    taskStore,
		userStore:    userStore,
		generator:    generator,
		fallback:     fallback,
		eventEmitter: eventEmitter,
		validator:    validator.New(),
		logger:       log.With(slog.String("component", "task_handler")),
	}
}

// List handles GET /api/tasks.
// Tasks are returned newest first.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	tasks, err := h.taskStore.ListByUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Tasks retrieved", tasks)
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	task, err := domain.NewTask(userID, req.Title, req.Description, domain.TaskStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.emitTaskEvent(r, events.TypeTaskCreated, task)

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithData(w, r, http.StatusCreated, "Task created", task)
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Task retrieved", task)
}

// Update handles PATCH /api/tasks/{id}.
// Only the fields present in the request are changed.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	update := store.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status, err := domain.ParseTaskStatus(*req.Status)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		update.Status = &status
	}

	task, err := h.taskStore.Update(r.Context(), userID, taskID, update)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if update.Status != nil && *update.Status == domain.TaskStatusDone {
		h.emitTaskEvent(r, events.TypeTaskCompleted, task)
	}

	log.Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithData(w, r, http.StatusOK, "Task updated", task)
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.taskStore.Delete(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithData(w, r, http.StatusOK, "Task deleted", nil)
}

// Suggest handles GET /api/tasks/suggestions?context=.
// The LLM-backed generator is tried first; on any failure the request is
// served by the deterministic fallback so the endpoint always succeeds.
func (h *TaskHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	req := SuggestTasksRequest{Context: r.URL.Query().Get("context")}
	if err := h.validator.Struct(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	suggestions := h.generateSuggestions(r, userID, req.Context)

	shared.RespondWithData(w, r, http.StatusOK, "Suggestions generated", SuggestionsData{
		Suggestions: suggestions,
	})
}

// generateSuggestions runs the configured generator with fallback.
func (h *TaskHandler) generateSuggestions(
	r *http.Request,
	userID uuid.UUID,
	contextText string,
) []domain.TaskSuggestion {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if h.generator != nil {
		suggestions, err := h.generator.GenerateSuggestions(r.Context(), userID, contextText)
		if err == nil {
			return capSuggestions(suggestions)
		}
		log.Warn("suggestion generator failed, using fallback",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
	}

	suggestions, err := h.fallback.GenerateSuggestions(r.Context(), userID, contextText)
	if err != nil {
		// The fallback is documented never to fail; guard anyway.
		log.Error("fallback generator failed", slog.String("error", err.Error()))
		return []domain.TaskSuggestion{}
	}
	return capSuggestions(suggestions)
}

// capSuggestions enforces the batch limit no matter what a generator
// implementation returns.
func capSuggestions(suggestions []domain.TaskSuggestion) []domain.TaskSuggestion {
	if len(suggestions) > domain.MaxSuggestions {
		return suggestions[:domain.MaxSuggestions]
	}
	return suggestions
}

// emitTaskEvent publishes a task lifecycle event with the owner's
// contact details. Failures are logged and dropped; notification
// problems never surface to the task operation itself.
func (h *TaskHandler) emitTaskEvent(r *http.Request, eventType string, task *domain.Task) {
	if h.eventEmitter == nil || h.userStore == nil {
		return
	}

	user, err := h.userStore.GetByID(r.Context(), task.UserID)
	if err != nil {
		h.logger.Error("failed to load user for task event",
			"error", err,
			"event_type", eventType,
			"user_id", task.UserID)
		return
	}

	event, err := events.NewEvent(eventType, map[string]string{
		"email":     user.Email,
		"fullName":  user.FullName,
		"taskTitle": task.Title,
	})
	if err != nil {
		h.logger.Error("failed to build task event",
			"error", err,
			"event_type", eventType)
		return
	}

	if err := h.eventEmitter.EmitEvent(r.Context(), event); err != nil {
		h.logger.Error("failed to emit task event",
			"error", err,
			"event_type", eventType,
			"event_id", event.ID)
	}
}
