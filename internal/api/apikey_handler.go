package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/taskboard/internal/api/shared"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/phrazzld/taskboard/internal/store"
)

// APIKeyHandler handles API key management requests.
type APIKeyHandler struct {
	apiKeyStore store.APIKeyStore
	validator   *validator.Validate
	logger      *slog.Logger

	// timeFunc is injectable for expiry tests
	timeFunc func() time.Time
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(apiKeyStore store.APIKeyStore, log *slog.Logger) *APIKeyHandler {
	if log == nil {
		log = slog.Default()
	}
	return &APIKeyHandler{
		apiKeyStore: apiKeyStore,
		validator:   validator.New(),
		logger:      log.With(slog.String("component", "apikey_handler")),
		timeFunc:    time.Now,
	}
}

// Create handles POST /api/keys.
// The full key value appears only in this response; listings return a
// masked preview.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateAPIKeyRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	var expiresAt *time.Time
	if req.ExpiresInDays != nil {
		t := h.timeFunc().UTC().AddDate(0, 0, *req.ExpiresInDays)
		expiresAt = &t
	}

	key, err := domain.NewAPIKey(userID, req.Name, expiresAt)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.apiKeyStore.Create(r.Context(), key); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("api key created",
		slog.String("key_id", key.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithData(w, r, http.StatusCreated, "API key created", key)
}

// List handles GET /api/keys.
// Returned keys carry only the masked preview, never the full secret.
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	keys, err := h.apiKeyStore.ListByUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list API keys")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "API keys retrieved", keys)
}

// Revoke handles PATCH /api/keys/{id}/revoke.
// The key stays in listings but no longer authenticates.
func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, keyID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.apiKeyStore.Revoke(r.Context(), userID, keyID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("api key revoked",
		slog.String("key_id", keyID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithData(w, r, http.StatusOK, "API key revoked", nil)
}

// Delete handles DELETE /api/keys/{id}.
func (h *APIKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, keyID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.apiKeyStore.Delete(r.Context(), userID, keyID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("api key deleted",
		slog.String("key_id", keyID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithData(w, r, http.StatusOK, "API key deleted", nil)
}
