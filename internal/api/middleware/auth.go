package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard/internal/api/shared"
	"github.com/phrazzld/taskboard/internal/redact"
	"github.com/phrazzld/taskboard/internal/service/auth"
	"github.com/phrazzld/taskboard/internal/store"
)

// Authentication method labels stored in the request context.
const (
	AuthMethodJWT    = "jwt"
	AuthMethodAPIKey = "api_key"
)

// AuthMiddleware authenticates requests with either a Bearer JWT or an
// X-API-Key header. API keys take precedence when both are present.
type AuthMiddleware struct {
	jwtService  auth.JWTService
	apiKeyStore store.APIKeyStore

	// timeFunc is injectable for API key expiry tests
	timeFunc func() time.Time
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, apiKeyStore store.APIKeyStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		apiKeyStore: apiKeyStore,
		timeFunc:    time.Now,
	}
}

// Authenticate validates the request's credentials and adds the user ID
// and authentication method to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
			m.authenticateAPIKey(w, r, next, apiKey)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		m.authenticateJWT(w, r, next, parts[1])
	})
}

// authenticateJWT validates a Bearer access token.
func (m *AuthMiddleware) authenticateJWT(
	w http.ResponseWriter,
	r *http.Request,
	next http.Handler,
	token string,
) {
	claims, err := m.jwtService.ValidateToken(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
		case errors.Is(err, auth.ErrInvalidToken),
			errors.Is(err, auth.ErrWrongTokenType),
			errors.Is(err, auth.ErrTokenNotYetValid):
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
		default:
			slog.Error("failed to validate token", "error", redact.Error(err))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
		}
		return
	}

	next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), claims.UserID, AuthMethodJWT)))
}

// authenticateAPIKey validates an X-API-Key credential against the store.
// Revoked keys are indistinguishable from unknown ones.
func (m *AuthMiddleware) authenticateAPIKey(
	w http.ResponseWriter,
	r *http.Request,
	next http.Handler,
	secret string,
) {
	key, err := m.apiKeyStore.GetBySecret(r.Context(), secret)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid API key")
			return
		}
		slog.Error("failed to look up API key", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
		return
	}

	if key.Expired(m.timeFunc()) {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "API key expired")
		return
	}

	next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), key.UserID, AuthMethodAPIKey)))
}

// withIdentity records the authenticated user and method in the context.
func withIdentity(ctx context.Context, userID uuid.UUID, method string) context.Context {
	ctx = context.WithValue(ctx, shared.UserIDContextKey, userID)
	return context.WithValue(ctx, shared.AuthMethodContextKey, method)
}

// GetUserID extracts the user ID from the request context.
// Returns the user ID and a boolean indicating if it was found.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	return userID, ok
}

// GetAuthMethod extracts the authentication method from the request context.
// Returns the method label and a boolean indicating if it was found.
func GetAuthMethod(r *http.Request) (string, bool) {
	method, ok := r.Context().Value(shared.AuthMethodContextKey).(string)
	return method, ok
}
