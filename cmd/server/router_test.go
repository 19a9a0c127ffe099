package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/events"
	"github.com/phrazzld/taskboard/internal/mocks"
	"github.com/phrazzld/taskboard/internal/service/auth"
)

// newTestApplication builds an application backed by in-memory stores,
// a real JWT service and a low-cost bcrypt hasher.
func newTestApplication(t *testing.T) *application {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   "test-secret-key-thats-32-chars-long!!",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 60 * 24,
	})
	require.NoError(t, err)

	return &application{
		config: &config.Config{
			Server: config.ServerConfig{Port: 0, LogLevel: "error"},
		},
		logger:         logger,
		userStore:      mocks.NewMockUserStore(),
		taskStore:      mocks.NewMockTaskStore(),
		apiKeyStore:    mocks.NewMockAPIKeyStore(),
		jwtService:     jwtService,
		passwordHasher: auth.NewBcryptHasher(4),
		eventEmitter:   events.NewInMemoryEventEmitter(logger),
	}
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	rr := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestProtectedRoutesRequireAuthentication(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/keys"},
		{http.MethodGet, "/api/auth/profile"},
	}

	for _, p := range paths {
		rr := doJSON(t, router, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code,
			"%s %s should require authentication", p.method, p.path)
	}
}

func TestRegisterLoginAndUseToken(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t).setupRouter()

	// Register a new account.
	rr := doJSON(t, router, http.MethodPost, "/api/auth/register", "",
		map[string]string{
			"email":    "flow@example.com",
			"password": "password1234567",
			"fullName": "Flow Tester",
		})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var registerEnv struct {
		Data struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registerEnv))
	require.NotEmpty(t, registerEnv.Data.AccessToken)

	// The access token authenticates API requests.
	rr = doJSON(t, router, http.MethodGet, "/api/tasks", registerEnv.Data.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Create a task with it.
	rr = doJSON(t, router, http.MethodPost, "/api/tasks", registerEnv.Data.AccessToken,
		map[string]string{"title": "First task"})
	assert.Equal(t, http.StatusCreated, rr.Code)

	// The refresh token is rejected as an access token.
	rr = doJSON(t, router, http.MethodGet, "/api/tasks", registerEnv.Data.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// But it yields a fresh pair at the refresh endpoint.
	rr = doJSON(t, router, http.MethodPost, "/api/auth/refresh", "",
		map[string]string{"refreshToken": registerEnv.Data.RefreshToken})
	assert.Equal(t, http.StatusOK, rr.Code)

	// Logging in with the same credentials also works.
	rr = doJSON(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{
			"email":    "flow@example.com",
			"password": "password1234567",
		})
	assert.Equal(t, http.StatusOK, rr.Code)

	// Wrong password is rejected.
	rr = doJSON(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{
			"email":    "flow@example.com",
			"password": "wrong-password!",
		})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
