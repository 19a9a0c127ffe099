package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    success,
		"statusCode": status,
		"message":    message,
		"data":       data,
	})
}

func TestRefreshDecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		status          int
		alreadyRetried  bool
		hasRefreshToken bool
		want            refreshAction
	}{
		{"success passes through", http.StatusOK, false, true, actionOk},
		{"server error passes through", http.StatusInternalServerError, false, true, actionOk},
		{"first 401 with refresh token", http.StatusUnauthorized, false, true, actionNeedsRefresh},
		{"second 401 gives up", http.StatusUnauthorized, true, true, actionUnauthenticated},
		{"401 without refresh token gives up", http.StatusUnauthorized, false, false, actionUnauthenticated},
		{"401 retried and tokenless", http.StatusUnauthorized, true, false, actionUnauthenticated},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := refreshDecision(tc.status, tc.alreadyRetried, tc.hasRefreshToken)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDoUnwrapsData(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, true, "ok", map[string]string{"hello": "world"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetCredentials("access-token", "refresh-token")

	data, err := client.Do(context.Background(), http.MethodGet, "/tasks", nil, nil)
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "world", payload["hello"])
}

func TestDoErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		wantKind ErrorKind
	}{
		{"not found", http.StatusNotFound, KindNotFound},
		{"forbidden", http.StatusForbidden, KindForbidden},
		{"validation", http.StatusBadRequest, KindValidation},
		{"conflict is validation", http.StatusConflict, KindValidation},
		{"server error", http.StatusInternalServerError, KindUpstream},
		{"service unavailable", http.StatusServiceUnavailable, KindUpstream},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tc.status, false, "nope", nil)
			}))
			defer srv.Close()

			client := NewClient(srv.URL)
			_, err := client.Do(context.Background(), http.MethodGet, "/tasks", nil, nil)
			require.Error(t, err)
			assert.True(t, IsKind(err, tc.wantKind), "got %v", err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, "nope", apiErr.Message)
		})
	}
}

func TestDoValidationFieldErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, false, "Validation failed", map[string]interface{}{
			"errors": map[string]string{
				"email":    "Invalid email format",
				"password": "Must be at least 12 characters long",
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Do(context.Background(), http.MethodPost, "/auth/register", nil, map[string]string{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindValidation, apiErr.Kind)
	assert.Equal(t, "Invalid email format", apiErr.Fields["email"])
	assert.Equal(t, "Must be at least 12 characters long", apiErr.Fields["password"])
}

func TestDoRefreshesOnceAndReplays(t *testing.T) {
	t.Parallel()

	var tasksCalls, refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&tasksCalls, 1) == 1 {
			writeEnvelope(w, http.StatusUnauthorized, false, "Token expired", nil)
			return
		}
		assert.Equal(t, "Bearer new-access", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, true, "ok", []string{})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "old-refresh", body["refreshToken"])
		writeEnvelope(w, http.StatusOK, true, "refreshed", authData{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetCredentials("stale-access", "old-refresh")

	_, err := client.Do(context.Background(), http.MethodGet, "/tasks", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&tasksCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
}

func TestConcurrentCallersShareOneRefresh(t *testing.T) {
	t.Parallel()

	const callers = 8
	var refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer new-access" {
			writeEnvelope(w, http.StatusUnauthorized, false, "Token expired", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, true, "ok", []string{})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		// Hold the flight open so every caller piles onto it.
		time.Sleep(200 * time.Millisecond)
		writeEnvelope(w, http.StatusOK, true, "refreshed", authData{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetCredentials("stale-access", "old-refresh")

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Do(context.Background(), http.MethodGet, "/tasks", nil, nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
}

func TestDoRefreshFailureClearsCredentials(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, "Token expired", nil)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, "Invalid refresh token", nil)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetCredentials("stale-access", "bad-refresh")

	_, err := client.Do(context.Background(), http.MethodGet, "/tasks", nil, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuth), "got %v", err)
	assert.False(t, client.Authenticated())
}

func TestDoTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := client.Do(context.Background(), http.MethodGet, "/tasks", nil, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDoNetworkError(t *testing.T) {
	t.Parallel()

	// A server that is immediately closed guarantees a connection failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Do(context.Background(), http.MethodGet, "/tasks", nil, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetwork), "got %v", err)
}

func TestLoginStoresCredentialsAndSession(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "Login successful", authData{
			User:         User{ID: userID, Email: "me@example.com", FullName: "Me"},
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresIn:    3600,
		})
	}))
	defer srv.Close()

	statePath := filepath.Join(t.TempDir(), "session.json")
	client := NewClient(srv.URL, WithStateFile(statePath))

	user, err := client.Login(context.Background(), "me@example.com", "password1234567")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.True(t, client.Authenticated())

	// The state file holds the user and flag but never tokens.
	raw, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "access")
	assert.NotContains(t, string(raw), "refresh")

	var persisted Session
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.True(t, persisted.Authenticated)
	require.NotNil(t, persisted.User)
	assert.Equal(t, "me@example.com", persisted.User.Email)
}

func TestLogoutClearsCredentialsEvenWhenServerFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	statePath := filepath.Join(t.TempDir(), "session.json")
	client := NewClient(srv.URL, WithStateFile(statePath))
	client.SetCredentials("access", "refresh")

	err := client.Logout(context.Background())
	assert.Error(t, err)
	assert.False(t, client.Authenticated())

	restored := loadSession(statePath, client.logger)
	assert.False(t, restored.Authenticated)
}

func TestSessionRehydration(t *testing.T) {
	t.Parallel()

	t.Run("missing file starts unauthenticated", func(t *testing.T) {
		t.Parallel()
		client := NewClient("http://localhost",
			WithStateFile(filepath.Join(t.TempDir(), "absent.json")))
		assert.False(t, client.Authenticated())
		assert.Nil(t, client.User())
	})

	t.Run("corrupted file starts unauthenticated", func(t *testing.T) {
		t.Parallel()
		statePath := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(statePath, []byte("{not json"), 0o600))

		client := NewClient("http://localhost", WithStateFile(statePath))
		assert.False(t, client.Authenticated())
		assert.Nil(t, client.User())
	})

	t.Run("valid file restores user but not authentication", func(t *testing.T) {
		t.Parallel()
		statePath := filepath.Join(t.TempDir(), "session.json")
		userID := uuid.New()
		data, err := json.Marshal(Session{
			User:          &User{ID: userID, Email: "me@example.com"},
			Authenticated: true,
		})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(statePath, data, 0o600))

		client := NewClient("http://localhost", WithStateFile(statePath))
		require.NotNil(t, client.User())
		assert.Equal(t, userID, client.User().ID)
		// Tokens are never persisted, so the client still lacks credentials.
		assert.False(t, client.Authenticated())
	})
}
