package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard/internal/api/shared"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/generation"
	"github.com/phrazzld/taskboard/internal/service/auth"
	"github.com/phrazzld/taskboard/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired refresh token", auth.ErrExpiredRefreshToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"password mismatch", auth.ErrPasswordMismatch, http.StatusUnauthorized},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"not owner", store.ErrNotOwner, http.StatusForbidden},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"api key not found", store.ErrAPIKeyNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"empty title", domain.ErrEmptyTitle, http.StatusBadRequest},
		{"invalid task status", domain.ErrInvalidTaskStatus, http.StatusBadRequest},
		{
			name: "validation error",
			err:  domain.NewValidationError("email", "is required", domain.ErrValidation),
			want: http.StatusBadRequest,
		},
		{"llm transient failure", generation.ErrTransientFailure, http.StatusServiceUnavailable},
		{"llm content blocked", generation.ErrContentBlocked, http.StatusServiceUnavailable},
		{"unknown error", errors.New("something exploded"), http.StatusInternalServerError},
		{
			name: "wrapped store error",
			err:  fmt.Errorf("fetching task: %w", store.ErrTaskNotFound),
			want: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"expired token", auth.ErrExpiredToken, "Invalid token"},
		{"expired refresh token", auth.ErrExpiredRefreshToken, "Invalid refresh token"},
		{"password mismatch", auth.ErrPasswordMismatch, "Invalid credentials"},
		{"task not found", store.ErrTaskNotFound, "Task not found"},
		{"user not found", store.ErrUserNotFound, "User not found"},
		{"email exists", store.ErrEmailExists, "Email already exists"},
		{"not owner", store.ErrNotOwner, "You do not have access to this resource"},
		{
			name: "internal details never leak",
			err:  errors.New("pq: connection refused on 10.0.0.5:5432"),
			want: "An unexpected error occurred",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, GetSafeErrorMessage(tc.err))
		})
	}

	t.Run("entity validation sentinel passes through", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, domain.ErrEmptyTitle.Error(), GetSafeErrorMessage(domain.ErrEmptyTitle))
	})
}

func TestHandleValidationError(t *testing.T) {
	t.Parallel()

	type registerForm struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=12"`
	}

	t.Run("enumerates struct tag failures per field", func(t *testing.T) {
		t.Parallel()

		err := validator.New().Struct(registerForm{Email: "not-an-email", Password: "short"})
		require.Error(t, err)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
		HandleValidationError(rr, req, err)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		env := decodeEnvelope(t, rr)
		assert.False(t, env.Success)
		assert.Equal(t, "Validation failed", env.Message)

		var data shared.ValidationErrorsData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "invalid email format", data.Errors["email"])
		assert.Equal(t, "too short", data.Errors["password"])
	})

	t.Run("falls back to sanitized message for other errors", func(t *testing.T) {
		t.Parallel()

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
		HandleValidationError(rr, req, errors.New("decode failed"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		env := decodeEnvelope(t, rr)
		assert.Equal(t, "Validation error", env.Message)
		assert.Empty(t, env.Data)
	})
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "required tag",
			err: errors.New(
				"Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"),
			want: "Invalid Email: required field",
		},
		{
			name: "email tag",
			err: errors.New(
				"Key: 'RegisterRequest.Email' Error:Field validation for 'Email' failed on the 'email' tag"),
			want: "Invalid Email: invalid email format",
		},
		{
			name: "unrecognized format",
			err:  errors.New("some internal failure with sensitive detail"),
			want: "Validation error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, SanitizeValidationError(tc.err))
		})
	}
}
