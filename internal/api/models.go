package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"fullName" validate:"max=100"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserResponse converts a domain user to its public view.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
	}
}

// AuthData is the envelope payload for register, login and refresh.
type AuthData struct {
	User UserResponse `json:"user"`

	// AccessToken is the JWT used for API authorization
	AccessToken string `json:"accessToken"`

	// RefreshToken is the JWT used to obtain new access tokens
	RefreshToken string `json:"refreshToken"`

	// ExpiresIn is the access token lifetime in seconds
	ExpiresIn int64 `json:"expiresIn"`
}

// CreateTaskRequest defines the payload for task creation.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Status      string `json:"status"      validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
}

// UpdateTaskRequest defines the payload for partial task updates.
// Omitted fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Status      *string `json:"status"      validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
}

// Empty reports whether the update contains no changes.
func (r UpdateTaskRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Status == nil
}

// SuggestTasksRequest carries the query parameters of the task
// suggestions endpoint.
type SuggestTasksRequest struct {
	// Context is free-form text describing the project or situation
	Context string `json:"context" validate:"max=2000"`
}

// SuggestionsData is the envelope payload for the suggestions endpoint.
type SuggestionsData struct {
	Suggestions []domain.TaskSuggestion `json:"suggestions"`
}

// CreateAPIKeyRequest defines the payload for API key creation.
type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required,max=100"`

	// ExpiresInDays is optional; when omitted the key never expires
	ExpiresInDays *int `json:"expiresInDays" validate:"omitempty,gt=0"`
}
