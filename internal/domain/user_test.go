package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("  Jamie@Example.COM ", "correct-horse-battery", "Jamie Doe")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.Email != "jamie@example.com" {
		t.Errorf("Expected normalized email, got %q", user.Email)
	}
	if user.FullName != "Jamie Doe" {
		t.Errorf("Expected trimmed full name, got %q", user.FullName)
	}
}

func TestNewUserValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"empty email", "", "long-enough-pass", ErrEmptyEmail},
		{"no at sign", "example.com", "long-enough-pass", ErrInvalidEmail},
		{"no domain dot", "a@example", "long-enough-pass", ErrInvalidEmail},
		{"short password", "a@example.com", "short", ErrPasswordTooShort},
		{"long password", "a@example.com", strings.Repeat("p", MaxPasswordLength+1), ErrPasswordTooLong},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewUser(tc.email, tc.password, "")
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestUserValidateStoredUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("a@example.com", "long-enough-pass", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Users loaded from the store have only a hash.
	user.Password = ""
	user.HashedPassword = "$2a$10$abcdefghijklmnopqrstuv"
	if err := user.Validate(); err != nil {
		t.Errorf("Expected stored user to validate, got %v", err)
	}

	user.HashedPassword = ""
	if err := user.Validate(); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("Expected ErrEmptyPassword, got %v", err)
	}
}
