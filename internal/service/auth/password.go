package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/taskboard/internal/domain"
)

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.New("password does not match")

// PasswordHasher hashes plaintext passwords for storage.
type PasswordHasher interface {
	// Hash returns a one-way hash of the given plaintext password.
	Hash(ctx context.Context, password string) (string, error)
}

// PasswordVerifier compares a plaintext password against a stored hash.
type PasswordVerifier interface {
	// Compare returns nil when the password matches the hash, and
	// ErrPasswordMismatch when it does not.
	Compare(ctx context.Context, hashedPassword, password string) error
}

// BcryptHasher implements PasswordHasher and PasswordVerifier using bcrypt.
type BcryptHasher struct {
	cost int
}

var (
	_ PasswordHasher   = (*BcryptHasher)(nil)
	_ PasswordVerifier = (*BcryptHasher)(nil)
)

// NewBcryptHasher creates a BcryptHasher with the given cost. A cost of 0
// falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements PasswordHasher. Passwords are length-checked against the
// domain rules before hashing; bcrypt itself truncates input beyond 72 bytes,
// which the domain maximum guards against.
func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if len(password) < domain.MinPasswordLength {
		return "", domain.ErrPasswordTooShort
	}
	if len(password) > domain.MaxPasswordLength {
		return "", domain.ErrPasswordTooLong
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Compare implements PasswordVerifier.
func (h *BcryptHasher) Compare(ctx context.Context, hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("failed to compare password: %w", err)
	}
	return nil
}
