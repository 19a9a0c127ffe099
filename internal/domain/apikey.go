package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// API key validation errors
var (
	ErrEmptyAPIKeyID     = errors.New("API key ID cannot be empty")
	ErrEmptyAPIKeyUserID = errors.New("API key user ID cannot be empty")
	ErrEmptyAPIKeyName   = errors.New("API key name cannot be empty")
	ErrInvalidAPIKey     = errors.New("malformed API key")
)

// APIKeyPrefix identifies task board API keys on the wire.
const APIKeyPrefix = "ak_"

// apiKeyRandomBytes is the entropy behind each key (64 hex characters).
const apiKeyRandomBytes = 32

// APIKey is a long-lived credential that authenticates requests
// on behalf of its owning user, as an alternative to a JWT session.
type APIKey struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Key    string    `json:"key,omitempty"` // Full key, returned only at creation time
	// KeyPreview is the masked form shown in listings once Key is cleared.
	KeyPreview string     `json:"keyPreview,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// NewAPIKey creates a new active APIKey for the given user with a
// freshly generated secret. expiresAt may be nil for a non-expiring key.
func NewAPIKey(userID uuid.UUID, name string, expiresAt *time.Time) (*APIKey, error) {
	secret, err := generateAPIKeySecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key secret: %w", err)
	}

	key := &APIKey{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Key:       secret,
		ExpiresAt: expiresAt,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	if err := key.Validate(); err != nil {
		return nil, err
	}

	return key, nil
}

// Validate checks whether the APIKey has valid data.
func (k *APIKey) Validate() error {
	if k.ID == uuid.Nil {
		return ErrEmptyAPIKeyID
	}
	if k.UserID == uuid.Nil {
		return ErrEmptyAPIKeyUserID
	}
	if k.Name == "" {
		return ErrEmptyAPIKeyName
	}
	return nil
}

// Expired reports whether the key has an expiry in the past.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}

// Preview returns a masked form of the key safe for listings:
// the prefix plus the first 8 and last 4 characters of the secret.
// Falls back to KeyPreview when the full key has been cleared.
func (k *APIKey) Preview() string {
	if len(k.Key) < len(APIKeyPrefix)+12 {
		return k.KeyPreview
	}
	return fmt.Sprintf("%s...%s", k.Key[:len(APIKeyPrefix)+8], k.Key[len(k.Key)-4:])
}

func generateAPIKeySecret() (string, error) {
	b := make([]byte, apiKeyRandomBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return APIKeyPrefix + hex.EncodeToString(b), nil
}
