package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
)

// APIKeyStore defines the interface for API key persistence.
type APIKeyStore interface {
	// Create saves a new API key, including its full secret.
	Create(ctx context.Context, key *domain.APIKey) error

	// GetByID retrieves an API key by its ID on behalf of userID.
	// Returns ErrAPIKeyNotFound if the key does not exist and ErrNotOwner
	// if it belongs to a different user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.APIKey, error)

	// GetBySecret retrieves an API key by its full secret value.
	// Used by the authentication middleware; returns ErrAPIKeyNotFound
	// for unknown secrets.
	GetBySecret(ctx context.Context, secret string) (*domain.APIKey, error)

	// ListByUser returns all keys owned by userID ordered by descending
	// creation time. The Key field of returned entries is cleared;
	// callers expose Preview() instead.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.APIKey, error)

	// Revoke marks the key inactive without deleting it.
	// Ownership is verified before the mutation is attempted.
	Revoke(ctx context.Context, userID, id uuid.UUID) error

	// Delete permanently removes the key.
	// Ownership is verified before the mutation is attempted.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a new APIKeyStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) APIKeyStore
}
