package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/store"
)

// MockAPIKeyStore implements store.APIKeyStore for testing
type MockAPIKeyStore struct {
	// Function fields for customizable behavior
	CreateFn      func(ctx context.Context, key *domain.APIKey) error
	GetByIDFn     func(ctx context.Context, userID, id uuid.UUID) (*domain.APIKey, error)
	GetBySecretFn func(ctx context.Context, secret string) (*domain.APIKey, error)
	ListByUserFn  func(ctx context.Context, userID uuid.UUID) ([]*domain.APIKey, error)
	RevokeFn      func(ctx context.Context, userID, id uuid.UUID) error
	DeleteFn      func(ctx context.Context, userID, id uuid.UUID) error

	// Data for default implementation, keyed by key ID
	Keys map[uuid.UUID]*domain.APIKey
}

// NewMockAPIKeyStore creates a new mock store with initialized defaults
func NewMockAPIKeyStore() *MockAPIKeyStore {
	return &MockAPIKeyStore{
		Keys: make(map[uuid.UUID]*domain.APIKey),
	}
}

// Create implements the APIKeyStore interface
func (m *MockAPIKeyStore) Create(ctx context.Context, key *domain.APIKey) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, key)
	}
	m.Keys[key.ID] = key
	return nil
}

// GetByID implements the APIKeyStore interface
func (m *MockAPIKeyStore) GetByID(
	ctx context.Context,
	userID, id uuid.UUID,
) (*domain.APIKey, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, userID, id)
	}
	key, exists := m.Keys[id]
	if !exists {
		return nil, store.ErrAPIKeyNotFound
	}
	if key.UserID != userID {
		return nil, store.ErrNotOwner
	}
	return key, nil
}

// GetBySecret implements the APIKeyStore interface
func (m *MockAPIKeyStore) GetBySecret(
	ctx context.Context,
	secret string,
) (*domain.APIKey, error) {
	if m.GetBySecretFn != nil {
		return m.GetBySecretFn(ctx, secret)
	}
	for _, key := range m.Keys {
		if key.Key == secret && key.IsActive {
			return key, nil
		}
	}
	return nil, store.ErrAPIKeyNotFound
}

// ListByUser implements the APIKeyStore interface
func (m *MockAPIKeyStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.APIKey, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}
	keys := []*domain.APIKey{}
	for _, key := range m.Keys {
		if key.UserID == userID {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Revoke implements the APIKeyStore interface
func (m *MockAPIKeyStore) Revoke(ctx context.Context, userID, id uuid.UUID) error {
	if m.RevokeFn != nil {
		return m.RevokeFn(ctx, userID, id)
	}
	key, err := m.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	key.IsActive = false
	return nil
}

// Delete implements the APIKeyStore interface
func (m *MockAPIKeyStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, id)
	}
	if _, err := m.GetByID(ctx, userID, id); err != nil {
		return err
	}
	delete(m.Keys, id)
	return nil
}

// WithTx implements the APIKeyStore interface; the mock ignores transactions
func (m *MockAPIKeyStore) WithTx(tx *sql.Tx) store.APIKeyStore {
	return m
}
