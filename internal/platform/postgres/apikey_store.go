package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/phrazzld/taskboard/internal/store"
)

// PostgresAPIKeyStore implements the store.APIKeyStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAPIKeyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAPIKeyStore creates a new PostgreSQL implementation of the
// APIKeyStore interface. If logger is nil, a default logger will be used.
func NewPostgresAPIKeyStore(db store.DBTX, logger *slog.Logger) *PostgresAPIKeyStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAPIKeyStore{
		db:     db,
		logger: logger.With(slog.String("component", "apikey_store")),
	}
}

// Ensure PostgresAPIKeyStore implements store.APIKeyStore interface
var _ store.APIKeyStore = (*PostgresAPIKeyStore)(nil)

// WithTx implements store.APIKeyStore.WithTx
func (s *PostgresAPIKeyStore) WithTx(tx *sql.Tx) store.APIKeyStore {
	return &PostgresAPIKeyStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.APIKeyStore.Create
func (s *PostgresAPIKeyStore) Create(ctx context.Context, key *domain.APIKey) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := key.Validate(); err != nil {
		log.Warn("api key validation failed during create",
			slog.String("error", err.Error()),
			slog.String("key_id", key.ID.String()))
		return err
	}

	query := `
		INSERT INTO api_keys (id, user_id, name, key, expires_at, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		key.ID,
		key.UserID,
		key.Name,
		key.Key,
		key.ExpiresAt,
		key.IsActive,
		key.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during api key creation",
				slog.String("key_id", key.ID.String()),
				slog.String("user_id", key.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, key.UserID)
		}
		log.Error("failed to create api key",
			slog.String("error", err.Error()),
			slog.String("key_id", key.ID.String()))
		return MapError(err)
	}

	log.Info("api key created successfully",
		slog.String("key_id", key.ID.String()),
		slog.String("user_id", key.UserID.String()))
	return nil
}

// GetByID implements store.APIKeyStore.GetByID
// The key is fetched by ID alone and ownership is checked afterwards so
// that callers can distinguish "does not exist" from "belongs to someone
// else".
func (s *PostgresAPIKeyStore) GetByID(
	ctx context.Context,
	userID, id uuid.UUID,
) (*domain.APIKey, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, key, expires_at, is_active, created_at
		FROM api_keys
		WHERE id = $1
	`

	key, err := s.scanKey(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("api key not found", slog.String("key_id", id.String()))
			return nil, store.ErrAPIKeyNotFound
		}
		log.Error("failed to get api key by ID",
			slog.String("error", err.Error()),
			slog.String("key_id", id.String()))
		return nil, MapError(err)
	}

	if key.UserID != userID {
		log.Warn("api key ownership check failed",
			slog.String("key_id", id.String()),
			slog.String("user_id", userID.String()))
		return nil, store.ErrNotOwner
	}

	return key, nil
}

// GetBySecret implements store.APIKeyStore.GetBySecret
// Only active keys are matched; revoked keys behave like unknown secrets.
// Expiry is not checked here so the caller can report it separately.
func (s *PostgresAPIKeyStore) GetBySecret(
	ctx context.Context,
	secret string,
) (*domain.APIKey, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, key, expires_at, is_active, created_at
		FROM api_keys
		WHERE key = $1 AND is_active = TRUE
	`

	key, err := s.scanKey(s.db.QueryRowContext(ctx, query, secret))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("api key not found by secret")
			return nil, store.ErrAPIKeyNotFound
		}
		log.Error("failed to get api key by secret",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return key, nil
}

// ListByUser implements store.APIKeyStore.ListByUser
// The Key field of returned entries is cleared so that the full secret is
// only ever exposed at creation time; callers use Preview() for display.
func (s *PostgresAPIKeyStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.APIKey, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, key, expires_at, is_active, created_at
		FROM api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query api keys by user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var keys []*domain.APIKey
	for rows.Next() {
		var key domain.APIKey
		var expiresAt sql.NullTime

		err := rows.Scan(
			&key.ID,
			&key.UserID,
			&key.Name,
			&key.Key,
			&expiresAt,
			&key.IsActive,
			&key.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan api key row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		if expiresAt.Valid {
			t := expiresAt.Time
			key.ExpiresAt = &t
		}

		// Capture the masked form, then drop the full secret.
		key.KeyPreview = key.Preview()
		key.Key = ""
		keys = append(keys, &key)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if keys == nil {
		keys = []*domain.APIKey{}
	}

	log.Debug("listed api keys for user",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(keys)))
	return keys, nil
}

// Revoke implements store.APIKeyStore.Revoke
func (s *PostgresAPIKeyStore) Revoke(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.GetByID(ctx, userID, id); err != nil {
		return err
	}

	query := `UPDATE api_keys SET is_active = FALSE WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to revoke api key",
			slog.String("error", err.Error()),
			slog.String("key_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "api key"); err != nil {
		log.Debug("api key not found for revoke",
			slog.String("key_id", id.String()))
		return store.ErrAPIKeyNotFound
	}

	log.Info("api key revoked",
		slog.String("key_id", id.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// Delete implements store.APIKeyStore.Delete
func (s *PostgresAPIKeyStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.GetByID(ctx, userID, id); err != nil {
		return err
	}

	query := `DELETE FROM api_keys WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete api key",
			slog.String("error", err.Error()),
			slog.String("key_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "api key"); err != nil {
		log.Debug("api key not found for delete",
			slog.String("key_id", id.String()))
		return store.ErrAPIKeyNotFound
	}

	log.Info("api key deleted",
		slog.String("key_id", id.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// scanKey scans a single api_keys row.
func (s *PostgresAPIKeyStore) scanKey(row *sql.Row) (*domain.APIKey, error) {
	var key domain.APIKey
	var expiresAt sql.NullTime

	err := row.Scan(
		&key.ID,
		&key.UserID,
		&key.Name,
		&key.Key,
		&expiresAt,
		&key.IsActive,
		&key.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		t := expiresAt.Time
		key.ExpiresAt = &t
	}
	return &key, nil
}
