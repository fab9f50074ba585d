package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/campushq/vaultd/internal/db/models"
	"github.com/campushq/vaultd/internal/errdefs"
)

// BunClientRepository implements ClientRepository using Bun ORM
type BunClientRepository struct {
	db *bun.DB
}

// NewBunClientRepository creates a new Bun-based client repository
func NewBunClientRepository(db *bun.DB) *BunClientRepository {
	return &BunClientRepository{db: db}
}

// Create inserts a new client identity
func (r *BunClientRepository) Create(ctx context.Context, client *models.Client) error {
	_, err := r.db.NewInsert().
		Model(client).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return errdefs.Conflictf("client id %s already exists", client.ID)
		}
		return storageErr("create client", err)
	}
	return nil
}

// GetByID retrieves a client by its id
func (r *BunClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	client := new(models.Client)
	err := r.db.NewSelect().
		Model(client).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errdefs.NotFoundf("client %s", id)
		}
		return nil, storageErr("get client", err)
	}
	return client, nil
}

// List retrieves all clients ordered by creation time
func (r *BunClientRepository) List(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	err := r.db.NewSelect().
		Model(&clients).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, storageErr("list clients", err)
	}
	return clients, nil
}

// UpdateInfo updates the client's name and description
func (r *BunClientRepository) UpdateInfo(ctx context.Context, id, name, description string) error {
	result, err := r.db.NewUpdate().
		Model((*models.Client)(nil)).
		Set("name = ?", name).
		Set("description = ?", description).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return storageErr("update client", err)
	}
	return requireRowAffected(result, "client %s", id)
}

// UpdateSecretHash replaces the stored secret hash (rotation)
func (r *BunClientRepository) UpdateSecretHash(ctx context.Context, id, secretHash string) error {
	result, err := r.db.NewUpdate().
		Model((*models.Client)(nil)).
		Set("secret_hash = ?", secretHash).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return storageErr("update secret hash", err)
	}
	return requireRowAffected(result, "client %s", id)
}

// Delete removes the client and all of its access grants in one transaction,
// so a deleted client can never be left with orphaned grants.
func (r *BunClientRepository) Delete(ctx context.Context, id string) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.AccessGrant)(nil)).
			Where("client_id = ?", id).
			Exec(ctx); err != nil {
			return storageErr("delete client grants", err)
		}

		result, err := tx.NewDelete().
			Model((*models.Client)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return storageErr("delete client", err)
		}
		return requireRowAffected(result, "client %s", id)
	})
}

// requireRowAffected converts a zero-row mutation into errdefs.ErrNotFound.
func requireRowAffected(result sql.Result, format string, args ...any) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return errdefs.NotFoundf(format, args...)
	}
	return nil
}

// isUniqueViolation detects unique-constraint errors from both the pgdriver
// and the modernc sqlite driver, which only expose them as message text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
