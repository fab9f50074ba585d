package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/campushq/vaultd/internal/db/models"
)

// BunGrantRepository implements GrantRepository using Bun ORM.
//
// All mutations are single SQL statements using the database's atomic
// bitwise expressions, so concurrent grant/revoke calls on the same
// (client_id, vault_label) pair serialize at the storage layer and never
// lose a concurrent bit-merge.
type BunGrantRepository struct {
	db *bun.DB
}

// NewBunGrantRepository creates a new Bun-based grant repository
func NewBunGrantRepository(db *bun.DB) *BunGrantRepository {
	return &BunGrantRepository{db: db}
}

// Merge ORs bits into the mask for (clientID, label), inserting the row when
// absent, and returns the resulting mask from the same statement.
func (r *BunGrantRepository) Merge(ctx context.Context, clientID, label string, bits int) (int, error) {
	grant := &models.AccessGrant{
		ClientID:    clientID,
		VaultLabel:  label,
		Permissions: bits,
	}
	_, err := r.db.NewInsert().
		Model(grant).
		On("CONFLICT (client_id, vault_label) DO UPDATE").
		Set("permissions = permissions | EXCLUDED.permissions").
		Returning("permissions").
		Exec(ctx)
	if err != nil {
		return 0, storageErr("merge grant", err)
	}
	return grant.Permissions, nil
}

// Clear removes bits from the mask with an atomic bitwise update, then
// drops the row when the mask reached zero. Clearing an absent grant is a
// no-op returning mask 0.
func (r *BunGrantRepository) Clear(ctx context.Context, clientID, label string, bits int) (int, error) {
	result, err := r.db.NewUpdate().
		Model((*models.AccessGrant)(nil)).
		Set("permissions = permissions & ~?", bits).
		Where("client_id = ?", clientID).
		Where("vault_label = ?", label).
		Exec(ctx)
	if err != nil {
		return 0, storageErr("clear grant bits", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return 0, nil
	}

	mask, err := r.Mask(ctx, clientID, label)
	if err != nil {
		return 0, err
	}
	if mask == 0 {
		// An empty mask means no access, same as no row. Keep the table free
		// of zero rows so Merge's insert path stays the common case.
		if _, err := r.db.NewDelete().
			Model((*models.AccessGrant)(nil)).
			Where("client_id = ?", clientID).
			Where("vault_label = ?", label).
			Where("permissions = 0").
			Exec(ctx); err != nil {
			return 0, storageErr("delete empty grant", err)
		}
	}
	return mask, nil
}

// Mask returns the stored permission mask, or 0 when no row exists
func (r *BunGrantRepository) Mask(ctx context.Context, clientID, label string) (int, error) {
	grant := new(models.AccessGrant)
	err := r.db.NewSelect().
		Model(grant).
		Where("client_id = ?", clientID).
		Where("vault_label = ?", label).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, storageErr("get grant mask", err)
	}
	return grant.Permissions, nil
}

// ListByClient returns all grants held by a client, ordered by label
func (r *BunGrantRepository) ListByClient(ctx context.Context, clientID string) ([]models.AccessGrant, error) {
	var grants []models.AccessGrant
	err := r.db.NewSelect().
		Model(&grants).
		Where("client_id = ?", clientID).
		Order("vault_label ASC").
		Scan(ctx)
	if err != nil {
		return nil, storageErr("list grants by client", err)
	}
	return grants, nil
}

// DeleteByClient removes every grant held by a client
func (r *BunGrantRepository) DeleteByClient(ctx context.Context, clientID string) error {
	_, err := r.db.NewDelete().
		Model((*models.AccessGrant)(nil)).
		Where("client_id = ?", clientID).
		Exec(ctx)
	if err != nil {
		return storageErr("delete grants by client", err)
	}
	return nil
}
