package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/campushq/vaultd/internal/db/models"
	"github.com/campushq/vaultd/internal/errdefs"
)

// BunSecretRepository implements SecretRepository using Bun ORM
type BunSecretRepository struct {
	db *bun.DB
}

// NewBunSecretRepository creates a new Bun-based secret repository
func NewBunSecretRepository(db *bun.DB) *BunSecretRepository {
	return &BunSecretRepository{db: db}
}

// Get retrieves a secret by (label, key)
func (r *BunSecretRepository) Get(ctx context.Context, label, key string) (*models.Secret, error) {
	secret := new(models.Secret)
	err := r.db.NewSelect().
		Model(secret).
		Where("vault_label = ?", label).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errdefs.NotFoundf("secret %q in vault %q", key, label)
		}
		return nil, storageErr("get secret", err)
	}
	return secret, nil
}

// Upsert creates or overwrites the secret as a single conditional-upsert
// statement. Two concurrent writers to the same (label, key) resolve to
// last-write-wins with no duplicate row and no error.
func (r *BunSecretRepository) Upsert(ctx context.Context, secret *models.Secret) error {
	_, err := r.db.NewInsert().
		Model(secret).
		On("CONFLICT (vault_label, key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return storageErr("upsert secret", err)
	}
	return nil
}

// Delete removes a secret by (label, key)
func (r *BunSecretRepository) Delete(ctx context.Context, label, key string) error {
	result, err := r.db.NewDelete().
		Model((*models.Secret)(nil)).
		Where("vault_label = ?", label).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return storageErr("delete secret", err)
	}
	return requireRowAffected(result, "secret %q in vault %q", key, label)
}

// Exists reports whether a secret row exists for (label, key)
func (r *BunSecretRepository) Exists(ctx context.Context, label, key string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.Secret)(nil)).
		Where("vault_label = ?", label).
		Where("key = ?", key).
		Exists(ctx)
	if err != nil {
		return false, storageErr("check secret existence", err)
	}
	return exists, nil
}

// ListKeys returns all key names under the label, ordered by key
func (r *BunSecretRepository) ListKeys(ctx context.Context, label string) ([]string, error) {
	keys := make([]string, 0)
	err := r.db.NewSelect().
		Model((*models.Secret)(nil)).
		Column("key").
		Where("vault_label = ?", label).
		Order("key ASC").
		Scan(ctx, &keys)
	if err != nil {
		return nil, storageErr("list secret keys", err)
	}
	return keys, nil
}

// ListLabels returns every vault label with at least one secret, ordered
func (r *BunSecretRepository) ListLabels(ctx context.Context) ([]string, error) {
	labels := make([]string, 0)
	err := r.db.NewSelect().
		Model((*models.Secret)(nil)).
		ColumnExpr("DISTINCT vault_label").
		Order("vault_label ASC").
		Scan(ctx, &labels)
	if err != nil {
		return nil, storageErr("list vault labels", err)
	}
	return labels, nil
}
