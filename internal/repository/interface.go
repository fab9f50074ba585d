package repository

import (
	"context"

	"github.com/campushq/vaultd/internal/db/models"
)

// ClientRepository exposes persistence operations for vault client identities.
type ClientRepository interface {
	// Create inserts a new client. Returns errdefs.ErrConflict when the
	// generated id collides with an existing row.
	Create(ctx context.Context, client *models.Client) error
	// GetByID returns errdefs.ErrNotFound when the client does not exist.
	GetByID(ctx context.Context, id string) (*models.Client, error)
	List(ctx context.Context) ([]models.Client, error)
	UpdateInfo(ctx context.Context, id, name, description string) error
	UpdateSecretHash(ctx context.Context, id, secretHash string) error
	// Delete removes the client and, in the same transaction, every access
	// grant referencing it. Returns errdefs.ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}

// SecretRepository exposes persistence operations for vault secrets. All
// operations address a (vault_label, key) pair.
type SecretRepository interface {
	Get(ctx context.Context, label, key string) (*models.Secret, error)
	// Upsert creates or overwrites the secret in a single atomic statement.
	Upsert(ctx context.Context, secret *models.Secret) error
	Delete(ctx context.Context, label, key string) error
	Exists(ctx context.Context, label, key string) (bool, error)
	// ListKeys returns key names under the label, ordered; empty when the
	// label holds no secrets.
	ListKeys(ctx context.Context, label string) ([]string, error)
	// ListLabels returns every label holding at least one secret, ordered.
	ListLabels(ctx context.Context) ([]string, error)
}

// GrantRepository exposes persistence operations for permission bitmasks.
// Mutations are single atomic read-modify-write statements so concurrent
// grant/revoke calls on the same pair never lose bits.
type GrantRepository interface {
	// Merge ORs bits into the mask for (clientID, label), creating the row
	// when absent, and returns the resulting mask.
	Merge(ctx context.Context, clientID, label string, bits int) (int, error)
	// Clear removes bits from the mask and deletes the row when the result
	// is zero. Clearing an absent grant returns 0 without error.
	Clear(ctx context.Context, clientID, label string, bits int) (int, error)
	// Mask returns the stored mask, or 0 when no row exists.
	Mask(ctx context.Context, clientID, label string) (int, error)
	ListByClient(ctx context.Context, clientID string) ([]models.AccessGrant, error)
	DeleteByClient(ctx context.Context, clientID string) error
}
