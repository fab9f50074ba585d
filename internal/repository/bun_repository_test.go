package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/campushq/vaultd/internal/db/bunx"
	"github.com/campushq/vaultd/internal/db/models"
	"github.com/campushq/vaultd/internal/errdefs"
)

// setupTestDB opens an in-memory SQLite database and creates the schema.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := bunx.NewDB(":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	ctx := context.Background()
	for _, model := range []any{
		(*models.Client)(nil),
		(*models.Secret)(nil),
		(*models.AccessGrant)(nil),
	} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	return db
}

func createTestClient(t *testing.T, repo *BunClientRepository, id string) *models.Client {
	t.Helper()

	client := &models.Client{
		ID:         id,
		SecretHash: "hash-" + id,
		Name:       "client " + id,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), client))
	return client
}

func TestBunClientRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunClientRepository(db)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		created := createTestClient(t, repo, "c1")

		fetched, err := repo.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, fetched.ID)
		assert.Equal(t, created.Name, fetched.Name)
		assert.Equal(t, created.SecretHash, fetched.SecretHash)
	})

	t.Run("duplicate id yields conflict", func(t *testing.T) {
		err := repo.Create(ctx, &models.Client{ID: "c1", SecretHash: "h", Name: "dup", CreatedAt: time.Now()})
		assert.ErrorIs(t, err, errdefs.ErrConflict)
	})

	t.Run("get missing yields not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "ghost")
		assert.ErrorIs(t, err, errdefs.ErrNotFound)
	})

	t.Run("update info", func(t *testing.T) {
		require.NoError(t, repo.UpdateInfo(ctx, "c1", "renamed", "new description"))

		fetched, err := repo.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "renamed", fetched.Name)
		assert.Equal(t, "new description", fetched.Description)

		err = repo.UpdateInfo(ctx, "ghost", "x", "y")
		assert.ErrorIs(t, err, errdefs.ErrNotFound)
	})

	t.Run("update secret hash", func(t *testing.T) {
		require.NoError(t, repo.UpdateSecretHash(ctx, "c1", "new-hash"))

		fetched, err := repo.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "new-hash", fetched.SecretHash)
	})

	t.Run("list newest first", func(t *testing.T) {
		createTestClient(t, repo, "c2")

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "c2", list[0].ID)
	})
}

func TestBunClientRepository_DeleteCascadesGrants(t *testing.T) {
	db := setupTestDB(t)
	clients := NewBunClientRepository(db)
	grants := NewBunGrantRepository(db)
	ctx := context.Background()

	createTestClient(t, clients, "c1")
	_, err := grants.Merge(ctx, "c1", "app", 3)
	require.NoError(t, err)
	_, err = grants.Merge(ctx, "c1", "campus", 15)
	require.NoError(t, err)

	require.NoError(t, clients.Delete(ctx, "c1"))

	_, err = clients.GetByID(ctx, "c1")
	assert.ErrorIs(t, err, errdefs.ErrNotFound)

	mask, err := grants.Mask(ctx, "c1", "app")
	require.NoError(t, err)
	assert.Zero(t, mask)

	remaining, err := grants.ListByClient(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	err = clients.Delete(ctx, "c1")
	assert.ErrorIs(t, err, errdefs.ErrNotFound)
}

func TestBunSecretRepository_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunSecretRepository(db)
	ctx := context.Background()

	secret := &models.Secret{
		VaultLabel: "app",
		Key:        "api-key",
		Value:      []byte{0x00, 0x01, 0xFF, 0x7E},
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Upsert(ctx, secret))

	fetched, err := repo.Get(ctx, "app", "api-key")
	require.NoError(t, err)
	assert.Equal(t, secret.Value, fetched.Value)

	require.NoError(t, repo.Delete(ctx, "app", "api-key"))

	_, err = repo.Get(ctx, "app", "api-key")
	assert.ErrorIs(t, err, errdefs.ErrNotFound)

	err = repo.Delete(ctx, "app", "api-key")
	assert.ErrorIs(t, err, errdefs.ErrNotFound)
}

func TestBunSecretRepository_UpsertOverwritesWithoutDuplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunSecretRepository(db)
	ctx := context.Background()

	for _, value := range []string{"v1", "v2"} {
		require.NoError(t, repo.Upsert(ctx, &models.Secret{
			VaultLabel: "app",
			Key:        "k",
			Value:      []byte(value),
			UpdatedAt:  time.Now().UTC(),
		}))
	}

	fetched, err := repo.Get(ctx, "app", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), fetched.Value)

	count, err := db.NewSelect().Model((*models.Secret)(nil)).
		Where("vault_label = ?", "app").
		Where("key = ?", "k").
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBunSecretRepository_Listing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunSecretRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, pair := range [][2]string{
		{"app", "zeta"},
		{"app", "alpha"},
		{"campus", "session-signing-key"},
	} {
		require.NoError(t, repo.Upsert(ctx, &models.Secret{
			VaultLabel: pair[0], Key: pair[1], Value: []byte("v"), UpdatedAt: now,
		}))
	}

	keys, err := repo.ListKeys(ctx, "app")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, keys)

	keys, err = repo.ListKeys(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, keys)

	labels, err := repo.ListLabels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "campus"}, labels)

	exists, err := repo.Exists(ctx, "campus", "session-signing-key")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "campus", "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBunGrantRepository_MergeORsBits(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunGrantRepository(db)
	ctx := context.Background()

	mask, err := repo.Merge(ctx, "c1", "app", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, mask)

	mask, err = repo.Merge(ctx, "c1", "app", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, mask)

	// Merging bits already held is idempotent.
	mask, err = repo.Merge(ctx, "c1", "app", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, mask)

	stored, err := repo.Mask(ctx, "c1", "app")
	require.NoError(t, err)
	assert.Equal(t, 3, stored)
}

func TestBunGrantRepository_ClearDropsRowAtZero(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunGrantRepository(db)
	ctx := context.Background()

	_, err := repo.Merge(ctx, "c1", "app", 7)
	require.NoError(t, err)

	mask, err := repo.Clear(ctx, "c1", "app", 2)
	require.NoError(t, err)
	assert.Equal(t, 5, mask)

	mask, err = repo.Clear(ctx, "c1", "app", 5)
	require.NoError(t, err)
	assert.Zero(t, mask)

	count, err := db.NewSelect().Model((*models.AccessGrant)(nil)).
		Where("client_id = ?", "c1").
		Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Clearing an absent grant is a no-op.
	mask, err = repo.Clear(ctx, "c1", "app", 15)
	require.NoError(t, err)
	assert.Zero(t, mask)
}

func TestBunGrantRepository_GrantRevokeRestoresPriorMask(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunGrantRepository(db)
	ctx := context.Background()

	for _, prior := range []int{2, 6, 14} {
		_, err := repo.Merge(ctx, "c1", "app", prior)
		require.NoError(t, err)

		_, err = repo.Merge(ctx, "c1", "app", 1)
		require.NoError(t, err)
		mask, err := repo.Clear(ctx, "c1", "app", 1)
		require.NoError(t, err)
		assert.Equal(t, prior, mask)

		_, err = repo.Clear(ctx, "c1", "app", 15)
		require.NoError(t, err)
	}
}

func TestBunGrantRepository_PerClientQueries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunGrantRepository(db)
	ctx := context.Background()

	_, err := repo.Merge(ctx, "c1", "campus", 15)
	require.NoError(t, err)
	_, err = repo.Merge(ctx, "c1", "app", 1)
	require.NoError(t, err)
	_, err = repo.Merge(ctx, "c2", "app", 3)
	require.NoError(t, err)

	grants, err := repo.ListByClient(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Equal(t, "app", grants[0].VaultLabel)
	assert.Equal(t, "campus", grants[1].VaultLabel)

	mask, err := repo.Mask(ctx, "c2", "missing")
	require.NoError(t, err)
	assert.Zero(t, mask)

	require.NoError(t, repo.DeleteByClient(ctx, "c1"))

	grants, err = repo.ListByClient(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, grants)

	mask, err = repo.Mask(ctx, "c2", "app")
	require.NoError(t, err)
	assert.Equal(t, 3, mask)
}

func TestBunSecretRepository_ConcurrentUpsertsKeepOneRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunSecretRepository(db)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Upsert(ctx, &models.Secret{
				VaultLabel: "app",
				Key:        "x",
				Value:      []byte(fmt.Sprintf("v%d", i)),
				UpdatedAt:  time.Now().UTC(),
			})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "writer %d", i)
	}

	fetched, err := repo.Get(ctx, "app", "x")
	require.NoError(t, err)
	wrote := false
	for i := 0; i < writers; i++ {
		if string(fetched.Value) == fmt.Sprintf("v%d", i) {
			wrote = true
		}
	}
	assert.True(t, wrote, "stored value %q is not one of the writes", fetched.Value)

	count, err := db.NewSelect().Model((*models.Secret)(nil)).
		Where("vault_label = ?", "app").
		Where("key = ?", "x").
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBunGrantRepository_ConcurrentMergesLoseNoBits(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunGrantRepository(db)
	ctx := context.Background()

	bits := []int{1, 2, 4, 8}
	var wg sync.WaitGroup
	errs := make([]error, len(bits))
	for i, bit := range bits {
		wg.Add(1)
		go func(i, bit int) {
			defer wg.Done()
			_, errs[i] = repo.Merge(ctx, "c1", "app", bit)
		}(i, bit)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "merge of bit %d", bits[i])
	}

	mask, err := repo.Mask(ctx, "c1", "app")
	require.NoError(t, err)
	assert.Equal(t, 15, mask)

	// Clearing each bit from a different goroutine must end at an empty mask
	// with the row gone.
	for i, bit := range bits {
		wg.Add(1)
		go func(i, bit int) {
			defer wg.Done()
			_, errs[i] = repo.Clear(ctx, "c1", "app", bit)
		}(i, bit)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "clear of bit %d", bits[i])
	}

	mask, err = repo.Mask(ctx, "c1", "app")
	require.NoError(t, err)
	assert.Zero(t, mask)

	count, err := db.NewSelect().Model((*models.AccessGrant)(nil)).
		Where("client_id = ?", "c1").
		Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepositories_ClosedBackendYieldsConnectionError(t *testing.T) {
	db := setupTestDB(t)
	clients := NewBunClientRepository(db)
	secrets := NewBunSecretRepository(db)
	grants := NewBunGrantRepository(db)
	require.NoError(t, bunx.Close(db))
	ctx := context.Background()

	_, err := clients.List(ctx)
	assert.ErrorIs(t, err, errdefs.ErrConnection)

	err = secrets.Upsert(ctx, &models.Secret{
		VaultLabel: "app", Key: "k", Value: []byte("v"), UpdatedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, errdefs.ErrConnection)

	_, err = grants.Merge(ctx, "c1", "app", 1)
	assert.ErrorIs(t, err, errdefs.ErrConnection)

	_, err = grants.Mask(ctx, "c1", "app")
	assert.ErrorIs(t, err, errdefs.ErrConnection)
}
