package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campushq/vaultd/internal/db/models"
	"github.com/campushq/vaultd/internal/errdefs"
)

// MockGrantRepository is a mock implementation of repository.GrantRepository
type MockGrantRepository struct {
	mock.Mock
}

func (m *MockGrantRepository) Merge(ctx context.Context, clientID, label string, bits int) (int, error) {
	args := m.Called(ctx, clientID, label, bits)
	return args.Int(0), args.Error(1)
}

func (m *MockGrantRepository) Clear(ctx context.Context, clientID, label string, bits int) (int, error) {
	args := m.Called(ctx, clientID, label, bits)
	return args.Int(0), args.Error(1)
}

func (m *MockGrantRepository) Mask(ctx context.Context, clientID, label string) (int, error) {
	args := m.Called(ctx, clientID, label)
	return args.Int(0), args.Error(1)
}

func (m *MockGrantRepository) ListByClient(ctx context.Context, clientID string) ([]models.AccessGrant, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AccessGrant), args.Error(1)
}

func (m *MockGrantRepository) DeleteByClient(ctx context.Context, clientID string) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

func TestService_Grant(t *testing.T) {
	ctx := context.Background()

	t.Run("merges bits and returns mask", func(t *testing.T) {
		repo := new(MockGrantRepository)
		repo.On("Merge", ctx, "c1", "app", int(Read|Create)).Return(int(Read|Create|Update), nil)

		svc := NewService(repo)
		mask, err := svc.Grant(ctx, "c1", "app", Read|Create)
		require.NoError(t, err)
		assert.Equal(t, Read|Create|Update, mask)
		repo.AssertExpectations(t)
	})

	t.Run("rejects empty mask", func(t *testing.T) {
		repo := new(MockGrantRepository)
		svc := NewService(repo)

		_, err := svc.Grant(ctx, "c1", "app", None)
		assert.ErrorIs(t, err, errdefs.ErrValidation)
		repo.AssertNotCalled(t, "Merge")
	})

	t.Run("rejects undefined bits", func(t *testing.T) {
		repo := new(MockGrantRepository)
		svc := NewService(repo)

		_, err := svc.Grant(ctx, "c1", "app", Permission(32))
		assert.ErrorIs(t, err, errdefs.ErrValidation)
		repo.AssertNotCalled(t, "Merge")
	})
}

func TestService_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("clears bits and returns remaining mask", func(t *testing.T) {
		repo := new(MockGrantRepository)
		repo.On("Clear", ctx, "c1", "app", int(Create)).Return(int(Read), nil)

		svc := NewService(repo)
		mask, err := svc.Revoke(ctx, "c1", "app", Create)
		require.NoError(t, err)
		assert.Equal(t, Read, mask)
	})

	t.Run("zero mask revokes everything", func(t *testing.T) {
		repo := new(MockGrantRepository)
		repo.On("Clear", ctx, "c1", "app", int(All)).Return(0, nil)

		svc := NewService(repo)
		mask, err := svc.Revoke(ctx, "c1", "app", None)
		require.NoError(t, err)
		assert.Equal(t, None, mask)
		repo.AssertExpectations(t)
	})

	t.Run("rejects undefined bits", func(t *testing.T) {
		repo := new(MockGrantRepository)
		svc := NewService(repo)

		_, err := svc.Revoke(ctx, "c1", "app", Permission(64))
		assert.ErrorIs(t, err, errdefs.ErrValidation)
	})
}

func TestService_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("requires every requested bit", func(t *testing.T) {
		repo := new(MockGrantRepository)
		repo.On("Mask", ctx, "c1", "app").Return(int(Read|Create), nil)

		svc := NewService(repo)

		ok, err := svc.Check(ctx, "c1", "app", Read)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.Check(ctx, "c1", "app", Read|Update)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing grant row means no access", func(t *testing.T) {
		repo := new(MockGrantRepository)
		repo.On("Mask", ctx, "c2", "app").Return(0, nil)

		svc := NewService(repo)
		ok, err := svc.Check(ctx, "c2", "app", Read)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestService_Describe(t *testing.T) {
	ctx := context.Background()

	repo := new(MockGrantRepository)
	repo.On("ListByClient", ctx, "c1").Return([]models.AccessGrant{
		{ClientID: "c1", VaultLabel: "app", Permissions: int(Read | Create)},
		{ClientID: "c1", VaultLabel: "campus", Permissions: int(All)},
	}, nil)

	svc := NewService(repo)
	grants, err := svc.Describe(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Equal(t, "app", grants[0].VaultLabel)
	assert.Equal(t, Read|Create, grants[0].Mask)
	assert.Equal(t, All, grants[1].Mask)
}
