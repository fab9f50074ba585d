package secrets

import (
	"context"
	"strings"
	"time"

	"github.com/campushq/vaultd/internal/db/models"
	"github.com/campushq/vaultd/internal/errdefs"
	"github.com/campushq/vaultd/internal/repository"
)

// Service stores and retrieves secret values addressed by (vault label, key).
// It knows nothing about clients or permissions; callers are expected to have
// been authorized already.
type Service struct {
	secrets repository.SecretRepository
}

// NewService constructs a new secrets Service.
func NewService(secrets repository.SecretRepository) *Service {
	return &Service{secrets: secrets}
}

// Get returns the value stored under (label, key), or errdefs.ErrNotFound.
func (s *Service) Get(ctx context.Context, label, key string) ([]byte, error) {
	if err := validateAddress(label, key); err != nil {
		return nil, err
	}
	record, err := s.secrets.Get(ctx, label, key)
	if err != nil {
		return nil, err
	}
	return record.Value, nil
}

// Set creates or overwrites the value under (label, key). A label springs
// into existence with its first secret; there is no separate create step.
func (s *Service) Set(ctx context.Context, label, key string, value []byte) error {
	if err := validateAddress(label, key); err != nil {
		return err
	}
	record := &models.Secret{
		VaultLabel: label,
		Key:        key,
		Value:      value,
		UpdatedAt:  time.Now().UTC(),
	}
	return s.secrets.Upsert(ctx, record)
}

// Delete removes the value under (label, key), or errdefs.ErrNotFound.
func (s *Service) Delete(ctx context.Context, label, key string) error {
	if err := validateAddress(label, key); err != nil {
		return err
	}
	return s.secrets.Delete(ctx, label, key)
}

// Exists reports whether a value is stored under (label, key).
func (s *Service) Exists(ctx context.Context, label, key string) (bool, error) {
	if err := validateAddress(label, key); err != nil {
		return false, err
	}
	return s.secrets.Exists(ctx, label, key)
}

// ListKeys returns the key names stored under the label, ordered. A label
// with no secrets yields an empty list, not an error.
func (s *Service) ListKeys(ctx context.Context, label string) ([]string, error) {
	if err := validateLabel(label); err != nil {
		return nil, err
	}
	return s.secrets.ListKeys(ctx, label)
}

// ListLabels returns every label holding at least one secret, ordered.
func (s *Service) ListLabels(ctx context.Context) ([]string, error) {
	return s.secrets.ListLabels(ctx)
}

func validateAddress(label, key string) error {
	if err := validateLabel(label); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return errdefs.Validationf("secret key must not be empty")
	}
	return nil
}

func validateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return errdefs.Validationf("vault label must not be empty")
	}
	return nil
}
