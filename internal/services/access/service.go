package access

import (
	"context"

	"github.com/campushq/vaultd/internal/errdefs"
	"github.com/campushq/vaultd/internal/repository"
)

// Grant describes one client's permission mask on one vault label.
type Grant struct {
	ClientID   string
	VaultLabel string
	Mask       Permission
}

// Service maintains the ledger of permission masks. Grants merge bits,
// revokes clear bits, and a check is a pure bitwise test against the stored
// mask. No row for a (client, label) pair means no access.
type Service struct {
	grants repository.GrantRepository
}

// NewService constructs a new access Service.
func NewService(grants repository.GrantRepository) *Service {
	return &Service{grants: grants}
}

// Grant ORs perm into the client's mask on label and returns the resulting
// mask. Granting bits already held is a no-op.
func (s *Service) Grant(ctx context.Context, clientID, label string, perm Permission) (Permission, error) {
	if !perm.Valid() {
		return None, errdefs.Validationf("invalid permission mask %d", int(perm))
	}
	mask, err := s.grants.Merge(ctx, clientID, label, int(perm))
	if err != nil {
		return None, err
	}
	return Permission(mask), nil
}

// Revoke clears perm from the client's mask on label and returns the
// remaining mask. A zero perm revokes everything. Revoking from a client
// that holds no grant is a no-op returning None.
func (s *Service) Revoke(ctx context.Context, clientID, label string, perm Permission) (Permission, error) {
	if perm == None {
		perm = All
	}
	if !perm.Valid() {
		return None, errdefs.Validationf("invalid permission mask %d", int(perm))
	}
	mask, err := s.grants.Clear(ctx, clientID, label, int(perm))
	if err != nil {
		return None, err
	}
	return Permission(mask), nil
}

// Check reports whether the client holds every bit of want on label.
func (s *Service) Check(ctx context.Context, clientID, label string, want Permission) (bool, error) {
	mask, err := s.grants.Mask(ctx, clientID, label)
	if err != nil {
		return false, err
	}
	return Permission(mask).Has(want), nil
}

// Mask returns the client's full permission mask on label, None when the
// client holds no grant there.
func (s *Service) Mask(ctx context.Context, clientID, label string) (Permission, error) {
	mask, err := s.grants.Mask(ctx, clientID, label)
	if err != nil {
		return None, err
	}
	return Permission(mask), nil
}

// Describe returns every grant held by the client, ordered by label.
func (s *Service) Describe(ctx context.Context, clientID string) ([]Grant, error) {
	records, err := s.grants.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	grants := make([]Grant, 0, len(records))
	for _, record := range records {
		grants = append(grants, Grant{
			ClientID:   record.ClientID,
			VaultLabel: record.VaultLabel,
			Mask:       Permission(record.Permissions),
		})
	}
	return grants, nil
}
