package gateway

import (
	"context"
	"log"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/campushq/vaultd/internal/errdefs"
	"github.com/campushq/vaultd/internal/services/access"
	"github.com/campushq/vaultd/internal/services/identity"
	"github.com/campushq/vaultd/internal/telemetry"
)

const tracerName = "vaultd/services/gateway"

// DefaultBootstrapLabel is the reserved vault label holding platform-level
// secrets. Client administration is authorized against this label.
const DefaultBootstrapLabel = "campus"

// Credentials carries the caller's id/secret pair for one request. The
// gateway authenticates every call from scratch; there are no sessions.
type Credentials struct {
	ClientID string
	Secret   string
}

// IdentityStore is the identity surface the gateway depends on.
type IdentityStore interface {
	Verify(ctx context.Context, id, secret string) (bool, error)
	Create(ctx context.Context, name, description string) (*identity.Client, string, error)
	Get(ctx context.Context, id string) (*identity.Client, error)
	List(ctx context.Context) ([]identity.Client, error)
	UpdateInfo(ctx context.Context, id, name, description string) error
	Rotate(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

// SecretStore is the secret persistence surface the gateway depends on.
type SecretStore interface {
	Get(ctx context.Context, label, key string) ([]byte, error)
	Set(ctx context.Context, label, key string, value []byte) error
	Delete(ctx context.Context, label, key string) error
	Exists(ctx context.Context, label, key string) (bool, error)
	ListKeys(ctx context.Context, label string) ([]string, error)
	ListLabels(ctx context.Context) ([]string, error)
}

// AccessLedger is the permission surface the gateway depends on.
type AccessLedger interface {
	Grant(ctx context.Context, clientID, label string, perm access.Permission) (access.Permission, error)
	Revoke(ctx context.Context, clientID, label string, perm access.Permission) (access.Permission, error)
	Check(ctx context.Context, clientID, label string, want access.Permission) (bool, error)
	Mask(ctx context.Context, clientID, label string) (access.Permission, error)
	Describe(ctx context.Context, clientID string) ([]access.Grant, error)
}

// Service is the authorization gateway: the single entry point for callers.
// Every operation authenticates, then authorizes, then executes, in that
// order. A caller that fails authentication learns nothing about what
// exists; a caller that fails authorization learns nothing about whether
// the addressed secret exists.
type Service struct {
	identity       IdentityStore
	secrets        SecretStore
	access         AccessLedger
	bootstrapLabel string
}

// NewService constructs a gateway over the three stores. An empty
// bootstrapLabel falls back to DefaultBootstrapLabel.
func NewService(ids IdentityStore, secrets SecretStore, ledger AccessLedger, bootstrapLabel string) *Service {
	if bootstrapLabel == "" {
		bootstrapLabel = DefaultBootstrapLabel
	}
	return &Service{
		identity:       ids,
		secrets:        secrets,
		access:         ledger,
		bootstrapLabel: bootstrapLabel,
	}
}

// BootstrapLabel returns the reserved administrative vault label.
func (s *Service) BootstrapLabel() string {
	return s.bootstrapLabel
}

// GetSecret returns the value under (label, key) for a caller holding READ.
func (s *Service) GetSecret(ctx context.Context, creds Credentials, label, key string) ([]byte, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.GetSecret",
		attribute.String(telemetry.AttrVaultLabel, label),
		attribute.String(telemetry.AttrSecretKey, key),
	)
	defer span.End()

	if err := s.authenticate(ctx, span, creds); err != nil {
		return nil, err
	}
	if err := s.require(ctx, span, creds.ClientID, label, access.Read); err != nil {
		return nil, err
	}

	value, err := s.secrets.Get(ctx, label, key)
	if err != nil {
		telemetry.RecordError(span, err)
		telemetry.RecordSecretOperation("get", telemetry.OutcomeError)
		return nil, err
	}
	telemetry.RecordSecretOperation("get", telemetry.OutcomeOK)
	return value, nil
}

// SetSecret stores value under (label, key) and reports whether the key was
// created rather than updated. A caller needs CREATE when the key does not
// exist yet and UPDATE when it does. The existence probe and the write are
// separate statements; two concurrent first writes both pass the CREATE
// check and resolve last-write-wins at the store.
func (s *Service) SetSecret(ctx context.Context, creds Credentials, label, key string, value []byte) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.SetSecret",
		attribute.String(telemetry.AttrVaultLabel, label),
		attribute.String(telemetry.AttrSecretKey, key),
	)
	defer span.End()

	if err := s.authenticate(ctx, span, creds); err != nil {
		return false, err
	}

	exists, err := s.secrets.Exists(ctx, label, key)
	if err != nil {
		telemetry.RecordError(span, err)
		return false, err
	}
	want := access.Create
	if exists {
		want = access.Update
	}
	if err := s.require(ctx, span, creds.ClientID, label, want); err != nil {
		return false, err
	}

	if err := s.secrets.Set(ctx, label, key, value); err != nil {
		telemetry.RecordError(span, err)
		telemetry.RecordSecretOperation("set", telemetry.OutcomeError)
		return false, err
	}
	telemetry.RecordSecretOperation("set", telemetry.OutcomeOK)
	return !exists, nil
}

// DeleteSecret removes (label, key) for a caller holding DELETE.
func (s *Service) DeleteSecret(ctx context.Context, creds Credentials, label, key string) error {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.DeleteSecret",
		attribute.String(telemetry.AttrVaultLabel, label),
		attribute.String(telemetry.AttrSecretKey, key),
	)
	defer span.End()

	if err := s.authenticate(ctx, span, creds); err != nil {
		return err
	}
	if err := s.require(ctx, span, creds.ClientID, label, access.Delete); err != nil {
		return err
	}

	if err := s.secrets.Delete(ctx, label, key); err != nil {
		telemetry.RecordError(span, err)
		telemetry.RecordSecretOperation("delete", telemetry.OutcomeError)
		return err
	}
	telemetry.RecordSecretOperation("delete", telemetry.OutcomeOK)
	return nil
}

// ListKeys returns the key names under label for a caller holding READ.
func (s *Service) ListKeys(ctx context.Context, creds Credentials, label string) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.ListKeys",
		attribute.String(telemetry.AttrVaultLabel, label),
	)
	defer span.End()

	if err := s.authenticate(ctx, span, creds); err != nil {
		return nil, err
	}
	if err := s.require(ctx, span, creds.ClientID, label, access.Read); err != nil {
		return nil, err
	}
	return s.secrets.ListKeys(ctx, label)
}

// ListLabels returns every label holding at least one secret. Label names
// are not secret; any authenticated caller may list them.
func (s *Service) ListLabels(ctx context.Context, creds Credentials) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.ListLabels")
	defer span.End()

	if err := s.authenticate(ctx, span, creds); err != nil {
		return nil, err
	}
	return s.secrets.ListLabels(ctx)
}

// Grant merges perm into target's mask on label. The caller must hold the
// full permission set on label. The target client must exist.
func (s *Service) Grant(ctx context.Context, creds Credentials, targetID, label string, perm access.Permission) (access.Permission, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.Grant",
		attribute.String(telemetry.AttrVaultLabel, label),
		attribute.String(telemetry.AttrPermission, perm.String()),
	)
	defer span.End()

	if err := s.authenticate(ctx, span, creds); err != nil {
		return access.None, err
	}
	if err := s.require(ctx, span, creds.ClientID, label, access.All); err != nil {
		return access.None, err
	}
	if _, err := s.identity.Get(ctx, targetID); err != nil {
		telemetry.RecordError(span, err)
		return access.None, err
	}
	return s.access.Grant(ctx, targetID, label, perm)
}

// Revoke clears perm from target's mask on label; a zero perm clears
// everything. The caller must hold the full permission set on label.
// Revoking from a client without a grant is a no-op.
func (s *Service) Revoke(ctx context.Context, creds Credentials, targetID, label string, perm access.Permission) (access.Permission, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.Revoke",
		attribute.String(telemetry.AttrVaultLabel, label),
		attribute.String(telemetry.AttrPermission, perm.String()),
	)
	defer span.End()

	if err := s.authenticate(ctx, span, creds); err != nil {
		return access.None, err
	}
	if err := s.require(ctx, span, creds.ClientID, label, access.All); err != nil {
		return access.None, err
	}
	return s.access.Revoke(ctx, targetID, label, perm)
}

// DescribeAccess returns target's permission mask on label for a caller
// holding READ on that label.
func (s *Service) DescribeAccess(ctx context.Context, creds Credentials, targetID, label string) (access.Permission, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.DescribeAccess",
		attribute.String(telemetry.AttrVaultLabel, label),
	)
	defer span.End()

	if err := s.authenticate(ctx, span, creds); err != nil {
		return access.None, err
	}
	if err := s.require(ctx, span, creds.ClientID, label, access.Read); err != nil {
		return access.None, err
	}
	return s.access.Mask(ctx, targetID, label)
}

// CreateClient registers a new client. The caller must hold the full
// permission set on the bootstrap label.
func (s *Service) CreateClient(ctx context.Context, creds Credentials, name, description string) (*identity.Client, string, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.CreateClient")
	defer span.End()

	if err := s.authenticate(ctx, span, creds); err != nil {
		return nil, "", err
	}
	if err := s.require(ctx, span, creds.ClientID, s.bootstrapLabel, access.All); err != nil {
		return nil, "", err
	}
	return s.identity.Create(ctx, name, description)
}

// GetClient returns a client's metadata. The caller must hold READ on the
// bootstrap label.
func (s *Service) GetClient(ctx context.Context, creds Credentials, id string) (*identity.Client, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.GetClient")
	defer span.End()

	if err := s.authenticate(ctx, span, creds); err != nil {
		return nil, err
	}
	if err := s.require(ctx, span, creds.ClientID, s.bootstrapLabel, access.Read); err != nil {
		return nil, err
	}
	return s.identity.Get(ctx, id)
}

// ListClients returns all clients. The caller must hold READ on the
// bootstrap label.
func (s *Service) ListClients(ctx context.Context, creds Credentials) ([]identity.Client, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.ListClients")
	defer span.End()

	if err := s.authenticate(ctx, span, creds); err != nil {
		return nil, err
	}
	if err := s.require(ctx, span, creds.ClientID, s.bootstrapLabel, access.Read); err != nil {
		return nil, err
	}
	return s.identity.List(ctx)
}

// UpdateClient changes a client's name and description. The caller must
// hold the full permission set on the bootstrap label.
func (s *Service) UpdateClient(ctx context.Context, creds Credentials, id, name, description string) error {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.UpdateClient")
	defer span.End()

	if err := s.authenticate(ctx, span, creds); err != nil {
		return err
	}
	if err := s.require(ctx, span, creds.ClientID, s.bootstrapLabel, access.All); err != nil {
		return err
	}
	return s.identity.UpdateInfo(ctx, id, name, description)
}

// RotateClientSecret replaces a client's secret and returns the new
// plaintext value once. The caller must hold the full permission set on the
// bootstrap label.
func (s *Service) RotateClientSecret(ctx context.Context, creds Credentials, id string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.RotateClientSecret")
	defer span.End()

	if err := s.authenticate(ctx, span, creds); err != nil {
		return "", err
	}
	if err := s.require(ctx, span, creds.ClientID, s.bootstrapLabel, access.All); err != nil {
		return "", err
	}
	return s.identity.Rotate(ctx, id)
}

// DeleteClient removes a client and all of its grants. The caller must hold
// the full permission set on the bootstrap label.
func (s *Service) DeleteClient(ctx context.Context, creds Credentials, id string) error {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.DeleteClient")
	defer span.End()

	if err := s.authenticate(ctx, span, creds); err != nil {
		return err
	}
	if err := s.require(ctx, span, creds.ClientID, s.bootstrapLabel, access.All); err != nil {
		return err
	}
	return s.identity.Delete(ctx, id)
}

// BootstrapSecret reads a secret from the bootstrap label without caller
// credentials. It exists for the server's own startup reads (for example
// its session signing key) and is never reachable through a transport
// route.
func (s *Service) BootstrapSecret(ctx context.Context, key string) ([]byte, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "gateway.BootstrapSecret",
		attribute.String(telemetry.AttrVaultLabel, s.bootstrapLabel),
	)
	defer span.End()

	return s.secrets.Get(ctx, s.bootstrapLabel, key)
}

// authenticate verifies the caller's credentials. Unknown ids and wrong
// secrets are indistinguishable to the caller; both yield the same
// authentication error, and both are audited.
func (s *Service) authenticate(ctx context.Context, span trace.Span, creds Credentials) error {
	if creds.ClientID == "" || creds.Secret == "" {
		telemetry.RecordAuthentication(telemetry.OutcomeRejected)
		return errdefs.ErrAuthentication
	}
	ok, err := s.identity.Verify(ctx, creds.ClientID, creds.Secret)
	if err != nil {
		telemetry.RecordError(span, err)
		telemetry.RecordAuthentication(telemetry.OutcomeError)
		return err
	}
	if !ok {
		telemetry.RecordAuthentication(telemetry.OutcomeRejected)
		telemetry.AddEvent(span, "authentication.rejected",
			attribute.String(telemetry.AttrClientID, creds.ClientID),
		)
		log.Printf("audit: authentication rejected client_id=%s", creds.ClientID)
		return errdefs.ErrAuthentication
	}
	telemetry.RecordAuthentication(telemetry.OutcomeOK)
	span.SetAttributes(attribute.String(telemetry.AttrClientID, creds.ClientID))
	return nil
}

// require checks that clientID holds every bit of want on label. Denials
// are audited with the caller, label, and requested bits; the error carries
// none of that detail.
func (s *Service) require(ctx context.Context, span trace.Span, clientID, label string, want access.Permission) error {
	ok, err := s.access.Check(ctx, clientID, label, want)
	if err != nil {
		telemetry.RecordError(span, err)
		telemetry.RecordAuthorization(want.String(), telemetry.OutcomeError)
		return err
	}
	if !ok {
		telemetry.RecordAuthorization(want.String(), telemetry.OutcomeDenied)
		telemetry.AddEvent(span, "authorization.denied",
			attribute.String(telemetry.AttrClientID, clientID),
			attribute.String(telemetry.AttrVaultLabel, label),
			attribute.String(telemetry.AttrPermission, want.String()),
		)
		log.Printf("audit: authorization denied client_id=%s label=%s permission=%s",
			clientID, label, want)
		return errdefs.ErrAccessDenied
	}
	telemetry.RecordAuthorization(want.String(), telemetry.OutcomeOK)
	return nil
}
