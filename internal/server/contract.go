package server

import (
	"context"

	"github.com/campushq/vaultd/internal/services/access"
	"github.com/campushq/vaultd/internal/services/gateway"
	"github.com/campushq/vaultd/internal/services/identity"
)

// vaultGateway defines the exact gateway methods used by the HTTP handlers.
// Defining the contract here gives compile-time proof that gateway.Service
// satisfies everything the handlers need without importing repositories or
// store internals, and lets tests substitute a fake.
type vaultGateway interface {
	// Secret operations
	GetSecret(ctx context.Context, creds gateway.Credentials, label, key string) ([]byte, error)
	SetSecret(ctx context.Context, creds gateway.Credentials, label, key string, value []byte) (bool, error)
	DeleteSecret(ctx context.Context, creds gateway.Credentials, label, key string) error
	ListKeys(ctx context.Context, creds gateway.Credentials, label string) ([]string, error)
	ListLabels(ctx context.Context, creds gateway.Credentials) ([]string, error)

	// Access management
	Grant(ctx context.Context, creds gateway.Credentials, targetID, label string, perm access.Permission) (access.Permission, error)
	Revoke(ctx context.Context, creds gateway.Credentials, targetID, label string, perm access.Permission) (access.Permission, error)
	DescribeAccess(ctx context.Context, creds gateway.Credentials, targetID, label string) (access.Permission, error)

	// Client management
	CreateClient(ctx context.Context, creds gateway.Credentials, name, description string) (*identity.Client, string, error)
	GetClient(ctx context.Context, creds gateway.Credentials, id string) (*identity.Client, error)
	ListClients(ctx context.Context, creds gateway.Credentials) ([]identity.Client, error)
	UpdateClient(ctx context.Context, creds gateway.Credentials, id, name, description string) error
	RotateClientSecret(ctx context.Context, creds gateway.Credentials, id string) (string, error)
	DeleteClient(ctx context.Context, creds gateway.Credentials, id string) error
}

var _ vaultGateway = (*gateway.Service)(nil)
