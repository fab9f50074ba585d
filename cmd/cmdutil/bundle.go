package cmdutil

import (
	"fmt"

	"github.com/uptrace/bun"

	"github.com/campushq/vaultd/internal/config"
	"github.com/campushq/vaultd/internal/db/bunx"
	"github.com/campushq/vaultd/internal/repository"
	"github.com/campushq/vaultd/internal/services/access"
	"github.com/campushq/vaultd/internal/services/gateway"
	"github.com/campushq/vaultd/internal/services/identity"
	"github.com/campushq/vaultd/internal/services/secrets"
)

// ServiceBundle wires the database, repositories, and services for commands
// that operate on the vault directly, without going through HTTP.
type ServiceBundle struct {
	DB       *bun.DB
	Identity *identity.Service
	Secrets  *secrets.Service
	Access   *access.Service
	Gateway  *gateway.Service
}

// NewServiceBundle connects to the database and assembles the service graph.
// Callers must Close the bundle when done.
func NewServiceBundle(cfg *config.Config) (*ServiceBundle, error) {
	db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	clientRepo := repository.NewBunClientRepository(db)
	secretRepo := repository.NewBunSecretRepository(db)
	grantRepo := repository.NewBunGrantRepository(db)

	ids := identity.NewService(clientRepo)
	sec := secrets.NewService(secretRepo)
	acl := access.NewService(grantRepo)
	gw := gateway.NewService(ids, sec, acl, cfg.BootstrapLabel)

	return &ServiceBundle{
		DB:       db,
		Identity: ids,
		Secrets:  sec,
		Access:   acl,
		Gateway:  gw,
	}, nil
}

// Close releases the bundle's database resources.
func (b *ServiceBundle) Close() {
	bunx.Close(b.DB)
}
