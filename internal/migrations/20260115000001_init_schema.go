package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/campushq/vaultd/internal/db/models"
)

func init() {
	Migrations.MustRegister(up_20260115000001, down_20260115000001)
}

// up_20260115000001 creates the clients, secrets, and grants tables
func up_20260115000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating clients table...")
	_, err := db.NewCreateTable().
		Model((*models.Client)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create clients table: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating secrets table...")
	_, err = db.NewCreateTable().
		Model((*models.Secret)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create secrets table: %w", err)
	}

	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_secrets_vault_label ON secrets(vault_label)`)
	if err != nil {
		return fmt.Errorf("failed to create secrets label index: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating grants table...")
	_, err = db.NewCreateTable().
		Model((*models.AccessGrant)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create grants table: %w", err)
	}

	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_grants_client_id ON grants(client_id)`)
	if err != nil {
		return fmt.Errorf("failed to create grants client index: %w", err)
	}
	fmt.Println(" OK")

	return nil
}

// down_20260115000001 drops the grants, secrets, and clients tables
func down_20260115000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping grants, secrets, clients tables...")

	for _, model := range []any{
		(*models.AccessGrant)(nil),
		(*models.Secret)(nil),
		(*models.Client)(nil),
	} {
		if _, err := db.NewDropTable().
			Model(model).
			IfExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}

	fmt.Println(" OK")
	return nil
}
