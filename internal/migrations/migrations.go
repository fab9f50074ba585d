package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds every registered schema migration. Migration files
// register themselves in their init functions.
var Migrations = migrate.NewMigrations()
