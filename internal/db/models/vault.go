package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Client represents a vault client identity: a non-interactive principal
// (service, pipeline, peer application) authenticating with an id/secret
// pair. Distinct from end-user accounts in the surrounding platform.
//
// SecretHash stores the bcrypt hash of the client secret. The plaintext
// secret is generated once at creation and never persisted.
type Client struct {
	bun.BaseModel `bun:"table:clients,alias:c"`

	ID          string    `bun:"id,pk"`
	SecretHash  string    `bun:"secret_hash,notnull"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Secret is one key-value entry inside a vault label. The value is an opaque
// byte payload; the engine never assumes an encoding.
type Secret struct {
	bun.BaseModel `bun:"table:secrets,alias:s"`

	VaultLabel string    `bun:"vault_label,pk"`
	Key        string    `bun:"key,pk"`
	Value      []byte    `bun:"value,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// AccessGrant maps (client, vault label) to a permission bitmask. At most one
// row exists per pair; grants merge via bitwise OR and the row is removed
// when the mask reaches zero.
type AccessGrant struct {
	bun.BaseModel `bun:"table:grants,alias:g"`

	ClientID    string `bun:"client_id,pk"`
	VaultLabel  string `bun:"vault_label,pk"`
	Permissions int    `bun:"permissions,notnull"`
}
