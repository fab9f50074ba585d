package bunx

import "github.com/google/uuid"

// NewUUIDv7 generates a time-ordered UUIDv7 string, used for client ids.
//
// UUIDv7 keeps primary-key indexes append-mostly on both PostgreSQL and
// SQLite and avoids a gen_random_uuid() dependency. The function panics only
// on entropy-source exhaustion, at which point no id generation could
// succeed anyway.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
