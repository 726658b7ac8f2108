package bunx

import "github.com/google/uuid"

// NewUUIDv7 generates a time-ordered UUIDv7 string for database primary keys.
// Time-ordered IDs sort well in indexes and work identically on PostgreSQL
// and SQLite (no gen_random_uuid() dependency).
//
// Panics only on catastrophic entropy failure, in which case no ID
// generation would work anyway.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
