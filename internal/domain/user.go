package domain

import "github.com/google/uuid"

// User is a read-only view over the account subsystem's users table.
// Authentication and account management live upstream; this service only
// needs a name and an email address for notifications.
type User struct {
	ID    uuid.UUID `db:"id"    json:"id"`
	Name  string    `db:"name"  json:"name"`
	Email string    `db:"email" json:"email"`
}
