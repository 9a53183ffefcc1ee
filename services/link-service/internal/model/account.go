package model

import (
	"time"
)

// Account represents one game identity and its link to a chat-platform identity.
// Rows are created, and PendingCode issued, by the game server; this service only
// consumes codes and never deletes an account or clears a link.
type Account struct {
	ID             string     `bson:"_id"`
	DisplayName    string     `bson:"display_name"`
	LinkedIdentity *string    `bson:"linked_identity,omitempty"`
	PendingCode    *string    `bson:"pending_code,omitempty"`
	LinkedAt       *time.Time `bson:"linked_at,omitempty"`
	CreatedAt      time.Time  `bson:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at"`
}

// IsLinked reports whether the account is bound to a chat-platform identity.
func (a *Account) IsLinked() bool {
	return a.LinkedIdentity != nil && *a.LinkedIdentity != ""
}
