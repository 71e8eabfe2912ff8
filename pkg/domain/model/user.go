package model

import (
	"time"

	"github.com/relink-lab/contactsync/pkg/domain/types"
)

// User is the local account a remote connection gets bound to. This demo
// backend is single-tenant: one seeded User row, identified explicitly by ID
// rather than by a "first row" lookup.
type User struct {
	ID           types.UserID
	Email        string
	DisplayName  string
	ConnectionID types.ConnectionID // empty when not connected
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Connected reports whether the user is bound to a remote connection
func (u *User) Connected() bool {
	return u.ConnectionID != ""
}
