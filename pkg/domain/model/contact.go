package model

import (
	"time"

	"github.com/relink-lab/contactsync/pkg/domain/types"
)

// Contact is the local mirror of a remote person record. It is created and
// updated by sync reconciliation, soft-deleted when the remote platform
// reports a deletion, and hard-deleted only by the cascade that follows a
// connection removal.
type Contact struct {
	ID            types.ContactID
	FullName      string
	Avatar        string
	Email         string
	DisplayName   string
	Timezone      string
	IsAdmin       bool
	TeamID        string
	IntegrationID types.ProviderConfigKey
	ConnectionID  types.ConnectionID
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// Deleted reports whether the contact has been soft-deleted
func (c *Contact) Deleted() bool {
	return c.DeletedAt != nil
}
