package interfaces

import (
	"context"
	"time"

	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
)

// ContactRepository provides database operations for mirrored contacts
type ContactRepository interface {
	// Upsert creates the contact or updates its display fields and updated
	// timestamp, keyed by contact ID
	Upsert(ctx context.Context, contact *model.Contact) error

	// GetByID retrieves a single contact by ID
	GetByID(ctx context.Context, id types.ContactID) (*model.Contact, error)

	// ListByConnection retrieves all contacts owned by a connection.
	// Soft-deleted contacts are excluded.
	ListByConnection(ctx context.Context, connID types.ConnectionID) ([]*model.Contact, error)

	// SoftDelete sets the deleted timestamp of a contact, leaving every other
	// field untouched. A missing contact is not an error.
	SoftDelete(ctx context.Context, id types.ContactID, deletedAt time.Time) error

	// DeleteByConnection removes all contacts owned by a connection,
	// including soft-deleted rows. Used by the disconnect cascade.
	DeleteByConnection(ctx context.Context, connID types.ConnectionID) error
}
