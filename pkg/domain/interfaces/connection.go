package interfaces

import (
	"context"

	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
)

// ConnectionRepository provides database operations for remote connections
type ConnectionRepository interface {
	// Upsert creates the connection or refreshes its provider config key and
	// updated timestamp. A re-auth webhook for a known connection ID must not
	// fail or duplicate.
	Upsert(ctx context.Context, conn *model.Connection) error

	// GetByID retrieves a single connection by ID
	GetByID(ctx context.Context, id types.ConnectionID) (*model.Connection, error)

	// GetAll retrieves all connections of this tenant
	GetAll(ctx context.Context) ([]*model.Connection, error)

	// Delete removes a connection by ID. Deleting a missing ID is not an
	// error.
	Delete(ctx context.Context, id types.ConnectionID) error
}
