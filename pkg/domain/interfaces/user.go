package interfaces

import (
	"context"

	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
)

// UserRepository provides database operations for local users
type UserRepository interface {
	// Create stores a new user. Creating an existing ID is an error.
	Create(ctx context.Context, user *model.User) error

	// GetByID retrieves a single user by ID. Returns ErrNotFound of the
	// backing repository when missing.
	GetByID(ctx context.Context, id types.UserID) (*model.User, error)

	// GetDefault retrieves the single seeded user of this tenant
	GetDefault(ctx context.Context) (*model.User, error)

	// BindConnection sets the user's connection ID
	BindConnection(ctx context.Context, id types.UserID, connID types.ConnectionID) error

	// UnbindConnection clears the user's connection ID
	UnbindConnection(ctx context.Context, id types.UserID) error
}
