package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[types.UserID]*model.User
	order []types.UserID
}

func newUserRepository() *userRepository {
	return &userRepository{
		users: make(map[types.UserID]*model.User),
	}
}

// Create stores a new user
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return goerr.Wrap(ErrAlreadyExists, "user already exists", goerr.V("id", user.ID))
	}

	// Store a deep copy to prevent external modifications
	userCopy := *user
	r.users[user.ID] = &userCopy
	r.order = append(r.order, user.ID)
	return nil
}

// GetByID retrieves a single user by ID
func (r *userRepository) GetByID(ctx context.Context, id types.UserID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
	}

	userCopy := *user
	return &userCopy, nil
}

// GetDefault retrieves the single seeded user of this tenant
func (r *userRepository) GetDefault(ctx context.Context) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return nil, goerr.Wrap(ErrNotFound, "no user seeded")
	}

	userCopy := *r.users[r.order[0]]
	return &userCopy, nil
}

// BindConnection sets the user's connection ID
func (r *userRepository) BindConnection(ctx context.Context, id types.UserID, connID types.ConnectionID) error {
	return r.update(id, func(user *model.User) {
		user.ConnectionID = connID
	})
}

// UnbindConnection clears the user's connection ID
func (r *userRepository) UnbindConnection(ctx context.Context, id types.UserID) error {
	return r.update(id, func(user *model.User) {
		user.ConnectionID = ""
	})
}

func (r *userRepository) update(id types.UserID, mutate func(*model.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
	}

	mutate(user)
	user.UpdatedAt = time.Now()
	return nil
}
