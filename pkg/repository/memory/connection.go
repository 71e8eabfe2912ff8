package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
)

type connectionRepository struct {
	mu          sync.RWMutex
	connections map[types.ConnectionID]*model.Connection
}

func newConnectionRepository() *connectionRepository {
	return &connectionRepository{
		connections: make(map[types.ConnectionID]*model.Connection),
	}
}

// Upsert creates the connection or refreshes its provider config key
func (r *connectionRepository) Upsert(ctx context.Context, conn *model.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.connections[conn.ID]; ok {
		existing.ProviderConfigKey = conn.ProviderConfigKey
		existing.UpdatedAt = now
		return nil
	}

	connCopy := *conn
	if connCopy.CreatedAt.IsZero() {
		connCopy.CreatedAt = now
	}
	if connCopy.UpdatedAt.IsZero() {
		connCopy.UpdatedAt = now
	}
	r.connections[conn.ID] = &connCopy
	return nil
}

// GetByID retrieves a single connection by ID
func (r *connectionRepository) GetByID(ctx context.Context, id types.ConnectionID) (*model.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.connections[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "connection not found", goerr.V("id", id))
	}

	connCopy := *conn
	return &connCopy, nil
}

// GetAll retrieves all connections of this tenant
func (r *connectionRepository) GetAll(ctx context.Context) ([]*model.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*model.Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		connCopy := *conn
		conns = append(conns, &connCopy)
	}

	sort.Slice(conns, func(i, j int) bool { return conns[i].ID < conns[j].ID })
	return conns, nil
}

// Delete removes a connection by ID
func (r *connectionRepository) Delete(ctx context.Context, id types.ConnectionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.connections, id)
	return nil
}
