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

type contactRepository struct {
	mu       sync.RWMutex
	contacts map[types.ContactID]*model.Contact
}

func newContactRepository() *contactRepository {
	return &contactRepository{
		contacts: make(map[types.ContactID]*model.Contact),
	}
}

// Upsert creates the contact or updates its display fields
func (r *contactRepository) Upsert(ctx context.Context, contact *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.contacts[contact.ID]; ok {
		existing.FullName = contact.FullName
		existing.Avatar = contact.Avatar
		existing.Email = contact.Email
		existing.DisplayName = contact.DisplayName
		existing.Timezone = contact.Timezone
		existing.IsAdmin = contact.IsAdmin
		existing.TeamID = contact.TeamID
		existing.UpdatedAt = now
		return nil
	}

	contactCopy := *contact
	if contactCopy.CreatedAt.IsZero() {
		contactCopy.CreatedAt = now
	}
	if contactCopy.UpdatedAt.IsZero() {
		contactCopy.UpdatedAt = now
	}
	r.contacts[contact.ID] = &contactCopy
	return nil
}

// GetByID retrieves a single contact by ID
func (r *contactRepository) GetByID(ctx context.Context, id types.ContactID) (*model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contact, ok := r.contacts[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "contact not found", goerr.V("id", id))
	}

	contactCopy := *contact
	return &contactCopy, nil
}

// ListByConnection retrieves all live contacts owned by a connection
func (r *contactRepository) ListByConnection(ctx context.Context, connID types.ConnectionID) ([]*model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var contacts []*model.Contact
	for _, contact := range r.contacts {
		if contact.ConnectionID != connID || contact.Deleted() {
			continue
		}
		contactCopy := *contact
		contacts = append(contacts, &contactCopy)
	}

	sort.Slice(contacts, func(i, j int) bool { return contacts[i].ID < contacts[j].ID })
	return contacts, nil
}

// SoftDelete sets the deleted timestamp of a contact. Missing contacts are
// ignored: a deletion may arrive for a record that was never mirrored.
func (r *contactRepository) SoftDelete(ctx context.Context, id types.ContactID, deletedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	contact, ok := r.contacts[id]
	if !ok {
		return nil
	}

	deletedCopy := deletedAt
	contact.DeletedAt = &deletedCopy
	return nil
}

// DeleteByConnection removes all contacts owned by a connection
func (r *contactRepository) DeleteByConnection(ctx context.Context, connID types.ConnectionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, contact := range r.contacts {
		if contact.ConnectionID == connID {
			delete(r.contacts, id)
		}
	}
	return nil
}
