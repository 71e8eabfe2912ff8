package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/domain/interfaces"
	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const contactsCollection = "contacts"

type contactRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ContactRepository = &contactRepository{}

func newContactRepository(client *firestore.Client) *contactRepository {
	return &contactRepository{client: client}
}

// contactDoc is the Firestore persistence model
type contactDoc struct {
	ID            string     `firestore:"id"`
	FullName      string     `firestore:"full_name"`
	Avatar        string     `firestore:"avatar"`
	Email         string     `firestore:"email"`
	DisplayName   string     `firestore:"display_name"`
	Timezone      string     `firestore:"timezone"`
	IsAdmin       bool       `firestore:"is_admin"`
	TeamID        string     `firestore:"team_id"`
	IntegrationID string     `firestore:"integration_id"`
	ConnectionID  string     `firestore:"connection_id"`
	CreatedAt     time.Time  `firestore:"created_at"`
	UpdatedAt     time.Time  `firestore:"updated_at"`
	DeletedAt     *time.Time `firestore:"deleted_at"`
}

func (r *contactRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + contactsCollection)
	}
	return r.client.Collection(contactsCollection)
}

func (r *contactRepository) toDoc(contact *model.Contact) *contactDoc {
	return &contactDoc{
		ID:            string(contact.ID),
		FullName:      contact.FullName,
		Avatar:        contact.Avatar,
		Email:         contact.Email,
		DisplayName:   contact.DisplayName,
		Timezone:      contact.Timezone,
		IsAdmin:       contact.IsAdmin,
		TeamID:        contact.TeamID,
		IntegrationID: string(contact.IntegrationID),
		ConnectionID:  string(contact.ConnectionID),
		CreatedAt:     contact.CreatedAt,
		UpdatedAt:     contact.UpdatedAt,
		DeletedAt:     contact.DeletedAt,
	}
}

func (r *contactRepository) fromDoc(doc *contactDoc) *model.Contact {
	return &model.Contact{
		ID:            types.ContactID(doc.ID),
		FullName:      doc.FullName,
		Avatar:        doc.Avatar,
		Email:         doc.Email,
		DisplayName:   doc.DisplayName,
		Timezone:      doc.Timezone,
		IsAdmin:       doc.IsAdmin,
		TeamID:        doc.TeamID,
		IntegrationID: types.ProviderConfigKey(doc.IntegrationID),
		ConnectionID:  types.ConnectionID(doc.ConnectionID),
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
		DeletedAt:     doc.DeletedAt,
	}
}

// Upsert creates the contact or updates its display fields
func (r *contactRepository) Upsert(ctx context.Context, contact *model.Contact) error {
	now := time.Now()
	ref := r.collection().Doc(string(contact.ID))

	snap, err := ref.Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return goerr.Wrap(err, "failed to look up contact", goerr.V("id", contact.ID))
	}

	doc := r.toDoc(contact)
	doc.UpdatedAt = now
	if snap != nil && snap.Exists() {
		var existing contactDoc
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal contact", goerr.V("id", contact.ID))
		}
		doc.CreatedAt = existing.CreatedAt
		doc.DeletedAt = existing.DeletedAt
	} else if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}

	if _, err := ref.Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save contact", goerr.V("id", contact.ID))
	}
	return nil
}

// GetByID retrieves a single contact by ID
func (r *contactRepository) GetByID(ctx context.Context, id types.ContactID) (*model.Contact, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "contact not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get contact", goerr.V("id", id))
	}

	var d contactDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal contact", goerr.V("id", id))
	}

	return r.fromDoc(&d), nil
}

// ListByConnection retrieves all live contacts owned by a connection.
// Soft-deleted rows are filtered out after the query: Firestore cannot match
// on a missing-or-null field without a sparse index.
func (r *contactRepository) ListByConnection(ctx context.Context, connID types.ConnectionID) ([]*model.Contact, error) {
	iter := r.collection().Where("connection_id", "==", string(connID)).Documents(ctx)
	defer iter.Stop()

	var contacts []*model.Contact
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate contacts", goerr.V("connectionID", connID))
		}

		var d contactDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal contact", goerr.V("docID", doc.Ref.ID))
		}

		if d.DeletedAt != nil {
			continue
		}
		contacts = append(contacts, r.fromDoc(&d))
	}

	return contacts, nil
}

// SoftDelete sets the deleted timestamp of a contact
func (r *contactRepository) SoftDelete(ctx context.Context, id types.ContactID, deletedAt time.Time) error {
	_, err := r.collection().Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "deleted_at", Value: deletedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			// Deletion may arrive for a record that was never mirrored
			return nil
		}
		return goerr.Wrap(err, "failed to soft-delete contact", goerr.V("id", id))
	}
	return nil
}

// DeleteByConnection removes all contacts owned by a connection
func (r *contactRepository) DeleteByConnection(ctx context.Context, connID types.ConnectionID) error {
	iter := r.collection().Where("connection_id", "==", string(connID)).Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate contacts for deletion", goerr.V("connectionID", connID))
		}
		refs = append(refs, doc.Ref)
	}

	if len(refs) == 0 {
		return nil
	}

	bulkWriter := r.client.BulkWriter(ctx)
	defer bulkWriter.End()

	for _, ref := range refs {
		if _, err := bulkWriter.Delete(ref); err != nil {
			return goerr.Wrap(err, "failed to add Delete operation to bulk writer")
		}
	}

	bulkWriter.Flush()

	return nil
}
