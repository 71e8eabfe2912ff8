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

const connectionsCollection = "connections"

type connectionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ConnectionRepository = &connectionRepository{}

func newConnectionRepository(client *firestore.Client) *connectionRepository {
	return &connectionRepository{client: client}
}

// connectionDoc is the Firestore persistence model
type connectionDoc struct {
	ID                string    `firestore:"id"`
	ProviderConfigKey string    `firestore:"provider_config_key"`
	CreatedAt         time.Time `firestore:"created_at"`
	UpdatedAt         time.Time `firestore:"updated_at"`
}

func (r *connectionRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + connectionsCollection)
	}
	return r.client.Collection(connectionsCollection)
}

func (r *connectionRepository) fromDoc(doc *connectionDoc) *model.Connection {
	return &model.Connection{
		ID:                types.ConnectionID(doc.ID),
		ProviderConfigKey: types.ProviderConfigKey(doc.ProviderConfigKey),
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
}

// Upsert creates the connection or refreshes its provider config key
func (r *connectionRepository) Upsert(ctx context.Context, conn *model.Connection) error {
	now := time.Now()
	ref := r.collection().Doc(string(conn.ID))

	snap, err := ref.Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return goerr.Wrap(err, "failed to look up connection", goerr.V("id", conn.ID))
	}

	doc := connectionDoc{
		ID:                string(conn.ID),
		ProviderConfigKey: string(conn.ProviderConfigKey),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if snap != nil && snap.Exists() {
		var existing connectionDoc
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal connection", goerr.V("id", conn.ID))
		}
		doc.CreatedAt = existing.CreatedAt
	} else if !conn.CreatedAt.IsZero() {
		doc.CreatedAt = conn.CreatedAt
	}

	if _, err := ref.Set(ctx, &doc); err != nil {
		return goerr.Wrap(err, "failed to save connection", goerr.V("id", conn.ID))
	}
	return nil
}

// GetByID retrieves a single connection by ID
func (r *connectionRepository) GetByID(ctx context.Context, id types.ConnectionID) (*model.Connection, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "connection not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get connection", goerr.V("id", id))
	}

	var d connectionDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal connection", goerr.V("id", id))
	}

	return r.fromDoc(&d), nil
}

// GetAll retrieves all connections of this tenant
func (r *connectionRepository) GetAll(ctx context.Context) ([]*model.Connection, error) {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var conns []*model.Connection
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate connections")
		}

		var d connectionDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal connection", goerr.V("docID", doc.Ref.ID))
		}

		conns = append(conns, r.fromDoc(&d))
	}

	return conns, nil
}

// Delete removes a connection by ID. Deleting a missing document is a no-op
// in Firestore, matching the contract.
func (r *connectionRepository) Delete(ctx context.Context, id types.ConnectionID) error {
	if _, err := r.collection().Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete connection", goerr.V("id", id))
	}
	return nil
}
