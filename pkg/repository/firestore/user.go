package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/domain/interfaces"
	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.UserRepository = &userRepository{}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{client: client}
}

// userDoc is the Firestore persistence model
type userDoc struct {
	ID           string    `firestore:"id"`
	Email        string    `firestore:"email"`
	DisplayName  string    `firestore:"display_name"`
	ConnectionID string    `firestore:"connection_id"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

func (r *userRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + usersCollection)
	}
	return r.client.Collection(usersCollection)
}

func (r *userRepository) toDoc(user *model.User) *userDoc {
	return &userDoc{
		ID:           string(user.ID),
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		ConnectionID: string(user.ConnectionID),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func (r *userRepository) fromDoc(doc *userDoc) *model.User {
	return &model.User{
		ID:           types.UserID(doc.ID),
		Email:        doc.Email,
		DisplayName:  doc.DisplayName,
		ConnectionID: types.ConnectionID(doc.ConnectionID),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

// Create stores a new user
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	_, err := r.collection().Doc(string(user.ID)).Create(ctx, r.toDoc(user))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(ErrAlreadyExists, "user already exists", goerr.V("id", user.ID))
		}
		return goerr.Wrap(err, "failed to create user", goerr.V("id", user.ID))
	}
	return nil
}

// GetByID retrieves a single user by ID
func (r *userRepository) GetByID(ctx context.Context, id types.UserID) (*model.User, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var d userDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("id", id))
	}

	return r.fromDoc(&d), nil
}

// GetDefault retrieves the earliest seeded user of this tenant
func (r *userRepository) GetDefault(ctx context.Context) (*model.User, error) {
	docs, err := r.collection().OrderBy("created_at", firestore.Asc).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query default user")
	}
	if len(docs) == 0 {
		return nil, goerr.Wrap(ErrNotFound, "no user seeded")
	}

	var d userDoc
	if err := docs[0].DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("docID", docs[0].Ref.ID))
	}

	return r.fromDoc(&d), nil
}

// BindConnection sets the user's connection ID
func (r *userRepository) BindConnection(ctx context.Context, id types.UserID, connID types.ConnectionID) error {
	return r.updateConnection(ctx, id, string(connID))
}

// UnbindConnection clears the user's connection ID
func (r *userRepository) UnbindConnection(ctx context.Context, id types.UserID) error {
	return r.updateConnection(ctx, id, "")
}

func (r *userRepository) updateConnection(ctx context.Context, id types.UserID, connID string) error {
	_, err := r.collection().Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "connection_id", Value: connID},
		{Path: "updated_at", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to update user connection", goerr.V("id", id))
	}
	return nil
}
