package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/domain/interfaces"
	"github.com/relink-lab/contactsync/pkg/domain/model"
)

// ContactUseCase serves the mirrored contacts to the front-end poller
type ContactUseCase struct {
	repo interfaces.Repository
}

func NewContactUseCase(repo interfaces.Repository) *ContactUseCase {
	return &ContactUseCase{repo: repo}
}

// List returns the live contacts of the tenant's connection. A user without
// a connection has no contacts.
func (u *ContactUseCase) List(ctx context.Context) ([]*model.Contact, error) {
	user, err := u.repo.User().GetDefault(ctx)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, goerr.Wrap(err, "failed to load user")
	}

	if !user.Connected() {
		return []*model.Contact{}, nil
	}

	contacts, err := u.repo.Contact().ListByConnection(ctx, user.ConnectionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list contacts", goerr.V("connectionID", user.ConnectionID))
	}
	return contacts, nil
}
