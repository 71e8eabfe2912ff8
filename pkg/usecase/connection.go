package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/domain/interfaces"
	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
	"github.com/relink-lab/contactsync/pkg/service/nango"
	"github.com/relink-lab/contactsync/pkg/utils/errutil"
	"github.com/relink-lab/contactsync/pkg/utils/logging"
)

// ConnectionUseCase manages the tenant's connection state
type ConnectionUseCase struct {
	repo    interfaces.Repository
	nango   nango.Service
	catalog *model.IntegrationCatalog
}

func NewConnectionUseCase(repo interfaces.Repository, nangoSvc nango.Service, catalog *model.IntegrationCatalog) *ConnectionUseCase {
	return &ConnectionUseCase{
		repo:    repo,
		nango:   nangoSvc,
		catalog: catalog,
	}
}

// List returns the tenant's connections. The remote platform is the source
// of truth; local rows serve as a fallback cache when the platform is
// unreachable.
func (u *ConnectionUseCase) List(ctx context.Context) ([]nango.RemoteConnection, error) {
	user, err := u.repo.User().GetDefault(ctx)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, goerr.Wrap(err, "failed to load user")
	}

	if !user.Connected() {
		return []nango.RemoteConnection{}, nil
	}

	remote, err := u.nango.ListConnections(ctx, user.ConnectionID)
	if err == nil {
		return remote, nil
	}
	_ = errutil.Handle(ctx, err, "platform connection listing failed, falling back to local cache")

	local, err := u.repo.Connection().GetAll(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list local connections")
	}

	conns := make([]nango.RemoteConnection, len(local))
	for i, conn := range local {
		conns[i] = nango.RemoteConnection{
			ID:                conn.ID.String(),
			ConnectionID:      conn.ID.String(),
			ProviderConfigKey: conn.ProviderConfigKey.String(),
			CreatedAt:         conn.CreatedAt.Format(time.RFC3339),
			UpdatedAt:         conn.UpdatedAt.Format(time.RFC3339),
			CredentialsStatus: "VALID",
		}
	}
	return conns, nil
}

// Delete unlinks the tenant's connection: unlink on the platform, then drop
// the mirrored contacts, the local connection row, and the user binding.
// There is no transaction spanning the platform and the store; a partial
// failure leaves local state behind until the next reconcile pass, and is
// reported.
func (u *ConnectionUseCase) Delete(ctx context.Context, integration types.ProviderConfigKey) error {
	if !u.catalog.Known(integration) {
		return ErrUnknownIntegration
	}

	user, err := u.repo.User().GetDefault(ctx)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrUserNotFound
		}
		return goerr.Wrap(err, "failed to load user")
	}
	if !user.Connected() {
		return ErrNotConnected
	}

	connID := user.ConnectionID
	if err := u.nango.DeleteConnection(ctx, integration, connID); err != nil {
		return goerr.Wrap(err, "failed to unlink connection on platform", goerr.V("connectionID", connID))
	}

	if err := u.repo.Contact().DeleteByConnection(ctx, connID); err != nil {
		errutil.Report(ctx, err, "platform unlink succeeded but contact cleanup failed")
		return goerr.Wrap(err, "failed to delete contacts", goerr.V("connectionID", connID))
	}

	if err := u.repo.Connection().Delete(ctx, connID); err != nil {
		errutil.Report(ctx, err, "platform unlink succeeded but connection cleanup failed")
		return goerr.Wrap(err, "failed to delete connection", goerr.V("connectionID", connID))
	}

	if err := u.repo.User().UnbindConnection(ctx, user.ID); err != nil {
		errutil.Report(ctx, err, "platform unlink succeeded but user unbind failed")
		return goerr.Wrap(err, "failed to unbind user connection", goerr.V("userID", user.ID))
	}

	logging.From(ctx).Info("connection deleted",
		"user_id", user.ID,
		"connection_id", connID,
		"integration", integration,
	)
	return nil
}

// CreateManual records a connection without a webhook round-trip, for when
// webhook delivery is unreliable. It never contacts the platform.
func (u *ConnectionUseCase) CreateManual(ctx context.Context, connID types.ConnectionID, providerConfigKey types.ProviderConfigKey) error {
	if connID == "" || providerConfigKey == "" {
		return ErrMissingParameters
	}

	conn := &model.Connection{
		ID:                connID,
		ProviderConfigKey: providerConfigKey,
	}
	if err := u.repo.Connection().Upsert(ctx, conn); err != nil {
		return goerr.Wrap(err, "failed to upsert connection", goerr.V("connectionID", connID))
	}

	user, err := u.repo.User().GetDefault(ctx)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			// A connection without a user is still useful bookkeeping
			logging.From(ctx).Warn("manual connection created without user binding",
				"connection_id", connID,
			)
			return nil
		}
		return goerr.Wrap(err, "failed to load user")
	}

	if err := u.repo.User().BindConnection(ctx, user.ID, connID); err != nil {
		return goerr.Wrap(err, "failed to bind user connection",
			goerr.V("userID", user.ID),
			goerr.V("connectionID", connID),
		)
	}

	logging.From(ctx).Info("manual connection created",
		"user_id", user.ID,
		"connection_id", connID,
		"provider_config_key", providerConfigKey,
	)
	return nil
}
