package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/domain/interfaces"
	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
	"github.com/relink-lab/contactsync/pkg/service/nango"
	"github.com/relink-lab/contactsync/pkg/utils/logging"
)

// syncPageSize caps one records page from the platform
const syncPageSize = 1000

// WebhookUseCase reacts to platform webhooks: connection lifecycle events
// and sync completions
type WebhookUseCase struct {
	repo    interfaces.Repository
	nango   nango.Service
	catalog *model.IntegrationCatalog
}

func NewWebhookUseCase(repo interfaces.Repository, nangoSvc nango.Service, catalog *model.IntegrationCatalog) *WebhookUseCase {
	return &WebhookUseCase{
		repo:    repo,
		nango:   nangoSvc,
		catalog: catalog,
	}
}

// HandleEvent routes a validated webhook to its handler. Unrecognized event
// types are logged and ignored.
func (u *WebhookUseCase) HandleEvent(ctx context.Context, hook model.Webhook) error {
	switch h := hook.(type) {
	case *model.AuthWebhook:
		return u.handleAuthEvent(ctx, h)
	case *model.SyncWebhook:
		return u.handleSyncEvent(ctx, h)
	default:
		logging.From(ctx).Warn("unsupported webhook type", "type", hook.WebhookType())
		return nil
	}
}

// handleAuthEvent binds the tenant user to a newly created connection and
// records the connection locally
func (u *WebhookUseCase) handleAuthEvent(ctx context.Context, hook *model.AuthWebhook) error {
	logger := logging.From(ctx)

	if !hook.Success {
		logger.Error("connection auth failed on platform",
			"connection_id", hook.ConnectionID,
			"provider_config_key", hook.ProviderConfigKey,
		)
		return nil
	}

	if hook.Operation != model.AuthOperationCreation {
		logger.Info("ignoring non-creation auth webhook",
			"operation", hook.Operation,
			"connection_id", hook.ConnectionID,
		)
		return nil
	}

	if !u.catalog.Known(hook.ProviderConfigKey) {
		logger.Warn("auth webhook for unconfigured integration",
			"provider_config_key", hook.ProviderConfigKey,
		)
		return nil
	}

	user, err := u.repo.User().GetDefault(ctx)
	if err != nil {
		return goerr.Wrap(err, "no user to bind connection to",
			goerr.V("connectionID", hook.ConnectionID),
		)
	}

	if err := u.repo.User().BindConnection(ctx, user.ID, hook.ConnectionID); err != nil {
		return goerr.Wrap(err, "failed to bind user connection",
			goerr.V("userID", user.ID),
			goerr.V("connectionID", hook.ConnectionID),
		)
	}

	// Upsert rather than create: a re-delivered creation webhook for the
	// same connection ID must not fail or duplicate
	conn := &model.Connection{
		ID:                hook.ConnectionID,
		ProviderConfigKey: hook.ProviderConfigKey,
	}
	if err := u.repo.Connection().Upsert(ctx, conn); err != nil {
		return goerr.Wrap(err, "failed to save connection",
			goerr.V("connectionID", hook.ConnectionID),
		)
	}

	logger.Info("connection created",
		"user_id", user.ID,
		"connection_id", hook.ConnectionID,
		"provider_config_key", hook.ProviderConfigKey,
	)
	return nil
}

// handleSyncEvent pulls the records changed by a finished sync and
// reconciles them into the local contact mirror
func (u *WebhookUseCase) handleSyncEvent(ctx context.Context, hook *model.SyncWebhook) error {
	logger := logging.From(ctx)

	if !hook.Success {
		logger.Error("sync failed on platform",
			"connection_id", hook.ConnectionID,
			"model", hook.Model,
		)
		return nil
	}

	if !u.catalog.Known(hook.ProviderConfigKey) {
		logger.Warn("sync webhook for unconfigured integration",
			"provider_config_key", hook.ProviderConfigKey,
		)
		return nil
	}

	count, err := u.Sync(ctx, hook.ConnectionID, hook.ProviderConfigKey, hook.Model, hook.ModifiedAfter)
	if err != nil {
		return err
	}

	logger.Info("sync results processed",
		"connection_id", hook.ConnectionID,
		"model", hook.Model,
		"records", count,
	)
	return nil
}

// Sync replays all records changed at or after the cursor into the local
// store, following pagination until the platform reports no further pages.
// It returns the number of records reconciled. The reconcile worker also
// calls this with an empty cursor to replay a connection from scratch.
func (u *WebhookUseCase) Sync(ctx context.Context, connID types.ConnectionID, providerConfigKey types.ProviderConfigKey, syncModel, modifiedAfter string) (int, error) {
	var cursor string
	var count int

	for {
		page, err := u.nango.ListRecords(ctx, nango.ListRecordsInput{
			ConnectionID:      connID,
			ProviderConfigKey: providerConfigKey,
			Model:             syncModel,
			ModifiedAfter:     modifiedAfter,
			Cursor:            cursor,
			Limit:             syncPageSize,
		})
		if err != nil {
			return count, goerr.Wrap(err, "failed to list changed records",
				goerr.V("connectionID", connID),
				goerr.V("cursor", cursor),
			)
		}

		for i := range page.Records {
			if err := u.reconcileRecord(ctx, connID, providerConfigKey, &page.Records[i]); err != nil {
				return count, err
			}
			count++
		}

		if page.NextCursor == "" {
			return count, nil
		}
		cursor = page.NextCursor
	}
}

// reconcileRecord applies one changed record to the local mirror: a
// soft-delete when the platform reports a deletion, otherwise an idempotent
// upsert of the derived display fields
func (u *WebhookUseCase) reconcileRecord(ctx context.Context, connID types.ConnectionID, providerConfigKey types.ProviderConfigKey, record *model.SyncRecord) error {
	if record.Deleted() {
		deletedAt := *record.Metadata.DeletedAt
		if deletedAt.IsZero() {
			deletedAt = time.Now()
		}
		if err := u.repo.Contact().SoftDelete(ctx, record.ID, deletedAt); err != nil {
			return goerr.Wrap(err, "failed to soft-delete contact", goerr.V("contactID", record.ID))
		}
		return nil
	}

	contact := &model.Contact{
		ID:            record.ID,
		FullName:      record.FullName(),
		Avatar:        record.Avatar(),
		Email:         record.Profile.Email,
		DisplayName:   record.Profile.DisplayName,
		Timezone:      record.TZ,
		IsAdmin:       record.IsAdmin,
		TeamID:        record.TeamID,
		IntegrationID: providerConfigKey,
		ConnectionID:  connID,
	}
	if err := u.repo.Contact().Upsert(ctx, contact); err != nil {
		return goerr.Wrap(err, "failed to upsert contact", goerr.V("contactID", record.ID))
	}
	return nil
}
