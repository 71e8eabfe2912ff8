package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/domain/interfaces"
	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/usecase"
	"github.com/relink-lab/contactsync/pkg/utils/errutil"
	"github.com/relink-lab/contactsync/pkg/utils/logging"
)

// ReconcileWorker periodically replays record syncs for every known
// connection. Webhook handlers swallow failures to avoid redelivery storms;
// this worker heals whatever those swallowed failures lost.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader
//   election
type ReconcileWorker struct {
	repo     interfaces.Repository
	webhook  *usecase.WebhookUseCase
	catalog  *model.IntegrationCatalog
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewReconcileWorker creates a new worker for replaying connection syncs
func NewReconcileWorker(repo interfaces.Repository, webhookUC *usecase.WebhookUseCase, catalog *model.IntegrationCatalog, interval time.Duration) *ReconcileWorker {
	return &ReconcileWorker{
		repo:     repo,
		webhook:  webhookUC,
		catalog:  catalog,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background reconcile loop without blocking server
// startup
func (w *ReconcileWorker) Start(ctx context.Context) error {
	logging.Default().Info("Reconcile worker starting", "interval", w.interval.String())
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ReconcileWorker) Stop() {
	logging.Default().Info("Reconcile worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Reconcile worker stopped")
}

func (w *ReconcileWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.reconcile(ctx); err != nil {
				errutil.Report(ctx, err, "reconcile pass failed (will retry next interval)")
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Reconcile worker context cancelled")
			return
		}
	}
}

// reconcile replays every known connection from an empty cursor, walking
// pagination to the end
func (w *ReconcileWorker) reconcile(ctx context.Context) error {
	conns, err := w.repo.Connection().GetAll(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list connections for reconcile")
	}

	for _, conn := range conns {
		integ, ok := w.catalog.Lookup(conn.ProviderConfigKey)
		if !ok {
			logging.From(ctx).Warn("skipping connection with unconfigured integration",
				"connection_id", conn.ID,
				"provider_config_key", conn.ProviderConfigKey,
			)
			continue
		}

		count, err := w.webhook.Sync(ctx, conn.ID, conn.ProviderConfigKey, integ.SyncModel, "")
		if err != nil {
			return goerr.Wrap(err, "failed to reconcile connection", goerr.V("connectionID", conn.ID))
		}

		logging.From(ctx).Info("connection reconciled",
			"connection_id", conn.ID,
			"records", count,
		)
	}

	return nil
}
