package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/relink-lab/contactsync/pkg/cli/config"
	httpctrl "github.com/relink-lab/contactsync/pkg/controller/http"
	"github.com/relink-lab/contactsync/pkg/service/worker"
	"github.com/relink-lab/contactsync/pkg/usecase"
	"github.com/relink-lab/contactsync/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var reconcileInterval time.Duration
	var repoCfg config.Repository
	var nangoCfg config.Nango
	var sentryCfg config.Sentry
	var catalogCfg config.Catalog

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("CONTACTSYNC_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "reconcile-interval",
			Usage:       "Interval of the background sync reconcile pass (0 disables it)",
			Value:       15 * time.Minute,
			Sources:     cli.EnvVars("CONTACTSYNC_RECONCILE_INTERVAL"),
			Destination: &reconcileInterval,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, nangoCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, catalogCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			nangoSvc, err := nangoCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize platform client")
			}

			sentryCloser, err := sentryCfg.Configure(version)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize error reporting")
			}
			defer sentryCloser()

			catalog, err := catalogCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load integration catalog")
			}

			uc := usecase.New(repo, nangoSvc, usecase.WithCatalog(catalog))

			webhookHandler := httpctrl.NewWebhookHandler(uc.Webhook, nangoSvc)
			handler := httpctrl.New(uc, webhookHandler)

			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			var reconciler *worker.ReconcileWorker
			if reconcileInterval > 0 {
				reconciler = worker.NewReconcileWorker(repo, uc.Webhook, catalog, reconcileInterval)
				if err := reconciler.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start reconcile worker")
				}
			}

			sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, egCtx := errgroup.WithContext(sigCtx)

			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})

			eg.Go(func() error {
				<-egCtx.Done()
				logging.Default().Info("Shutting down")

				if reconciler != nil {
					reconciler.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
