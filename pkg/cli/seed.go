package cli

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/cli/config"
	"github.com/relink-lab/contactsync/pkg/domain/interfaces"
	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
	"github.com/relink-lab/contactsync/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// cmdSeed bootstraps the single tenant user. The connection flow binds the
// remote connection to this user; without it every webhook is a no-op.
func cmdSeed() *cli.Command {
	var email string
	var displayName string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "email",
			Usage:       "Email address of the seeded user",
			Value:       "demo@example.com",
			Sources:     cli.EnvVars("CONTACTSYNC_SEED_EMAIL"),
			Destination: &email,
		},
		&cli.StringFlag{
			Name:        "display-name",
			Usage:       "Display name of the seeded user",
			Value:       "Demo User",
			Sources:     cli.EnvVars("CONTACTSYNC_SEED_DISPLAY_NAME"),
			Destination: &displayName,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Create the tenant user if none exists",
		Flags: flags,
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

			existing, err := repo.User().GetDefault(ctx)
			if err == nil {
				logging.Default().Info("User already seeded", "user_id", existing.ID)
				return nil
			}
			if !errors.Is(err, interfaces.ErrNotFound) {
				return goerr.Wrap(err, "failed to check existing user")
			}

			now := time.Now()
			user := &model.User{
				ID:          types.UserID(uuid.NewString()),
				Email:       email,
				DisplayName: displayName,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := repo.User().Create(ctx, user); err != nil {
				return goerr.Wrap(err, "failed to create user")
			}

			logging.Default().Info("User seeded", "user_id", user.ID, "email", email)
			return nil
		},
	}
}
