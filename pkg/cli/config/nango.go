package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/service/nango"
	"github.com/urfave/cli/v3"
)

// Nango holds CLI flags for the integration platform client
type Nango struct {
	secretKey string
	host      string
}

// Flags returns CLI flags for the platform client
func (n *Nango) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "nango-secret-key",
			Usage:       "Nango secret key (API auth and webhook signatures)",
			Required:    true,
			Sources:     cli.EnvVars("CONTACTSYNC_NANGO_SECRET_KEY", "NANGO_SECRET_KEY"),
			Destination: &n.secretKey,
		},
		&cli.StringFlag{
			Name:        "nango-host",
			Usage:       "Nango API endpoint (for self-hosted deployments)",
			Value:       nango.DefaultBaseURL,
			Sources:     cli.EnvVars("CONTACTSYNC_NANGO_HOST", "NANGO_HOST"),
			Destination: &n.host,
		},
	}
}

// Configure builds the platform service client
func (n *Nango) Configure() (nango.Service, error) {
	if n.secretKey == "" {
		return nil, ErrMissingSecret
	}

	svc, err := nango.New(n.secretKey, nango.WithBaseURL(n.host))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize platform client")
	}
	return svc, nil
}
