package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Catalog holds CLI flags for the integration catalog
type Catalog struct {
	path string
}

// catalogFile is the TOML shape of the integration catalog
type catalogFile struct {
	Integrations []catalogIntegration `toml:"integration"`
}

type catalogIntegration struct {
	Key       string `toml:"key"`
	Name      string `toml:"name"`
	SyncModel string `toml:"sync_model"`
}

// Flags returns CLI flags for the integration catalog
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "integrations-config",
			Usage:       "Path to the integrations TOML file (defaults to the built-in Slack catalog)",
			Sources:     cli.EnvVars("CONTACTSYNC_INTEGRATIONS_CONFIG"),
			Destination: &c.path,
		},
	}
}

// Configure loads the integration catalog from the TOML file, falling back
// to the built-in Slack-only catalog when no file is given
func (c *Catalog) Configure() (*model.IntegrationCatalog, error) {
	if c.path == "" {
		return model.DefaultIntegrationCatalog(), nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read integrations config", goerr.V("path", c.path))
	}

	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse integrations config", goerr.V("path", c.path))
	}

	integrations := make([]model.Integration, len(file.Integrations))
	for i, integ := range file.Integrations {
		integrations[i] = model.Integration{
			ProviderConfigKey: types.ProviderConfigKey(integ.Key),
			Name:              integ.Name,
			SyncModel:         integ.SyncModel,
		}
	}

	catalog, err := model.NewIntegrationCatalog(integrations)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid integrations config", goerr.V("path", c.path))
	}
	return catalog, nil
}
