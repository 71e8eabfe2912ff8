package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/domain/types"
)

// Integration describes one integration configured on the remote platform
type Integration struct {
	ProviderConfigKey types.ProviderConfigKey
	Name              string
	SyncModel         string
}

// Validate checks required fields of the Integration
func (i *Integration) Validate() error {
	if err := i.ProviderConfigKey.Validate(); err != nil {
		return goerr.Wrap(err, "invalid integration")
	}
	if i.SyncModel == "" {
		return goerr.New("integration sync model is required", goerr.V("key", i.ProviderConfigKey))
	}
	return nil
}

// IntegrationCatalog is the set of integrations this backend accepts
// webhooks for. Events naming an unknown provider config key are skipped.
type IntegrationCatalog struct {
	integrations map[types.ProviderConfigKey]*Integration
}

// NewIntegrationCatalog builds a catalog from a list of integrations
func NewIntegrationCatalog(integrations []Integration) (*IntegrationCatalog, error) {
	catalog := &IntegrationCatalog{
		integrations: make(map[types.ProviderConfigKey]*Integration, len(integrations)),
	}
	for i := range integrations {
		integ := integrations[i]
		if err := integ.Validate(); err != nil {
			return nil, err
		}
		if _, ok := catalog.integrations[integ.ProviderConfigKey]; ok {
			return nil, goerr.New("duplicate provider config key", goerr.V("key", integ.ProviderConfigKey))
		}
		catalog.integrations[integ.ProviderConfigKey] = &integ
	}
	return catalog, nil
}

// DefaultIntegrationCatalog covers the single Slack integration of the demo
func DefaultIntegrationCatalog() *IntegrationCatalog {
	catalog, _ := NewIntegrationCatalog([]Integration{
		{ProviderConfigKey: types.ProviderSlack, Name: "Slack", SyncModel: "SlackUser"},
	})
	return catalog
}

// Lookup returns the integration for a provider config key
func (c *IntegrationCatalog) Lookup(key types.ProviderConfigKey) (*Integration, bool) {
	integ, ok := c.integrations[key]
	return integ, ok
}

// Known reports whether the provider config key is configured
func (c *IntegrationCatalog) Known(key types.ProviderConfigKey) bool {
	_, ok := c.integrations[key]
	return ok
}
