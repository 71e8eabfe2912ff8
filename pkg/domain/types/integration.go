package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// ProviderConfigKey names an integration configured on the remote platform
// (e.g. "slack")
type ProviderConfigKey string

var providerKeyPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks if the ProviderConfigKey is valid
func (p ProviderConfigKey) Validate() error {
	if p == "" {
		return goerr.New("provider config key cannot be empty")
	}
	if !providerKeyPattern.MatchString(string(p)) {
		return goerr.New("provider config key must be lowercase alphanumeric with hyphens", goerr.V("key", p))
	}
	return nil
}

// String returns the string representation of ProviderConfigKey
func (p ProviderConfigKey) String() string {
	return string(p)
}

// ProviderSlack is the only integration this backend syncs today
const ProviderSlack ProviderConfigKey = "slack"
