package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/domain/types"
)

// Connection links the local tenant to one integration instance on the
// remote platform. Its ID is the remote platform's connection ID.
type Connection struct {
	ID                types.ConnectionID
	ProviderConfigKey types.ProviderConfigKey
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks required fields of the Connection
func (c *Connection) Validate() error {
	if err := c.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid connection")
	}
	if err := c.ProviderConfigKey.Validate(); err != nil {
		return goerr.Wrap(err, "invalid connection", goerr.V("id", c.ID))
	}
	return nil
}
