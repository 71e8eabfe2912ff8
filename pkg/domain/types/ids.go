package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// UserID represents a unique identifier for a local user
type UserID string

// Validate checks if the UserID is valid
func (u UserID) Validate() error {
	if u == "" {
		return goerr.New("user ID cannot be empty")
	}
	return nil
}

// String returns the string representation of UserID
func (u UserID) String() string {
	return string(u)
}

// ConnectionID represents the identifier of a remote integration connection.
// It matches the connection ID assigned by the integration platform.
type ConnectionID string

// Validate checks if the ConnectionID is valid
func (c ConnectionID) Validate() error {
	if c == "" {
		return goerr.New("connection ID cannot be empty")
	}
	return nil
}

// String returns the string representation of ConnectionID
func (c ConnectionID) String() string {
	return string(c)
}

// ContactID represents the identifier of a mirrored contact record.
// It matches the record ID on the remote platform (e.g. a Slack user ID).
type ContactID string

// Validate checks if the ContactID is valid
func (c ContactID) Validate() error {
	if c == "" {
		return goerr.New("contact ID cannot be empty")
	}
	return nil
}

// String returns the string representation of ContactID
func (c ContactID) String() string {
	return string(c)
}
