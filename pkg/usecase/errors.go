package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrNotConnected       = errors.New("user has no connection")
	ErrUnknownIntegration = errors.New("unknown integration")
	ErrMissingParameters  = errors.New("missing parameters")
)
