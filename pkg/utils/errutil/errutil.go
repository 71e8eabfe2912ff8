package errutil

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/utils/logging"
)

// Handle logs the error with structured context and returns it unchanged
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	return err
}

// Report logs the error and emits it to the error reporter. Webhook handlers
// swallow failures to avoid redelivery storms; this is the signal that keeps
// those failures visible to operators.
func Report(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}

	_ = Handle(ctx, err, msg)

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.CaptureException(goerr.Wrap(err, msg))
	}
}

// HandleHTTP logs the error and writes an appropriate HTTP error response
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	http.Error(w, err.Error(), statusCode)
}
