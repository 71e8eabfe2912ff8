package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/relink-lab/contactsync/pkg/domain/types"
	"github.com/relink-lab/contactsync/pkg/usecase"
	"github.com/relink-lab/contactsync/pkg/utils/errutil"
)

// listConnectionsHandler returns the tenant's connections
func listConnectionsHandler(uc *usecase.ConnectionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conns, err := uc.List(r.Context())
		if err != nil {
			if errors.Is(err, usecase.ErrUserNotFound) {
				respondError(w, r, http.StatusBadRequest, "invalid_user")
				return
			}
			_ = errutil.Handle(r.Context(), err, "failed to list connections")
			respondError(w, r, http.StatusInternalServerError, "internal_server_error")
			return
		}

		respondJSON(w, r, http.StatusOK, map[string]any{"connections": conns})
	}
}

// deleteConnectionHandler unlinks the tenant's connection. The integration
// query parameter must name a configured integration; only Slack is
// configured today.
func deleteConnectionHandler(uc *usecase.ConnectionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		integration := r.URL.Query().Get("integration")
		if integration == "" {
			respondError(w, r, http.StatusBadRequest, "invalid_query")
			return
		}

		err := uc.Delete(r.Context(), types.ProviderConfigKey(integration))
		switch {
		case err == nil:
			respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
		case errors.Is(err, usecase.ErrUnknownIntegration):
			respondError(w, r, http.StatusBadRequest, "invalid_query")
		case errors.Is(err, usecase.ErrUserNotFound), errors.Is(err, usecase.ErrNotConnected):
			respondError(w, r, http.StatusBadRequest, "invalid_user")
		default:
			_ = errutil.Handle(r.Context(), err, "failed to delete connection")
			respondError(w, r, http.StatusInternalServerError, "internal_server_error")
		}
	}
}

// manualConnectionRequest is the body of the manual connection bypass route
type manualConnectionRequest struct {
	ConnectionID      string `json:"connectionId"`
	ProviderConfigKey string `json:"providerConfigKey"`
}

// createManualConnectionHandler records a connection without a webhook
// round-trip
func createManualConnectionHandler(uc *usecase.ConnectionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req manualConnectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "missing_parameters")
			return
		}

		err := uc.CreateManual(r.Context(),
			types.ConnectionID(req.ConnectionID),
			types.ProviderConfigKey(req.ProviderConfigKey),
		)
		switch {
		case err == nil:
			respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
		case errors.Is(err, usecase.ErrMissingParameters):
			respondError(w, r, http.StatusBadRequest, "missing_parameters")
		default:
			_ = errutil.Handle(r.Context(), err, "failed to create manual connection")
			respondError(w, r, http.StatusInternalServerError, "internal_server_error")
		}
	}
}
