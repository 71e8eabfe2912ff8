package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/usecase"
	"github.com/relink-lab/contactsync/pkg/utils/errutil"
)

// contactResponse is the public shape of a mirrored contact
type contactResponse struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Avatar      string `json:"avatar"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	IsAdmin     bool   `json:"isAdmin"`
	TeamID      string `json:"teamId,omitempty"`
	UpdatedAt   string `json:"updatedAt"`
}

func toContactResponse(contact *model.Contact) contactResponse {
	return contactResponse{
		ID:          contact.ID.String(),
		FullName:    contact.FullName,
		Avatar:      contact.Avatar,
		Email:       contact.Email,
		DisplayName: contact.DisplayName,
		Timezone:    contact.Timezone,
		IsAdmin:     contact.IsAdmin,
		TeamID:      contact.TeamID,
		UpdatedAt:   contact.UpdatedAt.Format(time.RFC3339),
	}
}

// listContactsHandler serves the local contact mirror to the front-end
// poller
func listContactsHandler(uc *usecase.ContactUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contacts, err := uc.List(r.Context())
		if err != nil {
			if errors.Is(err, usecase.ErrUserNotFound) {
				respondError(w, r, http.StatusBadRequest, "invalid_user")
				return
			}
			_ = errutil.Handle(r.Context(), err, "failed to list contacts")
			respondError(w, r, http.StatusInternalServerError, "internal_server_error")
			return
		}

		resp := make([]contactResponse, len(contacts))
		for i, contact := range contacts {
			resp[i] = toContactResponse(contact)
		}
		respondJSON(w, r, http.StatusOK, map[string]any{"contacts": resp})
	}
}
