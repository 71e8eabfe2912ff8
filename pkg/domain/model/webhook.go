package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/domain/types"
)

// WebhookType is the tag of an inbound platform webhook
type WebhookType string

const (
	WebhookTypeAuth WebhookType = "auth"
	WebhookTypeSync WebhookType = "sync"
)

// AuthOperation is the lifecycle operation reported by an auth webhook
type AuthOperation string

const (
	AuthOperationCreation AuthOperation = "creation"
)

// Webhook is an inbound event after boundary validation. The concrete type
// is AuthWebhook, SyncWebhook, or UnknownWebhook.
type Webhook interface {
	WebhookType() WebhookType
}

// webhookEnvelope carries only the type tag, used to pick the concrete shape
type webhookEnvelope struct {
	Type WebhookType `json:"type"`
}

// AuthWebhook reports a connection lifecycle event
type AuthWebhook struct {
	Type              WebhookType             `json:"type"`
	Operation         AuthOperation           `json:"operation"`
	Success           bool                    `json:"success"`
	ConnectionID      types.ConnectionID      `json:"connectionId"`
	ProviderConfigKey types.ProviderConfigKey `json:"providerConfigKey"`
	EndUser           *WebhookEndUser         `json:"endUser,omitempty"`
}

// WebhookEndUser is optional end-user metadata attached to an auth webhook
type WebhookEndUser struct {
	EndUserID string `json:"endUserId"`
	Email     string `json:"email,omitempty"`
}

func (w *AuthWebhook) WebhookType() WebhookType { return WebhookTypeAuth }

// Validate checks the fields required to act on an auth webhook
func (w *AuthWebhook) Validate() error {
	if err := w.ConnectionID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid auth webhook")
	}
	if err := w.ProviderConfigKey.Validate(); err != nil {
		return goerr.Wrap(err, "invalid auth webhook", goerr.V("connectionID", w.ConnectionID))
	}
	return nil
}

// SyncWebhook reports that a sync run finished. It carries a cursor, not the
// changed records themselves.
type SyncWebhook struct {
	Type              WebhookType             `json:"type"`
	Success           bool                    `json:"success"`
	Model             string                  `json:"model"`
	ConnectionID      types.ConnectionID      `json:"connectionId"`
	ProviderConfigKey types.ProviderConfigKey `json:"providerConfigKey"`
	SyncName          string                  `json:"syncName,omitempty"`
	ModifiedAfter     string                  `json:"modifiedAfter"`
}

func (w *SyncWebhook) WebhookType() WebhookType { return WebhookTypeSync }

// Validate checks the fields required to act on a sync webhook
func (w *SyncWebhook) Validate() error {
	if err := w.ConnectionID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid sync webhook")
	}
	if err := w.ProviderConfigKey.Validate(); err != nil {
		return goerr.Wrap(err, "invalid sync webhook", goerr.V("connectionID", w.ConnectionID))
	}
	if w.Model == "" {
		return goerr.New("invalid sync webhook: model is required", goerr.V("connectionID", w.ConnectionID))
	}
	return nil
}

// UnknownWebhook is an event whose type this backend does not handle
type UnknownWebhook struct {
	Type WebhookType
}

func (w *UnknownWebhook) WebhookType() WebhookType { return w.Type }

// ParseWebhook decodes a raw webhook body into a tagged event. Payloads with
// a recognized type but missing required fields are rejected here so that
// handlers never see a half-formed event.
func ParseWebhook(data []byte) (Webhook, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, goerr.Wrap(err, "failed to decode webhook envelope")
	}

	switch env.Type {
	case WebhookTypeAuth:
		var hook AuthWebhook
		if err := json.Unmarshal(data, &hook); err != nil {
			return nil, goerr.Wrap(err, "failed to decode auth webhook")
		}
		if err := hook.Validate(); err != nil {
			return nil, err
		}
		return &hook, nil

	case WebhookTypeSync:
		var hook SyncWebhook
		if err := json.Unmarshal(data, &hook); err != nil {
			return nil, goerr.Wrap(err, "failed to decode sync webhook")
		}
		if err := hook.Validate(); err != nil {
			return nil, err
		}
		return &hook, nil

	default:
		return &UnknownWebhook{Type: env.Type}, nil
	}
}
