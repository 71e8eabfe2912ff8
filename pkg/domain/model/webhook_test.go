package model_test

import (
	"testing"

	"github.com/relink-lab/contactsync/pkg/domain/model"
)

func TestParseWebhook(t *testing.T) {
	t.Parallel()

	t.Run("auth creation webhook", func(t *testing.T) {
		body := []byte(`{
			"type": "auth",
			"operation": "creation",
			"success": true,
			"connectionId": "conn-1",
			"providerConfigKey": "slack",
			"endUser": {"endUserId": "eu-1", "email": "ann@example.com"}
		}`)

		hook, err := model.ParseWebhook(body)
		if err != nil {
			t.Fatalf("failed to parse auth webhook: %v", err)
		}

		auth, ok := hook.(*model.AuthWebhook)
		if !ok {
			t.Fatalf("expected *AuthWebhook, got %T", hook)
		}
		if auth.Operation != model.AuthOperationCreation {
			t.Errorf("expected operation=creation, got %s", auth.Operation)
		}
		if !auth.Success {
			t.Error("expected success=true")
		}
		if auth.ConnectionID != "conn-1" {
			t.Errorf("expected connectionId=conn-1, got %s", auth.ConnectionID)
		}
		if auth.ProviderConfigKey != "slack" {
			t.Errorf("expected providerConfigKey=slack, got %s", auth.ProviderConfigKey)
		}
		if auth.EndUser == nil || auth.EndUser.EndUserID != "eu-1" {
			t.Errorf("expected endUser eu-1, got %+v", auth.EndUser)
		}
	})

	t.Run("sync webhook", func(t *testing.T) {
		body := []byte(`{
			"type": "sync",
			"success": true,
			"model": "SlackUser",
			"connectionId": "conn-1",
			"providerConfigKey": "slack",
			"syncName": "users",
			"modifiedAfter": "2025-06-01T00:00:00Z"
		}`)

		hook, err := model.ParseWebhook(body)
		if err != nil {
			t.Fatalf("failed to parse sync webhook: %v", err)
		}

		sync, ok := hook.(*model.SyncWebhook)
		if !ok {
			t.Fatalf("expected *SyncWebhook, got %T", hook)
		}
		if sync.Model != "SlackUser" {
			t.Errorf("expected model=SlackUser, got %s", sync.Model)
		}
		if sync.ModifiedAfter != "2025-06-01T00:00:00Z" {
			t.Errorf("expected modifiedAfter cursor, got %s", sync.ModifiedAfter)
		}
	})

	t.Run("unknown type passes through as UnknownWebhook", func(t *testing.T) {
		body := []byte(`{"type": "forward", "payload": {"whatever": 1}}`)

		hook, err := model.ParseWebhook(body)
		if err != nil {
			t.Fatalf("failed to parse unknown webhook: %v", err)
		}

		unknown, ok := hook.(*model.UnknownWebhook)
		if !ok {
			t.Fatalf("expected *UnknownWebhook, got %T", hook)
		}
		if unknown.WebhookType() != "forward" {
			t.Errorf("expected type=forward, got %s", unknown.WebhookType())
		}
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"not JSON", `not json at all`},
			{"auth without connectionId", `{"type":"auth","operation":"creation","success":true,"providerConfigKey":"slack"}`},
			{"auth without providerConfigKey", `{"type":"auth","operation":"creation","success":true,"connectionId":"conn-1"}`},
			{"auth with invalid provider key", `{"type":"auth","operation":"creation","success":true,"connectionId":"conn-1","providerConfigKey":"Not Valid!"}`},
			{"sync without model", `{"type":"sync","success":true,"connectionId":"conn-1","providerConfigKey":"slack"}`},
			{"sync without connectionId", `{"type":"sync","success":true,"model":"SlackUser","providerConfigKey":"slack"}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := model.ParseWebhook([]byte(tt.body)); err == nil {
					t.Errorf("expected error for %s", tt.name)
				}
			})
		}
	})
}
