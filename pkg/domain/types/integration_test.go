package types_test

import (
	"testing"

	"github.com/relink-lab/contactsync/pkg/domain/types"
)

func TestProviderConfigKeyValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     types.ProviderConfigKey
		wantErr bool
	}{
		{name: "slack", key: "slack"},
		{name: "hyphenated", key: "slack-sandbox"},
		{name: "alphanumeric", key: "slack2"},
		{name: "empty", key: "", wantErr: true},
		{name: "uppercase", key: "Slack", wantErr: true},
		{name: "spaces", key: "slack prod", wantErr: true},
		{name: "leading hyphen", key: "-slack", wantErr: true},
		{name: "trailing hyphen", key: "slack-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("expected error for %q", tt.key)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error for %q, got %v", tt.key, err)
			}
		})
	}
}

func TestIDValidate(t *testing.T) {
	t.Parallel()

	if err := types.UserID("user-1").Validate(); err != nil {
		t.Errorf("expected valid user ID, got %v", err)
	}
	if err := types.UserID("").Validate(); err == nil {
		t.Error("expected error for empty user ID")
	}
	if err := types.ConnectionID("").Validate(); err == nil {
		t.Error("expected error for empty connection ID")
	}
	if err := types.ContactID("").Validate(); err == nil {
		t.Error("expected error for empty contact ID")
	}
}
