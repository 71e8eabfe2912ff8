package nango

import (
	"context"

	"github.com/relink-lab/contactsync/pkg/domain/types"
)

// Mock is a test double for Service. Unset function fields fall back to
// permissive defaults.
type Mock struct {
	VerifyWebhookSignatureFunc func(signature string, payload []byte) bool
	ListRecordsFunc            func(ctx context.Context, input ListRecordsInput) (*RecordsPage, error)
	DeleteConnectionFunc       func(ctx context.Context, providerConfigKey types.ProviderConfigKey, connID types.ConnectionID) error
	ListConnectionsFunc        func(ctx context.Context, connID types.ConnectionID) ([]RemoteConnection, error)

	ListRecordsCalls      []ListRecordsInput
	DeleteConnectionCalls []types.ConnectionID
}

var _ Service = &Mock{}

func (m *Mock) VerifyWebhookSignature(signature string, payload []byte) bool {
	if m.VerifyWebhookSignatureFunc != nil {
		return m.VerifyWebhookSignatureFunc(signature, payload)
	}
	return true
}

func (m *Mock) ListRecords(ctx context.Context, input ListRecordsInput) (*RecordsPage, error) {
	m.ListRecordsCalls = append(m.ListRecordsCalls, input)
	if m.ListRecordsFunc != nil {
		return m.ListRecordsFunc(ctx, input)
	}
	return &RecordsPage{}, nil
}

func (m *Mock) DeleteConnection(ctx context.Context, providerConfigKey types.ProviderConfigKey, connID types.ConnectionID) error {
	m.DeleteConnectionCalls = append(m.DeleteConnectionCalls, connID)
	if m.DeleteConnectionFunc != nil {
		return m.DeleteConnectionFunc(ctx, providerConfigKey, connID)
	}
	return nil
}

func (m *Mock) ListConnections(ctx context.Context, connID types.ConnectionID) ([]RemoteConnection, error) {
	if m.ListConnectionsFunc != nil {
		return m.ListConnectionsFunc(ctx, connID)
	}
	return nil, nil
}
