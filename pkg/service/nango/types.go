package nango

import (
	"context"

	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
)

// ListRecordsInput filters a records listing on the platform
type ListRecordsInput struct {
	ConnectionID      types.ConnectionID
	ProviderConfigKey types.ProviderConfigKey
	Model             string
	ModifiedAfter     string
	Cursor            string
	Limit             int
}

// RecordsPage is one page of changed records. NextCursor is empty on the
// last page.
type RecordsPage struct {
	Records    []model.SyncRecord
	NextCursor string
}

// RemoteConnection is the public shape of a connection as reported by the
// platform
type RemoteConnection struct {
	ID                string `json:"id"`
	ConnectionID      string `json:"connection_id"`
	ProviderConfigKey string `json:"provider_config_key"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
	CredentialsStatus string `json:"credentials_status"`
}

// Service wraps the Nango integration platform API. Connection lifecycle,
// OAuth and record syncing all live on the platform; this backend only
// verifies webhooks, reads sync results, and unlinks connections.
type Service interface {
	// VerifyWebhookSignature reports whether a webhook signature matches the
	// raw payload
	VerifyWebhookSignature(signature string, payload []byte) bool

	// ListRecords retrieves one page of records changed at or after the
	// cursor
	ListRecords(ctx context.Context, input ListRecordsInput) (*RecordsPage, error)

	// DeleteConnection unlinks a connection on the platform
	DeleteConnection(ctx context.Context, providerConfigKey types.ProviderConfigKey, connID types.ConnectionID) error

	// ListConnections lists the platform's connections for a connection ID
	ListConnections(ctx context.Context, connID types.ConnectionID) ([]RemoteConnection, error)
}
