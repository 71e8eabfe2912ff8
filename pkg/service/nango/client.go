package nango

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
	"github.com/relink-lab/contactsync/pkg/utils/safe"
)

const (
	// DefaultBaseURL is the Nango cloud API endpoint
	DefaultBaseURL = "https://api.nango.dev"
	// DefaultTimeout bounds every platform API call
	DefaultTimeout = 20 * time.Second
)

// client implements Service against the Nango REST API
type client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithBaseURL overrides the platform API endpoint (self-hosted Nango)
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates a new Nango service with the provided secret key
func New(secretKey string, opts ...Option) (Service, error) {
	if secretKey == "" {
		return nil, goerr.New("Nango secret key is required")
	}

	c := &client{
		baseURL:    DefaultBaseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// VerifyWebhookSignature reports whether a webhook signature matches the raw
// payload. The platform signs webhooks with the hex SHA-256 digest of the
// secret key concatenated with the body.
func (c *client) VerifyWebhookSignature(signature string, payload []byte) bool {
	sum := sha256.Sum256(append([]byte(c.secretKey), payload...))
	expected := hex.EncodeToString(sum[:])
	return hmac.Equal([]byte(expected), []byte(signature))
}

// listRecordsResponse is the wire shape of the records endpoint
type listRecordsResponse struct {
	Records    []model.SyncRecord `json:"records"`
	NextCursor string             `json:"next_cursor"`
}

// ListRecords retrieves one page of records changed at or after the cursor
func (c *client) ListRecords(ctx context.Context, input ListRecordsInput) (*RecordsPage, error) {
	q := url.Values{}
	q.Set("model", input.Model)
	if input.ModifiedAfter != "" {
		q.Set("modified_after", input.ModifiedAfter)
	}
	if input.Cursor != "" {
		q.Set("cursor", input.Cursor)
	}
	if input.Limit > 0 {
		q.Set("limit", strconv.Itoa(input.Limit))
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/records?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Connection-Id", input.ConnectionID.String())
	req.Header.Set("Provider-Config-Key", input.ProviderConfigKey.String())

	var resp listRecordsResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to list records",
			goerr.V("connectionID", input.ConnectionID),
			goerr.V("model", input.Model),
		)
	}

	return &RecordsPage{Records: resp.Records, NextCursor: resp.NextCursor}, nil
}

// DeleteConnection unlinks a connection on the platform
func (c *client) DeleteConnection(ctx context.Context, providerConfigKey types.ProviderConfigKey, connID types.ConnectionID) error {
	q := url.Values{}
	q.Set("provider_config_key", providerConfigKey.String())

	req, err := c.newRequest(ctx, http.MethodDelete, "/connection/"+url.PathEscape(connID.String())+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	if err := c.do(ctx, req, nil); err != nil {
		return goerr.Wrap(err, "failed to delete connection", goerr.V("connectionID", connID))
	}
	return nil
}

// listConnectionsResponse is the wire shape of the connections endpoint
type listConnectionsResponse struct {
	Connections []RemoteConnection `json:"connections"`
}

// ListConnections lists the platform's connections for a connection ID
func (c *client) ListConnections(ctx context.Context, connID types.ConnectionID) ([]RemoteConnection, error) {
	q := url.Values{}
	q.Set("connectionId", connID.String())

	req, err := c.newRequest(ctx, http.MethodGet, "/connection?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp listConnectionsResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to list connections", goerr.V("connectionID", connID))
	}
	return resp.Connections, nil
}

func (c *client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build platform request", goerr.V("path", path))
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *client) do(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "platform request failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return goerr.New("platform returned error status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(data)),
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "failed to decode platform response")
	}
	return nil
}
