package http_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpctrl "github.com/relink-lab/contactsync/pkg/controller/http"
	"github.com/relink-lab/contactsync/pkg/domain/interfaces"
	"github.com/relink-lab/contactsync/pkg/domain/model"
	"github.com/relink-lab/contactsync/pkg/domain/types"
	"github.com/relink-lab/contactsync/pkg/repository/memory"
	"github.com/relink-lab/contactsync/pkg/service/nango"
	"github.com/relink-lab/contactsync/pkg/usecase"
)

const testSecretKey = "test-secret-key"

// computeNangoSignature computes the platform webhook signature: the hex
// SHA-256 digest of the secret key concatenated with the raw body
func computeNangoSignature(secretKey string, body []byte) string {
	sum := sha256.Sum256(append([]byte(secretKey), body...))
	return hex.EncodeToString(sum[:])
}

// newTestServer wires a server over the in-memory store and the given
// platform mock, with the real signature scheme on the mock
func newTestServer(t *testing.T, repo interfaces.Repository, mock *nango.Mock) *httpctrl.Server {
	t.Helper()

	if mock.VerifyWebhookSignatureFunc == nil {
		mock.VerifyWebhookSignatureFunc = func(signature string, payload []byte) bool {
			return signature == computeNangoSignature(testSecretKey, payload)
		}
	}

	uc := usecase.New(repo, mock)
	handler := httpctrl.NewWebhookHandler(uc.Webhook, mock)
	return httpctrl.New(uc, handler)
}

func seedUser(t *testing.T, repo interfaces.Repository) *model.User {
	t.Helper()

	user := &model.User{
		ID:          "user-1",
		Email:       "ann@example.com",
		DisplayName: "Ann",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := repo.User().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestWebhookEndpoint(t *testing.T) {
	authCreationBody := []byte(`{
		"type": "auth",
		"operation": "creation",
		"success": true,
		"connectionId": "conn-1",
		"providerConfigKey": "slack"
	}`)

	t.Run("invalid signature is rejected without side effects", func(t *testing.T) {
		repo := memory.New()
		seedUser(t, repo)
		srv := newTestServer(t, repo, &nango.Mock{})

		req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewReader(authCreationBody))
		req.Header.Set("X-Nango-Signature", "deadbeef")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["error"] != "invalid_signature" {
			t.Errorf("expected error=invalid_signature, got %v", body)
		}

		user, err := repo.User().GetDefault(context.Background())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if user.Connected() {
			t.Error("expected no connection binding after rejected webhook")
		}
		conns, err := repo.Connection().GetAll(context.Background())
		if err != nil {
			t.Fatalf("failed to list connections: %v", err)
		}
		if len(conns) != 0 {
			t.Errorf("expected no connections, got %d", len(conns))
		}
	})

	t.Run("signed auth creation webhook is processed and acked", func(t *testing.T) {
		repo := memory.New()
		seedUser(t, repo)
		srv := newTestServer(t, repo, &nango.Mock{})

		req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewReader(authCreationBody))
		req.Header.Set("X-Nango-Signature", computeNangoSignature(testSecretKey, authCreationBody))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["ack"] != true {
			t.Errorf("expected ack=true, got %v", body)
		}

		user, err := repo.User().GetDefault(context.Background())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if user.ConnectionID != "conn-1" {
			t.Errorf("expected connection binding conn-1, got %s", user.ConnectionID)
		}
	})

	t.Run("unsigned delivery skips verification", func(t *testing.T) {
		repo := memory.New()
		seedUser(t, repo)
		srv := newTestServer(t, repo, &nango.Mock{
			VerifyWebhookSignatureFunc: func(signature string, payload []byte) bool {
				t.Error("verification must not run without a signature header")
				return false
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewReader(authCreationBody))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("malformed payload is acked", func(t *testing.T) {
		repo := memory.New()
		seedUser(t, repo)
		srv := newTestServer(t, repo, &nango.Mock{})

		body := []byte(`{"type":"auth","operation":"creation","success":true}`)
		req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewReader(body))
		req.Header.Set("X-Nango-Signature", computeNangoSignature(testSecretKey, body))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200 for malformed payload, got %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["ack"] != true {
			t.Errorf("expected ack=true, got %v", body)
		}
	})

	t.Run("signed sync webhook mirrors the changed records", func(t *testing.T) {
		repo := memory.New()
		user := seedUser(t, repo)
		if err := repo.User().BindConnection(context.Background(), user.ID, "conn-1"); err != nil {
			t.Fatalf("failed to bind connection: %v", err)
		}

		mock := &nango.Mock{
			ListRecordsFunc: func(ctx context.Context, input nango.ListRecordsInput) (*nango.RecordsPage, error) {
				return &nango.RecordsPage{Records: []model.SyncRecord{
					{
						ID:      "U1",
						Name:    "Ann",
						IsAdmin: true,
						Profile: model.SyncRecordProfile{DisplayName: "Ann A", Email: "ann@example.com"},
					},
				}}, nil
			},
		}
		srv := newTestServer(t, repo, mock)

		body := []byte(`{
			"type": "sync",
			"success": true,
			"model": "SlackUser",
			"connectionId": "conn-1",
			"providerConfigKey": "slack",
			"modifiedAfter": "2025-06-01T00:00:00Z"
		}`)
		req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewReader(body))
		req.Header.Set("X-Nango-Signature", computeNangoSignature(testSecretKey, body))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}

		contact, err := repo.Contact().GetByID(context.Background(), "U1")
		if err != nil {
			t.Fatalf("expected mirrored contact: %v", err)
		}
		if contact.FullName != "Ann A" {
			t.Errorf("expected fullName='Ann A', got %s", contact.FullName)
		}
		if contact.Avatar != model.DefaultAvatarURL {
			t.Errorf("expected placeholder avatar, got %s", contact.Avatar)
		}
	})

	t.Run("unknown event type is acked", func(t *testing.T) {
		repo := memory.New()
		seedUser(t, repo)
		srv := newTestServer(t, repo, &nango.Mock{})

		body := []byte(`{"type":"forward","payload":{}}`)
		req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewReader(body))
		req.Header.Set("X-Nango-Signature", computeNangoSignature(testSecretKey, body))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})
}

func TestConnectionEndpoints(t *testing.T) {
	t.Run("GET without a seeded user returns invalid_user", func(t *testing.T) {
		repo := memory.New()
		srv := newTestServer(t, repo, &nango.Mock{})

		req := httptest.NewRequest(http.MethodGet, "/api/connections", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["error"] != "invalid_user" {
			t.Errorf("expected error=invalid_user, got %v", body)
		}
	})

	t.Run("GET returns the platform connections", func(t *testing.T) {
		repo := memory.New()
		user := seedUser(t, repo)
		if err := repo.User().BindConnection(context.Background(), user.ID, "conn-1"); err != nil {
			t.Fatalf("failed to bind connection: %v", err)
		}

		mock := &nango.Mock{
			ListConnectionsFunc: func(ctx context.Context, connID types.ConnectionID) ([]nango.RemoteConnection, error) {
				return []nango.RemoteConnection{
					{ID: "1", ConnectionID: "conn-1", ProviderConfigKey: "slack", CredentialsStatus: "VALID"},
				}, nil
			},
		}
		srv := newTestServer(t, repo, mock)

		req := httptest.NewRequest(http.MethodGet, "/api/connections", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		conns, ok := body["connections"].([]any)
		if !ok || len(conns) != 1 {
			t.Errorf("expected 1 connection, got %v", body)
		}
	})

	t.Run("DELETE without integration returns invalid_query", func(t *testing.T) {
		repo := memory.New()
		seedUser(t, repo)
		mock := &nango.Mock{}
		srv := newTestServer(t, repo, mock)

		req := httptest.NewRequest(http.MethodDelete, "/api/connections", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["error"] != "invalid_query" {
			t.Errorf("expected error=invalid_query, got %v", body)
		}
		if len(mock.DeleteConnectionCalls) != 0 {
			t.Errorf("expected no platform unlink calls, got %d", len(mock.DeleteConnectionCalls))
		}
	})

	t.Run("DELETE with unconfigured integration returns invalid_query", func(t *testing.T) {
		repo := memory.New()
		seedUser(t, repo)
		mock := &nango.Mock{}
		srv := newTestServer(t, repo, mock)

		req := httptest.NewRequest(http.MethodDelete, "/api/connections?integration=github", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["error"] != "invalid_query" {
			t.Errorf("expected error=invalid_query, got %v", body)
		}
	})

	t.Run("DELETE without a bound connection returns invalid_user", func(t *testing.T) {
		repo := memory.New()
		seedUser(t, repo)
		mock := &nango.Mock{}
		srv := newTestServer(t, repo, mock)

		req := httptest.NewRequest(http.MethodDelete, "/api/connections?integration=slack", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["error"] != "invalid_user" {
			t.Errorf("expected error=invalid_user, got %v", body)
		}
		if len(mock.DeleteConnectionCalls) != 0 {
			t.Errorf("expected no platform unlink calls, got %d", len(mock.DeleteConnectionCalls))
		}
	})

	t.Run("DELETE unlinks and cascades", func(t *testing.T) {
		repo := memory.New()
		user := seedUser(t, repo)
		ctx := context.Background()
		if err := repo.User().BindConnection(ctx, user.ID, "conn-1"); err != nil {
			t.Fatalf("failed to bind connection: %v", err)
		}
		if err := repo.Connection().Upsert(ctx, &model.Connection{ID: "conn-1", ProviderConfigKey: types.ProviderSlack}); err != nil {
			t.Fatalf("failed to upsert connection: %v", err)
		}
		if err := repo.Contact().Upsert(ctx, &model.Contact{ID: "U1", FullName: "Ann A", ConnectionID: "conn-1"}); err != nil {
			t.Fatalf("failed to upsert contact: %v", err)
		}

		mock := &nango.Mock{}
		srv := newTestServer(t, repo, mock)

		req := httptest.NewRequest(http.MethodDelete, "/api/connections?integration=slack", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["success"] != true {
			t.Errorf("expected success=true, got %v", body)
		}
		if len(mock.DeleteConnectionCalls) != 1 {
			t.Fatalf("expected 1 platform unlink call, got %d", len(mock.DeleteConnectionCalls))
		}

		after, err := repo.User().GetDefault(ctx)
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if after.Connected() {
			t.Error("expected user to be disconnected")
		}
	})

	t.Run("POST records a manual connection", func(t *testing.T) {
		repo := memory.New()
		seedUser(t, repo)
		srv := newTestServer(t, repo, &nango.Mock{})

		body := []byte(`{"connectionId":"C9","providerConfigKey":"slack"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/connections", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["success"] != true {
			t.Errorf("expected success=true, got %v", body)
		}

		ctx := context.Background()
		conn, err := repo.Connection().GetByID(ctx, "C9")
		if err != nil {
			t.Fatalf("expected connection C9: %v", err)
		}
		if conn.ProviderConfigKey != types.ProviderSlack {
			t.Errorf("expected provider key slack, got %s", conn.ProviderConfigKey)
		}
		user, err := repo.User().GetDefault(ctx)
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if user.ConnectionID != "C9" {
			t.Errorf("expected user bound to C9, got %s", user.ConnectionID)
		}
	})

	t.Run("POST with missing fields returns missing_parameters", func(t *testing.T) {
		repo := memory.New()
		seedUser(t, repo)
		srv := newTestServer(t, repo, &nango.Mock{})

		for _, body := range []string{
			`not json`,
			`{"connectionId":"C9"}`,
			`{"providerConfigKey":"slack"}`,
		} {
			req := httptest.NewRequest(http.MethodPost, "/api/connections", bytes.NewReader([]byte(body)))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400 for body %q, got %d", body, rec.Code)
			}
			if resp := decodeBody(t, rec); resp["error"] != "missing_parameters" {
				t.Errorf("expected error=missing_parameters for body %q, got %v", body, resp)
			}
		}
	})
}

func TestContactEndpoint(t *testing.T) {
	t.Run("without a seeded user returns invalid_user", func(t *testing.T) {
		repo := memory.New()
		srv := newTestServer(t, repo, &nango.Mock{})

		req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["error"] != "invalid_user" {
			t.Errorf("expected error=invalid_user, got %v", body)
		}
	})

	t.Run("returns the live contact mirror", func(t *testing.T) {
		repo := memory.New()
		user := seedUser(t, repo)
		ctx := context.Background()
		if err := repo.User().BindConnection(ctx, user.ID, "conn-1"); err != nil {
			t.Fatalf("failed to bind connection: %v", err)
		}
		if err := repo.Contact().Upsert(ctx, &model.Contact{
			ID:           "U1",
			FullName:     "Ann A",
			Avatar:       model.DefaultAvatarURL,
			Email:        "ann@example.com",
			IsAdmin:      true,
			ConnectionID: "conn-1",
		}); err != nil {
			t.Fatalf("failed to upsert contact: %v", err)
		}
		if err := repo.Contact().Upsert(ctx, &model.Contact{
			ID:           "U2",
			FullName:     "Bob B",
			ConnectionID: "conn-1",
		}); err != nil {
			t.Fatalf("failed to upsert contact: %v", err)
		}
		if err := repo.Contact().SoftDelete(ctx, "U2", time.Now()); err != nil {
			t.Fatalf("failed to soft-delete contact: %v", err)
		}

		srv := newTestServer(t, repo, &nango.Mock{})
		req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}

		body := decodeBody(t, rec)
		contacts, ok := body["contacts"].([]any)
		if !ok {
			t.Fatalf("expected contacts array, got %v", body)
		}
		if len(contacts) != 1 {
			t.Fatalf("expected 1 live contact, got %d", len(contacts))
		}

		contact, ok := contacts[0].(map[string]any)
		if !ok {
			t.Fatalf("expected contact object, got %v", contacts[0])
		}
		if contact["id"] != "U1" {
			t.Errorf("expected id=U1, got %v", contact["id"])
		}
		if contact["fullName"] != "Ann A" {
			t.Errorf("expected fullName='Ann A', got %v", contact["fullName"])
		}
		if contact["avatar"] != model.DefaultAvatarURL {
			t.Errorf("expected placeholder avatar, got %v", contact["avatar"])
		}
		if contact["isAdmin"] != true {
			t.Errorf("expected isAdmin=true, got %v", contact["isAdmin"])
		}
	})
}
