package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/relink-lab/contactsync/pkg/usecase"
	"github.com/relink-lab/contactsync/pkg/utils/logging"
	"github.com/relink-lab/contactsync/pkg/utils/safe"
)

// Server routes the public API: the platform webhook endpoint and the
// connection/contact routes the front-end polls
type Server struct {
	router *chi.Mux
}

type Options func(*Server)

func New(uc *usecase.UseCases, webhookHandler *WebhookHandler, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{router: r}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	// Platform webhook endpoint - no session auth, uses signature
	// verification
	r.Post("/webhooks", webhookHandler.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/connections", listConnectionsHandler(uc.Connection))
		r.Delete("/connections", deleteConnectionHandler(uc.Connection))
		r.Post("/connections", createManualConnectionHandler(uc.Connection))
		r.Get("/contacts", listContactsHandler(uc.Contact))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// respondJSON writes a JSON body with the given status
func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.From(r.Context()).Error("failed to marshal response", "error", err)
		http.Error(w, "internal_server_error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

// respondError writes the symbolic error codes the front-end switches on
func respondError(w http.ResponseWriter, r *http.Request, status int, code string) {
	respondJSON(w, r, status, map[string]string{"error": code})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
