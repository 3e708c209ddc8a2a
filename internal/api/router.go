package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/fitch/internal/proofservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *proofservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Proofs CRUD.
	r.Get("/proofs", h.ListProofs)
	r.Post("/proofs", h.CreateProof)
	r.Get("/proofs/*", h.GetProof)
	r.Put("/proofs/*", h.UpdateProof)
	r.Delete("/proofs/*", h.DeleteProof)
	r.Get("/diagnostics/*", h.Diagnostics)

	// Stateless checker.
	r.Post("/verify", h.Verify)
	r.Post("/parse", h.Parse)
	r.Get("/rules", h.Rules)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
