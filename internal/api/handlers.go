package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/fitch/internal/index"
	"github.com/starford/fitch/internal/metrics"
	"github.com/starford/fitch/internal/models"
	"github.com/starford/fitch/internal/proofservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *proofservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *proofservice.Service) *Handler {
	return &Handler{svc: svc}
}

// proofPathParam extracts the proof path from the URL (everything after the
// route prefix). Supports encoded slashes from OpenAPI clients (e.g.
// modal%2Fk.md).
func proofPathParam(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListProofs handles GET /api/proofs.
//
//	@Summary		List indexed proofs with their latest status
//	@Tags			proofs
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			status	query		string	false	"Filter by status"	Enums(pending, valid, invalid, error)
//	@Param			q		query		string	false	"Substring of path or title"
//	@Param			sort	query		string	false	"Sort field"	Enums(path, updated, invalid)
//	@Success		200		{object}	ProofListResponse
//	@Security		BearerAuth
//	@Router			/proofs [get]
func (h *Handler) ListProofs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListProofs(r.Context(), index.ListOptions{
		Limit:  limit,
		Offset: offset,
		Status: models.Status(q.Get("status")),
		Query:  q.Get("q"),
		Sort:   q.Get("sort"),
	})
	if err != nil {
		writeError(w, "list proofs", err)
		return
	}
	writeJSON(w, http.StatusOK, ProofListResponse{Proofs: items, Total: total})
}

// GetProof handles GET /api/proofs/*.
//
//	@Summary		Get a proof and verify its current content
//	@Tags			proofs
//	@Produce		json
//	@Param			path	path		string	true	"Proof path"
//	@Success		200		{object}	models.Proof
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/proofs/{path} [get]
func (h *Handler) GetProof(w http.ResponseWriter, r *http.Request) {
	path := proofPathParam(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	p, err := h.svc.GetProof(r.Context(), path)
	if err != nil {
		writeError(w, "get proof", err, slog.String("path", path))
		return
	}
	w.Header().Set("ETag", `"`+p.Checksum+`"`)
	writeJSON(w, http.StatusOK, p)
}

// CreateProof handles POST /api/proofs.
//
//	@Summary		Create a new proof file
//	@Tags			proofs
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateProofRequest	true	"Proof to create"
//	@Success		201		{object}	models.Proof
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/proofs [post]
func (h *Handler) CreateProof(w http.ResponseWriter, r *http.Request) {
	var req CreateProofRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.svc.CreateProof(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		writeError(w, "create proof", err, slog.String("path", req.Path))
		return
	}
	w.Header().Set("ETag", `"`+p.Checksum+`"`)
	writeJSON(w, http.StatusCreated, p)
}

// UpdateProof handles PUT /api/proofs/*.
//
//	@Summary		Update a proof with optimistic concurrency
//	@Tags			proofs
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string				true	"Proof path"
//	@Param			If-Match	header	string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateProofRequest	true	"Updated content"
//	@Success		200		{object}	models.Proof
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/proofs/{path} [put]
func (h *Handler) UpdateProof(w http.ResponseWriter, r *http.Request) {
	path := proofPathParam(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateProofRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	p, err := h.svc.UpdateProof(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		writeError(w, "update proof", err, slog.String("path", path))
		return
	}
	w.Header().Set("ETag", `"`+p.Checksum+`"`)
	writeJSON(w, http.StatusOK, p)
}

// DeleteProof handles DELETE /api/proofs/*.
//
//	@Summary		Delete a proof
//	@Tags			proofs
//	@Param			path	path	string	true	"Proof path"
//	@Success		204		"Proof deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/proofs/{path} [delete]
func (h *Handler) DeleteProof(w http.ResponseWriter, r *http.Request) {
	path := proofPathParam(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteProof(r.Context(), path); err != nil {
		writeError(w, "delete proof", err, slog.String("path", path))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Diagnostics handles GET /api/diagnostics/*.
//
//	@Summary		Latest stored diagnostics of a proof
//	@Tags			proofs
//	@Produce		json
//	@Param			path	path		string	true	"Proof path"
//	@Success		200		{object}	proofservice.StoredDiagnostics
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/diagnostics/{path} [get]
func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	path := proofPathParam(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	d, err := h.svc.Diagnostics(r.Context(), path)
	if err != nil {
		writeError(w, "diagnostics", err, slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Verify handles POST /api/verify.
//
//	@Summary		Verify an inline document without storing it
//	@Tags			checker
//	@Accept			json
//	@Produce		json
//	@Param			body	body		VerifyRequest	true	"Document"
//	@Success		200		{object}	VerifyResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/verify [post]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	report, err := h.svc.Check(r.Context(), proofservice.CheckRequest{Header: req.header(), Lines: req.Lines}, metrics.SourceAPI)
	if err != nil {
		writeError(w, "verify", err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{Report: report, Valid: report.Valid(), Complete: report.Complete()})
}

// Parse handles POST /api/parse.
//
//	@Summary		Parse a sentence
//	@Tags			checker
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ParseRequest	true	"Sentence"
//	@Success		200		{object}	proofservice.ParseResult
//	@Failure		422		{object}	proofservice.ParseResult
//	@Security		BearerAuth
//	@Router			/parse [post]
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res := h.svc.ParseSentence(req.Sentence)
	status := http.StatusOK
	if res.Error != nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

// Rules handles GET /api/rules.
//
//	@Summary		List the rule catalog
//	@Tags			checker
//	@Produce		json
//	@Param			ruleset	query		string	false	"Restrict to one ruleset"
//	@Success		200		{object}	RulesResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/rules [get]
func (h *Handler) Rules(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Rules(r.URL.Query().Get("ruleset"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, RulesResponse{Rules: list})
}
