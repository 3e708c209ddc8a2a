// Package proofservice coordinates the vault, the index and the checker for
// the API and MCP layers.
package proofservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/fitch/internal/apperr"
	"github.com/starford/fitch/internal/checksum"
	"github.com/starford/fitch/internal/index"
	"github.com/starford/fitch/internal/metrics"
	"github.com/starford/fitch/internal/models"
	"github.com/starford/fitch/internal/parser"
	"github.com/starford/fitch/internal/proof"
	"github.com/starford/fitch/internal/storage"
	"github.com/starford/fitch/internal/verify"
)

// Service coordinates storage, index and verification.
type Service struct {
	store storage.Provider
	db    index.ProofIndex
	rec   *index.Recorder
}

// NewService creates a new proof service. Writes are verified in the
// background through rec.
func NewService(store storage.Provider, db index.ProofIndex, rec *index.Recorder) *Service {
	return &Service{store: store, db: db, rec: rec}
}

// Defaults returns the logic applied to proofs whose header leaves it unset.
func (s *Service) Defaults() verify.Config { return s.rec.Defaults() }

// GetProof reads a proof from storage and verifies its current content.
func (s *Service) GetProof(_ context.Context, path string) (*models.Proof, error) {
	data, err := s.read(path)
	if err != nil {
		return nil, err
	}
	return s.buildProof(path, data, metrics.SourceAPI), nil
}

// CreateProof writes a new proof and schedules its verification.
func (s *Service) CreateProof(_ context.Context, path string, content []byte) (*models.Proof, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if _, err := s.rec.Submit(path, content); err != nil {
		return nil, err
	}
	return s.buildProof(path, content, metrics.SourceAPI), nil
}

// UpdateProof writes updated content with optimistic concurrency.
func (s *Service) UpdateProof(_ context.Context, path string, content []byte, ifMatch string) (*models.Proof, error) {
	existing, err := s.read(path)
	if err != nil {
		return nil, err
	}
	if !checksum.Match(existing, ifMatch) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if _, err := s.rec.Submit(path, content); err != nil {
		return nil, err
	}
	return s.buildProof(path, content, metrics.SourceAPI), nil
}

// DeleteProof removes a proof from storage and index.
func (s *Service) DeleteProof(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.rec.Remove(path)
}

// ListProofs returns one page of indexed proofs.
func (s *Service) ListProofs(_ context.Context, opts index.ListOptions) ([]models.ProofSummary, int, error) {
	items, total, err := s.db.ListProofs(opts)
	if err != nil {
		return nil, 0, err
	}
	return nonNilSlice(items), total, nil
}

// StoredDiagnostics is the latest verification result recorded in the index.
type StoredDiagnostics struct {
	Summary     models.ProofSummary `json:"summary"`
	Diagnostics []verify.Diagnostic `json:"diagnostics"`
}

// Diagnostics returns the indexed result of the latest pass over path.
func (s *Service) Diagnostics(_ context.Context, path string) (*StoredDiagnostics, error) {
	sum, err := s.db.GetProof(path)
	if err != nil {
		return nil, err
	}
	diags, err := s.db.Diagnostics(path)
	if err != nil {
		return nil, err
	}
	return &StoredDiagnostics{Summary: *sum, Diagnostics: nonNilSlice(diags)}, nil
}

// CheckRequest is an inline document to verify.
type CheckRequest struct {
	Header parser.Header
	Lines  []proof.FlatLine
}

// Check verifies an inline document without storing it.
func (s *Service) Check(_ context.Context, req CheckRequest, source string) (*verify.Report, error) {
	cfg, err := req.Header.Config(s.Defaults())
	if err != nil {
		return nil, err
	}
	doc, err := proof.Build(req.Lines)
	if err != nil {
		return nil, err
	}
	p := verify.Run("", doc, cfg)
	metrics.ObservePass(source, p)
	return p.Report, nil
}

// CheckText verifies a document written in the proof file format.
func (s *Service) CheckText(ctx context.Context, text, source string) (*verify.Report, error) {
	res, err := parser.Parse([]byte(text))
	if err != nil {
		return nil, err
	}
	return s.Check(ctx, CheckRequest{Header: res.Header, Lines: res.Lines}, source)
}

func (s *Service) read(path string) ([]byte, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// buildProof decodes and verifies data without re-reading the file. A file
// that does not decode is returned with Error set and no report.
func (s *Service) buildProof(path string, data []byte, source string) *models.Proof {
	p := &models.Proof{
		Path:      path,
		Content:   data,
		Lines:     []proof.FlatLine{},
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now(),
	}
	res, err := parser.Parse(data)
	if err != nil {
		p.Error = err.Error()
		return p
	}
	p.Header, p.Prose, p.Lines = res.Header, res.Prose, nonNilSlice(res.Lines)

	report, err := s.Check(context.Background(), CheckRequest{Header: res.Header, Lines: res.Lines}, source)
	if err != nil {
		p.Error = err.Error()
		return p
	}
	p.Report = report
	return p
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
