package index

import (
	"github.com/starford/fitch/internal/models"
	"github.com/starford/fitch/internal/verify"
)

// ProofIndex defines the interface for proof indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type ProofIndex interface {
	UpsertProof(s models.ProofSummary) error
	SaveReport(path string, p verify.Pass) error
	DeleteProof(path string) error
	GetChecksum(path string) (string, error)
	GetProof(path string) (*models.ProofSummary, error)
	ListProofs(opts ListOptions) ([]models.ProofSummary, int, error)
	Diagnostics(path string) ([]verify.Diagnostic, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies ProofIndex at compile time.
var _ ProofIndex = (*DB)(nil)
