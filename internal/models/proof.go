// Package models defines the vault and index types shared by the service
// layers.
package models

import (
	"time"

	"github.com/starford/fitch/internal/parser"
	"github.com/starford/fitch/internal/proof"
	"github.com/starford/fitch/internal/verify"
)

// FileMetadata describes one proof file on disk.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Proof is a decoded proof file with its latest verification report.
type Proof struct {
	Path      string           `json:"path"`
	Content   []byte           `json:"-"`
	Header    parser.Header    `json:"header"`
	Prose     string           `json:"prose,omitempty"`
	Lines     []proof.FlatLine `json:"lines"`
	Checksum  string           `json:"checksum"`
	Report    *verify.Report   `json:"report,omitempty"`
	Error     string           `json:"error,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Status of an indexed proof file.
type Status string

// Index statuses. Error marks a file that could not be decoded or built.
const (
	StatusPending Status = "pending"
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusError   Status = "error"
)

// ProofSummary is the index view of a proof file.
type ProofSummary struct {
	Path         string    `json:"path"`
	Title        string    `json:"title"`
	System       string    `json:"system"`
	Checksum     string    `json:"checksum"`
	Status       Status    `json:"status"`
	Error        string    `json:"error,omitempty"`
	Lines        int       `json:"lines"`
	Invalid      int       `json:"invalid"`
	Placeholders int       `json:"placeholders"`
	Reached      bool      `json:"reached"`
	Complete     bool      `json:"complete"`
	UpdatedAt    time.Time `json:"updated_at"`
	VerifiedAt   time.Time `json:"verified_at,omitzero"`
}
