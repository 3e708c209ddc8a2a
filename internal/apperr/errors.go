// Package apperr holds sentinel errors shared by the service, API and MCP
// layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidProof marks a proof document that cannot be built or decoded.
	ErrInvalidProof = errors.New("invalid proof")
)
