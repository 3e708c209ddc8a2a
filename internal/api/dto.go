package api

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/fitch/internal/models"
	"github.com/starford/fitch/internal/parser"
	"github.com/starford/fitch/internal/proof"
	"github.com/starford/fitch/internal/proofservice"
	"github.com/starford/fitch/internal/storage"
	"github.com/starford/fitch/internal/verify"
)

// CreateProofRequest is the request body for creating a proof file.
type CreateProofRequest struct {
	Path    string `json:"path" example:"modal/k-distribution.md" validate:"required"`
	Content string `json:"content" example:"P ; PR\nP ; R 1\n" validate:"required"`
}

// Validate checks the request fields.
func (r CreateProofRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required, validation.By(proofPath)),
		validation.Field(&r.Content, validation.Required),
	)
}

// UpdateProofRequest is the request body for updating a proof file.
type UpdateProofRequest struct {
	Content string `json:"content" example:"P ; PR\n" validate:"required"`
}

// Validate checks the request fields.
func (r UpdateProofRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}

// VerifyRequest is an inline document to verify.
type VerifyRequest struct {
	System     string           `json:"system,omitempty" example:"S4"`
	Rulesets   []string         `json:"rulesets,omitempty" example:"tfl-basic,tfl-derived"`
	Conclusion string           `json:"conclusion,omitempty" example:"□□P"`
	Lines      []proof.FlatLine `json:"lines" validate:"required"`
}

// Validate checks the request fields. Sentences and justifications are
// left to the checker, which reports them per line.
func (r VerifyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Lines, validation.Required, validation.Each(validation.By(flatLine))),
	)
}

func (r VerifyRequest) header() parser.Header {
	return parser.Header{System: r.System, Rulesets: r.Rulesets, Conclusion: r.Conclusion}
}

// ParseRequest is the request body for parsing one sentence.
type ParseRequest struct {
	Sentence string `json:"sentence" example:"[](P -> Q)" validate:"required"`
}

// Validate checks the request fields.
func (r ParseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Sentence, validation.Required),
	)
}

// ProofListResponse wraps paginated proof listings.
type ProofListResponse struct {
	Proofs []models.ProofSummary `json:"proofs" validate:"required"`
	Total  int                   `json:"total" example:"42" validate:"required"`
}

// RulesResponse lists catalog entries.
type RulesResponse struct {
	Rules []proofservice.RuleInfo `json:"rules" validate:"required"`
}

// VerifyResponse is the report of an inline verification.
type VerifyResponse struct {
	Report   *verify.Report `json:"report" validate:"required"`
	Valid    bool           `json:"valid"`
	Complete bool           `json:"complete"`
}

func proofPath(v any) error {
	p, _ := v.(string)
	if !storage.IsProofFile(p) {
		return validation.NewError("validation_proof_path", "must name a "+storage.Ext+" file")
	}
	if strings.HasPrefix(p, "/") {
		return validation.NewError("validation_relative_path", "must be relative to the vault")
	}
	return nil
}

func flatLine(v any) error {
	l, _ := v.(proof.FlatLine)
	return validation.Errors{
		"depth":    validation.Validate(l.Depth, validation.Min(0)),
		"sentence": validation.Validate(l.Sentence, validation.Required),
	}.Filter()
}
