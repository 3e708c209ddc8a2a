// Package verify checks every line of a proof document against the rule
// catalog and the modal frame, producing one diagnostic per line.
package verify

import (
	"errors"
	"fmt"
	"slices"

	"github.com/starford/fitch/internal/modal"
	"github.com/starford/fitch/internal/proof"
	"github.com/starford/fitch/internal/rules"
	"github.com/starford/fitch/internal/sentence"
)

// Status is the verification state of a line.
type Status string

// Line statuses.
const (
	Unchecked Status = "unchecked"
	Valid     Status = "valid"
	Invalid   Status = "invalid"
)

// Reason explains an Invalid status.
type Reason string

// Invalid reasons.
const (
	ReasonNone          Reason = ""
	ParseError          Reason = "parse_error"
	UnresolvedCitation  Reason = "unresolved_citation"
	OutOfScope          Reason = "out_of_scope"
	NoMatchingRule      Reason = "no_matching_rule"
	ConclusionMismatch  Reason = "conclusion_mismatch"
	ModalScopeViolation Reason = "modal_scope_violation"
	DependsOnInvalid    Reason = "depends_on_invalid"
)

// Config selects the logic a document is checked in.
type Config struct {
	System   modal.System
	Rulesets []rules.Ruleset
	// Conclusion, when set, is the goal reported by Report.Reached.
	Conclusion *sentence.Sentence
	// Catalog defaults to rules.Default().
	Catalog *rules.Catalog
}

// Enabled returns the rulesets in force: Core, the configured rulesets and
// the modal rulesets implied by System.
func (c Config) Enabled() []rules.Ruleset {
	set := append([]rules.Ruleset{rules.Core}, c.Rulesets...)
	set = append(set, c.System.Rulesets()...)
	var out []rules.Ruleset
	for _, rs := range rules.Rulesets {
		if slices.Contains(set, rs) {
			out = append(out, rs)
		}
	}
	return out
}

func (c Config) catalog() *rules.Catalog {
	if c.Catalog != nil {
		return c.Catalog
	}
	return rules.Default()
}

func (c Config) system() modal.System {
	if c.System == "" {
		return modal.None
	}
	return c.System
}

// Diagnostic is the verdict on one line.
type Diagnostic struct {
	Line   int    `json:"line"`
	Depth  int    `json:"depth"`
	Status Status `json:"status"`
	Reason Reason `json:"reason,omitempty"`
	// Citation is the index of the offending citation, or -1.
	Citation int      `json:"citation"`
	Rule     rules.ID `json:"rule,omitempty"`
	Detail   string   `json:"detail,omitempty"`
}

// Report is the outcome of one verification pass.
type Report struct {
	System       modal.System `json:"system"`
	Diagnostics  []Diagnostic `json:"diagnostics"`
	Placeholders []int        `json:"placeholders,omitempty"`
	// Reached reports whether the configured conclusion is derived at the
	// top level.
	Reached bool `json:"reached"`
}

// Valid reports whether every line is valid.
func (r *Report) Valid() bool {
	for _, d := range r.Diagnostics {
		if d.Status != Valid {
			return false
		}
	}
	return true
}

// Complete reports whether the proof is valid, free of placeholders and
// reaches its conclusion.
func (r *Report) Complete() bool {
	return r.Valid() && len(r.Placeholders) == 0 && r.Reached
}

// Invalid returns the diagnostics of invalid lines.
func (r *Report) Invalid() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Status == Invalid {
			out = append(out, d)
		}
	}
	return out
}

// Line returns the diagnostic of line n.
func (r *Report) Line(n int) (Diagnostic, bool) {
	if n < 1 || n > len(r.Diagnostics) {
		return Diagnostic{}, false
	}
	return r.Diagnostics[n-1], true
}

// Verify checks doc in a single forward pass. Lines are checked in
// document order, so every citation's verdict is known before the lines
// citing it. Verify does not modify doc.
func Verify(doc *proof.Document, cfg Config) *Report {
	p := &pass{
		doc:     doc,
		sys:     cfg.system(),
		catalog: cfg.catalog(),
		frame:   modal.NewFrame(doc),
		enabled: cfg.Enabled(),
	}
	r := &Report{System: p.sys, Diagnostics: make([]Diagnostic, doc.Len())}
	for i := range r.Diagnostics {
		r.Diagnostics[i] = Diagnostic{Line: i + 1, Status: Unchecked, Citation: -1}
	}
	p.report = r

	for _, e := range doc.Entries() {
		r.Diagnostics[e.Number-1] = p.check(e)
	}

	if cfg.Conclusion != nil {
		for _, e := range doc.Entries() {
			d := r.Diagnostics[e.Number-1]
			if e.Depth == 0 && d.Status == Valid && d.Rule != rules.Premise &&
				sentence.Equal(e.Line.Sentence, cfg.Conclusion) {
				r.Reached = true
			}
		}
	}
	return r
}

type pass struct {
	doc     *proof.Document
	sys     modal.System
	catalog *rules.Catalog
	frame   *modal.Frame
	enabled []rules.Ruleset
	report  *Report
}

func (p *pass) check(e proof.Entry) Diagnostic {
	d := Diagnostic{Line: e.Number, Depth: e.Depth, Status: Invalid, Citation: -1}
	l := e.Line
	j := l.Justification

	if l.ParseErr != nil {
		d.Reason, d.Detail = ParseError, l.ParseErr.Error()
		return d
	}
	if j.Err != nil {
		d.Reason, d.Detail = ParseError, j.Err.Error()
		return d
	}

	def, known := p.catalog.Lookup(j.Rule)
	if known {
		d.Rule = def.ID
	}
	if known && def.ID == rules.Premise {
		return p.premise(e, d)
	}

	targets := make([]proof.Target, len(j.Citations))
	for i, c := range j.Citations {
		t, err := p.doc.Resolve(e.Number, c)
		switch {
		case errors.Is(err, proof.ErrOutOfScope):
			d.Reason, d.Citation, d.Detail = OutOfScope, i, fmt.Sprintf("%s is not visible from line %d", c, e.Number)
			return d
		case err != nil:
			d.Reason, d.Citation, d.Detail = UnresolvedCitation, i, fmt.Sprintf("%s does not name a line or subproof", describe(c))
			return d
		}
		targets[i] = t
	}
	for i, t := range targets {
		if bad, ok := p.firstInvalid(t); ok {
			d.Reason, d.Citation, d.Detail = DependsOnInvalid, i, fmt.Sprintf("line %d is invalid", bad)
			return d
		}
	}

	switch {
	case !known:
		d.Reason, d.Detail = NoMatchingRule, fmt.Sprintf("unknown rule %q", j.Rule)
		return d
	case !slices.Contains(p.enabled, def.Ruleset):
		d.Reason, d.Detail = NoMatchingRule, fmt.Sprintf("%s belongs to ruleset %s, which is not enabled", def.Symbol, def.Ruleset)
		return d
	case def.ID == rules.Placeholder:
		p.report.Placeholders = append(p.report.Placeholders, e.Number)
		d.Status = Valid
		return d
	}

	cited := make([]rules.Cited, len(targets))
	for i, t := range targets {
		cited[i] = toCited(t)
	}
	o := def.Apply(cited, l.Sentence)
	if !o.Matched {
		d.Citation, d.Detail = o.Citation, o.Detail
		d.Reason = NoMatchingRule
		if o.Failure == rules.FailConclusion {
			d.Reason = ConclusionMismatch
		}
		return d
	}

	from := p.frame.WorldOf(e.Scope)
	for i, t := range targets {
		to := p.worldOf(t)
		if !p.frame.Permits(p.sys, def.Transfer, from, to) {
			d.Reason, d.Citation = ModalScopeViolation, i
			d.Detail = fmt.Sprintf("%s cannot carry %s from world %d to world %d in %s", def.Symbol, describeTarget(t), to, from, p.sys)
			return d
		}
	}

	d.Status = Valid
	return d
}

// premise accepts the run of premises that opens the document and the
// single assumption that opens each subproof. A strict subproof opens with
// □ and nothing else does.
func (p *pass) premise(e proof.Entry, d Diagnostic) Diagnostic {
	if len(e.Line.Justification.Citations) > 0 {
		d.Reason, d.Citation, d.Detail = NoMatchingRule, 0, "premises cite nothing"
		return d
	}
	s, _ := p.doc.Scope(e.Scope)
	switch {
	case e.Scope != proof.Root && e.Index > 0:
		d.Reason, d.Detail = NoMatchingRule, "a subproof has exactly one assumption"
		return d
	case s.Modal && !e.Line.Marker():
		d.Reason, d.Detail = NoMatchingRule, "a strict subproof opens with □"
		return d
	case e.Line.Marker() && !s.Modal:
		d.Reason, d.Detail = NoMatchingRule, "□ only opens a strict subproof"
		return d
	}
	for _, it := range s.Items[:e.Index] {
		if it.Line == nil || !it.Line.Premise() {
			d.Reason, d.Detail = NoMatchingRule, "premises must precede derived lines"
			return d
		}
	}
	d.Status = Valid
	return d
}

// firstInvalid returns the first cited line, or line within a cited
// subproof, that is not valid.
func (p *pass) firstInvalid(t proof.Target) (int, bool) {
	start, end := t.Entry.Number, t.Entry.Number
	if t.IsSubproof() {
		start, end = t.Subproof.Start, t.Subproof.End
	}
	for n := start; n <= end; n++ {
		if p.report.Diagnostics[n-1].Status != Valid {
			return n, true
		}
	}
	return 0, false
}

// worldOf is the world cited material lives in. A strict subproof is
// attributed to the world it was opened from.
func (p *pass) worldOf(t proof.Target) modal.World {
	if !t.IsSubproof() {
		return p.frame.WorldOf(t.Entry.Scope)
	}
	if t.Subproof.Modal {
		s, _ := p.doc.Scope(t.Subproof.Scope)
		return p.frame.WorldOf(s.Parent)
	}
	return p.frame.WorldOf(t.Subproof.Scope)
}

func toCited(t proof.Target) rules.Cited {
	if !t.IsSubproof() {
		return rules.Cited{Line: t.Entry.Line.Sentence}
	}
	return rules.Cited{
		Assumption: t.Subproof.Assumption.Sentence,
		Result:     t.Subproof.Result.Sentence,
		Strict:     t.Subproof.Modal,
	}
}

func describe(c proof.Citation) string {
	if c.Start == 0 {
		return "removed citation"
	}
	return c.String()
}

func describeTarget(t proof.Target) string {
	if t.IsSubproof() {
		return fmt.Sprintf("subproof %d-%d", t.Subproof.Start, t.Subproof.End)
	}
	return fmt.Sprintf("line %d", t.Entry.Number)
}
