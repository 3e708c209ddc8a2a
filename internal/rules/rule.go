// Package rules defines the inference rule catalog: rule identifiers,
// rulesets, premise/conclusion patterns and the matcher that checks a
// justified line against a rule.
package rules

import (
	"fmt"
	"strings"

	"github.com/starford/fitch/internal/sentence"
)

// ID names a rule. The set of IDs is closed.
type ID string

// Rule identifiers.
const (
	Premise              ID = "Premise"
	Placeholder          ID = "Placeholder"
	Reiteration          ID = "Reiteration"
	AndIntro             ID = "AndIntro"
	AndElim              ID = "AndElim"
	OrIntro              ID = "OrIntro"
	OrElim               ID = "OrElim"
	ConditionalIntro     ID = "ConditionalIntro"
	ConditionalElim      ID = "ConditionalElim"
	BiconditionalIntro   ID = "BiconditionalIntro"
	BiconditionalElim    ID = "BiconditionalElim"
	NegIntro             ID = "NegIntro"
	NegElim              ID = "NegElim"
	IndirectProof        ID = "IndirectProof"
	Explosion            ID = "Explosion"
	DisjunctiveSyllogism ID = "DisjunctiveSyllogism"
	ModusTollens         ID = "ModusTollens"
	DoubleNegElim        ID = "DoubleNegElim"
	ExcludedMiddle       ID = "ExcludedMiddle"
	DeMorgan             ID = "DeMorgan"
	NecessityIntro       ID = "NecessityIntro"
	NecessityElim        ID = "NecessityElim"
	PossibilityIntro     ID = "PossibilityIntro"
	PossibilityElim      ID = "PossibilityElim"
	PossibilityDef       ID = "PossibilityDef"
	ModalConversion      ID = "ModalConversion"
	ReflexiveT           ID = "ReflexiveT"
	Reiteration4         ID = "Reiteration4"
	Reiteration5         ID = "Reiteration5"
)

// Ruleset groups rules that are enabled together.
type Ruleset string

// Rulesets. Core is always enabled.
const (
	Core       Ruleset = "core"
	TFLBasic   Ruleset = "tfl-basic"
	TFLDerived Ruleset = "tfl-derived"
	SystemK    Ruleset = "K"
	SystemT    Ruleset = "T"
	SystemS4   Ruleset = "S4"
	SystemS5   Ruleset = "S5"
)

// Rulesets lists every ruleset in presentation order.
var Rulesets = []Ruleset{Core, TFLBasic, TFLDerived, SystemK, SystemT, SystemS4, SystemS5}

// ParseRuleset resolves a ruleset name, accepting a few common spellings.
func ParseRuleset(name string) (Ruleset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "core":
		return Core, nil
	case "tfl-basic", "tfl_basic", "basic", "tfl":
		return TFLBasic, nil
	case "tfl-derived", "tfl_derived", "derived":
		return TFLDerived, nil
	case "k", "system_k":
		return SystemK, nil
	case "t", "system_t":
		return SystemT, nil
	case "s4", "system_s4":
		return SystemS4, nil
	case "s5", "system_s5":
		return SystemS5, nil
	}
	return "", fmt.Errorf("rules: unknown ruleset %q", name)
}

// Equivalence selects how an instantiated conclusion is compared with the
// line being justified.
type Equivalence uint8

// Conclusion equivalences.
const (
	Structural Equivalence = iota
	Commutative
)

// Transfer is the modal requirement a rule places on the worlds of the
// material it cites.
type Transfer uint8

// Transfer kinds.
const (
	// Local requires every citation to live in the citing line's world.
	Local Transfer = iota
	// TransferNecessityElim moves □A out of an accessible world.
	TransferNecessityElim
	// TransferNecessityIntro closes a strict subproof into □A.
	TransferNecessityIntro
	// TransferPossibilityIntro derives ◇A from A in a reachable world.
	TransferPossibilityIntro
	// TransferReflexive reads □A as A in the same world.
	TransferReflexive
	// Transfer4 reiterates □A into transitively accessible worlds.
	Transfer4
	// Transfer5 reiterates ¬□A or ◇A into symmetric-accessible worlds.
	Transfer5
)

// PremiseSpec is one premise slot of a rule form: either a line pattern or
// a subproof shape.
type PremiseSpec struct {
	Line *sentence.Sentence
	// Assumption and Result describe a cited subproof. Assumption is nil
	// for strict subproofs, which open with the □ marker.
	Assumption *sentence.Sentence
	Result     *sentence.Sentence
	Strict     bool
}

// Subproof reports whether the slot expects a subproof citation.
func (p PremiseSpec) Subproof() bool { return p.Line == nil }

func (p PremiseSpec) String() string {
	switch {
	case !p.Subproof():
		return p.Line.String()
	case p.Strict:
		return "[□ … " + p.Result.String() + "]"
	default:
		return "[" + p.Assumption.String() + " … " + p.Result.String() + "]"
	}
}

// Form is one premise/conclusion shape of a rule.
type Form struct {
	Premises   []PremiseSpec
	Conclusion *sentence.Sentence
	// Open lists metavariables that only the conclusion binds.
	Open []string
}

func (f Form) String() string {
	parts := make([]string, len(f.Premises))
	for i, p := range f.Premises {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ") + " ⊢ " + f.Conclusion.String()
}

// Definition is a catalog entry.
type Definition struct {
	ID          ID
	Symbol      string
	Aliases     []string
	Ruleset     Ruleset
	Forms       []Form
	Unordered   bool
	Equivalence Equivalence
	Transfer    Transfer
	Description string
}

// Cited is the material a justification points at, as seen by the matcher.
type Cited struct {
	// Line is set for a single-line citation.
	Line *sentence.Sentence
	// Assumption and Result are set for a subproof citation.
	Assumption *sentence.Sentence
	Result     *sentence.Sentence
	Strict     bool
}

// Subproof reports whether the citation is a subproof.
func (c Cited) Subproof() bool { return c.Line == nil }

// Failure classifies why a rule did not apply.
type Failure uint8

// Failure kinds, ordered from least to most advanced.
const (
	FailNone Failure = iota
	FailCount
	FailPremise
	FailConclusion
)

// Outcome is the result of applying a rule to a line.
type Outcome struct {
	Matched  bool
	Failure  Failure
	Form     int
	Bindings Bindings
	// Citation is the index of the offending citation, or -1.
	Citation int
	Detail   string
	// progress counts premises matched before the failure.
	progress int
}

func (o Outcome) better(than Outcome) bool {
	if o.Failure != than.Failure {
		return o.Failure > than.Failure
	}
	return o.progress > than.progress
}

// Apply checks whether conclusion follows from cited by any form of d.
func (d *Definition) Apply(cited []Cited, conclusion *sentence.Sentence) Outcome {
	best := Outcome{Failure: FailCount, Citation: -1, Detail: d.countDetail(len(cited))}
	for fi, form := range d.Forms {
		if len(form.Premises) != len(cited) {
			continue
		}
		for _, perm := range d.orders(len(cited)) {
			o := d.applyForm(form, cited, perm, conclusion)
			o.Form = fi
			if o.Matched {
				return o
			}
			if o.better(best) {
				best = o
			}
		}
	}
	return best
}

func (d *Definition) applyForm(form Form, cited []Cited, perm []int, conclusion *sentence.Sentence) Outcome {
	b := Bindings{}
	for i, ps := range form.Premises {
		ci := perm[i]
		next, ok := matchPremise(ps, cited[ci], b)
		if !ok {
			return Outcome{
				Failure:  FailPremise,
				Citation: ci,
				Detail:   fmt.Sprintf("citation %d does not have the form %s", ci+1, ps),
				progress: i,
			}
		}
		b = next
	}

	mismatch := Outcome{Failure: FailConclusion, Citation: -1, Bindings: b, progress: len(form.Premises)}
	if want, ok := Instantiate(form.Conclusion, b); ok {
		if d.equivalent(want, conclusion) {
			return Outcome{Matched: true, Bindings: b, Citation: -1}
		}
		mismatch.Detail = fmt.Sprintf("expected %s", want)
		return mismatch
	}
	if full, ok := Match(form.Conclusion, conclusion, b); ok {
		return Outcome{Matched: true, Bindings: full, Citation: -1}
	}
	mismatch.Detail = fmt.Sprintf("conclusion does not have the form %s", form.Conclusion)
	return mismatch
}

func (d *Definition) equivalent(want, got *sentence.Sentence) bool {
	if d.Equivalence == Commutative {
		return sentence.EqualCommutative(want, got)
	}
	return sentence.Equal(want, got)
}

func (d *Definition) countDetail(n int) string {
	counts := map[int]struct{}{}
	for _, f := range d.Forms {
		counts[len(f.Premises)] = struct{}{}
	}
	if len(counts) == 1 {
		for c := range counts {
			return fmt.Sprintf("%s cites %d item(s), got %d", d.Symbol, c, n)
		}
	}
	return fmt.Sprintf("%s cannot cite %d item(s)", d.Symbol, n)
}

// orders returns the citation orders to try.
func (d *Definition) orders(n int) [][]int {
	identity := make([]int, n)
	for i := range identity {
		identity[i] = i
	}
	if !d.Unordered {
		return [][]int{identity}
	}
	return permutations(identity)
}

func permutations(xs []int) [][]int {
	if len(xs) <= 1 {
		return [][]int{append([]int(nil), xs...)}
	}
	var out [][]int
	for i := range xs {
		rest := make([]int, 0, len(xs)-1)
		rest = append(rest, xs[:i]...)
		rest = append(rest, xs[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]int{xs[i]}, p...))
		}
	}
	return out
}

func matchPremise(ps PremiseSpec, c Cited, b Bindings) (Bindings, bool) {
	if ps.Subproof() != c.Subproof() {
		return nil, false
	}
	if !ps.Subproof() {
		return Match(ps.Line, c.Line, b)
	}
	if ps.Strict != c.Strict {
		return nil, false
	}
	if ps.Assumption != nil {
		var ok bool
		if b, ok = Match(ps.Assumption, c.Assumption, b); !ok {
			return nil, false
		}
	}
	return Match(ps.Result, c.Result, b)
}
