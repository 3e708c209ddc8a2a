package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/fitch/internal/sentence"
)

func ln(s string) Cited { return Cited{Line: sentence.MustParse(s)} }

func sp(assumption, result string) Cited {
	return Cited{Assumption: sentence.MustParse(assumption), Result: sentence.MustParse(result)}
}

func strictSub(result string) Cited {
	return Cited{Assumption: sentence.Marker(), Result: sentence.MustParse(result), Strict: true}
}

func rule(t *testing.T, name string) *Definition {
	t.Helper()
	d, ok := Default().Lookup(name)
	require.True(t, ok, "rule %q not found", name)
	return d
}

func TestMatch(t *testing.T) {
	b, ok := Match(pat("$a → $b"), sentence.MustParse("P ∧ Q → R"), nil)
	require.True(t, ok)
	assert.Equal(t, "P ∧ Q", b["a"].String())
	assert.Equal(t, "R", b["b"].String())

	_, ok = Match(pat("$a → $a"), sentence.MustParse("P → Q"), nil)
	assert.False(t, ok, "binding conflict must fail")

	_, ok = Match(pat("$a"), sentence.Marker(), nil)
	assert.False(t, ok, "metavariables never bind the marker")

	prior := Bindings{"a": sentence.Atom("P")}
	_, ok = Match(pat("$a ∧ $b"), sentence.MustParse("Q ∧ R"), prior)
	assert.False(t, ok)
	assert.Len(t, prior, 1, "input bindings are not modified")
}

func TestInstantiate(t *testing.T) {
	got, ok := Instantiate(pat("¬($a ∨ $b)"), Bindings{"a": sentence.Atom("P"), "b": sentence.MustParse("Q → R")})
	require.True(t, ok)
	assert.Equal(t, "¬(P ∨ (Q → R))", got.String())

	_, ok = Instantiate(pat("$a ∨ $c"), Bindings{"a": sentence.Atom("P")})
	assert.False(t, ok)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		rule       string
		cited      []Cited
		conclusion string
		matched    bool
		failure    Failure
		citation   int
	}{
		{"modus ponens", "→E", []Cited{ln("P → Q"), ln("P")}, "Q", true, FailNone, -1},
		{"modus ponens swapped", "->E", []Cited{ln("P"), ln("P → Q")}, "Q", true, FailNone, -1},
		{"modus ponens wrong conclusion", "→E", []Cited{ln("P → Q"), ln("P")}, "P", false, FailConclusion, -1},
		{"and elim right", "∧E", []Cited{ln("P ∧ Q")}, "Q", true, FailNone, -1},
		{"and elim on disjunction", "∧E", []Cited{ln("P ∨ Q")}, "P", false, FailPremise, 0},
		{"and intro commuted citations", "∧I", []Cited{ln("P"), ln("Q")}, "Q ∧ P", true, FailNone, -1},
		{"or intro left", "∨I", []Cited{ln("P")}, "P ∨ □R", true, FailNone, -1},
		{"or intro right", "vI", []Cited{ln("P")}, "Q ∨ P", true, FailNone, -1},
		{"or intro unrelated", "∨I", []Cited{ln("P")}, "Q ∨ R", false, FailConclusion, -1},
		{"neg elim either order", "~E", []Cited{ln("¬P"), ln("P")}, "⊥", true, FailNone, -1},
		{"explosion", "X", []Cited{ln("⊥")}, "Q ∧ ¬Q", true, FailNone, -1},
		{"explosion not to marker", "X", []Cited{ln("⊥")}, "□", false, FailConclusion, -1},
		{"count mismatch", "→E", []Cited{ln("P → Q")}, "Q", false, FailCount, -1},
		{"conditional intro", "→I", []Cited{sp("P", "Q")}, "P → Q", true, FailNone, -1},
		{"conditional intro needs subproof", "→I", []Cited{ln("Q")}, "P → Q", false, FailPremise, 0},
		{"conditional intro rejects strict subproof", "→I", []Cited{strictSub("Q")}, "P → Q", false, FailPremise, 0},
		{"or elim", "∨E", []Cited{ln("P ∨ Q"), sp("P", "R"), sp("Q", "R")}, "R", true, FailNone, -1},
		{"or elim swapped subproofs", "∨E", []Cited{ln("P ∨ Q"), sp("Q", "R"), sp("P", "R")}, "R", true, FailNone, -1},
		{"or elim disjunction last", "∨E", []Cited{sp("P", "R"), sp("Q", "R"), ln("P ∨ Q")}, "R", true, FailNone, -1},
		{"biconditional intro commuted", "↔I", []Cited{sp("P", "Q"), sp("Q", "P")}, "Q ↔ P", true, FailNone, -1},
		{"biconditional elim", "↔E", []Cited{ln("Q"), ln("P ↔ Q")}, "P", true, FailNone, -1},
		{"neg intro", "¬I", []Cited{sp("P", "⊥")}, "¬P", true, FailNone, -1},
		{"indirect proof", "IP", []Cited{sp("¬P", "⊥")}, "P", true, FailNone, -1},
		{"disjunctive syllogism", "DS", []Cited{ln("¬Q"), ln("P ∨ Q")}, "P", true, FailNone, -1},
		{"modus tollens", "MT", []Cited{ln("P → Q"), ln("¬Q")}, "¬P", true, FailNone, -1},
		{"double negation", "DNE", []Cited{ln("¬¬P")}, "P", true, FailNone, -1},
		{"excluded middle", "LEM", []Cited{sp("¬P", "Q"), sp("P", "Q")}, "Q", true, FailNone, -1},
		{"de morgan", "DeM", []Cited{ln("¬(P ∧ Q)")}, "¬P ∨ ¬Q", true, FailNone, -1},
		{"necessity intro", "□I", []Cited{strictSub("P → Q")}, "□(P → Q)", true, FailNone, -1},
		{"necessity intro needs strict subproof", "□I", []Cited{sp("P", "Q")}, "□Q", false, FailPremise, 0},
		{"necessity elim", "□E", []Cited{ln("□P")}, "P", true, FailNone, -1},
		{"possibility elim", "◇E", []Cited{ln("□(P → Q)"), ln("◇P")}, "◇Q", true, FailNone, -1},
		{"possibility definition", "Def◇", []Cited{ln("¬□¬P")}, "◇P", true, FailNone, -1},
		{"modal conversion", "MC", []Cited{ln("¬◇P")}, "□¬P", true, FailNone, -1},
		{"reiteration 5", "R5", []Cited{ln("◇P")}, "◇P", true, FailNone, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := rule(t, tt.rule).Apply(tt.cited, sentence.MustParse(tt.conclusion))
			assert.Equal(t, tt.matched, o.Matched, o.Detail)
			assert.Equal(t, tt.failure, o.Failure, o.Detail)
			assert.Equal(t, tt.citation, o.Citation)
		})
	}
}

func TestApply_ReportsFurthestPremise(t *testing.T) {
	o := rule(t, "∨E").Apply([]Cited{ln("P ∨ Q"), sp("P", "R"), sp("P", "R")}, sentence.Atom("R"))
	require.False(t, o.Matched)
	assert.Equal(t, FailPremise, o.Failure)
	assert.NotEmpty(t, o.Detail)
}
