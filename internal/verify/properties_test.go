package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/fitch/internal/modal"
	"github.com/starford/fitch/internal/proof"
)

// modalCorpus mixes derivations that need different frame conditions.
func modalCorpus(t *testing.T) []*proof.Document {
	return []*proof.Document{
		doc(t, "□P ; PR", "P ; RT 1", "P ; □E 1"),
		doc(t, "□P ; PR", "| □ ; PR", "| □P ; R4 1", "| P ; □E 1", "| | □ ; PR", "| | P ; □E 1", "□□P ; □I 2-6"),
		doc(t, "◇P ; PR", "| □ ; PR", "| ◇P ; R5 1", "| ¬□¬P ; Def◇ 3", "□◇P ; □I 2-3"),
		doc(t, "P ; PR", "| □ ; PR", "| ◇P ; ◇I 1", "◇P ; ◇I 1", "| □ ; PR", "| P ; R 1"),
		doc(t, "| □ ; PR", "| | Q ; PR", "| | Q ; R 2", "| Q → Q ; →I 2-3", "| □ ; PR", "| □(Q → Q) ; □I 1-4"),
	}
}

func TestMonotonicity(t *testing.T) {
	chain := []modal.System{modal.K, modal.T, modal.S4, modal.S5}
	for di, d := range modalCorpus(t) {
		for i := 0; i+1 < len(chain); i++ {
			weak := Verify(d, Config{System: chain[i], Rulesets: tfl})
			strong := Verify(d, Config{System: chain[i+1], Rulesets: tfl})
			for n, diag := range weak.Diagnostics {
				if diag.Status == Valid {
					assert.Equal(t, Valid, strong.Diagnostics[n].Status,
						"doc %d line %d valid in %s but not in %s: %s", di, n+1, chain[i], chain[i+1], strong.Diagnostics[n].Detail)
				}
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	for _, d := range modalCorpus(t) {
		first := Verify(d, Config{System: modal.S4, Rulesets: tfl})
		for range 5 {
			assert.Equal(t, first, Verify(d.Clone(), Config{System: modal.S4, Rulesets: tfl}))
		}
	}
}

func TestScopeSoundness(t *testing.T) {
	// Every valid citation targets material visible from the citing line.
	for _, d := range modalCorpus(t) {
		r := Verify(d, Config{System: modal.S5, Rulesets: tfl})
		for _, e := range d.Entries() {
			if r.Diagnostics[e.Number-1].Status != Valid {
				continue
			}
			for _, c := range e.Line.Justification.Citations {
				_, err := d.Resolve(e.Number, c)
				assert.NoError(t, err, "line %d cites %s", e.Number, c)
			}
		}
	}
}

func TestCascade(t *testing.T) {
	d := doc(t,
		"P → Q ; PR",
		"P ; PR",
		"Q ; →E 1, 2",
		"| R ; PR",
		"| Q ; R 3",
		"R → Q ; →I 4-5",
		"P ; R 2",
	)
	require.True(t, Verify(d, Config{Rulesets: tfl}).Valid())

	// Breaking line 3 invalidates exactly its dependents.
	l, _ := d.Line(3)
	l.Justification = proof.ParseJustification("∧E 1")

	r := Verify(d, Config{Rulesets: tfl})
	dependents := d.Dependents(3)
	assert.Equal(t, []int{5, 6}, dependents)
	for _, diag := range r.Diagnostics {
		switch {
		case diag.Line == 3:
			assert.Equal(t, NoMatchingRule, diag.Reason)
		case diag.Line == 5 || diag.Line == 6:
			assert.Equal(t, DependsOnInvalid, diag.Reason)
		default:
			assert.Equal(t, Valid, diag.Status, "line %d", diag.Line)
		}
	}
}
