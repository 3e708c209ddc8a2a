package proof

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	d := sampleDoc(t)

	tests := []struct {
		name     string
		from     int
		cite     Citation
		err      error
		subproof bool
	}{
		{"earlier top-level line", 8, Citation{1, 1}, nil, false},
		{"enclosing assumption", 4, Citation{2, 2}, nil, false},
		{"closed nested subproof", 5, Citation{3, 4}, nil, true},
		{"closed sibling subproof", 8, Citation{2, 5}, nil, true},
		{"line inside closed subproof", 8, Citation{4, 4}, ErrOutOfScope, false},
		{"line inside sibling subproof", 7, Citation{3, 3}, ErrOutOfScope, false},
		{"open enclosing subproof", 4, Citation{3, 4}, ErrOutOfScope, true},
		{"self", 5, Citation{5, 5}, ErrOutOfScope, false},
		{"later line", 2, Citation{3, 3}, ErrOutOfScope, false},
		{"missing line", 8, Citation{9, 9}, ErrUnresolved, false},
		{"range not a subproof", 8, Citation{2, 4}, ErrUnresolved, false},
		{"invalidated", 8, Citation{}, ErrUnresolved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := d.Resolve(tt.from, tt.cite)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}
			if err == nil || tt.err == ErrOutOfScope {
				assert.Equal(t, tt.subproof, target.IsSubproof())
			}
		})
	}
}

func TestVisible(t *testing.T) {
	d := sampleDoc(t)

	var lines []int
	var subs [][2]int
	for _, v := range d.Visible(7) {
		if v.IsSubproof() {
			subs = append(subs, [2]int{v.Subproof.Start, v.Subproof.End})
			continue
		}
		lines = append(lines, v.Entry.Number)
	}
	assert.Equal(t, []int{1, 6}, lines)
	assert.Equal(t, [][2]int{{2, 5}}, subs)
}

func TestDependents(t *testing.T) {
	d := build(t,
		fl(0, "P", "PR"),
		fl(0, "P → Q", "PR"),
		fl(0, "Q", "→E 2, 1"),
		fl(1, "R", "PR"),
		fl(1, "Q", "R 3"),
		fl(0, "R → Q", "→I 4-5"),
		fl(0, "P", "R 1"),
	)
	assert.Equal(t, []int{3, 5, 6}, d.Dependents(2))
	assert.Equal(t, []int{3, 5, 6, 7}, d.Dependents(1))
	assert.Empty(t, d.Dependents(7))
	assert.Nil(t, d.Dependents(42))
}
