package proof

import (
	"fmt"

	"github.com/starford/fitch/internal/apperr"
)

// FlatLine is the serialized form of one line: its depth, sentence text and
// justification text. A strict subproof is one whose assumption is the lone
// □ marker.
type FlatLine struct {
	Depth         int    `json:"depth" yaml:"depth"`
	Sentence      string `json:"sentence" yaml:"sentence"`
	Justification string `json:"justification" yaml:"justification"`
}

// BuildError reports a flat line sequence that does not describe a
// well-formed document.
type BuildError struct {
	Line int
	Msg  string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("proof: line %d: %s", e.Line, e.Msg)
}

// Unwrap lets callers match apperr.ErrInvalidProof.
func (e *BuildError) Unwrap() error { return apperr.ErrInvalidProof }

// Build reconstructs a document from flat lines. A line one level deeper
// than the current scope must be an assumption and opens a subproof. Below
// the top level an assumption at the current depth opens a sibling
// subproof, so every subproof has exactly one assumption. Only the top
// level holds a run of premises.
func Build(lines []FlatLine) (*Document, error) {
	d := New()
	stack := []ScopeID{Root}

	for i, fl := range lines {
		n := i + 1
		line := NewLine(fl.Sentence, fl.Justification)
		assumption := line.Premise()
		modal := assumption && line.Marker()
		cur := len(stack) - 1

		switch {
		case fl.Depth < 0:
			return nil, &BuildError{Line: n, Msg: "negative depth"}
		case fl.Depth > cur+1:
			return nil, &BuildError{Line: n, Msg: fmt.Sprintf("depth jumps from %d to %d", cur, fl.Depth)}
		case fl.Depth == cur+1:
			if !assumption {
				return nil, &BuildError{Line: n, Msg: "a subproof must open with an assumption"}
			}
			stack = append(stack, d.newScope(stack[cur], modal))
		default:
			stack = stack[:fl.Depth+1]
			if fl.Depth > 0 && assumption {
				stack[fl.Depth] = d.newScope(stack[fl.Depth-1], modal)
			} else if fl.Depth == 0 && modal {
				return nil, &BuildError{Line: n, Msg: "strict subproof marker at top level"}
			}
		}

		top := d.scopes[stack[len(stack)-1]]
		top.Items = append(top.Items, Item{Line: line})
		if parent := top.Parent; parent >= 0 && len(top.Items) == 1 {
			d.scopes[parent].Items = append(d.scopes[parent].Items, Item{Scope: top.ID})
		}
	}

	d.reindex()
	return d, nil
}

// Flatten serializes the document. Build(d.Flatten()) reproduces it, except
// that an edited subproof holding a second assumption splits in two.
func (d *Document) Flatten() []FlatLine {
	out := make([]FlatLine, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, FlatLine{
			Depth:         e.Depth,
			Sentence:      e.Line.Text,
			Justification: e.Line.Justification.String(),
		})
	}
	return out
}
