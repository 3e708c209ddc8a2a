package proof

import (
	"errors"
	"slices"
)

var (
	// ErrUnresolved means a citation names no line or subproof.
	ErrUnresolved = errors.New("proof: unresolved citation")
	// ErrOutOfScope means the cited material exists but is not visible
	// from the citing line.
	ErrOutOfScope = errors.New("proof: citation out of scope")
)

// Target is what a citation resolves to: a line, or a closed subproof.
type Target struct {
	Entry    Entry
	Subproof *Subproof
}

// IsSubproof reports whether the target is a subproof.
func (t Target) IsSubproof() bool { return t.Subproof != nil }

// Resolve resolves citation c made by line from. A line is visible when it
// precedes from in from's scope or an enclosing scope. A subproof is
// visible when it is closed before from and its parent encloses from's
// scope.
func (d *Document) Resolve(from int, c Citation) (Target, error) {
	self, ok := d.Entry(from)
	if !ok {
		return Target{}, ErrUnresolved
	}
	if c.Start < 1 || c.End < c.Start || c.End > len(d.entries) {
		return Target{}, ErrUnresolved
	}

	if !c.Range() {
		e := d.entries[c.Start-1]
		if c.Start >= from || !d.Encloses(e.Scope, self.Scope) {
			return Target{Entry: e}, ErrOutOfScope
		}
		return Target{Entry: e}, nil
	}

	id, ok := d.byRange[c]
	if !ok {
		return Target{}, ErrUnresolved
	}
	sp, _ := d.Subproof(id)
	t := Target{Subproof: &sp}
	if c.End >= from || !d.Encloses(d.scopes[id].Parent, self.Scope) {
		return t, ErrOutOfScope
	}
	return t, nil
}

// Visible lists every line and subproof that line from may cite.
func (d *Document) Visible(from int) []Target {
	self, ok := d.Entry(from)
	if !ok {
		return nil
	}
	var out []Target
	for _, e := range d.entries[:from-1] {
		if d.Encloses(e.Scope, self.Scope) {
			out = append(out, Target{Entry: e})
		}
	}
	for _, sp := range d.Subproofs() {
		if sp.End < from && d.Encloses(d.scopes[sp.Scope].Parent, self.Scope) {
			out = append(out, Target{Subproof: &sp})
		}
	}
	return out
}

// Dependents returns the lines whose justification cites n, directly or
// through other dependents, in ascending order.
func (d *Document) Dependents(n int) []int {
	if n < 1 || n > len(d.entries) {
		return nil
	}
	tainted := make([]bool, len(d.entries)+1)
	tainted[n] = true
	var out []int
	for m := n + 1; m <= len(d.entries); m++ {
		for _, c := range d.entries[m-1].Line.Justification.Citations {
			if c.Start < 1 || c.End > len(d.entries) {
				continue
			}
			if slices.Contains(tainted[c.Start:c.End+1], true) {
				tainted[m] = true
				out = append(out, m)
				break
			}
		}
	}
	return out
}
