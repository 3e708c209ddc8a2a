package proof

import (
	"fmt"
	"slices"

	"github.com/starford/fitch/internal/apperr"
)

// anchor identifies cited material independently of numbering.
type anchor struct {
	line  *Line
	scope ScopeID
	ok    bool
}

// InsertLine inserts a derived line directly after line after (0 inserts at
// the top) at the given depth. The depth may not exceed the depth of line
// after, and leaving a subproof is only possible from its last line.
// Citations elsewhere keep pointing at the same material. It returns the
// new line's number.
func (d *Document) InsertLine(after, depth int, text, justification string) (int, error) {
	line := NewLine(text, justification)
	return d.edit(func() error {
		scope, idx, err := d.insertionPoint(after, depth)
		if err != nil {
			return err
		}
		s := d.scopes[scope]
		s.Items = slices.Insert(s.Items, idx, Item{Line: line})
		return nil
	}, line)
}

// InsertSubproof opens a new subproof at depth (at least 1) directly after
// line after, with the given assumption. A strict subproof opens with the
// □ marker; an empty assumption stands for it when modal is set.
func (d *Document) InsertSubproof(after, depth int, assumption string, modal bool) (int, error) {
	if depth < 1 {
		return 0, fmt.Errorf("%w: subproofs start at depth 1", apperr.ErrInvalidProof)
	}
	if modal && assumption == "" {
		assumption = "□"
	}
	line := NewLine(assumption, "PR")
	if modal && !line.Marker() {
		return 0, fmt.Errorf("%w: a strict subproof opens with □, not %q", apperr.ErrInvalidProof, assumption)
	}
	return d.edit(func() error {
		parent, idx, err := d.insertionPoint(after, depth-1)
		if err != nil {
			return err
		}
		id := d.newScope(parent, line.Marker())
		d.scopes[id].Items = []Item{{Line: line}}
		p := d.scopes[parent]
		p.Items = slices.Insert(p.Items, idx, Item{Scope: id})
		return nil
	}, line)
}

// RemoveLine deletes line n. Removing the assumption of a subproof removes
// the whole subproof. Citations of removed material become unresolved.
func (d *Document) RemoveLine(n int) error {
	e, ok := d.Entry(n)
	if !ok {
		return fmt.Errorf("%w: line %d", apperr.ErrNotFound, n)
	}
	if e.Index == 0 && e.Scope != Root {
		return d.RemoveSubproof(n)
	}
	_, err := d.edit(func() error {
		s := d.scopes[e.Scope]
		s.Items = slices.Delete(s.Items, e.Index, e.Index+1)
		return nil
	}, nil)
	return err
}

// RemoveSubproof deletes the innermost subproof containing line n.
func (d *Document) RemoveSubproof(n int) error {
	e, ok := d.Entry(n)
	if !ok || e.Scope == Root {
		return fmt.Errorf("%w: no subproof at line %d", apperr.ErrNotFound, n)
	}
	_, err := d.edit(func() error {
		parent := d.scopes[d.scopes[e.Scope].Parent]
		parent.Items = slices.Delete(parent.Items, d.indexIn(e.Scope), d.indexIn(e.Scope)+1)
		d.scopes[e.Scope] = nil
		return nil
	}, nil)
	return err
}

// edit anchors every citation, applies change, renumbers and rewrites the
// citations to the new positions of their anchors.
func (d *Document) edit(change func() error, added *Line) (int, error) {
	anchors := make(map[*Line][]anchor)
	for _, e := range d.entries {
		cs := e.Line.Justification.Citations
		as := make([]anchor, len(cs))
		for i, c := range cs {
			as[i] = d.anchorOf(c)
		}
		anchors[e.Line] = as
	}

	if err := change(); err != nil {
		return 0, err
	}
	d.dropOrphans()
	d.reindex()

	numbers := make(map[*Line]int, len(d.entries))
	for _, e := range d.entries {
		numbers[e.Line] = e.Number
	}
	for _, e := range d.entries {
		as := anchors[e.Line]
		for i := range e.Line.Justification.Citations {
			if i >= len(as) || !as[i].ok {
				continue
			}
			e.Line.Justification.Citations[i] = d.relocate(as[i], numbers)
		}
	}
	return numbers[added], nil
}

func (d *Document) anchorOf(c Citation) anchor {
	if c.Start < 1 || c.End > len(d.entries) {
		return anchor{}
	}
	if !c.Range() {
		return anchor{line: d.entries[c.Start-1].Line, ok: true}
	}
	if id, ok := d.byRange[c]; ok {
		return anchor{scope: id, ok: true}
	}
	return anchor{}
}

func (d *Document) relocate(a anchor, numbers map[*Line]int) Citation {
	if a.line != nil {
		n := numbers[a.line]
		return Citation{Start: n, End: n}
	}
	if s, ok := d.Scope(a.scope); ok && s != nil {
		if span, ok := d.spans[a.scope]; ok {
			return span
		}
	}
	return Citation{}
}

// dropOrphans clears scopes no longer reachable from Root.
func (d *Document) dropOrphans() {
	live := make(map[ScopeID]bool)
	d.walk(Root, func(id ScopeID) { live[id] = true })
	for i := range d.scopes {
		if !live[ScopeID(i)] {
			d.scopes[i] = nil
		}
	}
}

// insertionPoint locates where a new item at depth goes when placed right
// after line after.
func (d *Document) insertionPoint(after, depth int) (ScopeID, int, error) {
	if after == 0 {
		if depth != 0 {
			return 0, 0, fmt.Errorf("%w: the first line must be at depth 0", apperr.ErrInvalidProof)
		}
		return Root, 0, nil
	}
	e, ok := d.Entry(after)
	if !ok {
		return 0, 0, fmt.Errorf("%w: line %d", apperr.ErrNotFound, after)
	}
	if depth < 0 || depth > e.Depth {
		return 0, 0, fmt.Errorf("%w: depth %d not reachable after line %d", apperr.ErrInvalidProof, depth, after)
	}
	scope, idx := e.Scope, e.Index
	for d.depths[scope] > depth {
		if d.spans[scope].End != after {
			return 0, 0, fmt.Errorf("%w: line %d is not the last line of its subproof", apperr.ErrInvalidProof, after)
		}
		idx = d.indexIn(scope)
		scope = d.scopes[scope].Parent
	}
	return scope, idx + 1, nil
}
