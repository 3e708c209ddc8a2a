// Package proof models Fitch-style proof documents: an arena of nested
// scopes holding numbered lines, with citation resolution under Fitch
// visibility rules and structural editing that keeps citations pointing at
// the same material.
package proof

import (
	"slices"

	"github.com/starford/fitch/internal/rules"
	"github.com/starford/fitch/internal/sentence"
)

// ScopeID indexes a scope in the document arena.
type ScopeID int

// Root is the top-level scope of every document.
const Root ScopeID = 0

// Line is one numbered proof line.
type Line struct {
	Text          string
	Sentence      *sentence.Sentence
	ParseErr      error
	Justification Justification
}

// NewLine parses the sentence and justification text of a line.
func NewLine(text, justification string) *Line {
	l := &Line{Text: text, Justification: ParseJustification(justification)}
	l.Sentence, l.ParseErr = sentence.Parse(text)
	return l
}

// Premise reports whether the line is justified as a premise or assumption.
func (l *Line) Premise() bool {
	d, ok := rules.Default().Lookup(l.Justification.Rule)
	return l.Justification.Err == nil && ok && d.ID == rules.Premise
}

// Marker reports whether the line is the lone □ that opens a strict
// subproof.
func (l *Line) Marker() bool {
	return l.Sentence != nil && l.Sentence.Kind() == sentence.KindMarker
}

func (l *Line) clone() *Line {
	c := *l
	c.Justification.Citations = slices.Clone(l.Justification.Citations)
	return &c
}

// Item is a scope member: a line or a nested scope.
type Item struct {
	Line  *Line
	Scope ScopeID
}

// Scope is a subproof (or the root). Parent is -1 for the root.
type Scope struct {
	ID     ScopeID
	Parent ScopeID
	Modal  bool
	Items  []Item
}

// Entry is a line together with its position in the document.
type Entry struct {
	Number int
	Line   *Line
	Scope  ScopeID
	Depth  int
	// Index is the item index within Scope.
	Index int
}

// Subproof summarises a closed scope for citation.
type Subproof struct {
	Scope      ScopeID
	Start, End int
	Modal      bool
	Assumption *Line
	// Result is the last line directly inside the subproof.
	Result *Line
}

// Document is a proof: an arena of scopes rooted at Root. Documents are
// not safe for concurrent mutation; verification passes work on a Clone.
type Document struct {
	scopes []*Scope

	entries []Entry
	spans   map[ScopeID]Citation
	depths  map[ScopeID]int
	byRange map[Citation]ScopeID
}

// New returns an empty document.
func New() *Document {
	d := &Document{scopes: []*Scope{{ID: Root, Parent: -1}}}
	d.reindex()
	return d
}

// Len returns the number of lines.
func (d *Document) Len() int { return len(d.entries) }

// Entries returns every line in document order.
func (d *Document) Entries() []Entry { return slices.Clone(d.entries) }

// Entry returns line n (1-based).
func (d *Document) Entry(n int) (Entry, bool) {
	if n < 1 || n > len(d.entries) {
		return Entry{}, false
	}
	return d.entries[n-1], true
}

// Line returns line n (1-based).
func (d *Document) Line(n int) (*Line, bool) {
	e, ok := d.Entry(n)
	return e.Line, ok
}

// Scope returns the scope with the given id.
func (d *Document) Scope(id ScopeID) (*Scope, bool) {
	if id < 0 || int(id) >= len(d.scopes) || d.scopes[id] == nil {
		return nil, false
	}
	return d.scopes[id], true
}

// Depth returns the nesting depth of line n; top-level lines have depth 0.
func (d *Document) Depth(n int) int {
	e, _ := d.Entry(n)
	return e.Depth
}

// ScopeOf returns the scope holding line n.
func (d *Document) ScopeOf(n int) ScopeID {
	e, _ := d.Entry(n)
	return e.Scope
}

// Ancestors returns id followed by its enclosing scopes up to Root.
func (d *Document) Ancestors(id ScopeID) []ScopeID {
	var out []ScopeID
	for id >= 0 {
		out = append(out, id)
		id = d.scopes[id].Parent
	}
	return out
}

// Encloses reports whether outer is inner or one of its ancestors.
func (d *Document) Encloses(outer, inner ScopeID) bool {
	return slices.Contains(d.Ancestors(inner), outer)
}

// Subproof returns the summary of a non-root scope.
func (d *Document) Subproof(id ScopeID) (Subproof, bool) {
	s, ok := d.Scope(id)
	if !ok || id == Root {
		return Subproof{}, false
	}
	span, ok := d.spans[id]
	if !ok {
		return Subproof{}, false
	}
	sp := Subproof{Scope: id, Start: span.Start, End: span.End, Modal: s.Modal}
	for _, it := range s.Items {
		if it.Line == nil {
			continue
		}
		if sp.Assumption == nil {
			sp.Assumption = it.Line
		}
		sp.Result = it.Line
	}
	return sp, true
}

// Subproofs returns every subproof in document order.
func (d *Document) Subproofs() []Subproof {
	var out []Subproof
	d.walk(Root, func(id ScopeID) {
		if sp, ok := d.Subproof(id); ok {
			out = append(out, sp)
		}
	})
	return out
}

func (d *Document) walk(id ScopeID, fn func(ScopeID)) {
	fn(id)
	for _, it := range d.scopes[id].Items {
		if it.Line == nil {
			d.walk(it.Scope, fn)
		}
	}
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	c := &Document{scopes: make([]*Scope, len(d.scopes))}
	for i, s := range d.scopes {
		if s == nil {
			continue
		}
		cs := *s
		cs.Items = make([]Item, len(s.Items))
		for j, it := range s.Items {
			if it.Line != nil {
				it.Line = it.Line.clone()
			}
			cs.Items[j] = it
		}
		c.scopes[i] = &cs
	}
	c.reindex()
	return c
}

// reindex recomputes line numbers, depths and subproof spans.
func (d *Document) reindex() {
	d.entries = d.entries[:0]
	d.spans = make(map[ScopeID]Citation)
	d.depths = make(map[ScopeID]int)
	d.byRange = make(map[Citation]ScopeID)

	var visit func(id ScopeID, depth int)
	visit = func(id ScopeID, depth int) {
		d.depths[id] = depth
		start := len(d.entries) + 1
		for i, it := range d.scopes[id].Items {
			if it.Line != nil {
				d.entries = append(d.entries, Entry{
					Number: len(d.entries) + 1,
					Line:   it.Line,
					Scope:  id,
					Depth:  depth,
					Index:  i,
				})
				continue
			}
			visit(it.Scope, depth+1)
		}
		if end := len(d.entries); end >= start {
			span := Citation{Start: start, End: end}
			d.spans[id] = span
			if id != Root {
				d.byRange[span] = id
			}
		}
	}
	visit(Root, 0)
}

func (d *Document) newScope(parent ScopeID, modal bool) ScopeID {
	id := ScopeID(len(d.scopes))
	d.scopes = append(d.scopes, &Scope{ID: id, Parent: parent, Modal: modal})
	return id
}

// indexIn returns the position of child within its parent's items.
func (d *Document) indexIn(child ScopeID) int {
	parent := d.scopes[child].Parent
	return slices.IndexFunc(d.scopes[parent].Items, func(it Item) bool {
		return it.Line == nil && it.Scope == child
	})
}
