// Package sentence implements the propositional and modal sentence language:
// an immutable AST, a parser accepting Unicode and ASCII spellings, a
// canonical printer and a truth-functional evaluator.
package sentence

import (
	"maps"
	"slices"
)

// Kind identifies the node type of a Sentence.
type Kind uint8

// Sentence node kinds.
const (
	KindAtom Kind = iota
	KindBottom
	// KindMarker is the lone □ that opens a strict (modal) subproof. It only
	// ever appears as a whole sentence.
	KindMarker
	// KindMeta is a metavariable; only patterns contain it.
	KindMeta
	KindNot
	KindBox
	KindDiamond
	KindAnd
	KindOr
	KindImplies
	KindIff
)

var kindNames = [...]string{
	KindAtom:    "atom",
	KindBottom:  "bottom",
	KindMarker:  "marker",
	KindMeta:    "meta",
	KindNot:     "not",
	KindBox:     "box",
	KindDiamond: "diamond",
	KindAnd:     "and",
	KindOr:      "or",
	KindImplies: "implies",
	KindIff:     "iff",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Unary reports whether the kind takes exactly one operand.
func (k Kind) Unary() bool {
	return k == KindNot || k == KindBox || k == KindDiamond
}

// Binary reports whether the kind takes two operands.
func (k Kind) Binary() bool {
	return k == KindAnd || k == KindOr || k == KindImplies || k == KindIff
}

// Commutative reports whether swapping the operands yields an equivalent
// sentence.
func (k Kind) Commutative() bool {
	return k == KindAnd || k == KindOr || k == KindIff
}

// Sentence is an immutable sentence tree. The zero value is not valid; use
// the constructors or Parse.
type Sentence struct {
	kind  Kind
	name  string
	left  *Sentence
	right *Sentence
}

var (
	bottom = &Sentence{kind: KindBottom}
	marker = &Sentence{kind: KindMarker}
)

// Atom returns the atomic proposition with the given name.
func Atom(name string) *Sentence { return &Sentence{kind: KindAtom, name: name} }

// Bottom returns the contradiction constant ⊥.
func Bottom() *Sentence { return bottom }

// Marker returns the lone □ assumption of a strict subproof.
func Marker() *Sentence { return marker }

// Meta returns the metavariable with the given name.
func Meta(name string) *Sentence { return &Sentence{kind: KindMeta, name: name} }

// Not returns ¬s.
func Not(s *Sentence) *Sentence { return &Sentence{kind: KindNot, left: s} }

// Box returns □s.
func Box(s *Sentence) *Sentence { return &Sentence{kind: KindBox, left: s} }

// Diamond returns ◇s.
func Diamond(s *Sentence) *Sentence { return &Sentence{kind: KindDiamond, left: s} }

// And returns l ∧ r.
func And(l, r *Sentence) *Sentence { return &Sentence{kind: KindAnd, left: l, right: r} }

// Or returns l ∨ r.
func Or(l, r *Sentence) *Sentence { return &Sentence{kind: KindOr, left: l, right: r} }

// Implies returns l → r.
func Implies(l, r *Sentence) *Sentence { return &Sentence{kind: KindImplies, left: l, right: r} }

// Iff returns l ↔ r.
func Iff(l, r *Sentence) *Sentence { return &Sentence{kind: KindIff, left: l, right: r} }

// Unary builds a unary node of kind k.
func Unary(k Kind, s *Sentence) *Sentence { return &Sentence{kind: k, left: s} }

// Binary builds a binary node of kind k.
func Binary(k Kind, l, r *Sentence) *Sentence { return &Sentence{kind: k, left: l, right: r} }

// Kind returns the node kind.
func (s *Sentence) Kind() Kind { return s.kind }

// Name returns the atom or metavariable name; empty for other kinds.
func (s *Sentence) Name() string { return s.name }

// Operand returns the operand of a unary node.
func (s *Sentence) Operand() *Sentence { return s.left }

// Left returns the left operand of a binary node.
func (s *Sentence) Left() *Sentence { return s.left }

// Right returns the right operand of a binary node.
func (s *Sentence) Right() *Sentence { return s.right }

// Equal reports structural equality.
func Equal(a, b *Sentence) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	switch {
	case a.kind == KindAtom || a.kind == KindMeta:
		return a.name == b.name
	case a.kind.Unary():
		return Equal(a.left, b.left)
	case a.kind.Binary():
		return Equal(a.left, b.left) && Equal(a.right, b.right)
	}
	return true
}

// EqualCommutative reports equality up to swapping the operands of ∧, ∨
// and ↔ at any depth.
func EqualCommutative(a, b *Sentence) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	switch {
	case a.kind == KindAtom || a.kind == KindMeta:
		return a.name == b.name
	case a.kind.Unary():
		return EqualCommutative(a.left, b.left)
	case a.kind.Binary():
		if EqualCommutative(a.left, b.left) && EqualCommutative(a.right, b.right) {
			return true
		}
		return a.kind.Commutative() &&
			EqualCommutative(a.left, b.right) && EqualCommutative(a.right, b.left)
	}
	return true
}

// Atoms returns the distinct atom names of s in sorted order.
func Atoms(s *Sentence) []string {
	seen := map[string]struct{}{}
	walk(s, func(n *Sentence) {
		if n.kind == KindAtom {
			seen[n.name] = struct{}{}
		}
	})
	return sortedKeys(seen)
}

// Metas returns the distinct metavariable names of s in sorted order.
func Metas(s *Sentence) []string {
	seen := map[string]struct{}{}
	walk(s, func(n *Sentence) {
		if n.kind == KindMeta {
			seen[n.name] = struct{}{}
		}
	})
	return sortedKeys(seen)
}

func walk(s *Sentence, fn func(*Sentence)) {
	if s == nil {
		return
	}
	fn(s)
	walk(s.left, fn)
	walk(s.right, fn)
}

func sortedKeys(m map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(m))
}
