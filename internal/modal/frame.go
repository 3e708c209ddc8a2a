package modal

import (
	"github.com/starford/fitch/internal/proof"
	"github.com/starford/fitch/internal/rules"
)

// World identifies a possible world. Each strict subproof opens one; the
// rest of the document lives in RootWorld.
type World int

// RootWorld is the world of the top level.
const RootWorld World = 0

// Frame is the tree of worlds a document opens. A strict subproof's world
// is a successor of the world its enclosing scope lives in.
type Frame struct {
	parent []World
	worlds map[proof.ScopeID]World
}

// NewFrame derives the frame of doc.
func NewFrame(doc *proof.Document) *Frame {
	f := &Frame{
		parent: []World{-1},
		worlds: map[proof.ScopeID]World{proof.Root: RootWorld},
	}
	for _, sp := range doc.Subproofs() {
		s, _ := doc.Scope(sp.Scope)
		outer := f.worlds[s.Parent]
		if !s.Modal {
			f.worlds[sp.Scope] = outer
			continue
		}
		w := World(len(f.parent))
		f.parent = append(f.parent, outer)
		f.worlds[sp.Scope] = w
	}
	return f
}

// Len returns the number of worlds.
func (f *Frame) Len() int { return len(f.parent) }

// WorldOf returns the world a scope's lines live in.
func (f *Frame) WorldOf(scope proof.ScopeID) World { return f.worlds[scope] }

// Parent returns the world w was opened from.
func (f *Frame) Parent(w World) (World, bool) {
	if !f.valid(w) || w == RootWorld {
		return 0, false
	}
	return f.parent[w], true
}

func (f *Frame) valid(w World) bool { return w >= 0 && int(w) < len(f.parent) }

// descends reports whether w is a proper descendant of ancestor.
func (f *Frame) descends(w, ancestor World) bool {
	for w != RootWorld {
		w = f.parent[w]
		if w == ancestor {
			return true
		}
	}
	return false
}

// Accessible reports whether world to is accessible from world from under
// sys. The base relation links each world to the worlds opened directly
// inside it; T adds reflexivity, S4 transitivity and S5 symmetry. The
// frame is a single tree, so under S5 every pair of worlds is related.
// Under K a world does not see itself; same-world transfers go through
// Permits instead.
func (f *Frame) Accessible(sys System, from, to World) bool {
	switch {
	case !f.valid(from) || !f.valid(to):
		return false
	case sys.Symmetric():
		return true
	case from == to:
		return sys.Reflexive()
	case sys.Transitive():
		return f.descends(to, from)
	default:
		return f.parent[to] == from
	}
}

// Permits reports whether a rule with transfer t may conclude in world from
// using material that lives in world to.
func (f *Frame) Permits(sys System, t rules.Transfer, from, to World) bool {
	switch t {
	case rules.TransferNecessityElim:
		return f.Accessible(sys, to, from)
	case rules.TransferPossibilityIntro:
		return f.Accessible(sys, from, to)
	case rules.TransferReflexive:
		return from == to && sys.Reflexive()
	case rules.TransferNecessityIntro, rules.Transfer4:
		return from == to || (sys.Transitive() && f.Accessible(sys, to, from))
	case rules.Transfer5:
		return from == to || (sys.Symmetric() && f.Accessible(sys, to, from))
	default:
		return from == to
	}
}
