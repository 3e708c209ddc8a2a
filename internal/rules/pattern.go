package rules

import (
	"maps"

	"github.com/starford/fitch/internal/sentence"
)

// Bindings maps metavariable names to the sentences they matched.
type Bindings map[string]*sentence.Sentence

// Match unifies pattern against s, extending b. It returns a new binding
// set on success and leaves b untouched. A metavariable already bound must
// match a structurally equal sentence. Metavariables never bind the strict
// subproof marker.
func Match(pattern, s *sentence.Sentence, b Bindings) (Bindings, bool) {
	out := maps.Clone(b)
	if out == nil {
		out = Bindings{}
	}
	if !match(pattern, s, out) {
		return nil, false
	}
	return out, true
}

func match(pattern, s *sentence.Sentence, b Bindings) bool {
	if pattern == nil || s == nil {
		return false
	}
	if pattern.Kind() == sentence.KindMeta {
		if s.Kind() == sentence.KindMarker {
			return false
		}
		if bound, ok := b[pattern.Name()]; ok {
			return sentence.Equal(bound, s)
		}
		b[pattern.Name()] = s
		return true
	}
	if pattern.Kind() != s.Kind() {
		return false
	}
	switch k := pattern.Kind(); {
	case k == sentence.KindAtom:
		return pattern.Name() == s.Name()
	case k.Unary():
		return match(pattern.Operand(), s.Operand(), b)
	case k.Binary():
		return match(pattern.Left(), s.Left(), b) && match(pattern.Right(), s.Right(), b)
	}
	return true
}

// Instantiate substitutes bindings into pattern. It reports false when the
// pattern mentions an unbound metavariable.
func Instantiate(pattern *sentence.Sentence, b Bindings) (*sentence.Sentence, bool) {
	switch k := pattern.Kind(); {
	case k == sentence.KindMeta:
		s, ok := b[pattern.Name()]
		return s, ok
	case k.Unary():
		operand, ok := Instantiate(pattern.Operand(), b)
		if !ok {
			return nil, false
		}
		return sentence.Unary(k, operand), true
	case k.Binary():
		left, ok := Instantiate(pattern.Left(), b)
		if !ok {
			return nil, false
		}
		right, ok := Instantiate(pattern.Right(), b)
		if !ok {
			return nil, false
		}
		return sentence.Binary(k, left, right), true
	}
	return pattern, true
}
