package sentence

import (
	"errors"
	"fmt"
)

// ErrNotTruthFunctional is returned by Eval for sentences containing modal
// operators, markers or metavariables.
var ErrNotTruthFunctional = errors.New("sentence: not truth-functional")

// Valuation assigns truth values to atoms.
type Valuation map[string]bool

// Eval computes the truth value of s under v.
func Eval(s *Sentence, v Valuation) (bool, error) {
	switch s.kind {
	case KindAtom:
		val, ok := v[s.name]
		if !ok {
			return false, fmt.Errorf("sentence: atom %q has no value", s.name)
		}
		return val, nil
	case KindBottom:
		return false, nil
	case KindNot:
		val, err := Eval(s.left, v)
		return !val, err
	case KindAnd, KindOr, KindImplies, KindIff:
		l, err := Eval(s.left, v)
		if err != nil {
			return false, err
		}
		r, err := Eval(s.right, v)
		if err != nil {
			return false, err
		}
		switch s.kind {
		case KindAnd:
			return l && r, nil
		case KindOr:
			return l || r, nil
		case KindImplies:
			return !l || r, nil
		default:
			return l == r, nil
		}
	}
	return false, fmt.Errorf("%w: %s", ErrNotTruthFunctional, s.kind)
}
