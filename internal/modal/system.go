// Package modal models the possible-worlds reading of strict subproofs:
// the frame conditions of K, T, S4 and S5 and the accessibility relation
// between the worlds a proof document opens.
package modal

import (
	"fmt"
	"strings"

	"github.com/starford/fitch/internal/rules"
)

// System is a normal modal logic.
type System string

// Supported systems. None disables modal reasoning.
const (
	None System = "none"
	K    System = "K"
	T    System = "T"
	S4   System = "S4"
	S5   System = "S5"
)

// Systems lists the systems from weakest to strongest.
var Systems = []System{None, K, T, S4, S5}

// ParseSystem resolves a system name; the empty string means None.
func ParseSystem(name string) (System, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "NONE", "TFL":
		return None, nil
	case "K":
		return K, nil
	case "T", "M":
		return T, nil
	case "S4":
		return S4, nil
	case "S5":
		return S5, nil
	}
	return "", fmt.Errorf("modal: unknown system %q", name)
}

func (s System) rank() int {
	switch s {
	case K:
		return 1
	case T:
		return 2
	case S4:
		return 3
	case S5:
		return 4
	}
	return 0
}

// Reflexive reports whether every world sees itself.
func (s System) Reflexive() bool { return s.rank() >= 2 }

// Transitive reports whether accessibility is transitive.
func (s System) Transitive() bool { return s.rank() >= 3 }

// Symmetric reports whether accessibility is symmetric.
func (s System) Symmetric() bool { return s.rank() >= 4 }

// Includes reports whether every theorem of other is a theorem of s.
func (s System) Includes(other System) bool { return s.rank() >= other.rank() }

// Rulesets returns the modal rulesets s enables, cumulatively.
func (s System) Rulesets() []rules.Ruleset {
	all := []rules.Ruleset{rules.SystemK, rules.SystemT, rules.SystemS4, rules.SystemS5}
	return all[:s.rank()]
}
