package sentence

import (
	"strings"
)

// Style selects the operator spelling used by Format.
type Style uint8

// Output styles.
const (
	StyleUnicode Style = iota
	StyleASCII
)

type symbols struct {
	not, box, diamond, and, or, implies, iff, bottom string
}

var styles = map[Style]symbols{
	StyleUnicode: {not: "¬", box: "□", diamond: "◇", and: " ∧ ", or: " ∨ ", implies: " → ", iff: " ↔ ", bottom: "⊥"},
	StyleASCII:   {not: "~", box: "[]", diamond: "<>", and: " & ", or: " | ", implies: " -> ", iff: " <-> ", bottom: "#"},
}

// String renders s with Unicode operators and minimal parentheses.
func (s *Sentence) String() string {
	return Format(s, StyleUnicode)
}

// Format renders s in the given style. The output parses back to an equal
// sentence.
func Format(s *Sentence, style Style) string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	write(&b, s, styles[style])
	return b.String()
}

// precedence tiers; higher binds tighter.
func precedence(k Kind) int {
	switch k {
	case KindIff:
		return 1
	case KindImplies:
		return 2
	case KindOr:
		return 3
	case KindAnd:
		return 4
	case KindNot, KindBox, KindDiamond:
		return 5
	}
	return 6
}

func rightAssoc(k Kind) bool { return k == KindImplies || k == KindIff }

func write(b *strings.Builder, s *Sentence, sym symbols) {
	switch s.kind {
	case KindAtom:
		b.WriteString(s.name)
	case KindMeta:
		b.WriteString("$" + s.name)
	case KindBottom:
		b.WriteString(sym.bottom)
	case KindMarker:
		b.WriteString(sym.box)
	case KindNot, KindBox, KindDiamond:
		b.WriteString(map[Kind]string{KindNot: sym.not, KindBox: sym.box, KindDiamond: sym.diamond}[s.kind])
		child(b, s.left, precedence(s.left.kind) < precedence(s.kind), sym)
	default:
		p := precedence(s.kind)
		lp, rp := precedence(s.left.kind), precedence(s.right.kind)
		var leftParen, rightParen bool
		if rightAssoc(s.kind) {
			leftParen, rightParen = lp <= p, rp < p
		} else {
			leftParen, rightParen = lp < p, rp <= p
		}
		child(b, s.left, leftParen, sym)
		b.WriteString(map[Kind]string{KindAnd: sym.and, KindOr: sym.or, KindImplies: sym.implies, KindIff: sym.iff}[s.kind])
		child(b, s.right, rightParen, sym)
	}
}

func child(b *strings.Builder, s *Sentence, paren bool, sym symbols) {
	if paren {
		b.WriteByte('(')
	}
	write(b, s, sym)
	if paren {
		b.WriteByte(')')
	}
}
