package sentence

import (
	"unicode"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokMeta
	tokBottom
	tokNot
	tokBox
	tokDiamond
	tokAnd
	tokOr
	tokImplies
	tokIff
	tokOpen
	tokClose
)

var tokenNames = [...]string{
	tokEOF:     "end of input",
	tokIdent:   "identifier",
	tokMeta:    "metavariable",
	tokBottom:  "⊥",
	tokNot:     "¬",
	tokBox:     "□",
	tokDiamond: "◇",
	tokAnd:     "∧",
	tokOr:      "∨",
	tokImplies: "→",
	tokIff:     "↔",
	tokOpen:    "(",
	tokClose:   ")",
}

func (k tokenKind) String() string { return tokenNames[k] }

// Span is a half-open rune range [Start, End) within the parsed input.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type token struct {
	kind tokenKind
	text string
	// bracket holds the opening or closing character of a grouping token.
	bracket rune
	span    Span
}

// single-rune spellings.
var runeTokens = map[rune]tokenKind{
	'¬': tokNot, '~': tokNot, '∼': tokNot, '−': tokNot,
	'□': tokBox,
	'◇': tokDiamond, '◊': tokDiamond,
	'∧': tokAnd, '&': tokAnd, '^': tokAnd, '·': tokAnd, '.': tokAnd, '*': tokAnd,
	'∨': tokOr, '|': tokOr,
	'→': tokImplies, '⊃': tokImplies, '⇒': tokImplies, '>': tokImplies,
	'↔': tokIff, '≡': tokIff, '⇔': tokIff,
	'⊥': tokBottom, '#': tokBottom,
}

var closing = map[rune]rune{'(': ')', '[': ']', '{': '}'}

// lex splits input into tokens. Spans count runes, not bytes.
func lex(input string, patterns bool) ([]token, *ParseError) {
	rs := []rune(input)
	var toks []token
	emit := func(k tokenKind, start, end int) {
		toks = append(toks, token{kind: k, text: string(rs[start:end]), span: Span{start, end}})
	}
	peek := func(i int) rune {
		if i < len(rs) {
			return rs[i]
		}
		return 0
	}

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isIdentStart(r):
			j := i + 1
			for j < len(rs) && isIdentPart(rs[j]) {
				j++
			}
			switch word := string(rs[i:j]); word {
			case "v":
				emit(tokOr, i, j)
			case "XX":
				emit(tokBottom, i, j)
			default:
				emit(tokIdent, i, j)
			}
			i = j
		case r == '$':
			if !patterns {
				return nil, newError(UnknownOperator, Span{i, i + 1}, "unexpected character %q", r)
			}
			j := i + 1
			for j < len(rs) && isIdentPart(rs[j]) {
				j++
			}
			if j == i+1 {
				return nil, newError(UnexpectedToken, Span{i, j}, "metavariable needs a name")
			}
			toks = append(toks, token{kind: tokMeta, text: string(rs[i+1 : j]), span: Span{i, j}})
			i = j
		case r == '-' && peek(i+1) == '>':
			emit(tokImplies, i, i+2)
			i += 2
		case r == '<' && peek(i+1) == '-' && peek(i+2) == '>':
			emit(tokIff, i, i+3)
			i += 3
		case r == '<' && peek(i+1) == '>':
			emit(tokDiamond, i, i+2)
			i += 2
		case r == '[' && peek(i+1) == ']':
			emit(tokBox, i, i+2)
			i += 2
		case r == '-':
			emit(tokNot, i, i+1)
			i++
		case closing[r] != 0:
			toks = append(toks, token{kind: tokOpen, text: string(r), bracket: r, span: Span{i, i + 1}})
			i++
		case r == ')' || r == ']' || r == '}':
			toks = append(toks, token{kind: tokClose, text: string(r), bracket: r, span: Span{i, i + 1}})
			i++
		default:
			k, ok := runeTokens[r]
			if !ok {
				return nil, newError(UnknownOperator, Span{i, i + 1}, "unexpected character %q", r)
			}
			emit(k, i, i+1)
			i++
		}
	}
	toks = append(toks, token{kind: tokEOF, span: Span{len(rs), len(rs)}})
	return toks, nil
}

func isIdentStart(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\'')
}
