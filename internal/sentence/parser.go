package sentence

import (
	"fmt"
)

// ErrorCode classifies a ParseError.
type ErrorCode string

// Parse error codes.
const (
	EmptyInput      ErrorCode = "empty_input"
	UnexpectedToken ErrorCode = "unexpected_token"
	UnmatchedGroup  ErrorCode = "unmatched_group"
	UnknownOperator ErrorCode = "unknown_operator"
)

// ParseError describes why a sentence could not be parsed.
type ParseError struct {
	Code ErrorCode `json:"code"`
	Span Span      `json:"span"`
	Msg  string    `json:"message"`
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sentence: %s at %d-%d: %s", e.Code, e.Span.Start, e.Span.End, e.Msg)
}

func newError(code ErrorCode, span Span, format string, args ...any) *ParseError {
	return &ParseError{Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// Parse parses a single sentence. On failure the returned error is a
// *ParseError and the sentence is nil.
func Parse(input string) (*Sentence, error) {
	s, err := parse(input, false)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// static tables.
func MustParse(input string) *Sentence {
	s, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return s
}

// ParsePattern parses a rule pattern: the sentence grammar plus $name
// metavariables.
func ParsePattern(input string) (*Sentence, error) {
	s, err := parse(input, true)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func parse(input string, patterns bool) (*Sentence, *ParseError) {
	toks, perr := lex(input, patterns)
	if perr != nil {
		return nil, perr
	}
	if toks[0].kind == tokEOF {
		return nil, newError(EmptyInput, toks[0].span, "empty sentence")
	}
	if len(toks) == 2 && toks[0].kind == tokBox {
		return Marker(), nil
	}

	p := &parser{toks: toks}
	s, perr := p.parseIff()
	if perr != nil {
		return nil, perr
	}
	if t := p.peek(); t.kind != tokEOF {
		if t.kind == tokClose {
			return nil, newError(UnmatchedGroup, t.span, "unmatched %q", t.bracket)
		}
		return nil, newError(UnexpectedToken, t.span, "unexpected %s", describe(t))
	}
	return s, nil
}

// parser is a recursive-descent parser with one level per precedence tier:
// ↔ (right), → (right), ∨ (left), ∧ (left), prefix operators.
type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseIff() (*Sentence, *ParseError) {
	left, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokIff {
		return left, nil
	}
	p.next()
	right, err := p.parseIff()
	if err != nil {
		return nil, err
	}
	return Iff(left, right), nil
}

func (p *parser) parseImplies() (*Sentence, *ParseError) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokImplies {
		return left, nil
	}
	p.next()
	right, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	return Implies(left, right), nil
}

func (p *parser) parseOr() (*Sentence, *ParseError) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or(left, right)
	}
	return left, nil
}

func (p *parser) parseAnd() (*Sentence, *ParseError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = And(left, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (*Sentence, *ParseError) {
	t := p.next()
	switch t.kind {
	case tokNot, tokBox, tokDiamond:
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary(unaryKinds[t.kind], operand), nil
	case tokIdent:
		return Atom(t.text), nil
	case tokMeta:
		return Meta(t.text), nil
	case tokBottom:
		return Bottom(), nil
	case tokOpen:
		inner, err := p.parseIff()
		if err != nil {
			return nil, err
		}
		c := p.peek()
		if c.kind != tokClose || c.bracket != closing[t.bracket] {
			return nil, newError(UnmatchedGroup, t.span, "unclosed %q", t.bracket)
		}
		p.next()
		return inner, nil
	case tokClose:
		return nil, newError(UnmatchedGroup, t.span, "unmatched %q", t.bracket)
	case tokEOF:
		return nil, newError(UnexpectedToken, t.span, "unexpected end of input")
	default:
		return nil, newError(UnexpectedToken, t.span, "unexpected %s", describe(t))
	}
}

var unaryKinds = map[tokenKind]Kind{
	tokNot:     KindNot,
	tokBox:     KindBox,
	tokDiamond: KindDiamond,
}

func describe(t token) string {
	if t.text != "" {
		return fmt.Sprintf("%q", t.text)
	}
	return t.kind.String()
}
