package proof

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// maxLineNumber bounds citation numbers.
const maxLineNumber = 1 << 20

// Citation refers to a line (Start == End) or a subproof (Start < End) by
// position. A zero citation was invalidated by an edit.
type Citation struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Range reports whether c cites a subproof.
func (c Citation) Range() bool { return c.End != c.Start }

// Covers reports whether line n falls inside c.
func (c Citation) Covers(n int) bool { return c.Start <= n && n <= c.End }

func (c Citation) String() string {
	if c.Range() {
		return fmt.Sprintf("%d-%d", c.Start, c.End)
	}
	return strconv.Itoa(c.Start)
}

// JustificationError reports malformed justification text.
type JustificationError struct {
	Text string
	Msg  string
}

func (e *JustificationError) Error() string {
	return fmt.Sprintf("proof: justification %q: %s", e.Text, e.Msg)
}

// Justification is the rule name and citations of a line.
type Justification struct {
	Rule      string
	Citations []Citation
	// Raw holds the text as written; it is kept when the text does not parse.
	Raw string
	Err error
}

var (
	citationSep = regexp.MustCompile(`[;,\s]+`)
	rangeSep    = regexp.MustCompile(`^(\d+)\s*[-–—]\s*(\d+)$`)
	lineNumber  = regexp.MustCompile(`^\d+$`)
	// dashSpace lets "2 - 4" read as one range.
	dashSpace = regexp.MustCompile(`\s*([-–—])\s*`)
)

// ParseJustification parses text of the form "RULE 1, 2-4 5". Errors are
// recorded on the returned value rather than returned.
func ParseJustification(text string) Justification {
	j := Justification{Raw: text}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		j.Err = &JustificationError{Text: text, Msg: "missing rule"}
		return j
	}

	rule, rest := trimmed, ""
	if i := strings.IndexFunc(trimmed, unicode.IsSpace); i >= 0 {
		rule, rest = trimmed[:i], trimmed[i:]
	}
	j.Rule = rule

	rest = dashSpace.ReplaceAllString(strings.TrimSpace(rest), "$1")
	if rest == "" {
		return j
	}
	for _, part := range citationSep.Split(rest, -1) {
		if part == "" {
			continue
		}
		c, err := parseCitation(part)
		if err != nil {
			j.Err = &JustificationError{Text: text, Msg: err.Error()}
			j.Citations = nil
			return j
		}
		j.Citations = append(j.Citations, c)
	}
	return j
}

func parseCitation(part string) (Citation, error) {
	if lineNumber.MatchString(part) {
		n, err := lineNo(part)
		if err != nil {
			return Citation{}, err
		}
		return Citation{Start: n, End: n}, nil
	}
	m := rangeSep.FindStringSubmatch(part)
	if m == nil {
		return Citation{}, fmt.Errorf("bad citation %q", part)
	}
	start, err := lineNo(m[1])
	if err != nil {
		return Citation{}, err
	}
	end, err := lineNo(m[2])
	if err != nil {
		return Citation{}, err
	}
	if end <= start {
		return Citation{}, fmt.Errorf("bad line range %q", part)
	}
	return Citation{Start: start, End: end}, nil
}

func lineNo(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n > maxLineNumber {
		return 0, fmt.Errorf("line number %q out of range", s)
	}
	if n == 0 {
		return 0, fmt.Errorf("line numbers start at 1")
	}
	return n, nil
}

// String renders the justification in canonical form. Malformed text is
// returned unchanged.
func (j Justification) String() string {
	if j.Err != nil || j.Rule == "" {
		return j.Raw
	}
	if len(j.Citations) == 0 {
		return j.Rule
	}
	parts := make([]string, len(j.Citations))
	for i, c := range j.Citations {
		parts[i] = c.String()
	}
	return j.Rule + " " + strings.Join(parts, ", ")
}
