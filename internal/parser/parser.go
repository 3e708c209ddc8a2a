// Package parser reads and writes proof files: YAML front matter describing
// the logic followed by a Fitch body, optionally fenced as ```proof.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/starford/fitch/internal/apperr"
	"github.com/starford/fitch/internal/modal"
	"github.com/starford/fitch/internal/proof"
	"github.com/starford/fitch/internal/rules"
	"github.com/starford/fitch/internal/sentence"
	"github.com/starford/fitch/internal/verify"
)

// CurrentFormat is written into new proof files.
const CurrentFormat = "1.0"

const fence = "```proof"

var formatConstraint = mustConstraint(">= 1.0, < 2.0")

func mustConstraint(c string) *semver.Constraints {
	out, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return out
}

// Header is the front matter of a proof file.
type Header struct {
	Title      string   `yaml:"title,omitempty" json:"title,omitempty"`
	Format     string   `yaml:"format,omitempty" json:"format,omitempty"`
	System     string   `yaml:"system,omitempty" json:"system,omitempty"`
	Rulesets   []string `yaml:"rulesets,omitempty" json:"rulesets,omitempty"`
	Premises   []string `yaml:"premises,omitempty" json:"premises,omitempty"`
	Conclusion string   `yaml:"conclusion,omitempty" json:"conclusion,omitempty"`
}

// Result holds the output of parsing a proof file.
type Result struct {
	Header Header
	// Prose is the text before the proof block.
	Prose string
	Lines []proof.FlatLine
	// Fenced reports whether the lines came from a ```proof block.
	Fenced bool
}

// Parse splits front matter from the body and reads the proof lines. A file
// without a ```proof block is read as a bare body.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	if err := checkFormat(fm.Format); err != nil {
		return nil, err
	}

	r := &Result{Header: fm}
	prose, block, ok := findBlock(body)
	if ok {
		r.Prose, r.Fenced = prose, true
		body = block
	}
	r.Lines = ParseBody(body)
	return r, nil
}

// Document builds the proof document of r.
func (r *Result) Document() (*proof.Document, error) {
	return proof.Build(r.Lines)
}

// Config resolves the header into a verification config. Unset fields fall
// back to def.
func (h Header) Config(def verify.Config) (verify.Config, error) {
	cfg := def
	if h.System != "" {
		sys, err := modal.ParseSystem(h.System)
		if err != nil {
			return cfg, fmt.Errorf("parser: system: %w: %w", apperr.ErrInvalidProof, err)
		}
		cfg.System = sys
	}
	if len(h.Rulesets) > 0 {
		cfg.Rulesets = make([]rules.Ruleset, 0, len(h.Rulesets))
		for _, name := range h.Rulesets {
			rs, err := rules.ParseRuleset(name)
			if err != nil {
				return cfg, fmt.Errorf("parser: rulesets: %w: %w", apperr.ErrInvalidProof, err)
			}
			cfg.Rulesets = append(cfg.Rulesets, rs)
		}
	}
	if h.Conclusion != "" {
		s, err := sentence.Parse(h.Conclusion)
		if err != nil {
			return cfg, fmt.Errorf("parser: conclusion: %w: %w", apperr.ErrInvalidProof, err)
		}
		cfg.Conclusion = s
	}
	return cfg, nil
}

func checkFormat(format string) error {
	if format == "" {
		return nil
	}
	v, err := semver.NewVersion(format)
	if err != nil {
		return fmt.Errorf("parser: format %q: %w", format, apperr.ErrInvalidProof)
	}
	if !formatConstraint.Check(v) {
		return fmt.Errorf("parser: unsupported format %s: %w", v, apperr.ErrInvalidProof)
	}
	return nil
}

// splitFrontmatter separates YAML front matter (between leading ---
// delimiters) from the body. Without front matter the whole input is body.
func splitFrontmatter(data []byte) (Header, string, error) {
	const delim = "---"
	var h Header
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return h, string(data), nil
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return h, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	if err := yaml.Unmarshal(yamlBlock, &h); err != nil {
		return h, "", fmt.Errorf("parser: front matter: %w: %w", apperr.ErrInvalidProof, err)
	}
	return h, body, nil
}

// findBlock returns the text before the first ```proof fence and the
// fenced content. An unterminated fence runs to the end of the body.
func findBlock(body string) (prose, block string, ok bool) {
	start := -1
	lines := strings.SplitAfter(body, "\n")
	var pre, in strings.Builder
	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		switch {
		case start < 0 && trimmed == fence:
			start = i
		case start < 0:
			pre.WriteString(l)
		case trimmed == "```":
			return strings.TrimRight(pre.String(), "\n"), in.String(), true
		default:
			in.WriteString(l)
		}
	}
	if start < 0 {
		return "", "", false
	}
	return strings.TrimRight(pre.String(), "\n"), in.String(), true
}

// ParseBody reads one proof line per non-blank line of body: leading | bars
// give the depth, then the sentence, a semicolon and the justification.
func ParseBody(body string) []proof.FlatLine {
	var out []proof.FlatLine
	for _, raw := range strings.Split(body, "\n") {
		l := strings.TrimSpace(raw)
		if l == "" {
			continue
		}
		depth := 0
		for strings.HasPrefix(l, "|") {
			depth++
			l = strings.TrimSpace(l[1:])
		}
		s, j, _ := strings.Cut(l, ";")
		out = append(out, proof.FlatLine{
			Depth:         depth,
			Sentence:      strings.TrimSpace(s),
			Justification: strings.TrimSpace(j),
		})
	}
	return out
}

// FormatBody writes lines in the body syntax read by ParseBody.
func FormatBody(lines []proof.FlatLine) string {
	var b strings.Builder
	for _, l := range lines {
		for range l.Depth {
			b.WriteString("| ")
		}
		b.WriteString(l.Sentence)
		b.WriteString(" ; ")
		b.WriteString(l.Justification)
		b.WriteByte('\n')
	}
	return b.String()
}

// Encode writes r as a proof file with front matter and a fenced body.
func Encode(r *Result) ([]byte, error) {
	h := r.Header
	if h.Format == "" {
		h.Format = CurrentFormat
	}
	fm, err := yaml.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("parser: encode front matter: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n")
	if r.Prose != "" {
		b.WriteString(r.Prose)
		b.WriteString("\n\n")
	}
	b.WriteString(fence + "\n")
	b.WriteString(FormatBody(r.Lines))
	b.WriteString("```\n")
	return b.Bytes(), nil
}
