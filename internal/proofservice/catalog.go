package proofservice

import (
	"errors"

	"github.com/starford/fitch/internal/rules"
	"github.com/starford/fitch/internal/sentence"
)

// ParseResult describes a parsed sentence, or the error that stopped the
// parser.
type ParseResult struct {
	Input     string               `json:"input"`
	Canonical string               `json:"canonical,omitempty"`
	ASCII     string               `json:"ascii,omitempty"`
	Kind      string               `json:"kind,omitempty"`
	Atoms     []string             `json:"atoms,omitempty"`
	Error     *sentence.ParseError `json:"error,omitempty"`
}

// ParseSentence parses text in any accepted spelling.
func (s *Service) ParseSentence(text string) ParseResult {
	out := ParseResult{Input: text}
	st, err := sentence.Parse(text)
	if err != nil {
		var pe *sentence.ParseError
		if errors.As(err, &pe) {
			out.Error = pe
		} else {
			out.Error = &sentence.ParseError{Msg: err.Error()}
		}
		return out
	}
	out.Canonical = sentence.Format(st, sentence.StyleUnicode)
	out.ASCII = sentence.Format(st, sentence.StyleASCII)
	out.Kind = st.Kind().String()
	out.Atoms = sentence.Atoms(st)
	return out
}

// RuleInfo describes one catalog entry.
type RuleInfo struct {
	ID          rules.ID      `json:"id"`
	Symbol      string        `json:"symbol"`
	Aliases     []string      `json:"aliases,omitempty"`
	Ruleset     rules.Ruleset `json:"ruleset"`
	Forms       []string      `json:"forms"`
	Description string        `json:"description,omitempty"`
}

// Rules lists the catalog, optionally restricted to one ruleset.
func (s *Service) Rules(ruleset string) ([]RuleInfo, error) {
	return ListRules(ruleset)
}

// ListRules lists the default catalog, optionally restricted to one ruleset.
func ListRules(ruleset string) ([]RuleInfo, error) {
	cat := rules.Default()
	defs := cat.Definitions()
	if ruleset != "" {
		rs, err := rules.ParseRuleset(ruleset)
		if err != nil {
			return nil, err
		}
		defs = cat.InRuleset(rs)
	}
	out := make([]RuleInfo, len(defs))
	for i, d := range defs {
		forms := make([]string, len(d.Forms))
		for j, f := range d.Forms {
			forms[j] = f.String()
		}
		out[i] = RuleInfo{
			ID:          d.ID,
			Symbol:      d.Symbol,
			Aliases:     d.Aliases,
			Ruleset:     d.Ruleset,
			Forms:       forms,
			Description: d.Description,
		}
	}
	return out, nil
}
