package parser

import (
	"errors"
	"testing"

	"github.com/starford/fitch/internal/apperr"
	"github.com/starford/fitch/internal/modal"
	"github.com/starford/fitch/internal/proof"
	"github.com/starford/fitch/internal/rules"
	"github.com/starford/fitch/internal/verify"
)

const modusPonens = "---\ntitle: Modus ponens\nformat: \"1.0\"\nsystem: K\nrulesets: [tfl-basic]\nconclusion: Q\n---\nFrom a conditional and its antecedent.\n\n```proof\nP -> Q ; PR\nP ; PR\nQ ; ->E 1, 2\n```\n"

func TestParse_FrontmatterAndBlock(t *testing.T) {
	r, err := Parse([]byte(modusPonens))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Header.Title != "Modus ponens" {
		t.Errorf("title = %q, want %q", r.Header.Title, "Modus ponens")
	}
	if r.Header.System != "K" || len(r.Header.Rulesets) != 1 {
		t.Errorf("header = %+v", r.Header)
	}
	if r.Prose != "From a conditional and its antecedent." {
		t.Errorf("prose = %q", r.Prose)
	}
	if !r.Fenced {
		t.Error("expected fenced body")
	}
	if len(r.Lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(r.Lines))
	}
	if r.Lines[2].Sentence != "Q" || r.Lines[2].Justification != "->E 1, 2" {
		t.Errorf("line 3 = %+v", r.Lines[2])
	}
}

func TestParse_BareBody(t *testing.T) {
	r, err := Parse([]byte("P ; PR\n| Q ; PR\n| P ; R 1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Fenced {
		t.Error("bare body reported as fenced")
	}
	if len(r.Lines) != 3 || r.Lines[1].Depth != 1 || r.Lines[2].Depth != 1 {
		t.Errorf("lines = %+v", r.Lines)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("---\n: invalid: yaml: {{{\n---\nP ; PR\n"))
	if !errors.Is(err, apperr.ErrInvalidProof) {
		t.Errorf("err = %v, want ErrInvalidProof", err)
	}
}

func TestParse_Format(t *testing.T) {
	cases := []struct {
		format string
		ok     bool
	}{
		{"", true},
		{"1.0", true},
		{"1.4.2", true},
		{"2.0", false},
		{"0.9", false},
		{"latest", false},
	}
	for _, tc := range cases {
		data := []byte("---\nformat: \"" + tc.format + "\"\n---\nP ; PR\n")
		_, err := Parse(data)
		if tc.ok && err != nil {
			t.Errorf("format %q: unexpected error %v", tc.format, err)
		}
		if !tc.ok && !errors.Is(err, apperr.ErrInvalidProof) {
			t.Errorf("format %q: err = %v, want ErrInvalidProof", tc.format, err)
		}
	}
}

func TestParseBody_DepthAndSeparators(t *testing.T) {
	lines := ParseBody("  | | ◇P ; ∨E 1; 2-3 \n\n|□ ; PR\nP")
	if len(lines) != 3 {
		t.Fatalf("len = %d, want 3", len(lines))
	}
	if lines[0].Depth != 2 || lines[0].Sentence != "◇P" || lines[0].Justification != "∨E 1; 2-3" {
		t.Errorf("line 1 = %+v", lines[0])
	}
	if lines[1].Depth != 1 || lines[1].Sentence != "□" {
		t.Errorf("line 2 = %+v", lines[1])
	}
	if lines[2].Justification != "" {
		t.Errorf("line 3 justification = %q, want empty", lines[2].Justification)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	r, err := Parse([]byte(modusPonens))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	data, err := Encode(r)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	again, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse encoded: %v", err)
	}
	if again.Header.Title != r.Header.Title || again.Prose != r.Prose {
		t.Errorf("header/prose changed: %+v %q", again.Header, again.Prose)
	}
	if len(again.Lines) != len(r.Lines) {
		t.Fatalf("lines changed: %+v", again.Lines)
	}
	for i := range r.Lines {
		if again.Lines[i] != r.Lines[i] {
			t.Errorf("line %d = %+v, want %+v", i+1, again.Lines[i], r.Lines[i])
		}
	}
}

func TestEncode_StrictSubproofRoundTrip(t *testing.T) {
	body := "□P ; PR\n| □ ; PR\n| P ; □E 1\n| □ ; PR\n| Q ; PR\n□P ; □I 2-3\n"
	r, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	d, err := r.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}

	data, err := Encode(&Result{Lines: d.Flatten()})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	again, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse encoded: %v", err)
	}
	d2, err := again.Document()
	if err != nil {
		t.Fatalf("Document encoded: %v", err)
	}

	subs, subs2 := d.Subproofs(), d2.Subproofs()
	if len(subs) != 3 || len(subs2) != len(subs) {
		t.Fatalf("subproofs = %d then %d, want 3", len(subs), len(subs2))
	}
	for i := range subs {
		if subs[i].Modal != subs2[i].Modal || subs[i].Start != subs2[i].Start || subs[i].End != subs2[i].End {
			t.Errorf("subproof %d = %+v, want %+v", i, subs2[i], subs[i])
		}
	}
	if !subs2[0].Modal || !subs2[1].Modal || subs2[2].Modal {
		t.Errorf("strictness lost: %v %v %v", subs2[0].Modal, subs2[1].Modal, subs2[2].Modal)
	}
}

func TestEncode_DefaultsFormat(t *testing.T) {
	data, err := Encode(&Result{Lines: []proof.FlatLine{{Sentence: "P", Justification: "PR"}}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	r, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Header.Format != CurrentFormat {
		t.Errorf("format = %q, want %q", r.Header.Format, CurrentFormat)
	}
}

func TestHeader_Config(t *testing.T) {
	r, err := Parse([]byte(modusPonens))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg, err := r.Header.Config(verify.Config{System: modal.S5})
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.System != modal.K {
		t.Errorf("system = %s, want K", cfg.System)
	}
	if len(cfg.Rulesets) != 1 || cfg.Rulesets[0] != rules.TFLBasic {
		t.Errorf("rulesets = %v", cfg.Rulesets)
	}
	if cfg.Conclusion == nil || cfg.Conclusion.String() != "Q" {
		t.Errorf("conclusion = %v", cfg.Conclusion)
	}

	d, err := r.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if rep := verify.Verify(d, cfg); !rep.Complete() {
		t.Errorf("report = %+v", rep)
	}
}

func TestHeader_ConfigErrors(t *testing.T) {
	for _, h := range []Header{
		{System: "KD45"},
		{Rulesets: []string{"quantifiers"}},
		{Conclusion: "P ∧"},
	} {
		if _, err := h.Config(verify.Config{}); !errors.Is(err, apperr.ErrInvalidProof) {
			t.Errorf("%+v: err = %v, want ErrInvalidProof", h, err)
		}
	}
}
