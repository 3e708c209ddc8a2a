package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/fitch/internal/index"
	"github.com/starford/fitch/internal/models"
	"github.com/starford/fitch/internal/proofservice"
	"github.com/starford/fitch/internal/testutil"
)

func testServer(t *testing.T) (*Server, *index.DB) {
	t.Helper()
	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	rec := testutil.TestRecorder(t, db, nil)
	return New(proofservice.NewService(store, db, rec), "test"), db
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" helper, so handlers are called
	// directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "check_proof":
		result, err = srv.checkProof(ctx, req)
	case "parse_sentence":
		result, err = srv.parseSentence(ctx, req)
	case "list_rules":
		result, err = srv.listRules(ctx, req)
	case "read_proof":
		result, err = srv.readProof(ctx, req)
	case "list_proofs":
		result, err = srv.listProofs(ctx, req)
	case "create_proof":
		result, err = srv.createProof(ctx, req)
	case "get_proof_format":
		result, err = srv.getProofFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCheckProof(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "check_proof", map[string]any{"text": testutil.ModusPonens})
	if r.IsError {
		t.Fatalf("check error: %s", resultText(r))
	}
	var out struct {
		Valid    bool `json:"valid"`
		Complete bool `json:"complete"`
	}
	_ = json.Unmarshal([]byte(resultText(r)), &out)
	if !out.Valid || !out.Complete {
		t.Errorf("result = %s", resultText(r))
	}

	r = callTool(t, srv, "check_proof", map[string]any{"text": testutil.WrongRule})
	_ = json.Unmarshal([]byte(resultText(r)), &out)
	if out.Valid {
		t.Error("wrong rule accepted")
	}
}

func TestCheckProof_SystemOverride(t *testing.T) {
	srv, _ := testServer(t)
	text := "□P ; PR\nP ; RT 1\n"

	var out struct {
		Valid bool `json:"valid"`
	}
	r := callTool(t, srv, "check_proof", map[string]any{"text": text, "system": "K"})
	_ = json.Unmarshal([]byte(resultText(r)), &out)
	if out.Valid {
		t.Error("RT accepted in K")
	}
	r = callTool(t, srv, "check_proof", map[string]any{"text": text, "system": "T"})
	_ = json.Unmarshal([]byte(resultText(r)), &out)
	if !out.Valid {
		t.Errorf("RT rejected in T: %s", resultText(r))
	}

	r = callTool(t, srv, "check_proof", map[string]any{"text": text, "system": "KD45"})
	if !r.IsError {
		t.Error("expected error for unknown system")
	}
}

func TestCheckProof_Undecodable(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "check_proof", map[string]any{"text": testutil.Undecodable})
	if !r.IsError {
		t.Error("expected error for depth jump")
	}
}

func TestParseSentence(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "parse_sentence", map[string]any{"sentence": "<>(P v ~Q)"})
	if r.IsError {
		t.Fatalf("parse error: %s", resultText(r))
	}
	var res proofservice.ParseResult
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if res.Canonical != "◇(P ∨ ¬Q)" {
		t.Errorf("canonical = %q", res.Canonical)
	}

	r = callTool(t, srv, "parse_sentence", map[string]any{"sentence": "(P"})
	if !r.IsError {
		t.Error("expected error for unbalanced parenthesis")
	}
}

func TestListRules(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "list_rules", map[string]any{"ruleset": "T"})
	var list []proofservice.RuleInfo
	_ = json.Unmarshal([]byte(resultText(r)), &list)
	if len(list) != 1 || list[0].Symbol != "RT" {
		t.Errorf("T rules = %+v", list)
	}

	r = callTool(t, srv, "list_rules", map[string]any{"ruleset": "quantifiers"})
	if !r.IsError {
		t.Error("expected error for unknown ruleset")
	}
}

func TestCreateAndReadProof(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_proof", map[string]any{
		"path":    "mp.md",
		"content": testutil.ModusPonens,
	})
	if text := resultText(r); text != "created: mp.md" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "create_proof", map[string]any{
		"path":    "mp.md",
		"content": testutil.ModusPonens,
	})
	if !r.IsError {
		t.Error("expected error for duplicate proof")
	}

	r = callTool(t, srv, "read_proof", map[string]any{"path": "mp.md"})
	var got struct {
		Text   string `json:"text"`
		Report *struct {
			Reached bool `json:"reached"`
		} `json:"report"`
	}
	_ = json.Unmarshal([]byte(resultText(r)), &got)
	if got.Text != testutil.ModusPonens {
		t.Errorf("text = %q", got.Text)
	}
	if got.Report == nil || !got.Report.Reached {
		t.Errorf("read result = %s", resultText(r))
	}
}

func TestReadProofMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_proof", map[string]any{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing proof")
	}
}

func TestListProofs(t *testing.T) {
	srv, db := testServer(t)

	r := callTool(t, srv, "list_proofs", map[string]any{})
	if text := resultText(r); text != "no proofs found" {
		t.Errorf("empty list = %q", text)
	}

	_ = callTool(t, srv, "create_proof", map[string]any{"path": "a.md", "content": testutil.ModusPonens})
	_ = callTool(t, srv, "create_proof", map[string]any{"path": "b.md", "content": testutil.WrongRule})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s, err := db.GetProof("b.md"); err == nil && s.Status == models.StatusInvalid {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	r = callTool(t, srv, "list_proofs", map[string]any{"status": "invalid"})
	if text := resultText(r); text != "b.md\tinvalid" {
		t.Errorf("invalid list = %q", text)
	}
	r = callTool(t, srv, "list_proofs", map[string]any{})
	if n := strings.Count(resultText(r), "\n"); n != 1 {
		t.Errorf("list = %q, want 2 lines", resultText(r))
	}
}

func TestGetProofFormat(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_proof_format", nil)
	if !strings.Contains(resultText(r), "SENTENCE ; JUSTIFICATION") {
		t.Error("contract missing line syntax")
	}

	contents, err := srv.readProofFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || tc.URI != formatURI {
		t.Errorf("resource = %+v", contents[0])
	}
}
