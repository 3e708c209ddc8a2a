// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Fitch checker for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/fitch/internal/apperr"
	"github.com/starford/fitch/internal/index"
	"github.com/starford/fitch/internal/metrics"
	"github.com/starford/fitch/internal/models"
	"github.com/starford/fitch/internal/parser"
	"github.com/starford/fitch/internal/proofservice"
)

const formatURI = "fitch://proof-format"

// Server wraps the MCP server with Fitch tools.
type Server struct {
	mcp *server.MCPServer
	svc *proofservice.Service
}

// New creates a new MCP server with all Fitch tools registered.
func New(svc *proofservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Fitch",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("check_proof",
		mcp.WithDescription("Verify a proof written in the vault format (optional YAML front matter, "+
			"then one 'SENTENCE ; JUSTIFICATION' line per step with | bars for depth). "+
			"Returns one diagnostic per line. Read the format via get_proof_format first."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Proof text")),
		mcp.WithString("system", mcp.Description("Modal system overriding the front matter (none, K, T, S4, S5)")),
	), s.checkProof)

	s.mcp.AddTool(mcp.NewTool("parse_sentence",
		mcp.WithDescription("Parse a sentence of modal propositional logic and return its canonical form."),
		mcp.WithString("sentence", mcp.Required(), mcp.Description("Sentence, Unicode or ASCII connectives")),
	), s.parseSentence)

	s.mcp.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("List the inference rules with their symbols, aliases and forms."),
		mcp.WithString("ruleset", mcp.Description("Optional ruleset (core, tfl-basic, tfl-derived, K, T, S4, S5)")),
	), s.listRules)

	s.mcp.AddTool(mcp.NewTool("read_proof",
		mcp.WithDescription("Read a proof file from the vault with its verification report."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the proof (e.g. modal/k.md)")),
	), s.readProof)

	s.mcp.AddTool(mcp.NewTool("list_proofs",
		mcp.WithDescription("List indexed proofs with their latest status."),
		mcp.WithString("status", mcp.Description("Optional status filter (pending, valid, invalid, error)")),
		mcp.WithString("query", mcp.Description("Optional substring of path or title")),
	), s.listProofs)

	s.mcp.AddTool(mcp.NewTool("create_proof",
		mcp.WithDescription("Create a new proof file in the vault. Content MUST follow the proof "+
			"format contract (get_proof_format or the "+formatURI+" resource)."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new proof (must end with .md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Proof file content")),
	), s.createProof)

	s.mcp.AddTool(mcp.NewTool("get_proof_format",
		mcp.WithDescription("Returns the proof file format contract. "+
			"Call this before writing proofs to ensure correct structure."),
	), s.getProofFormat)

	// Resource: proof format contract.
	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Proof Format Contract",
			mcp.WithResourceDescription("Format of proof files and the Fitch line syntax."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readProofFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) checkProof(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := parser.Parse([]byte(text))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if sys := req.GetString("system", ""); sys != "" {
		res.Header.System = sys
	}
	report, err := s.svc.Check(ctx, proofservice.CheckRequest{Header: res.Header, Lines: res.Lines}, metrics.SourceMCP)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"valid":    report.Valid(),
		"complete": report.Complete(),
		"report":   report,
	})
}

func (s *Server) parseSentence(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("sentence")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := s.svc.ParseSentence(text)
	if res.Error != nil {
		return mcp.NewToolResultError(res.Error.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) listRules(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.svc.Rules(req.GetString("ruleset", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(list)
}

func (s *Server) readProof(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.GetProof(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(struct {
		*models.Proof
		Text string `json:"text"`
	}{p, string(p.Content)})
}

func (s *Server) listProofs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, _, err := s.svc.ListProofs(ctx, index.ListOptions{
		Limit:  500,
		Status: models.Status(req.GetString("status", "")),
		Query:  req.GetString("query", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no proofs found"), nil
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%s\t%s", it.Path, it.Status)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) createProof(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := s.svc.CreateProof(ctx, path, []byte(content)); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError(fmt.Sprintf("proof already exists: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) getProofFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ProofFormatContract), nil
}

func (s *Server) readProofFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     ProofFormatContract,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
