package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/playctl/pkg/commands"
	"github.com/ormasoftchile/playctl/pkg/report"
)

// Handlers implements the playctl MCP tools on top of a Service.
// The stdio server dispatches tool calls concurrently; runMu keeps engine
// processes strictly one at a time across calls.
type Handlers struct {
	svc   *commands.Service
	runMu sync.Mutex
}

// NewHandlers binds tool handlers to svc.
func NewHandlers(svc *commands.Service) *Handlers {
	return &Handlers{svc: svc}
}

// session copies the service so concurrent tool calls never share an
// output buffer.
func (h *Handlers) session(out *bytes.Buffer) *commands.Service {
	s := *h.svc
	s.Stdout = out
	s.Options = report.Options{}
	return &s
}

// HandleList implements the playctl/list MCP tool.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	where, _ := args["where"].(string)

	var out bytes.Buffer
	data, err := h.session(&out).List(where, true)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(data), nil
}

// HandleDescribe implements the playctl/describe MCP tool.
func (h *Handlers) HandleDescribe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tokens, err := tokensArg(req.GetArguments())
	if err != nil {
		return errorResult(err.Error()), nil
	}
	var out bytes.Buffer
	data, err := h.session(&out).Describe(tokens, true)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(data), nil
}

// HandleRun implements the playctl/run MCP tool.
func (h *Handlers) HandleRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	tokens, err := tokensArg(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	execute, _ := args["execute"].(bool)

	var out bytes.Buffer
	h.runMu.Lock()
	rep, err := h.session(&out).Execute(ctx, tokens, commands.RunOptions{DryRun: !execute, JSON: true})
	h.runMu.Unlock()
	if err != nil {
		return errorResult(err.Error()), nil
	}

	rr := report.NewRunReport(rep)
	response := map[string]any{
		"outcomes": rr.Outcomes,
		"failed":   rr.Failed,
		"dry_run":  !execute,
	}
	if out.Len() > 0 {
		response["output"] = out.String()
	}
	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("marshal run report: %v", err)), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: rr.Failed > 0,
	}, nil
}

// HandleSchema implements the playctl/schema MCP tool.
func (h *Handlers) HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, _ := req.GetArguments()["kind"].(string)
	data, err := report.Schema(kind)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

// tokensArg accepts either a JSON array of strings or a single
// space-separated string.
func tokensArg(args map[string]any) ([]string, error) {
	var tokens []string
	switch v := args["tokens"].(type) {
	case []any:
		for _, t := range v {
			s, ok := t.(string)
			if !ok {
				return nil, fmt.Errorf("tokens must be strings, got %T", t)
			}
			tokens = append(tokens, s)
		}
	case []string:
		tokens = v
	case string:
		tokens = strings.Fields(v)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("tokens argument is required")
	}
	return tokens, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
