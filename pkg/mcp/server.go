// Package mcp exposes playctl's list, describe and run commands as MCP tools
// so agents can drive playbooks over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/playctl/pkg/commands"
)

// NewServer creates an MCP server with playctl tools registered against svc.
func NewServer(version string, svc *commands.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"playctl",
		version,
		server.WithToolCapabilities(true),
	)
	h := NewHandlers(svc)

	s.AddTool(
		mcp.NewTool("playctl/list",
			mcp.WithDescription("List the playbooks in the playbook directory with their ordinals"),
			mcp.WithString("where", mcp.Description("Optional filter expression over ordinal, file, name and vars")),
		),
		h.HandleList,
	)

	s.AddTool(
		mcp.NewTool("playctl/describe",
			mcp.WithDescription("Show the declared name and templated variables of playbooks"),
			mcp.WithArray("tokens", mcp.Required(), mcp.WithStringItems(),
				mcp.Description("Playbook file names, ordinals or ranges such as 2-4")),
		),
		h.HandleDescribe,
	)

	s.AddTool(
		mcp.NewTool("playctl/run",
			mcp.WithDescription("Run playbooks with the engine (dry-run unless execute is true)"),
			mcp.WithArray("tokens", mcp.Required(), mcp.WithStringItems(),
				mcp.Description("Playbook tokens; file names may carry ,KEY=VALUE overrides")),
			mcp.WithBoolean("execute", mcp.Description("Actually run the engine instead of a dry run")),
		),
		h.HandleRun,
	)

	s.AddTool(
		mcp.NewTool("playctl/schema",
			mcp.WithDescription("Export the JSON Schema of a playctl JSON report"),
			mcp.WithString("kind", mcp.Required(), mcp.Description("Report kind: list, describe or run")),
		),
		h.HandleSchema,
	)

	return s
}
