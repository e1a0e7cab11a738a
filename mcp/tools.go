package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all pydup MCP tools with the server using a
// default handler set.
func RegisterTools(s *server.MCPServer) {
	RegisterToolsWithHandlers(s, NewHandlerSet(NewDependencies(nil, "")))
}

// RegisterToolsWithHandlers registers all pydup MCP tools backed by the
// given handler set.
func RegisterToolsWithHandlers(s *server.MCPServer, h *HandlerSet) {
	// Tool 1: detect_clones - Code clone detection
	s.AddTool(mcp.NewTool("detect_clones",
		mcp.WithDescription("Detect duplicated Python code (Type-1 exact, Type-2 renamed, Type-3 near-miss, Type-4 semantic clones)"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to Python code (file or directory) to analyze")),
		mcp.WithNumber("min_lines",
			mcp.Description("Minimum fragment size in lines (default: 5)")),
		mcp.WithNumber("similarity_threshold",
			mcp.Description("Minimum similarity for near-miss clones 0.0-1.0 (default: 0.7)")),
		mcp.WithArray("clone_types",
			mcp.WithStringEnumItems([]string{"type1", "type2", "type3", "type4"}),
			mcp.Description("Clone types to report. Default: all four types")),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum clone groups to report, 0 = unlimited (default: 0)")),
		mcp.WithString("output_mode",
			mcp.Description("Response shape: summary or full (default: summary)")),
	), h.HandleDetectClones)

	// Tool 2: compare_fragments - Pairwise snippet comparison
	s.AddTool(mcp.NewTool("compare_fragments",
		mcp.WithDescription("Compare two Python snippets and report their similarity and clone verdict"),
		mcp.WithString("fragment_a",
			mcp.Required(),
			mcp.Description("First Python snippet")),
		mcp.WithString("fragment_b",
			mcp.Required(),
			mcp.Description("Second Python snippet")),
	), h.HandleCompareFragments)
}
