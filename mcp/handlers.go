package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pydup/pydup/domain"
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies(nil, "")
	}
	return &HandlerSet{deps: deps}
}

// HandleDetectClones handles the detect_clones tool
func (h *HandlerSet) HandleDetectClones(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Parse arguments with type assertion
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}

	// Validate path exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	// Load defaults from configuration
	req := domain.DefaultCloneRequest()
	if cfg := h.deps.Config(); cfg != nil {
		req = *cfg.ToCloneRequest(io.Discard)
	}

	// Parse optional parameters, recording which ones the call provided so
	// they win over config file values.
	explicit := []string{}
	if ml, ok := args["min_lines"].(float64); ok {
		req.MinLines = int(ml)
		explicit = append(explicit, "min-lines")
	}
	if st, ok := args["similarity_threshold"].(float64); ok {
		req.SimilarityThreshold = st
		explicit = append(explicit, "similarity-threshold")
	}
	if mr, ok := args["max_results"].(float64); ok {
		req.MaxResults = int(mr)
		explicit = append(explicit, "max-results")
	}
	if rawTypes, ok := args["clone_types"].([]interface{}); ok {
		names := make([]string, 0, len(rawTypes))
		for _, rt := range rawTypes {
			if s, ok := rt.(string); ok {
				names = append(names, s)
			}
		}
		if len(names) > 0 {
			types, err := domain.ParseCloneTypes(names)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			req.EnabledCloneTypes = types
			explicit = append(explicit, "clone-types")
		}
	}

	req.Paths = []string{path}
	req.ConfigPath = h.deps.ConfigPath()
	req.OutputFormat = domain.OutputFormatJSON
	req.OutputWriter = io.Discard
	req.NoProgress = true

	// Build use case with all required dependencies
	useCase, err := h.deps.BuildScanUseCase(explicit...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create detector: %v", err)), nil
	}

	// Execute analysis
	report, err := useCase.ExecuteAndReturn(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("clone detection failed: %v", err)), nil
	}

	// Parse output_mode parameter (default: "summary")
	outputMode := "summary"
	if om, ok := args["output_mode"].(string); ok {
		outputMode = om
	}

	// Format output based on mode
	var responseData interface{}
	switch outputMode {
	case "full":
		responseData = report
	default: // "summary"
		responseData = formatScanSummary(report, req.MaxResults)
	}

	// Convert to JSON
	jsonData, err := json.Marshal(responseData)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// HandleCompareFragments handles the compare_fragments tool
func (h *HandlerSet) HandleCompareFragments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	fragmentA, ok := args["fragment_a"].(string)
	if !ok || fragmentA == "" {
		return mcp.NewToolResultError("fragment_a parameter is required and must be a non-empty string"), nil
	}

	fragmentB, ok := args["fragment_b"].(string)
	if !ok || fragmentB == "" {
		return mcp.NewToolResultError("fragment_b parameter is required and must be a non-empty string"), nil
	}

	useCase, err := h.deps.BuildScanUseCase()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create detector: %v", err)), nil
	}

	comparison, err := useCase.CompareFragments(ctx, fragmentA, fragmentB)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fragment comparison failed: %v", err)), nil
	}

	jsonData, err := json.Marshal(comparison)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// formatScanSummary formats a clone report in compact summary mode. Each
// issue pairs a group member with the group's first instance.
func formatScanSummary(report *domain.CloneDetectionReport, maxResults int) map[string]interface{} {
	issues := []string{}
	filesWithClones := make(map[string]bool)

	for _, group := range report.CloneGroups {
		if len(group.Instances) == 0 {
			continue
		}
		first := group.Instances[0]
		for _, instance := range group.Instances {
			filesWithClones[instance.Location.FilePath] = true
		}
		for _, instance := range group.Instances[1:] {
			if maxResults > 0 && len(issues) >= maxResults {
				continue
			}
			// Format: "file:line: Type-N clone of file:line (similarity%)"
			issue := fmt.Sprintf("%s:%d: %s clone of %s:%d (%.1f%%)",
				instance.Location.FilePath,
				instance.Location.StartLine,
				group.Type.String(),
				first.Location.FilePath,
				first.Location.StartLine,
				instance.Similarity*100)
			issues = append(issues, issue)
		}
	}

	return map[string]interface{}{
		"issues": issues,
		"summary": map[string]interface{}{
			"total_clone_groups":     len(report.CloneGroups),
			"total_cloned_fragments": report.TotalClones(),
			"files_with_clones":      len(filesWithClones),
			"duplicated_lines":       report.TotalDuplicatedLines,
			"files_scanned":          report.TotalFiles,
		},
	}
}
