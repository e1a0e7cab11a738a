package config

import (
	"fmt"
	"io"
	"time"

	"github.com/pydup/pydup/domain"
)

// ToCloneRequest converts a file-level CloneConfig into the domain request
// the detection service consumes. Unknown clone type strings are dropped;
// Validate on the config catches them before this point.
func (c *CloneConfig) ToCloneRequest(outputWriter io.Writer) *domain.CloneRequest {
	cloneTypes := make([]domain.CloneType, 0, len(c.Analysis.EnabledCloneTypes))
	for _, typeStr := range c.Analysis.EnabledCloneTypes {
		ct, err := domain.ParseCloneType(typeStr)
		if err != nil {
			continue
		}
		cloneTypes = append(cloneTypes, ct)
	}

	return &domain.CloneRequest{
		Paths:           c.Input.Paths,
		Recursive:       c.Input.Recursive,
		IncludePatterns: c.Input.IncludePatterns,
		ExcludePatterns: c.Input.ExcludePatterns,

		MinLines:            c.Analysis.MinLines,
		MinNodes:            c.Analysis.MinNodes,
		SimilarityThreshold: c.Analysis.SimilarityThreshold,
		EnabledCloneTypes:   cloneTypes,

		MinSimilarity: c.Filtering.MinSimilarity,
		MaxResults:    c.Filtering.MaxResults,

		OutputFormat: domain.OutputFormat(c.Output.Format),
		OutputWriter: outputWriter,
		ShowDetails:  c.Output.ShowDetails,
		SortBy:       domain.CloneSortCriteria(c.Output.SortBy),

		LSHMode:      c.LSH.Enabled,
		LSHThreshold: c.LSH.AutoThreshold,
		Workers:      c.Performance.Workers,
		Timeout:      time.Duration(c.Performance.TimeoutSeconds) * time.Second,
	}
}

// FromCloneRequest builds a CloneConfig from a domain request, starting from
// defaults so fields the request does not carry keep their standard values.
func FromCloneRequest(request *domain.CloneRequest) *CloneConfig {
	config := DefaultCloneConfig()

	config.Input.Paths = request.Paths
	config.Input.Recursive = request.Recursive
	config.Input.IncludePatterns = request.IncludePatterns
	config.Input.ExcludePatterns = request.ExcludePatterns

	config.Analysis.MinLines = request.MinLines
	config.Analysis.MinNodes = request.MinNodes
	config.Analysis.SimilarityThreshold = request.SimilarityThreshold

	config.Analysis.EnabledCloneTypes = make([]string, 0, len(request.EnabledCloneTypes))
	for _, cloneType := range request.EnabledCloneTypes {
		config.Analysis.EnabledCloneTypes = append(config.Analysis.EnabledCloneTypes,
			fmt.Sprintf("type%d", int(cloneType)))
	}

	config.Filtering.MinSimilarity = request.MinSimilarity
	config.Filtering.MaxResults = request.MaxResults

	if request.OutputFormat != "" {
		config.Output.Format = string(request.OutputFormat)
	}
	config.Output.ShowDetails = request.ShowDetails
	if request.SortBy != "" {
		config.Output.SortBy = string(request.SortBy)
	}
	config.Output.Writer = request.OutputWriter

	if request.LSHMode != "" {
		config.LSH.Enabled = request.LSHMode
	}
	if request.LSHThreshold > 0 {
		config.LSH.AutoThreshold = request.LSHThreshold
	}
	if request.Workers > 0 {
		config.Performance.Workers = request.Workers
	}
	if request.Timeout > 0 {
		config.Performance.TimeoutSeconds = int(request.Timeout / time.Second)
	}

	return config
}
