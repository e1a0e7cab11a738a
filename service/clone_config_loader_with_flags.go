package service

import (
	"github.com/pydup/pydup/domain"
)

// MergeConfig overlays override onto base, taking override values only for
// flags the user set explicitly. Positional values (paths, writers, output
// destinations) always carry over from the override.
func (c *CloneConfigurationLoaderImpl) MergeConfig(base *domain.CloneRequest, override *domain.CloneRequest) *domain.CloneRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base

	// Paths come from command arguments, never from config files.
	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}

	merged.Recursive = c.flagTracker.MergeBool(merged.Recursive, override.Recursive, "recursive")
	merged.IncludePatterns = c.flagTracker.MergeStringSlice(merged.IncludePatterns, override.IncludePatterns, "include")
	merged.ExcludePatterns = c.flagTracker.MergeStringSlice(merged.ExcludePatterns, override.ExcludePatterns, "exclude")

	merged.MinLines = c.flagTracker.MergeInt(merged.MinLines, override.MinLines, "min-lines")
	merged.MinNodes = c.flagTracker.MergeInt(merged.MinNodes, override.MinNodes, "min-nodes")
	merged.SimilarityThreshold = c.flagTracker.MergeFloat64(merged.SimilarityThreshold, override.SimilarityThreshold, "similarity-threshold")

	if c.flagTracker.WasSet("clone-types") && len(override.EnabledCloneTypes) > 0 {
		merged.EnabledCloneTypes = override.EnabledCloneTypes
	}

	merged.MinSimilarity = c.flagTracker.MergeFloat64(merged.MinSimilarity, override.MinSimilarity, "min-similarity")
	merged.MaxResults = c.flagTracker.MergeInt(merged.MaxResults, override.MaxResults, "max-results")

	if c.flagTracker.WasSet("format") {
		merged.OutputFormat = override.OutputFormat
	}
	if c.flagTracker.WasSet("sort") {
		merged.SortBy = override.SortBy
	}
	merged.ShowDetails = c.flagTracker.MergeBool(merged.ShowDetails, override.ShowDetails, "details")
	merged.NoProgress = c.flagTracker.MergeBool(merged.NoProgress, override.NoProgress, "no-progress")

	// The output writer and destination are produced by the command, not
	// read from config files.
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}

	if c.flagTracker.WasSet("lsh") {
		merged.LSHMode = override.LSHMode
	}
	merged.LSHThreshold = c.flagTracker.MergeInt(merged.LSHThreshold, override.LSHThreshold, "lsh-threshold")
	merged.Workers = c.flagTracker.MergeInt(merged.Workers, override.Workers, "workers")
	merged.Timeout = c.flagTracker.MergeDuration(merged.Timeout, override.Timeout, "timeout")

	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	return &merged
}
