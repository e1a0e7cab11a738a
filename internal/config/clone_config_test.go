package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCloneConfig(t *testing.T) {
	config := DefaultCloneConfig()

	assert.Equal(t, 5, config.Analysis.MinLines)
	assert.Equal(t, 10, config.Analysis.MinNodes)
	assert.Equal(t, 0.7, config.Analysis.SimilarityThreshold)
	assert.Equal(t, []string{"type1", "type2", "type3", "type4"}, config.Analysis.EnabledCloneTypes)

	assert.Equal(t, []string{"."}, config.Input.Paths)
	assert.True(t, config.Input.Recursive)
	assert.Equal(t, []string{"**/*.py"}, config.Input.IncludePatterns)

	assert.Equal(t, 0.0, config.Filtering.MinSimilarity)
	assert.Equal(t, 0, config.Filtering.MaxResults)

	assert.Equal(t, "text", config.Output.Format)
	assert.Equal(t, "severity", config.Output.SortBy)
	assert.False(t, config.Output.ShowDetails)

	assert.Equal(t, 4, config.Performance.Workers)
	assert.Equal(t, 300, config.Performance.TimeoutSeconds)

	assert.Equal(t, "auto", config.LSH.Enabled)
	assert.Equal(t, 500, config.LSH.AutoThreshold)
	assert.Equal(t, 32, config.LSH.Bands)
	assert.Equal(t, 128, config.LSH.Hashes)
	assert.Zero(t, config.LSH.Hashes%config.LSH.Bands)

	assert.NoError(t, config.Validate())
}

func TestCloneConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CloneConfig)
		wantErr string
	}{
		{"min lines zero", func(c *CloneConfig) { c.Analysis.MinLines = 0 }, "analysis config invalid"},
		{"min nodes zero", func(c *CloneConfig) { c.Analysis.MinNodes = 0 }, "analysis config invalid"},
		{"threshold above one", func(c *CloneConfig) { c.Analysis.SimilarityThreshold = 1.2 }, "analysis config invalid"},
		{"threshold negative", func(c *CloneConfig) { c.Analysis.SimilarityThreshold = -0.3 }, "analysis config invalid"},
		{"unknown clone type", func(c *CloneConfig) { c.Analysis.EnabledCloneTypes = []string{"type5"} }, "analysis config invalid"},
		{"no paths", func(c *CloneConfig) { c.Input.Paths = nil }, "input config invalid"},
		{"min similarity above one", func(c *CloneConfig) { c.Filtering.MinSimilarity = 1.1 }, "filtering config invalid"},
		{"negative max results", func(c *CloneConfig) { c.Filtering.MaxResults = -1 }, "filtering config invalid"},
		{"bad format", func(c *CloneConfig) { c.Output.Format = "xml" }, "output config invalid"},
		{"bad sort", func(c *CloneConfig) { c.Output.SortBy = "name" }, "output config invalid"},
		{"negative workers", func(c *CloneConfig) { c.Performance.Workers = -1 }, "performance config invalid"},
		{"negative timeout", func(c *CloneConfig) { c.Performance.TimeoutSeconds = -5 }, "performance config invalid"},
		{"bad lsh mode", func(c *CloneConfig) { c.LSH.Enabled = "maybe" }, "lsh config invalid"},
		{"zero lsh bands", func(c *CloneConfig) { c.LSH.Bands = 0 }, "lsh config invalid"},
		{"indivisible lsh hashes", func(c *CloneConfig) { c.LSH.Bands = 33 }, "lsh config invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultCloneConfig()
			tt.mutate(config)

			err := config.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCloneConfig_ValidateAcceptsAllFormats(t *testing.T) {
	for _, format := range []string{"text", "json", "yaml", "csv"} {
		config := DefaultCloneConfig()
		config.Output.Format = format
		assert.NoError(t, config.Validate(), "format %s should validate", format)
	}
}

func TestCloneConfig_ValidateAcceptsAllSortOrders(t *testing.T) {
	for _, sortBy := range []string{"severity", "similarity", "size", "location", "type"} {
		config := DefaultCloneConfig()
		config.Output.SortBy = sortBy
		assert.NoError(t, config.Validate(), "sort_by %s should validate", sortBy)
	}
}
