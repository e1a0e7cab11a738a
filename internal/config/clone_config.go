package config

import (
	"fmt"
	"io"

	"github.com/pydup/pydup/internal/constants"
)

// CloneConfig is the complete configuration for one clone detection run,
// as loaded from .pydup.toml, pyproject.toml, or an explicit config file.
type CloneConfig struct {
	Analysis    CloneAnalysisConfig `mapstructure:"analysis" yaml:"analysis" json:"analysis"`
	Input       InputConfig         `mapstructure:"input" yaml:"input" json:"input"`
	Filtering   FilteringConfig     `mapstructure:"filtering" yaml:"filtering" json:"filtering"`
	Output      CloneOutputConfig   `mapstructure:"output" yaml:"output" json:"output"`
	Performance PerformanceConfig   `mapstructure:"performance" yaml:"performance" json:"performance"`
	LSH         LSHConfig           `mapstructure:"lsh" yaml:"lsh" json:"lsh"`
}

// CloneAnalysisConfig holds the candidate and grouping parameters.
type CloneAnalysisConfig struct {
	// Minimum requirements for clone candidates
	MinLines int `mapstructure:"min_lines" yaml:"min_lines" json:"min_lines"`
	MinNodes int `mapstructure:"min_nodes" yaml:"min_nodes" json:"min_nodes"`

	// SimilarityThreshold gates Type-3 (near-miss) grouping.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" yaml:"similarity_threshold" json:"similarity_threshold"`

	// EnabledCloneTypes selects which cascade stages run.
	EnabledCloneTypes []string `mapstructure:"enabled_clone_types" yaml:"enabled_clone_types" json:"enabled_clone_types"`
}

// InputConfig holds file selection configuration.
type InputConfig struct {
	Paths           []string `mapstructure:"paths" yaml:"paths" json:"paths"`
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns" json:"include_patterns"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns" json:"exclude_patterns"`
}

// FilteringConfig holds report filtering criteria.
type FilteringConfig struct {
	// MinSimilarity drops groups whose best similarity falls below it.
	MinSimilarity float64 `mapstructure:"min_similarity" yaml:"min_similarity" json:"min_similarity"`

	// MaxResults caps the number of reported groups; 0 means unlimited.
	MaxResults int `mapstructure:"max_results" yaml:"max_results" json:"max_results"`
}

// CloneOutputConfig holds output formatting configuration.
type CloneOutputConfig struct {
	Format      string `mapstructure:"format" yaml:"format" json:"format"`
	ShowDetails bool   `mapstructure:"show_details" yaml:"show_details" json:"show_details"`
	SortBy      string `mapstructure:"sort_by" yaml:"sort_by" json:"sort_by"`

	// Output destination (not serialized)
	Writer io.Writer `json:"-" yaml:"-" mapstructure:"-"`
}

// PerformanceConfig holds parallelism and timeout settings.
type PerformanceConfig struct {
	// Workers is the parser pool size; 0 selects the default.
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`

	// TimeoutSeconds bounds the whole detection run.
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
}

// LSHConfig holds the Type-3 candidate prefilter settings.
type LSHConfig struct {
	// Enabled selects the prefilter mode: "true", "false", or "auto".
	Enabled string `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// AutoThreshold is the fragment count at which "auto" turns the
	// prefilter on.
	AutoThreshold int `mapstructure:"auto_threshold" yaml:"auto_threshold" json:"auto_threshold"`

	// Bands and Hashes set the banding geometry; hashes must be a
	// multiple of bands.
	Bands  int `mapstructure:"bands" yaml:"bands" json:"bands"`
	Hashes int `mapstructure:"hashes" yaml:"hashes" json:"hashes"`
}

// DefaultCloneConfig returns a configuration with the standard defaults.
func DefaultCloneConfig() *CloneConfig {
	return &CloneConfig{
		Analysis: CloneAnalysisConfig{
			MinLines:            constants.DefaultMinCloneLines,
			MinNodes:            constants.DefaultMinCloneNodes,
			SimilarityThreshold: constants.DefaultSimilarityThreshold,
			EnabledCloneTypes:   []string{"type1", "type2", "type3", "type4"},
		},
		Input: InputConfig{
			Paths:           []string{"."},
			Recursive:       true,
			IncludePatterns: []string{"**/*.py"},
			ExcludePatterns: nil,
		},
		Filtering: FilteringConfig{
			MinSimilarity: 0.0,
			MaxResults:    0,
		},
		Output: CloneOutputConfig{
			Format:      "text",
			ShowDetails: false,
			SortBy:      "severity",
		},
		Performance: PerformanceConfig{
			Workers:        constants.DefaultParseWorkers,
			TimeoutSeconds: 300,
		},
		LSH: LSHConfig{
			Enabled:       "auto",
			AutoThreshold: constants.DefaultLSHAutoThreshold,
			Bands:         constants.DefaultLSHBands,
			Hashes:        constants.DefaultMinHashSignatureSize,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *CloneConfig) Validate() error {
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis config invalid: %w", err)
	}
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("input config invalid: %w", err)
	}
	if err := c.Filtering.Validate(); err != nil {
		return fmt.Errorf("filtering config invalid: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output config invalid: %w", err)
	}
	if err := c.Performance.Validate(); err != nil {
		return fmt.Errorf("performance config invalid: %w", err)
	}
	if err := c.LSH.Validate(); err != nil {
		return fmt.Errorf("lsh config invalid: %w", err)
	}
	return nil
}

// Validate validates the analysis configuration.
func (a *CloneAnalysisConfig) Validate() error {
	if a.MinLines < 1 {
		return fmt.Errorf("min_lines must be >= 1, got %d", a.MinLines)
	}
	if a.MinNodes < 1 {
		return fmt.Errorf("min_nodes must be >= 1, got %d", a.MinNodes)
	}
	if a.SimilarityThreshold < 0.0 || a.SimilarityThreshold > 1.0 {
		return fmt.Errorf("similarity_threshold must be between 0.0 and 1.0, got %f", a.SimilarityThreshold)
	}

	validTypes := []string{"type1", "type2", "type3", "type4"}
	for _, cloneType := range a.EnabledCloneTypes {
		valid := false
		for _, validType := range validTypes {
			if cloneType == validType {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid clone type %s, must be one of %v", cloneType, validTypes)
		}
	}
	return nil
}

// Validate validates the input configuration.
func (i *InputConfig) Validate() error {
	if len(i.Paths) == 0 {
		return fmt.Errorf("paths cannot be empty")
	}
	return nil
}

// Validate validates the filtering configuration.
func (f *FilteringConfig) Validate() error {
	if f.MinSimilarity < 0.0 || f.MinSimilarity > 1.0 {
		return fmt.Errorf("min_similarity must be between 0.0 and 1.0, got %f", f.MinSimilarity)
	}
	if f.MaxResults < 0 {
		return fmt.Errorf("max_results must be >= 0, got %d", f.MaxResults)
	}
	return nil
}

// Validate validates the output configuration.
func (o *CloneOutputConfig) Validate() error {
	validFormats := []string{"text", "json", "yaml", "csv"}
	valid := false
	for _, format := range validFormats {
		if o.Format == format {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("format must be one of %v, got %s", validFormats, o.Format)
	}

	validSortBy := []string{"severity", "similarity", "size", "location", "type"}
	valid = false
	for _, sort := range validSortBy {
		if o.SortBy == sort {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("sort_by must be one of %v, got %s", validSortBy, o.SortBy)
	}
	return nil
}

// Validate validates the performance configuration.
func (p *PerformanceConfig) Validate() error {
	if p.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", p.Workers)
	}
	if p.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be >= 0, got %d", p.TimeoutSeconds)
	}
	return nil
}

// Validate validates the LSH configuration.
func (l *LSHConfig) Validate() error {
	switch l.Enabled {
	case "", "true", "false", "auto":
	default:
		return fmt.Errorf("enabled must be true, false, or auto, got %s", l.Enabled)
	}
	if l.AutoThreshold < 0 {
		return fmt.Errorf("auto_threshold must be >= 0, got %d", l.AutoThreshold)
	}
	if l.Bands < 1 {
		return fmt.Errorf("bands must be >= 1, got %d", l.Bands)
	}
	if l.Hashes < 1 {
		return fmt.Errorf("hashes must be >= 1, got %d", l.Hashes)
	}
	if l.Hashes%l.Bands != 0 {
		return fmt.Errorf("hashes (%d) must be a multiple of bands (%d)", l.Hashes, l.Bands)
	}
	return nil
}
