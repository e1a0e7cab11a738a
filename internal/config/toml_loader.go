package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// PydupTomlConfig is the layout of .pydup.toml. The same layout nests under
// [tool.pydup] in pyproject.toml. Settings can live in a flat [clones]
// section or in the per-concern sections; the sections win when both are set.
type PydupTomlConfig struct {
	Clones      ClonesSection          `toml:"clones"`
	Analysis    TomlAnalysisSection    `toml:"analysis"`
	Input       TomlInputSection       `toml:"input"`
	Filtering   TomlFilteringSection   `toml:"filtering"`
	Output      TomlOutputSection      `toml:"output"`
	Performance TomlPerformanceSection `toml:"performance"`
	LSH         TomlLSHSection         `toml:"lsh"`
}

// ClonesSection is the flat [clones] form. Boolean fields are pointers so
// an absent key can be told apart from an explicit false.
type ClonesSection struct {
	MinLines            int      `toml:"min_lines"`
	MinNodes            int      `toml:"min_nodes"`
	SimilarityThreshold float64  `toml:"similarity_threshold"`
	EnabledCloneTypes   []string `toml:"enabled_clone_types"`

	MinSimilarity float64 `toml:"min_similarity"`
	MaxResults    int     `toml:"max_results"`

	Format      string `toml:"format"`
	ShowDetails *bool  `toml:"show_details"`
	SortBy      string `toml:"sort_by"`

	Workers        int `toml:"workers"`
	TimeoutSeconds int `toml:"timeout_seconds"`

	LSHEnabled       string `toml:"lsh_enabled"`
	LSHAutoThreshold int    `toml:"lsh_auto_threshold"`
	LSHBands         int    `toml:"lsh_bands"`
	LSHHashes        int    `toml:"lsh_hashes"`
}

type TomlAnalysisSection struct {
	MinLines            int      `toml:"min_lines"`
	MinNodes            int      `toml:"min_nodes"`
	SimilarityThreshold float64  `toml:"similarity_threshold"`
	EnabledCloneTypes   []string `toml:"enabled_clone_types"`
}

type TomlInputSection struct {
	Paths           []string `toml:"paths"`
	Recursive       *bool    `toml:"recursive"`
	IncludePatterns []string `toml:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns"`
}

type TomlFilteringSection struct {
	MinSimilarity float64 `toml:"min_similarity"`
	MaxResults    int     `toml:"max_results"`
}

type TomlOutputSection struct {
	Format      string `toml:"format"`
	ShowDetails *bool  `toml:"show_details"`
	SortBy      string `toml:"sort_by"`
}

type TomlPerformanceSection struct {
	Workers        int `toml:"workers"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

type TomlLSHSection struct {
	Enabled       string `toml:"enabled"`
	AutoThreshold int    `toml:"auto_threshold"`
	Bands         int    `toml:"bands"`
	Hashes        int    `toml:"hashes"`
}

// TomlConfigLoader discovers and loads TOML configuration.
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader.
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig loads configuration with ruff-like priority:
// 1. .pydup.toml (dedicated config file)
// 2. pyproject.toml (with a [tool.pydup] section)
// 3. defaults
func (l *TomlConfigLoader) LoadConfig(startDir string) (*CloneConfig, error) {
	if config, err := l.loadFromPydupToml(startDir); err == nil {
		return config, nil
	}

	if config, err := LoadPyprojectConfig(startDir); err == nil {
		return config, nil
	}

	return DefaultCloneConfig(), nil
}

// loadFromPydupToml loads config from a .pydup.toml found at or above
// startDir.
func (l *TomlConfigLoader) loadFromPydupToml(startDir string) (*CloneConfig, error) {
	configPath, err := l.findPydupToml(startDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var parsed PydupTomlConfig
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}

	config := DefaultCloneConfig()
	applyTomlConfig(config, &parsed)
	return config, nil
}

// findPydupToml walks up the directory tree to find .pydup.toml.
func (l *TomlConfigLoader) findPydupToml(startDir string) (string, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".pydup.toml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

// GetSupportedConfigFiles returns the discovered config file names in order
// of precedence.
func (l *TomlConfigLoader) GetSupportedConfigFiles() []string {
	return []string{
		".pydup.toml",
		"pyproject.toml",
	}
}

// applyTomlConfig merges parsed TOML onto defaults: first the flat [clones]
// section, then the per-concern sections. Zero values mean "not set" except
// for the pointer booleans.
func applyTomlConfig(config *CloneConfig, parsed *PydupTomlConfig) {
	applyClonesSection(config, &parsed.Clones)

	if parsed.Analysis.MinLines > 0 {
		config.Analysis.MinLines = parsed.Analysis.MinLines
	}
	if parsed.Analysis.MinNodes > 0 {
		config.Analysis.MinNodes = parsed.Analysis.MinNodes
	}
	if parsed.Analysis.SimilarityThreshold > 0 {
		config.Analysis.SimilarityThreshold = parsed.Analysis.SimilarityThreshold
	}
	if len(parsed.Analysis.EnabledCloneTypes) > 0 {
		config.Analysis.EnabledCloneTypes = parsed.Analysis.EnabledCloneTypes
	}

	if len(parsed.Input.Paths) > 0 {
		config.Input.Paths = parsed.Input.Paths
	}
	if parsed.Input.Recursive != nil {
		config.Input.Recursive = *parsed.Input.Recursive
	}
	if len(parsed.Input.IncludePatterns) > 0 {
		config.Input.IncludePatterns = parsed.Input.IncludePatterns
	}
	if len(parsed.Input.ExcludePatterns) > 0 {
		config.Input.ExcludePatterns = parsed.Input.ExcludePatterns
	}

	if parsed.Filtering.MinSimilarity > 0 {
		config.Filtering.MinSimilarity = parsed.Filtering.MinSimilarity
	}
	if parsed.Filtering.MaxResults > 0 {
		config.Filtering.MaxResults = parsed.Filtering.MaxResults
	}

	if parsed.Output.Format != "" {
		config.Output.Format = parsed.Output.Format
	}
	if parsed.Output.ShowDetails != nil {
		config.Output.ShowDetails = *parsed.Output.ShowDetails
	}
	if parsed.Output.SortBy != "" {
		config.Output.SortBy = parsed.Output.SortBy
	}

	if parsed.Performance.Workers > 0 {
		config.Performance.Workers = parsed.Performance.Workers
	}
	if parsed.Performance.TimeoutSeconds > 0 {
		config.Performance.TimeoutSeconds = parsed.Performance.TimeoutSeconds
	}

	if parsed.LSH.Enabled != "" {
		config.LSH.Enabled = parsed.LSH.Enabled
	}
	if parsed.LSH.AutoThreshold > 0 {
		config.LSH.AutoThreshold = parsed.LSH.AutoThreshold
	}
	if parsed.LSH.Bands > 0 {
		config.LSH.Bands = parsed.LSH.Bands
	}
	if parsed.LSH.Hashes > 0 {
		config.LSH.Hashes = parsed.LSH.Hashes
	}
}

// applyClonesSection merges the flat [clones] form.
func applyClonesSection(config *CloneConfig, clones *ClonesSection) {
	if clones.MinLines > 0 {
		config.Analysis.MinLines = clones.MinLines
	}
	if clones.MinNodes > 0 {
		config.Analysis.MinNodes = clones.MinNodes
	}
	if clones.SimilarityThreshold > 0 {
		config.Analysis.SimilarityThreshold = clones.SimilarityThreshold
	}
	if len(clones.EnabledCloneTypes) > 0 {
		config.Analysis.EnabledCloneTypes = clones.EnabledCloneTypes
	}

	if clones.MinSimilarity > 0 {
		config.Filtering.MinSimilarity = clones.MinSimilarity
	}
	if clones.MaxResults > 0 {
		config.Filtering.MaxResults = clones.MaxResults
	}

	if clones.Format != "" {
		config.Output.Format = clones.Format
	}
	if clones.ShowDetails != nil {
		config.Output.ShowDetails = *clones.ShowDetails
	}
	if clones.SortBy != "" {
		config.Output.SortBy = clones.SortBy
	}

	if clones.Workers > 0 {
		config.Performance.Workers = clones.Workers
	}
	if clones.TimeoutSeconds > 0 {
		config.Performance.TimeoutSeconds = clones.TimeoutSeconds
	}

	if clones.LSHEnabled != "" {
		config.LSH.Enabled = clones.LSHEnabled
	}
	if clones.LSHAutoThreshold > 0 {
		config.LSH.AutoThreshold = clones.LSHAutoThreshold
	}
	if clones.LSHBands > 0 {
		config.LSH.Bands = clones.LSHBands
	}
	if clones.LSHHashes > 0 {
		config.LSH.Hashes = clones.LSHHashes
	}
}
