package service

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/pydup/pydup/domain"
	"github.com/pydup/pydup/internal/config"
)

// CloneConfigurationLoaderImpl implements domain.CloneConfigurationLoader.
// The flag tracker records which CLI flags were set explicitly so MergeConfig
// only overlays values the user actually provided.
type CloneConfigurationLoaderImpl struct {
	flagTracker *config.FlagTracker
}

// NewCloneConfigurationLoader creates a loader with no tracked flags. Merges
// performed by this loader only carry positional values (paths, writers,
// output paths) from the override.
func NewCloneConfigurationLoader() *CloneConfigurationLoaderImpl {
	return &CloneConfigurationLoaderImpl{
		flagTracker: config.NewFlagTracker(),
	}
}

// NewCloneConfigurationLoaderWithFlags creates a loader that tracks which
// flags were explicitly set on the given flag set.
func NewCloneConfigurationLoaderWithFlags(flags *pflag.FlagSet) *CloneConfigurationLoaderImpl {
	return &CloneConfigurationLoaderImpl{
		flagTracker: config.NewFlagTrackerFromFlags(flags),
	}
}

// NewCloneConfigurationLoaderWithExplicit creates a loader that treats the
// given flag names as explicitly set. Embedders without a real flag set,
// such as the MCP server, use this to make their argument overrides stick
// through the config merge.
func NewCloneConfigurationLoaderWithExplicit(flagNames ...string) *CloneConfigurationLoaderImpl {
	tracker := config.NewFlagTracker()
	for _, name := range flagNames {
		tracker.Set(name)
	}
	return &CloneConfigurationLoaderImpl{flagTracker: tracker}
}

// LoadConfig loads configuration from an explicit file path. TOML files use
// the .pydup.toml layout; YAML and JSON files use the sectioned layout.
func (c *CloneConfigurationLoaderImpl) LoadConfig(path string) (*domain.CloneRequest, error) {
	cfg, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg.ToCloneRequest(nil), nil
}

// LoadDefaultConfig discovers configuration starting from targetDir:
// .pydup.toml first, then pyproject.toml [tool.pydup], walking parent
// directories, falling back to built-in defaults.
func (c *CloneConfigurationLoaderImpl) LoadDefaultConfig(targetDir string) (*domain.CloneRequest, error) {
	loader := config.NewTomlConfigLoader()
	cfg, err := loader.LoadConfig(targetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg.ToCloneRequest(nil), nil
}
