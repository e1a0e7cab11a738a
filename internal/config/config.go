package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// LoadConfigFile loads a CloneConfig from an explicitly named file, e.g. one
// passed via --config. TOML files use the same layout as .pydup.toml (a flat
// [clones] section plus per-concern sections); YAML and JSON files use the
// sectioned layout only. Values absent from the file keep their defaults.
func LoadConfigFile(configPath string) (*CloneConfig, error) {
	var config *CloneConfig
	var err error

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".toml":
		config, err = loadTomlConfigFile(configPath)
	default:
		config, err = loadViperConfigFile(configPath)
	}
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	return config, nil
}

func loadTomlConfigFile(configPath string) (*CloneConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var parsed PydupTomlConfig
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	config := DefaultCloneConfig()
	applyTomlConfig(config, &parsed)
	return config, nil
}

func loadViperConfigFile(configPath string) (*CloneConfig, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultCloneConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file %s: %w", configPath, err)
	}

	return config, nil
}
