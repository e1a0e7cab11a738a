package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// PyprojectToml mirrors the pyproject.toml layout we care about. Everything
// under [tool.pydup] follows the same shape as .pydup.toml.
type PyprojectToml struct {
	Tool ToolSection `toml:"tool"`
}

// ToolSection represents the [tool] table.
type ToolSection struct {
	Pydup PydupTomlConfig `toml:"pydup"`
}

// LoadPyprojectConfig loads configuration from a pyproject.toml found at or
// above startDir. A missing file is not an error; defaults are returned.
func LoadPyprojectConfig(startDir string) (*CloneConfig, error) {
	configPath, err := findPyprojectToml(startDir)
	if err != nil {
		return DefaultCloneConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var pyproject PyprojectToml
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return nil, err
	}

	config := DefaultCloneConfig()
	applyTomlConfig(config, &pyproject.Tool.Pydup)
	return config, nil
}

// findPyprojectToml walks up the directory tree to find pyproject.toml.
func findPyprojectToml(startDir string) (string, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, "pyproject.toml")
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
