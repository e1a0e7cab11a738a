package mcp

import (
	"github.com/pydup/pydup/domain"
	"github.com/pydup/pydup/internal/config"
)

func NewTestDependencies(fr domain.FileReader, cfg *config.CloneConfig, path string) *Dependencies {
	return &Dependencies{
		fileReader: fr,
		config:     cfg,
		configPath: path,
	}
}
