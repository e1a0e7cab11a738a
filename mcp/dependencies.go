package mcp

import (
	"io"

	"github.com/pydup/pydup/app"
	"github.com/pydup/pydup/domain"
	"github.com/pydup/pydup/internal/config"
	"github.com/pydup/pydup/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	fileReader domain.FileReader
	config     *config.CloneConfig
	configPath string
}

// NewDependencies constructs the dependency set with sane defaults.
func NewDependencies(cfg *config.CloneConfig, configPath string) *Dependencies {
	if cfg == nil {
		cfg = config.DefaultCloneConfig()
	}

	return &Dependencies{
		fileReader: service.NewFileReader(),
		config:     cfg,
		configPath: configPath,
	}
}

// Config exposes the loaded configuration snapshot.
func (d *Dependencies) Config() *config.CloneConfig {
	return d.config
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// BuildScanUseCase assembles a fresh ScanUseCase with injected dependencies.
// explicitFlags names the settings the tool call provided, so they survive
// the config merge. MCP tools format reports themselves, so status output is
// discarded.
func (d *Dependencies) BuildScanUseCase(explicitFlags ...string) (*app.ScanUseCase, error) {
	return app.NewScanUseCaseBuilder().
		WithService(service.NewCloneService()).
		WithFileReader(d.fileReader).
		WithFormatter(service.NewCloneOutputFormatter()).
		WithConfigLoader(service.NewCloneConfigurationLoaderWithExplicit(explicitFlags...)).
		WithOutputWriter(service.NewFileOutputWriter(io.Discard)).
		Build()
}
