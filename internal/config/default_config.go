package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/pydup/pydup/internal/constants"
)

//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// defaultConfigValues feeds the template so the generated file and the
// compiled defaults cannot drift apart.
type defaultConfigValues struct {
	MinLines            int
	MinNodes            int
	SimilarityThreshold float64
	MinSimilarity       float64
	MaxResults          int
	Workers             int
	TimeoutSeconds      int
	LSHAutoThreshold    int
	LSHBands            int
	LSHHashes           int
}

func newDefaultConfigValues() defaultConfigValues {
	defaults := DefaultCloneConfig()
	return defaultConfigValues{
		MinLines:            constants.DefaultMinCloneLines,
		MinNodes:            constants.DefaultMinCloneNodes,
		SimilarityThreshold: constants.DefaultSimilarityThreshold,
		MinSimilarity:       defaults.Filtering.MinSimilarity,
		MaxResults:          defaults.Filtering.MaxResults,
		Workers:             constants.DefaultParseWorkers,
		TimeoutSeconds:      defaults.Performance.TimeoutSeconds,
		LSHAutoThreshold:    constants.DefaultLSHAutoThreshold,
		LSHBands:            constants.DefaultLSHBands,
		LSHHashes:           constants.DefaultMinHashSignatureSize,
	}
}

// GenerateDefaultConfigTOML renders the annotated default configuration,
// ready to be written out as .pydup.toml by `pydup init`.
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}

	return buf.String(), nil
}
