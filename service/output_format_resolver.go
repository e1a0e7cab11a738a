package service

import (
	"strings"

	"github.com/pydup/pydup/domain"
)

// OutputFormatResolver maps the --format flag value to an output format and
// the file extension used for generated report names.
type OutputFormatResolver struct{}

func NewOutputFormatResolver() *OutputFormatResolver { return &OutputFormatResolver{} }

// Determine parses the format name. An empty name selects text.
func (r *OutputFormatResolver) Determine(name string) (domain.OutputFormat, string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return domain.OutputFormatText, "txt", nil
	case "json":
		return domain.OutputFormatJSON, "json", nil
	case "yaml", "yml":
		return domain.OutputFormatYAML, "yaml", nil
	case "csv":
		return domain.OutputFormatCSV, "csv", nil
	default:
		return "", "", domain.NewUnsupportedFormatError(name)
	}
}
