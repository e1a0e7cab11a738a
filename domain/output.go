package domain

import (
	"io"
)

// OutputFormat selects how a report is rendered.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
)

// IsValid reports whether the format is one of the supported renderers.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV:
		return true
	}
	return false
}

// Extension returns the conventional file extension for the format.
func (f OutputFormat) Extension() string {
	switch f {
	case OutputFormatJSON:
		return "json"
	case OutputFormatYAML:
		return "yaml"
	case OutputFormatCSV:
		return "csv"
	default:
		return "txt"
	}
}

// ReportWriter abstracts writing a rendered report to its destination.
// Implementations live in the service layer.
type ReportWriter interface {
	// Write renders via writeFunc into the file at outputPath when non-empty,
	// otherwise into writer. Implementations may emit a status line (e.g. the
	// generated file path) to their status stream.
	Write(writer io.Writer, outputPath string, format OutputFormat, writeFunc func(io.Writer) error) error
}

// ProgressManager tracks scan progress for interactive sessions.
type ProgressManager interface {
	// Initialize sets up tracking against a known total.
	Initialize(maxValue int)

	// Start begins rendering.
	Start()

	// Update advances the bar to processed out of total.
	Update(processed, total int)

	// Complete finishes the bar, marking success or failure.
	Complete(success bool)

	// SetWriter redirects bar output (tests pass a buffer).
	SetWriter(writer io.Writer)

	// IsInteractive reports whether a bar would actually render.
	IsInteractive() bool

	// Close releases any resources.
	Close()
}

// FileReader discovers and reads Python source files.
type FileReader interface {
	// CollectPythonFiles walks the given paths and returns matching Python
	// files, honoring include/exclude glob patterns.
	CollectPythonFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)

	// IsValidPythonFile reports whether path names a Python source file.
	IsValidPythonFile(path string) bool

	// FileExists reports whether path exists.
	FileExists(path string) bool
}
