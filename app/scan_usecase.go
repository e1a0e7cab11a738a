package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pydup/pydup/domain"
)

// ScanUseCase orchestrates clone detection end to end: configuration
// resolution, file collection, detection, and report output.
type ScanUseCase struct {
	service      domain.CloneService
	fileReader   domain.FileReader
	formatter    domain.CloneOutputFormatter
	configLoader domain.CloneConfigurationLoader
	outputWriter domain.ReportWriter
}

// NewScanUseCase creates a new scan use case with the given dependencies.
func NewScanUseCase(
	service domain.CloneService,
	fileReader domain.FileReader,
	formatter domain.CloneOutputFormatter,
	configLoader domain.CloneConfigurationLoader,
	outputWriter domain.ReportWriter,
) *ScanUseCase {
	return &ScanUseCase{
		service:      service,
		fileReader:   fileReader,
		formatter:    formatter,
		configLoader: configLoader,
		outputWriter: outputWriter,
	}
}

// Execute runs a full scan over the request's paths and writes the rendered
// report to the request's output destination. The report is returned so
// callers can gate exit codes on findings.
func (uc *ScanUseCase) Execute(ctx context.Context, req domain.CloneRequest) (*domain.CloneDetectionReport, error) {
	report, merged, err := uc.detect(ctx, &req)
	if err != nil {
		return nil, err
	}
	if err := uc.writeReport(report, merged); err != nil {
		return nil, err
	}
	return report, nil
}

// ExecuteAndReturn runs a full scan but skips report output. Embedders such
// as the MCP server format the returned report themselves.
func (uc *ScanUseCase) ExecuteAndReturn(ctx context.Context, req domain.CloneRequest) (*domain.CloneDetectionReport, error) {
	report, _, err := uc.detect(ctx, &req)
	return report, err
}

// detect is the shared scan pipeline: validate, resolve configuration,
// collect files, and run detection.
func (uc *ScanUseCase) detect(ctx context.Context, req *domain.CloneRequest) (*domain.CloneDetectionReport, *domain.CloneRequest, error) {
	startTime := time.Now()

	if err := req.Validate(); err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}

	merged, err := uc.resolveConfiguration(req)
	if err != nil {
		return nil, nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid merged configuration: %w", err)
	}

	files, err := uc.fileReader.CollectPythonFiles(merged.Paths, merged.Recursive, merged.IncludePatterns, merged.ExcludePatterns)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to collect files: %w", err)
	}

	report, err := uc.service.DetectClonesInFiles(ctx, files, merged)
	if err != nil {
		return nil, nil, fmt.Errorf("clone detection failed: %w", err)
	}
	report.ScanPath = scanPathLabel(merged.Paths)
	report.DurationMS = time.Since(startTime).Milliseconds()
	return report, merged, nil
}

// ExecuteWithFiles runs detection on an explicit file list, skipping entries
// that are not Python sources.
func (uc *ScanUseCase) ExecuteWithFiles(ctx context.Context, filePaths []string, req domain.CloneRequest) (*domain.CloneDetectionReport, error) {
	startTime := time.Now()

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	validFiles := make([]string, 0, len(filePaths))
	for _, filePath := range filePaths {
		if uc.fileReader.IsValidPythonFile(filePath) {
			validFiles = append(validFiles, filePath)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: skipping non-Python file: %s\n", filePath)
		}
	}

	report, err := uc.service.DetectClonesInFiles(ctx, validFiles, &req)
	if err != nil {
		return nil, fmt.Errorf("clone detection failed: %w", err)
	}
	report.ScanPath = scanPathLabel(req.Paths)
	report.DurationMS = time.Since(startTime).Milliseconds()

	if err := uc.writeReport(report, &req); err != nil {
		return nil, err
	}
	return report, nil
}

// CompareFragments scores two standalone Python snippets against each other.
func (uc *ScanUseCase) CompareFragments(ctx context.Context, sourceA, sourceB string) (*domain.FragmentComparison, error) {
	comparison, err := uc.service.CompareFragments(ctx, sourceA, sourceB)
	if err != nil {
		return nil, fmt.Errorf("fragment comparison failed: %w", err)
	}
	return comparison, nil
}

// resolveConfiguration loads file configuration and overlays the request's
// explicitly set values on top of it. An explicit ConfigPath wins over
// auto-discovery.
func (uc *ScanUseCase) resolveConfiguration(req *domain.CloneRequest) (*domain.CloneRequest, error) {
	var base *domain.CloneRequest
	var err error

	if req.ConfigPath != "" {
		base, err = uc.configLoader.LoadConfig(req.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	} else {
		base, err = uc.configLoader.LoadDefaultConfig(targetDirFromPaths(req.Paths))
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}

	return uc.configLoader.MergeConfig(base, req), nil
}

// writeReport renders the report in the request's format and delivers it to
// the request's destination (file when OutputPath is set, writer otherwise).
func (uc *ScanUseCase) writeReport(report *domain.CloneDetectionReport, req *domain.CloneRequest) error {
	format := req.OutputFormat
	if format == "" {
		format = domain.OutputFormatText
	}

	if req.OutputWriter == nil && req.OutputPath == "" {
		return domain.NewOutputError("no output destination configured", nil)
	}

	return uc.outputWriter.Write(req.OutputWriter, req.OutputPath, format, func(w io.Writer) error {
		return uc.formatter.Write(report, format, w)
	})
}

// targetDirFromPaths picks the directory used for configuration discovery:
// the first input path, or its parent when it names a file.
func targetDirFromPaths(paths []string) string {
	if len(paths) == 0 {
		return "."
	}
	target := paths[0]
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		return filepath.Dir(target)
	}
	return target
}

// scanPathLabel renders the scanned paths for the report header.
func scanPathLabel(paths []string) string {
	switch len(paths) {
	case 0:
		return "."
	case 1:
		return paths[0]
	default:
		return fmt.Sprintf("%s (+%d more)", paths[0], len(paths)-1)
	}
}

// ScanUseCaseBuilder assembles a ScanUseCase from its dependencies.
type ScanUseCaseBuilder struct {
	service      domain.CloneService
	fileReader   domain.FileReader
	formatter    domain.CloneOutputFormatter
	configLoader domain.CloneConfigurationLoader
	outputWriter domain.ReportWriter
}

// NewScanUseCaseBuilder creates a new builder for ScanUseCase.
func NewScanUseCaseBuilder() *ScanUseCaseBuilder {
	return &ScanUseCaseBuilder{}
}

// WithService sets the clone detection service.
func (b *ScanUseCaseBuilder) WithService(service domain.CloneService) *ScanUseCaseBuilder {
	b.service = service
	return b
}

// WithFileReader sets the file reader.
func (b *ScanUseCaseBuilder) WithFileReader(fileReader domain.FileReader) *ScanUseCaseBuilder {
	b.fileReader = fileReader
	return b
}

// WithFormatter sets the output formatter.
func (b *ScanUseCaseBuilder) WithFormatter(formatter domain.CloneOutputFormatter) *ScanUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithConfigLoader sets the configuration loader.
func (b *ScanUseCaseBuilder) WithConfigLoader(configLoader domain.CloneConfigurationLoader) *ScanUseCaseBuilder {
	b.configLoader = configLoader
	return b
}

// WithOutputWriter sets the report writer.
func (b *ScanUseCaseBuilder) WithOutputWriter(outputWriter domain.ReportWriter) *ScanUseCaseBuilder {
	b.outputWriter = outputWriter
	return b
}

// Build creates the ScanUseCase, failing when a dependency is missing.
func (b *ScanUseCaseBuilder) Build() (*ScanUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("clone service is required")
	}
	if b.fileReader == nil {
		return nil, fmt.Errorf("file reader is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}
	if b.configLoader == nil {
		return nil, fmt.Errorf("configuration loader is required")
	}
	if b.outputWriter == nil {
		return nil, fmt.Errorf("report writer is required")
	}
	return NewScanUseCase(b.service, b.fileReader, b.formatter, b.configLoader, b.outputWriter), nil
}
