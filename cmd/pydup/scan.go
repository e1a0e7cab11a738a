package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pydup/pydup/app"
	"github.com/pydup/pydup/domain"
	"github.com/pydup/pydup/internal/constants"
	"github.com/pydup/pydup/service"
)

// ScanCommand handles the clone detection CLI command.
type ScanCommand struct {
	// Input
	recursive       bool
	configFile      string
	includePatterns []string
	excludePatterns []string

	// Analysis
	minLines            int
	minNodes            int
	similarityThreshold float64
	cloneTypes          []string

	// Filtering
	minSimilarity float64
	maxResults    int

	// Output
	format      string
	out         string
	showDetails bool
	sortBy      string
	noProgress  bool
	quiet       bool
	verbose     bool

	// CI gating
	failOnClones bool

	// Performance tuning
	lshMode      string
	lshThreshold int
	workers      int
	timeout      time.Duration
}

// NewScanCommand creates a new scan command with default settings.
func NewScanCommand() *ScanCommand {
	return &ScanCommand{
		recursive:           true,
		includePatterns:     []string{"**/*.py"},
		excludePatterns:     nil,
		minLines:            constants.DefaultMinCloneLines,
		minNodes:            constants.DefaultMinCloneNodes,
		similarityThreshold: constants.DefaultSimilarityThreshold,
		cloneTypes:          []string{"type1", "type2", "type3", "type4"},
		minSimilarity:       0.0,
		maxResults:          0,
		format:              "text",
		sortBy:              "severity",
		lshMode:             domain.LSHModeAuto,
		lshThreshold:        constants.DefaultLSHAutoThreshold,
		workers:             constants.DefaultParseWorkers,
		timeout:             5 * time.Minute,
	}
}

// CreateCobraCommand creates the cobra command for clone detection.
func (c *ScanCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan Python sources for duplicated code",
		Long: `Scan Python files for code clones.

Functions and classes are fingerprinted and grouped into four clone classes:

- type1: identical code (except whitespace and comments)
- type2: identical structure with renamed identifiers or changed literals
- type3: near-miss duplicates above the similarity threshold
- type4: semantically similar code with different syntax

Examples:
  # Scan the current directory
  pydup scan

  # Scan src/ with a stricter similarity threshold
  pydup scan --similarity-threshold 0.9 src/

  # Only exact and renamed clones, as JSON on stdout
  pydup scan --clone-types type1,type2 --format json --out - src/

  # Write a timestamped JSON report under .pydup/reports/
  pydup scan --format json src/

  # Fail the build when any clones are found
  pydup scan --fail-on-clones src/`,
		RunE: c.runScan,
	}

	// Input flags
	cmd.Flags().BoolVarP(&c.recursive, "recursive", "r", c.recursive,
		"Recursively scan directories")
	cmd.Flags().StringVarP(&c.configFile, "config", "c", c.configFile,
		"Path to configuration file")
	cmd.Flags().StringSliceVar(&c.includePatterns, "include", c.includePatterns,
		"Glob patterns for files to include")
	cmd.Flags().StringSliceVar(&c.excludePatterns, "exclude", c.excludePatterns,
		"Glob patterns for files to exclude")

	// Analysis flags
	cmd.Flags().IntVar(&c.minLines, "min-lines", c.minLines,
		"Minimum number of lines for clone candidates")
	cmd.Flags().IntVar(&c.minNodes, "min-nodes", c.minNodes,
		"Minimum number of AST nodes for clone candidates")
	cmd.Flags().Float64VarP(&c.similarityThreshold, "similarity-threshold", "s", c.similarityThreshold,
		"Similarity threshold for near-miss clone grouping (0.0-1.0)")
	cmd.Flags().StringSliceVar(&c.cloneTypes, "clone-types", c.cloneTypes,
		"Clone types to detect: type1, type2, type3, type4")

	// Filtering flags
	cmd.Flags().Float64Var(&c.minSimilarity, "min-similarity", c.minSimilarity,
		"Drop groups whose best similarity is below this value (0.0-1.0)")
	cmd.Flags().IntVar(&c.maxResults, "max-results", c.maxResults,
		"Maximum number of clone groups to report (0 = unlimited)")

	// Output flags
	cmd.Flags().StringVarP(&c.format, "format", "f", c.format,
		"Output format: text, json, yaml, csv")
	cmd.Flags().StringVarP(&c.out, "out", "o", c.out,
		"Output destination: file, directory, or '-' for stdout")
	cmd.Flags().BoolVarP(&c.showDetails, "details", "d", c.showDetails,
		"Include refactoring suggestions in text output")
	cmd.Flags().StringVar(&c.sortBy, "sort", c.sortBy,
		"Sort groups by: severity, similarity, size, location, type")
	cmd.Flags().BoolVar(&c.noProgress, "no-progress", c.noProgress,
		"Disable the progress bar")
	cmd.Flags().BoolVarP(&c.quiet, "quiet", "q", c.quiet,
		"Suppress progress and warnings")
	cmd.Flags().BoolVarP(&c.verbose, "verbose", "v", c.verbose,
		"Enable verbose output")

	// CI gating
	cmd.Flags().BoolVar(&c.failOnClones, "fail-on-clones", c.failOnClones,
		"Exit non-zero when any clone groups are found")

	// Performance tuning flags, configured via .pydup.toml in normal use
	cmd.Flags().StringVar(&c.lshMode, "lsh", c.lshMode,
		"LSH candidate prefilter: auto, true, false")
	cmd.Flags().IntVar(&c.lshThreshold, "lsh-threshold", c.lshThreshold,
		"Fragment count at which auto mode enables the LSH prefilter")
	cmd.Flags().IntVar(&c.workers, "workers", c.workers,
		"Parser pool size for parallel file parsing")
	cmd.Flags().DurationVar(&c.timeout, "timeout", c.timeout,
		"Maximum time for the whole scan (e.g. 5m, 30s)")

	_ = cmd.Flags().MarkHidden("min-nodes")
	_ = cmd.Flags().MarkHidden("lsh")
	_ = cmd.Flags().MarkHidden("lsh-threshold")
	_ = cmd.Flags().MarkHidden("workers")
	_ = cmd.Flags().MarkHidden("timeout")

	return cmd
}

// runScan executes the scan command.
func (c *ScanCommand) runScan(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	request, err := c.buildRequest(cmd, args)
	if err != nil {
		return err
	}

	useCase, err := c.buildUseCase(cmd)
	if err != nil {
		return fmt.Errorf("failed to assemble scan use case: %w", err)
	}

	report, err := useCase.Execute(cmd.Context(), *request)
	if err != nil {
		return err
	}

	if report.TotalFiles == 0 && !c.quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: no Python files found in the given paths")
	}
	if c.verbose && !c.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Scanned %d files (%d fragments) in %dms\n",
			report.TotalFiles, report.TotalFragments, report.DurationMS)
	}

	if c.failOnClones && len(report.CloneGroups) > 0 {
		return &cloneGateError{groups: len(report.CloneGroups)}
	}
	return nil
}

// buildRequest translates command flags into a clone detection request.
// Values the user did not set explicitly are later overridden by file
// configuration during the use case's merge step.
func (c *ScanCommand) buildRequest(cmd *cobra.Command, paths []string) (*domain.CloneRequest, error) {
	format, extension, err := service.NewOutputFormatResolver().Determine(c.format)
	if err != nil {
		return nil, newUsageError(err)
	}

	sortBy, err := parseSortCriteria(c.sortBy)
	if err != nil {
		return nil, newUsageError(err)
	}

	cloneTypes, err := domain.ParseCloneTypes(c.cloneTypes)
	if err != nil {
		return nil, newUsageError(err)
	}

	switch c.lshMode {
	case domain.LSHModeAuto, domain.LSHModeTrue, domain.LSHModeFalse:
	default:
		return nil, newUsageError(fmt.Errorf("invalid --lsh value %q (want auto, true, or false)", c.lshMode))
	}

	outputPath, err := resolveOutputDestination(c.out, format, extension)
	if err != nil {
		return nil, err
	}

	req := domain.DefaultCloneRequest()
	req.Paths = paths
	req.Recursive = c.recursive
	req.IncludePatterns = c.includePatterns
	req.ExcludePatterns = c.excludePatterns
	req.MinLines = c.minLines
	req.MinNodes = c.minNodes
	req.SimilarityThreshold = c.similarityThreshold
	req.EnabledCloneTypes = cloneTypes
	req.MinSimilarity = c.minSimilarity
	req.MaxResults = c.maxResults
	req.OutputFormat = format
	req.OutputWriter = cmd.OutOrStdout()
	req.OutputPath = outputPath
	req.ShowDetails = c.showDetails
	req.SortBy = sortBy
	req.NoProgress = c.noProgress || c.quiet
	req.LSHMode = c.lshMode
	req.LSHThreshold = c.lshThreshold
	req.Workers = c.workers
	req.Timeout = c.timeout
	req.ConfigPath = c.configFile
	return &req, nil
}

// buildUseCase assembles the scan use case with production services.
func (c *ScanCommand) buildUseCase(cmd *cobra.Command) (*app.ScanUseCase, error) {
	return app.NewScanUseCaseBuilder().
		WithService(service.NewCloneServiceWithProgress(c.progressManager())).
		WithFileReader(service.NewFileReader()).
		WithFormatter(c.formatter()).
		WithConfigLoader(service.NewCloneConfigurationLoaderWithFlags(cmd.Flags())).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
}

func (c *ScanCommand) progressManager() domain.ProgressManager {
	if c.noProgress || c.quiet || !service.IsInteractiveEnvironment() {
		return service.NewNoOpProgressManager()
	}
	return service.NewProgressManager()
}

func (c *ScanCommand) formatter() domain.CloneOutputFormatter {
	if c.showDetails {
		return service.NewDetailedCloneOutputFormatter()
	}
	return service.NewCloneOutputFormatter()
}

// parseSortCriteria parses and validates the --sort flag.
func parseSortCriteria(sort string) (domain.CloneSortCriteria, error) {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "", "severity":
		return domain.SortClonesBySeverity, nil
	case "similarity":
		return domain.SortClonesBySimilarity, nil
	case "size":
		return domain.SortClonesBySize, nil
	case "location":
		return domain.SortClonesByLocation, nil
	case "type":
		return domain.SortClonesByType, nil
	default:
		return "", fmt.Errorf("unsupported sort criteria %q (supported: severity, similarity, size, location, type)", sort)
	}
}

// NewScanCmd creates and returns the scan cobra command.
func NewScanCmd() *cobra.Command {
	scanCommand := NewScanCommand()
	return scanCommand.CreateCobraCommand()
}
