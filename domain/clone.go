package domain

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// CloneType classifies a clone group by the abstraction under which its
// members match.
type CloneType int

const (
	// Type1Clone is an exact copy (identical up to literal values).
	Type1Clone CloneType = iota + 1
	// Type2Clone is a copy with systematically renamed identifiers.
	Type2Clone
	// Type3Clone is a near-miss copy with small edits.
	Type3Clone
	// Type4Clone is structurally different but semantically equivalent code.
	Type4Clone
)

func (ct CloneType) String() string {
	switch ct {
	case Type1Clone:
		return "Type-1"
	case Type2Clone:
		return "Type-2"
	case Type3Clone:
		return "Type-3"
	case Type4Clone:
		return "Type-4"
	default:
		return fmt.Sprintf("Type-%d", int(ct))
	}
}

// Description returns a short human-readable explanation of the clone type.
func (ct CloneType) Description() string {
	switch ct {
	case Type1Clone:
		return "identical code fragments"
	case Type2Clone:
		return "identical code with renamed identifiers"
	case Type3Clone:
		return "similar code with small modifications"
	case Type4Clone:
		return "functionally equivalent but structurally different code"
	default:
		return "unknown clone type"
	}
}

// IsValid reports whether ct is one of the four defined clone types.
func (ct CloneType) IsValid() bool {
	return ct >= Type1Clone && ct <= Type4Clone
}

// MarshalJSON encodes the clone type as its display string ("Type-1" .. "Type-4").
func (ct CloneType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ct.String() + `"`), nil
}

// UnmarshalJSON accepts both the display string and the bare numeric form.
func (ct *CloneType) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseCloneType(s)
	if err != nil {
		return err
	}
	*ct = parsed
	return nil
}

// MarshalYAML encodes the clone type as its display string.
func (ct CloneType) MarshalYAML() (interface{}, error) {
	return ct.String(), nil
}

// UnmarshalYAML accepts the display string or a bare number.
func (ct *CloneType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		var n int
		if err2 := unmarshal(&n); err2 != nil {
			return err
		}
		s = fmt.Sprintf("%d", n)
	}
	parsed, err := ParseCloneType(s)
	if err != nil {
		return err
	}
	*ct = parsed
	return nil
}

// ParseCloneType parses "Type-1", "type1", "1" and similar spellings.
func ParseCloneType(s string) (CloneType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.TrimPrefix(normalized, "type")
	normalized = strings.TrimPrefix(normalized, "-")
	switch normalized {
	case "1":
		return Type1Clone, nil
	case "2":
		return Type2Clone, nil
	case "3":
		return Type3Clone, nil
	case "4":
		return Type4Clone, nil
	default:
		return 0, NewValidationError(fmt.Sprintf("invalid clone type: %q", s))
	}
}

// ParseCloneTypes parses a list of clone type spellings, dropping duplicates.
func ParseCloneTypes(values []string) ([]CloneType, error) {
	seen := make(map[CloneType]bool, len(values))
	types := make([]CloneType, 0, len(values))
	for _, v := range values {
		ct, err := ParseCloneType(v)
		if err != nil {
			return nil, err
		}
		if seen[ct] {
			continue
		}
		seen[ct] = true
		types = append(types, ct)
	}
	return types, nil
}

// Severity ranks how urgently a clone group deserves attention.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// FragmentKind distinguishes function-level from class-level fragments.
type FragmentKind string

const (
	FragmentFunction FragmentKind = "function"
	FragmentClass    FragmentKind = "class"
)

// FragmentLocation pinpoints a fragment by file and 1-based line span.
type FragmentLocation struct {
	FilePath  string `json:"file_path" yaml:"file_path"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
}

func (l FragmentLocation) String() string {
	return fmt.Sprintf("%s:%d-%d", l.FilePath, l.StartLine, l.EndLine)
}

// Key returns the identity key used to enforce group exclusivity:
// a fragment may appear in at most one clone group per report.
func (l FragmentLocation) Key() string {
	return l.String()
}

// LineCount returns the number of source lines the fragment spans.
func (l FragmentLocation) LineCount() int {
	if l.EndLine < l.StartLine {
		return 0
	}
	return l.EndLine - l.StartLine + 1
}

// CloneInstance is one fragment's membership in a clone group.
type CloneInstance struct {
	Location   FragmentLocation `json:"location" yaml:"location"`
	Kind       FragmentKind     `json:"kind" yaml:"kind"`
	Name       string           `json:"name" yaml:"name"`
	Similarity float64          `json:"similarity" yaml:"similarity"`
}

// SimilarityRange is the (min, max) similarity observed among group members.
type SimilarityRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// CloneGroup is a set of two or more fragments considered duplicates of each
// other under one clone type. Groups are immutable once built.
type CloneGroup struct {
	ID                    int              `json:"id" yaml:"id"`
	Type                  CloneType        `json:"type" yaml:"type"`
	Severity              Severity         `json:"severity" yaml:"severity"`
	Instances             []*CloneInstance `json:"instances" yaml:"instances"`
	CanonicalHash         string           `json:"canonical_hash" yaml:"canonical_hash"`
	SimilarityRange       SimilarityRange  `json:"similarity_range" yaml:"similarity_range"`
	TotalDuplicatedLines  int              `json:"total_duplicated_lines" yaml:"total_duplicated_lines"`
	RefactoringSuggestion string           `json:"refactoring_suggestion" yaml:"refactoring_suggestion"`
	EstimatedEffort       string           `json:"estimated_effort" yaml:"estimated_effort"`
}

// Size returns the number of instances in the group.
func (g *CloneGroup) Size() int {
	return len(g.Instances)
}

// FilesAffected returns the distinct file paths touched by the group,
// in first-seen order.
func (g *CloneGroup) FilesAffected() []string {
	seen := make(map[string]bool, len(g.Instances))
	files := make([]string, 0, len(g.Instances))
	for _, inst := range g.Instances {
		if !seen[inst.Location.FilePath] {
			seen[inst.Location.FilePath] = true
			files = append(files, inst.Location.FilePath)
		}
	}
	return files
}

// ClonedFile summarizes one file's contribution to the duplication total.
type ClonedFile struct {
	FilePath        string `json:"file_path" yaml:"file_path"`
	CloneCount      int    `json:"clone_count" yaml:"clone_count"`
	DuplicatedLines int    `json:"duplicated_lines" yaml:"duplicated_lines"`
}

// RefactoringPriority ranks a clone group by how much fixing it would pay off.
type RefactoringPriority struct {
	GroupID              int       `json:"group_id" yaml:"group_id"`
	Type                 CloneType `json:"type" yaml:"type"`
	Severity             Severity  `json:"severity" yaml:"severity"`
	InstanceCount        int       `json:"instance_count" yaml:"instance_count"`
	TotalDuplicatedLines int       `json:"total_duplicated_lines" yaml:"total_duplicated_lines"`
	PriorityScore        int       `json:"priority_score" yaml:"priority_score"`
	Suggestion           string    `json:"suggestion" yaml:"suggestion"`
	EstimatedEffort      string    `json:"estimated_effort" yaml:"estimated_effort"`
	FilesAffected        []string  `json:"files_affected" yaml:"files_affected"`
}

// CloneDetectionReport is the complete result of one scan.
type CloneDetectionReport struct {
	ScanPath              string                `json:"scan_path" yaml:"scan_path"`
	TotalFiles            int                   `json:"total_files" yaml:"total_files"`
	TotalFragments        int                   `json:"total_fragments" yaml:"total_fragments"`
	TotalLines            int                   `json:"total_lines" yaml:"total_lines"`
	CloneGroups           []*CloneGroup         `json:"clone_groups" yaml:"clone_groups"`
	CloneTypeDistribution map[string]int        `json:"clone_type_distribution" yaml:"clone_type_distribution"`
	SeverityDistribution  map[string]int        `json:"severity_distribution" yaml:"severity_distribution"`
	TotalDuplicatedLines  int                   `json:"total_duplicated_lines" yaml:"total_duplicated_lines"`
	DuplicationPercentage float64               `json:"duplication_percentage" yaml:"duplication_percentage"`
	TopClonedFiles        []ClonedFile          `json:"top_cloned_files" yaml:"top_cloned_files"`
	RefactoringPriorities []RefactoringPriority `json:"refactoring_priorities" yaml:"refactoring_priorities"`
	SkippedFiles          int                   `json:"skipped_files" yaml:"skipped_files"`
	GeneratedAt           time.Time             `json:"generated_at" yaml:"generated_at"`
	DurationMS            int64                 `json:"duration_ms" yaml:"duration_ms"`
}

// TotalClones returns the number of fragments that belong to any group.
func (r *CloneDetectionReport) TotalClones() int {
	total := 0
	for _, g := range r.CloneGroups {
		total += g.Size()
	}
	return total
}

// CloneSortCriteria defines how clone groups are ordered in reports.
type CloneSortCriteria string

const (
	SortClonesBySeverity   CloneSortCriteria = "severity"
	SortClonesBySize       CloneSortCriteria = "size"
	SortClonesBySimilarity CloneSortCriteria = "similarity"
	SortClonesByLocation   CloneSortCriteria = "location"
	SortClonesByType       CloneSortCriteria = "type"
)

// IsValid reports whether the sort criteria is supported.
func (c CloneSortCriteria) IsValid() bool {
	switch c {
	case SortClonesBySeverity, SortClonesBySize, SortClonesBySimilarity,
		SortClonesByLocation, SortClonesByType:
		return true
	}
	return false
}

// LSH activation modes for the Type-3 candidate prefilter.
const (
	LSHModeAuto  = "auto"
	LSHModeTrue  = "true"
	LSHModeFalse = "false"
)

// CloneRequest carries everything one detection run needs.
type CloneRequest struct {
	// Input
	Paths           []string
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Analysis
	MinLines            int
	MinNodes            int
	SimilarityThreshold float64
	EnabledCloneTypes   []CloneType

	// Filtering
	MinSimilarity float64
	MaxResults    int

	// Output
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
	ShowDetails  bool
	SortBy       CloneSortCriteria
	NoProgress   bool

	// Performance
	LSHMode      string
	LSHThreshold int
	Workers      int
	Timeout      time.Duration

	// ConfigPath points at an explicit config file; empty means auto-discovery.
	ConfigPath string
}

// DefaultCloneRequest returns a request populated with the standard defaults.
func DefaultCloneRequest() CloneRequest {
	return CloneRequest{
		Paths:               []string{"."},
		Recursive:           true,
		IncludePatterns:     []string{"**/*.py"},
		ExcludePatterns:     nil,
		MinLines:            5,
		MinNodes:            10,
		SimilarityThreshold: 0.7,
		EnabledCloneTypes:   []CloneType{Type1Clone, Type2Clone, Type3Clone, Type4Clone},
		MinSimilarity:       0.0,
		MaxResults:          0,
		OutputFormat:        OutputFormatText,
		ShowDetails:         false,
		SortBy:              SortClonesBySeverity,
		LSHMode:             LSHModeAuto,
		LSHThreshold:        500,
		Workers:             4,
	}
}

// Validate checks the request for configuration errors. Detection never
// starts on an invalid request.
func (req *CloneRequest) Validate() error {
	if len(req.Paths) == 0 {
		return NewValidationError("at least one input path is required")
	}
	if req.MinLines < 1 {
		return NewValidationError("min-lines must be at least 1")
	}
	if req.MinNodes < 1 {
		return NewValidationError("min-nodes must be at least 1")
	}
	if req.SimilarityThreshold < 0.0 || req.SimilarityThreshold > 1.0 {
		return NewValidationError("similarity-threshold must be between 0.0 and 1.0")
	}
	if req.MinSimilarity < 0.0 || req.MinSimilarity > 1.0 {
		return NewValidationError("min-similarity must be between 0.0 and 1.0")
	}
	if req.MaxResults < 0 {
		return NewValidationError("max-results must not be negative")
	}
	if len(req.EnabledCloneTypes) == 0 {
		return NewValidationError("at least one clone type must be enabled")
	}
	for _, ct := range req.EnabledCloneTypes {
		if !ct.IsValid() {
			return NewValidationError(fmt.Sprintf("invalid clone type: %d", int(ct)))
		}
	}
	if req.SortBy != "" && !req.SortBy.IsValid() {
		return NewValidationError(fmt.Sprintf("invalid sort criteria: %q", string(req.SortBy)))
	}
	switch req.LSHMode {
	case "", LSHModeAuto, LSHModeTrue, LSHModeFalse:
	default:
		return NewValidationError(fmt.Sprintf("invalid lsh mode: %q (want auto, true, or false)", req.LSHMode))
	}
	if req.Workers < 0 {
		return NewValidationError("workers must not be negative")
	}
	if req.OutputFormat != "" && !req.OutputFormat.IsValid() {
		return NewUnsupportedFormatError(string(req.OutputFormat))
	}
	return nil
}

// FragmentComparison is the result of comparing two standalone code snippets.
type FragmentComparison struct {
	Similarity      float64 `json:"similarity" yaml:"similarity"`
	StructuralMatch bool    `json:"structural_match" yaml:"structural_match"`
	NormalizedMatch bool    `json:"normalized_match" yaml:"normalized_match"`
	SemanticMatch   bool    `json:"semantic_match" yaml:"semantic_match"`
	Verdict         string  `json:"verdict" yaml:"verdict"`
}

// CloneService runs clone detection.
type CloneService interface {
	// DetectClones scans the request's paths and returns the full report.
	DetectClones(ctx context.Context, req *CloneRequest) (*CloneDetectionReport, error)

	// DetectClonesInFiles runs detection over an explicit file list.
	DetectClonesInFiles(ctx context.Context, filePaths []string, req *CloneRequest) (*CloneDetectionReport, error)

	// CompareFragments scores two standalone Python snippets against each
	// other using the same fingerprints and similarity as a full scan.
	CompareFragments(ctx context.Context, sourceA, sourceB string) (*FragmentComparison, error)
}

// CloneOutputFormatter renders a report in a given output format.
type CloneOutputFormatter interface {
	Format(report *CloneDetectionReport, format OutputFormat) (string, error)
	Write(report *CloneDetectionReport, format OutputFormat, writer io.Writer) error
}

// CloneConfigurationLoader loads and merges detection configuration.
type CloneConfigurationLoader interface {
	// LoadConfig loads configuration from an explicit file path.
	LoadConfig(path string) (*CloneRequest, error)

	// LoadDefaultConfig discovers configuration starting from targetDir,
	// falling back to built-in defaults.
	LoadDefaultConfig(targetDir string) (*CloneRequest, error)

	// MergeConfig overlays explicitly set values from override onto base.
	MergeConfig(base *CloneRequest, override *CloneRequest) *CloneRequest
}
