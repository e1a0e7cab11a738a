package service

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pydup/pydup/domain"
)

func disableColor(t *testing.T) {
	t.Helper()
	restore := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = restore })
}

func sampleReport() *domain.CloneDetectionReport {
	return &domain.CloneDetectionReport{
		ScanPath:       "src",
		TotalFiles:     4,
		TotalFragments: 12,
		TotalLines:     400,
		CloneGroups: []*domain.CloneGroup{
			{
				ID:       1,
				Type:     domain.Type1Clone,
				Severity: domain.SeverityHigh,
				Instances: []*domain.CloneInstance{
					{
						Location:   domain.FragmentLocation{FilePath: "src/billing.py", StartLine: 10, EndLine: 24},
						Kind:       domain.FragmentFunction,
						Name:       "compute_totals",
						Similarity: 1.0,
					},
					{
						Location:   domain.FragmentLocation{FilePath: "src/reports.py", StartLine: 5, EndLine: 19},
						Kind:       domain.FragmentFunction,
						Similarity: 1.0,
					},
				},
				CanonicalHash:         "c0ffee",
				SimilarityRange:       domain.SimilarityRange{Min: 1.0, Max: 1.0},
				TotalDuplicatedLines:  30,
				RefactoringSuggestion: "Extract the duplicated logic into a shared helper",
				EstimatedEffort:       "low",
			},
			{
				ID:       2,
				Type:     domain.Type3Clone,
				Severity: domain.SeverityMedium,
				Instances: []*domain.CloneInstance{
					{
						Location:   domain.FragmentLocation{FilePath: "src/billing.py", StartLine: 40, EndLine: 42},
						Kind:       domain.FragmentFunction,
						Name:       "format_row",
						Similarity: 0.91,
					},
					{
						Location:   domain.FragmentLocation{FilePath: "src/export.py", StartLine: 8, EndLine: 10},
						Kind:       domain.FragmentFunction,
						Name:       "format_line",
						Similarity: 0.82,
					},
				},
				SimilarityRange:       domain.SimilarityRange{Min: 0.82, Max: 0.91},
				TotalDuplicatedLines:  6,
				RefactoringSuggestion: "Merge the variants behind a parameter",
				EstimatedEffort:       "medium",
			},
		},
		CloneTypeDistribution: map[string]int{"Type-1": 1, "Type-3": 1},
		SeverityDistribution:  map[string]int{"high": 1, "medium": 1},
		TotalDuplicatedLines:  36,
		DuplicationPercentage: 9.0,
		TopClonedFiles: []domain.ClonedFile{
			{FilePath: "src/billing.py", CloneCount: 2, DuplicatedLines: 24},
			{FilePath: "src/reports.py", CloneCount: 1, DuplicatedLines: 15},
		},
		RefactoringPriorities: []domain.RefactoringPriority{
			{
				GroupID:              1,
				Type:                 domain.Type1Clone,
				Severity:             domain.SeverityHigh,
				InstanceCount:        2,
				TotalDuplicatedLines: 30,
				PriorityScore:        84,
				Suggestion:           "Extract the duplicated logic into a shared helper",
				EstimatedEffort:      "low",
				FilesAffected:        []string{"src/billing.py", "src/reports.py"},
			},
		},
		SkippedFiles: 1,
		DurationMS:   42,
	}
}

func emptyReport() *domain.CloneDetectionReport {
	return &domain.CloneDetectionReport{
		ScanPath:              "src",
		TotalFiles:            3,
		TotalFragments:        7,
		TotalLines:            120,
		CloneGroups:           []*domain.CloneGroup{},
		CloneTypeDistribution: map[string]int{},
		SeverityDistribution:  map[string]int{},
		DurationMS:            5,
	}
}

func TestCloneFormatterText(t *testing.T) {
	disableColor(t)

	output, err := NewCloneOutputFormatter().Format(sampleReport(), domain.OutputFormatText)
	require.NoError(t, err)

	assert.Contains(t, output, "Clone Detection Report\n======================\n")

	assert.Contains(t, output, "Summary:\n")
	assert.Contains(t, output, "  Scan path:          src\n")
	assert.Contains(t, output, "  Files scanned:      4\n")
	assert.Contains(t, output, "  Fragments analyzed: 12\n")
	assert.Contains(t, output, "  Clone groups:       2\n")
	assert.Contains(t, output, "  Cloned fragments:   4\n")
	assert.Contains(t, output, "  Duplicated lines:   36 of 400 (9.0%)\n")
	assert.Contains(t, output, "  Skipped files:      1\n")
	assert.Contains(t, output, "  Duration:           42ms\n")

	assert.Contains(t, output, "Clone Types:\n  Type-1: 1 groups\n  Type-3: 1 groups\n")
	assert.Contains(t, output, "Severities:\n  high: 1 groups\n  medium: 1 groups\n")

	assert.Contains(t, output, "Clone Groups:\n=============\n")
	assert.Contains(t, output, "Group 1 [Type-1] high: 2 instances, 30 duplicated lines, similarity 1.00-1.00\n")
	assert.Contains(t, output, "  1. src/billing.py:10-24 (function compute_totals, 15 lines)\n")
	assert.Contains(t, output, "  2. src/reports.py:5-19 (15 lines)\n")
	assert.Contains(t, output, "Group 2 [Type-3] medium: 2 instances, 6 duplicated lines, similarity 0.82-0.91\n")

	assert.Contains(t, output, "Top Cloned Files:\n  1. src/billing.py (2 clones, 24 duplicated lines)\n")
	assert.Contains(t, output, "  2. src/reports.py (1 clones, 15 duplicated lines)\n")

	assert.Contains(t, output, "Refactoring Priorities:\n  1. Group 1 [Type-1] high: score 84 (2 instances, 30 lines)\n")

	// Suggestions only appear in detailed mode.
	assert.NotContains(t, output, "Suggestion:")
}

func TestCloneFormatterTextDetails(t *testing.T) {
	disableColor(t)

	output, err := NewDetailedCloneOutputFormatter().Format(sampleReport(), domain.OutputFormatText)
	require.NoError(t, err)

	assert.Contains(t, output, "  Suggestion: Extract the duplicated logic into a shared helper (effort: low)\n")
	assert.Contains(t, output, "  Suggestion: Merge the variants behind a parameter (effort: medium)\n")
	assert.Contains(t, output, "     Extract the duplicated logic into a shared helper (effort: low)\n")
}

func TestCloneFormatterTextNoClones(t *testing.T) {
	disableColor(t)

	output, err := NewCloneOutputFormatter().Format(emptyReport(), domain.OutputFormatText)
	require.NoError(t, err)

	assert.Contains(t, output, "No clones detected.\n")
	assert.Contains(t, output, "  Clone groups:       0\n")
	assert.NotContains(t, output, "Clone Groups:")
	assert.NotContains(t, output, "Clone Types:")
	assert.NotContains(t, output, "Severities:")
	assert.NotContains(t, output, "Skipped files:")
}

func TestCloneFormatterCSV(t *testing.T) {
	output, err := NewCloneOutputFormatter().Format(sampleReport(), domain.OutputFormatCSV)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(output)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5) // header plus one row per instance

	assert.Equal(t, []string{
		"group_id", "clone_type", "severity", "group_size", "group_duplicated_lines",
		"file", "start_line", "end_line", "kind", "name", "similarity",
	}, rows[0])

	assert.Equal(t, []string{
		"1", "Type-1", "high", "2", "30",
		"src/billing.py", "10", "24", "function", "compute_totals", "1.000000",
	}, rows[1])

	// Nameless instances keep the column, empty.
	assert.Equal(t, "", rows[2][9])
	assert.Equal(t, "0.820000", rows[4][10])
}

func TestCloneFormatterJSON(t *testing.T) {
	output, err := NewCloneOutputFormatter().Format(sampleReport(), domain.OutputFormatJSON)
	require.NoError(t, err)

	var decoded domain.CloneDetectionReport
	require.NoError(t, json.Unmarshal([]byte(output), &decoded))
	assert.Equal(t, "src", decoded.ScanPath)
	require.Len(t, decoded.CloneGroups, 2)
	assert.Equal(t, domain.Type1Clone, decoded.CloneGroups[0].Type)
	assert.Equal(t, "compute_totals", decoded.CloneGroups[0].Instances[0].Name)

	// Clone types serialize as their display string.
	assert.Contains(t, output, `"type": "Type-1"`)
}

func TestCloneFormatterYAML(t *testing.T) {
	output, err := NewCloneOutputFormatter().Format(sampleReport(), domain.OutputFormatYAML)
	require.NoError(t, err)

	var decoded domain.CloneDetectionReport
	require.NoError(t, yaml.Unmarshal([]byte(output), &decoded))
	assert.Equal(t, 2, len(decoded.CloneGroups))
	assert.Equal(t, domain.Type3Clone, decoded.CloneGroups[1].Type)
	assert.Equal(t, 36, decoded.TotalDuplicatedLines)
}

func TestCloneFormatterUnsupportedFormat(t *testing.T) {
	_, err := NewCloneOutputFormatter().Format(sampleReport(), domain.OutputFormat("html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "html")
}

func TestCloneFormatterWrite(t *testing.T) {
	var sb strings.Builder
	err := NewCloneOutputFormatter().Write(sampleReport(), domain.OutputFormatJSON, &sb)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(sb.String())))
}
