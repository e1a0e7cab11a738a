package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pydup/pydup/domain"
)

// CloneOutputFormatterImpl implements the domain.CloneOutputFormatter interface.
type CloneOutputFormatterImpl struct {
	// ShowDetails adds per-group refactoring guidance to text output.
	// Structured formats always carry the full report.
	ShowDetails bool
}

// NewCloneOutputFormatter creates a formatter with compact text output.
func NewCloneOutputFormatter() *CloneOutputFormatterImpl {
	return &CloneOutputFormatterImpl{}
}

// NewDetailedCloneOutputFormatter creates a formatter whose text output
// includes refactoring suggestions and effort estimates per group.
func NewDetailedCloneOutputFormatter() *CloneOutputFormatterImpl {
	return &CloneOutputFormatterImpl{ShowDetails: true}
}

// Format renders the report as a string in the given format.
func (f *CloneOutputFormatterImpl) Format(report *domain.CloneDetectionReport, format domain.OutputFormat) (string, error) {
	var sb strings.Builder
	if err := f.Write(report, format, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Write renders the report into the writer in the given format.
func (f *CloneOutputFormatterImpl) Write(report *domain.CloneDetectionReport, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatText:
		return f.writeText(report, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, report)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, report)
	case domain.OutputFormatCSV:
		return f.writeCSV(report, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

var cloneTypeOrder = []domain.CloneType{
	domain.Type1Clone,
	domain.Type2Clone,
	domain.Type3Clone,
	domain.Type4Clone,
}

var severityOrder = []domain.Severity{
	domain.SeverityCritical,
	domain.SeverityHigh,
	domain.SeverityMedium,
	domain.SeverityLow,
	domain.SeverityInfo,
}

// writeText renders the human-readable report.
func (f *CloneOutputFormatterImpl) writeText(report *domain.CloneDetectionReport, w io.Writer) error {
	fmt.Fprintf(w, "Clone Detection Report\n")
	fmt.Fprintf(w, "======================\n\n")

	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Scan path:          %s\n", report.ScanPath)
	fmt.Fprintf(w, "  Files scanned:      %d\n", report.TotalFiles)
	fmt.Fprintf(w, "  Fragments analyzed: %d\n", report.TotalFragments)
	fmt.Fprintf(w, "  Clone groups:       %d\n", len(report.CloneGroups))
	fmt.Fprintf(w, "  Cloned fragments:   %d\n", report.TotalClones())
	fmt.Fprintf(w, "  Duplicated lines:   %d of %d (%.1f%%)\n",
		report.TotalDuplicatedLines, report.TotalLines, report.DuplicationPercentage)
	if report.SkippedFiles > 0 {
		fmt.Fprintf(w, "  Skipped files:      %d\n", report.SkippedFiles)
	}
	fmt.Fprintf(w, "  Duration:           %dms\n\n", report.DurationMS)

	if hasAnyCount(report.CloneTypeDistribution) {
		fmt.Fprintf(w, "Clone Types:\n")
		for _, ct := range cloneTypeOrder {
			if count := report.CloneTypeDistribution[ct.String()]; count > 0 {
				fmt.Fprintf(w, "  %s: %d groups\n", ct.String(), count)
			}
		}
		fmt.Fprintf(w, "\n")
	}

	if hasAnyCount(report.SeverityDistribution) {
		fmt.Fprintf(w, "Severities:\n")
		for _, sev := range severityOrder {
			if count := report.SeverityDistribution[string(sev)]; count > 0 {
				fmt.Fprintf(w, "  %s: %d groups\n", ColorizeSeverity(sev), count)
			}
		}
		fmt.Fprintf(w, "\n")
	}

	if len(report.CloneGroups) == 0 {
		fmt.Fprintf(w, "No clones detected.\n")
		return nil
	}

	fmt.Fprintf(w, "Clone Groups:\n")
	fmt.Fprintf(w, "=============\n\n")

	for _, group := range report.CloneGroups {
		if group == nil {
			continue
		}
		fmt.Fprintf(w, "Group %d [%s] %s: %d instances, %d duplicated lines, similarity %.2f-%.2f\n",
			group.ID, group.Type.String(), ColorizeSeverity(group.Severity),
			group.Size(), group.TotalDuplicatedLines,
			group.SimilarityRange.Min, group.SimilarityRange.Max)

		for i, inst := range group.Instances {
			if inst == nil {
				continue
			}
			if inst.Name != "" {
				fmt.Fprintf(w, "  %d. %s (%s %s, %d lines)\n",
					i+1, inst.Location.String(), inst.Kind, inst.Name, inst.Location.LineCount())
			} else {
				fmt.Fprintf(w, "  %d. %s (%d lines)\n",
					i+1, inst.Location.String(), inst.Location.LineCount())
			}
		}

		if f.ShowDetails && group.RefactoringSuggestion != "" {
			fmt.Fprintf(w, "  Suggestion: %s (effort: %s)\n",
				group.RefactoringSuggestion, group.EstimatedEffort)
		}
		fmt.Fprintf(w, "\n")
	}

	if len(report.TopClonedFiles) > 0 {
		fmt.Fprintf(w, "Top Cloned Files:\n")
		for i, cf := range report.TopClonedFiles {
			fmt.Fprintf(w, "  %d. %s (%d clones, %d duplicated lines)\n",
				i+1, cf.FilePath, cf.CloneCount, cf.DuplicatedLines)
		}
		fmt.Fprintf(w, "\n")
	}

	if len(report.RefactoringPriorities) > 0 {
		fmt.Fprintf(w, "Refactoring Priorities:\n")
		for i, p := range report.RefactoringPriorities {
			fmt.Fprintf(w, "  %d. Group %d [%s] %s: score %d (%d instances, %d lines)\n",
				i+1, p.GroupID, p.Type.String(), ColorizeSeverity(p.Severity),
				p.PriorityScore, p.InstanceCount, p.TotalDuplicatedLines)
			if f.ShowDetails && p.Suggestion != "" {
				fmt.Fprintf(w, "     %s (effort: %s)\n", p.Suggestion, p.EstimatedEffort)
			}
		}
	}

	return nil
}

// writeCSV renders one row per clone instance with its group context.
func (f *CloneOutputFormatterImpl) writeCSV(report *domain.CloneDetectionReport, w io.Writer) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	header := []string{
		"group_id", "clone_type", "severity", "group_size", "group_duplicated_lines",
		"file", "start_line", "end_line", "kind", "name", "similarity",
	}
	if err := csvWriter.Write(header); err != nil {
		return domain.NewOutputError("failed to write CSV header", err)
	}

	for _, group := range report.CloneGroups {
		if group == nil {
			continue
		}
		for _, inst := range group.Instances {
			if inst == nil {
				continue
			}
			record := []string{
				fmt.Sprintf("%d", group.ID),
				group.Type.String(),
				string(group.Severity),
				fmt.Sprintf("%d", group.Size()),
				fmt.Sprintf("%d", group.TotalDuplicatedLines),
				inst.Location.FilePath,
				fmt.Sprintf("%d", inst.Location.StartLine),
				fmt.Sprintf("%d", inst.Location.EndLine),
				string(inst.Kind),
				inst.Name,
				fmt.Sprintf("%.6f", inst.Similarity),
			}
			if err := csvWriter.Write(record); err != nil {
				return domain.NewOutputError("failed to write CSV record", err)
			}
		}
	}

	return nil
}

func hasAnyCount(m map[string]int) bool {
	for _, count := range m {
		if count > 0 {
			return true
		}
	}
	return false
}
