package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pydup/pydup/domain"
)

// generateTimestampedFileName generates a report filename with a timestamp
// suffix, e.g. scan_20250114_153045.json.
func generateTimestampedFileName(command, extension string) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", command, timestamp, extension)
}

// defaultReportsDir returns the directory used for generated report files
// when no explicit destination is given. Reports land in a tool-specific
// hidden directory under the working directory, never inside scanned
// source trees.
func defaultReportsDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".pydup", "reports")
	}
	return filepath.Join(cwd, ".pydup", "reports")
}

// resolveOutputDestination maps the --out flag to a concrete file path. An
// empty return means "write to stdout".
//
//	out == "" : stdout for text; timestamped file under .pydup/reports/
//	            for structured formats
//	out == "-": stdout for every format
//	out is a directory: timestamped file inside it
//	otherwise : exactly that file
func resolveOutputDestination(out string, format domain.OutputFormat, extension string) (string, error) {
	if out == "-" {
		return "", nil
	}

	if out == "" {
		if format == domain.OutputFormatText {
			return "", nil
		}
		return timestampedPathIn(defaultReportsDir(), extension)
	}

	if isDirDestination(out) {
		return timestampedPathIn(out, extension)
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return out, nil
}

func timestampedPathIn(dir, extension string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return filepath.Join(dir, generateTimestampedFileName("scan", extension)), nil
}

func isDirDestination(out string) bool {
	if strings.HasSuffix(out, string(os.PathSeparator)) || strings.HasSuffix(out, "/") {
		return true
	}
	info, err := os.Stat(out)
	return err == nil && info.IsDir()
}
