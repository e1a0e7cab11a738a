package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pydup/pydup/domain"
)

// FileReaderImpl implements domain.FileReader.
type FileReaderImpl struct{}

// NewFileReader creates a new file reader service.
func NewFileReader() *FileReaderImpl {
	return &FileReaderImpl{}
}

// CollectPythonFiles finds Python files in the given paths, honoring the
// include/exclude glob patterns. Results are sorted and deduplicated so scan
// order is stable across runs.
func (f *FileReaderImpl) CollectPythonFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	if err := f.validatePatterns(includePatterns, "include"); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if err := f.validatePatterns(excludePatterns, "exclude"); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	seen := make(map[string]bool)
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}

		if info.IsDir() {
			dirFiles, err := f.collectFromDirectory(path, recursive, includePatterns, excludePatterns)
			if err != nil {
				return nil, err
			}
			for _, df := range dirFiles {
				if !seen[df] {
					seen[df] = true
					files = append(files, df)
				}
			}
			continue
		}

		if f.IsValidPythonFile(path) && f.shouldIncludeFile(path, includePatterns, excludePatterns) {
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// ReadFile reads the content of a file.
func (f *FileReaderImpl) ReadFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	return content, nil
}

// IsValidPythonFile reports whether path names a Python source file.
func (f *FileReaderImpl) IsValidPythonFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".py" || ext == ".pyi"
}

// FileExists reports whether path exists and is a regular file.
func (f *FileReaderImpl) FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ValidatePaths checks that every path exists before a scan starts.
func (f *FileReaderImpl) ValidatePaths(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return domain.NewFileNotFoundError(path, err)
			}
			return domain.NewValidationError(fmt.Sprintf("cannot access path: %s", path))
		}
	}
	return nil
}

func (f *FileReaderImpl) collectFromDirectory(dirPath string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFunc := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal
			return nil
		}

		if info.IsDir() && !recursive && path != dirPath {
			return filepath.SkipDir
		}

		// Hidden files and directories
		if strings.HasPrefix(info.Name(), ".") && path != dirPath {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() && f.shouldSkipDirectory(info.Name()) {
			return filepath.SkipDir
		}

		if !info.IsDir() && f.IsValidPythonFile(path) {
			if f.shouldIncludeFile(path, includePatterns, excludePatterns) {
				files = append(files, path)
			}
		}

		return nil
	}

	if err := filepath.Walk(dirPath, walkFunc); err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	return files, nil
}

// validatePattern rejects glob syntax doublestar does not support, with
// hints for the common regex habits.
func (f *FileReaderImpl) validatePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("empty pattern")
	}
	if strings.Count(pattern, "**") > 1 {
		return fmt.Errorf("multiple ** globstars are not supported")
	}
	if strings.Contains(pattern, "\\") {
		return fmt.Errorf("escaped characters are not supported in glob patterns")
	}
	if strings.HasPrefix(pattern, "^") || strings.HasSuffix(pattern, "$") {
		return fmt.Errorf("regex anchors are not supported in glob patterns")
	}
	if strings.Contains(pattern, ".*") {
		return fmt.Errorf("pattern looks like regex syntax; use glob wildcards like '*.py'")
	}
	if strings.ContainsAny(pattern, "[]") {
		return fmt.Errorf("character classes are not supported in glob patterns")
	}
	if strings.ContainsAny(pattern, "{}") {
		return fmt.Errorf("brace expansion is not supported in glob patterns")
	}
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("malformed glob pattern")
	}
	return nil
}

func (f *FileReaderImpl) validatePatterns(patterns []string, patternType string) error {
	for _, pattern := range patterns {
		if err := f.validatePattern(pattern); err != nil {
			return fmt.Errorf("invalid %s pattern '%s': %w", patternType, pattern, err)
		}
	}
	return nil
}

// matchesPattern matches path against a doublestar glob. Patterns are treated
// as unanchored (a `venv/**` written in a config should exclude any venv
// directory in the tree, not just one at the scan root), and `dir/**` also
// matches the directory itself.
func (f *FileReaderImpl) matchesPattern(pattern, path string) bool {
	normalized := filepath.ToSlash(path)

	if matched, _ := doublestar.Match(pattern, normalized); matched {
		return true
	}

	if !strings.HasPrefix(pattern, "**/") {
		if matched, _ := doublestar.Match("**/"+pattern, normalized); matched {
			return true
		}
	}

	if matched, _ := doublestar.Match(pattern, filepath.Base(normalized)); matched {
		return true
	}

	if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
		if normalized == dir || strings.HasSuffix(normalized, "/"+dir) {
			return true
		}
	}

	return false
}

// shouldIncludeFile applies exclude patterns first, then include patterns.
// With no include patterns every Python file passes.
func (f *FileReaderImpl) shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if f.matchesPattern(pattern, path) {
			return false
		}
	}

	if len(includePatterns) == 0 {
		return true
	}

	for _, pattern := range includePatterns {
		if f.matchesPattern(pattern, path) {
			return true
		}
	}

	return false
}

// shouldSkipDirectory filters out directories that never hold project source.
func (f *FileReaderImpl) shouldSkipDirectory(dirName string) bool {
	skipDirs := []string{
		"__pycache__",
		".git",
		".svn",
		".hg",
		"node_modules",
		".tox",
		".pytest_cache",
		".mypy_cache",
		".ruff_cache",
		"venv",
		"env",
		".venv",
		".env",
		"build",
		"dist",
		"*.egg-info",
	}

	dirLower := strings.ToLower(dirName)
	for _, skipDir := range skipDirs {
		if matched, _ := filepath.Match(skipDir, dirLower); matched {
			return true
		}
	}

	return false
}
