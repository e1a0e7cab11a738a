package analyzer

import (
	"fmt"
	"strings"

	"github.com/pydup/pydup/internal/parser"
)

// FragmentKind distinguishes function-level from class-level fragments.
type FragmentKind string

const (
	FragmentFunction FragmentKind = "function"
	FragmentClass    FragmentKind = "class"
)

// Fragment is a function- or class-level unit of source code extracted for
// clone comparison.
type Fragment struct {
	FilePath  string
	StartLine int
	EndLine   int
	Kind      FragmentKind
	Name      string

	// AST is the fragment's subtree. A nil AST routes the fragment to
	// text-only similarity.
	AST *parser.Node

	// Source is the raw text of the fragment's line span, used for
	// token-sequence similarity.
	Source string

	LineCount int
	Size      int // AST node count

	// Fingerprints and features, populated once before the cascade runs.
	StructuralHash string
	NormalizedHash string
	SemanticHash   string
	Features       *FeatureBag
}

// Key returns the fragment's identity used for claimed-set tracking. Two
// fragments with the same file and line span are the same fragment.
func (f *Fragment) Key() string {
	return fmt.Sprintf("%s:%d-%d", f.FilePath, f.StartLine, f.EndLine)
}

// String returns a human-readable location.
func (f *Fragment) String() string {
	return fmt.Sprintf("%s:%d-%d", f.FilePath, f.StartLine, f.EndLine)
}

// Extractor walks parsed modules and collects clone candidate fragments.
type Extractor struct {
	minLines int
}

// NewExtractor creates an extractor that drops fragments spanning fewer
// than minLines source lines.
func NewExtractor(minLines int) *Extractor {
	if minLines < 1 {
		minLines = 1
	}
	return &Extractor{minLines: minLines}
}

// Extract returns every function and class definition in the module whose
// line span meets the minimum. Nested definitions are extracted in their
// own right: a method yields a fragment separate from its class.
func (e *Extractor) Extract(root *parser.Node, filePath string, source []byte) []*Fragment {
	if root == nil {
		return nil
	}

	lines := strings.Split(string(source), "\n")
	var fragments []*Fragment

	root.Walk(func(node *parser.Node) bool {
		kind, ok := fragmentKind(node)
		if !ok {
			return true
		}

		lineCount := node.Location.EndLine - node.Location.StartLine + 1
		if lineCount < e.minLines {
			return true
		}

		fragments = append(fragments, &Fragment{
			FilePath:  filePath,
			StartLine: node.Location.StartLine,
			EndLine:   node.Location.EndLine,
			Kind:      kind,
			Name:      node.Name,
			AST:       node,
			Source:    sliceLines(lines, node.Location.StartLine, node.Location.EndLine),
			LineCount: lineCount,
			Size:      node.CountNodes(),
		})
		return true
	})

	return fragments
}

func fragmentKind(node *parser.Node) (FragmentKind, bool) {
	switch node.Type {
	case parser.NodeFunctionDef, parser.NodeAsyncFunctionDef:
		return FragmentFunction, true
	case parser.NodeClassDef:
		return FragmentClass, true
	}
	return "", false
}

// sliceLines extracts the 1-based inclusive line range from pre-split
// source lines.
func sliceLines(lines []string, startLine, endLine int) string {
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > endLine {
		return ""
	}
	return strings.Join(lines[startLine-1:endLine], "\n")
}
