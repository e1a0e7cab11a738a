package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser parses Python source into the internal AST via tree-sitter.
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// New creates a Parser with the Python grammar loaded.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// Result holds a successfully parsed file.
type Result struct {
	Root   *Node
	Source []byte
}

// LineCount returns the number of lines in the parsed source.
func (r *Result) LineCount() int {
	if len(r.Source) == 0 {
		return 0
	}
	lines := 1
	for _, b := range r.Source {
		if b == '\n' {
			lines++
		}
	}
	if r.Source[len(r.Source)-1] == '\n' {
		lines--
	}
	return lines
}

// Parse parses source and converts the concrete syntax tree into the
// internal AST. Sources with grammar errors are rejected.
func (p *Parser) Parse(ctx context.Context, source []byte) (*Result, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parser produced no syntax tree")
	}
	if root.HasError() {
		return nil, fmt.Errorf("syntax errors in source")
	}

	ast := newBuilder(source).build(root)
	if ast == nil {
		return nil, fmt.Errorf("failed to convert syntax tree")
	}

	return &Result{Root: ast, Source: source}, nil
}
