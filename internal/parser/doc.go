// Package parser provides Python code parsing using tree-sitter.
//
// This package wraps the tree-sitter Go bindings to parse Python source code
// into a lightweight Abstract Syntax Tree (AST) whose node kinds mirror the
// Python ast module. The tree is what the clone fingerprinting pipeline
// consumes: structural hashing, identifier normalization, and semantic
// signature extraction all walk these nodes.
//
// Basic usage:
//
//	p := parser.New()
//	result, err := p.Parse(ctx, []byte("def hello(): pass"))
//	if err != nil {
//	    // Handle parsing error
//	}
//	// Use result.Root to traverse the AST
package parser
