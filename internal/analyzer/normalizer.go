package analyzer

import (
	"fmt"
	"strings"

	"github.com/pydup/pydup/internal/parser"
)

// stringPlaceholder replaces every string literal value under normalization.
const stringPlaceholder = "$STR$"

// reservedNames pass through normalization unchanged: receiver conventions,
// builtin types and callables, and common exception types. Dunder names are
// matched by shape instead of being listed.
var reservedNames = map[string]bool{
	"self": true,
	"cls":  true,

	"bool": true, "int": true, "float": true, "complex": true, "str": true,
	"bytes": true, "bytearray": true, "list": true, "dict": true, "set": true,
	"frozenset": true, "tuple": true, "object": true, "type": true,

	"len": true, "range": true, "print": true, "enumerate": true, "zip": true,
	"map": true, "filter": true, "sorted": true, "reversed": true, "sum": true,
	"min": true, "max": true, "abs": true, "round": true, "open": true,
	"isinstance": true, "issubclass": true, "hasattr": true, "getattr": true,
	"setattr": true, "delattr": true, "super": true, "iter": true, "next": true,
	"repr": true, "hash": true, "id": true, "vars": true, "dir": true,
	"any": true, "all": true, "format": true, "input": true, "callable": true,
	"staticmethod": true, "classmethod": true, "property": true,

	"Exception": true, "BaseException": true, "ValueError": true,
	"TypeError": true, "KeyError": true, "IndexError": true,
	"AttributeError": true, "RuntimeError": true, "StopIteration": true,
	"NotImplementedError": true, "OSError": true, "IOError": true,
	"ZeroDivisionError": true, "ImportError": true, "NameError": true,
}

func isReservedName(name string) bool {
	if reservedNames[name] {
		return true
	}
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// Normalizer rewrites identifiers to positional placeholders so fragments
// that differ only by naming produce identical normalized fingerprints.
// Placeholders are assigned in first-seen order and memoized, with separate
// counter spaces for variables and callables. A Normalizer holds per-fragment
// state: use a fresh one per Normalize call or rely on the reset it performs.
type Normalizer struct {
	varNames  map[string]string
	funcNames map[string]string
}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize returns a normalized deep copy; the input tree is not mutated.
func (nz *Normalizer) Normalize(node *parser.Node) *parser.Node {
	if node == nil {
		return nil
	}
	nz.varNames = make(map[string]string)
	nz.funcNames = make(map[string]string)

	clone := node.Copy()
	nz.normalizeNode(clone)
	return clone
}

func (nz *Normalizer) variablePlaceholder(name string) string {
	if placeholder, ok := nz.varNames[name]; ok {
		return placeholder
	}
	placeholder := fmt.Sprintf("$VAR_%d$", len(nz.varNames))
	nz.varNames[name] = placeholder
	return placeholder
}

func (nz *Normalizer) functionPlaceholder(name string) string {
	if placeholder, ok := nz.funcNames[name]; ok {
		return placeholder
	}
	placeholder := fmt.Sprintf("$FUNC_%d$", len(nz.funcNames))
	nz.funcNames[name] = placeholder
	return placeholder
}

func (nz *Normalizer) renameVariable(name string) string {
	if name == "" || isReservedName(name) {
		return name
	}
	return nz.variablePlaceholder(name)
}

func (nz *Normalizer) renameFunction(name string) string {
	if name == "" || isReservedName(name) {
		return name
	}
	return nz.functionPlaceholder(name)
}

func (nz *Normalizer) normalizeNode(n *parser.Node) {
	if n == nil {
		return
	}

	switch n.Type {
	case parser.NodeFunctionDef, parser.NodeAsyncFunctionDef:
		n.Name = nz.renameFunction(n.Name)

	case parser.NodeClassDef, parser.NodeName, parser.NodeArg,
		parser.NodeKeyword, parser.NodeExceptHandler:
		n.Name = nz.renameVariable(n.Name)

	case parser.NodeCall:
		// The call target uses the callable counter space; a method call
		// normalizes its name but leaves the receiver chain to the
		// generic walk.
		switch {
		case n.Func != nil && n.Func.Type == parser.NodeName:
			n.Func.Name = nz.renameFunction(n.Func.Name)
			nz.normalizeChildren(n, n.Func)
			return
		case n.Func != nil && n.Func.Type == parser.NodeAttribute:
			n.Func.Name = nz.renameFunction(n.Func.Name)
		}

	case parser.NodeGlobal, parser.NodeNonlocal:
		for i, name := range n.Names {
			n.Names[i] = nz.renameVariable(name)
		}

	case parser.NodeConstant:
		switch n.LitType {
		case parser.LitString, parser.LitBytes:
			n.LitValue = stringPlaceholder
		case parser.LitInt, parser.LitFloat:
			n.LitValue = "0"
		}
	}

	nz.normalizeChildren(n, nil)
}

// normalizeChildren recurses into every child except the one already
// handled by the caller.
func (nz *Normalizer) normalizeChildren(n *parser.Node, done *parser.Node) {
	for _, child := range n.GetChildren() {
		if child == done {
			continue
		}
		nz.normalizeNode(child)
	}
}
