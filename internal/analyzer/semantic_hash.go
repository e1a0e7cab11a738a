package analyzer

import (
	"sort"
	"strings"

	"github.com/pydup/pydup/internal/parser"
)

// returnMarker appears in a signature's outputs when the fragment returns
// a value.
const returnMarker = "$RETURN$"

// semanticSignature captures what a fragment does rather than how it is
// written: its data inputs and outputs, the order of its control flow, the
// order of its operators, and the callables it invokes.
type semanticSignature struct {
	inputs  []string // sorted
	outputs []string // sorted
	control []string // traversal order
	ops     []string // traversal order
	calls   []string // traversal order
}

func (s *semanticSignature) canonical() string {
	var sb strings.Builder
	sb.WriteString("in:")
	sb.WriteString(strings.Join(s.inputs, ","))
	sb.WriteString("|out:")
	sb.WriteString(strings.Join(s.outputs, ","))
	sb.WriteString("|cf:")
	sb.WriteString(strings.Join(s.control, ","))
	sb.WriteString("|ops:")
	sb.WriteString(strings.Join(s.ops, ","))
	sb.WriteString("|calls:")
	sb.WriteString(strings.Join(s.calls, ","))
	return sb.String()
}

// SemanticHasher produces the Type-4 fingerprint. Two fragments with the
// same signature compute the same thing even when their trees differ.
type SemanticHasher struct{}

func NewSemanticHasher() *SemanticHasher {
	return &SemanticHasher{}
}

func (h *SemanticHasher) HashSemantic(node *parser.Node) string {
	sig := extractSignature(node)
	return hashDigest(sig.canonical())
}

// Control-flow tokens, emitted in the order their nodes appear. Order
// matters: "validate then loop" and "loop then validate" must differ.
var controlFlowTokens = map[parser.NodeType]string{
	parser.NodeIf:        "IF",
	parser.NodeFor:       "FOR",
	parser.NodeAsyncFor:  "FOR",
	parser.NodeWhile:     "WHILE",
	parser.NodeTry:       "TRY",
	parser.NodeWith:      "WITH",
	parser.NodeAsyncWith: "WITH",
	parser.NodeReturn:    "RETURN",
	parser.NodeRaise:     "RAISE",
	parser.NodeBreak:     "BREAK",
	parser.NodeContinue:  "CONTINUE",
}

type signatureCollector struct {
	reads    map[string]bool
	assigned map[string]bool
	returns  bool
	control  []string
	ops      []string
	calls    []string
}

func extractSignature(node *parser.Node) *semanticSignature {
	c := &signatureCollector{
		reads:    make(map[string]bool),
		assigned: make(map[string]bool),
	}
	c.visit(node)

	inputs := make([]string, 0, len(c.reads))
	for name := range c.reads {
		if c.assigned[name] || isReservedName(name) {
			continue
		}
		inputs = append(inputs, name)
	}
	sort.Strings(inputs)

	outputs := make([]string, 0, len(c.assigned)+1)
	for name := range c.assigned {
		outputs = append(outputs, name)
	}
	if c.returns {
		outputs = append(outputs, returnMarker)
	}
	sort.Strings(outputs)

	return &semanticSignature{
		inputs:  inputs,
		outputs: outputs,
		control: c.control,
		ops:     c.ops,
		calls:   c.calls,
	}
}

func (c *signatureCollector) visit(n *parser.Node) {
	if n == nil {
		return
	}

	if token, ok := controlFlowTokens[n.Type]; ok {
		c.control = append(c.control, token)
	}

	switch n.Type {
	case parser.NodeName:
		c.reads[n.Name] = true

	case parser.NodeArg:
		// Parameters count as locally defined.
		c.markAssigned(n.Name)

	case parser.NodeFunctionDef, parser.NodeAsyncFunctionDef,
		parser.NodeClassDef:
		c.markAssigned(n.Name)

	case parser.NodeAssign, parser.NodeAnnAssign, parser.NodeAugAssign,
		parser.NodeNamedExpr:
		for _, target := range n.Targets {
			c.collectTargets(target)
		}
		if n.Type == parser.NodeAugAssign && n.Op != "" {
			c.ops = append(c.ops, "AUGASSIGN:"+canonicalName(binaryOpNames, n.Op))
		}

	case parser.NodeFor, parser.NodeAsyncFor:
		for _, target := range n.Targets {
			c.collectTargets(target)
		}

	case parser.NodeWithItem, parser.NodeComprehension:
		for _, target := range n.Targets {
			c.collectTargets(target)
		}

	case parser.NodeExceptHandler:
		c.markAssigned(n.Name)

	case parser.NodeImport, parser.NodeImportFrom:
		for _, name := range n.Names {
			c.markAssigned(name)
		}

	case parser.NodeReturn:
		if n.Value != nil {
			c.returns = true
		}

	case parser.NodeBinOp:
		if n.Op != "" {
			c.ops = append(c.ops, "BINOP:"+canonicalName(binaryOpNames, n.Op))
		}
	case parser.NodeUnaryOp:
		if n.Op != "" {
			c.ops = append(c.ops, "UNARYOP:"+canonicalName(unaryOpNames, n.Op))
		}
	case parser.NodeBoolOp:
		if n.Op != "" {
			c.ops = append(c.ops, "BOOLOP:"+canonicalName(boolOpNames, n.Op))
		}
	case parser.NodeCompare:
		for _, op := range n.Ops {
			c.ops = append(c.ops, "CMPOP:"+canonicalName(compareOpNames, op))
		}

	case parser.NodeCall:
		c.recordCall(n.Func)
	}

	for _, child := range n.GetChildren() {
		c.visit(child)
	}
}

func (c *signatureCollector) markAssigned(name string) {
	if name != "" {
		c.assigned[name] = true
	}
}

// collectTargets walks an assignment target, marking every bound name.
// Tuple and starred targets unpack recursively; subscript and attribute
// targets mutate an existing object rather than binding a name, so their
// base expression stays a read.
func (c *signatureCollector) collectTargets(target *parser.Node) {
	if target == nil {
		return
	}
	switch target.Type {
	case parser.NodeName:
		c.markAssigned(target.Name)
	case parser.NodeTuple, parser.NodeList:
		for _, element := range target.Children {
			c.collectTargets(element)
		}
	case parser.NodeStarred:
		c.collectTargets(target.Value)
	}
}

// recordCall appends the callable's name: direct calls by name, method
// calls as "*.method" so the receiver doesn't matter.
func (c *signatureCollector) recordCall(fn *parser.Node) {
	if fn == nil {
		return
	}
	switch fn.Type {
	case parser.NodeName:
		c.calls = append(c.calls, fn.Name)
	case parser.NodeAttribute:
		c.calls = append(c.calls, "*."+fn.Name)
	}
}
