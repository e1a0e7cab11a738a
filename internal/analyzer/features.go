package analyzer

import (
	"github.com/pydup/pydup/internal/parser"
)

// FeatureBag summarizes one fragment tree for similarity scoring: node
// category counts plus the sets of distinct node-kind and operator-kind
// names encountered.
type FeatureBag struct {
	NodeCount        int
	MaxDepth         int
	StatementCount   int
	ExpressionCount  int
	ControlFlowCount int
	LoopCount        int
	CallCount        int
	AssignmentCount  int
	NodeKinds        map[string]bool
	OpKinds          map[string]bool
}

// NumericFeatures returns the bag's eight numeric features in a fixed order.
func (fb *FeatureBag) NumericFeatures() []float64 {
	return []float64{
		float64(fb.NodeCount),
		float64(fb.StatementCount),
		float64(fb.ExpressionCount),
		float64(fb.ControlFlowCount),
		float64(fb.LoopCount),
		float64(fb.CallCount),
		float64(fb.AssignmentCount),
		float64(fb.MaxDepth),
	}
}

// ExtractFeatures builds a FeatureBag in a single traversal of the tree.
func ExtractFeatures(node *parser.Node) *FeatureBag {
	bag := &FeatureBag{
		NodeKinds: make(map[string]bool),
		OpKinds:   make(map[string]bool),
	}
	collectFeatures(node, 1, bag)
	return bag
}

func collectFeatures(node *parser.Node, depth int, bag *FeatureBag) {
	if node == nil {
		return
	}

	bag.NodeCount++
	if depth > bag.MaxDepth {
		bag.MaxDepth = depth
	}
	bag.NodeKinds[string(node.Type)] = true

	if node.IsStatement() {
		bag.StatementCount++
	}
	if node.IsExpression() {
		bag.ExpressionCount++
	}
	if node.IsControlFlow() {
		bag.ControlFlowCount++
	}
	if node.IsLoop() {
		bag.LoopCount++
	}

	switch node.Type {
	case parser.NodeCall:
		bag.CallCount++
	case parser.NodeAssign, parser.NodeAugAssign, parser.NodeAnnAssign:
		bag.AssignmentCount++
	}

	for _, op := range canonicalOperators(node) {
		bag.OpKinds[op] = true
	}

	for _, child := range node.GetChildren() {
		collectFeatures(child, depth+1, bag)
	}
}

// Jaccard computes |A∩B| / |A∪B| over two string sets. Two empty sets are
// fully similar.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	intersection := 0
	for key := range a {
		if b[key] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// Canonical operator names, matching the Python ast module's spelling so
// fingerprints stay stable regardless of surface syntax.
var (
	binaryOpNames = map[string]string{
		"+":  "Add",
		"-":  "Sub",
		"*":  "Mult",
		"/":  "Div",
		"%":  "Mod",
		"**": "Pow",
		"<<": "LShift",
		">>": "RShift",
		"|":  "BitOr",
		"^":  "BitXor",
		"&":  "BitAnd",
		"//": "FloorDiv",
		"@":  "MatMult",
	}

	unaryOpNames = map[string]string{
		"-":   "USub",
		"+":   "UAdd",
		"~":   "Invert",
		"not": "Not",
	}

	boolOpNames = map[string]string{
		"and": "And",
		"or":  "Or",
	}

	compareOpNames = map[string]string{
		"==":     "Eq",
		"!=":     "NotEq",
		"<>":     "NotEq",
		"<":      "Lt",
		"<=":     "LtE",
		">":      "Gt",
		">=":     "GtE",
		"is":     "Is",
		"is not": "IsNot",
		"in":     "In",
		"not in": "NotIn",
	}
)

func canonicalName(table map[string]string, op string) string {
	if name, ok := table[op]; ok {
		return name
	}
	return op
}

// canonicalOperators returns the canonical names of every operator the node
// itself carries (not its descendants).
func canonicalOperators(node *parser.Node) []string {
	switch node.Type {
	case parser.NodeBinOp:
		if node.Op != "" {
			return []string{canonicalName(binaryOpNames, node.Op)}
		}
	case parser.NodeAugAssign:
		if node.Op != "" {
			return []string{canonicalName(binaryOpNames, node.Op)}
		}
	case parser.NodeUnaryOp:
		if node.Op != "" {
			return []string{canonicalName(unaryOpNames, node.Op)}
		}
	case parser.NodeBoolOp:
		if node.Op != "" {
			return []string{canonicalName(boolOpNames, node.Op)}
		}
	case parser.NodeCompare:
		if len(node.Ops) > 0 {
			names := make([]string, len(node.Ops))
			for i, op := range node.Ops {
				names[i] = canonicalName(compareOpNames, op)
			}
			return names
		}
	}
	return nil
}
