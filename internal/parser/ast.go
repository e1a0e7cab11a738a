package parser

// NodeType identifies a syntax construct in the internal AST.
type NodeType string

// Node types, following Python AST naming.
const (
	NodeModule NodeType = "Module"

	// Definitions
	NodeFunctionDef      NodeType = "FunctionDef"
	NodeAsyncFunctionDef NodeType = "AsyncFunctionDef"
	NodeClassDef         NodeType = "ClassDef"
	NodeLambda           NodeType = "Lambda"

	// Statements
	NodeReturn     NodeType = "Return"
	NodeDelete     NodeType = "Delete"
	NodeAssign     NodeType = "Assign"
	NodeAugAssign  NodeType = "AugAssign"
	NodeAnnAssign  NodeType = "AnnAssign"
	NodeFor        NodeType = "For"
	NodeAsyncFor   NodeType = "AsyncFor"
	NodeWhile      NodeType = "While"
	NodeIf         NodeType = "If"
	NodeWith       NodeType = "With"
	NodeAsyncWith  NodeType = "AsyncWith"
	NodeRaise      NodeType = "Raise"
	NodeTry        NodeType = "Try"
	NodeAssert     NodeType = "Assert"
	NodeImport     NodeType = "Import"
	NodeImportFrom NodeType = "ImportFrom"
	NodeGlobal     NodeType = "Global"
	NodeNonlocal   NodeType = "Nonlocal"
	NodeExpr       NodeType = "Expr"
	NodePass       NodeType = "Pass"
	NodeBreak      NodeType = "Break"
	NodeContinue   NodeType = "Continue"
	NodeMatch      NodeType = "Match"
	NodeMatchCase  NodeType = "MatchCase"

	// Expressions
	NodeBoolOp       NodeType = "BoolOp"
	NodeNamedExpr    NodeType = "NamedExpr"
	NodeBinOp        NodeType = "BinOp"
	NodeUnaryOp      NodeType = "UnaryOp"
	NodeIfExp        NodeType = "IfExp"
	NodeDict         NodeType = "Dict"
	NodeSet          NodeType = "Set"
	NodeList         NodeType = "List"
	NodeTuple        NodeType = "Tuple"
	NodeListComp     NodeType = "ListComp"
	NodeSetComp      NodeType = "SetComp"
	NodeDictComp     NodeType = "DictComp"
	NodeGeneratorExp NodeType = "GeneratorExp"
	NodeAwait        NodeType = "Await"
	NodeYield        NodeType = "Yield"
	NodeYieldFrom    NodeType = "YieldFrom"
	NodeCompare      NodeType = "Compare"
	NodeCall         NodeType = "Call"
	NodeConstant     NodeType = "Constant"
	NodeJoinedStr    NodeType = "JoinedStr"
	NodeAttribute    NodeType = "Attribute"
	NodeSubscript    NodeType = "Subscript"
	NodeSlice        NodeType = "Slice"
	NodeStarred      NodeType = "Starred"
	NodeName         NodeType = "Name"

	// Sub-structures
	NodeArg           NodeType = "Arg"
	NodeKeyword       NodeType = "Keyword"
	NodeAlias         NodeType = "Alias"
	NodeWithItem      NodeType = "WithItem"
	NodeExceptHandler NodeType = "ExceptHandler"
	NodeComprehension NodeType = "Comprehension"

	NodeUnknown NodeType = "Unknown"
)

// Literal type names stored on Constant nodes. Structural hashing uses the
// type name only, never the literal value.
const (
	LitString = "str"
	LitBytes  = "bytes"
	LitInt    = "int"
	LitFloat  = "float"
	LitBool   = "bool"
	LitNone   = "none"
)

// Location is a 1-based source span.
type Location struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Node is one vertex of the internal AST. Child nodes live in typed slots
// so analysis code can address them by role; GetChildren flattens the slots
// in a fixed order for generic traversal.
type Node struct {
	Type NodeType

	// Name carries identifiers: Name references, def/class names,
	// attribute and keyword-argument names, import modules, handler aliases.
	Name string

	// Constant payload: the literal's type name and raw source text.
	LitType  string
	LitValue string

	// Operator token as written ("+", "and", "<", ...). Compare chains
	// keep all operators in Ops.
	Op  string
	Ops []string

	// Single-child slots
	Func  *Node // Call target
	Left  *Node // BinOp/Compare left operand, DictComp key
	Test  *Node // If/While/IfExp/Assert condition, Match subject
	Iter  *Node // For/Comprehension iterable
	Value *Node // RHS, return/yield/await value, attribute receiver, ...
	Right *Node // BinOp right operand, DictComp value

	// Multi-child slots
	Targets    []*Node // assignment/loop/walrus targets, delete targets
	Args       []*Node // parameters or call arguments
	Keywords   []*Node // call keyword arguments
	Bases      []*Node // class bases
	Children   []*Node // role-free children (operands, elements, items, ...)
	Body       []*Node
	Handlers   []*Node
	Orelse     []*Node
	Finalbody  []*Node
	Decorators []*Node

	// Names carries bare identifier lists (import/global/nonlocal).
	Names []string

	Location Location
}

// NewNode creates a node of the given type.
func NewNode(t NodeType) *Node {
	return &Node{Type: t}
}

// GetChildren returns all child nodes in deterministic traversal order.
func (n *Node) GetChildren() []*Node {
	capacity := len(n.Targets) + len(n.Args) + len(n.Keywords) + len(n.Bases) +
		len(n.Children) + len(n.Body) + len(n.Handlers) + len(n.Orelse) +
		len(n.Finalbody) + len(n.Decorators) + 6
	children := make([]*Node, 0, capacity)

	appendSlot := func(child *Node) {
		if child != nil {
			children = append(children, child)
		}
	}
	appendSlice := func(nodes []*Node) {
		for _, child := range nodes {
			if child != nil {
				children = append(children, child)
			}
		}
	}

	appendSlice(n.Targets)
	appendSlot(n.Func)
	appendSlot(n.Left)
	appendSlot(n.Test)
	appendSlot(n.Iter)
	appendSlot(n.Value)
	appendSlot(n.Right)
	appendSlice(n.Args)
	appendSlice(n.Keywords)
	appendSlice(n.Bases)
	appendSlice(n.Children)
	appendSlice(n.Body)
	appendSlice(n.Handlers)
	appendSlice(n.Orelse)
	appendSlice(n.Finalbody)
	appendSlice(n.Decorators)

	return children
}

// Walk visits n and its descendants in pre-order. Returning false from the
// visitor skips the node's subtree.
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil {
		return
	}
	if !visitor(n) {
		return
	}
	for _, child := range n.GetChildren() {
		child.Walk(visitor)
	}
}

// FindByType collects every descendant (including n) of the given type.
func (n *Node) FindByType(t NodeType) []*Node {
	var found []*Node
	n.Walk(func(node *Node) bool {
		if node.Type == t {
			found = append(found, node)
		}
		return true
	})
	return found
}

// CountNodes returns the number of nodes in the subtree rooted at n.
func (n *Node) CountNodes() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// IsStatement reports whether the node is a statement-level construct.
func (n *Node) IsStatement() bool {
	switch n.Type {
	case NodeFunctionDef, NodeAsyncFunctionDef, NodeClassDef,
		NodeReturn, NodeDelete, NodeAssign, NodeAugAssign, NodeAnnAssign,
		NodeFor, NodeAsyncFor, NodeWhile, NodeIf, NodeWith, NodeAsyncWith,
		NodeRaise, NodeTry, NodeAssert, NodeImport, NodeImportFrom,
		NodeGlobal, NodeNonlocal, NodeExpr, NodePass, NodeBreak,
		NodeContinue, NodeMatch:
		return true
	}
	return false
}

// IsExpression reports whether the node is an expression construct.
func (n *Node) IsExpression() bool {
	switch n.Type {
	case NodeBoolOp, NodeNamedExpr, NodeBinOp, NodeUnaryOp, NodeLambda,
		NodeIfExp, NodeDict, NodeSet, NodeList, NodeTuple, NodeListComp,
		NodeSetComp, NodeDictComp, NodeGeneratorExp, NodeAwait, NodeYield,
		NodeYieldFrom, NodeCompare, NodeCall, NodeConstant, NodeJoinedStr,
		NodeAttribute, NodeSubscript, NodeSlice, NodeStarred, NodeName:
		return true
	}
	return false
}

// IsControlFlow reports whether the node alters control flow.
func (n *Node) IsControlFlow() bool {
	switch n.Type {
	case NodeIf, NodeFor, NodeAsyncFor, NodeWhile, NodeTry, NodeWith,
		NodeAsyncWith, NodeMatch, NodeReturn, NodeRaise, NodeBreak,
		NodeContinue:
		return true
	}
	return false
}

// IsLoop reports whether the node is a loop construct.
func (n *Node) IsLoop() bool {
	switch n.Type {
	case NodeFor, NodeAsyncFor, NodeWhile:
		return true
	}
	return false
}

// Copy returns a deep copy of the subtree rooted at n. The copy shares no
// nodes with the original, so transforms on it never touch the input tree.
func (n *Node) Copy() *Node {
	if n == nil {
		return nil
	}

	clone := &Node{
		Type:     n.Type,
		Name:     n.Name,
		LitType:  n.LitType,
		LitValue: n.LitValue,
		Op:       n.Op,
		Location: n.Location,
	}
	if len(n.Ops) > 0 {
		clone.Ops = make([]string, len(n.Ops))
		copy(clone.Ops, n.Ops)
	}
	if len(n.Names) > 0 {
		clone.Names = make([]string, len(n.Names))
		copy(clone.Names, n.Names)
	}

	clone.Func = n.Func.Copy()
	clone.Left = n.Left.Copy()
	clone.Test = n.Test.Copy()
	clone.Iter = n.Iter.Copy()
	clone.Value = n.Value.Copy()
	clone.Right = n.Right.Copy()

	clone.Targets = copyNodes(n.Targets)
	clone.Args = copyNodes(n.Args)
	clone.Keywords = copyNodes(n.Keywords)
	clone.Bases = copyNodes(n.Bases)
	clone.Children = copyNodes(n.Children)
	clone.Body = copyNodes(n.Body)
	clone.Handlers = copyNodes(n.Handlers)
	clone.Orelse = copyNodes(n.Orelse)
	clone.Finalbody = copyNodes(n.Finalbody)
	clone.Decorators = copyNodes(n.Decorators)

	return clone
}

func copyNodes(nodes []*Node) []*Node {
	if len(nodes) == 0 {
		return nil
	}
	copies := make([]*Node, len(nodes))
	for i, node := range nodes {
		copies[i] = node.Copy()
	}
	return copies
}
