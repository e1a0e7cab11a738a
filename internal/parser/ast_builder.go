package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// builder converts tree-sitter concrete syntax into the internal AST.
type builder struct {
	source []byte
}

func newBuilder(source []byte) *builder {
	return &builder{source: source}
}

func (b *builder) build(root *sitter.Node) *Node {
	return b.buildNode(root)
}

func (b *builder) text(ts *sitter.Node) string {
	if ts == nil {
		return ""
	}
	return ts.Content(b.source)
}

func (b *builder) location(ts *sitter.Node) Location {
	start := ts.StartPoint()
	end := ts.EndPoint()
	return Location{
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column) + 1,
	}
}

func isTrivia(ts *sitter.Node) bool {
	switch ts.Type() {
	case "comment", "line_continuation":
		return true
	}
	return false
}

// namedChildren returns the named, non-trivia children of ts.
func namedChildren(ts *sitter.Node) []*sitter.Node {
	count := int(ts.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := ts.NamedChild(i)
		if child != nil && !isTrivia(child) {
			children = append(children, child)
		}
	}
	return children
}

// hasKeyword reports whether ts has an anonymous child with the given text.
func hasKeyword(ts *sitter.Node, keyword string) bool {
	count := int(ts.ChildCount())
	for i := 0; i < count; i++ {
		child := ts.Child(i)
		if child != nil && !child.IsNamed() && child.Type() == keyword {
			return true
		}
	}
	return false
}

func (b *builder) buildNode(ts *sitter.Node) *Node {
	if ts == nil {
		return nil
	}

	switch ts.Type() {
	case "module":
		return b.buildModule(ts)
	case "function_definition":
		return b.buildFunctionDef(ts)
	case "class_definition":
		return b.buildClassDef(ts)
	case "decorated_definition":
		return b.buildDecoratedDef(ts)
	case "lambda":
		return b.buildLambda(ts)

	case "if_statement":
		return b.buildIf(ts)
	case "elif_clause":
		return b.buildElif(ts)
	case "for_statement":
		return b.buildFor(ts)
	case "while_statement":
		return b.buildWhile(ts)
	case "try_statement":
		return b.buildTry(ts)
	case "with_statement":
		return b.buildWith(ts)
	case "match_statement":
		return b.buildMatch(ts)
	case "return_statement":
		return b.buildReturn(ts)
	case "raise_statement":
		return b.buildRaise(ts)
	case "assert_statement":
		return b.buildAssert(ts)
	case "delete_statement":
		return b.buildDelete(ts)
	case "pass_statement":
		return b.simpleStatement(ts, NodePass)
	case "break_statement":
		return b.simpleStatement(ts, NodeBreak)
	case "continue_statement":
		return b.simpleStatement(ts, NodeContinue)
	case "global_statement":
		return b.buildNameList(ts, NodeGlobal)
	case "nonlocal_statement":
		return b.buildNameList(ts, NodeNonlocal)
	case "import_statement":
		return b.buildImport(ts)
	case "import_from_statement":
		return b.buildImportFrom(ts)
	case "expression_statement":
		return b.buildExpressionStatement(ts)
	case "assignment":
		return b.buildAssignment(ts)
	case "augmented_assignment":
		return b.buildAugAssignment(ts)

	case "binary_operator":
		return b.buildBinOp(ts)
	case "boolean_operator":
		return b.buildBoolOp(ts)
	case "not_operator":
		return b.buildNotOp(ts)
	case "unary_operator":
		return b.buildUnaryOp(ts)
	case "comparison_operator":
		return b.buildCompare(ts)
	case "conditional_expression":
		return b.buildIfExp(ts)
	case "named_expression":
		return b.buildNamedExpr(ts)
	case "call":
		return b.buildCall(ts)
	case "attribute":
		return b.buildAttribute(ts)
	case "subscript":
		return b.buildSubscript(ts)
	case "slice":
		return b.buildCollection(ts, NodeSlice)
	case "list_splat", "dictionary_splat", "list_splat_pattern", "dictionary_splat_pattern":
		return b.buildStarred(ts)
	case "keyword_argument":
		return b.buildKeywordArgument(ts)
	case "identifier":
		return b.buildName(ts)
	case "integer", "float", "string", "concatenated_string", "true", "false", "none", "ellipsis":
		return b.buildConstant(ts)
	case "await":
		return b.buildUnaryValue(ts, NodeAwait)
	case "yield":
		return b.buildYield(ts)
	case "list":
		return b.buildCollection(ts, NodeList)
	case "tuple", "expression_list", "pattern_list", "tuple_pattern":
		return b.buildCollection(ts, NodeTuple)
	case "set":
		return b.buildCollection(ts, NodeSet)
	case "dictionary":
		return b.buildDict(ts)
	case "list_comprehension":
		return b.buildComprehension(ts, NodeListComp)
	case "set_comprehension":
		return b.buildComprehension(ts, NodeSetComp)
	case "generator_expression":
		return b.buildComprehension(ts, NodeGeneratorExp)
	case "dictionary_comprehension":
		return b.buildDictComprehension(ts)
	case "parenthesized_expression":
		return b.unwrapParenthesized(ts)
	case "as_pattern":
		return b.buildAsPattern(ts)

	case "block":
		return b.buildBlock(ts)

	default:
		return b.buildGeneric(ts)
	}
}

// buildGeneric keeps unknown constructs in the tree so hashing still sees
// their shape.
func (b *builder) buildGeneric(ts *sitter.Node) *Node {
	node := NewNode(NodeType(ts.Type()))
	node.Location = b.location(ts)
	for _, child := range namedChildren(ts) {
		if built := b.buildNode(child); built != nil {
			node.Children = append(node.Children, built)
		}
	}
	return node
}

func (b *builder) buildModule(ts *sitter.Node) *Node {
	node := NewNode(NodeModule)
	node.Location = b.location(ts)
	for _, child := range namedChildren(ts) {
		if stmt := b.buildNode(child); stmt != nil {
			node.Body = append(node.Body, stmt)
		}
	}
	return node
}

func (b *builder) buildBlock(ts *sitter.Node) *Node {
	node := NewNode(NodeType("block"))
	for _, child := range namedChildren(ts) {
		if stmt := b.buildNode(child); stmt != nil {
			node.Body = append(node.Body, stmt)
		}
	}
	return node
}

// blockBody flattens a built block node into a statement list.
func blockBody(block *Node) []*Node {
	if block == nil {
		return nil
	}
	if block.Type == NodeType("block") {
		return block.Body
	}
	return []*Node{block}
}

func (b *builder) buildFieldBody(ts *sitter.Node, field string) []*Node {
	bodyNode := ts.ChildByFieldName(field)
	if bodyNode == nil {
		return nil
	}
	return blockBody(b.buildNode(bodyNode))
}

func (b *builder) simpleStatement(ts *sitter.Node, t NodeType) *Node {
	node := NewNode(t)
	node.Location = b.location(ts)
	return node
}

func (b *builder) buildFunctionDef(ts *sitter.Node) *Node {
	node := NewNode(NodeFunctionDef)
	if hasKeyword(ts, "async") {
		node.Type = NodeAsyncFunctionDef
	}
	node.Location = b.location(ts)

	if name := ts.ChildByFieldName("name"); name != nil {
		node.Name = b.text(name)
	}
	if params := ts.ChildByFieldName("parameters"); params != nil {
		node.Args = b.buildParameters(params)
	}
	node.Body = b.buildFieldBody(ts, "body")
	return node
}

func (b *builder) buildParameters(ts *sitter.Node) []*Node {
	var args []*Node
	for _, child := range namedChildren(ts) {
		arg := NewNode(NodeArg)
		arg.Location = b.location(child)

		switch child.Type() {
		case "identifier":
			arg.Name = b.text(child)
		case "typed_parameter":
			if inner := child.NamedChild(0); inner != nil {
				arg.Name = strings.TrimLeft(b.text(inner), "*")
			}
		case "default_parameter", "typed_default_parameter":
			if name := child.ChildByFieldName("name"); name != nil {
				arg.Name = b.text(name)
			}
			if value := child.ChildByFieldName("value"); value != nil {
				arg.Value = b.buildNode(value)
			}
		case "list_splat_pattern":
			arg.Op = "*"
			if inner := child.NamedChild(0); inner != nil {
				arg.Name = b.text(inner)
			}
		case "dictionary_splat_pattern":
			arg.Op = "**"
			if inner := child.NamedChild(0); inner != nil {
				arg.Name = b.text(inner)
			}
		case "keyword_separator", "positional_separator":
			continue
		default:
			arg.Name = b.text(child)
		}
		args = append(args, arg)
	}
	return args
}

func (b *builder) buildClassDef(ts *sitter.Node) *Node {
	node := NewNode(NodeClassDef)
	node.Location = b.location(ts)

	if name := ts.ChildByFieldName("name"); name != nil {
		node.Name = b.text(name)
	}
	if supers := ts.ChildByFieldName("superclasses"); supers != nil {
		for _, base := range namedChildren(supers) {
			if built := b.buildNode(base); built != nil {
				node.Bases = append(node.Bases, built)
			}
		}
	}
	node.Body = b.buildFieldBody(ts, "body")
	return node
}

func (b *builder) buildDecoratedDef(ts *sitter.Node) *Node {
	var def *Node
	var decorators []*Node

	for _, child := range namedChildren(ts) {
		switch child.Type() {
		case "decorator":
			if inner := child.NamedChild(0); inner != nil {
				if dec := b.buildNode(inner); dec != nil {
					decorators = append(decorators, dec)
				}
			}
		case "function_definition", "class_definition":
			def = b.buildNode(child)
		}
	}
	if def == nil {
		return nil
	}
	def.Decorators = decorators
	// Span includes the decorators.
	def.Location = b.location(ts)
	return def
}

func (b *builder) buildLambda(ts *sitter.Node) *Node {
	node := NewNode(NodeLambda)
	node.Location = b.location(ts)
	if params := ts.ChildByFieldName("parameters"); params != nil {
		node.Args = b.buildParameters(params)
	}
	if body := ts.ChildByFieldName("body"); body != nil {
		if expr := b.buildNode(body); expr != nil {
			node.Body = []*Node{expr}
		}
	}
	return node
}

func (b *builder) buildIf(ts *sitter.Node) *Node {
	node := NewNode(NodeIf)
	node.Location = b.location(ts)

	if cond := ts.ChildByFieldName("condition"); cond != nil {
		node.Test = b.buildNode(cond)
	}
	node.Body = b.buildFieldBody(ts, "consequence")

	// elif chains become nested If nodes; a trailing else attaches to the
	// innermost one.
	var elifs []*Node
	var orelse []*Node
	count := int(ts.ChildCount())
	for i := 0; i < count; i++ {
		child := ts.Child(i)
		if child == nil || ts.FieldNameForChild(i) != "alternative" {
			continue
		}
		switch child.Type() {
		case "elif_clause":
			if built := b.buildElif(child); built != nil {
				elifs = append(elifs, built)
			}
		case "else_clause":
			orelse = b.buildFieldBody(child, "body")
		}
	}

	for i := len(elifs) - 1; i >= 0; i-- {
		elifs[i].Orelse = orelse
		orelse = []*Node{elifs[i]}
	}
	node.Orelse = orelse
	return node
}

func (b *builder) buildElif(ts *sitter.Node) *Node {
	node := NewNode(NodeIf)
	node.Location = b.location(ts)
	if cond := ts.ChildByFieldName("condition"); cond != nil {
		node.Test = b.buildNode(cond)
	}
	node.Body = b.buildFieldBody(ts, "consequence")
	return node
}

func (b *builder) buildFor(ts *sitter.Node) *Node {
	node := NewNode(NodeFor)
	if hasKeyword(ts, "async") {
		node.Type = NodeAsyncFor
	}
	node.Location = b.location(ts)

	if left := ts.ChildByFieldName("left"); left != nil {
		if target := b.buildNode(left); target != nil {
			node.Targets = []*Node{target}
		}
	}
	if right := ts.ChildByFieldName("right"); right != nil {
		node.Iter = b.buildNode(right)
	}
	node.Body = b.buildFieldBody(ts, "body")
	if alt := ts.ChildByFieldName("alternative"); alt != nil {
		node.Orelse = b.buildFieldBody(alt, "body")
	}
	return node
}

func (b *builder) buildWhile(ts *sitter.Node) *Node {
	node := NewNode(NodeWhile)
	node.Location = b.location(ts)
	if cond := ts.ChildByFieldName("condition"); cond != nil {
		node.Test = b.buildNode(cond)
	}
	node.Body = b.buildFieldBody(ts, "body")
	if alt := ts.ChildByFieldName("alternative"); alt != nil {
		node.Orelse = b.buildFieldBody(alt, "body")
	}
	return node
}

func (b *builder) buildTry(ts *sitter.Node) *Node {
	node := NewNode(NodeTry)
	node.Location = b.location(ts)
	node.Body = b.buildFieldBody(ts, "body")

	for _, child := range namedChildren(ts) {
		switch child.Type() {
		case "except_clause", "except_group_clause":
			if handler := b.buildExceptHandler(child); handler != nil {
				node.Handlers = append(node.Handlers, handler)
			}
		case "else_clause":
			node.Orelse = b.buildFieldBody(child, "body")
		case "finally_clause":
			for _, finallyChild := range namedChildren(child) {
				if finallyChild.Type() == "block" {
					node.Finalbody = blockBody(b.buildNode(finallyChild))
					break
				}
			}
		}
	}
	return node
}

func (b *builder) buildExceptHandler(ts *sitter.Node) *Node {
	node := NewNode(NodeExceptHandler)
	node.Location = b.location(ts)

	for _, child := range namedChildren(ts) {
		switch child.Type() {
		case "block":
			node.Body = blockBody(b.buildNode(child))
		case "as_pattern":
			// "except ValueError as e"
			if value := child.NamedChild(0); value != nil {
				node.Value = b.buildNode(value)
			}
			if alias := child.NamedChild(1); alias != nil {
				node.Name = b.text(alias)
			}
		default:
			if node.Value == nil {
				node.Value = b.buildNode(child)
			}
		}
	}
	return node
}

func (b *builder) buildWith(ts *sitter.Node) *Node {
	node := NewNode(NodeWith)
	if hasKeyword(ts, "async") {
		node.Type = NodeAsyncWith
	}
	node.Location = b.location(ts)

	for _, child := range namedChildren(ts) {
		if child.Type() != "with_clause" {
			continue
		}
		for _, itemNode := range namedChildren(child) {
			if itemNode.Type() != "with_item" {
				continue
			}
			if item := b.buildWithItem(itemNode); item != nil {
				node.Children = append(node.Children, item)
			}
		}
	}
	node.Body = b.buildFieldBody(ts, "body")
	return node
}

func (b *builder) buildWithItem(ts *sitter.Node) *Node {
	node := NewNode(NodeWithItem)
	node.Location = b.location(ts)

	value := ts.ChildByFieldName("value")
	if value == nil {
		value = ts.NamedChild(0)
	}
	if value == nil {
		return node
	}

	if value.Type() == "as_pattern" {
		if ctx := value.NamedChild(0); ctx != nil {
			node.Value = b.buildNode(ctx)
		}
		if target := b.buildAliasTarget(value.NamedChild(1)); target != nil {
			node.Targets = []*Node{target}
		}
	} else {
		node.Value = b.buildNode(value)
	}
	return node
}

// buildAsPattern handles "expr as target" outside with/except contexts.
func (b *builder) buildAsPattern(ts *sitter.Node) *Node {
	node := NewNode(NodeWithItem)
	node.Location = b.location(ts)
	if value := ts.NamedChild(0); value != nil {
		node.Value = b.buildNode(value)
	}
	if target := b.buildAliasTarget(ts.NamedChild(1)); target != nil {
		node.Targets = []*Node{target}
	}
	return node
}

// buildAliasTarget unwraps the as_pattern_target wrapper around an alias.
func (b *builder) buildAliasTarget(ts *sitter.Node) *Node {
	if ts == nil {
		return nil
	}
	if ts.Type() == "as_pattern_target" {
		if inner := ts.NamedChild(0); inner != nil {
			return b.buildNode(inner)
		}
	}
	return b.buildNode(ts)
}

func (b *builder) buildMatch(ts *sitter.Node) *Node {
	node := NewNode(NodeMatch)
	node.Location = b.location(ts)
	if subject := ts.ChildByFieldName("subject"); subject != nil {
		node.Test = b.buildNode(subject)
	}
	if body := ts.ChildByFieldName("body"); body != nil {
		for _, child := range namedChildren(body) {
			if child.Type() != "case_clause" {
				continue
			}
			matchCase := NewNode(NodeMatchCase)
			matchCase.Location = b.location(child)
			for _, caseChild := range namedChildren(child) {
				if caseChild.Type() == "block" {
					matchCase.Body = blockBody(b.buildNode(caseChild))
				} else if pattern := b.buildNode(caseChild); pattern != nil {
					matchCase.Children = append(matchCase.Children, pattern)
				}
			}
			node.Body = append(node.Body, matchCase)
		}
	}
	return node
}

func (b *builder) buildReturn(ts *sitter.Node) *Node {
	node := NewNode(NodeReturn)
	node.Location = b.location(ts)
	if value := ts.NamedChild(0); value != nil && !isTrivia(value) {
		node.Value = b.buildNode(value)
	}
	return node
}

func (b *builder) buildRaise(ts *sitter.Node) *Node {
	node := NewNode(NodeRaise)
	node.Location = b.location(ts)
	children := namedChildren(ts)
	if len(children) > 0 {
		node.Value = b.buildNode(children[0])
	}
	if len(children) > 1 {
		// raise X from Y
		if cause := b.buildNode(children[1]); cause != nil {
			node.Children = append(node.Children, cause)
		}
	}
	return node
}

func (b *builder) buildAssert(ts *sitter.Node) *Node {
	node := NewNode(NodeAssert)
	node.Location = b.location(ts)
	children := namedChildren(ts)
	if len(children) > 0 {
		node.Test = b.buildNode(children[0])
	}
	if len(children) > 1 {
		node.Value = b.buildNode(children[1])
	}
	return node
}

func (b *builder) buildDelete(ts *sitter.Node) *Node {
	node := NewNode(NodeDelete)
	node.Location = b.location(ts)
	for _, child := range namedChildren(ts) {
		if target := b.buildNode(child); target != nil {
			node.Targets = append(node.Targets, target)
		}
	}
	return node
}

func (b *builder) buildNameList(ts *sitter.Node, t NodeType) *Node {
	node := NewNode(t)
	node.Location = b.location(ts)
	for _, child := range namedChildren(ts) {
		if child.Type() == "identifier" {
			node.Names = append(node.Names, b.text(child))
		}
	}
	return node
}

func (b *builder) buildImport(ts *sitter.Node) *Node {
	node := NewNode(NodeImport)
	node.Location = b.location(ts)
	count := int(ts.ChildCount())
	for i := 0; i < count; i++ {
		child := ts.Child(i)
		if child == nil || ts.FieldNameForChild(i) != "name" {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			node.Names = append(node.Names, b.text(child))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				node.Names = append(node.Names, b.text(name))
			}
		}
	}
	return node
}

func (b *builder) buildImportFrom(ts *sitter.Node) *Node {
	node := NewNode(NodeImportFrom)
	node.Location = b.location(ts)

	if module := ts.ChildByFieldName("module_name"); module != nil {
		node.Name = b.text(module)
	}

	count := int(ts.ChildCount())
	for i := 0; i < count; i++ {
		child := ts.Child(i)
		if child == nil {
			continue
		}
		if ts.FieldNameForChild(i) == "name" {
			switch child.Type() {
			case "dotted_name", "identifier":
				node.Names = append(node.Names, b.text(child))
			case "aliased_import":
				if name := child.ChildByFieldName("name"); name != nil {
					node.Names = append(node.Names, b.text(name))
				}
			}
		} else if child.Type() == "wildcard_import" {
			node.Names = append(node.Names, "*")
		}
	}
	return node
}

func (b *builder) buildExpressionStatement(ts *sitter.Node) *Node {
	children := namedChildren(ts)
	if len(children) == 0 {
		return nil
	}

	inner := children[0]
	switch inner.Type() {
	case "assignment", "augmented_assignment":
		// Assignments are statements in their own right.
		return b.buildNode(inner)
	}

	node := NewNode(NodeExpr)
	node.Location = b.location(ts)
	node.Value = b.buildNode(inner)
	return node
}

func (b *builder) buildAssignment(ts *sitter.Node) *Node {
	node := NewNode(NodeAssign)
	node.Location = b.location(ts)

	if left := ts.ChildByFieldName("left"); left != nil {
		if target := b.buildNode(left); target != nil {
			node.Targets = []*Node{target}
		}
	}
	if right := ts.ChildByFieldName("right"); right != nil {
		node.Value = b.buildNode(right)
	}
	if typeNode := ts.ChildByFieldName("type"); typeNode != nil {
		node.Type = NodeAnnAssign
		if annotation := b.buildNode(typeNode); annotation != nil {
			node.Children = append(node.Children, annotation)
		}
	}
	return node
}

func (b *builder) buildAugAssignment(ts *sitter.Node) *Node {
	node := NewNode(NodeAugAssign)
	node.Location = b.location(ts)

	if left := ts.ChildByFieldName("left"); left != nil {
		if target := b.buildNode(left); target != nil {
			node.Targets = []*Node{target}
		}
	}
	if operator := ts.ChildByFieldName("operator"); operator != nil {
		node.Op = strings.TrimSuffix(b.text(operator), "=")
	}
	if right := ts.ChildByFieldName("right"); right != nil {
		node.Value = b.buildNode(right)
	}
	return node
}

func (b *builder) buildBinOp(ts *sitter.Node) *Node {
	node := NewNode(NodeBinOp)
	node.Location = b.location(ts)
	if left := ts.ChildByFieldName("left"); left != nil {
		node.Left = b.buildNode(left)
	}
	if operator := ts.ChildByFieldName("operator"); operator != nil {
		node.Op = b.text(operator)
	}
	if right := ts.ChildByFieldName("right"); right != nil {
		node.Right = b.buildNode(right)
	}
	return node
}

func (b *builder) buildBoolOp(ts *sitter.Node) *Node {
	node := NewNode(NodeBoolOp)
	node.Location = b.location(ts)
	if operator := ts.ChildByFieldName("operator"); operator != nil {
		node.Op = b.text(operator)
	} else if hasKeyword(ts, "and") {
		node.Op = "and"
	} else if hasKeyword(ts, "or") {
		node.Op = "or"
	}
	if left := ts.ChildByFieldName("left"); left != nil {
		if operand := b.buildNode(left); operand != nil {
			node.Children = append(node.Children, operand)
		}
	}
	if right := ts.ChildByFieldName("right"); right != nil {
		if operand := b.buildNode(right); operand != nil {
			node.Children = append(node.Children, operand)
		}
	}
	return node
}

func (b *builder) buildNotOp(ts *sitter.Node) *Node {
	node := NewNode(NodeUnaryOp)
	node.Location = b.location(ts)
	node.Op = "not"
	if arg := ts.ChildByFieldName("argument"); arg != nil {
		node.Value = b.buildNode(arg)
	} else if inner := ts.NamedChild(0); inner != nil {
		node.Value = b.buildNode(inner)
	}
	return node
}

func (b *builder) buildUnaryOp(ts *sitter.Node) *Node {
	node := NewNode(NodeUnaryOp)
	node.Location = b.location(ts)
	if operator := ts.ChildByFieldName("operator"); operator != nil {
		node.Op = b.text(operator)
	}
	if arg := ts.ChildByFieldName("argument"); arg != nil {
		node.Value = b.buildNode(arg)
	}
	return node
}

func (b *builder) buildCompare(ts *sitter.Node) *Node {
	node := NewNode(NodeCompare)
	node.Location = b.location(ts)

	count := int(ts.ChildCount())
	first := true
	for i := 0; i < count; i++ {
		child := ts.Child(i)
		if child == nil || isTrivia(child) {
			continue
		}
		if ts.FieldNameForChild(i) == "operators" {
			node.Ops = append(node.Ops, b.text(child))
			continue
		}
		if !child.IsNamed() {
			// Bare operator keywords (is, not, in) without a field name.
			switch child.Type() {
			case "<", ">", "<=", ">=", "==", "!=", "<>", "in", "is":
				node.Ops = append(node.Ops, b.text(child))
			}
			continue
		}
		operand := b.buildNode(child)
		if operand == nil {
			continue
		}
		if first {
			node.Left = operand
			first = false
		} else {
			node.Children = append(node.Children, operand)
		}
	}
	if node.Ops == nil {
		node.Ops = []string{}
	}
	node.Op = strings.Join(node.Ops, " ")
	return node
}

func (b *builder) buildIfExp(ts *sitter.Node) *Node {
	node := NewNode(NodeIfExp)
	node.Location = b.location(ts)
	children := namedChildren(ts)
	// conditional_expression children: consequence, condition, alternative
	if len(children) > 0 {
		if body := b.buildNode(children[0]); body != nil {
			node.Body = []*Node{body}
		}
	}
	if len(children) > 1 {
		node.Test = b.buildNode(children[1])
	}
	if len(children) > 2 {
		if orelse := b.buildNode(children[2]); orelse != nil {
			node.Orelse = []*Node{orelse}
		}
	}
	return node
}

func (b *builder) buildNamedExpr(ts *sitter.Node) *Node {
	node := NewNode(NodeNamedExpr)
	node.Location = b.location(ts)
	if name := ts.ChildByFieldName("name"); name != nil {
		if target := b.buildNode(name); target != nil {
			node.Targets = []*Node{target}
		}
	}
	if value := ts.ChildByFieldName("value"); value != nil {
		node.Value = b.buildNode(value)
	}
	return node
}

func (b *builder) buildCall(ts *sitter.Node) *Node {
	node := NewNode(NodeCall)
	node.Location = b.location(ts)

	if function := ts.ChildByFieldName("function"); function != nil {
		node.Func = b.buildNode(function)
	}
	args := ts.ChildByFieldName("arguments")
	if args == nil {
		return node
	}

	if args.Type() == "generator_expression" {
		// sum(x for x in xs)
		if genExp := b.buildNode(args); genExp != nil {
			node.Args = append(node.Args, genExp)
		}
		return node
	}

	for _, child := range namedChildren(args) {
		switch child.Type() {
		case "keyword_argument":
			if kw := b.buildKeywordArgument(child); kw != nil {
				node.Keywords = append(node.Keywords, kw)
			}
		default:
			if arg := b.buildNode(child); arg != nil {
				node.Args = append(node.Args, arg)
			}
		}
	}
	return node
}

func (b *builder) buildKeywordArgument(ts *sitter.Node) *Node {
	node := NewNode(NodeKeyword)
	node.Location = b.location(ts)
	if name := ts.ChildByFieldName("name"); name != nil {
		node.Name = b.text(name)
	}
	if value := ts.ChildByFieldName("value"); value != nil {
		node.Value = b.buildNode(value)
	}
	return node
}

func (b *builder) buildAttribute(ts *sitter.Node) *Node {
	node := NewNode(NodeAttribute)
	node.Location = b.location(ts)
	if object := ts.ChildByFieldName("object"); object != nil {
		node.Value = b.buildNode(object)
	}
	if attr := ts.ChildByFieldName("attribute"); attr != nil {
		node.Name = b.text(attr)
	}
	return node
}

func (b *builder) buildSubscript(ts *sitter.Node) *Node {
	node := NewNode(NodeSubscript)
	node.Location = b.location(ts)
	if value := ts.ChildByFieldName("value"); value != nil {
		node.Value = b.buildNode(value)
	}
	count := int(ts.ChildCount())
	for i := 0; i < count; i++ {
		child := ts.Child(i)
		if child == nil || ts.FieldNameForChild(i) != "subscript" {
			continue
		}
		if index := b.buildNode(child); index != nil {
			node.Children = append(node.Children, index)
		}
	}
	return node
}

func (b *builder) buildStarred(ts *sitter.Node) *Node {
	node := NewNode(NodeStarred)
	node.Location = b.location(ts)
	if inner := ts.NamedChild(0); inner != nil {
		node.Value = b.buildNode(inner)
	}
	return node
}

func (b *builder) buildName(ts *sitter.Node) *Node {
	node := NewNode(NodeName)
	node.Location = b.location(ts)
	node.Name = b.text(ts)
	return node
}

func (b *builder) buildConstant(ts *sitter.Node) *Node {
	switch ts.Type() {
	case "string", "concatenated_string":
		// f-strings carry interpolation children and hash as JoinedStr.
		var interpolations []*sitter.Node
		var walk func(n *sitter.Node)
		walk = func(n *sitter.Node) {
			for _, child := range namedChildren(n) {
				if child.Type() == "interpolation" {
					interpolations = append(interpolations, child)
				} else if child.Type() == "string" {
					walk(child)
				}
			}
		}
		walk(ts)
		if len(interpolations) > 0 {
			node := NewNode(NodeJoinedStr)
			node.Location = b.location(ts)
			for _, interp := range interpolations {
				if expr := interp.NamedChild(0); expr != nil {
					if built := b.buildNode(expr); built != nil {
						node.Children = append(node.Children, built)
					}
				}
			}
			return node
		}
	}

	node := NewNode(NodeConstant)
	node.Location = b.location(ts)
	node.LitValue = b.text(ts)
	switch ts.Type() {
	case "integer":
		node.LitType = LitInt
	case "float":
		node.LitType = LitFloat
	case "true", "false":
		node.LitType = LitBool
	case "none":
		node.LitType = LitNone
	case "ellipsis":
		node.LitType = "ellipsis"
	default:
		prefix := node.LitValue
		if i := strings.IndexAny(prefix, `'"`); i >= 0 {
			prefix = prefix[:i]
		}
		if strings.ContainsAny(prefix, "bB") {
			node.LitType = LitBytes
		} else {
			node.LitType = LitString
		}
	}
	return node
}

func (b *builder) buildUnaryValue(ts *sitter.Node, t NodeType) *Node {
	node := NewNode(t)
	node.Location = b.location(ts)
	if inner := ts.NamedChild(0); inner != nil {
		node.Value = b.buildNode(inner)
	}
	return node
}

func (b *builder) buildYield(ts *sitter.Node) *Node {
	t := NodeYield
	if hasKeyword(ts, "from") {
		t = NodeYieldFrom
	}
	return b.buildUnaryValue(ts, t)
}

func (b *builder) buildCollection(ts *sitter.Node, t NodeType) *Node {
	node := NewNode(t)
	node.Location = b.location(ts)
	for _, child := range namedChildren(ts) {
		if element := b.buildNode(child); element != nil {
			node.Children = append(node.Children, element)
		}
	}
	return node
}

func (b *builder) buildDict(ts *sitter.Node) *Node {
	node := NewNode(NodeDict)
	node.Location = b.location(ts)
	for _, child := range namedChildren(ts) {
		switch child.Type() {
		case "pair":
			pair := NewNode(NodeType("Pair"))
			pair.Location = b.location(child)
			if key := child.ChildByFieldName("key"); key != nil {
				pair.Left = b.buildNode(key)
			}
			if value := child.ChildByFieldName("value"); value != nil {
				pair.Right = b.buildNode(value)
			}
			node.Children = append(node.Children, pair)
		case "dictionary_splat":
			if splat := b.buildNode(child); splat != nil {
				node.Children = append(node.Children, splat)
			}
		}
	}
	return node
}

func (b *builder) buildComprehension(ts *sitter.Node, t NodeType) *Node {
	node := NewNode(t)
	node.Location = b.location(ts)
	if body := ts.ChildByFieldName("body"); body != nil {
		node.Value = b.buildNode(body)
	}
	node.Children = b.buildComprehensionClauses(ts)
	return node
}

func (b *builder) buildDictComprehension(ts *sitter.Node) *Node {
	node := NewNode(NodeDictComp)
	node.Location = b.location(ts)
	if body := ts.ChildByFieldName("body"); body != nil {
		// body is a pair: key / value
		if key := body.ChildByFieldName("key"); key != nil {
			node.Left = b.buildNode(key)
		}
		if value := body.ChildByFieldName("value"); value != nil {
			node.Right = b.buildNode(value)
		}
	}
	node.Children = b.buildComprehensionClauses(ts)
	return node
}

func (b *builder) buildComprehensionClauses(ts *sitter.Node) []*Node {
	var clauses []*Node
	for _, child := range namedChildren(ts) {
		switch child.Type() {
		case "for_in_clause":
			clause := NewNode(NodeComprehension)
			clause.Location = b.location(child)
			if left := child.ChildByFieldName("left"); left != nil {
				if target := b.buildNode(left); target != nil {
					clause.Targets = []*Node{target}
				}
			}
			if right := child.ChildByFieldName("right"); right != nil {
				clause.Iter = b.buildNode(right)
			}
			clauses = append(clauses, clause)
		case "if_clause":
			if cond := child.NamedChild(0); cond != nil {
				filter := NewNode(NodeType("ComprehensionIf"))
				filter.Location = b.location(child)
				filter.Test = b.buildNode(cond)
				clauses = append(clauses, filter)
			}
		}
	}
	return clauses
}

func (b *builder) unwrapParenthesized(ts *sitter.Node) *Node {
	if inner := ts.NamedChild(0); inner != nil {
		return b.buildNode(inner)
	}
	return nil
}
