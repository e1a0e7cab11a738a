package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, source string) *Result {
	t.Helper()
	result, err := New().Parse(context.Background(), []byte(source))
	require.NoError(t, err, "Source should parse without error")
	require.NotNil(t, result.Root, "Root node should not be nil")
	return result
}

func TestParse_SimpleFunction(t *testing.T) {
	source := `def greet(name):
    return name
`
	result := parseSource(t, source)

	assert.Equal(t, NodeModule, result.Root.Type)
	require.Len(t, result.Root.Body, 1, "Module should contain one statement")

	fn := result.Root.Body[0]
	assert.Equal(t, NodeFunctionDef, fn.Type)
	assert.Equal(t, "greet", fn.Name)
	require.Len(t, fn.Args, 1, "Function should have one parameter")
	assert.Equal(t, "name", fn.Args[0].Name)

	require.Len(t, fn.Body, 1, "Function body should have one statement")
	ret := fn.Body[0]
	assert.Equal(t, NodeReturn, ret.Type)
	require.NotNil(t, ret.Value)
	assert.Equal(t, NodeName, ret.Value.Type)
	assert.Equal(t, "name", ret.Value.Name)
}

func TestParse_AsyncFunction(t *testing.T) {
	source := `async def fetch(url):
    return url
`
	result := parseSource(t, source)

	require.Len(t, result.Root.Body, 1)
	assert.Equal(t, NodeAsyncFunctionDef, result.Root.Body[0].Type)
	assert.Equal(t, "fetch", result.Root.Body[0].Name)
}

func TestParse_ClassWithBases(t *testing.T) {
	source := `class Dog(Animal):
    def bark(self):
        pass
`
	result := parseSource(t, source)

	require.Len(t, result.Root.Body, 1)
	class := result.Root.Body[0]
	assert.Equal(t, NodeClassDef, class.Type)
	assert.Equal(t, "Dog", class.Name)
	require.Len(t, class.Bases, 1)
	assert.Equal(t, "Animal", class.Bases[0].Name)

	require.Len(t, class.Body, 1)
	method := class.Body[0]
	assert.Equal(t, NodeFunctionDef, method.Type)
	assert.Equal(t, "bark", method.Name)
}

func TestParse_DecoratedFunction(t *testing.T) {
	source := `@staticmethod
def helper():
    pass
`
	result := parseSource(t, source)

	require.Len(t, result.Root.Body, 1)
	fn := result.Root.Body[0]
	assert.Equal(t, NodeFunctionDef, fn.Type)
	assert.Equal(t, "helper", fn.Name)
	require.Len(t, fn.Decorators, 1)
	assert.Equal(t, "staticmethod", fn.Decorators[0].Name)
	assert.Equal(t, 1, fn.Location.StartLine, "Span should include the decorator line")
}

func TestParse_IfElifElseChain(t *testing.T) {
	source := `if a:
    x = 1
elif b:
    x = 2
else:
    x = 3
`
	result := parseSource(t, source)

	require.Len(t, result.Root.Body, 1)
	ifNode := result.Root.Body[0]
	assert.Equal(t, NodeIf, ifNode.Type)
	require.NotNil(t, ifNode.Test)
	assert.Equal(t, "a", ifNode.Test.Name)
	require.Len(t, ifNode.Body, 1)

	require.Len(t, ifNode.Orelse, 1, "elif should nest as a single If in Orelse")
	elifNode := ifNode.Orelse[0]
	assert.Equal(t, NodeIf, elifNode.Type)
	require.NotNil(t, elifNode.Test)
	assert.Equal(t, "b", elifNode.Test.Name)
	require.Len(t, elifNode.Orelse, 1, "else body should attach to the innermost If")
	assert.Equal(t, NodeAssign, elifNode.Orelse[0].Type)
}

func TestParse_ForLoopWithElse(t *testing.T) {
	source := `for item in items:
    process(item)
else:
    done()
`
	result := parseSource(t, source)

	loop := result.Root.Body[0]
	assert.Equal(t, NodeFor, loop.Type)
	require.Len(t, loop.Targets, 1)
	assert.Equal(t, "item", loop.Targets[0].Name)
	require.NotNil(t, loop.Iter)
	assert.Equal(t, "items", loop.Iter.Name)
	require.Len(t, loop.Body, 1)
	require.Len(t, loop.Orelse, 1)
}

func TestParse_WhileLoop(t *testing.T) {
	source := `while x > 0:
    x -= 1
`
	result := parseSource(t, source)

	loop := result.Root.Body[0]
	assert.Equal(t, NodeWhile, loop.Type)
	require.NotNil(t, loop.Test)
	assert.Equal(t, NodeCompare, loop.Test.Type)
	require.Len(t, loop.Body, 1)

	aug := loop.Body[0]
	assert.Equal(t, NodeAugAssign, aug.Type)
	assert.Equal(t, "-", aug.Op, "Operator should be stored without the trailing =")
}

func TestParse_TryExceptFinally(t *testing.T) {
	source := `try:
    risky()
except ValueError as e:
    handle(e)
except Exception:
    log()
else:
    ok()
finally:
    cleanup()
`
	result := parseSource(t, source)

	try := result.Root.Body[0]
	assert.Equal(t, NodeTry, try.Type)
	require.Len(t, try.Body, 1)
	require.Len(t, try.Handlers, 2)

	first := try.Handlers[0]
	assert.Equal(t, NodeExceptHandler, first.Type)
	require.NotNil(t, first.Value)
	assert.Equal(t, "ValueError", first.Value.Name)
	assert.Equal(t, "e", first.Name)
	require.Len(t, first.Body, 1)

	second := try.Handlers[1]
	require.NotNil(t, second.Value)
	assert.Equal(t, "Exception", second.Value.Name)
	assert.Empty(t, second.Name)

	require.Len(t, try.Orelse, 1)
	require.Len(t, try.Finalbody, 1)
}

func TestParse_WithStatement(t *testing.T) {
	source := `with open(path) as f:
    data = f.read()
`
	result := parseSource(t, source)

	with := result.Root.Body[0]
	assert.Equal(t, NodeWith, with.Type)
	require.Len(t, with.Children, 1, "With should carry one item")

	item := with.Children[0]
	assert.Equal(t, NodeWithItem, item.Type)
	require.NotNil(t, item.Value)
	assert.Equal(t, NodeCall, item.Value.Type)
	require.Len(t, item.Targets, 1)
	assert.Equal(t, "f", item.Targets[0].Name)

	require.Len(t, with.Body, 1)
}

func TestParse_BinaryAndBooleanOperators(t *testing.T) {
	source := `y = a * b + c
z = p and q
`
	result := parseSource(t, source)
	require.Len(t, result.Root.Body, 2)

	assign := result.Root.Body[0]
	assert.Equal(t, NodeAssign, assign.Type)
	require.NotNil(t, assign.Value)
	assert.Equal(t, NodeBinOp, assign.Value.Type)
	assert.Equal(t, "+", assign.Value.Op)
	require.NotNil(t, assign.Value.Left)
	assert.Equal(t, NodeBinOp, assign.Value.Left.Type)
	assert.Equal(t, "*", assign.Value.Left.Op)

	boolAssign := result.Root.Body[1]
	require.NotNil(t, boolAssign.Value)
	assert.Equal(t, NodeBoolOp, boolAssign.Value.Type)
	assert.Equal(t, "and", boolAssign.Value.Op)
	assert.Len(t, boolAssign.Value.Children, 2)
}

func TestParse_ChainedComparison(t *testing.T) {
	source := "ok = a < b <= c\n"
	result := parseSource(t, source)

	cmp := result.Root.Body[0].Value
	require.NotNil(t, cmp)
	assert.Equal(t, NodeCompare, cmp.Type)
	require.NotNil(t, cmp.Left)
	assert.Equal(t, "a", cmp.Left.Name)
	assert.Equal(t, []string{"<", "<="}, cmp.Ops)
	require.Len(t, cmp.Children, 2)
	assert.Equal(t, "b", cmp.Children[0].Name)
	assert.Equal(t, "c", cmp.Children[1].Name)
}

func TestParse_CallWithKeywords(t *testing.T) {
	source := "connect(host, port=8080)\n"
	result := parseSource(t, source)

	expr := result.Root.Body[0]
	assert.Equal(t, NodeExpr, expr.Type)
	call := expr.Value
	require.NotNil(t, call)
	assert.Equal(t, NodeCall, call.Type)
	require.NotNil(t, call.Func)
	assert.Equal(t, "connect", call.Func.Name)
	require.Len(t, call.Args, 1)
	assert.Equal(t, "host", call.Args[0].Name)
	require.Len(t, call.Keywords, 1)
	assert.Equal(t, NodeKeyword, call.Keywords[0].Type)
	assert.Equal(t, "port", call.Keywords[0].Name)
}

func TestParse_MethodCallAttribute(t *testing.T) {
	source := "result = obj.compute(x)\n"
	result := parseSource(t, source)

	call := result.Root.Body[0].Value
	require.NotNil(t, call)
	require.NotNil(t, call.Func)
	assert.Equal(t, NodeAttribute, call.Func.Type)
	assert.Equal(t, "compute", call.Func.Name)
	require.NotNil(t, call.Func.Value)
	assert.Equal(t, "obj", call.Func.Value.Name)
}

func TestParse_ConstantLiterals(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		litType  string
		litValue string
	}{
		{"integer", "x = 42\n", LitInt, "42"},
		{"float", "x = 3.14\n", LitFloat, "3.14"},
		{"string", "x = 'hi'\n", LitString, "'hi'"},
		{"bytes", "x = b'data'\n", LitBytes, "b'data'"},
		{"bool", "x = True\n", LitBool, "True"},
		{"none", "x = None\n", LitNone, "None"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseSource(t, tt.source)
			value := result.Root.Body[0].Value
			require.NotNil(t, value)
			assert.Equal(t, NodeConstant, value.Type)
			assert.Equal(t, tt.litType, value.LitType)
			assert.Equal(t, tt.litValue, value.LitValue)
		})
	}
}

func TestParse_FStringInterpolation(t *testing.T) {
	source := "msg = f\"hello {name}\"\n"
	result := parseSource(t, source)

	value := result.Root.Body[0].Value
	require.NotNil(t, value)
	assert.Equal(t, NodeJoinedStr, value.Type)
	require.Len(t, value.Children, 1)
	assert.Equal(t, NodeName, value.Children[0].Type)
	assert.Equal(t, "name", value.Children[0].Name)
}

func TestParse_ListComprehension(t *testing.T) {
	source := "squares = [x * x for x in range(10) if x > 0]\n"
	result := parseSource(t, source)

	comp := result.Root.Body[0].Value
	require.NotNil(t, comp)
	assert.Equal(t, NodeListComp, comp.Type)
	require.NotNil(t, comp.Value)
	assert.Equal(t, NodeBinOp, comp.Value.Type)
	require.Len(t, comp.Children, 2, "Comprehension should carry the for and if clauses")
	assert.Equal(t, NodeComprehension, comp.Children[0].Type)
}

func TestParse_Collections(t *testing.T) {
	source := `a = [1, 2]
b = (1, 2)
c = {1, 2}
d = {'k': 1}
`
	result := parseSource(t, source)
	require.Len(t, result.Root.Body, 4)

	assert.Equal(t, NodeList, result.Root.Body[0].Value.Type)
	assert.Equal(t, NodeTuple, result.Root.Body[1].Value.Type)
	assert.Equal(t, NodeSet, result.Root.Body[2].Value.Type)
	assert.Equal(t, NodeDict, result.Root.Body[3].Value.Type)
	assert.Len(t, result.Root.Body[3].Value.Children, 1)
}

func TestParse_Imports(t *testing.T) {
	source := `import os
import numpy as np
from collections import OrderedDict, defaultdict
`
	result := parseSource(t, source)
	require.Len(t, result.Root.Body, 3)

	first := result.Root.Body[0]
	assert.Equal(t, NodeImport, first.Type)
	assert.Equal(t, []string{"os"}, first.Names)

	second := result.Root.Body[1]
	assert.Equal(t, []string{"numpy"}, second.Names)

	third := result.Root.Body[2]
	assert.Equal(t, NodeImportFrom, third.Type)
	assert.Equal(t, "collections", third.Name)
	assert.Equal(t, []string{"OrderedDict", "defaultdict"}, third.Names)
}

func TestParse_SyntaxErrorRejected(t *testing.T) {
	source := "def broken(:\n"
	_, err := New().Parse(context.Background(), []byte(source))
	require.Error(t, err, "Malformed source should be rejected")
}

func TestParse_EmptySource(t *testing.T) {
	result := parseSource(t, "")
	assert.Equal(t, NodeModule, result.Root.Type)
	assert.Empty(t, result.Root.Body)
}

func TestResult_LineCount(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected int
	}{
		{"trailing newline", "a = 1\nb = 2\n", 2},
		{"no trailing newline", "a = 1\nb = 2", 2},
		{"single line", "a = 1", 1},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &Result{Source: []byte(tt.source)}
			assert.Equal(t, tt.expected, result.LineCount())
		})
	}
}

func TestParse_Locations(t *testing.T) {
	source := `def first():
    pass

def second():
    pass
`
	result := parseSource(t, source)
	require.Len(t, result.Root.Body, 2)

	assert.Equal(t, 1, result.Root.Body[0].Location.StartLine)
	assert.Equal(t, 2, result.Root.Body[0].Location.EndLine)
	assert.Equal(t, 4, result.Root.Body[1].Location.StartLine)
	assert.Equal(t, 5, result.Root.Body[1].Location.EndLine)
}
