package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pydup/pydup/internal/parser"
)

func TestNormalize_AssignsPlaceholdersInFirstSeenOrder(t *testing.T) {
	node := parseStatement(t, `def greet(name):
    message = "hello"
    print(message, name)
    return message
`)

	normalized := NewNormalizer().Normalize(node)

	assert.Equal(t, "$FUNC_0$", normalized.Name, "Function name opens the function counter space")
	require.Len(t, normalized.Args, 1)
	assert.Equal(t, "$VAR_0$", normalized.Args[0].Name)

	assign := normalized.Body[0]
	require.Equal(t, parser.NodeAssign, assign.Type)
	assert.Equal(t, "$VAR_1$", assign.Targets[0].Name)

	ret := normalized.Body[2]
	require.Equal(t, parser.NodeReturn, ret.Type)
	assert.Equal(t, "$VAR_1$", ret.Value.Name, "Repeated names reuse their placeholder")
}

func TestNormalize_SeparateCounterSpaces(t *testing.T) {
	node := parseStatement(t, `def persist(record, db):
    db.save(record)
`)

	normalized := NewNormalizer().Normalize(node)

	assert.Equal(t, "$FUNC_0$", normalized.Name)
	assert.Equal(t, "$VAR_0$", normalized.Args[0].Name)
	assert.Equal(t, "$VAR_1$", normalized.Args[1].Name)

	call := normalized.Body[0].Value
	require.Equal(t, parser.NodeCall, call.Type)
	require.Equal(t, parser.NodeAttribute, call.Func.Type)
	assert.Equal(t, "$FUNC_1$", call.Func.Name, "Called method names live in the function space")
	assert.Equal(t, "$VAR_1$", call.Func.Value.Name, "The receiver is still a variable")
	assert.Equal(t, "$VAR_0$", call.Args[0].Name)
}

func TestNormalize_PreservesReservedNames(t *testing.T) {
	node := parseStatement(t, `def __init__(self, size):
    self.size = len(size)
`)

	normalized := NewNormalizer().Normalize(node)

	assert.Equal(t, "__init__", normalized.Name, "Dunder names are never renamed")
	assert.Equal(t, "self", normalized.Args[0].Name)
	assert.Equal(t, "$VAR_0$", normalized.Args[1].Name)

	assign := normalized.Body[0]
	target := assign.Targets[0]
	require.Equal(t, parser.NodeAttribute, target.Type)
	assert.Equal(t, "self", target.Value.Name)

	call := assign.Value
	require.Equal(t, parser.NodeCall, call.Type)
	assert.Equal(t, "len", call.Func.Name, "Builtins keep their names")
}

func TestNormalize_ExceptionHandlers(t *testing.T) {
	node := parseStatement(t, `try:
    risky()
except ValueError as err:
    handle(err)
`)

	normalized := NewNormalizer().Normalize(node)

	require.Len(t, normalized.Handlers, 1)
	handler := normalized.Handlers[0]
	assert.Equal(t, "ValueError", handler.Value.Name, "Well-known exception types stay put")
	assert.Equal(t, "$VAR_0$", handler.Name)

	call := handler.Body[0].Value
	assert.Equal(t, "$FUNC_1$", call.Func.Name)
	assert.Equal(t, "$VAR_0$", call.Args[0].Name)
}

func TestNormalize_ReplacesLiterals(t *testing.T) {
	node := parseStatement(t, `def defaults():
    count = 42
    ratio = 1.5
    label = "pending"
    ready = True
    missing = None
    return count
`)

	normalized := NewNormalizer().Normalize(node)

	values := make(map[string]string)
	for _, stmt := range normalized.Body {
		if stmt.Type == parser.NodeAssign && stmt.Value.Type == parser.NodeConstant {
			values[stmt.Value.LitType] = stmt.Value.LitValue
		}
	}

	assert.Equal(t, "0", values[parser.LitInt], "Integer values collapse to zero")
	assert.Equal(t, "0", values[parser.LitFloat], "Float values collapse to zero")
	assert.Equal(t, stringPlaceholder, values[parser.LitString])
	assert.Equal(t, "True", values[parser.LitBool], "Booleans are kept")
	assert.Equal(t, "None", values[parser.LitNone], "None is kept")
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	node := parseStatement(t, `def fetch(url):
    body = download(url)
    return body
`)

	NewNormalizer().Normalize(node)

	assert.Equal(t, "fetch", node.Name)
	assert.Equal(t, "url", node.Args[0].Name)
	assert.Equal(t, "body", node.Body[0].Targets[0].Name)
	assert.Equal(t, "download", node.Body[0].Value.Func.Name)
}

func TestNormalize_FreshCountersPerCall(t *testing.T) {
	first := parseStatement(t, "alpha = beta\n")
	second := parseStatement(t, "gamma = delta\n")

	normalizer := NewNormalizer()
	a := normalizer.Normalize(first)
	b := normalizer.Normalize(second)

	assert.Equal(t, "$VAR_0$", a.Targets[0].Name)
	assert.Equal(t, "$VAR_0$", b.Targets[0].Name, "Counters reset for every fragment")
	assert.Equal(t, "$VAR_1$", b.Value.Name)
}
