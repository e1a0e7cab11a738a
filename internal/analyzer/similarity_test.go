package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFragment(t *testing.T, source string) *Fragment {
	t.Helper()
	node := parseStatement(t, source)
	return &Fragment{
		AST:    node,
		Source: source,
	}
}

func TestSimilarity_IdenticalFragments(t *testing.T) {
	source := `def means(values):
    total = sum(values)
    return total / len(values)
`
	a := buildFragment(t, source)
	b := buildFragment(t, source)

	score := NewSimilarityCalculator().Similarity(a, b)
	assert.InDelta(t, 1.0, score, 1e-9, "A fragment is fully similar to itself")
}

func TestSimilarity_NilFragments(t *testing.T) {
	calc := NewSimilarityCalculator()
	frag := buildFragment(t, "x = 1\n")

	assert.Zero(t, calc.Similarity(nil, frag))
	assert.Zero(t, calc.Similarity(frag, nil))
	assert.Zero(t, calc.Similarity(nil, nil))
}

func TestSimilarity_RenamedFragmentsScoreHigh(t *testing.T) {
	a := buildFragment(t, `def add_totals(values):
    acc = 0
    for v in values:
        acc += v
    return acc
`)
	b := buildFragment(t, `def sum_items(items):
    total = 0
    for item in items:
        total += item
    return total
`)

	score := NewSimilarityCalculator().Similarity(a, b)
	assert.GreaterOrEqual(t, score, 0.7, "Renames keep shape and features intact")
	assert.Less(t, score, 1.0, "Renamed tokens cost some token similarity")
}

func TestSimilarity_UnrelatedFragmentsScoreLow(t *testing.T) {
	a := buildFragment(t, `def ping():
    return "pong"
`)
	b := buildFragment(t, `class Router:
    def __init__(self, table, fallback, strict):
        self.table = dict(table)
        self.fallback = fallback
        self.strict = bool(strict)
        self.hits = 0
`)

	score := NewSimilarityCalculator().Similarity(a, b)
	assert.Less(t, score, 0.7)
}

func TestSimilarity_TextFallbackWithoutAST(t *testing.T) {
	a := &Fragment{Source: "x  =  compute( y )"}
	b := &Fragment{Source: "x = compute( y )"}

	score := NewSimilarityCalculator().Similarity(a, b)
	assert.Equal(t, 1.0, score, "Whitespace-collapsed equal sources are identical")
}

func TestTokenSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "x = y + 1", "x = y + 1", 1.0},
		{"one empty", "", "x = 1", 0.0},
		{"both empty", "", "", 0.0},
		{"disjoint", "a b c", "x y z", 0.0},
		{"one substitution", "a b c", "a x c", 2.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TokenSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTextSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, TextSimilarity("a  =  b", "a = b"),
		"Whitespace differences do not count")
	assert.Equal(t, 0.0, TextSimilarity("", "abc"))
	assert.InDelta(t, 2.0/3.0, TextSimilarity("abc", "axc"), 1e-9)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"call", "x = foo(1)", []string{"x", "=", "foo", "(", "1", ")"}},
		{"underscores", "max_value", []string{"max_value"}},
		{"operators split", "a+=b", []string{"a", "+", "=", "b"}},
		{"whitespace only", "   \n\t ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.source))
		})
	}
}

func TestLCSLength(t *testing.T) {
	assert.Equal(t, 3, lcsLength([]string{"a", "b", "c"}, []string{"a", "b", "c"}))
	assert.Equal(t, 0, lcsLength([]string{"a"}, []string{"b"}))
	assert.Equal(t, 0, lcsLength([]string{}, []string{"a"}))
	assert.Equal(t, 2, lcsLength([]rune("abc"), []rune("axc")))
	assert.Equal(t, 4, lcsLength([]rune("ABCBDAB"), []rune("BDCABA")))
}

func TestProximity(t *testing.T) {
	assert.Equal(t, 1.0, proximity(5, 5))
	assert.Equal(t, 1.0, proximity(0, 0), "Two zeros are fully close")
	assert.InDelta(t, 1.0/3.0, proximity(1, 3), 1e-9)
	assert.InDelta(t, 1.0/3.0, proximity(3, 1), 1e-9, "Proximity is symmetric")
}

func TestSimilarity_UsesPrecomputedFeatures(t *testing.T) {
	source := `def double(n):
    return n * 2
`
	a := buildFragment(t, source)
	b := buildFragment(t, source)
	a.Features = ExtractFeatures(a.AST)
	b.Features = ExtractFeatures(b.AST)

	require.NotNil(t, a.Features)
	score := NewSimilarityCalculator().Similarity(a, b)
	assert.InDelta(t, 1.0, score, 1e-9)
}
