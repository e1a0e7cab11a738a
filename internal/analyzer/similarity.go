package analyzer

import (
	"strings"
	"unicode"

	"github.com/pydup/pydup/internal/constants"
)

// SimilarityCalculator scores how alike two fragments are on a 0-1 scale,
// combining tree shape, token sequence, and numeric feature deltas.
type SimilarityCalculator struct{}

func NewSimilarityCalculator() *SimilarityCalculator {
	return &SimilarityCalculator{}
}

// Similarity computes the weighted score between two fragments. Fragments
// without a parsed tree fall back to text-only comparison.
func (c *SimilarityCalculator) Similarity(a, b *Fragment) float64 {
	if a == nil || b == nil {
		return 0.0
	}
	if a.AST == nil || b.AST == nil {
		return TextSimilarity(a.Source, b.Source)
	}

	fa := a.Features
	if fa == nil {
		fa = ExtractFeatures(a.AST)
	}
	fb := b.Features
	if fb == nil {
		fb = ExtractFeatures(b.AST)
	}

	structural := structuralScore(fa, fb)
	token := TokenSimilarity(a.Source, b.Source)
	feature := featureScore(fa, fb)

	score := constants.StructuralSimilarityWeight*structural +
		constants.TokenSimilarityWeight*token +
		constants.FeatureSimilarityWeight*feature
	return clamp01(score)
}

// structuralScore averages the node-count ratio with the kind-set overlaps.
func structuralScore(a, b *FeatureBag) float64 {
	countRatio := proximity(float64(a.NodeCount), float64(b.NodeCount))
	kindOverlap := Jaccard(a.NodeKinds, b.NodeKinds)
	opOverlap := Jaccard(a.OpKinds, b.OpKinds)
	return (countRatio + kindOverlap + opOverlap) / 3.0
}

// featureScore averages per-feature proximity over the eight numeric
// features.
func featureScore(a, b *FeatureBag) float64 {
	fa := a.NumericFeatures()
	fb := b.NumericFeatures()

	total := 0.0
	for i := range fa {
		total += proximity(fa[i], fb[i])
	}
	return total / float64(len(fa))
}

// proximity maps two non-negative magnitudes to [0,1]: equal values score
// 1, values far apart approach 0.
func proximity(a, b float64) float64 {
	maxVal := a
	if b > maxVal {
		maxVal = b
	}
	if maxVal < 1 {
		maxVal = 1
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return 1.0 - diff/maxVal
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// TokenSimilarity is the LCS ratio over the two sources' token sequences:
// LCS length divided by the longer sequence's length.
func TokenSimilarity(sourceA, sourceB string) float64 {
	tokensA := Tokenize(sourceA)
	tokensB := Tokenize(sourceB)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	lcs := lcsLength(tokensA, tokensB)
	longer := len(tokensA)
	if len(tokensB) > longer {
		longer = len(tokensB)
	}
	return float64(lcs) / float64(longer)
}

// TextSimilarity compares raw source texts: whitespace-collapsed equality
// first, then a character-level LCS ratio.
func TextSimilarity(sourceA, sourceB string) float64 {
	normA := collapseWhitespace(sourceA)
	normB := collapseWhitespace(sourceB)
	if normA == normB {
		return 1.0
	}
	if len(normA) == 0 || len(normB) == 0 {
		return 0.0
	}

	runesA := []rune(normA)
	runesB := []rune(normB)
	lcs := lcsLength(runesA, runesB)
	longer := len(runesA)
	if len(runesB) > longer {
		longer = len(runesB)
	}
	return float64(lcs) / float64(longer)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize splits source into identifier/number runs and single-character
// punctuation tokens. Whitespace separates, contributing no tokens.
func Tokenize(source string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range source {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			current.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()

	return tokens
}

// lcsLength computes longest-common-subsequence length with two rolling
// rows, O(min memory) instead of the full n×m table.
func lcsLength[T comparable](a, b []T) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
