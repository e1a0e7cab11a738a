package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceFragment(source string) *Fragment {
	return &Fragment{Source: source}
}

func TestCandidatePairs_IdenticalSources(t *testing.T) {
	source := `def compute(items):
    total = 0
    for item in items:
        total = total + item * 2
    return total
`
	fragments := []*Fragment{
		sourceFragment(source),
		sourceFragment(source),
		sourceFragment(source),
	}

	candidates := NewLSHIndex().CandidatePairs(fragments)

	require.Len(t, candidates, 3)
	assert.Equal(t, []int{1, 2}, candidates[0], "Identical token streams share every band")
	assert.Equal(t, []int{2}, candidates[1], "Pairs point forward only")
	assert.Empty(t, candidates[2])
}

func TestCandidatePairs_NearIdenticalSources(t *testing.T) {
	base := `def load_user(db, user_id):
    row = db.fetch_one("select", user_id)
    if row is None:
        raise KeyError(user_id)
    record = make_record(row)
    record.refresh()
    cache.store(user_id, record)
    return record
`
	variant := strings.Replace(base, "record.refresh()", "record.reload()", 1)

	candidates := NewLSHIndex().CandidatePairs([]*Fragment{
		sourceFragment(base),
		sourceFragment(variant),
	})

	assert.Contains(t, candidates[0], 1,
		"A one-token edit keeps most shingles and should collide in some band")
}

func TestCandidatePairs_UnrelatedSources(t *testing.T) {
	candidates := NewLSHIndex().CandidatePairs([]*Fragment{
		sourceFragment(`def alpha(a):
    b = a + 1
    return b
`),
		sourceFragment(`class Omega:
    severity = "high"

    def describe(self):
        return {"kind": self.kind, "severity": self.severity}
`),
	})

	assert.Empty(t, candidates[0], "Disjoint shingle sets never share a band")
	assert.Empty(t, candidates[1])
}

func TestCandidatePairs_EmptySource(t *testing.T) {
	candidates := NewLSHIndex().CandidatePairs([]*Fragment{
		sourceFragment(""),
		sourceFragment(""),
	})

	assert.Empty(t, candidates[0], "Fragments without tokens are never candidates")
	assert.Empty(t, candidates[1])
}

func TestCandidatePairs_Deterministic(t *testing.T) {
	fragments := []*Fragment{
		sourceFragment("a = b + c\n"),
		sourceFragment("a = b + c\n"),
		sourceFragment("x = y * z\n"),
	}

	index := NewLSHIndex()
	first := index.CandidatePairs(fragments)
	second := index.CandidatePairs(fragments)

	assert.Equal(t, first, second)
}

func TestGenerateShingles_ShortStream(t *testing.T) {
	shingles := generateShingles([]string{"a", "b"}, 3)
	require.Len(t, shingles, 1, "Below k tokens, the whole stream is one shingle")

	again := generateShingles([]string{"a", "b"}, 3)
	assert.Equal(t, shingles, again)

	assert.Nil(t, generateShingles(nil, 3))
}

func TestMixWithSeed_SpreadsSeeds(t *testing.T) {
	value := uint64(0x1234_5678_9abc_def0)

	a := mixWithSeed(value, 0)
	b := mixWithSeed(value, 1)

	assert.NotEqual(t, a, b, "Different seeds must behave like different hash functions")
	assert.Equal(t, a, mixWithSeed(value, 0))
}
