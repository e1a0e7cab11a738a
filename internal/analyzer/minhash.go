package analyzer

import (
	"encoding/binary"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/pydup/pydup/internal/constants"
)

// LSHIndex prefilters near-miss candidates with MinHash signatures and
// locality-sensitive banding. Fragments that never share a banded bucket
// are never compared pairwise, which keeps the quadratic similarity scan
// off large scans.
type LSHIndex struct {
	signatureSize int
	bands         int
	shingleSize   int
}

// NewLSHIndex creates an index with the default signature geometry.
func NewLSHIndex() *LSHIndex {
	return &LSHIndex{
		signatureSize: constants.DefaultMinHashSignatureSize,
		bands:         constants.DefaultLSHBands,
		shingleSize:   constants.DefaultShingleSize,
	}
}

// CandidatePairs returns, for each fragment index, the sorted indexes of
// later fragments that share at least one signature band with it. The
// caller verifies candidates with full similarity scoring.
func (idx *LSHIndex) CandidatePairs(fragments []*Fragment) [][]int {
	signatures := make([][]uint64, len(fragments))
	for i, fragment := range fragments {
		signatures[i] = idx.signature(Tokenize(fragment.Source))
	}

	rowsPerBand := idx.signatureSize / idx.bands
	seen := make(map[uint64]struct{})
	candidates := make([][]int, len(fragments))

	for band := 0; band < idx.bands; band++ {
		start := band * rowsPerBand
		end := start + rowsPerBand

		buckets := make(map[uint64][]int)
		for i, sig := range signatures {
			if sig == nil {
				continue
			}
			key := hashBand(sig[start:end], uint64(band))
			buckets[key] = append(buckets[key], i)
		}

		for _, bucket := range buckets {
			if len(bucket) < 2 {
				continue
			}
			for x := 0; x < len(bucket); x++ {
				for y := x + 1; y < len(bucket); y++ {
					a, b := bucket[x], bucket[y]
					if a > b {
						a, b = b, a
					}
					pairKey := uint64(a)<<32 | uint64(b)
					if _, dup := seen[pairKey]; dup {
						continue
					}
					seen[pairKey] = struct{}{}
					candidates[a] = append(candidates[a], b)
				}
			}
		}
	}

	for i := range candidates {
		sort.Ints(candidates[i])
	}
	return candidates
}

// signature computes the fragment's MinHash signature from blake3-hashed
// k-shingles of its token stream.
func (idx *LSHIndex) signature(tokens []string) []uint64 {
	shingles := generateShingles(tokens, idx.shingleSize)
	if len(shingles) == 0 {
		return nil
	}

	values := make([]uint64, idx.signatureSize)
	for i := range values {
		values[i] = ^uint64(0)
	}
	for _, shingle := range shingles {
		for i := range values {
			h := mixWithSeed(shingle, uint64(i))
			if h < values[i] {
				values[i] = h
			}
		}
	}
	return values
}

// generateShingles hashes each k-token window to a uint64. Fewer than k
// tokens hash as one shingle over the whole sequence.
func generateShingles(tokens []string, k int) []uint64 {
	if len(tokens) == 0 {
		return nil
	}

	hasher := blake3.New()
	if len(tokens) < k {
		for _, token := range tokens {
			hasher.Write([]byte(token))
		}
		sum := hasher.Sum(nil)
		return []uint64{binary.LittleEndian.Uint64(sum[:8])}
	}

	shingleSet := make(map[uint64]struct{})
	for i := 0; i <= len(tokens)-k; i++ {
		hasher.Reset()
		for j := i; j < i+k; j++ {
			hasher.Write([]byte(tokens[j]))
		}
		sum := hasher.Sum(nil)
		shingleSet[binary.LittleEndian.Uint64(sum[:8])] = struct{}{}
	}

	shingles := make([]uint64, 0, len(shingleSet))
	for hash := range shingleSet {
		shingles = append(shingles, hash)
	}
	return shingles
}

// mixWithSeed simulates independent hash functions with murmur-style bit
// mixing, avoiding per-shingle allocations.
func mixWithSeed(value, seed uint64) uint64 {
	h := value ^ seed
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

// hashBand folds one band of a signature into a bucket key, FNV-1a style.
func hashBand(values []uint64, seed uint64) uint64 {
	const fnvPrime = 0x00000100000001B3
	h := seed ^ 0xcbf29ce484222325
	for _, v := range values {
		h ^= v
		h *= fnvPrime
	}
	return h
}
