package analyzer

import (
	"context"
	"fmt"

	"github.com/pydup/pydup/internal/constants"
)

// CloneType represents different types of code clones
type CloneType int

const (
	// Type1Clone - Identical code fragments (except whitespace and comments)
	Type1Clone CloneType = iota + 1
	// Type2Clone - Syntactically identical but with different identifiers/literals
	Type2Clone
	// Type3Clone - Syntactically similar with small modifications
	Type3Clone
	// Type4Clone - Functionally similar but syntactically different
	Type4Clone
)

// String returns string representation of CloneType
func (ct CloneType) String() string {
	switch ct {
	case Type1Clone:
		return "Type-1 (Identical)"
	case Type2Clone:
		return "Type-2 (Renamed)"
	case Type3Clone:
		return "Type-3 (Near-Miss)"
	case Type4Clone:
		return "Type-4 (Semantic)"
	default:
		return "Unknown"
	}
}

// GroupMember pairs a fragment with its similarity score inside a group.
// Exact and renamed members score 1.0; near-miss members carry their
// measured score against the group anchor; semantic members carry a fixed
// categorical score.
type GroupMember struct {
	Fragment   *Fragment
	Similarity float64
}

// CloneGroup is one set of mutually duplicated fragments. Groups from one
// detection run never share a fragment: each fragment belongs to at most
// one group, claimed by the earliest cascade stage that matched it.
type CloneGroup struct {
	ID        int
	CloneType CloneType
	Members   []*GroupMember

	// CanonicalHash is the fingerprint that formed the group's bucket;
	// near-miss groups carry their anchor's structural hash.
	CanonicalHash string
}

// Size returns the number of member fragments.
func (g *CloneGroup) Size() int {
	return len(g.Members)
}

// SimilarityRange returns the lowest and highest member scores. Semantic
// groups report the fixed categorical range instead.
func (g *CloneGroup) SimilarityRange() (float64, float64) {
	if g.CloneType == Type4Clone {
		return constants.Type4SimilarityRangeMin, constants.Type4SimilarityRangeMax
	}
	if len(g.Members) == 0 {
		return 0, 0
	}
	lo, hi := g.Members[0].Similarity, g.Members[0].Similarity
	for _, m := range g.Members[1:] {
		if m.Similarity < lo {
			lo = m.Similarity
		}
		if m.Similarity > hi {
			hi = m.Similarity
		}
	}
	return lo, hi
}

// TotalLineCount sums the line spans of all members.
func (g *CloneGroup) TotalLineCount() int {
	total := 0
	for _, m := range g.Members {
		total += m.Fragment.LineCount
	}
	return total
}

// DistinctFiles returns the group's file paths, in member order, each once.
func (g *CloneGroup) DistinctFiles() []string {
	seen := make(map[string]bool)
	var files []string
	for _, m := range g.Members {
		if !seen[m.Fragment.FilePath] {
			seen[m.Fragment.FilePath] = true
			files = append(files, m.Fragment.FilePath)
		}
	}
	return files
}

func (g *CloneGroup) addMember(f *Fragment, similarity float64) {
	g.Members = append(g.Members, &GroupMember{Fragment: f, Similarity: similarity})
}

// CloneDetectorConfig holds configuration for one detection run.
type CloneDetectorConfig struct {
	// MinLines is enforced by the extractor; kept here so detector
	// consumers can build both from one config value.
	MinLines int

	// SimilarityThreshold gates near-miss grouping.
	SimilarityThreshold float64

	// EnabledTypes maps clone types to whether their stage runs. A nil
	// map enables all four stages.
	EnabledTypes map[CloneType]bool

	// UseLSH switches the near-miss stage from the full pairwise scan to
	// MinHash-banding candidate selection.
	UseLSH bool
}

// DefaultCloneDetectorConfig returns the standard cascade configuration.
func DefaultCloneDetectorConfig() *CloneDetectorConfig {
	return &CloneDetectorConfig{
		MinLines:            constants.DefaultMinCloneLines,
		SimilarityThreshold: constants.DefaultSimilarityThreshold,
		EnabledTypes:        nil,
		UseLSH:              false,
	}
}

func (c *CloneDetectorConfig) typeEnabled(ct CloneType) bool {
	if c.EnabledTypes == nil {
		return true
	}
	return c.EnabledTypes[ct]
}

// CloneDetector groups duplicate fragments with a four-stage cascade:
// exact structural buckets, normalized buckets, pairwise near-miss
// similarity, then semantic buckets. Earlier stages claim fragments so
// later stages never regroup them.
//
// A detector carries no per-run state and is safe to reuse across runs;
// each Detect call owns fresh bucket maps and a fresh claimed set.
type CloneDetector struct {
	config     *CloneDetectorConfig
	hasher     *StructuralHasher
	semantic   *SemanticHasher
	similarity *SimilarityCalculator
}

// NewCloneDetector creates a detector with the given configuration.
func NewCloneDetector(config *CloneDetectorConfig) *CloneDetector {
	if config == nil {
		config = DefaultCloneDetectorConfig()
	}
	return &CloneDetector{
		config:     config,
		hasher:     NewStructuralHasher(),
		semantic:   NewSemanticHasher(),
		similarity: NewSimilarityCalculator(),
	}
}

// Detect runs fingerprinting and the cascade over the fragments, which must
// be in scan order for deterministic grouping. The context is consulted
// between pairwise comparisons; cancellation abandons the run.
func (cd *CloneDetector) Detect(ctx context.Context, fragments []*Fragment) ([]*CloneGroup, error) {
	cd.fingerprint(fragments)

	structural := newFragmentBuckets()
	normalized := newFragmentBuckets()
	semantic := newFragmentBuckets()
	for _, f := range fragments {
		if f.AST == nil {
			continue
		}
		structural.add(f.StructuralHash, f)
		normalized.add(f.NormalizedHash, f)
		semantic.add(f.SemanticHash, f)
	}

	run := &cascadeRun{
		detector: cd,
		claimed:  make(map[string]CloneType),
	}

	if cd.config.typeEnabled(Type1Clone) {
		run.groupExact(structural)
	}
	if cd.config.typeEnabled(Type2Clone) {
		run.groupRenamed(normalized)
	}
	if cd.config.typeEnabled(Type3Clone) {
		if err := run.groupNearMiss(ctx, fragments); err != nil {
			return nil, err
		}
	}
	if cd.config.typeEnabled(Type4Clone) {
		run.groupSemantic(semantic)
	}

	return run.groups, nil
}

// fingerprint computes all three hashes and the feature bag for every
// fragment that has a tree.
func (cd *CloneDetector) fingerprint(fragments []*Fragment) {
	for _, f := range fragments {
		if f.AST == nil {
			continue
		}
		f.StructuralHash = cd.hasher.HashStructural(f.AST)
		f.NormalizedHash = cd.hasher.HashNormalized(f.AST)
		f.SemanticHash = cd.semantic.HashSemantic(f.AST)
		f.Features = ExtractFeatures(f.AST)
	}
}

// fragmentBuckets is a hash→fragments index that remembers first-seen key
// order, so cascade output does not depend on map iteration order.
type fragmentBuckets struct {
	order  []string
	byHash map[string][]*Fragment
}

func newFragmentBuckets() *fragmentBuckets {
	return &fragmentBuckets{byHash: make(map[string][]*Fragment)}
}

func (b *fragmentBuckets) add(hash string, f *Fragment) {
	if _, ok := b.byHash[hash]; !ok {
		b.order = append(b.order, hash)
	}
	b.byHash[hash] = append(b.byHash[hash], f)
}

func (b *fragmentBuckets) each(fn func(hash string, members []*Fragment)) {
	for _, hash := range b.order {
		fn(hash, b.byHash[hash])
	}
}

// cascadeRun owns one Detect call's mutable state: the groups found so far
// and the claimed set that enforces stage exclusivity.
type cascadeRun struct {
	detector *CloneDetector
	groups   []*CloneGroup
	claimed  map[string]CloneType
}

func (r *cascadeRun) newGroup(ct CloneType, canonicalHash string) *CloneGroup {
	group := &CloneGroup{
		ID:            len(r.groups) + 1,
		CloneType:     ct,
		CanonicalHash: canonicalHash,
	}
	r.groups = append(r.groups, group)
	return group
}

func (r *cascadeRun) claim(f *Fragment, ct CloneType) {
	r.claimed[f.Key()] = ct
}

func (r *cascadeRun) isClaimed(f *Fragment) bool {
	_, ok := r.claimed[f.Key()]
	return ok
}

// groupExact forms a Type-1 group from every structural bucket with at
// least two fragments.
func (r *cascadeRun) groupExact(structural *fragmentBuckets) {
	structural.each(func(hash string, members []*Fragment) {
		if len(members) < 2 {
			return
		}
		group := r.newGroup(Type1Clone, hash)
		for _, f := range members {
			group.addMember(f, 1.0)
			r.claim(f, Type1Clone)
		}
	})
}

// groupRenamed forms Type-2 groups from normalized buckets. A bucket whose
// members were all claimed already is the Type-1 result seen again through
// the weaker hash, so it is skipped rather than double-counted; otherwise
// the unclaimed remainder forms the group when at least two survive.
func (r *cascadeRun) groupRenamed(normalized *fragmentBuckets) {
	normalized.each(func(hash string, members []*Fragment) {
		if len(members) < 2 {
			return
		}

		var unclaimed []*Fragment
		for _, f := range members {
			if !r.isClaimed(f) {
				unclaimed = append(unclaimed, f)
			}
		}
		if len(unclaimed) < 2 {
			return
		}

		group := r.newGroup(Type2Clone, hash)
		for _, f := range unclaimed {
			group.addMember(f, 1.0)
			r.claim(f, Type2Clone)
		}
	})
}

// groupNearMiss runs the pairwise similarity scan over fragments the exact
// and renamed stages left unclaimed. Each unprocessed fragment in scan
// order anchors one pass over the later unclaimed fragments; every match at
// or above the threshold joins the anchor's group, and grouped fragments
// are claimed immediately so they anchor or match nothing afterward.
func (r *cascadeRun) groupNearMiss(ctx context.Context, fragments []*Fragment) error {
	var unclaimed []*Fragment
	for _, f := range fragments {
		if !r.isClaimed(f) {
			unclaimed = append(unclaimed, f)
		}
	}
	if len(unclaimed) < 2 {
		return nil
	}

	// candidate index sets per anchor; nil means "all later fragments"
	var candidates [][]int
	if r.detector.config.UseLSH {
		candidates = NewLSHIndex().CandidatePairs(unclaimed)
	}

	threshold := r.detector.config.SimilarityThreshold
	for i, anchor := range unclaimed {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("near-miss stage cancelled: %w", err)
		}
		if r.isClaimed(anchor) {
			continue
		}

		var matches []*GroupMember
		forEachCandidate(candidates, i, len(unclaimed), func(j int) {
			other := unclaimed[j]
			if r.isClaimed(other) {
				return
			}
			score := r.detector.similarity.Similarity(anchor, other)
			if score >= threshold {
				matches = append(matches, &GroupMember{Fragment: other, Similarity: score})
			}
		})

		if len(matches) == 0 {
			continue
		}

		group := r.newGroup(Type3Clone, anchor.StructuralHash)
		group.addMember(anchor, 1.0)
		r.claim(anchor, Type3Clone)
		for _, m := range matches {
			group.Members = append(group.Members, m)
			r.claim(m.Fragment, Type3Clone)
		}
	}
	return nil
}

func forEachCandidate(candidates [][]int, i, total int, fn func(j int)) {
	if candidates == nil {
		for j := i + 1; j < total; j++ {
			fn(j)
		}
		return
	}
	for _, j := range candidates[i] {
		fn(j)
	}
}

// groupSemantic forms Type-4 groups from semantic buckets. A bucket whose
// members all share one structural hash is an exact clone seen again, and
// a bucket fully claimed by earlier stages carries no new information;
// both are skipped. Members score the fixed categorical similarity.
func (r *cascadeRun) groupSemantic(semantic *fragmentBuckets) {
	semantic.each(func(hash string, members []*Fragment) {
		if len(members) < 2 {
			return
		}
		if allShareStructuralHash(members) {
			return
		}

		var unclaimed []*Fragment
		for _, f := range members {
			if !r.isClaimed(f) {
				unclaimed = append(unclaimed, f)
			}
		}
		if len(unclaimed) < 2 {
			return
		}

		group := r.newGroup(Type4Clone, hash)
		for _, f := range unclaimed {
			group.addMember(f, constants.Type4InstanceSimilarity)
			r.claim(f, Type4Clone)
		}
	})
}

func allShareStructuralHash(members []*Fragment) bool {
	first := members[0].StructuralHash
	for _, f := range members[1:] {
		if f.StructuralHash != first {
			return false
		}
	}
	return true
}
