package constants

// Clone detection defaults. The cascade classifies exact and renamed clones
// by fingerprint equality, so only the near-miss stage consumes a similarity
// threshold.
//
// References:
// - Roy, C. K., & Cordy, J. R. (2007). A survey on software clone detection research
// - Bellon, S., et al. (2007). Comparison and evaluation of clone detection tools
const (
	// DefaultMinCloneLines is the minimum number of source lines a
	// function or class must span to be considered as a clone candidate.
	// Shorter fragments produce too many trivial matches.
	DefaultMinCloneLines = 5

	// DefaultMinCloneNodes is the minimum AST size for a clone candidate,
	// filtering out line-padded but trivial fragments.
	DefaultMinCloneNodes = 10

	// DefaultSimilarityThreshold is the minimum similarity score for a
	// pair of fragments to be grouped as Type-3 (near-miss) clones.
	DefaultSimilarityThreshold = 0.70

	// Type4InstanceSimilarity is the similarity recorded for members of a
	// Type-4 group. Semantic equivalence is categorical, not measured, so
	// every member carries this fixed score.
	Type4InstanceSimilarity = 0.80

	// Type4SimilarityRangeMin and Type4SimilarityRangeMax bound the
	// reported similarity range of a Type-4 group.
	Type4SimilarityRangeMin = 0.60
	Type4SimilarityRangeMax = 0.90
)

// Weights for combining the three similarity sub-scores. They must sum to 1.
const (
	// StructuralSimilarityWeight weighs node-count ratio and node/operator
	// kind-set overlap.
	StructuralSimilarityWeight = 0.50

	// TokenSimilarityWeight weighs the token-sequence LCS ratio.
	TokenSimilarityWeight = 0.30

	// FeatureSimilarityWeight weighs the numeric feature-vector deltas.
	FeatureSimilarityWeight = 0.20
)

// Severity thresholds. A group's severity is the first row it satisfies on
// either dimension, scanning from critical downward.
const (
	// CriticalCloneInstances / CriticalCloneLines mark clones so widespread
	// that refactoring should be planned immediately.
	CriticalCloneInstances = 7
	CriticalCloneLines     = 200

	HighCloneInstances = 5
	HighCloneLines     = 100

	MediumCloneInstances = 3
	MediumCloneLines     = 50

	LowCloneInstances = 2
)

// Severity weights used in refactoring priority scores.
const (
	CriticalSeverityWeight = 100
	HighSeverityWeight     = 75
	MediumSeverityWeight   = 50
	LowSeverityWeight      = 25
	InfoSeverityWeight     = 10

	// PriorityInstanceWeight is the per-instance contribution to a
	// group's priority score.
	PriorityInstanceWeight = 10
)

// Effort estimation thresholds on (total duplicated lines, files affected).
// Line bounds are exclusive, file bounds inclusive: "Low" means fewer than
// 50 duplicated lines across at most 2 files.
const (
	LowEffortMaxLines    = 50
	LowEffortMaxFiles    = 2
	MediumEffortMaxLines = 150
	MediumEffortMaxFiles = 5
	HighEffortMaxLines   = 300
	HighEffortMaxFiles   = 10
)

// Report shaping.
const (
	// TopClonedFilesLimit caps the per-file ranking in the report.
	TopClonedFilesLimit = 10

	// RefactoringPrioritiesLimit caps the priority ranking in the report.
	RefactoringPrioritiesLimit = 10
)

// LSH prefilter defaults for the near-miss stage. The pairwise scan is
// quadratic over unclaimed fragments, so large scans route candidate
// selection through MinHash banding first.
const (
	// DefaultLSHAutoThreshold is the unclaimed-fragment count at which
	// "auto" mode switches the Type-3 stage to the LSH prefilter.
	DefaultLSHAutoThreshold = 500

	// DefaultMinHashSignatureSize is the number of hash permutations per
	// fragment signature.
	DefaultMinHashSignatureSize = 128

	// DefaultLSHBands divides the signature for banding; signature size
	// must be divisible by it.
	DefaultLSHBands = 32

	// DefaultShingleSize is the k-gram window over fragment tokens.
	DefaultShingleSize = 3
)

// DefaultParseWorkers is the per-scan parser pool size.
const DefaultParseWorkers = 4
