package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pydup/pydup/domain"
	"github.com/pydup/pydup/internal/analyzer"
	"github.com/pydup/pydup/internal/constants"
	"github.com/pydup/pydup/internal/parser"
)

// maxFragmentSourceBytes caps snippet size for direct fragment comparison.
const maxFragmentSourceBytes = 1 << 20

// CloneServiceImpl implements the CloneService interface using the
// fingerprint cascade from the analyzer package.
type CloneServiceImpl struct {
	fileReader domain.FileReader
	progress   domain.ProgressManager
}

// NewCloneService creates a new clone detection service.
func NewCloneService() *CloneServiceImpl {
	return &CloneServiceImpl{
		fileReader: NewFileReader(),
		progress:   NewNoOpProgressManager(),
	}
}

// NewCloneServiceWithProgress creates a clone detection service that reports
// per-file scan progress through the given manager.
func NewCloneServiceWithProgress(progress domain.ProgressManager) *CloneServiceImpl {
	svc := NewCloneService()
	if progress != nil {
		svc.progress = progress
	}
	return svc
}

// DetectClones scans the request's paths and returns the full report.
func (s *CloneServiceImpl) DetectClones(ctx context.Context, req *domain.CloneRequest) (*domain.CloneDetectionReport, error) {
	if req == nil {
		return nil, domain.NewValidationError("clone request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	filePaths, err := s.fileReader.CollectPythonFiles(req.Paths, req.Recursive, req.IncludePatterns, req.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to collect Python files: %w", err)
	}

	return s.DetectClonesInFiles(ctx, filePaths, req)
}

// DetectClonesInFiles runs detection over an explicit file list. The list
// order fixes fragment order, which in turn fixes group IDs, so callers that
// need deterministic output should pass a sorted list.
func (s *CloneServiceImpl) DetectClonesInFiles(ctx context.Context, filePaths []string, req *domain.CloneRequest) (*domain.CloneDetectionReport, error) {
	if req == nil {
		return nil, domain.NewValidationError("clone request is required")
	}

	startTime := time.Now()

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cache := PopulateParseCache(ctx, filePaths, ParseCachePopulatorConfig{Concurrency: req.Workers})

	s.progress.Initialize(len(filePaths))
	s.progress.Start()

	extractor := analyzer.NewExtractor(req.MinLines)

	var fragments []*analyzer.Fragment
	totalLines := 0
	skippedFiles := 0

	for i, filePath := range filePaths {
		entry, ok := cache.Get(filePath)
		if !ok || entry.ParseErr != nil {
			if ok {
				fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", filePath, entry.ParseErr)
			}
			skippedFiles++
			s.progress.Update(i+1, len(filePaths))
			continue
		}

		totalLines += entry.Result.LineCount()

		for _, frag := range extractor.Extract(entry.Result.Root, filePath, entry.Content) {
			if frag.Size < req.MinNodes {
				continue
			}
			fragments = append(fragments, frag)
		}
		s.progress.Update(i+1, len(filePaths))
	}
	s.progress.Complete(true)

	report := newCloneReport(req, len(filePaths), totalLines, skippedFiles)
	report.TotalFragments = len(fragments)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("clone detection aborted: %w", err)
	}

	if len(fragments) == 0 {
		report.GeneratedAt = time.Now()
		report.DurationMS = time.Since(startTime).Milliseconds()
		return report, nil
	}

	detectorConfig := &analyzer.CloneDetectorConfig{
		MinLines:            req.MinLines,
		SimilarityThreshold: req.SimilarityThreshold,
		EnabledTypes:        enabledTypeSet(req.EnabledCloneTypes),
		UseLSH:              resolveLSH(req.LSHMode, req.LSHThreshold, len(fragments)),
	}

	detector := analyzer.NewCloneDetector(detectorConfig)
	groups, err := detector.Detect(ctx, fragments)
	if err != nil {
		return nil, fmt.Errorf("clone detection failed: %w", err)
	}

	domainGroups := convertCloneGroups(groups)
	for _, g := range domainGroups {
		enrichCloneGroup(g)
	}

	domainGroups = filterGroupsBySimilarity(domainGroups, req.MinSimilarity)
	sortCloneGroups(domainGroups, req.SortBy)
	if req.MaxResults > 0 && len(domainGroups) > req.MaxResults {
		domainGroups = domainGroups[:req.MaxResults]
	}

	report.CloneGroups = domainGroups
	aggregateReport(report)
	report.GeneratedAt = time.Now()
	report.DurationMS = time.Since(startTime).Milliseconds()
	return report, nil
}

// CompareFragments scores two standalone Python snippets against each other
// using the same fingerprints and similarity scoring as a full scan.
func (s *CloneServiceImpl) CompareFragments(ctx context.Context, sourceA, sourceB string) (*domain.FragmentComparison, error) {
	if strings.TrimSpace(sourceA) == "" || strings.TrimSpace(sourceB) == "" {
		return nil, domain.NewValidationError("both fragments must be non-empty")
	}
	if len(sourceA) > maxFragmentSourceBytes || len(sourceB) > maxFragmentSourceBytes {
		return nil, domain.NewValidationError("fragment exceeds the 1MB comparison limit")
	}

	fragA, err := parseComparisonFragment(ctx, "fragment-a", sourceA)
	if err != nil {
		return nil, err
	}
	fragB, err := parseComparisonFragment(ctx, "fragment-b", sourceB)
	if err != nil {
		return nil, err
	}

	hasher := analyzer.NewStructuralHasher()
	semantic := analyzer.NewSemanticHasher()

	comparison := &domain.FragmentComparison{
		StructuralMatch: hasher.HashStructural(fragA.AST) == hasher.HashStructural(fragB.AST),
		NormalizedMatch: hasher.HashNormalized(fragA.AST) == hasher.HashNormalized(fragB.AST),
		SemanticMatch:   semantic.HashSemantic(fragA.AST) == semantic.HashSemantic(fragB.AST),
	}

	calculator := analyzer.NewSimilarityCalculator()
	comparison.Similarity = calculator.Similarity(fragA, fragB)
	comparison.Verdict = comparisonVerdict(comparison)
	return comparison, nil
}

// parseComparisonFragment parses a standalone snippet and wraps its module
// tree as a single comparable fragment.
func parseComparisonFragment(ctx context.Context, label, source string) (*analyzer.Fragment, error) {
	p := parser.New()
	result, err := p.Parse(ctx, []byte(source))
	if err != nil {
		return nil, domain.NewParseError(label, err)
	}

	return &analyzer.Fragment{
		FilePath:  label,
		StartLine: 1,
		EndLine:   result.LineCount(),
		AST:       result.Root,
		Source:    source,
		LineCount: result.LineCount(),
		Size:      result.Root.CountNodes(),
		Features:  analyzer.ExtractFeatures(result.Root),
	}, nil
}

// comparisonVerdict renders the comparison as the clone type the two
// snippets would form in a full scan, or a non-clone explanation.
func comparisonVerdict(c *domain.FragmentComparison) string {
	switch {
	case c.StructuralMatch:
		return "Type-1 clone: the fragments are structurally identical"
	case c.NormalizedMatch:
		return "Type-2 clone: the fragments are identical after identifier and literal normalization"
	case c.Similarity >= constants.DefaultSimilarityThreshold:
		return fmt.Sprintf("Type-3 clone: near-miss duplicate with similarity %.2f", c.Similarity)
	case c.SemanticMatch:
		return "Type-4 clone: the fragments share a semantic fingerprint"
	default:
		return fmt.Sprintf("not a clone: similarity %.2f is below the %.2f threshold", c.Similarity, constants.DefaultSimilarityThreshold)
	}
}

// newCloneReport builds a report skeleton carrying the scan-level stats.
func newCloneReport(req *domain.CloneRequest, totalFiles, totalLines, skippedFiles int) *domain.CloneDetectionReport {
	return &domain.CloneDetectionReport{
		ScanPath:              strings.Join(req.Paths, ", "),
		TotalFiles:            totalFiles,
		TotalLines:            totalLines,
		CloneGroups:           []*domain.CloneGroup{},
		CloneTypeDistribution: make(map[string]int),
		SeverityDistribution:  make(map[string]int),
		SkippedFiles:          skippedFiles,
	}
}

// enabledTypeSet converts the request's clone type list into the detector's
// stage-enable map. An empty list enables every stage.
func enabledTypeSet(types []domain.CloneType) map[analyzer.CloneType]bool {
	if len(types) == 0 {
		return nil
	}
	enabled := make(map[analyzer.CloneType]bool, len(types))
	for _, ct := range types {
		enabled[analyzer.CloneType(ct)] = true
	}
	return enabled
}

// resolveLSH decides whether the near-miss stage routes candidate selection
// through the MinHash prefilter.
func resolveLSH(mode string, threshold, fragmentCount int) bool {
	switch mode {
	case domain.LSHModeTrue:
		return true
	case domain.LSHModeFalse:
		return false
	}
	if threshold <= 0 {
		threshold = constants.DefaultLSHAutoThreshold
	}
	return fragmentCount >= threshold
}

// convertCloneGroups maps detector groups onto the domain representation.
func convertCloneGroups(groups []*analyzer.CloneGroup) []*domain.CloneGroup {
	converted := make([]*domain.CloneGroup, 0, len(groups))
	for _, g := range groups {
		minSim, maxSim := g.SimilarityRange()
		dg := &domain.CloneGroup{
			ID:                   g.ID,
			Type:                 domain.CloneType(g.CloneType),
			CanonicalHash:        g.CanonicalHash,
			SimilarityRange:      domain.SimilarityRange{Min: minSim, Max: maxSim},
			TotalDuplicatedLines: g.TotalLineCount(),
			Instances:            make([]*domain.CloneInstance, 0, len(g.Members)),
		}
		for _, m := range g.Members {
			dg.Instances = append(dg.Instances, &domain.CloneInstance{
				Location: domain.FragmentLocation{
					FilePath:  m.Fragment.FilePath,
					StartLine: m.Fragment.StartLine,
					EndLine:   m.Fragment.EndLine,
				},
				Kind:       domain.FragmentKind(m.Fragment.Kind),
				Name:       m.Fragment.Name,
				Similarity: m.Similarity,
			})
		}
		converted = append(converted, dg)
	}
	return converted
}

// enrichCloneGroup assigns severity, a refactoring suggestion, and an effort
// estimate based on the group's size and spread.
func enrichCloneGroup(g *domain.CloneGroup) {
	g.Severity = cloneSeverity(g.Size(), g.TotalDuplicatedLines)
	g.RefactoringSuggestion = refactoringSuggestion(g)
	g.EstimatedEffort = estimateEffort(g.TotalDuplicatedLines, len(g.FilesAffected()))
}

// cloneSeverity scans the thresholds from critical downward and returns the
// first level the group satisfies on either dimension.
func cloneSeverity(instances, duplicatedLines int) domain.Severity {
	switch {
	case instances >= constants.CriticalCloneInstances || duplicatedLines >= constants.CriticalCloneLines:
		return domain.SeverityCritical
	case instances >= constants.HighCloneInstances || duplicatedLines >= constants.HighCloneLines:
		return domain.SeverityHigh
	case instances >= constants.MediumCloneInstances || duplicatedLines >= constants.MediumCloneLines:
		return domain.SeverityMedium
	case instances >= constants.LowCloneInstances:
		return domain.SeverityLow
	default:
		return domain.SeverityInfo
	}
}

func refactoringSuggestion(g *domain.CloneGroup) string {
	kind := dominantKind(g)
	switch g.Type {
	case domain.Type1Clone:
		if kind == domain.FragmentClass {
			return "Extract the duplicated class into a shared base class or module"
		}
		return "Extract the duplicated code into a single shared function"
	case domain.Type2Clone:
		if kind == domain.FragmentClass {
			return "Unify the renamed class copies behind one parameterized implementation"
		}
		return "Unify the renamed copies into one function parameterized over the varying names"
	case domain.Type3Clone:
		return "Merge the variants into one implementation and isolate the differing parts behind parameters"
	case domain.Type4Clone:
		return "Review whether these fragments implement the same behavior and keep a single implementation"
	default:
		return "Review the duplicated fragments for consolidation"
	}
}

// dominantKind returns class when class fragments form a strict majority of
// the group, otherwise function.
func dominantKind(g *domain.CloneGroup) domain.FragmentKind {
	classes := 0
	for _, inst := range g.Instances {
		if inst.Kind == domain.FragmentClass {
			classes++
		}
	}
	if classes*2 > len(g.Instances) {
		return domain.FragmentClass
	}
	return domain.FragmentFunction
}

func estimateEffort(duplicatedLines, filesAffected int) string {
	switch {
	case duplicatedLines < constants.LowEffortMaxLines && filesAffected <= constants.LowEffortMaxFiles:
		return "Low"
	case duplicatedLines < constants.MediumEffortMaxLines && filesAffected <= constants.MediumEffortMaxFiles:
		return "Medium"
	case duplicatedLines < constants.HighEffortMaxLines || filesAffected <= constants.HighEffortMaxFiles:
		return "High"
	default:
		return "Very High"
	}
}

// filterGroupsBySimilarity drops groups whose weakest member similarity
// falls below the floor. Exact and renamed members always carry 1.0, so
// those groups survive any floor at or below 1.0.
func filterGroupsBySimilarity(groups []*domain.CloneGroup, minSimilarity float64) []*domain.CloneGroup {
	if minSimilarity <= 0 {
		return groups
	}
	filtered := make([]*domain.CloneGroup, 0, len(groups))
	for _, g := range groups {
		if groupMinSimilarity(g) >= minSimilarity {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

func groupMinSimilarity(g *domain.CloneGroup) float64 {
	if len(g.Instances) == 0 {
		return 0
	}
	min := g.Instances[0].Similarity
	for _, inst := range g.Instances[1:] {
		if inst.Similarity < min {
			min = inst.Similarity
		}
	}
	return min
}

// sortCloneGroups orders groups by the requested criteria. Ties fall back to
// the detector-assigned group ID so output stays deterministic.
func sortCloneGroups(groups []*domain.CloneGroup, criteria domain.CloneSortCriteria) {
	if criteria == "" {
		criteria = domain.SortClonesBySeverity
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		switch criteria {
		case domain.SortClonesBySize:
			if a.Size() != b.Size() {
				return a.Size() > b.Size()
			}
		case domain.SortClonesBySimilarity:
			if a.SimilarityRange.Max != b.SimilarityRange.Max {
				return a.SimilarityRange.Max > b.SimilarityRange.Max
			}
		case domain.SortClonesByLocation:
			la, lb := firstLocation(a), firstLocation(b)
			if la.FilePath != lb.FilePath {
				return la.FilePath < lb.FilePath
			}
			if la.StartLine != lb.StartLine {
				return la.StartLine < lb.StartLine
			}
		case domain.SortClonesByType:
			if a.Type != b.Type {
				return a.Type < b.Type
			}
		default:
			ra, rb := severityRank(a.Severity), severityRank(b.Severity)
			if ra != rb {
				return ra > rb
			}
			if a.TotalDuplicatedLines != b.TotalDuplicatedLines {
				return a.TotalDuplicatedLines > b.TotalDuplicatedLines
			}
		}
		return a.ID < b.ID
	})
}

func firstLocation(g *domain.CloneGroup) domain.FragmentLocation {
	if len(g.Instances) == 0 {
		return domain.FragmentLocation{}
	}
	return g.Instances[0].Location
}

// severityRank maps severity onto the priority weight scale, highest first.
func severityRank(s domain.Severity) int {
	switch s {
	case domain.SeverityCritical:
		return constants.CriticalSeverityWeight
	case domain.SeverityHigh:
		return constants.HighSeverityWeight
	case domain.SeverityMedium:
		return constants.MediumSeverityWeight
	case domain.SeverityLow:
		return constants.LowSeverityWeight
	default:
		return constants.InfoSeverityWeight
	}
}

// aggregateReport fills the report's distributions, duplication totals, file
// ranking, and refactoring priorities from its clone groups.
func aggregateReport(report *domain.CloneDetectionReport) {
	typeDist := make(map[string]int)
	severityDist := make(map[string]int)
	totalDuplicated := 0
	fileStats := make(map[string]*domain.ClonedFile)

	for _, g := range report.CloneGroups {
		typeDist[g.Type.String()]++
		severityDist[string(g.Severity)]++
		totalDuplicated += g.TotalDuplicatedLines
		for _, inst := range g.Instances {
			stat, ok := fileStats[inst.Location.FilePath]
			if !ok {
				stat = &domain.ClonedFile{FilePath: inst.Location.FilePath}
				fileStats[inst.Location.FilePath] = stat
			}
			stat.CloneCount++
			stat.DuplicatedLines += inst.Location.LineCount()
		}
	}

	report.CloneTypeDistribution = typeDist
	report.SeverityDistribution = severityDist
	report.TotalDuplicatedLines = totalDuplicated
	if report.TotalLines > 0 {
		report.DuplicationPercentage = float64(totalDuplicated) / float64(report.TotalLines) * 100.0
	} else {
		report.DuplicationPercentage = 0
	}
	report.TopClonedFiles = topClonedFiles(fileStats)
	report.RefactoringPriorities = refactoringPriorities(report.CloneGroups)
}

// topClonedFiles ranks files by clone participation, most instances first.
func topClonedFiles(fileStats map[string]*domain.ClonedFile) []domain.ClonedFile {
	files := make([]domain.ClonedFile, 0, len(fileStats))
	for _, stat := range fileStats {
		files = append(files, *stat)
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].CloneCount != files[j].CloneCount {
			return files[i].CloneCount > files[j].CloneCount
		}
		if files[i].DuplicatedLines != files[j].DuplicatedLines {
			return files[i].DuplicatedLines > files[j].DuplicatedLines
		}
		return files[i].FilePath < files[j].FilePath
	})
	if len(files) > constants.TopClonedFilesLimit {
		files = files[:constants.TopClonedFilesLimit]
	}
	return files
}

// refactoringPriorities scores every group and returns the highest-paying
// refactoring candidates.
func refactoringPriorities(groups []*domain.CloneGroup) []domain.RefactoringPriority {
	priorities := make([]domain.RefactoringPriority, 0, len(groups))
	for _, g := range groups {
		score := severityRank(g.Severity) +
			g.Size()*constants.PriorityInstanceWeight +
			g.TotalDuplicatedLines
		priorities = append(priorities, domain.RefactoringPriority{
			GroupID:              g.ID,
			Type:                 g.Type,
			Severity:             g.Severity,
			InstanceCount:        g.Size(),
			TotalDuplicatedLines: g.TotalDuplicatedLines,
			PriorityScore:        score,
			Suggestion:           g.RefactoringSuggestion,
			EstimatedEffort:      g.EstimatedEffort,
			FilesAffected:        g.FilesAffected(),
		})
	}
	sort.Slice(priorities, func(i, j int) bool {
		if priorities[i].PriorityScore != priorities[j].PriorityScore {
			return priorities[i].PriorityScore > priorities[j].PriorityScore
		}
		return priorities[i].GroupID < priorities[j].GroupID
	})
	if len(priorities) > constants.RefactoringPrioritiesLimit {
		priorities = priorities[:constants.RefactoringPrioritiesLimit]
	}
	return priorities
}
