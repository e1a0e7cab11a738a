package service

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/cespare/xxhash/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/pydup/pydup/internal/parser"
)

// FileParseResult holds the cached parse outcome for a single file.
type FileParseResult struct {
	Content    []byte
	ContentKey uint64 // xxhash of Content
	Result     *parser.Result
	ParseErr   error
}

// ParseCache stores parse results for one scan, keyed by file path. After
// Seal() is called the cache is read-only and safe for concurrent access
// without locks.
type ParseCache struct {
	results map[string]*FileParseResult
	sealed  bool
}

// NewParseCache creates a new empty ParseCache.
func NewParseCache() *ParseCache {
	return &ParseCache{
		results: make(map[string]*FileParseResult),
	}
}

// Put stores a parse result. Must be called before Seal().
func (c *ParseCache) Put(filePath string, result *FileParseResult) {
	if c.sealed {
		return
	}
	c.results[filePath] = result
}

// Seal marks the cache as read-only. After this call no more Put() is allowed
// and Get() can be safely called from multiple goroutines without locks.
func (c *ParseCache) Seal() {
	c.sealed = true
}

// Get retrieves a cached parse result. Returns (result, true) on hit.
func (c *ParseCache) Get(filePath string) (*FileParseResult, bool) {
	r, ok := c.results[filePath]
	return r, ok
}

// Len returns the number of entries in the cache.
func (c *ParseCache) Len() int {
	return len(c.results)
}

// ParseCachePopulatorConfig controls how PopulateParseCache works.
type ParseCachePopulatorConfig struct {
	Concurrency int // 0 means runtime.GOMAXPROCS(0)
}

// PopulateParseCache reads and parses all files in parallel and returns a
// sealed cache. Files with byte-identical content share one parse: contents
// are keyed by xxhash and each distinct content is parsed exactly once. Each
// parse worker creates its own parser.Parser because tree-sitter parsers are
// not safe for concurrent use.
func PopulateParseCache(ctx context.Context, files []string, cfg ParseCachePopulatorConfig) *ParseCache {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	type readResult struct {
		content []byte
		key     uint64
		err     error
	}
	reads := make([]readResult, len(files))

	readers := pool.New().WithMaxGoroutines(concurrency)
	for i, filePath := range files {
		readers.Go(func() {
			content, err := os.ReadFile(filePath)
			if err != nil {
				reads[i] = readResult{err: fmt.Errorf("failed to read file %s: %w", filePath, err)}
				return
			}
			reads[i] = readResult{content: content, key: xxhash.Sum64(content)}
		})
	}
	readers.Wait()

	// Index of the first file carrying each distinct content.
	firstIndex := make(map[uint64]int, len(files))
	var distinct []int
	for i := range reads {
		if reads[i].err != nil {
			continue
		}
		if _, seen := firstIndex[reads[i].key]; !seen {
			firstIndex[reads[i].key] = i
			distinct = append(distinct, i)
		}
	}

	parsed := make([]*parser.Result, len(files))
	parseErrs := make([]error, len(files))

	parsers := pool.New().WithMaxGoroutines(concurrency)
	for _, i := range distinct {
		parsers.Go(func() {
			p := parser.New()
			parsed[i], parseErrs[i] = p.Parse(ctx, reads[i].content)
		})
	}
	parsers.Wait()

	// Populate the cache from collected results (single-threaded, no lock
	// needed). Duplicate contents alias the first file's parse result;
	// sharing is safe because nothing downstream mutates parsed trees.
	cache := NewParseCache()
	for i, filePath := range files {
		r := &FileParseResult{}
		if reads[i].err != nil {
			r.ParseErr = reads[i].err
			cache.Put(filePath, r)
			continue
		}
		r.Content = reads[i].content
		r.ContentKey = reads[i].key

		j := firstIndex[reads[i].key]
		if parseErrs[j] != nil {
			r.ParseErr = fmt.Errorf("parse error: %w", parseErrs[j])
		} else {
			r.Result = parsed[j]
		}
		cache.Put(filePath, r)
	}
	cache.Seal()

	return cache
}
