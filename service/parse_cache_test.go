package service

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

func writeParseFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

func TestNewParseCache(t *testing.T) {
	cache := NewParseCache()
	if cache == nil {
		t.Fatal("NewParseCache returned nil")
	}
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", cache.Len())
	}
}

func TestParseCachePutAndGet(t *testing.T) {
	cache := NewParseCache()

	result := &FileParseResult{
		Content: []byte("print('hello')"),
	}
	cache.Put("test.py", result)

	got, ok := cache.Get("test.py")
	if !ok {
		t.Fatal("expected cache hit for test.py")
	}
	if string(got.Content) != "print('hello')" {
		t.Fatalf("unexpected content: %s", got.Content)
	}
}

func TestParseCacheGetMiss(t *testing.T) {
	cache := NewParseCache()

	_, ok := cache.Get("nonexistent.py")
	if ok {
		t.Fatal("expected cache miss for nonexistent.py")
	}
}

func TestParseCacheSealPreventsWrite(t *testing.T) {
	cache := NewParseCache()
	cache.Put("a.py", &FileParseResult{Content: []byte("a")})
	cache.Seal()

	cache.Put("b.py", &FileParseResult{Content: []byte("b")})

	_, ok := cache.Get("b.py")
	if ok {
		t.Fatal("expected Put after Seal to be ignored")
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", cache.Len())
	}
}

func TestParseCacheSealedConcurrentReads(t *testing.T) {
	cache := NewParseCache()
	for i := 0; i < 100; i++ {
		cache.Put(filepath.Join("dir", "file"+string(rune('0'+i%10))+".py"),
			&FileParseResult{Content: []byte("content")})
	}
	cache.Seal()

	var wg sync.WaitGroup
	for i := 0; i < runtime.GOMAXPROCS(0)*2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Get(filepath.Join("dir", "file"+string(rune('0'+j%10))+".py"))
			}
		}()
	}
	wg.Wait()
}

func TestParseCacheLen(t *testing.T) {
	cache := NewParseCache()
	cache.Put("a.py", &FileParseResult{})
	cache.Put("b.py", &FileParseResult{})
	cache.Put("c.py", &FileParseResult{})

	if cache.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", cache.Len())
	}
}

func TestPopulateParseCache(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := writeParseFixture(t, tmpDir, "functions.py",
		"def add(a, b):\n    return a + b\n\ndef sub(a, b):\n    return a - b\n")

	ctx := context.Background()
	cache := PopulateParseCache(ctx, []string{testFile}, ParseCachePopulatorConfig{
		Concurrency: 2,
	})

	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", cache.Len())
	}

	result, ok := cache.Get(testFile)
	if !ok {
		t.Fatal("expected cache hit for test file")
	}
	if result.ParseErr != nil {
		t.Fatalf("unexpected parse error: %v", result.ParseErr)
	}
	if result.Result == nil {
		t.Fatal("expected non-nil parse result")
	}
	if result.Result.Root == nil {
		t.Fatal("expected non-nil AST root")
	}
	if result.Content == nil {
		t.Fatal("expected non-nil content")
	}
	if result.ContentKey == 0 {
		t.Fatal("expected non-zero content key")
	}
}

func TestPopulateParseCacheNonexistentFile(t *testing.T) {
	ctx := context.Background()
	cache := PopulateParseCache(ctx, []string{"/nonexistent/file.py"}, ParseCachePopulatorConfig{})

	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry (with error), got %d", cache.Len())
	}

	result, ok := cache.Get("/nonexistent/file.py")
	if !ok {
		t.Fatal("expected cache entry for nonexistent file")
	}
	if result.ParseErr == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestPopulateParseCacheSyntaxError(t *testing.T) {
	tmpDir := t.TempDir()
	broken := writeParseFixture(t, tmpDir, "broken.py", "def oops(:\n    pass\n")

	ctx := context.Background()
	cache := PopulateParseCache(ctx, []string{broken}, ParseCachePopulatorConfig{})

	result, ok := cache.Get(broken)
	if !ok {
		t.Fatal("expected cache entry for broken file")
	}
	if result.ParseErr == nil {
		t.Fatal("expected parse error for broken file")
	}
	if result.Content == nil {
		t.Fatal("content should still be recorded for unparseable files")
	}
}

func TestPopulateParseCacheMultipleFiles(t *testing.T) {
	tmpDir := t.TempDir()
	files := []string{
		writeParseFixture(t, tmpDir, "functions.py", "def f():\n    return 1\n"),
		writeParseFixture(t, tmpDir, "classes.py", "class C:\n    def m(self):\n        return 2\n"),
		writeParseFixture(t, tmpDir, "control_flow.py", "for i in range(3):\n    print(i)\n"),
	}

	ctx := context.Background()
	cache := PopulateParseCache(ctx, files, ParseCachePopulatorConfig{
		Concurrency: 2,
	})

	if cache.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", cache.Len())
	}

	for _, f := range files {
		result, ok := cache.Get(f)
		if !ok {
			t.Fatalf("expected cache hit for %s", f)
		}
		if result.ParseErr != nil {
			t.Fatalf("unexpected parse error for %s: %v", f, result.ParseErr)
		}
		if result.Result == nil {
			t.Fatalf("expected non-nil parse result for %s", f)
		}
	}
}

func TestPopulateParseCacheDeduplicatesIdenticalContent(t *testing.T) {
	tmpDir := t.TempDir()
	body := "def shared():\n    return 'same bytes'\n"
	first := writeParseFixture(t, tmpDir, "first.py", body)
	second := writeParseFixture(t, tmpDir, "second.py", body)
	other := writeParseFixture(t, tmpDir, "other.py", "def different():\n    return 0\n")

	ctx := context.Background()
	cache := PopulateParseCache(ctx, []string{first, second, other}, ParseCachePopulatorConfig{
		Concurrency: 2,
	})

	a, ok := cache.Get(first)
	if !ok || a.ParseErr != nil {
		t.Fatalf("expected clean entry for %s", first)
	}
	b, ok := cache.Get(second)
	if !ok || b.ParseErr != nil {
		t.Fatalf("expected clean entry for %s", second)
	}
	c, ok := cache.Get(other)
	if !ok || c.ParseErr != nil {
		t.Fatalf("expected clean entry for %s", other)
	}

	if a.ContentKey != b.ContentKey {
		t.Fatal("identical contents should share a content key")
	}
	if a.Result != b.Result {
		t.Fatal("identical contents should share one parse result")
	}
	if a.Result == c.Result {
		t.Fatal("distinct contents must not share a parse result")
	}
}
