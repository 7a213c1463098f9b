package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// buildWorkspace creates a tree of fake projects, each with a node_modules
// tree, a venv and a few source files.
func buildWorkspace(b *testing.B, projects int) string {
	b.Helper()

	root := b.TempDir()
	for i := 0; i < projects; i++ {
		project := filepath.Join(root, fmt.Sprintf("project-%03d", i))
		for j := 0; j < 20; j++ {
			writeBenchFile(b, filepath.Join(project, "node_modules", fmt.Sprintf("pkg-%02d", j), "index.js"), 512)
		}
		writeBenchFile(b, filepath.Join(project, "venv", "pyvenv.cfg"), 64)
		writeBenchFile(b, filepath.Join(project, "src", "main.go"), 256)
		writeBenchFile(b, filepath.Join(project, "src", "nested", "deep", "util.go"), 128)
	}

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		b.Fatal(err)
	}
	return resolved
}

func writeBenchFile(b *testing.B, path string, size int) {
	b.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		b.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		b.Fatal(err)
	}
}

// =============================================================================
// Walker Benchmarks
// =============================================================================

func BenchmarkWalk(b *testing.B) {
	root := buildWorkspace(b, 50)
	cfg := testConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NewWalker(root, cfg).Walk()
	}
}

func BenchmarkWalkWithExcludes(b *testing.B) {
	root := buildWorkspace(b, 50)
	cfg := testConfig()
	cfg.ExcludePatterns = []string{"project-01*", "*/src/nested", "[xyz]*"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NewWalker(root, cfg).Walk()
	}
}

func BenchmarkGlobMatch(b *testing.B) {
	globs := compileGlobs([]string{"vendor", "vendor/*", "*/fixtures/*", "[abc]*", "[!.]*"})
	paths := []string{
		"vendor",
		"vendor/lib",
		"apps/web/fixtures/data",
		"src/components/button",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, g := range globs {
			for _, s := range paths {
				g.match(s)
			}
		}
	}
}

// =============================================================================
// Size Benchmarks
// =============================================================================

func BenchmarkDirSize(b *testing.B) {
	root := buildWorkspace(b, 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DirSize(root)
	}
}

// =============================================================================
// Engine Benchmarks
// =============================================================================

func BenchmarkScanWithoutIndex(b *testing.B) {
	root := buildWorkspace(b, 30)
	s, err := New(root, testConfig())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Scan(ScanOptions{})
	}
}

func BenchmarkScanWithWarmIndex(b *testing.B) {
	root := buildWorkspace(b, 30)
	s, err := New(root, testConfig())
	if err != nil {
		b.Fatal(err)
	}
	s.Scan(ScanOptions{UseIndex: true})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Scan(ScanOptions{UseIndex: true})
	}
}

func BenchmarkSizeIndexLookup(b *testing.B) {
	ix := NewSizeIndex()
	keys := make([]string, 1000)
	for i := range keys {
		keys[i] = fmt.Sprintf("/home/dev/project-%04d/node_modules", i)
		ix.loaded[keys[i]] = IndexEntry{MtimeNs: int64(i), SizeBytes: int64(i) * 1024}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := i % len(keys)
		ix.Lookup(keys[k], int64(k))
	}
}
