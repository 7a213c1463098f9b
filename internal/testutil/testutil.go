// Package testutil provides test helpers and fixtures for fsweep tests.
// All file operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
)

// TestFixture holds a temporary workspace that a scan can run against
type TestFixture struct {
	T       *testing.T
	RootDir string // symlink-free temp directory (auto-cleaned)
}

// NewFixture creates a new empty workspace. RootDir is resolved so it
// compares equal to paths the scanner reports on systems where the temp
// directory sits behind a symlink.
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}

	return &TestFixture{T: t, RootDir: root}
}

// =============================================================================
// File Creation Helpers
// =============================================================================

// CreateFile creates a file with specified content and returns its path
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateSizedFile creates a zero-filled file of exactly size bytes
func (f *TestFixture) CreateSizedFile(relPath string, size int) string {
	f.T.Helper()
	return f.CreateFile(relPath, make([]byte, size))
}

// =============================================================================
// Directory Helpers
// =============================================================================

// CreateDir creates a directory and returns its path
func (f *TestFixture) CreateDir(relPath string) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateUnreadableDir creates a directory that cannot be listed. Permissions
// are restored on cleanup so TempDir removal works.
func (f *TestFixture) CreateUnreadableDir(relPath string) string {
	f.T.Helper()

	dirPath := f.CreateDir(relPath)
	if err := os.Chmod(dirPath, 0000); err != nil {
		f.T.Fatalf("failed to chmod directory %s: %v", dirPath, err)
	}
	f.T.Cleanup(func() {
		os.Chmod(dirPath, 0755)
	})

	return dirPath
}

// CreateReadOnlyDir creates a read-only directory (entries inside can't be removed)
func (f *TestFixture) CreateReadOnlyDir(relPath string) string {
	f.T.Helper()

	dirPath := f.CreateDir(relPath)
	f.CreateFile(filepath.Join(relPath, "trapped.txt"), []byte("trapped"))
	if err := os.Chmod(dirPath, 0555); err != nil {
		f.T.Fatalf("failed to chmod directory %s: %v", dirPath, err)
	}
	f.T.Cleanup(func() {
		os.Chmod(dirPath, 0755)
	})

	return dirPath
}

// =============================================================================
// Symlink Helpers
// =============================================================================

// CreateSymlink creates a symbolic link at linkPath (relative to the root)
func (f *TestFixture) CreateSymlink(target, linkPath string) string {
	f.T.Helper()

	fullLinkPath := filepath.Join(f.RootDir, linkPath)
	dir := filepath.Dir(fullLinkPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.Symlink(target, fullLinkPath); err != nil {
		f.T.Fatalf("failed to create symlink %s -> %s: %v", fullLinkPath, target, err)
	}

	return fullLinkPath
}

// =============================================================================
// Path Helpers
// =============================================================================

// Path returns the full path for a relative path within the fixture
func (f *TestFixture) Path(relPath string) string {
	return filepath.Join(f.RootDir, relPath)
}

// RelPath returns the slash-separated path relative to the fixture root
func (f *TestFixture) RelPath(fullPath string) string {
	rel, _ := filepath.Rel(f.RootDir, fullPath)
	return filepath.ToSlash(rel)
}

// RelPaths maps full paths to sorted fixture-relative paths
func (f *TestFixture) RelPaths(fullPaths []string) []string {
	rels := make([]string, 0, len(fullPaths))
	for _, p := range fullPaths {
		rels = append(rels, f.RelPath(p))
	}
	sort.Strings(rels)
	return rels
}

// =============================================================================
// Assertion Helpers
// =============================================================================

// FileExists checks if a path exists without following a final symlink.
// Relative paths are taken from the fixture root.
func (f *TestFixture) FileExists(path string) bool {
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.RootDir, path)
	}
	_, err := os.Lstat(path)
	return err == nil
}

// AssertFileExists fails the test if the file doesn't exist
func (f *TestFixture) AssertFileExists(path string) {
	f.T.Helper()
	if !f.FileExists(path) {
		f.T.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if the file exists
func (f *TestFixture) AssertFileNotExists(path string) {
	f.T.Helper()
	if f.FileExists(path) {
		f.T.Errorf("expected file to not exist: %s", path)
	}
}

// =============================================================================
// Dev Artifact Helpers
// =============================================================================

// PopulateNodeModules creates a mock node_modules tree under project
func (f *TestFixture) PopulateNodeModules(project string) string {
	f.T.Helper()

	nodeModules := filepath.Join(project, "node_modules")
	for _, pkg := range []string{"lodash", "express", "react", ".bin"} {
		f.CreateFile(filepath.Join(nodeModules, pkg, "package.json"),
			[]byte(`{"name": "`+pkg+`", "version": "1.0.0"}`))
	}
	return f.Path(nodeModules)
}

// PopulateVenv creates a mock Python venv structure under project
func (f *TestFixture) PopulateVenv(project string) string {
	f.T.Helper()

	venv := filepath.Join(project, "venv")
	f.CreateDir(filepath.Join(venv, "bin"))
	f.CreateDir(filepath.Join(venv, "lib", "python3.11", "site-packages"))
	f.CreateFile(filepath.Join(venv, "pyvenv.cfg"), []byte("home = /usr/bin\nversion = 3.11.0\n"))
	return f.Path(venv)
}

// =============================================================================
// Utility Functions
// =============================================================================

// GetDirSize returns the total size of regular files under path without
// following symlinks
func GetDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// IsRoot returns true if running as root/admin
func IsRoot() bool {
	return os.Geteuid() == 0
}

// SkipIfRoot skips the test if running as root
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if IsRoot() {
		t.Skip("skipping test when running as root")
	}
}

// IsMacOS returns true if running on macOS
func IsMacOS() bool {
	return runtime.GOOS == "darwin"
}
