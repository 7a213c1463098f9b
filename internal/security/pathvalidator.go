package security

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// PathValidator handles secure path validation for file operations
type PathValidator struct {
	protectedPaths []string
	userPaths      []string
}

// NewPathValidator creates a new PathValidator with default protected paths
func NewPathValidator() *PathValidator {
	return &PathValidator{
		protectedPaths: []string{
			// Unix system directories
			"/",
			"/bin",
			"/boot",
			"/dev",
			"/etc",
			"/lib",
			"/lib64",
			"/proc",
			"/root",
			"/sbin",
			"/sys",
			"/usr",
			"/var",
			// macOS system directories
			"/System",
			"/Applications",
			"/Library/System",
		},
	}
}

// ValidatePathForDeletion is the last check the cleaner runs before it
// removes or moves a matched folder.
func (pv *PathValidator) ValidatePathForDeletion(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}

	if filepath.Clean(path) != path {
		return fmt.Errorf("path contains suspicious elements: %s", path)
	}

	// Resolve symlinks so ~/work/../../etc style paths cannot slip through.
	resolvedPath, err := ResolvePath(path)
	if err != nil {
		return fmt.Errorf("failed to resolve symlinks: %w", err)
	}

	return pv.checkProtectedPaths(resolvedPath)
}

// checkProtectedPaths validates that a path is not in a protected system directory
func (pv *PathValidator) checkProtectedPaths(cleanPath string) error {
	for _, protected := range pv.protectedPaths {
		if cleanPath == protected {
			return fmt.Errorf("refusing to delete protected path: %s", cleanPath)
		}

		// /usr/foo is refused, /usr/local/src/app/node_modules is not.
		if protected != "/" && strings.HasPrefix(cleanPath, protected+"/") {
			rel, _ := filepath.Rel(protected, cleanPath)
			if !strings.Contains(rel, "/") {
				return fmt.Errorf("refusing to delete critical system path: %s", cleanPath)
			}
		}
	}

	for _, protected := range pv.userPaths {
		if cleanPath == protected || isUnder(cleanPath, protected) {
			return fmt.Errorf("refusing to delete inside protected path %s: %s", protected, cleanPath)
		}
	}

	return nil
}

// AddProtectedPath adds a user protected path. Unlike the system list,
// everything beneath it is refused, not just its direct children.
func (pv *PathValidator) AddProtectedPath(path string) {
	resolved, err := ResolvePath(path)
	if err != nil {
		resolved = filepath.Clean(path)
	}
	pv.userPaths = append(pv.userPaths, resolved)
}

// ValidateGlobPattern checks an exclude pattern. Exclude patterns only
// ever prune the walk, and fnmatch gives every non-empty pattern a meaning
// (an unclosed '[' is a literal), so only empty and NUL-bearing patterns
// are rejected.
func ValidateGlobPattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("glob pattern is empty")
	}

	if strings.ContainsRune(pattern, 0) {
		return fmt.Errorf("glob pattern contains a NUL byte: %q", pattern)
	}

	return nil
}

// ResolvePath returns the absolute, symlink-free form of path. Trailing
// components that do not exist yet are kept as written, so a protected
// path may be configured before the directory is created.
func ResolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	parent := filepath.Dir(abs)
	if parent == abs {
		return abs, nil
	}
	resolvedParent, err := ResolvePath(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(abs)), nil
}

// ProtectedSet holds resolved protected paths. A path is protected when it
// equals one of them or lies beneath one.
type ProtectedSet struct {
	paths []string
}

// NewProtectedSet resolves every path once. Paths that cannot be resolved
// are kept in their cleaned absolute form.
func NewProtectedSet(paths []string) *ProtectedSet {
	ps := &ProtectedSet{}
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		resolved, err := ResolvePath(p)
		if err != nil {
			resolved = filepath.Clean(p)
		}
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		ps.paths = append(ps.paths, resolved)
	}
	return ps
}

// Len returns the number of protected paths
func (ps *ProtectedSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.paths)
}

// Contains reports whether the already resolved path is protected
func (ps *ProtectedSet) Contains(resolved string) bool {
	if ps == nil {
		return false
	}
	for _, protected := range ps.paths {
		if resolved == protected || isUnder(resolved, protected) {
			return true
		}
	}
	return false
}

func isUnder(path, dir string) bool {
	if dir == string(filepath.Separator) {
		return strings.HasPrefix(path, dir)
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
