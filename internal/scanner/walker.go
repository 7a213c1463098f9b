package scanner

import (
	"os"
	"path/filepath"

	"github.com/fenilsonani/fsweep/internal/config"
	"github.com/fenilsonani/fsweep/internal/security"
)

// IgnoreMarker opts the directory holding it, and everything below, out of scans.
const IgnoreMarker = ".fsweepignore"

// Walker finds target folders under a root in one pre-order pass.
// Matched folders are never descended into, symlinks are never followed
// and a directory that cannot be listed is skipped without failing the walk.
type Walker struct {
	root      string
	targets   map[string]bool
	excludes  []glob
	protected *security.ProtectedSet

	// OnVisit runs for every directory that is listed
	OnVisit func(dir string)
	// OnMatch runs for every matched folder
	OnMatch func(path string)
	// OnSkip runs for every pruned subtree
	OnSkip func(SkipEvent)
}

// NewWalker creates a walker for root, which must already be resolved.
func NewWalker(root string, cfg *config.SweepConfig) *Walker {
	targets := make(map[string]bool, len(cfg.TargetFolders))
	for _, name := range cfg.TargetFolders {
		targets[name] = true
	}

	return &Walker{
		root:      root,
		targets:   targets,
		excludes:  compileGlobs(cfg.ExcludePatterns),
		protected: security.NewProtectedSet(cfg.ProtectedPaths),
	}
}

// Walk returns the matched folder paths in traversal order
func (w *Walker) Walk() []string {
	var matches []string
	w.walkDir(w.root, &matches)
	return matches
}

func (w *Walker) walkDir(dir string, matches *[]string) {
	if w.hasIgnoreMarker(dir) {
		w.skip(SkipEvent{Path: dir, Reason: SkipIgnoreMarker})
		return
	}

	// os.ReadDir returns entries sorted by name.
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.skip(SkipEvent{Path: dir, Reason: SkipInaccessible, Err: err})
		return
	}

	if w.OnVisit != nil {
		w.OnVisit(dir)
	}

	descend := make([]string, 0, len(entries))
	for _, entry := range entries {
		// DirEntry.IsDir is false for symlinks, so links are neither
		// matched nor followed.
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		candidate := filepath.Join(dir, name)

		if w.isExcluded(candidate, name) {
			w.skip(SkipEvent{Path: candidate, Reason: SkipExcluded})
			continue
		}
		if w.isProtected(candidate) {
			w.skip(SkipEvent{Path: candidate, Reason: SkipProtected})
			continue
		}

		if w.targets[name] {
			*matches = append(*matches, candidate)
			if w.OnMatch != nil {
				w.OnMatch(candidate)
			}
			continue
		}
		descend = append(descend, candidate)
	}

	for _, sub := range descend {
		w.walkDir(sub, matches)
	}
}

func (w *Walker) hasIgnoreMarker(dir string) bool {
	// A marker we cannot stat counts as absent; the listing decides.
	_, err := os.Lstat(filepath.Join(dir, IgnoreMarker))
	return err == nil
}

// isExcluded matches each pattern against the slash-separated path
// relative to the root and against the bare name.
func (w *Walker) isExcluded(candidate, name string) bool {
	if len(w.excludes) == 0 {
		return false
	}

	rel, err := filepath.Rel(w.root, candidate)
	if err != nil {
		rel = name
	}
	rel = filepath.ToSlash(rel)

	for _, g := range w.excludes {
		if g.match(rel) || g.match(name) {
			return true
		}
	}
	return false
}

func (w *Walker) isProtected(candidate string) bool {
	if w.protected.Len() == 0 {
		return false
	}

	resolved, err := security.ResolvePath(candidate)
	if err != nil {
		resolved = candidate
	}
	return w.protected.Contains(resolved)
}

func (w *Walker) skip(ev SkipEvent) {
	if w.OnSkip != nil {
		w.OnSkip(ev)
	}
}
