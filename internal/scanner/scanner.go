package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fenilsonani/fsweep/internal/cleaner"
	"github.com/fenilsonani/fsweep/internal/config"
	"github.com/fenilsonani/fsweep/internal/logging"
	"github.com/fenilsonani/fsweep/internal/progress"
	"github.com/fenilsonani/fsweep/internal/security"
)

// ScanOptions controls the size index for one scan
type ScanOptions struct {
	UseIndex  bool
	IndexPath string // defaults to <root>/.fsweep-index.json

	// DeferIndexSave keeps the refreshed index in memory until SaveIndex
	// is called, so a run refused after the scan leaves no file behind.
	DeferIndexSave bool
}

// CleanupOptions controls what Cleanup does with the matched folders
type CleanupOptions struct {
	Mode      cleaner.Mode
	TrashRoot *cleaner.TrashRoot
	OnItem    func(cleaner.Outcome)
	RemoveAll func(string) error // nil means os.RemoveAll
}

// Scanner finds junk folders under one root and hands them to the cleaner.
// A Scanner holds the matches of its last Scan and is not safe for
// concurrent use.
type Scanner struct {
	root             string
	config           *config.SweepConfig
	logger           *logging.Logger
	progressReporter *progress.ProgressReporter
	sizeFunc         SizeFunc

	items     []MatchedItem
	totalSize int64

	pendingIndex     *SizeIndex
	pendingIndexPath string
}

// New creates a Scanner for root. The root is resolved once here and must
// be an existing directory.
func New(root string, cfg *config.SweepConfig) (*Scanner, error) {
	if cfg == nil {
		cfg = config.GetDefault()
	}

	resolved, err := security.ResolvePath(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scan root: %w", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("scan root not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root is not a directory: %s", resolved)
	}

	return &Scanner{
		root:     resolved,
		config:   cfg,
		logger:   logging.Nop(),
		sizeFunc: DirSize,
	}, nil
}

// Root returns the resolved scan root
func (s *Scanner) Root() string {
	return s.root
}

// SetLogger sets the logger
func (s *Scanner) SetLogger(l *logging.Logger) {
	if l != nil {
		s.logger = l
	}
}

// SetProgressReporter sets a custom progress reporter
func (s *Scanner) SetProgressReporter(pr *progress.ProgressReporter) {
	s.progressReporter = pr
}

// SetSizeFunc replaces the folder size calculator
func (s *Scanner) SetSizeFunc(fn SizeFunc) {
	if fn != nil {
		s.sizeFunc = fn
	}
}

// DefaultIndexPath is the index location used when none is given
func (s *Scanner) DefaultIndexPath() string {
	return filepath.Join(s.root, IndexFileName)
}

// Scan walks the root, sizes every match and returns them in traversal
// order. Filesystem errors along the way are skipped, never returned.
func (s *Scanner) Scan(opts ScanOptions) *ScanResult {
	s.items = nil
	s.totalSize = 0
	s.pendingIndex = nil
	s.pendingIndexPath = ""

	result := &ScanResult{Root: s.root}
	startTime := time.Now()

	var index *SizeIndex
	if opts.UseIndex {
		result.IndexPath = opts.IndexPath
		if result.IndexPath == "" {
			result.IndexPath = s.DefaultIndexPath()
		}

		var err error
		index, err = LoadSizeIndex(result.IndexPath)
		if err != nil {
			s.logger.Warn("ignoring size index %s: %v", result.IndexPath, err)
			result.IndexError = err
		} else {
			s.logger.Info("loaded size index %s (%d entries)", result.IndexPath, index.Len())
		}
	}

	matched := 0
	walker := NewWalker(s.root, s.config)
	walker.OnVisit = func(dir string) {
		result.DirsVisited++
		s.reportScanProgress(progress.PhaseScanning, dir, result, matched, 0, startTime)
	}
	walker.OnMatch = func(string) {
		matched++
	}
	walker.OnSkip = func(ev SkipEvent) {
		result.Skipped = append(result.Skipped, ev)
		if ev.Err != nil {
			s.logger.Debug("skip %s (%s): %v", ev.Path, ev.Reason, ev.Err)
		} else {
			s.logger.Debug("skip %s (%s)", ev.Path, ev.Reason)
		}
	}

	matches := walker.Walk()
	result.Items = make([]MatchedItem, 0, len(matches))

	for i, match := range matches {
		s.reportScanProgress(progress.PhaseSizing, match, result, len(matches), i, startTime)

		size := s.measure(match, index, result)
		result.Items = append(result.Items, MatchedItem{
			Path:    match,
			RelPath: relSlash(s.root, match),
			Type:    filepath.Base(match),
			Size:    size,
		})
		result.TotalSize += size
	}

	if index != nil {
		s.pendingIndex = index
		s.pendingIndexPath = result.IndexPath
		if !opts.DeferIndexSave {
			if err := s.SaveIndex(); err != nil && result.IndexError == nil {
				result.IndexError = err
			}
		}
	}

	s.items = result.Items
	s.totalSize = result.TotalSize

	s.reportScanProgress(progress.PhaseComplete, "", result, len(matches), len(matches), startTime)
	s.logger.Info("scan finished: root=%s matched=%d total=%d visited=%d skipped=%d",
		s.root, len(result.Items), result.TotalSize, result.DirsVisited, len(result.Skipped))

	return result
}

// SaveIndex writes the index refreshed by the last Scan. It does nothing
// when the index was disabled or has already been saved.
func (s *Scanner) SaveIndex() error {
	if s.pendingIndex == nil {
		return nil
	}
	index, path := s.pendingIndex, s.pendingIndexPath
	s.pendingIndex = nil

	if err := index.Save(path); err != nil {
		return fmt.Errorf("failed to save size index: %w", err)
	}
	s.logger.Info("saved size index %s (%d entries)", path, index.Staged())
	return nil
}

// measure returns the size of one match, from the index when its mtime
// still agrees. Every measurement is recorded so the saved index holds
// exactly this scan's folders.
func (s *Scanner) measure(path string, index *SizeIndex, result *ScanResult) int64 {
	if index == nil {
		return s.sizeFunc(path)
	}

	key, err := security.ResolvePath(path)
	if err != nil {
		key = path
	}
	mtime := dirMtimeNs(path)

	if size, ok := index.Lookup(key, mtime); ok {
		result.IndexHits++
		index.Record(key, mtime, size)
		return size
	}

	result.IndexMisses++
	size := s.sizeFunc(path)
	index.Record(key, mtime, size)
	return size
}

// Items returns the matches of the last scan
func (s *Scanner) Items() []MatchedItem {
	return s.items
}

// TotalSize returns the summed size of the last scan's matches
func (s *Scanner) TotalSize() int64 {
	return s.totalSize
}

// Cleanup processes items, or every match of the last scan when items is
// nil, and returns one outcome per item.
func (s *Scanner) Cleanup(items []MatchedItem, opts CleanupOptions) *cleaner.CleanResult {
	if items == nil {
		items = s.items
	}

	targets := make([]cleaner.Target, 0, len(items))
	for _, item := range items {
		targets = append(targets, cleaner.Target{Path: item.Path, Size: item.Size})
	}

	c := cleaner.New(s.root, opts.Mode)
	c.SetLogger(s.logger)
	c.SetTrashRoot(opts.TrashRoot)
	c.SetItemCallback(opts.OnItem)
	c.SetRemoveFunc(opts.RemoveAll)
	c.AddProtectedPaths(s.config.ProtectedPaths...)
	if s.progressReporter != nil {
		c.SetProgressReporter(s.progressReporter)
	}

	return c.Clean(targets)
}

func (s *Scanner) reportScanProgress(phase progress.Phase, currentPath string, result *ScanResult, matched, sized int, startTime time.Time) {
	if s.progressReporter == nil {
		return
	}

	s.progressReporter.UpdateScanProgress(&progress.ScanProgress{
		Phase:       phase,
		CurrentPath: currentPath,
		DirsVisited: result.DirsVisited,
		Matched:     matched,
		Sized:       sized,
		TotalSize:   result.TotalSize,
		StartTime:   startTime,
	})
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
