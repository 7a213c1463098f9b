package cleaner

import (
	"fmt"
	"os"
	"time"

	"github.com/fenilsonani/fsweep/internal/logging"
	"github.com/fenilsonani/fsweep/internal/progress"
	"github.com/fenilsonani/fsweep/internal/security"
)

// Mode selects what the cleaner does with each folder
type Mode int

const (
	ModeSimulate Mode = iota
	ModeDelete
	ModeTrash
)

// String returns the action name used in reports
func (m Mode) String() string {
	switch m {
	case ModeDelete:
		return "delete"
	case ModeTrash:
		return "trash"
	default:
		return "simulate"
	}
}

// Status is the per-folder result of a cleanup
type Status string

const (
	StatusDeleted   Status = "deleted"
	StatusTrashed   Status = "trashed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusSimulated Status = "simulated"
)

// Target is one folder handed to the cleaner
type Target struct {
	Path string
	Size int64
}

// Outcome records what happened to one target
type Outcome struct {
	Path             string
	Size             int64
	Status           Status
	Error            string
	TrashDestination string
}

// Stats counts outcomes per status across a batch
type Stats struct {
	Deleted    int
	Trashed    int
	Skipped    int
	Failed     int
	Simulated  int
	FreedBytes int64
}

func (s *Stats) record(o Outcome) {
	switch o.Status {
	case StatusDeleted:
		s.Deleted++
		s.FreedBytes += o.Size
	case StatusTrashed:
		s.Trashed++
		s.FreedBytes += o.Size
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	case StatusSimulated:
		s.Simulated++
	}
}

// CleanResult represents the result of a clean operation
type CleanResult struct {
	Mode      Mode
	Outcomes  []Outcome
	Stats     Stats
	Errors    []*DeletionError
	TrashRoot string
}

// DryRun reports whether nothing was mutated
func (r *CleanResult) DryRun() bool {
	return r.Mode == ModeSimulate
}

// HasFailures reports whether any target failed
func (r *CleanResult) HasFailures() bool {
	return r.Stats.Failed > 0
}

// retryDelays are the waits between attempts on retryable errors
var retryDelays = []time.Duration{
	100 * time.Millisecond,
	500 * time.Millisecond,
}

// Cleaner removes or trashes matched folders with safeguards
type Cleaner struct {
	root             string
	mode             Mode
	trashRoot        *TrashRoot
	pathValidator    *security.PathValidator
	progressReporter *progress.ProgressReporter
	logger           *logging.Logger
	onItem           func(Outcome)

	// filesystem hooks, replaced in tests
	removeAll func(string) error
	rename    func(string, string) error
}

// New creates a Cleaner for folders found under root
func New(root string, mode Mode) *Cleaner {
	return &Cleaner{
		root:          root,
		mode:          mode,
		pathValidator: security.NewPathValidator(),
		logger:        logging.Nop(),
		removeAll:     os.RemoveAll,
		rename:        os.Rename,
	}
}

// SetTrashRoot sets the session trash root used in ModeTrash
func (c *Cleaner) SetTrashRoot(tr *TrashRoot) {
	c.trashRoot = tr
}

// AddProtectedPaths refuses every target at or beneath the given paths
func (c *Cleaner) AddProtectedPaths(paths ...string) {
	for _, p := range paths {
		c.pathValidator.AddProtectedPath(p)
	}
}

// SetRemoveFunc replaces the function used to delete a folder in ModeDelete
func (c *Cleaner) SetRemoveFunc(fn func(string) error) {
	if fn != nil {
		c.removeAll = fn
	}
}

// SetProgressReporter sets a custom progress reporter
func (c *Cleaner) SetProgressReporter(pr *progress.ProgressReporter) {
	c.progressReporter = pr
}

// SetLogger sets the logger
func (c *Cleaner) SetLogger(l *logging.Logger) {
	if l != nil {
		c.logger = l
	}
}

// SetItemCallback registers fn to run after each target is processed
func (c *Cleaner) SetItemCallback(fn func(Outcome)) {
	c.onItem = fn
}

// Mode returns the cleaner's mode
func (c *Cleaner) Mode() Mode {
	return c.mode
}

// Clean processes every target in order and never stops early
func (c *Cleaner) Clean(targets []Target) *CleanResult {
	result := &CleanResult{
		Mode:     c.mode,
		Outcomes: make([]Outcome, 0, len(targets)),
		Errors:   []*DeletionError{},
	}
	if c.mode == ModeTrash && c.trashRoot != nil {
		result.TrashRoot = c.trashRoot.Path
	}

	startTime := time.Now()
	var totalSize int64
	for _, t := range targets {
		totalSize += t.Size
	}

	c.reportCleanProgress(progress.PhaseCleaning, "", result, len(targets), totalSize, startTime)

	manifest := NewTrashManifest()
	for _, t := range targets {
		c.reportCleanProgress(progress.PhaseCleaning, t.Path, result, len(targets), totalSize, startTime)

		outcome, delErr := c.cleanOne(t)
		if delErr != nil {
			result.Errors = append(result.Errors, delErr)
			c.logger.Warn("%s failed: %s", c.mode, delErr.UserMessage())
		}
		if outcome.Status == StatusTrashed {
			manifest.Add(outcome.Path, outcome.TrashDestination, outcome.Size)
		}

		result.Outcomes = append(result.Outcomes, outcome)
		result.Stats.record(outcome)

		if c.onItem != nil {
			c.onItem(outcome)
		}
	}

	if c.mode == ModeTrash && c.trashRoot != nil && manifest.Len() > 0 {
		if err := manifest.Save(c.trashRoot.ManifestPath()); err != nil {
			c.logger.Warn("failed to write trash manifest: %v", err)
		}
	}

	c.reportCleanProgress(progress.PhaseComplete, "", result, len(targets), totalSize, startTime)
	c.logger.Info("cleanup finished: mode=%s deleted=%d trashed=%d skipped=%d failed=%d",
		c.mode, result.Stats.Deleted, result.Stats.Trashed, result.Stats.Skipped, result.Stats.Failed)

	return result
}

// cleanOne handles a single target. A not-found path is skipped, every
// other error becomes a failed outcome.
func (c *Cleaner) cleanOne(t Target) (Outcome, *DeletionError) {
	outcome := Outcome{Path: t.Path, Size: t.Size}

	if c.mode == ModeSimulate {
		outcome.Status = StatusSimulated
		return outcome, nil
	}

	if err := c.pathValidator.ValidatePathForDeletion(t.Path); err != nil {
		return failed(outcome, &DeletionError{Path: t.Path, Reason: ErrorInvalidPath, Original: err})
	}

	// Lstat so a folder swapped for a symlink after the scan is not followed.
	info, err := os.Lstat(t.Path)
	if err != nil {
		delErr := CategorizeError(t.Path, err)
		if delErr.Reason == ErrorFileNotFound {
			outcome.Status = StatusSkipped
			return outcome, nil
		}
		return failed(outcome, delErr)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return failed(outcome, &DeletionError{
			Path:     t.Path,
			Reason:   ErrorInvalidPath,
			Original: fmt.Errorf("path changed to a symlink since the scan"),
		})
	}

	switch c.mode {
	case ModeDelete:
		if delErr := c.withRetry(t.Path, func() error { return c.removeAll(t.Path) }); delErr != nil {
			return resolveFailure(outcome, delErr)
		}
		outcome.Status = StatusDeleted
		return outcome, nil

	case ModeTrash:
		if c.trashRoot == nil {
			return failed(outcome, &DeletionError{
				Path:     t.Path,
				Reason:   ErrorInvalidPath,
				Original: fmt.Errorf("trash root not initialized"),
			})
		}
		var dest string
		delErr := c.withRetry(t.Path, func() error {
			var err error
			dest, err = c.moveToTrash(t.Path)
			return err
		})
		if delErr != nil {
			return resolveFailure(outcome, delErr)
		}
		outcome.Status = StatusTrashed
		outcome.TrashDestination = dest
		return outcome, nil
	}

	return failed(outcome, &DeletionError{Path: t.Path, Reason: ErrorUnknown, Original: fmt.Errorf("unknown mode %d", c.mode)})
}

// withRetry runs op, retrying while the error is transient
func (c *Cleaner) withRetry(path string, op func() error) *DeletionError {
	var lastErr *DeletionError

	for attempt := 0; attempt <= len(retryDelays); attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		lastErr = CategorizeError(path, err)
		if !lastErr.Retryable {
			return lastErr
		}

		if attempt < len(retryDelays) {
			c.logger.Debug("retrying %s after %s", path, lastErr.Reason)
			time.Sleep(retryDelays[attempt])
		}
	}

	return lastErr
}

func failed(outcome Outcome, delErr *DeletionError) (Outcome, *DeletionError) {
	outcome.Status = StatusFailed
	outcome.Error = delErr.Original.Error()
	return outcome, delErr
}

// resolveFailure maps a vanished folder to skipped and anything else to failed
func resolveFailure(outcome Outcome, delErr *DeletionError) (Outcome, *DeletionError) {
	if delErr.Reason == ErrorFileNotFound {
		outcome.Status = StatusSkipped
		return outcome, nil
	}
	return failed(outcome, delErr)
}

// reportCleanProgress reports clean progress to listeners
func (c *Cleaner) reportCleanProgress(phase progress.Phase, currentPath string, result *CleanResult, totalItems int, totalSize int64, startTime time.Time) {
	if c.progressReporter == nil {
		return
	}

	c.progressReporter.UpdateCleanProgress(&progress.CleanProgress{
		Phase:       phase,
		CurrentPath: currentPath,
		Processed:   len(result.Outcomes),
		TotalItems:  totalItems,
		FreedSize:   result.Stats.FreedBytes,
		TotalSize:   totalSize,
		Skipped:     result.Stats.Skipped,
		Failed:      result.Stats.Failed,
		StartTime:   startTime,
	})
}
