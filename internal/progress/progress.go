package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/fenilsonani/fsweep/pkg/utils"
)

// Phase represents the current phase of operation
type Phase string

const (
	PhaseScanning Phase = "scanning"
	PhaseSizing   Phase = "sizing"
	PhaseCleaning Phase = "cleaning"
	PhaseComplete Phase = "complete"
	PhaseError    Phase = "error"
)

// ScanProgress represents progress during scanning
type ScanProgress struct {
	Phase       Phase
	CurrentPath string
	DirsVisited int
	Matched     int
	Sized       int
	TotalSize   int64
	StartTime   time.Time
	Error       error
}

// CleanProgress represents progress during cleanup
type CleanProgress struct {
	Phase       Phase
	CurrentPath string
	Processed   int
	TotalItems  int
	FreedSize   int64
	TotalSize   int64
	Skipped     int
	Failed      int
	StartTime   time.Time
	Error       error
}

// ProgressReporter provides thread-safe progress reporting
type ProgressReporter struct {
	scanProgress  *ScanProgress
	cleanProgress *CleanProgress
	mu            sync.RWMutex
	listeners     []chan interface{}
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		listeners: make([]chan interface{}, 0),
	}
}

// Subscribe returns a channel that receives progress updates
func (pr *ProgressReporter) Subscribe() <-chan interface{} {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	ch := make(chan interface{}, 10)
	pr.listeners = append(pr.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel
func (pr *ProgressReporter) Unsubscribe(ch <-chan interface{}) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	for i, listener := range pr.listeners {
		if listener == ch {
			close(listener)
			pr.listeners = append(pr.listeners[:i], pr.listeners[i+1:]...)
			return
		}
	}
}

// UpdateScanProgress updates scan progress and notifies listeners
func (pr *ProgressReporter) UpdateScanProgress(update *ScanProgress) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	pr.scanProgress = update
	pr.broadcast(update)
}

// UpdateCleanProgress updates clean progress and notifies listeners
func (pr *ProgressReporter) UpdateCleanProgress(update *CleanProgress) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	pr.cleanProgress = update
	pr.broadcast(update)
}

// broadcast must run under pr.mu so Unsubscribe cannot close a channel
// mid-send. Sends never block; a full listener misses the update.
func (pr *ProgressReporter) broadcast(update interface{}) {
	for _, listener := range pr.listeners {
		select {
		case listener <- update:
		default:
		}
	}
}

// GetScanProgress returns the current scan progress
func (pr *ProgressReporter) GetScanProgress() *ScanProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.scanProgress
}

// GetCleanProgress returns the current clean progress
func (pr *ProgressReporter) GetCleanProgress() *CleanProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.cleanProgress
}

// FormatScanProgress returns a human-readable scan progress string
func FormatScanProgress(p *ScanProgress) string {
	if p == nil {
		return "Initializing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseScanning:
		return fmt.Sprintf("Scanning... %d directories visited, %d matched [%s]",
			p.DirsVisited,
			p.Matched,
			FormatDuration(elapsed))
	case PhaseSizing:
		return fmt.Sprintf("Sizing... %d/%d folders (%s) [%s]",
			p.Sized,
			p.Matched,
			utils.FormatBytes(p.TotalSize),
			FormatDuration(elapsed))
	case PhaseComplete:
		return fmt.Sprintf("Scan complete: %d folders (%s) in %s",
			p.Matched,
			utils.FormatBytes(p.TotalSize),
			FormatDuration(elapsed))
	case PhaseError:
		return fmt.Sprintf("Scan error: %v", p.Error)
	default:
		return "Scanning..."
	}
}

// FormatCleanProgress returns a human-readable clean progress string
func FormatCleanProgress(p *CleanProgress) string {
	if p == nil {
		return "Preparing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseCleaning:
		percentage := 0
		if p.TotalItems > 0 {
			percentage = (p.Processed * 100) / p.TotalItems
		}

		eta := ""
		if p.Processed > 0 && p.TotalItems > p.Processed {
			avgTime := elapsed / time.Duration(p.Processed)
			remaining := time.Duration(p.TotalItems-p.Processed) * avgTime
			eta = fmt.Sprintf(" ETA: %s", FormatDuration(remaining))
		}

		return fmt.Sprintf("Cleaning... %d/%d folders (%d%%) - %s freed%s",
			p.Processed,
			p.TotalItems,
			percentage,
			utils.FormatBytes(p.FreedSize),
			eta)
	case PhaseComplete:
		return fmt.Sprintf("Cleanup complete: %d folders (%s) in %s, %d skipped, %d failed",
			p.Processed,
			utils.FormatBytes(p.FreedSize),
			FormatDuration(elapsed),
			p.Skipped,
			p.Failed)
	case PhaseError:
		return fmt.Sprintf("Cleanup error: %v", p.Error)
	default:
		return "Preparing cleanup..."
	}
}

// FormatDuration formats duration in human-readable format
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
