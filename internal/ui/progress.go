package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/fenilsonani/fsweep/internal/progress"
	"github.com/fenilsonani/fsweep/internal/ui/styles"
	uiutils "github.com/fenilsonani/fsweep/internal/ui/utils"
)

// LiveProgress redraws one status line from progress updates
type LiveProgress struct {
	mu         sync.Mutex
	out        io.Writer
	enabled    bool
	width      int
	frames     []string
	frame      int
	lastUpdate time.Time
	drawn      bool
}

// NewLiveProgress creates a progress line writing to out. A disabled
// LiveProgress ignores every update.
func NewLiveProgress(out io.Writer, enabled bool) *LiveProgress {
	return &LiveProgress{
		out:     out,
		enabled: enabled,
		width:   uiutils.MinTerminalWidth,
		frames:  spinner.MiniDot.Frames,
	}
}

// Attach follows pr until the returned stop function is called. stop
// clears the line and waits for the listener to exit.
func (lp *LiveProgress) Attach(pr *progress.ProgressReporter) (stop func()) {
	if !lp.enabled || pr == nil {
		return func() {}
	}

	ch := pr.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range ch {
			switch p := update.(type) {
			case *progress.ScanProgress:
				lp.Update(progress.FormatScanProgress(p), 0, 0, p.Phase == progress.PhaseComplete)
			case *progress.CleanProgress:
				lp.Update(progress.FormatCleanProgress(p), p.Processed, p.TotalItems, p.Phase == progress.PhaseComplete)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			pr.Unsubscribe(ch)
			<-done
			lp.Clear()
		})
	}
}

// Update redraws the line. Updates closer than 100ms apart are dropped
// unless force is set.
func (lp *LiveProgress) Update(text string, current, total int, force bool) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if !lp.enabled {
		return
	}

	now := time.Now()
	if !force && now.Sub(lp.lastUpdate) < 100*time.Millisecond {
		return
	}
	lp.lastUpdate = now

	lp.frame = (lp.frame + 1) % len(lp.frames)
	line := lp.frames[lp.frame] + " "
	if total > 0 {
		line += styles.ProgressBar(current, total, 20) + " "
	}
	line += uiutils.TruncateString(text, lp.width-30)

	fmt.Fprintf(lp.out, "\r\033[K%s", line)
	lp.drawn = true
}

// Clear erases the line if anything was drawn
func (lp *LiveProgress) Clear() {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if lp.drawn {
		fmt.Fprint(lp.out, "\r\033[K")
		lp.drawn = false
	}
}
