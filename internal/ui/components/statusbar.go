package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fenilsonani/fsweep/internal/ui/styles"
	"github.com/fenilsonani/fsweep/pkg/utils"
)

// StatusBar is the line at the bottom of the selection view
type StatusBar struct {
	viewName string
	selected int
	total    int
	size     int64
	hint     string
}

// NewStatusBar creates a new status bar
func NewStatusBar(viewName string) *StatusBar {
	return &StatusBar{viewName: viewName}
}

// SetSelection sets the selection count, total, and size
func (s *StatusBar) SetSelection(selected, total int, size int64) {
	s.selected = selected
	s.total = total
	s.size = size
}

// SetHint sets the right-aligned text, usually the short key help
func (s *StatusBar) SetHint(hint string) {
	s.hint = hint
}

// Render renders the status bar with the given width
func (s *StatusBar) Render(width int) string {
	if width <= 0 {
		width = 80
	}

	var parts []string
	if s.viewName != "" {
		parts = append(parts, styles.BoldStyle.Render(s.viewName))
	}
	if s.total > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d selected", s.selected, s.total))
	}
	parts = append(parts, styles.FileSizeStyle.Render(utils.FormatBytes(s.size)))

	leftSide := strings.Join(parts, " • ")
	rightSide := s.hint

	// -2 for padding
	spacing := width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide) - 2
	if spacing < 1 {
		rightSide = ""
		spacing = 1
	}

	return styles.StatusBarStyle.Width(width).Render(leftSide + strings.Repeat(" ", spacing) + rightSide)
}
