package utils

import (
	"path/filepath"
	"strings"
)

const (
	// MinTerminalWidth is the minimum recommended terminal width
	MinTerminalWidth = 80
	// MinTerminalHeight is the minimum recommended terminal height
	MinTerminalHeight = 24
)

// TruncatePath shortens path to maxWidth, keeping the leaf name and as
// much of the start and end of the directory as fits.
func TruncatePath(path string, maxWidth int) string {
	if len(path) <= maxWidth {
		return path
	}

	if maxWidth < 10 {
		return "..."
	}

	dir, file := filepath.Split(path)

	if len(file) > maxWidth-4 {
		return "..." + file[len(file)-(maxWidth-4):]
	}

	// 3 for "..."
	availableForDir := maxWidth - len(file) - 3
	if availableForDir <= 0 {
		return "..." + file
	}

	dir = filepath.Clean(dir)
	if len(dir) <= availableForDir {
		return filepath.Join(dir, file)
	}

	if availableForDir < 10 {
		return ".../" + file
	}

	parts := strings.Split(dir, string(filepath.Separator))
	if len(parts) <= 2 {
		return "..." + dir[len(dir)-availableForDir:] + string(filepath.Separator) + file
	}

	firstPart := parts[0]
	if firstPart == "" && len(parts) > 1 {
		firstPart = string(filepath.Separator) + parts[1]
	}
	lastPart := parts[len(parts)-1]

	// firstPart/.../lastPart/file
	if len(firstPart)+len(lastPart)+5 <= availableForDir {
		return strings.Join([]string{firstPart, "...", lastPart, file}, string(filepath.Separator))
	}

	return strings.Join([]string{"...", lastPart, file}, string(filepath.Separator))
}

// CalculatePageSize returns how many list rows fit under the title,
// help and status lines.
func CalculatePageSize(terminalHeight int) int {
	const reservedLines = 10

	pageSize := terminalHeight - reservedLines
	if pageSize < 5 {
		pageSize = 5
	}

	return pageSize
}

// TruncateString truncates a string to maxLen, adding ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
