package cleaner

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrorReason categorizes why a deletion or move failed
type ErrorReason int

const (
	ErrorPermissionDenied ErrorReason = iota
	ErrorFileInUse
	ErrorFileNotFound
	ErrorCrossDevice
	ErrorInvalidPath
	ErrorUnknown
)

// String returns a human-readable error reason
func (e ErrorReason) String() string {
	switch e {
	case ErrorPermissionDenied:
		return "Permission denied"
	case ErrorFileInUse:
		return "Folder is in use"
	case ErrorFileNotFound:
		return "Folder not found"
	case ErrorCrossDevice:
		return "Cross-device move"
	case ErrorInvalidPath:
		return "Invalid path"
	case ErrorUnknown:
		return "Unknown error"
	default:
		return "Unspecified error"
	}
}

// DeletionError represents a detailed deletion error
type DeletionError struct {
	Path      string
	Reason    ErrorReason
	Original  error
	Retryable bool
}

// Error implements the error interface
func (e *DeletionError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Original)
}

// Unwrap returns the underlying error
func (e *DeletionError) Unwrap() error {
	return e.Original
}

// UserMessage returns a user-friendly error message
func (e *DeletionError) UserMessage() string {
	switch e.Reason {
	case ErrorPermissionDenied:
		return fmt.Sprintf("Permission denied: %s", e.Path)
	case ErrorFileInUse:
		return fmt.Sprintf("Folder is being used: %s (close the application and try again)", e.Path)
	case ErrorFileNotFound:
		return fmt.Sprintf("Already gone: %s", e.Path)
	case ErrorCrossDevice:
		return fmt.Sprintf("Cannot move across devices: %s", e.Path)
	case ErrorInvalidPath:
		return fmt.Sprintf("Invalid or unsafe path: %s (%v)", e.Path, e.Original)
	default:
		return fmt.Sprintf("Error cleaning %s: %v", e.Path, e.Original)
	}
}

// CategorizeError analyzes an error and returns a categorized DeletionError
func CategorizeError(path string, err error) *DeletionError {
	if err == nil {
		return nil
	}

	delErr := &DeletionError{
		Path:     path,
		Original: err,
		Reason:   ErrorUnknown,
	}

	if errors.Is(err, os.ErrNotExist) {
		delErr.Reason = ErrorFileNotFound
		return delErr
	}

	if errors.Is(err, os.ErrPermission) {
		delErr.Reason = ErrorPermissionDenied
		return delErr
	}

	// errno checks live in the platform files
	if reason, retryable, ok := categorizeErrno(err); ok {
		delErr.Reason = reason
		delErr.Retryable = retryable
	}

	return delErr
}

// GroupErrors groups deletion errors by reason
func GroupErrors(errs []*DeletionError) map[ErrorReason][]*DeletionError {
	grouped := make(map[ErrorReason][]*DeletionError)
	for _, err := range errs {
		grouped[err.Reason] = append(grouped[err.Reason], err)
	}
	return grouped
}

// FormatErrorSummary creates a user-friendly summary of errors
func FormatErrorSummary(errs []*DeletionError) string {
	if len(errs) == 0 {
		return ""
	}

	grouped := GroupErrors(errs)
	var b strings.Builder
	b.WriteString("\nIssues encountered:\n")

	if perms, ok := grouped[ErrorPermissionDenied]; ok {
		fmt.Fprintf(&b, "   ├─ Permission denied: %d folders\n", len(perms))
		b.WriteString("   │  └─ Tip: check ownership of the folders or run as their owner\n")
	}

	if busy, ok := grouped[ErrorFileInUse]; ok {
		fmt.Fprintf(&b, "   ├─ In use: %d folders\n", len(busy))
		b.WriteString("   │  └─ Tip: stop dev servers and editors, then retry\n")
	}

	if xdev, ok := grouped[ErrorCrossDevice]; ok {
		fmt.Fprintf(&b, "   ├─ Cross-device moves: %d folders\n", len(xdev))
	}

	if invalid, ok := grouped[ErrorInvalidPath]; ok {
		fmt.Fprintf(&b, "   ├─ Refused paths: %d folders\n", len(invalid))
	}

	if unknown, ok := grouped[ErrorUnknown]; ok {
		fmt.Fprintf(&b, "   └─ Other errors: %d folders\n", len(unknown))
	}

	return b.String()
}
