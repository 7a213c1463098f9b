package security

import (
	"fmt"
	"os"
	"path/filepath"
)

// GuardError is a policy refusal raised before any filesystem mutation.
type GuardError struct {
	Message string
}

func (e *GuardError) Error() string {
	return e.Message
}

func refuse(format string, args ...interface{}) error {
	return &GuardError{Message: fmt.Sprintf(format, args...)}
}

// GuardScanRoot refuses to scan the filesystem root or the user's home
// directory itself. Both arguments are resolved before comparison. A root
// that does not exist is an error, not a refusal.
func GuardScanRoot(root, homeDir string) error {
	resolved, err := ResolvePath(root)
	if err != nil {
		return fmt.Errorf("resolving scan root: %w", err)
	}
	if _, err := os.Stat(resolved); err != nil {
		return fmt.Errorf("scan root: %w", err)
	}

	if resolved == string(filepath.Separator) || filepath.Dir(resolved) == resolved {
		return refuse("Refusing to sweep filesystem root ('%s').", resolved)
	}

	if homeDir != "" {
		home, err := ResolvePath(homeDir)
		if err == nil && resolved == home {
			return refuse("Refusing to sweep your home directory root.")
		}
	}

	return nil
}

// GuardDeleteCount refuses a destructive batch larger than max unless the
// limit has been disabled.
func GuardDeleteCount(count, max int, noLimit bool) error {
	if noLimit || count <= max {
		return nil
	}
	return refuse("Refusing to delete %d folders because it exceeds --max-delete-count=%d. Use --no-delete-limit to override.", count, max)
}

// GuardDestructive requires the explicit opt-in flag for real deletion or trashing.
func GuardDestructive(destructive, optedIn bool) error {
	if destructive && !optedIn {
		return refuse("Destructive mode requires --yes-delete.")
	}
	return nil
}
