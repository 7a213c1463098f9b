package cleaner

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TrashTimestampFormat names a trash session directory, e.g. 20240102T030405Z
const TrashTimestampFormat = "20060102T150405Z"

// manifestName is written at the top of each trash session
const manifestName = "fsweep-manifest.txt"

// TrashRoot is the session directory that trashed folders move into. It is
// built once per cleanup and passed to the cleaner explicitly.
type TrashRoot struct {
	Path      string
	CreatedAt time.Time
}

// NewTrashRoot returns the session trash root under base for the given time
func NewTrashRoot(base string, now time.Time) *TrashRoot {
	now = now.UTC()
	return &TrashRoot{
		Path:      filepath.Join(base, now.Format(TrashTimestampFormat)),
		CreatedAt: now,
	}
}

// ManifestPath is where the session manifest is written
func (tr *TrashRoot) ManifestPath() string {
	return filepath.Join(tr.Path, manifestName)
}

// Destination returns a free path for item under the trash root that
// mirrors its position relative to scanRoot. Parent directories are created.
func (tr *TrashRoot) Destination(scanRoot, item string) (string, error) {
	rel, err := filepath.Rel(scanRoot, item)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is not inside scan root %s", item, scanRoot)
	}

	dest := filepath.Join(tr.Path, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", err
	}

	return uniquePath(dest), nil
}

// uniquePath appends -1, -2, ... to the leaf name until nothing exists there
func uniquePath(path string) string {
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return path
	}

	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", path, i)
		if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
	}
}

// moveToTrash renames item into the trash root, copying across devices
func (c *Cleaner) moveToTrash(item string) (string, error) {
	dest, err := c.trashRoot.Destination(c.root, item)
	if err != nil {
		return "", err
	}

	err = c.rename(item, dest)
	if err == nil {
		return dest, nil
	}

	if CategorizeError(item, err).Reason != ErrorCrossDevice {
		return "", err
	}

	c.logger.Debug("rename across devices, copying %s to %s", item, dest)
	if err := copyTree(item, dest); err != nil {
		os.RemoveAll(dest)
		return "", fmt.Errorf("copy to trash: %w", err)
	}
	if err := c.removeAll(item); err != nil {
		return "", fmt.Errorf("remove after copy to trash: %w", err)
	}
	return dest, nil
}

// copyTree copies a directory tree without following symlinks
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode().Perm())
		default:
			// sockets, devices and fifos are not worth preserving
			return nil
		}
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// TrashManifest lists where each trashed folder came from
type TrashManifest struct {
	Entries   []TrashManifestEntry
	Timestamp time.Time
	TotalSize int64
}

// TrashManifestEntry is one trashed folder
type TrashManifestEntry struct {
	Original    string
	Destination string
	Size        int64
	TrashedAt   time.Time
}

// NewTrashManifest creates an empty manifest
func NewTrashManifest() *TrashManifest {
	return &TrashManifest{
		Entries:   []TrashManifestEntry{},
		Timestamp: time.Now(),
	}
}

// Add adds a folder to the manifest
func (m *TrashManifest) Add(original, destination string, size int64) {
	m.Entries = append(m.Entries, TrashManifestEntry{
		Original:    original,
		Destination: destination,
		Size:        size,
		TrashedAt:   time.Now(),
	})
	m.TotalSize += size
}

// Len returns the number of entries
func (m *TrashManifest) Len() int {
	return len(m.Entries)
}

// Save writes the manifest to path, appending if a file is already there
func (m *TrashManifest) Save(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "fsweep trash manifest\n")
	fmt.Fprintf(file, "Created: %s\n", m.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(file, "Total Size: %d bytes\n", m.TotalSize)
	fmt.Fprintf(file, "Total Folders: %d\n\n", len(m.Entries))

	for _, e := range m.Entries {
		fmt.Fprintf(file, "%s -> %s | %d bytes | %s\n",
			e.Original, e.Destination, e.Size, e.TrashedAt.Format(time.RFC3339))
	}

	return nil
}
