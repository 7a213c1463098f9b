package scanner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// IndexSchemaVersion tags the on-disk format; any other tag is ignored.
	IndexSchemaVersion = "1"
	// IndexFileName is the default index location inside the scan root.
	IndexFileName = ".fsweep-index.json"
)

// IndexEntry is the last measured size of a folder and its mtime at the time
type IndexEntry struct {
	MtimeNs   int64 `json:"mtime_ns"`
	SizeBytes int64 `json:"size_bytes"`
}

type indexFile struct {
	SchemaVersion string                `json:"schema_version"`
	Entries       map[string]IndexEntry `json:"entries"`
}

type rawIndexFile struct {
	SchemaVersion string                     `json:"schema_version"`
	Entries       map[string]json.RawMessage `json:"entries"`
}

type rawIndexEntry struct {
	MtimeNs   *int64 `json:"mtime_ns"`
	SizeBytes *int64 `json:"size_bytes"`
}

// SizeIndex caches folder sizes keyed by resolved path. An entry is only
// trusted when its mtime equals the folder's current mtime exactly. Save
// writes only what was recorded during this scan, so folders that are
// gone drop out.
//
// Known limitation: a file rewritten in place without touching the
// folder's own mtime is not noticed.
type SizeIndex struct {
	loaded map[string]IndexEntry
	staged map[string]IndexEntry
}

// NewSizeIndex returns an empty index
func NewSizeIndex() *SizeIndex {
	return &SizeIndex{
		loaded: make(map[string]IndexEntry),
		staged: make(map[string]IndexEntry),
	}
}

// LoadSizeIndex reads the index at path. It always returns a usable index;
// a missing, unreadable, corrupt or foreign-version file yields an empty
// one together with the reason. A missing file is not an error.
func LoadSizeIndex(path string) (*SizeIndex, error) {
	ix := NewSizeIndex()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ix, nil
		}
		return ix, fmt.Errorf("failed to read size index: %w", err)
	}

	var raw rawIndexFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return ix, fmt.Errorf("failed to parse size index: %w", err)
	}

	if raw.SchemaVersion != IndexSchemaVersion {
		return ix, fmt.Errorf("size index schema %q is not %q", raw.SchemaVersion, IndexSchemaVersion)
	}

	for key, msg := range raw.Entries {
		var entry rawIndexEntry
		if err := json.Unmarshal(msg, &entry); err != nil {
			continue
		}
		if entry.MtimeNs == nil || entry.SizeBytes == nil {
			continue
		}
		ix.loaded[key] = IndexEntry{MtimeNs: *entry.MtimeNs, SizeBytes: *entry.SizeBytes}
	}

	return ix, nil
}

// Lookup returns the cached size for key if the stored mtime matches
func (ix *SizeIndex) Lookup(key string, mtimeNs int64) (int64, bool) {
	entry, ok := ix.loaded[key]
	if !ok || entry.MtimeNs != mtimeNs {
		return 0, false
	}
	return entry.SizeBytes, true
}

// Record stages an entry for the next Save
func (ix *SizeIndex) Record(key string, mtimeNs, size int64) {
	ix.staged[key] = IndexEntry{MtimeNs: mtimeNs, SizeBytes: size}
}

// Len returns the number of loaded entries
func (ix *SizeIndex) Len() int {
	return len(ix.loaded)
}

// Staged returns the number of entries Save would write
func (ix *SizeIndex) Staged() int {
	return len(ix.staged)
}

// Save replaces the file at path with the staged entries. The write goes
// through a temp file and a rename so readers never see half a file.
func (ix *SizeIndex) Save(path string) error {
	data, err := json.MarshalIndent(indexFile{
		SchemaVersion: IndexSchemaVersion,
		Entries:       ix.staged,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode size index: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write size index: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write size index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write size index: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write size index: %w", err)
	}

	return nil
}

// dirMtimeNs returns the folder's mtime in nanoseconds, or 0 if it cannot be read
func dirMtimeNs(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}
