package scanner

import (
	"io/fs"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// SizeFunc measures the occupied size of a folder
type SizeFunc func(path string) int64

// DirSize totals regular file sizes under path. Symlinks count their own
// lstat size and are never followed, so a link out of the tree or back
// into an ancestor cannot inflate the total. Unreadable entries count as
// zero and the walk never fails.
func DirSize(path string) int64 {
	var total int64

	conf := &fastwalk.Config{
		Follow: false,
	}

	// fastwalk calls back from several goroutines.
	_ = fastwalk.Walk(conf, path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d == nil {
			return nil
		}

		typ := d.Type()
		if typ&fs.ModeSymlink == 0 && !typ.IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		atomic.AddInt64(&total, info.Size())
		return nil
	})

	return atomic.LoadInt64(&total)
}
