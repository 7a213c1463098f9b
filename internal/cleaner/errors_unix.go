//go:build unix

package cleaner

import (
	"errors"

	"golang.org/x/sys/unix"
)

func categorizeErrno(err error) (ErrorReason, bool, bool) {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return ErrorUnknown, false, false
	}

	switch errno {
	case unix.EACCES, unix.EPERM, unix.EROFS:
		return ErrorPermissionDenied, false, true
	case unix.EBUSY, unix.ETXTBSY:
		return ErrorFileInUse, true, true
	case unix.ENOTEMPTY:
		// a concurrent writer refilled the folder mid-removal
		return ErrorFileInUse, true, true
	case unix.ENOENT:
		return ErrorFileNotFound, false, true
	case unix.EXDEV:
		return ErrorCrossDevice, false, true
	default:
		return ErrorUnknown, false, true
	}
}
