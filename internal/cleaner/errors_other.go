//go:build !unix

package cleaner

func categorizeErrno(err error) (ErrorReason, bool, bool) {
	return ErrorUnknown, false, false
}
