package util

import (
	"errors"
	"syscall"
)

// TemporaryErr reports whether err wraps an errno that is worth retrying.
func TemporaryErr(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	return errno.Temporary()
}
