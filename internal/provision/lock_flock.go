//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package provision

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// isLocked reports whether another process holds path open in a way that
// forbids replacing it: a running executable (ETXTBSY) or an exclusive lock.
// A file this user cannot open for writing, such as a 0555 executable, yields
// an error matching os.ErrPermission.
func isLocked(path string) (bool, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		switch {
		case errors.Is(err, syscall.ETXTBSY):
			return true, nil
		case errors.Is(err, os.ErrNotExist):
			return false, nil
		}
		return false, err
	}
	defer file.Close()

	fd := int(file.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) {
			return true, nil
		}
		return false, err
	}
	_ = unix.Flock(fd, unix.LOCK_UN)
	return false, nil
}
