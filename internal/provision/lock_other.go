//go:build !windows && !darwin && !dragonfly && !freebsd && !linux && !netbsd && !openbsd

package provision

import (
	"errors"
	"os"
	"syscall"
)

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
	return false, file.Close()
}
