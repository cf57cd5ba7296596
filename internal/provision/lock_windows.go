//go:build windows

package provision

import (
	"errors"

	"golang.org/x/sys/windows"
)

// isLocked opens path with no sharing allowed. Any other open handle, such as
// a running executable, makes the open fail with a sharing violation.
func isLocked(path string) (bool, error) {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false, err
	}
	handle, err := windows.CreateFile(
		name,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		switch {
		case errors.Is(err, windows.ERROR_SHARING_VIOLATION), errors.Is(err, windows.ERROR_LOCK_VIOLATION):
			return true, nil
		case errors.Is(err, windows.ERROR_FILE_NOT_FOUND), errors.Is(err, windows.ERROR_PATH_NOT_FOUND):
			return false, nil
		}
		return false, err
	}
	_ = windows.CloseHandle(handle)
	return false, nil
}
