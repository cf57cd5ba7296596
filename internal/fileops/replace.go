package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	statFile   = os.Stat
	renameFile = os.Rename
	removeFile = os.Remove
)

const backupSuffix = ".ytf.bak"

// ReplaceFileSafely moves stagedPath over targetPath. The previous target is
// kept as a backup until the swap succeeds and is restored if it fails.
func ReplaceFileSafely(stagedPath string, targetPath string) error {
	staged := strings.TrimSpace(stagedPath)
	target := strings.TrimSpace(targetPath)
	if staged == "" {
		return fmt.Errorf("replacement staged path is empty")
	}
	if target == "" {
		return fmt.Errorf("replacement target path is empty")
	}
	if staged == target {
		return fmt.Errorf("replacement staged and target paths must differ")
	}

	stagedInfo, err := statFile(staged)
	if err != nil {
		return fmt.Errorf("stat staged file %q: %w", staged, err)
	}
	if stagedInfo.IsDir() {
		return fmt.Errorf("staged path is a directory: %s", staged)
	}

	backup := target + backupSuffix
	if _, err := statFile(backup); err == nil {
		if removeErr := removeFile(backup); removeErr != nil {
			return fmt.Errorf("remove stale backup %q: %w", backup, removeErr)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat backup %q: %w", backup, err)
	}

	hadTarget := false
	if _, err := statFile(target); err == nil {
		hadTarget = true
		if err := renameFile(target, backup); err != nil {
			return fmt.Errorf("move existing target to backup: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat target %q: %w", target, err)
	}

	if err := renameFile(staged, target); err != nil {
		if hadTarget {
			if rollbackErr := renameFile(backup, target); rollbackErr != nil {
				return fmt.Errorf("replace failed (%v) and rollback failed (%w)", err, rollbackErr)
			}
		}
		return fmt.Errorf("move staged file into place: %w", err)
	}

	if hadTarget {
		// A running executable cannot always be deleted on Windows; a stale
		// backup is cleaned up on the next replacement.
		_ = removeFile(backup)
	}
	return nil
}

// WriteFileAtomic writes payload to a temp file next to path and renames it
// over path, so readers see either the old or the new content.
func WriteFileAtomic(path string, payload []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".ytf-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tempPath := tempFile.Name()
	cleanup := func() { _ = os.Remove(tempPath) }

	if _, err := tempFile.Write(payload); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", tempPath, err)
	}
	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", tempPath, err)
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", tempPath, err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", tempPath, err)
	}
	if err := renameFile(tempPath, path); err != nil {
		cleanup()
		return fmt.Errorf("rename %s to %s: %w", tempPath, path, err)
	}
	return nil
}
