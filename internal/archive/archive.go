// Package archive names the download-archive ledgers that keep yt-dlp from
// fetching the same item twice. yt-dlp is the only writer of these files.
package archive

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const FileName = "download-archive.txt"

// Ledger is the archive file for one download scope.
type Ledger struct {
	Scope string
	Path  string
}

// ForRoot is the ledger for single-item downloads written directly into root.
func ForRoot(root string) Ledger {
	return Ledger{Scope: root, Path: filepath.Join(root, FileName)}
}

// ForPlaylist is the ledger for a playlist folder under root. Items already
// fetched as singles are not seen by this ledger.
func ForPlaylist(root, folder string) Ledger {
	scope := filepath.Join(root, folder)
	return Ledger{Scope: scope, Path: filepath.Join(scope, FileName)}
}

// Entries reads the ledger lines ("<extractor> <id>"). A missing file yields
// no entries.
func (l Ledger) Entries() ([]string, error) {
	file, err := os.Open(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open archive %s: %w", l.Path, err)
	}
	defer file.Close()

	var entries []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			entries = append(entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read archive %s: %w", l.Path, err)
	}
	return entries, nil
}

func (l Ledger) Count() (int, error) {
	entries, err := l.Entries()
	return len(entries), err
}
