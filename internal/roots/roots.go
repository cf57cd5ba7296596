// Package roots decides which directory downloads are written under.
package roots

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jaa/ytf/internal/config"
)

// Resolution is the root that will be used. UsedFallback is set whenever the
// requested root was rejected; Reason then says why.
type Resolution struct {
	Root         string
	UsedFallback bool
	Reason       string
}

// Resolver validates candidate roots. Relative input is anchored at BaseDir,
// and DefaultName under BaseDir is the root of last resort.
type Resolver struct {
	BaseDir     string
	DefaultName string
}

func New(baseDir, defaultName string) Resolver {
	return Resolver{BaseDir: baseDir, DefaultName: defaultName}
}

// Resolve returns a usable root for input, falling back to lastKnownGood and
// then to the default. Blank input means "keep lastKnownGood". An error is
// returned only when even the default directory cannot be prepared.
func (r Resolver) Resolve(input, lastKnownGood string) (Resolution, error) {
	input = strings.TrimSpace(input)
	lastKnownGood = strings.TrimSpace(lastKnownGood)

	var reasons []string
	requested := input
	if requested == "" {
		requested = lastKnownGood
		lastKnownGood = ""
	}

	if requested != "" {
		root, err := r.prepare(requested)
		if err == nil {
			return Resolution{Root: root}, nil
		}
		reasons = append(reasons, fmt.Sprintf("%q rejected: %v", requested, err))
	}

	if lastKnownGood != "" {
		root, err := r.prepare(lastKnownGood)
		if err == nil {
			return Resolution{Root: root, UsedFallback: true, Reason: strings.Join(reasons, "; ") + "; using last known good root"}, nil
		}
		reasons = append(reasons, fmt.Sprintf("last known good %q rejected: %v", lastKnownGood, err))
	}

	root, err := r.prepare(r.defaultRoot())
	if err != nil {
		return Resolution{}, fmt.Errorf("default download root %s is unusable: %w", r.defaultRoot(), err)
	}
	if len(reasons) == 0 {
		return Resolution{Root: root}, nil
	}
	return Resolution{Root: root, UsedFallback: true, Reason: strings.Join(reasons, "; ") + "; using default root"}, nil
}

func (r Resolver) defaultRoot() string {
	name := strings.TrimSpace(r.DefaultName)
	if name == "" {
		name = config.DefaultRootName
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(r.BaseDir, name)
}

func (r Resolver) prepare(raw string) (string, error) {
	if err := CheckCharacters(raw); err != nil {
		return "", err
	}

	expanded, err := config.ExpandPath(raw)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(r.BaseDir, expanded)
	}

	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return "", fmt.Errorf("cannot create: %w", err)
	}
	info, err := os.Stat(expanded)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory")
	}
	if err := ensureWritable(expanded); err != nil {
		return "", fmt.Errorf("not writable: %w", err)
	}
	return expanded, nil
}

// CheckCharacters rejects characters that are invalid on the most
// restrictive supported filesystem, regardless of the host.
func CheckCharacters(raw string) error {
	for i, r := range raw {
		switch {
		case r < 0x20 || r == 0x7f:
			return fmt.Errorf("contains a control character")
		case strings.ContainsRune(`<>"|?*`, r):
			return fmt.Errorf("contains invalid character %q", r)
		case r == ':' && !(i == 1 && unicode.IsLetter(rune(raw[0])) && raw[0] < 0x80):
			return fmt.Errorf("contains ':' outside a drive designator")
		}
	}
	return nil
}

func ensureWritable(dir string) error {
	tmp, err := os.CreateTemp(dir, ".ytf-write-check-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	closeErr := tmp.Close()
	removeErr := os.Remove(name)
	if closeErr != nil {
		return closeErr
	}
	return removeErr
}
