// Package toolver models the date-stamped release tokens used by the
// downloading tool: YYYY.MM.DD with an optional .HHMMSS build suffix.
package toolver

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var ErrInvalidVersion = errors.New("invalid tool version")

var tokenPattern = regexp.MustCompile(`^(\d{4})\.(\d{2})\.(\d{2})(?:\.(\d{6}))?$`)

// Version is a validated release token. The zero value means "unknown".
//
// Tokens inside the grammar are fixed width, so comparing the canonical
// strings byte by byte yields chronological order.
type Version struct {
	token string
}

// Parse validates raw against the token grammar. A leading "v" is tolerated
// because some feeds prefix their tags.
func Parse(raw string) (Version, error) {
	candidate := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	matches := tokenPattern.FindStringSubmatch(candidate)
	if matches == nil {
		return Version{}, fmt.Errorf("%w: %q does not match YYYY.MM.DD[.HHMMSS]", ErrInvalidVersion, raw)
	}
	if _, err := time.Parse("2006.01.02", matches[1]+"."+matches[2]+"."+matches[3]); err != nil {
		return Version{}, fmt.Errorf("%w: %q has an impossible date", ErrInvalidVersion, raw)
	}
	if matches[4] != "" {
		if _, err := time.Parse("150405", matches[4]); err != nil {
			return Version{}, fmt.Errorf("%w: %q has an impossible build time", ErrInvalidVersion, raw)
		}
	}
	return Version{token: candidate}, nil
}

// MustParse is Parse for constants and tests.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// FromOutput extracts a version from the stdout of a `--version` query. The
// first non-empty line must be a complete token.
func FromOutput(stdout string) (Version, error) {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return Parse(line)
	}
	return Version{}, fmt.Errorf("%w: empty version output", ErrInvalidVersion)
}

func (v Version) String() string {
	return v.token
}

func (v Version) IsZero() bool {
	return v.token == ""
}

// Compare returns -1, 0 or 1. Unknown versions sort before every known one.
func (v Version) Compare(other Version) int {
	return strings.Compare(v.token, other.token)
}

func (v Version) After(other Version) bool {
	return v.Compare(other) > 0
}

// IsUpdateNeeded reports whether remote is strictly newer than local. An
// unknown local version always needs an update; an unknown remote never
// triggers one.
func IsUpdateNeeded(local, remote Version) bool {
	if remote.IsZero() {
		return false
	}
	if local.IsZero() {
		return true
	}
	return remote.After(local)
}
