// Package playlist keeps the user's playlist listing, cached on disk for a
// freshness window so the selection menu does not query the site every time.
package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jaa/ytf/internal/fileops"
	"github.com/jaa/ytf/internal/output"
)

// ErrListing wraps every failure of the live listing query.
var ErrListing = errors.New("playlist listing failed")

const (
	cacheSchemaVersion = 1
	DefaultFreshness   = 24 * time.Hour
)

// Entry is one playlist the user can pick.
type Entry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Result struct {
	Entries    []Entry
	FromCache  bool
	CapturedAt time.Time
}

type cacheFile struct {
	Schema     int       `json:"schema"`
	Source     string    `json:"source,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
	Entries    []Entry   `json:"entries"`
}

// Lister performs the live listing query.
type Lister interface {
	List(ctx context.Context) ([]Entry, error)
}

type Cache struct {
	Path      string
	Source    string
	Freshness time.Duration
	Lister    Lister
	Announcer output.Announcer
	Now       func() time.Time
}

// Get serves the cached listing while it is fresh, otherwise queries the
// lister and replaces the cache. A failed query never falls back to a stale
// cache.
func (c *Cache) Get(ctx context.Context, forceRefresh bool) (Result, error) {
	now := c.now()

	if !forceRefresh {
		if cached, ok := c.readFresh(now); ok {
			c.Announcer.Info(output.EventCacheServed, "playlists", fmt.Sprintf("using cached playlist listing from %s", cached.CapturedAt.Format(time.RFC3339)), map[string]any{
				"entries": len(cached.Entries),
			})
			return Result{Entries: cached.Entries, FromCache: true, CapturedAt: cached.CapturedAt}, nil
		}
	}

	if c.Lister == nil {
		return Result{}, fmt.Errorf("%w: no lister configured", ErrListing)
	}
	raw, err := c.Lister.List(ctx)
	if err != nil {
		if errors.Is(err, ErrListing) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %v", ErrListing, err)
	}
	entries := ValidEntries(raw)

	record := cacheFile{
		Schema:     cacheSchemaVersion,
		Source:     c.Source,
		CapturedAt: now.UTC(),
		Entries:    entries,
	}
	if err := c.write(record); err != nil {
		c.Announcer.Warn(output.EventPersistWarning, "playlists", fmt.Sprintf("could not update playlist cache: %v", err), map[string]any{
			"path": c.Path,
		})
	} else {
		c.Announcer.Info(output.EventCacheRefreshed, "playlists", fmt.Sprintf("playlist listing refreshed (%d playlist(s))", len(entries)), nil)
	}
	return Result{Entries: entries, CapturedAt: record.CapturedAt}, nil
}

func (c *Cache) readFresh(now time.Time) (cacheFile, bool) {
	payload, err := os.ReadFile(c.Path)
	if err != nil {
		return cacheFile{}, false
	}
	var record cacheFile
	if err := json.Unmarshal(payload, &record); err != nil {
		return cacheFile{}, false
	}
	if record.Schema != cacheSchemaVersion {
		return cacheFile{}, false
	}
	if c.Source != "" && record.Source != "" && record.Source != c.Source {
		return cacheFile{}, false
	}
	record.Entries = ValidEntries(record.Entries)
	if len(record.Entries) == 0 {
		return cacheFile{}, false
	}
	age := now.Sub(record.CapturedAt)
	if age < 0 || age >= c.freshness() {
		return cacheFile{}, false
	}
	return record, true
}

func (c *Cache) write(record cacheFile) error {
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	return fileops.WriteFileAtomic(c.Path, payload, 0o644)
}

func (c *Cache) freshness() time.Duration {
	if c.Freshness <= 0 {
		return DefaultFreshness
	}
	return c.Freshness
}

func (c *Cache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// ValidEntries drops entries missing a title or both id and URL.
func ValidEntries(entries []Entry) []Entry {
	valid := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		entry.ID = strings.TrimSpace(entry.ID)
		entry.Title = strings.TrimSpace(entry.Title)
		entry.URL = strings.TrimSpace(entry.URL)
		if entry.Title == "" || (entry.ID == "" && entry.URL == "") {
			continue
		}
		valid = append(valid, entry)
	}
	return valid
}
