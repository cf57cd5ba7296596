package playlist

import (
	"context"
	"net/url"
	"strings"

	"github.com/jaa/ytf/internal/ytdlp"
)

// QueryFunc runs yt-dlp with args and returns its stdout.
type QueryFunc func(ctx context.Context, args []string) ([]byte, error)

// YTDLPLister lists playlists from a flat dump of a listing page.
type YTDLPLister struct {
	URL          string
	CookieSource string
	Query        QueryFunc
}

func (l YTDLPLister) List(ctx context.Context) ([]Entry, error) {
	payload, err := l.Query(ctx, ytdlp.ListingArgs(l.CookieSource, l.URL).Args)
	if err != nil {
		return nil, err
	}
	listing, err := ytdlp.ParseFlatListing(payload)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(listing.Entries))
	for _, item := range listing.Entries {
		entries = append(entries, completeEntry(Entry{ID: item.ID, Title: item.Title, URL: item.URL}))
	}
	return entries, nil
}

// completeEntry derives whichever of id and URL is missing.
func completeEntry(entry Entry) Entry {
	entry.ID = strings.TrimSpace(entry.ID)
	entry.URL = strings.TrimSpace(entry.URL)
	if entry.URL == "" && entry.ID != "" {
		entry.URL = PlaylistURL(entry.ID)
	}
	if entry.ID == "" && entry.URL != "" {
		if parsed, err := url.Parse(entry.URL); err == nil {
			entry.ID = parsed.Query().Get("list")
		}
	}
	return entry
}

func PlaylistURL(id string) string {
	return "https://www.youtube.com/playlist?list=" + url.QueryEscape(id)
}
