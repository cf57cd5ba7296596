package ytdlp

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PlaylistMetadata is the part of a playlist dump used to name its folder.
type PlaylistMetadata struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	WebpageURL string `json:"webpage_url,omitempty"`
}

// FlatEntry is one item of a --flat-playlist dump. Any field may be absent.
type FlatEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type FlatListing struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Entries []FlatEntry `json:"entries"`
}

func ParsePlaylistMetadata(payload []byte) (PlaylistMetadata, error) {
	var meta PlaylistMetadata
	if err := json.Unmarshal(trimToJSON(payload), &meta); err != nil {
		return PlaylistMetadata{}, fmt.Errorf("parse playlist metadata: %w", err)
	}
	meta.ID = strings.TrimSpace(meta.ID)
	meta.Title = strings.TrimSpace(meta.Title)
	if meta.ID == "" && meta.Title == "" {
		return PlaylistMetadata{}, fmt.Errorf("parse playlist metadata: no id or title")
	}
	return meta, nil
}

func ParseFlatListing(payload []byte) (FlatListing, error) {
	var listing FlatListing
	if err := json.Unmarshal(trimToJSON(payload), &listing); err != nil {
		return FlatListing{}, fmt.Errorf("parse flat listing: %w", err)
	}
	return listing, nil
}

// trimToJSON drops any warning lines yt-dlp printed before the document.
func trimToJSON(payload []byte) []byte {
	text := string(payload)
	if idx := strings.Index(text, "{"); idx > 0 {
		return []byte(text[idx:])
	}
	return payload
}
