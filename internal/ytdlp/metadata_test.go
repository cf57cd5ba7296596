package ytdlp

import "testing"

func TestParsePlaylistMetadata(t *testing.T) {
	payload := []byte("WARNING: something noisy\n{\"id\": \"PL1\", \"title\": \" Road Trip \", \"entries\": [], \"extra\": 1}")
	meta, err := ParsePlaylistMetadata(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.ID != "PL1" || meta.Title != "Road Trip" {
		t.Fatalf("unexpected metadata %+v", meta)
	}

	if _, err := ParsePlaylistMetadata([]byte(`{"entries": []}`)); err == nil {
		t.Fatalf("expected error when id and title are missing")
	}
	if _, err := ParsePlaylistMetadata([]byte("not json")); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestParseFlatListing(t *testing.T) {
	listing, err := ParseFlatListing([]byte(`{"id":"feed","entries":[{"id":"PL1","title":"A","url":"https://x/1"},{"title":"no id"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(listing.Entries) != 2 || listing.Entries[0].URL != "https://x/1" {
		t.Fatalf("unexpected listing %+v", listing)
	}
}
