package archive

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLedgerPathsAreNamespacedPerScope(t *testing.T) {
	root := filepath.Join("media", "videos")

	single := ForRoot(root)
	if single.Path != filepath.Join(root, FileName) {
		t.Fatalf("unexpected root ledger %q", single.Path)
	}

	a := ForPlaylist(root, "Mix [PLa]")
	b := ForPlaylist(root, "Mix [PLb]")
	if a.Path == b.Path || a.Path == single.Path {
		t.Fatalf("ledgers must differ per scope: %q %q %q", single.Path, a.Path, b.Path)
	}
	if a.Path != filepath.Join(root, "Mix [PLa]", FileName) {
		t.Fatalf("unexpected playlist ledger %q", a.Path)
	}
	if ForPlaylist(root, "Mix [PLa]") != a {
		t.Fatalf("ledger path must be stable")
	}
}

func TestLedgerReadHelpers(t *testing.T) {
	root := t.TempDir()
	ledger := ForRoot(root)

	count, err := ledger.Count()
	if err != nil || count != 0 {
		t.Fatalf("missing ledger should be empty, got %d err=%v", count, err)
	}

	content := "youtube abc123\n\nyoutube def456\nvimeo 789\n"
	if err := os.WriteFile(ledger.Path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	count, err = ledger.Count()
	if err != nil || count != 3 {
		t.Fatalf("expected 3 entries, got %d err=%v", count, err)
	}
	entries, err := ledger.Entries()
	if err != nil || len(entries) != 3 || entries[1] != "youtube def456" {
		t.Fatalf("unexpected entries %q err=%v", entries, err)
	}
}
