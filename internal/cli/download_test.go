package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jaa/ytf/internal/playlist"
)

func promptApp(input string) (*AppContext, *bytes.Buffer) {
	out := &bytes.Buffer{}
	app := &AppContext{
		IO:   IOStreams{In: strings.NewReader(input), Out: out, ErrOut: out},
		Opts: GlobalOptions{NoColor: true},
	}
	return app, out
}

func sampleEntries(n int) []playlist.Entry {
	entries := make([]playlist.Entry, 0, n)
	for i := 1; i <= n; i++ {
		entries = append(entries, playlist.Entry{ID: fmt.Sprintf("PL%02d", i), Title: fmt.Sprintf("List %d", i)})
	}
	return entries
}

func TestChoosePlaylistOpensOnRememberedPage(t *testing.T) {
	app, out := promptApp("\n")
	got, err := choosePlaylist(app, newMenuStyles(app), sampleEntries(20), 15, "PL18", 2)
	if err != nil {
		t.Fatalf("choosePlaylist: %v", err)
	}
	if got != 18 {
		t.Fatalf("expected remembered playlist 18, got %d", got)
	}
	if !strings.Contains(out.String(), "Playlists (page 2/2)") || !strings.Contains(out.String(), "Playlist [18]") {
		t.Fatalf("expected second page with default, got %q", out.String())
	}
}

func TestChoosePlaylistOffersRememberedPositionOnFirstPageOnly(t *testing.T) {
	app, out := promptApp("n\n\np\n\n")
	got, err := choosePlaylist(app, newMenuStyles(app), sampleEntries(20), 15, "gone", 3)
	if err != nil {
		t.Fatalf("choosePlaylist: %v", err)
	}
	if got != 3 {
		t.Fatalf("expected remembered position 3, got %d", got)
	}
	text := out.String()
	if !strings.Contains(text, "Enter a playlist number.") {
		t.Fatalf("expected blank answer on page 2 to re-prompt, got %q", text)
	}
	if !strings.Contains(text, "Playlist [3]") {
		t.Fatalf("expected default on first page, got %q", text)
	}
}

func TestChoosePlaylistRepromptsOnBadInput(t *testing.T) {
	app, out := promptApp("abc\n99\n7\n")
	got, err := choosePlaylist(app, newMenuStyles(app), sampleEntries(10), 15, "", 0)
	if err != nil {
		t.Fatalf("choosePlaylist: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if strings.Count(out.String(), "is not a playlist number") != 2 {
		t.Fatalf("expected two rejections, got %q", out.String())
	}
}

func TestChoosePlaylistBackOut(t *testing.T) {
	app, _ := promptApp("0\n")
	got, err := choosePlaylist(app, newMenuStyles(app), sampleEntries(3), 15, "", 1)
	if err != nil || got != 0 {
		t.Fatalf("expected back out, got %d %v", got, err)
	}
}
