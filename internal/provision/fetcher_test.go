package provision

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const assetURL = "https://example.test/yt-dlp"

func newFetcher(transport Transport) *Fetcher {
	return &Fetcher{Transport: transport, Versions: &fileVersionQuerier{}, IsLocked: notLocked}
}

func TestFetchInstallsFreshCopy(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "tools", "yt-dlp")
	transport := &mapTransport{payloads: map[string]string{assetURL: "2024.03.15\n"}}

	result := newFetcher(transport).Fetch(context.Background(), releaseWith("2024.03.15", "yt-dlp", assetURL), "yt-dlp", dest, false)
	if result.Outcome != FetchInstalled || result.Version.String() != "2024.03.15" {
		t.Fatalf("expected install, got %+v", result)
	}
	if strings.TrimSpace(readTool(t, dest)) != "2024.03.15" {
		t.Fatalf("expected new executable at destination")
	}
	assertNoStaging(t, dest)
}

func TestFetchMissingAsset(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "yt-dlp")
	transport := &mapTransport{}
	rel := releaseWith("2024.03.15", "yt-dlp.exe", assetURL)

	if result := newFetcher(transport).Fetch(context.Background(), rel, "yt-dlp", dest, false); result.Outcome != FetchFailed {
		t.Fatalf("expected failure without existing copy, got %+v", result)
	}

	writeTool(t, dest, "2024.01.01")
	result := newFetcher(transport).Fetch(context.Background(), rel, "yt-dlp", dest, true)
	if result.Outcome != FetchKeptExisting || !strings.Contains(result.Reason, "no asset") {
		t.Fatalf("expected existing copy kept, got %+v", result)
	}
	if transport.calls != 0 {
		t.Fatalf("expected no transfer, got %d", transport.calls)
	}
}

func TestFetchSkipsLockedDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "yt-dlp")
	writeTool(t, dest, "2024.01.01")
	transport := &mapTransport{payloads: map[string]string{assetURL: "2024.03.15"}}
	fetcher := newFetcher(transport)
	fetcher.IsLocked = func(string) (bool, error) { return true, nil }

	result := fetcher.Fetch(context.Background(), releaseWith("2024.03.15", "yt-dlp", assetURL), "yt-dlp", dest, true)
	if result.Outcome != FetchKeptExisting || !strings.Contains(result.Reason, "in use") {
		t.Fatalf("expected locked file to be kept, got %+v", result)
	}
	if transport.calls != 0 {
		t.Fatalf("expected no transfer while locked")
	}
	if strings.TrimSpace(readTool(t, dest)) != "2024.01.01" {
		t.Fatalf("locked executable must not change")
	}
}

func TestFetchSkipsReadOnlyDestinationWithHint(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "yt-dlp")
	writeTool(t, dest, "2024.01.01")
	transport := &mapTransport{payloads: map[string]string{assetURL: "2024.03.15"}}
	fetcher := newFetcher(transport)
	fetcher.IsLocked = func(path string) (bool, error) {
		return false, &os.PathError{Op: "open", Path: path, Err: os.ErrPermission}
	}

	result := fetcher.Fetch(context.Background(), releaseWith("2024.03.15", "yt-dlp", assetURL), "yt-dlp", dest, true)
	if result.Outcome != FetchKeptExisting || !strings.Contains(result.Reason, "read-only") {
		t.Fatalf("expected read-only file to be kept, got %+v", result)
	}
	if runtime.GOOS != "windows" && !strings.Contains(result.Reason, "chmod u+w "+dest) {
		t.Fatalf("expected chmod hint, got %q", result.Reason)
	}
	if transport.calls != 0 {
		t.Fatalf("expected no transfer for a read-only file")
	}
}

func TestFetchDiscardsUnverifiableDownload(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "yt-dlp")
	writeTool(t, dest, "2024.01.01")
	transport := &mapTransport{payloads: map[string]string{assetURL: "<html>captive portal</html>"}}

	result := newFetcher(transport).Fetch(context.Background(), releaseWith("2024.03.15", "yt-dlp", assetURL), "yt-dlp", dest, true)
	if result.Outcome != FetchKeptExisting || !strings.Contains(result.Reason, "validation") {
		t.Fatalf("expected validation failure to keep existing, got %+v", result)
	}
	if strings.TrimSpace(readTool(t, dest)) != "2024.01.01" {
		t.Fatalf("existing executable must survive a bad download")
	}
	assertNoStaging(t, dest)
}

func TestFetchTransferFailureWithoutExisting(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "yt-dlp")
	result := newFetcher(&mapTransport{}).Fetch(context.Background(), releaseWith("2024.03.15", "yt-dlp", assetURL), "yt-dlp", dest, false)
	if result.Outcome != FetchFailed || !strings.Contains(result.Reason, "download failed") {
		t.Fatalf("expected failure, got %+v", result)
	}
	assertNoStaging(t, dest)
}

func TestStagingPathKeepsExtension(t *testing.T) {
	if got := StagingPath(filepath.Join("tools", "yt-dlp.exe")); got != filepath.Join("tools", "yt-dlp.download.exe") {
		t.Fatalf("unexpected staging path %q", got)
	}
	if got := StagingPath(filepath.Join("tools", "yt-dlp")); got != filepath.Join("tools", "yt-dlp.download") {
		t.Fatalf("unexpected staging path %q", got)
	}
}
