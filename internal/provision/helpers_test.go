package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaa/ytf/internal/release"
	"github.com/jaa/ytf/internal/toolver"
)

// fileVersionQuerier treats the file content as the --version output.
type fileVersionQuerier struct {
	calls int
}

func (q *fileVersionQuerier) QueryVersion(ctx context.Context, path string) (toolver.Version, error) {
	q.calls++
	payload, err := os.ReadFile(path)
	if err != nil {
		return toolver.Version{}, err
	}
	return toolver.FromOutput(string(payload))
}

// mapTransport serves fixed payloads per URL.
type mapTransport struct {
	payloads map[string]string
	calls    int
}

func (m *mapTransport) Download(ctx context.Context, url, dst string) error {
	m.calls++
	payload, ok := m.payloads[url]
	if !ok {
		return fmt.Errorf("HTTP 404 for %s", url)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte(payload), 0o644)
}

type fakeFeed struct {
	rel release.Release
	err error
}

func (f fakeFeed) Latest(ctx context.Context) (release.Release, error) {
	return f.rel, f.err
}

var errFeedDown = fmt.Errorf("%w: dial tcp: connection refused", release.ErrFeedUnavailable)

func releaseWith(tag, asset, url string) release.Release {
	return release.Release{
		TagName: tag,
		Assets:  []release.Asset{{Name: asset, URL: url}},
	}
}

func writeTool(t *testing.T, path, version string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(version+"\n"), 0o755); err != nil {
		t.Fatalf("write tool: %v", err)
	}
}

func readTool(t *testing.T, path string) string {
	t.Helper()
	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read tool: %v", err)
	}
	return string(payload)
}

func notLocked(string) (bool, error) { return false, nil }

func assertNoStaging(t *testing.T, dest string) {
	t.Helper()
	if _, err := os.Stat(StagingPath(dest)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected staging file to be removed, stat err=%v", err)
	}
}
