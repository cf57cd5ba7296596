package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jaa/ytf/internal/fileops"
	"github.com/jaa/ytf/internal/output"
	"github.com/jaa/ytf/internal/release"
	"github.com/jaa/ytf/internal/toolver"
)

type FetchOutcome int

const (
	FetchInstalled FetchOutcome = iota
	FetchKeptExisting
	FetchFailed
)

func (o FetchOutcome) String() string {
	switch o {
	case FetchInstalled:
		return "installed"
	case FetchKeptExisting:
		return "kept_existing"
	default:
		return "failed"
	}
}

type FetchResult struct {
	Outcome FetchOutcome
	Path    string
	Version toolver.Version
	Reason  string
}

// Fetcher installs a release asset over an executable. The destination is
// only touched once a staged copy has proven it runs.
type Fetcher struct {
	Transport Transport
	Versions  VersionQuerier
	IsLocked  func(path string) (bool, error)
	Announcer output.Announcer
}

func (f *Fetcher) Fetch(ctx context.Context, rel release.Release, assetName, destPath string, existing bool) FetchResult {
	asset, ok := rel.Asset(assetName)
	if !ok {
		return f.keepOrFail(destPath, existing, fmt.Sprintf("release %s has no asset named %s", rel.TagName, assetName))
	}

	if existing {
		locked, err := f.isLocked(destPath)
		switch {
		case errors.Is(err, os.ErrPermission):
			return f.keepOrFail(destPath, existing, readOnlyReason(destPath))
		case err != nil:
			return f.keepOrFail(destPath, existing, fmt.Sprintf("could not check whether %s is in use: %v", destPath, err))
		case locked:
			return f.keepOrFail(destPath, existing, fmt.Sprintf("%s is in use by another process; update skipped", destPath))
		}
	}

	staging := StagingPath(destPath)
	f.Announcer.Info(output.EventTransfer, "yt-dlp", fmt.Sprintf("downloading %s %s", asset.Name, rel.TagName), map[string]any{
		"url": asset.URL,
	})
	if err := f.Transport.Download(ctx, asset.URL, staging); err != nil {
		_ = os.Remove(staging)
		return f.keepOrFail(destPath, existing, fmt.Sprintf("download failed: %v", err))
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(staging, 0o755); err != nil {
			_ = os.Remove(staging)
			return f.keepOrFail(destPath, existing, fmt.Sprintf("mark download executable: %v", err))
		}
	}

	version, err := f.Versions.QueryVersion(ctx, staging)
	if err != nil {
		_ = os.Remove(staging)
		return f.keepOrFail(destPath, existing, fmt.Sprintf("downloaded file failed validation: %v", err))
	}
	if remote, perr := toolver.Parse(rel.TagName); perr == nil && remote.Compare(version) != 0 {
		f.Announcer.Warn(output.EventToolDegraded, "yt-dlp", fmt.Sprintf("release %s reports version %s", rel.TagName, version), nil)
	}

	if err := fileops.ReplaceFileSafely(staging, destPath); err != nil {
		_ = os.Remove(staging)
		return f.keepOrFail(destPath, existing, fmt.Sprintf("install failed: %v", err))
	}

	return FetchResult{Outcome: FetchInstalled, Path: destPath, Version: version}
}

// readOnlyReason explains a skipped update of an executable that cannot be
// opened for writing. Such a file is never replaced until it is writable.
func readOnlyReason(destPath string) string {
	fix := fmt.Sprintf("run `chmod u+w %s` to allow updates", destPath)
	if runtime.GOOS == "windows" {
		fix = "clear its read-only attribute to allow updates"
	}
	return fmt.Sprintf("%s is read-only or not writable by this user; update skipped (%s)", destPath, fix)
}

func (f *Fetcher) keepOrFail(destPath string, existing bool, reason string) FetchResult {
	if existing {
		return FetchResult{Outcome: FetchKeptExisting, Path: destPath, Reason: reason}
	}
	return FetchResult{Outcome: FetchFailed, Reason: reason}
}

func (f *Fetcher) isLocked(path string) (bool, error) {
	if f.IsLocked != nil {
		return f.IsLocked(path)
	}
	return isLocked(path)
}

// StagingPath is the sibling file a download lands in before it is swapped
// into place. The extension is kept so the staged copy stays runnable.
func StagingPath(destPath string) string {
	dir := filepath.Dir(destPath)
	base := filepath.Base(destPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+".download"+ext)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
