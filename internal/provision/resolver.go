package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jaa/ytf/internal/output"
	"github.com/jaa/ytf/internal/release"
	"github.com/jaa/ytf/internal/toolver"
)

// ErrToolUnavailable means there is no local executable and none could be
// obtained. It is the only state in which downloads cannot start.
var ErrToolUnavailable = errors.New("yt-dlp is not available")

// ReleaseSource reports the newest published release.
type ReleaseSource interface {
	Latest(ctx context.Context) (release.Release, error)
}

type ResolveResult struct {
	CanProceed bool
	Path       string
	Version    toolver.Version
	// Verified is false when Version came from the preference record
	// because the executable could not be queried.
	Verified bool
	Updated  bool
	Degraded bool
	Reason   string
}

// Resolver reconciles the local executable with the newest release.
type Resolver struct {
	Feed      ReleaseSource
	Fetcher   *Fetcher
	Versions  VersionQuerier
	AssetName string
	Announcer output.Announcer
}

type localCopy struct {
	present  bool
	version  toolver.Version
	verified bool
}

func (r *Resolver) Resolve(ctx context.Context, expectedPath string, storedVersion string) (ResolveResult, error) {
	local := r.inspectLocal(ctx, expectedPath, storedVersion)

	rel, err := r.Feed.Latest(ctx)
	if err != nil {
		if local.present {
			return r.degraded(expectedPath, local, fmt.Sprintf("could not check for updates (%v); using the installed copy", err)), nil
		}
		reason := fmt.Sprintf("no local copy and the release feed failed: %v", err)
		r.Announcer.Error(output.EventToolFailed, "yt-dlp", reason, nil)
		return ResolveResult{Reason: reason}, fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}

	remote, perr := toolver.Parse(rel.TagName)
	if perr != nil {
		if local.present {
			return r.degraded(expectedPath, local, fmt.Sprintf("release tag %q is not a valid version; using the installed copy", rel.TagName)), nil
		}
		r.Announcer.Warn(output.EventToolDegraded, "yt-dlp", fmt.Sprintf("release tag %q is not a valid version; installing it anyway", rel.TagName), nil)
	} else if local.present && !toolver.IsUpdateNeeded(local.version, remote) {
		r.Announcer.Info(output.EventToolChecked, "yt-dlp", fmt.Sprintf("yt-dlp %s is up to date", local.version), map[string]any{
			"remote": remote.String(),
		})
		return ResolveResult{
			CanProceed: true,
			Path:       expectedPath,
			Version:    local.version,
			Verified:   local.verified,
		}, nil
	}

	fetched := r.Fetcher.Fetch(ctx, rel, r.AssetName, expectedPath, local.present)
	switch fetched.Outcome {
	case FetchInstalled:
		r.Announcer.Info(output.EventToolUpdated, "yt-dlp", fmt.Sprintf("yt-dlp updated to %s", fetched.Version), map[string]any{
			"previous": local.version.String(),
			"path":     fetched.Path,
		})
		return ResolveResult{
			CanProceed: true,
			Path:       fetched.Path,
			Version:    fetched.Version,
			Verified:   true,
			Updated:    true,
		}, nil
	case FetchKeptExisting:
		return r.degraded(expectedPath, local, fetched.Reason), nil
	default:
		reason := fmt.Sprintf("could not install yt-dlp: %s", fetched.Reason)
		r.Announcer.Error(output.EventToolFailed, "yt-dlp", reason, nil)
		return ResolveResult{Reason: reason}, fmt.Errorf("%w: %s", ErrToolUnavailable, fetched.Reason)
	}
}

func (r *Resolver) inspectLocal(ctx context.Context, path string, storedVersion string) localCopy {
	if !fileExists(path) {
		return localCopy{}
	}

	version, err := r.Versions.QueryVersion(ctx, path)
	if err == nil {
		return localCopy{present: true, version: version, verified: true}
	}

	stored, perr := toolver.Parse(strings.TrimSpace(storedVersion))
	if perr == nil {
		r.Announcer.Warn(output.EventToolDegraded, "yt-dlp", fmt.Sprintf("could not query the installed yt-dlp (%v); assuming recorded version %s", err, stored), nil)
		return localCopy{present: true, version: stored}
	}
	r.Announcer.Warn(output.EventToolDegraded, "yt-dlp", fmt.Sprintf("could not query the installed yt-dlp (%v) and no version is recorded", err), nil)
	return localCopy{present: true}
}

func (r *Resolver) degraded(path string, local localCopy, reason string) ResolveResult {
	r.Announcer.Warn(output.EventToolDegraded, "yt-dlp", reason, nil)
	return ResolveResult{
		CanProceed: true,
		Path:       path,
		Version:    local.version,
		Verified:   local.verified,
		Degraded:   true,
		Reason:     reason,
	}
}
