package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jaa/ytf/internal/archive"
	"github.com/jaa/ytf/internal/output"
	"github.com/jaa/ytf/internal/playlist"
	"github.com/jaa/ytf/internal/ytdlp"
)

var (
	ErrInterrupted    = errors.New("download interrupted")
	ErrDownloadFailed = errors.New("download failed")
)

// Downloader turns user actions into single yt-dlp invocations. Each action
// is one attempt; nothing is retried.
type Downloader struct {
	Runner           ExecRunner
	Binary           string
	Root             string
	Options          ytdlp.Options
	ErrorsAsWarnings bool
	DryRun           bool
	Timeout          time.Duration
	QueryTimeout     time.Duration
	Announcer        output.Announcer
}

// DownloadSingle fetches one item into the root, deduplicated by the root
// ledger.
func (d *Downloader) DownloadSingle(ctx context.Context, url string) (Outcome, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Outcome{Status: StatusFatal, Message: "no url given"}, fmt.Errorf("%w: no url given", ErrDownloadFailed)
	}
	ledger := archive.ForRoot(d.Root)
	inv := ytdlp.SingleArgs(d.Options, ledger, url)
	return d.execute(ctx, "single", "", d.Root, inv)
}

// DownloadPlaylist fetches a playlist into its own folder. The folder name
// comes from a metadata-only query; overrideTitle replaces the fetched title.
func (d *Downloader) DownloadPlaylist(ctx context.Context, url string, overrideTitle string) (Outcome, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Outcome{Status: StatusFatal, Message: "no url given"}, fmt.Errorf("%w: no url given", ErrDownloadFailed)
	}

	title := strings.TrimSpace(overrideTitle)
	id := ""
	meta, err := d.playlistMetadata(ctx, url)
	switch {
	case errors.Is(err, ErrInterrupted):
		return Outcome{Status: StatusFatal, Interrupted: true, Message: "interrupted"}, err
	case err != nil:
		d.Announcer.Warn(output.EventDownloadWarning, "playlist", fmt.Sprintf("could not read playlist metadata, using a generic folder: %v", err), nil)
	default:
		id = meta.ID
		if title == "" {
			title = meta.Title
		}
	}

	folder := ytdlp.PlaylistFolderName(title, id)
	return d.downloadIntoFolder(ctx, url, folder)
}

// DownloadFromSelection fetches a playlist picked from the cached listing.
// The listing already carries the title and id, so no metadata query runs.
func (d *Downloader) DownloadFromSelection(ctx context.Context, entry playlist.Entry) (Outcome, error) {
	url := strings.TrimSpace(entry.URL)
	if url == "" && strings.TrimSpace(entry.ID) != "" {
		url = playlist.PlaylistURL(entry.ID)
	}
	if url == "" {
		return Outcome{Status: StatusFatal, Message: "selection has no url"}, fmt.Errorf("%w: selection has no url", ErrDownloadFailed)
	}
	return d.downloadIntoFolder(ctx, url, ytdlp.PlaylistFolderName(entry.Title, entry.ID))
}

func (d *Downloader) downloadIntoFolder(ctx context.Context, url, folder string) (Outcome, error) {
	ledger := archive.ForPlaylist(d.Root, folder)
	if !d.DryRun {
		if err := os.MkdirAll(ledger.Scope, 0o755); err != nil {
			return d.gate(Outcome{Scope: "playlist", Folder: folder, ExitCode: 1}, fmt.Sprintf("cannot create playlist folder %s: %v", ledger.Scope, err))
		}
	}
	inv := ytdlp.PlaylistArgs(d.Options, ledger, url)
	return d.execute(ctx, "playlist", folder, ledger.Scope, inv)
}

func (d *Downloader) playlistMetadata(ctx context.Context, url string) (ytdlp.PlaylistMetadata, error) {
	querier := Querier{Runner: d.Runner, Binary: d.Binary, Timeout: d.QueryTimeout}
	payload, err := querier.Query(ctx, ytdlp.PlaylistMetadataArgs(d.Options.CookieSource, url).Args)
	if err != nil {
		return ytdlp.PlaylistMetadata{}, err
	}
	return ytdlp.ParsePlaylistMetadata(payload)
}

func (d *Downloader) execute(ctx context.Context, scope, folder, dir string, inv ytdlp.Invocation) (Outcome, error) {
	display := ytdlp.FormatCommand(d.Binary, inv.DisplayArgs)
	outcome := Outcome{Scope: scope, Folder: folder, DisplayCommand: display}

	if d.DryRun {
		outcome.DryRun = true
		outcome.Message = "dry run"
		d.Announcer.Info(output.EventDownloadPlanned, scope, display, map[string]any{"dir": dir})
		return outcome, nil
	}

	d.Announcer.Info(output.EventDownloadStarted, scope, fmt.Sprintf("running %s", display), map[string]any{"dir": dir})
	result := d.Runner.Run(ctx, ExecSpec{
		Bin:            d.Binary,
		Args:           inv.Args,
		Dir:            dir,
		Timeout:        d.Timeout,
		DisplayCommand: display,
	})
	outcome.ExitCode = result.ExitCode

	switch {
	case result.Interrupted:
		outcome.Status = StatusFatal
		outcome.Interrupted = true
		outcome.Message = "interrupted"
		d.Announcer.Error(output.EventDownloadFailed, scope, "download interrupted", nil)
		return outcome, ErrInterrupted
	case result.LaunchError:
		return d.gate(outcome, fmt.Sprintf("could not launch yt-dlp: %s", lastLine(result.StderrTail, result.Err)))
	case result.TimedOut:
		return d.gate(outcome, fmt.Sprintf("yt-dlp timed out after %s", d.Timeout))
	case result.ExitCode != 0:
		return d.gate(outcome, fmt.Sprintf("yt-dlp exited with code %d: %s", result.ExitCode, lastLine(result.StderrTail, result.Err)))
	}

	outcome.Status = StatusSuccess
	outcome.Message = "completed"
	d.Announcer.Info(output.EventDownloadDone, scope, fmt.Sprintf("download finished into %s", filepath.Clean(dir)), map[string]any{
		"duration_ms": result.Duration.Milliseconds(),
	})
	return outcome, nil
}

// gate applies the errors-as-warnings policy to a failed step.
func (d *Downloader) gate(outcome Outcome, message string) (Outcome, error) {
	outcome.Message = message
	if d.ErrorsAsWarnings {
		outcome.Status = StatusWarning
		d.Announcer.Warn(output.EventDownloadWarning, outcome.Scope, message, map[string]any{"exit_code": outcome.ExitCode})
		return outcome, nil
	}
	outcome.Status = StatusFatal
	d.Announcer.Error(output.EventDownloadFailed, outcome.Scope, message, map[string]any{"exit_code": outcome.ExitCode})
	return outcome, fmt.Errorf("%w: %s", ErrDownloadFailed, message)
}
