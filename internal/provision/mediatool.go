package provision

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/jaa/ytf/internal/engine"
	"github.com/jaa/ytf/internal/output"
)

type MediaSource string

const (
	MediaBundled    MediaSource = "bundled"
	MediaDownloaded MediaSource = "downloaded"
	MediaSystemPath MediaSource = "path"
)

// MediaToolResult locates ffmpeg. BinDir is empty when none was found, which
// is a warning rather than an error.
type MediaToolResult struct {
	BinDir string
	Source MediaSource
	Reason string
}

func (r MediaToolResult) Found() bool {
	return r.BinDir != ""
}

// MediaTool finds or provisions the ffmpeg bundle under Dir. A bundle is
// only accepted once `ffmpeg -version` succeeds through Runner.
type MediaTool struct {
	Dir        string
	ArchiveURL string
	Transport  Transport
	Runner     engine.ExecRunner
	Timeout    time.Duration
	LookPath   func(file string) (string, error)
	Announcer  output.Announcer
}

// Ensure returns an error only when ctx is cancelled. Every other failure
// ends in a PATH lookup or a not-found result with a reason.
func (m *MediaTool) Ensure(ctx context.Context) (MediaToolResult, error) {
	var reason string
	if bin, ok := LocateFFmpeg(m.Dir); ok {
		err := m.verify(ctx, bin)
		if err == nil {
			m.Announcer.Info(output.EventToolChecked, "ffmpeg", fmt.Sprintf("ffmpeg found in %s", bin), nil)
			return MediaToolResult{BinDir: bin, Source: MediaBundled}, nil
		}
		if ctx.Err() != nil {
			return MediaToolResult{}, ctx.Err()
		}
		m.Announcer.Warn(output.EventToolDegraded, "ffmpeg", fmt.Sprintf("discarding unusable ffmpeg bundle in %s: %v", m.Dir, err), nil)
		if err := os.RemoveAll(m.Dir); err != nil {
			reason = fmt.Sprintf("could not remove unusable ffmpeg bundle: %v", err)
		}
	}

	switch {
	case reason != "":
	case m.ArchiveURL != "" && m.Transport != nil:
		bin, err := m.provision(ctx)
		if err == nil {
			m.Announcer.Info(output.EventToolUpdated, "ffmpeg", fmt.Sprintf("ffmpeg installed in %s", bin), nil)
			return MediaToolResult{BinDir: bin, Source: MediaDownloaded}, nil
		}
		if ctx.Err() != nil {
			return MediaToolResult{}, ctx.Err()
		}
		reason = fmt.Sprintf("ffmpeg download failed: %v", err)
	default:
		reason = "no ffmpeg bundle is published for this platform"
	}

	lookPath := m.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if path, err := lookPath(ffmpegExecutable()); err == nil {
		bin := filepath.Dir(path)
		m.Announcer.Warn(output.EventToolDegraded, "ffmpeg", fmt.Sprintf("%s; using ffmpeg from PATH (%s)", reason, bin), nil)
		return MediaToolResult{BinDir: bin, Source: MediaSystemPath, Reason: reason}, nil
	}

	reason += "; ffmpeg is not on PATH either, merging and thumbnails may fail"
	m.Announcer.Warn(output.EventToolDegraded, "ffmpeg", reason, nil)
	return MediaToolResult{Reason: reason}, nil
}

// provision downloads and extracts the bundle into a sibling staging
// directory and moves it to Dir only after the extracted ffmpeg runs. The
// staging directory never survives a failure.
func (m *MediaTool) provision(ctx context.Context) (bin string, err error) {
	ext := ArchiveExt(m.ArchiveURL)
	if ext == "" {
		return "", fmt.Errorf("unsupported archive url %s", m.ArchiveURL)
	}
	staging := m.stagingDir()
	if err := os.RemoveAll(staging); err != nil {
		return "", fmt.Errorf("clear %s: %w", staging, err)
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", staging, err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(staging)
		}
	}()

	archivePath := filepath.Join(staging, "ffmpeg-download"+ext)
	m.Announcer.Info(output.EventTransfer, "ffmpeg", "downloading ffmpeg", map[string]any{"url": m.ArchiveURL})
	if err := m.Transport.Download(ctx, m.ArchiveURL, archivePath); err != nil {
		return "", err
	}
	extractErr := ExtractArchive(archivePath, staging)
	_ = os.Remove(archivePath)
	if extractErr != nil {
		return "", extractErr
	}

	stagedBin, ok := LocateFFmpeg(staging)
	if !ok {
		return "", fmt.Errorf("archive did not contain a bin/%s executable", ffmpegExecutable())
	}
	if err := m.verify(ctx, stagedBin); err != nil {
		return "", fmt.Errorf("extracted ffmpeg failed validation: %w", err)
	}

	if err := os.RemoveAll(m.Dir); err != nil {
		return "", fmt.Errorf("clear %s: %w", m.Dir, err)
	}
	if err := os.Rename(staging, m.Dir); err != nil {
		return "", fmt.Errorf("install ffmpeg into %s: %w", m.Dir, err)
	}
	rel, err := filepath.Rel(staging, stagedBin)
	if err != nil {
		return "", err
	}
	return filepath.Join(m.Dir, rel), nil
}

func (m *MediaTool) stagingDir() string {
	return filepath.Clean(m.Dir) + ".staging"
}

// verify runs `<bin>/ffmpeg -version`, which must exit 0.
func (m *MediaTool) verify(ctx context.Context, bin string) error {
	runner := m.Runner
	if runner == nil {
		runner = engine.NewSubprocessRunner(nil, nil)
	}
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	result := runner.Run(ctx, engine.ExecSpec{
		Bin:     filepath.Join(bin, ffmpegExecutable()),
		Args:    []string{"-version"},
		Timeout: timeout,
		Quiet:   true,
	})
	if result.ExitCode != 0 {
		detail := strings.TrimSpace(result.StderrTail)
		if detail == "" && result.Err != nil {
			detail = result.Err.Error()
		}
		return fmt.Errorf("ffmpeg -version exited with code %d: %s", result.ExitCode, detail)
	}
	return nil
}

// LocateFFmpeg returns the bin directory of the first subdirectory of dir,
// in name order, whose bin folder holds the ffmpeg executable.
func LocateFFmpeg(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		bin := filepath.Join(dir, entry.Name(), "bin")
		if fileExists(filepath.Join(bin, ffmpegExecutable())) {
			return bin, true
		}
	}
	return "", false
}

func ffmpegExecutable() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}
