package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jaa/ytf/internal/archive"
	"github.com/jaa/ytf/internal/auth"
	"github.com/jaa/ytf/internal/config"
	"github.com/jaa/ytf/internal/toolver"
)

func testConfig(t *testing.T) config.Config {
	cfg := config.DefaultConfig()
	state := t.TempDir()
	cfg.Paths.StateDir = state
	cfg.Paths.ToolsDir = filepath.Join(state, "tools")
	return cfg
}

func fakeChecker() *Checker {
	return &Checker{
		ReadVersion: func(ctx context.Context, path string) (toolver.Version, error) {
			return toolver.MustParse("2024.03.15"), nil
		},
		LookPath:      func(string) (string, error) { return "", errors.New("not found") },
		CheckWritable: func(string) error { return nil },
		ResolveAuth: func(browser, profile, userDataDir string) (auth.CookieSource, error) {
			return auth.CookieSource{Browser: browser, ProfileDir: "/profiles/" + profile, Arg: browser + ":/profiles/" + profile}, nil
		},
		ReadFile: os.ReadFile,
		Now:      func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func findCheck(report Report, fragment string) (Check, bool) {
	for _, check := range report.Checks {
		if strings.Contains(check.Message, fragment) {
			return check, true
		}
	}
	return Check{}, false
}

func TestCheckHealthyInstall(t *testing.T) {
	cfg := testConfig(t)
	ytdlpPath, _ := cfg.YTDLPPath()
	if err := os.MkdirAll(filepath.Dir(ytdlpPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(ytdlpPath, []byte("bin"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	ffmpegDir, _ := cfg.FFmpegDir()
	if err := os.MkdirAll(filepath.Join(ffmpegDir, "build", "bin"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	ffmpegName := "ffmpeg"
	if filepath.Ext(ytdlpPath) == ".exe" {
		ffmpegName = "ffmpeg.exe"
	}
	if err := os.WriteFile(filepath.Join(ffmpegDir, "build", "bin", ffmpegName), []byte("bin"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	cachePath, _ := cfg.PlaylistCachePath()
	if err := os.WriteFile(cachePath, []byte(`{"schema":1,"captured_at":"2024-06-01T10:00:00Z","entries":[{"id":"a","title":"A"}]}`), 0o644); err != nil {
		t.Fatalf("write cache: %v", err)
	}

	report := fakeChecker().Check(context.Background(), cfg, Inputs{Root: t.TempDir(), StoredVersion: "2024.03.15"})
	if report.HasErrors() {
		t.Fatalf("expected no errors, got %+v", report.Checks)
	}
	for _, fragment := range []string{"yt-dlp 2024.03.15 found", "ffmpeg found in", "chrome profile found", "1 playlist(s), 2h0m0s old (fresh)", "root download archive records 0 item(s)"} {
		if _, ok := findCheck(report, fragment); !ok {
			t.Errorf("expected check containing %q in %+v", fragment, report.Checks)
		}
	}
}

func TestCheckReportsProblems(t *testing.T) {
	cfg := testConfig(t)
	ytdlpPath, _ := cfg.YTDLPPath()
	if err := os.MkdirAll(filepath.Dir(ytdlpPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(ytdlpPath, []byte("bin"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}

	checker := fakeChecker()
	checker.ReadVersion = func(ctx context.Context, path string) (toolver.Version, error) {
		return toolver.Version{}, fmt.Errorf("exec format error")
	}
	checker.ResolveAuth = func(browser, profile, userDataDir string) (auth.CookieSource, error) {
		return auth.CookieSource{}, fmt.Errorf("%w: profile missing", auth.ErrProfileUnavailable)
	}
	checker.CheckWritable = func(path string) error {
		if path == "/readonly" {
			return errors.New("permission denied")
		}
		return nil
	}

	report := checker.Check(context.Background(), cfg, Inputs{Root: "/readonly"})
	if report.ErrorCount() != 2 {
		t.Fatalf("expected yt-dlp and root errors, got %+v", report.Checks)
	}
	if check, ok := findCheck(report, "without browser cookies"); !ok || check.Severity != SeverityWarn {
		t.Fatalf("expected auth warning, got %+v", report.Checks)
	}
	if check, ok := findCheck(report, "ffmpeg not found"); !ok || check.Severity != SeverityWarn {
		t.Fatalf("expected ffmpeg warning, got %+v", report.Checks)
	}
	if _, ok := findCheck(report, "no playlist cache yet"); !ok {
		t.Fatalf("expected cache info, got %+v", report.Checks)
	}
}

func TestCheckMissingDownloaderIsWarning(t *testing.T) {
	report := fakeChecker().Check(context.Background(), testConfig(t), Inputs{Root: t.TempDir()})
	check, ok := findCheck(report, "not installed")
	if !ok || check.Severity != SeverityWarn {
		t.Fatalf("expected warning for missing yt-dlp, got %+v", report.Checks)
	}
}

func TestCheckCountsRootArchiveEntries(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, archive.FileName), []byte("youtube abc123\n\nyoutube def456\n"), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	report := fakeChecker().Check(context.Background(), testConfig(t), Inputs{Root: root})
	check, ok := findCheck(report, "root download archive records 2 item(s)")
	if !ok || check.Severity != SeverityInfo || check.Name != "archive" {
		t.Fatalf("expected archive count, got %+v", report.Checks)
	}
}
