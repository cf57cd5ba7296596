package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jaa/ytf/internal/archive"
	"github.com/jaa/ytf/internal/auth"
	"github.com/jaa/ytf/internal/config"
	"github.com/jaa/ytf/internal/engine"
	"github.com/jaa/ytf/internal/provision"
	"github.com/jaa/ytf/internal/toolver"
)

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

type Check struct {
	Severity Severity `json:"severity"`
	Name     string   `json:"name"`
	Message  string   `json:"message"`
}

type Report struct {
	Checks []Check `json:"checks"`
}

func (r Report) HasErrors() bool {
	return r.ErrorCount() > 0
}

func (r Report) ErrorCount() int {
	count := 0
	for _, check := range r.Checks {
		if check.Severity == SeverityError {
			count++
		}
	}
	return count
}

func (r *Report) add(severity Severity, name, format string, args ...any) {
	r.Checks = append(r.Checks, Check{Severity: severity, Name: name, Message: fmt.Sprintf(format, args...)})
}

// Inputs is the runtime state the checks inspect besides the config.
type Inputs struct {
	Root          string
	StoredVersion string
}

type Checker struct {
	ReadVersion   func(context.Context, string) (toolver.Version, error)
	LookPath      func(string) (string, error)
	CheckWritable func(string) error
	ResolveAuth   func(browser, profile, userDataDir string) (auth.CookieSource, error)
	ReadFile      func(string) ([]byte, error)
	Now           func() time.Time
}

func NewChecker() *Checker {
	querier := provision.RunnerVersionQuerier{Runner: engine.NewSubprocessRunner(nil, nil)}
	return &Checker{
		ReadVersion:   querier.QueryVersion,
		LookPath:      exec.LookPath,
		CheckWritable: checkDirWritable,
		ResolveAuth:   auth.ResolveCookieSource,
		ReadFile:      os.ReadFile,
		Now:           time.Now,
	}
}

func (c *Checker) Check(ctx context.Context, cfg config.Config, in Inputs) Report {
	report := Report{Checks: []Check{}}

	c.checkDownloader(ctx, cfg, in, &report)
	c.checkFFmpeg(cfg, &report)

	source, err := c.ResolveAuth(cfg.Auth.Browser, cfg.Auth.Profile, cfg.Auth.UserDataDir)
	if err != nil {
		report.add(SeverityWarn, "auth", "%v; downloads will run without browser cookies", err)
	} else if source.ProfileDir != "" {
		report.add(SeverityInfo, "auth", "%s profile found at %s", source.Browser, source.ProfileDir)
	} else {
		report.add(SeverityInfo, "auth", "%s cookies available", source.Browser)
	}

	if strings.TrimSpace(in.Root) == "" {
		report.add(SeverityError, "filesystem", "no download root could be resolved")
	} else if err := c.CheckWritable(in.Root); err != nil {
		report.add(SeverityError, "filesystem", "download root %s is not writable: %v", in.Root, err)
	} else {
		report.add(SeverityInfo, "filesystem", "download root %s is writable", in.Root)
	}
	if strings.TrimSpace(in.Root) != "" {
		checkRootLedger(in.Root, &report)
	}

	stateDir, err := config.ExpandPath(cfg.Paths.StateDir)
	switch {
	case err != nil:
		report.add(SeverityError, "filesystem", "state directory is invalid: %v", err)
	default:
		if err := c.CheckWritable(stateDir); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				report.add(SeverityWarn, "filesystem", "state directory %s does not exist yet", stateDir)
			} else {
				report.add(SeverityError, "filesystem", "state directory %s is not writable: %v", stateDir, err)
			}
		} else {
			report.add(SeverityInfo, "filesystem", "state directory %s is writable", stateDir)
		}
	}

	c.checkPlaylistCache(cfg, &report)
	return report
}

func (c *Checker) checkDownloader(ctx context.Context, cfg config.Config, in Inputs, report *Report) {
	path, err := cfg.YTDLPPath()
	if err != nil {
		report.add(SeverityError, "dependency", "yt-dlp path is invalid: %v", err)
		return
	}
	if _, err := os.Stat(path); err != nil {
		report.add(SeverityWarn, "dependency", "yt-dlp is not installed at %s yet; run `ytf update`", path)
		return
	}

	version, err := c.ReadVersion(ctx, path)
	if err != nil {
		report.add(SeverityError, "dependency", "yt-dlp at %s does not run: %v", path, err)
		return
	}
	report.add(SeverityInfo, "dependency", "yt-dlp %s found at %s", version, path)

	if stored := strings.TrimSpace(in.StoredVersion); stored != "" && stored != version.String() {
		report.add(SeverityWarn, "dependency", "recorded yt-dlp version %s differs from installed %s", stored, version)
	}
}

func (c *Checker) checkFFmpeg(cfg config.Config, report *Report) {
	dir, err := cfg.FFmpegDir()
	if err == nil {
		if bin, ok := provision.LocateFFmpeg(dir); ok {
			report.add(SeverityInfo, "dependency", "ffmpeg found in %s", bin)
			return
		}
	}
	if path, err := c.LookPath("ffmpeg"); err == nil {
		report.add(SeverityInfo, "dependency", "ffmpeg found on PATH at %s", path)
		return
	}
	report.add(SeverityWarn, "dependency", "ffmpeg not found; merging formats and embedding thumbnails will fail")
}

func (c *Checker) checkPlaylistCache(cfg config.Config, report *Report) {
	path, err := cfg.PlaylistCachePath()
	if err != nil {
		return
	}
	payload, err := c.ReadFile(path)
	if err != nil {
		report.add(SeverityInfo, "cache", "no playlist cache yet")
		return
	}

	var record struct {
		CapturedAt time.Time `json:"captured_at"`
		Entries    []any     `json:"entries"`
	}
	if err := json.Unmarshal(payload, &record); err != nil {
		report.add(SeverityWarn, "cache", "playlist cache %s is unreadable and will be rebuilt", filepath.Base(path))
		return
	}

	age := c.Now().Sub(record.CapturedAt).Round(time.Minute)
	window := time.Duration(cfg.Playlists.FreshnessHours) * time.Hour
	state := "fresh"
	if age < 0 || age >= window {
		state = "stale"
	}
	report.add(SeverityInfo, "cache", "playlist cache has %d playlist(s), %s old (%s)", len(record.Entries), age, state)
}

// checkRootLedger reports how many single downloads the root's archive
// ledger already records.
func checkRootLedger(root string, report *Report) {
	ledger := archive.ForRoot(root)
	count, err := ledger.Count()
	if err != nil {
		report.add(SeverityWarn, "archive", "download archive %s is unreadable: %v", ledger.Path, err)
		return
	}
	report.add(SeverityInfo, "archive", "root download archive records %d item(s)", count)
}

func checkDirWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	file, err := os.CreateTemp(path, ".ytf-write-check-*")
	if err != nil {
		return err
	}
	name := file.Name()
	_ = file.Close()
	_ = os.Remove(name)
	return nil
}
