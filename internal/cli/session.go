package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jaa/ytf/internal/auth"
	"github.com/jaa/ytf/internal/config"
	"github.com/jaa/ytf/internal/engine"
	"github.com/jaa/ytf/internal/exitcode"
	"github.com/jaa/ytf/internal/logging"
	"github.com/jaa/ytf/internal/output"
	"github.com/jaa/ytf/internal/playlist"
	"github.com/jaa/ytf/internal/prefs"
	"github.com/jaa/ytf/internal/provision"
	"github.com/jaa/ytf/internal/release"
	"github.com/jaa/ytf/internal/roots"
	"github.com/jaa/ytf/internal/toolver"
	"github.com/jaa/ytf/internal/ytdlp"
	"go.uber.org/zap"
)

const queryTimeout = 2 * time.Minute

// session is the state shared by one command or one menu run: config, the
// preference record, the download root and, once needed, the tools.
type session struct {
	app       *AppContext
	cfg       config.Config
	logger    *zap.Logger
	announcer output.Announcer
	store     prefs.Store
	record    prefs.Record
	root      string
	runner    *engine.SubprocessRunner
	progress  *transferProgress
	tools     *toolchain
}

type toolchain struct {
	Binary       string
	Version      toolver.Version
	FFmpegDir    string
	CookieSource string
}

func newEventEmitter(app *AppContext) output.EventEmitter {
	if app.Opts.JSON {
		return output.NewJSONEmitter(app.IO.Out)
	}
	return output.NewHumanEmitter(app.IO.Out, app.IO.ErrOut, app.Opts.Quiet, app.Opts.Verbose)
}

// newSessionLogger opens the diagnostic log under the state directory. On
// any failure it returns a no-op logger along with the error.
func newSessionLogger(cfg config.Config, verbose bool) (*zap.Logger, error) {
	logPath, err := cfg.LogPath()
	if err != nil {
		return zap.NewNop(), fmt.Errorf("resolve log path: %w", err)
	}
	logger, err := logging.New(logging.Options{LogPath: logPath, Verbose: verbose})
	if err != nil {
		return zap.NewNop(), err
	}
	return logger, nil
}

// openSession loads config and preferences and resolves the download root.
// Tools are provisioned lazily by ensureTools.
func openSession(app *AppContext) (*session, error) {
	cfg, err := loadConfig(app)
	if err != nil {
		return nil, withExitCode(exitcode.InvalidConfig, err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, withExitCode(exitcode.InvalidConfig, err)
	}

	s := &session{app: app, cfg: cfg}

	logger, logErr := newSessionLogger(cfg, app.Opts.Verbose && !app.Opts.JSON)
	s.logger = logger
	s.announcer = output.Announcer{Emitter: output.NewMultiEmitter(newEventEmitter(app), output.NewZapEmitter(logger))}
	if logErr != nil {
		s.announcer.Warn(output.EventPersistWarning, "log", fmt.Sprintf("diagnostic log disabled: %v", logErr), nil)
	}

	runnerOut, runnerErr := app.IO.Out, app.IO.ErrOut
	switch {
	case app.Opts.JSON:
		runnerOut = app.IO.ErrOut
	case app.Opts.Quiet:
		runnerOut, runnerErr = io.Discard, io.Discard
	}
	s.runner = engine.NewSubprocessRunner(runnerOut, runnerErr)
	if !app.Opts.JSON && !app.Opts.Quiet && isTerminal(app.IO.ErrOut) {
		s.progress = newTransferProgress(app.IO.ErrOut)
	}

	prefsPath, err := cfg.PrefsPath()
	if err != nil {
		return nil, withExitCode(exitcode.InvalidConfig, err)
	}
	s.store = prefs.NewFileStore(prefsPath)
	record, loadErr := s.store.Load(prefs.Defaults(cfg.Download.ErrorsAsWarnings))
	if loadErr != nil {
		s.announcer.Warn(output.EventPersistWarning, "prefs", fmt.Sprintf("%v; unreadable values fall back to defaults", loadErr), map[string]any{"path": prefsPath})
	}
	s.record = record
	if app.Opts.ErrorsAsWarningsSet && record.ErrorsAsWarnings != app.Opts.ErrorsAsWarnings {
		s.record.ErrorsAsWarnings = app.Opts.ErrorsAsWarnings
		s.persist()
	}

	if _, err := s.changeRoot(app.Opts.Root); err != nil {
		s.close()
		return nil, withExitCode(exitcode.RuntimeFailure, err)
	}
	return s, nil
}

func (s *session) close() {
	if s.progress != nil {
		s.progress.Close()
	}
	if s.logger != nil {
		_ = s.logger.Sync()
	}
}

// persist saves the preference record. Failure is only announced.
func (s *session) persist() {
	if err := s.store.Save(s.record); err != nil {
		s.announcer.Warn(output.EventPersistWarning, "prefs", fmt.Sprintf("could not save preferences: %v", err), nil)
	}
}

// changeRoot resolves input against the last known good root and records
// the result. Blank input keeps the current root.
func (s *session) changeRoot(input string) (roots.Resolution, error) {
	baseDir, err := config.ExpandPath(s.cfg.Paths.BaseDir)
	if err != nil {
		return roots.Resolution{}, err
	}
	res, err := roots.New(baseDir, s.cfg.Paths.DefaultRoot).Resolve(input, s.record.DownloadRoot)
	if err != nil {
		s.announcer.Error(output.EventRootFallback, "root", err.Error(), nil)
		return res, err
	}

	if res.UsedFallback {
		s.announcer.Warn(output.EventRootFallback, "root", res.Reason, map[string]any{"root": res.Root})
	} else {
		s.announcer.Info(output.EventRootResolved, "root", fmt.Sprintf("download root: %s", res.Root), nil)
	}

	s.root = res.Root
	if s.record.DownloadRoot != res.Root {
		s.record.DownloadRoot = res.Root
		s.persist()
	}
	return res, nil
}

func (s *session) progressFunc() provision.ProgressFunc {
	if s.progress == nil {
		return nil
	}
	return s.progress.Report
}

// ensureTools brings yt-dlp up to date, locates ffmpeg and resolves the
// browser cookie source. Only a missing yt-dlp stops the session.
func (s *session) ensureTools(ctx context.Context) (*toolchain, error) {
	if s.tools != nil {
		return s.tools, nil
	}
	binary, err := s.cfg.YTDLPPath()
	if err != nil {
		return nil, withExitCode(exitcode.InvalidConfig, err)
	}
	ffmpegDir, err := s.cfg.FFmpegDir()
	if err != nil {
		return nil, withExitCode(exitcode.InvalidConfig, err)
	}

	transport := provision.NewGrabTransport(s.progressFunc())
	versions := provision.RunnerVersionQuerier{Runner: s.runner}
	feed := release.NewClient(s.cfg.Tools.FeedURL, &http.Client{
		Timeout: time.Duration(s.cfg.Tools.FeedTimeoutSeconds) * time.Second,
	})
	resolver := &provision.Resolver{
		Feed: feed,
		Fetcher: &provision.Fetcher{
			Transport: transport.WithLabel("yt-dlp"),
			Versions:  versions,
			Announcer: s.announcer,
		},
		Versions:  versions,
		AssetName: s.cfg.Tools.AssetName,
		Announcer: s.announcer,
	}

	resolved, err := resolver.Resolve(ctx, binary, s.record.ToolVersion)
	if err != nil {
		if ctx.Err() != nil {
			return nil, withExitCode(exitcode.Interrupted, ctx.Err())
		}
		return nil, withExitCode(exitcode.MissingDependency, err)
	}
	if !resolved.Version.IsZero() && resolved.Version.String() != s.record.ToolVersion {
		s.record.ToolVersion = resolved.Version.String()
		s.persist()
	}

	media := &provision.MediaTool{
		Dir:        ffmpegDir,
		ArchiveURL: s.cfg.Tools.FFmpegArchiveURL,
		Transport:  transport.WithLabel("ffmpeg"),
		Runner:     s.runner,
		Announcer:  s.announcer,
	}
	mediaResult, err := media.Ensure(ctx)
	if err != nil {
		return nil, withExitCode(exitcode.Interrupted, err)
	}
	if !mediaResult.Found() {
		s.logger.Warn("downloads will run without ffmpeg", zap.String("reason", mediaResult.Reason))
	}
	if s.progress != nil {
		s.progress.Close()
	}

	s.tools = &toolchain{
		Binary:       resolved.Path,
		Version:      resolved.Version,
		FFmpegDir:    mediaResult.BinDir,
		CookieSource: s.cookieSource(),
	}
	return s.tools, nil
}

// cookieSource returns the yt-dlp cookie argument, or "" when the browser
// profile is unusable.
func (s *session) cookieSource() string {
	source, err := auth.ResolveCookieSource(s.cfg.Auth.Browser, s.cfg.Auth.Profile, s.cfg.Auth.UserDataDir)
	if err != nil {
		s.announcer.Warn(output.EventAuthWarning, "auth", fmt.Sprintf("%v; continuing without browser cookies", err), nil)
		return ""
	}
	return source.Arg
}

func (s *session) downloader(ctx context.Context) (*engine.Downloader, error) {
	tools, err := s.ensureTools(ctx)
	if err != nil {
		return nil, err
	}
	return &engine.Downloader{
		Runner: s.runner,
		Binary: tools.Binary,
		Root:   s.root,
		Options: ytdlp.Options{
			CookieSource:   tools.CookieSource,
			FFmpegLocation: tools.FFmpegDir,
			OutputTemplate: s.cfg.Download.OutputTemplate,
			ExtraArgs:      s.cfg.Download.ExtraArgs,
		},
		ErrorsAsWarnings: s.record.ErrorsAsWarnings,
		DryRun:           s.app.Opts.DryRun,
		Timeout:          time.Duration(s.cfg.Download.CommandTimeoutSeconds) * time.Second,
		QueryTimeout:     queryTimeout,
		Announcer:        s.announcer,
	}, nil
}

// playlists returns the user's playlist listing, from cache when fresh.
func (s *session) playlists(ctx context.Context, refresh bool) ([]playlist.Entry, error) {
	tools, err := s.ensureTools(ctx)
	if err != nil {
		return nil, err
	}
	cachePath, err := s.cfg.PlaylistCachePath()
	if err != nil {
		return nil, withExitCode(exitcode.InvalidConfig, err)
	}

	querier := engine.Querier{Runner: s.runner, Binary: tools.Binary, Timeout: queryTimeout}
	cache := &playlist.Cache{
		Path:      cachePath,
		Source:    s.cfg.Playlists.ListingURL,
		Freshness: time.Duration(s.cfg.Playlists.FreshnessHours) * time.Hour,
		Lister: playlist.YTDLPLister{
			URL:          s.cfg.Playlists.ListingURL,
			CookieSource: tools.CookieSource,
			Query:        querier.Query,
		},
		Announcer: s.announcer,
	}

	result, err := cache.Get(ctx, refresh)
	if err != nil {
		if ctx.Err() != nil {
			return nil, withExitCode(exitcode.Interrupted, ctx.Err())
		}
		return nil, withExitCode(exitcode.RuntimeFailure, err)
	}
	return result.Entries, nil
}

// outcomeError maps a download error to an exit code.
func outcomeError(err error) error {
	if err == nil {
		return nil
	}
	return withExitCode(mapExitCode(err), err)
}
