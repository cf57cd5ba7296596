package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid config"
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(e.Problems, "; "))
}

var supportedBrowsers = map[string]struct{}{
	"brave":    {},
	"chrome":   {},
	"chromium": {},
	"edge":     {},
	"firefox":  {},
	"opera":    {},
	"safari":   {},
	"vivaldi":  {},
}

func Validate(cfg Config) error {
	problems := []string{}

	if cfg.Version != 1 {
		problems = append(problems, "version must be 1")
	}

	problems = append(problems, absPathProblems("paths.state_dir", cfg.Paths.StateDir)...)
	problems = append(problems, absPathProblems("paths.tools_dir", cfg.Paths.ToolsDir)...)
	problems = append(problems, absPathProblems("paths.base_dir", cfg.Paths.BaseDir)...)

	if strings.TrimSpace(cfg.Paths.DefaultRoot) == "" {
		problems = append(problems, "paths.default_root must be set")
	}

	if err := validateURL(cfg.Tools.FeedURL); err != nil {
		problems = append(problems, fmt.Sprintf("tools.feed_url is invalid: %v", err))
	}
	if strings.TrimSpace(cfg.Tools.AssetName) == "" {
		problems = append(problems, "tools.asset_name must be set")
	}
	if cfg.Tools.FeedTimeoutSeconds <= 0 {
		problems = append(problems, "tools.feed_timeout_seconds must be > 0")
	}
	if strings.TrimSpace(cfg.Tools.FFmpegArchiveURL) != "" {
		if err := validateURL(cfg.Tools.FFmpegArchiveURL); err != nil {
			problems = append(problems, fmt.Sprintf("tools.ffmpeg_archive_url is invalid: %v", err))
		}
	}

	if _, ok := supportedBrowsers[strings.ToLower(strings.TrimSpace(cfg.Auth.Browser))]; !ok {
		problems = append(problems, fmt.Sprintf("auth.browser %q is not supported", cfg.Auth.Browser))
	}
	if strings.TrimSpace(cfg.Auth.Profile) == "" {
		problems = append(problems, "auth.profile must be set")
	}

	if err := validateURL(cfg.Playlists.ListingURL); err != nil {
		problems = append(problems, fmt.Sprintf("playlists.listing_url is invalid: %v", err))
	}
	if cfg.Playlists.FreshnessHours <= 0 {
		problems = append(problems, "playlists.freshness_hours must be > 0")
	}
	if cfg.Playlists.PageSize <= 0 {
		problems = append(problems, "playlists.page_size must be > 0")
	}

	if !strings.Contains(cfg.Download.OutputTemplate, "%(") {
		problems = append(problems, "download.output_template must contain at least one %(field)s placeholder")
	}
	if cfg.Download.CommandTimeoutSeconds < 0 {
		problems = append(problems, "download.command_timeout_seconds must be >= 0")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func absPathProblems(field, raw string) []string {
	expanded, err := ExpandPath(raw)
	if err != nil || strings.TrimSpace(expanded) == "" {
		return []string{field + " must be a valid path"}
	}
	if !filepath.IsAbs(expanded) {
		return []string{field + " must resolve to an absolute path"}
	}
	return nil
}

func validateURL(raw string) error {
	parsed, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
