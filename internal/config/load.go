package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type LoadOptions struct {
	ExplicitPath string
	WorkingDir   string
	Env          map[string]string
}

type fileConfig struct {
	Version   *int          `yaml:"version"`
	Paths     filePaths     `yaml:"paths"`
	Tools     fileTools     `yaml:"tools"`
	Auth      fileAuth      `yaml:"auth"`
	Playlists filePlaylists `yaml:"playlists"`
	Download  fileDownload  `yaml:"download"`
}

type filePaths struct {
	StateDir    *string `yaml:"state_dir"`
	ToolsDir    *string `yaml:"tools_dir"`
	BaseDir     *string `yaml:"base_dir"`
	DefaultRoot *string `yaml:"default_root"`
}

type fileTools struct {
	FeedURL            *string `yaml:"feed_url"`
	AssetName          *string `yaml:"asset_name"`
	FeedTimeoutSeconds *int    `yaml:"feed_timeout_seconds"`
	FFmpegArchiveURL   *string `yaml:"ffmpeg_archive_url"`
}

type fileAuth struct {
	Browser     *string `yaml:"browser"`
	Profile     *string `yaml:"profile"`
	UserDataDir *string `yaml:"user_data_dir"`
}

type filePlaylists struct {
	ListingURL     *string `yaml:"listing_url"`
	FreshnessHours *int    `yaml:"freshness_hours"`
	PageSize       *int    `yaml:"page_size"`
}

type fileDownload struct {
	OutputTemplate        *string   `yaml:"output_template"`
	ErrorsAsWarnings      *bool     `yaml:"errors_as_warnings"`
	CommandTimeoutSeconds *int      `yaml:"command_timeout_seconds"`
	ExtraArgs             *[]string `yaml:"extra_args"`
}

func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	cwd := opts.WorkingDir
	if strings.TrimSpace(cwd) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("resolve working directory: %w", err)
		}
		cwd = wd
	}

	env := opts.Env
	if env == nil {
		env = osEnvMap()
	}

	if explicit := strings.TrimSpace(opts.ExplicitPath); explicit != "" {
		if err := mergeFile(&cfg, explicit, true); err != nil {
			return Config{}, err
		}
	} else {
		userPath, err := UserConfigPath()
		if err != nil {
			return Config{}, err
		}
		if err := mergeFile(&cfg, userPath, false); err != nil {
			return Config{}, err
		}

		if err := mergeFile(&cfg, ProjectConfigPath(cwd), false); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg, env); err != nil {
		return Config{}, err
	}

	normalize(&cfg)
	return cfg, nil
}

func mergeFile(cfg *Config, path string, required bool) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file does not exist: %s", path)
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(payload, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Version != nil {
		cfg.Version = *fc.Version
	}

	setString(&cfg.Paths.StateDir, fc.Paths.StateDir)
	setString(&cfg.Paths.ToolsDir, fc.Paths.ToolsDir)
	setString(&cfg.Paths.BaseDir, fc.Paths.BaseDir)
	setString(&cfg.Paths.DefaultRoot, fc.Paths.DefaultRoot)

	setString(&cfg.Tools.FeedURL, fc.Tools.FeedURL)
	setString(&cfg.Tools.AssetName, fc.Tools.AssetName)
	setString(&cfg.Tools.FFmpegArchiveURL, fc.Tools.FFmpegArchiveURL)
	setInt(&cfg.Tools.FeedTimeoutSeconds, fc.Tools.FeedTimeoutSeconds)

	setString(&cfg.Auth.Browser, fc.Auth.Browser)
	setString(&cfg.Auth.Profile, fc.Auth.Profile)
	setString(&cfg.Auth.UserDataDir, fc.Auth.UserDataDir)

	setString(&cfg.Playlists.ListingURL, fc.Playlists.ListingURL)
	setInt(&cfg.Playlists.FreshnessHours, fc.Playlists.FreshnessHours)
	setInt(&cfg.Playlists.PageSize, fc.Playlists.PageSize)

	setString(&cfg.Download.OutputTemplate, fc.Download.OutputTemplate)
	setInt(&cfg.Download.CommandTimeoutSeconds, fc.Download.CommandTimeoutSeconds)
	if fc.Download.ErrorsAsWarnings != nil {
		cfg.Download.ErrorsAsWarnings = *fc.Download.ErrorsAsWarnings
	}
	if fc.Download.ExtraArgs != nil {
		cfg.Download.ExtraArgs = append([]string{}, (*fc.Download.ExtraArgs)...)
	}

	return nil
}

func applyEnvOverrides(cfg *Config, env map[string]string) error {
	if value := strings.TrimSpace(env["YTF_STATE_DIR"]); value != "" {
		cfg.Paths.StateDir = value
	}
	if value := strings.TrimSpace(env["YTF_TOOLS_DIR"]); value != "" {
		cfg.Paths.ToolsDir = value
	}
	if value := strings.TrimSpace(env["YTF_BASE_DIR"]); value != "" {
		cfg.Paths.BaseDir = value
	}
	if value := strings.TrimSpace(env["YTF_BROWSER"]); value != "" {
		cfg.Auth.Browser = value
	}
	if value := strings.TrimSpace(env["YTF_BROWSER_PROFILE"]); value != "" {
		cfg.Auth.Profile = value
	}
	if value := strings.TrimSpace(env["YTF_FEED_TIMEOUT_SECONDS"]); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid YTF_FEED_TIMEOUT_SECONDS value %q: %w", value, err)
		}
		cfg.Tools.FeedTimeoutSeconds = parsed
	}
	if value := strings.TrimSpace(env["YTF_ERRORS_AS_WARNINGS"]); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid YTF_ERRORS_AS_WARNINGS value %q: %w", value, err)
		}
		cfg.Download.ErrorsAsWarnings = parsed
	}
	return nil
}

func normalize(cfg *Config) {
	if strings.TrimSpace(cfg.Paths.ToolsDir) == "" && strings.TrimSpace(cfg.Paths.StateDir) != "" {
		cfg.Paths.ToolsDir = filepath.Join(cfg.Paths.StateDir, "tools")
	}
	if strings.TrimSpace(cfg.Paths.BaseDir) == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Paths.BaseDir = home
		}
	}
	if strings.TrimSpace(cfg.Paths.DefaultRoot) == "" {
		cfg.Paths.DefaultRoot = DefaultRootName
	}
	if strings.TrimSpace(cfg.Download.OutputTemplate) == "" {
		cfg.Download.OutputTemplate = DefaultOutputTemplate
	}
}

func osEnvMap() map[string]string {
	result := map[string]string{}
	for _, pair := range os.Environ() {
		pieces := strings.SplitN(pair, "=", 2)
		if len(pieces) == 2 {
			result[pieces[0]] = pieces[1]
		}
	}
	return result
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory %s: %w", dir, err)
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
