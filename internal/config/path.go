package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func UserConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); strings.TrimSpace(xdg) != "" {
		return filepath.Join(xdg, "ytf", "config.yaml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "ytf", "config.yaml"), nil
}

func ProjectConfigPath(cwd string) string {
	return filepath.Join(cwd, "ytf.yaml")
}

func defaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); strings.TrimSpace(xdg) != "" {
		return filepath.Join(xdg, "ytf")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./.ytf-state"
	}
	return filepath.Join(home, ".local", "state", "ytf")
}

func ExpandPath(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	expanded := os.ExpandEnv(strings.TrimSpace(raw))
	if expanded == "~" || strings.HasPrefix(expanded, "~/") || strings.HasPrefix(expanded, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		expanded = filepath.Join(home, expanded[1:])
	}

	return filepath.Clean(expanded), nil
}

// ResolveStateFile places a relative file name under the state directory.
func ResolveStateFile(stateDir string, name string) (string, error) {
	expandedName, err := ExpandPath(name)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expandedName) {
		return expandedName, nil
	}

	expandedStateDir, err := ExpandPath(stateDir)
	if err != nil {
		return "", err
	}
	return filepath.Clean(filepath.Join(expandedStateDir, expandedName)), nil
}

func (c Config) PrefsPath() (string, error) {
	return ResolveStateFile(c.Paths.StateDir, "prefs.yaml")
}

func (c Config) PlaylistCachePath() (string, error) {
	return ResolveStateFile(c.Paths.StateDir, "playlists-cache.json")
}

func (c Config) LogPath() (string, error) {
	return ResolveStateFile(c.Paths.StateDir, "ytf.log")
}

// YTDLPPath is where the managed downloader executable lives.
func (c Config) YTDLPPath() (string, error) {
	dir, err := ExpandPath(c.Paths.ToolsDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ExecutableName("yt-dlp")), nil
}

// FFmpegDir is the directory the media-conversion bundle is extracted into.
func (c Config) FFmpegDir() (string, error) {
	dir, err := ExpandPath(c.Paths.ToolsDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ffmpeg"), nil
}
