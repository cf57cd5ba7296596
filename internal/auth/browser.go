// Package auth resolves the browser profile whose cookies authenticate
// downloads.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var ErrProfileUnavailable = errors.New("browser profile unavailable")

// CookieSource is a resolved browser profile. Arg is empty when the profile
// is not usable, in which case downloads run without cookies.
type CookieSource struct {
	Browser    string
	ProfileDir string
	Arg        string
}

// ProfileResolver finds a browser profile directory. The function fields
// default to the real environment.
type ProfileResolver struct {
	GOOS        string
	Getenv      func(string) string
	UserHomeDir func() (string, error)
}

func ResolveCookieSource(browser, profile, userDataDir string) (CookieSource, error) {
	return ProfileResolver{}.Resolve(browser, profile, userDataDir)
}

// Resolve locates profile for browser and checks it is alive: it exists, is
// a readable directory and is not empty. userDataDir overrides the browser's
// default data directory; an absolute profile is used as is.
func (r ProfileResolver) Resolve(browser, profile, userDataDir string) (CookieSource, error) {
	browser = strings.ToLower(strings.TrimSpace(browser))
	profile = strings.TrimSpace(profile)
	source := CookieSource{Browser: browser}

	if browser == "safari" {
		if r.goos() != "darwin" {
			return source, fmt.Errorf("%w: safari cookies are only available on macOS", ErrProfileUnavailable)
		}
		source.Arg = "safari"
		return source, nil
	}

	dir, err := r.profileDir(browser, profile, userDataDir)
	if err != nil {
		return source, err
	}
	source.ProfileDir = dir

	if err := CheckProfileDir(dir); err != nil {
		return source, err
	}
	source.Arg = browser + ":" + dir
	return source, nil
}

// CheckProfileDir reports why dir cannot serve as a cookie source.
func CheckProfileDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist", ErrProfileUnavailable, dir)
		}
		return fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrProfileUnavailable, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: %s is not readable: %v", ErrProfileUnavailable, dir, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrProfileUnavailable, dir)
	}
	return nil
}

func (r ProfileResolver) profileDir(browser, profile, userDataDir string) (string, error) {
	if profile != "" && filepath.IsAbs(profile) {
		return filepath.Clean(profile), nil
	}

	base := strings.TrimSpace(userDataDir)
	if base == "" {
		var err error
		base, err = r.defaultUserDataDir(browser)
		if err != nil {
			return "", err
		}
	}
	if profile == "" {
		profile = "Default"
	}
	return filepath.Join(base, profile), nil
}

func (r ProfileResolver) defaultUserDataDir(browser string) (string, error) {
	home, err := r.homeDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolve home directory: %v", ErrProfileUnavailable, err)
	}
	goos := r.goos()

	var parts []string
	switch goos {
	case "windows":
		local := r.getenv("LOCALAPPDATA")
		if local == "" {
			local = filepath.Join(home, "AppData", "Local")
		}
		roaming := r.getenv("APPDATA")
		if roaming == "" {
			roaming = filepath.Join(home, "AppData", "Roaming")
		}
		parts = windowsDataDirs(browser, local, roaming)
	case "darwin":
		parts = darwinDataDirs(browser, filepath.Join(home, "Library", "Application Support"))
	default:
		config := r.getenv("XDG_CONFIG_HOME")
		if config == "" {
			config = filepath.Join(home, ".config")
		}
		parts = linuxDataDirs(browser, home, config)
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: browser %q is not supported on %s", ErrProfileUnavailable, browser, goos)
	}
	return filepath.Join(parts...), nil
}

func windowsDataDirs(browser, local, roaming string) []string {
	switch browser {
	case "chrome":
		return []string{local, "Google", "Chrome", "User Data"}
	case "chromium":
		return []string{local, "Chromium", "User Data"}
	case "edge":
		return []string{local, "Microsoft", "Edge", "User Data"}
	case "brave":
		return []string{local, "BraveSoftware", "Brave-Browser", "User Data"}
	case "vivaldi":
		return []string{local, "Vivaldi", "User Data"}
	case "opera":
		return []string{roaming, "Opera Software", "Opera Stable"}
	case "firefox":
		return []string{roaming, "Mozilla", "Firefox", "Profiles"}
	}
	return nil
}

func darwinDataDirs(browser, support string) []string {
	switch browser {
	case "chrome":
		return []string{support, "Google", "Chrome"}
	case "chromium":
		return []string{support, "Chromium"}
	case "edge":
		return []string{support, "Microsoft Edge"}
	case "brave":
		return []string{support, "BraveSoftware", "Brave-Browser"}
	case "vivaldi":
		return []string{support, "Vivaldi"}
	case "opera":
		return []string{support, "com.operasoftware.Opera"}
	case "firefox":
		return []string{support, "Firefox", "Profiles"}
	}
	return nil
}

func linuxDataDirs(browser, home, config string) []string {
	switch browser {
	case "chrome":
		return []string{config, "google-chrome"}
	case "chromium":
		return []string{config, "chromium"}
	case "edge":
		return []string{config, "microsoft-edge"}
	case "brave":
		return []string{config, "BraveSoftware", "Brave-Browser"}
	case "vivaldi":
		return []string{config, "vivaldi"}
	case "opera":
		return []string{config, "opera"}
	case "firefox":
		return []string{home, ".mozilla", "firefox"}
	}
	return nil
}

func (r ProfileResolver) goos() string {
	if r.GOOS != "" {
		return r.GOOS
	}
	return runtime.GOOS
}

func (r ProfileResolver) getenv(key string) string {
	if r.Getenv != nil {
		return strings.TrimSpace(r.Getenv(key))
	}
	return strings.TrimSpace(os.Getenv(key))
}

func (r ProfileResolver) homeDir() (string, error) {
	if r.UserHomeDir != nil {
		return r.UserHomeDir()
	}
	return os.UserHomeDir()
}
