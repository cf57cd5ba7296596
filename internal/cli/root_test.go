package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jaa/ytf/internal/exitcode"
	"gopkg.in/yaml.v3"
)

type testEnv struct {
	dir        string
	stateDir   string
	baseDir    string
	configPath string
}

func clearYTFEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"YTF_STATE_DIR", "YTF_TOOLS_DIR", "YTF_BASE_DIR", "YTF_BROWSER", "YTF_BROWSER_PROFILE", "YTF_FEED_TIMEOUT_SECONDS", "YTF_ERRORS_AS_WARNINGS"} {
		t.Setenv(key, "")
	}
}

func newTestEnv(t *testing.T, extra string) testEnv {
	t.Helper()
	clearYTFEnv(t)
	dir := t.TempDir()
	env := testEnv{
		dir:        dir,
		stateDir:   filepath.Join(dir, "state"),
		baseDir:    filepath.Join(dir, "home"),
		configPath: filepath.Join(dir, "config.yaml"),
	}
	if err := os.MkdirAll(env.baseDir, 0o755); err != nil {
		t.Fatalf("mkdir base: %v", err)
	}
	payload := fmt.Sprintf("version: 1\npaths:\n  state_dir: %q\n  base_dir: %q\n%s", env.stateDir, env.baseDir, extra)
	if err := os.WriteFile(env.configPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	app := &AppContext{
		Build: BuildInfo{Version: "test"},
		IO:    IOStreams{In: strings.NewReader(input), Out: stdout, ErrOut: stderr},
	}
	root := newRootCommand(app)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func readPrefs(t *testing.T, stateDir string) map[string]any {
	t.Helper()
	payload, err := os.ReadFile(filepath.Join(stateDir, "prefs.yaml"))
	if err != nil {
		t.Fatalf("read prefs: %v", err)
	}
	record := map[string]any{}
	if err := yaml.Unmarshal(payload, &record); err != nil {
		t.Fatalf("parse prefs: %v", err)
	}
	return record
}

func TestVersionCommandJSON(t *testing.T) {
	stdout, _, err := runCLI(t, "", "version", "--json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if payload["version"] != "test" || payload["commit"] != "unknown" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestMenuRequiresInput(t *testing.T) {
	env := newTestEnv(t, "")
	_, _, err := runCLI(t, "", "--config", env.configPath, "--no-input")
	if mapExitCode(err) != exitcode.InvalidUsage {
		t.Fatalf("expected invalid usage, got %v", err)
	}
}

func TestInvalidConfigExitCode(t *testing.T) {
	env := newTestEnv(t, "playlists:\n  page_size: 0\n")
	_, _, err := runCLI(t, "", "--config", env.configPath, "root")
	if mapExitCode(err) != exitcode.InvalidConfig {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestMenuChangesRootAndRemembersChoice(t *testing.T) {
	env := newTestEnv(t, "")

	stdout, _, err := runCLI(t, "5\nmusic\n0\n", "--config", env.configPath)
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	if !strings.Contains(stdout, "Change the download root") {
		t.Fatalf("expected menu to be printed, got %q", stdout)
	}

	record := readPrefs(t, env.stateDir)
	want := filepath.Join(env.baseDir, "music")
	if record["download_root"] != want {
		t.Fatalf("download_root = %v, want %s", record["download_root"], want)
	}
	if record["last_choice"] != "5" {
		t.Fatalf("last_choice = %v, want 5", record["last_choice"])
	}

	stdout, _, err = runCLI(t, "0\n", "--config", env.configPath)
	if err != nil {
		t.Fatalf("second menu: %v", err)
	}
	if !strings.Contains(stdout, "Choice [5]") || !strings.Contains(stdout, want) {
		t.Fatalf("expected remembered choice and root, got %q", stdout)
	}
}

func TestMenuRejectsUnknownChoice(t *testing.T) {
	env := newTestEnv(t, "")
	stdout, _, err := runCLI(t, "9\n", "--config", env.configPath)
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	if !strings.Contains(stdout, `"9" is not a menu choice`) {
		t.Fatalf("expected re-prompt, got %q", stdout)
	}
}

func TestRootCommandFallsBackOnInvalidPath(t *testing.T) {
	env := newTestEnv(t, "")
	stdout, _, err := runCLI(t, "", "--config", env.configPath, "root", "bad|name")
	if mapExitCode(err) != exitcode.InvalidUsage {
		t.Fatalf("expected invalid usage for rejected root, got %v", err)
	}
	want := filepath.Join(env.baseDir, "ytf-downloads")
	if !strings.Contains(stdout, want) {
		t.Fatalf("expected default root %s in %q", want, stdout)
	}
}

func TestErrorsAsWarningsFlagIsRemembered(t *testing.T) {
	env := newTestEnv(t, "")
	if _, _, err := runCLI(t, "", "--config", env.configPath, "--errors-as-warnings=false", "root"); err != nil {
		t.Fatalf("root: %v", err)
	}
	if record := readPrefs(t, env.stateDir); record["errors_as_warnings"] != false {
		t.Fatalf("expected errors_as_warnings=false, got %v", record["errors_as_warnings"])
	}
}

func TestSingleDryRunProvisionsToolAndPlansCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as the downloaded tool")
	}

	script := "#!/bin/sh\nif [ \"$1\" = \"--version\" ]; then echo 2024.03.15; exit 0; fi\nexit 0\n"
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"tag_name":"2024.03.15","assets":[{"name":"yt-dlp","browser_download_url":"%s/yt-dlp"}]}`, server.URL)
	})
	mux.HandleFunc("/yt-dlp", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(script))
	})

	dir := t.TempDir()
	profile := filepath.Join(dir, "browser", "Default")
	if err := os.MkdirAll(profile, 0o755); err != nil {
		t.Fatalf("mkdir profile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(profile, "Cookies"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write cookies: %v", err)
	}

	env := newTestEnv(t, fmt.Sprintf(
		"tools:\n  feed_url: %q\n  asset_name: \"yt-dlp\"\n  ffmpeg_archive_url: \"\"\nauth:\n  browser: \"chrome\"\n  profile: \"Default\"\n  user_data_dir: %q\n",
		server.URL+"/feed", filepath.Join(dir, "browser"),
	))

	stdout, stderr, err := runCLI(t, "", "--config", env.configPath, "--json", "--dry-run", "single", "https://www.youtube.com/watch?v=abc")
	if err != nil {
		t.Fatalf("single: %v (stderr %q)", err, stderr)
	}
	if !strings.Contains(stdout, `"event":"download_planned"`) {
		t.Fatalf("expected planned download event, got %q", stdout)
	}
	if !strings.Contains(stdout, "chrome:***") {
		t.Fatalf("expected redacted cookie source in planned command, got %q", stdout)
	}

	if _, err := os.Stat(filepath.Join(env.stateDir, "tools", "yt-dlp")); err != nil {
		t.Fatalf("expected yt-dlp to be installed: %v", err)
	}
	if record := readPrefs(t, env.stateDir); record["tool_version"] != "2024.03.15" {
		t.Fatalf("expected tool_version to be recorded, got %v", record["tool_version"])
	}
}

func TestSelectRequiresPickWithoutInput(t *testing.T) {
	env := newTestEnv(t, "")
	_, _, err := runCLI(t, "", "--config", env.configPath, "--no-input", "select")
	var coded *ExitError
	if !errors.As(err, &coded) || coded.Code != exitcode.InvalidUsage {
		t.Fatalf("expected invalid usage, got %v", err)
	}
}
