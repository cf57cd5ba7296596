package cli

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jaa/ytf/internal/config"
)

func TestNewSessionLoggerReportsUnresolvableLogPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("home directory lookup differs on windows")
	}
	t.Setenv("HOME", "")

	cfg := config.Config{Paths: config.Paths{StateDir: "~/state"}}
	logger, err := newSessionLogger(cfg, false)
	if err == nil || !strings.Contains(err.Error(), "resolve log path") {
		t.Fatalf("expected log path error, got %v", err)
	}
	if logger == nil {
		t.Fatalf("expected a no-op logger alongside the error")
	}
	logger.Info("dropped")
}

func TestNewSessionLoggerWritesUnderStateDir(t *testing.T) {
	stateDir := t.TempDir()
	cfg := config.Config{Paths: config.Paths{StateDir: stateDir}}

	logger, err := newSessionLogger(cfg, false)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("session opened")
	_ = logger.Sync()

	payload, err := os.ReadFile(filepath.Join(stateDir, "ytf.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(payload), "session opened") {
		t.Fatalf("expected log line, got %q", payload)
	}
}
