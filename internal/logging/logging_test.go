package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "ytf.log")
	logger, err := New(Options{LogPath: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("tool resolved")
	_ = logger.Sync()

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(payload))
	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("expected json log line, got %q: %v", line, err)
	}
	if decoded["msg"] != "tool resolved" {
		t.Fatalf("unexpected log message %v", decoded["msg"])
	}
}

func TestNewWithoutSinksIsNop(t *testing.T) {
	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("discarded")
}
