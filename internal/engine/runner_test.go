package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestSubprocessRunnerTeesAndCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell test is POSIX-specific")
	}

	var stdout, stderr bytes.Buffer
	runner := NewSubprocessRunner(&stdout, &stderr)
	result := runner.Run(context.Background(), ExecSpec{
		Bin:  "sh",
		Args: []string{"-c", "echo out; echo err >&2; exit 3"},
		Dir:  ".",
	})

	if result.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", result.ExitCode)
	}
	if strings.TrimSpace(stdout.String()) != "out" || strings.TrimSpace(result.StdoutTail) != "out" {
		t.Fatalf("expected stdout to be tee'd and captured, got %q / %q", stdout.String(), result.StdoutTail)
	}
	if strings.TrimSpace(result.StderrTail) != "err" {
		t.Fatalf("expected captured stderr, got %q", result.StderrTail)
	}
}

func TestSubprocessRunnerQuietDoesNotTee(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell test is POSIX-specific")
	}

	var stdout bytes.Buffer
	runner := NewSubprocessRunner(&stdout, &stdout)
	result := runner.Run(context.Background(), ExecSpec{
		Bin:   "sh",
		Args:  []string{"-c", "echo '{\"id\":\"x\"}'"},
		Quiet: true,
	})
	if result.ExitCode != 0 || stdout.Len() != 0 {
		t.Fatalf("expected quiet run, exit=%d terminal=%q", result.ExitCode, stdout.String())
	}
	if !strings.Contains(result.StdoutTail, `"id":"x"`) {
		t.Fatalf("expected captured payload, got %q", result.StdoutTail)
	}
}

func TestSubprocessRunnerTimeoutAndCancel(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell test is POSIX-specific")
	}

	runner := NewSubprocessRunner(nil, nil)
	start := time.Now()
	result := runner.Run(context.Background(), ExecSpec{
		Bin:     "sh",
		Args:    []string{"-c", "sleep 5"},
		Timeout: 100 * time.Millisecond,
	})
	if !result.TimedOut || result.ExitCode == 0 {
		t.Fatalf("expected timeout, got %+v", result)
	}
	if time.Since(start) > 3*time.Second {
		t.Fatalf("expected timeout to stop the process promptly")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	result = runner.Run(ctx, ExecSpec{Bin: "sh", Args: []string{"-c", "sleep 5"}})
	if !result.Interrupted || result.ExitCode != 130 {
		t.Fatalf("expected interrupted result, got %+v", result)
	}
}

func TestSubprocessRunnerLaunchFailure(t *testing.T) {
	runner := NewSubprocessRunner(nil, nil)
	result := runner.Run(context.Background(), ExecSpec{Bin: filepath.Join(t.TempDir(), "missing-tool")})
	if !result.LaunchError || result.ExitCode == 0 {
		t.Fatalf("expected launch error, got %+v", result)
	}

	result = runner.Run(context.Background(), ExecSpec{})
	if !result.LaunchError {
		t.Fatalf("expected missing binary to be a launch error")
	}
}

func TestTailBufferKeepsLastBytes(t *testing.T) {
	tail := newTailBuffer(4)
	_, _ = tail.Write([]byte("ab"))
	_, _ = tail.Write([]byte("cdef"))
	if tail.String() != "cdef" {
		t.Fatalf("unexpected tail %q", tail.String())
	}
	_, _ = tail.Write([]byte("g"))
	if tail.String() != "defg" {
		t.Fatalf("unexpected tail %q", tail.String())
	}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}
