package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jaa/ytf/internal/ytdlp"
)

const jsonCaptureLimit = 64 * 1024 * 1024

// Querier runs short yt-dlp queries whose stdout is the payload.
type Querier struct {
	Runner  ExecRunner
	Binary  string
	Timeout time.Duration
}

func (q Querier) Query(ctx context.Context, args []string) ([]byte, error) {
	result := q.Runner.Run(ctx, ExecSpec{
		Bin:            q.Binary,
		Args:           args,
		Timeout:        q.Timeout,
		DisplayCommand: ytdlp.FormatCommand(q.Binary, args),
		Quiet:          true,
		CaptureLimit:   jsonCaptureLimit,
	})
	switch {
	case result.Interrupted:
		return nil, ErrInterrupted
	case result.TimedOut:
		return nil, fmt.Errorf("yt-dlp query timed out after %s", q.Timeout)
	case result.ExitCode != 0:
		return nil, fmt.Errorf("yt-dlp query failed (exit %d): %s", result.ExitCode, lastLine(result.StderrTail, result.Err))
	}
	return []byte(result.StdoutTail), nil
}

func lastLine(text string, fallback error) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	if fallback != nil {
		return fallback.Error()
	}
	return "no output"
}
