package provision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jaa/ytf/internal/engine"
	"github.com/jaa/ytf/internal/toolver"
	"github.com/jaa/ytf/internal/ytdlp"
)

// VersionQuerier asks an executable for its version.
type VersionQuerier interface {
	QueryVersion(ctx context.Context, path string) (toolver.Version, error)
}

// RunnerVersionQuerier runs `<path> --version`. The exit code must be 0 and
// the output must be a complete version token.
type RunnerVersionQuerier struct {
	Runner  engine.ExecRunner
	Timeout time.Duration
}

func (q RunnerVersionQuerier) QueryVersion(ctx context.Context, path string) (toolver.Version, error) {
	timeout := q.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	result := q.Runner.Run(ctx, engine.ExecSpec{
		Bin:     path,
		Args:    ytdlp.VersionArgs(),
		Timeout: timeout,
		Quiet:   true,
	})
	if result.ExitCode != 0 {
		detail := strings.TrimSpace(result.StderrTail)
		if detail == "" && result.Err != nil {
			detail = result.Err.Error()
		}
		return toolver.Version{}, fmt.Errorf("version query exited with code %d: %s", result.ExitCode, detail)
	}
	return toolver.FromOutput(result.StdoutTail)
}
