package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jaa/ytf/internal/config"
	"github.com/jaa/ytf/internal/engine"
	"github.com/jaa/ytf/internal/exitcode"
	"github.com/jaa/ytf/internal/provision"
)

func TestMapExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitcode.Success},
		{name: "coded", err: &ExitError{Code: exitcode.InvalidConfig, Err: errors.New("bad")}, want: exitcode.InvalidConfig},
		{name: "unknown command", err: errors.New("unknown command \"x\" for \"ytf\""), want: exitcode.InvalidUsage},
		{name: "arg count", err: errors.New("accepts 1 arg(s), received 0"), want: exitcode.InvalidUsage},
		{name: "interrupted", err: fmt.Errorf("playlist: %w", engine.ErrInterrupted), want: exitcode.Interrupted},
		{name: "canceled", err: context.Canceled, want: exitcode.Interrupted},
		{name: "tool unavailable", err: fmt.Errorf("%w: offline", provision.ErrToolUnavailable), want: exitcode.MissingDependency},
		{name: "validation", err: &config.ValidationError{Problems: []string{"version must be 1"}}, want: exitcode.InvalidConfig},
		{name: "generic", err: errors.New("boom"), want: exitcode.RuntimeFailure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := mapExitCode(tc.err); got != tc.want {
				t.Fatalf("mapExitCode() = %d, want %d", got, tc.want)
			}
		})
	}
}
