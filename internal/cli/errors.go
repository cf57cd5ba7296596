package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/jaa/ytf/internal/config"
	"github.com/jaa/ytf/internal/engine"
	"github.com/jaa/ytf/internal/exitcode"
	"github.com/jaa/ytf/internal/provision"
)

type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

var usagePhrases = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand flag",
	"accepts ",
	"requires at least",
	"invalid argument",
}

func mapExitCode(err error) int {
	if err == nil {
		return exitcode.Success
	}
	var coded *ExitError
	if errors.As(err, &coded) {
		return coded.Code
	}

	var invalid *config.ValidationError
	switch {
	case errors.Is(err, engine.ErrInterrupted), errors.Is(err, context.Canceled):
		return exitcode.Interrupted
	case errors.Is(err, provision.ErrToolUnavailable):
		return exitcode.MissingDependency
	case errors.As(err, &invalid):
		return exitcode.InvalidConfig
	}

	message := err.Error()
	for _, phrase := range usagePhrases {
		if strings.Contains(message, phrase) {
			return exitcode.InvalidUsage
		}
	}
	return exitcode.RuntimeFailure
}
