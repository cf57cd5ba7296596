package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jaa/ytf/internal/config"
	"github.com/mattn/go-isatty"
)

func loadConfig(app *AppContext) (config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("resolve working directory: %w", err)
	}

	cfg, err := config.Load(config.LoadOptions{
		ExplicitPath: strings.TrimSpace(app.Opts.ConfigPath),
		WorkingDir:   wd,
	})
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// isTerminal reports whether v is an *os.File attached to a terminal.
func isTerminal(v any) bool {
	file, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// canPrompt reports whether questions may be asked. Piped input counts, so
// the menu can be scripted.
func canPrompt(app *AppContext) bool {
	return !app.Opts.NoInput && !app.Opts.JSON
}

// promptLine prints prompt and reads one trimmed line. io.EOF is returned
// only when the input is exhausted without any text.
func promptLine(app *AppContext, prompt string) (string, error) {
	fmt.Fprint(app.IO.Out, prompt)
	line, err := app.lines().ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptYesNo(app *AppContext, prompt string) (bool, error) {
	response, err := promptLine(app, prompt+" [y/N]: ")
	if err != nil {
		return false, err
	}
	response = strings.ToLower(response)
	return response == "y" || response == "yes", nil
}
