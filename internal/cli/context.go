package cli

import (
	"bufio"
	"io"
)

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

type GlobalOptions struct {
	ConfigPath       string
	JSON             bool
	Quiet            bool
	Verbose          bool
	NoColor          bool
	NoInput          bool
	DryRun           bool
	Root             string
	ErrorsAsWarnings bool
	// ErrorsAsWarningsSet records whether --errors-as-warnings was given.
	ErrorsAsWarningsSet bool
}

type AppContext struct {
	Build BuildInfo
	IO    IOStreams
	Opts  GlobalOptions

	reader *bufio.Reader
}

// lines is the single buffered reader over IO.In shared by every prompt.
func (a *AppContext) lines() *bufio.Reader {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.IO.In)
	}
	return a.reader
}
