package engine

import "time"

type ExecSpec struct {
	Bin            string
	Args           []string
	Dir            string
	Timeout        time.Duration
	DisplayCommand string
	// Quiet keeps output off the terminal; it is still captured.
	Quiet bool
	// CaptureLimit bounds the captured stdout. Zero keeps the default tail.
	CaptureLimit int
}

type ExecResult struct {
	ExitCode    int
	Duration    time.Duration
	Interrupted bool
	TimedOut    bool
	LaunchError bool
	StdoutTail  string
	StderrTail  string
	Err         error
}

// Status is the outcome class of one user action.
type Status int

const (
	StatusSuccess Status = iota
	StatusWarning
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusWarning:
		return "warning"
	default:
		return "fatal"
	}
}

type Outcome struct {
	Status         Status
	Scope          string
	Folder         string
	ExitCode       int
	Interrupted    bool
	DryRun         bool
	Message        string
	DisplayCommand string
}
