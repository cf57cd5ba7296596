// Package exitcode lists the process exit statuses.
package exitcode

const (
	Success           = 0
	RuntimeFailure    = 1
	InvalidUsage      = 2
	InvalidConfig     = 3
	MissingDependency = 4
	Interrupted       = 130
)
