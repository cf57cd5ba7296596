package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version/build metadata",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(app)
		},
	}
}

func printVersion(app *AppContext) {
	version := app.Build.Version
	if version == "" {
		version = "dev"
	}
	commit := app.Build.Commit
	if commit == "" {
		commit = "unknown"
	}
	date := app.Build.Date
	if date == "" {
		date = "unknown"
	}

	if app.Opts.JSON {
		encoded, _ := json.Marshal(map[string]string{"version": version, "commit": commit, "build_date": date})
		fmt.Fprintln(app.IO.Out, string(encoded))
		return
	}
	fmt.Fprintf(app.IO.Out, "ytf version %s\ncommit: %s\nbuild_date: %s\n", version, commit, date)
}
