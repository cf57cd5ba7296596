package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jaa/ytf/internal/config"
	"github.com/jaa/ytf/internal/doctor"
	"github.com/jaa/ytf/internal/exitcode"
	"github.com/jaa/ytf/internal/prefs"
	"github.com/jaa/ytf/internal/roots"
	"github.com/spf13/cobra"
)

func newDoctorCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check tools, browser cookies, and filesystem readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if err := config.Validate(cfg); err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			record := prefs.Defaults(cfg.Download.ErrorsAsWarnings)
			if path, err := cfg.PrefsPath(); err == nil {
				record, _ = prefs.NewFileStore(path).Load(record)
			}
			inputs := doctor.Inputs{StoredVersion: record.ToolVersion}
			if baseDir, err := config.ExpandPath(cfg.Paths.BaseDir); err == nil {
				if res, err := roots.New(baseDir, cfg.Paths.DefaultRoot).Resolve(app.Opts.Root, record.DownloadRoot); err == nil {
					inputs.Root = res.Root
				}
			}

			report := doctor.NewChecker().Check(cmd.Context(), cfg, inputs)

			if app.Opts.JSON {
				encoder := json.NewEncoder(app.IO.Out)
				if err := encoder.Encode(report); err != nil {
					return withExitCode(exitcode.RuntimeFailure, err)
				}
			} else {
				checks := append([]doctor.Check{}, report.Checks...)
				sort.SliceStable(checks, func(i, j int) bool {
					return checks[i].Name < checks[j].Name
				})
				for _, check := range checks {
					fmt.Fprintf(app.IO.Out, "[%s] %s: %s\n", check.Severity, check.Name, check.Message)
				}
			}

			if report.HasErrors() {
				return withExitCode(exitcode.MissingDependency, fmt.Errorf("doctor found %d error(s)", report.ErrorCount()))
			}
			return nil
		},
	}
}
