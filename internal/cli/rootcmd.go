package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jaa/ytf/internal/exitcode"
	"github.com/spf13/cobra"
)

func newRootDirCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "root [path]",
		Short: "Show or change the download root",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSession(app, func(ctx context.Context, s *session, args []string) error {
			requested := ""
			if len(args) == 1 {
				requested = args[0]
			}
			fallback := false
			reason := ""
			if requested != "" {
				res, err := s.changeRoot(requested)
				if err != nil {
					return withExitCode(exitcode.RuntimeFailure, err)
				}
				fallback, reason = res.UsedFallback, res.Reason
			}

			if app.Opts.JSON {
				encoded, _ := json.Marshal(map[string]any{"root": s.root, "fallback": fallback})
				fmt.Fprintln(app.IO.Out, string(encoded))
			} else {
				fmt.Fprintf(app.IO.Out, "Download root: %s\n", s.root)
			}
			if fallback {
				return withExitCode(exitcode.InvalidUsage, fmt.Errorf("%s", reason))
			}
			return nil
		}),
	}
}
