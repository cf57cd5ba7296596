package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/jaa/ytf/internal/exitcode"
	"github.com/spf13/cobra"
)

func Execute(build BuildInfo, streams IOStreams) int {
	if wd, err := os.Getwd(); err == nil {
		if _, envErr := loadDotEnvFiles(wd, os.Environ(), os.Setenv); envErr != nil {
			fmt.Fprintln(streams.ErrOut, "WARN:", envErr)
		}
	}

	app := &AppContext{Build: build, IO: streams}
	root := newRootCommand(app)

	if err := root.ExecuteContext(context.Background()); err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			fmt.Fprintln(streams.ErrOut, "ERROR:", msg)
		}
		return mapExitCode(err)
	}
	return exitcode.Success
}

func newRootCommand(app *AppContext) *cobra.Command {
	showVersion := false

	root := &cobra.Command{
		Use:   "ytf",
		Short: "Keep yt-dlp current and download videos and playlists",
		Long:  "ytf keeps yt-dlp and ffmpeg up to date, borrows your browser's cookies, and downloads single videos or whole playlists into per-playlist folders without fetching anything twice. Run it without a subcommand for the interactive menu.",
		Args:  cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.Opts.ErrorsAsWarningsSet = cmd.Flags().Changed("errors-as-warnings")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion(app)
				return nil
			}
			if !canPrompt(app) {
				return withExitCode(exitcode.InvalidUsage, fmt.Errorf("the menu needs interactive input; run a subcommand instead (see ytf --help)"))
			}

			s, err := openSession(app)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), interruptSignals()...)
			defer stop()
			return runMenu(ctx, s)
		},
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	defaultConfigPath := os.Getenv("YTF_CONFIG")
	flags := root.PersistentFlags()
	flags.StringVarP(&app.Opts.ConfigPath, "config", "c", defaultConfigPath, "Path to config file")
	flags.BoolVar(&app.Opts.JSON, "json", false, "Emit newline-delimited JSON events")
	flags.BoolVarP(&app.Opts.Quiet, "quiet", "q", false, "Reduce output to warnings, errors, and results")
	flags.BoolVarP(&app.Opts.Verbose, "verbose", "v", false, "Increase diagnostic output")
	flags.BoolVar(&app.Opts.NoColor, "no-color", false, "Disable color output")
	flags.BoolVar(&app.Opts.NoInput, "no-input", false, "Disable interactive prompts")
	flags.BoolVarP(&app.Opts.DryRun, "dry-run", "n", false, "Print the yt-dlp commands without running them")
	flags.StringVar(&app.Opts.Root, "root", "", "Download root for this run (remembered when usable)")
	flags.BoolVar(&app.Opts.ErrorsAsWarnings, "errors-as-warnings", false, "Treat failed downloads as warnings (remembered)")
	root.Flags().BoolVar(&showVersion, "version", false, "Print version info")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withExitCode(exitcode.InvalidUsage, err)
	})

	root.AddCommand(newSingleCommand(app))
	root.AddCommand(newPlaylistCommand(app))
	root.AddCommand(newSelectCommand(app))
	root.AddCommand(newUpdateCommand(app))
	root.AddCommand(newRootDirCommand(app))
	root.AddCommand(newDoctorCommand(app))
	root.AddCommand(newInitCommand(app))
	root.AddCommand(newVersionCommand(app))

	return root
}
