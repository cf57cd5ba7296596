package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update yt-dlp and locate ffmpeg without downloading anything",
		Args:  cobra.NoArgs,
		RunE: withSession(app, func(ctx context.Context, s *session, args []string) error {
			tools, err := s.ensureTools(ctx)
			if err != nil {
				return err
			}

			if app.Opts.JSON {
				encoded, _ := json.Marshal(map[string]any{
					"ytdlp_path":    tools.Binary,
					"ytdlp_version": tools.Version.String(),
					"ffmpeg_dir":    tools.FFmpegDir,
					"cookies":       tools.CookieSource != "",
				})
				fmt.Fprintln(app.IO.Out, string(encoded))
				return nil
			}

			version := tools.Version.String()
			if version == "" {
				version = "unknown version"
			}
			fmt.Fprintf(app.IO.Out, "yt-dlp: %s (%s)\n", tools.Binary, version)
			if tools.FFmpegDir != "" {
				fmt.Fprintf(app.IO.Out, "ffmpeg: %s\n", tools.FFmpegDir)
			} else {
				fmt.Fprintln(app.IO.Out, "ffmpeg: not found")
			}
			if tools.CookieSource != "" {
				fmt.Fprintf(app.IO.Out, "cookies: %s\n", s.cfg.Auth.Browser)
			} else {
				fmt.Fprintln(app.IO.Out, "cookies: none")
			}
			return nil
		}),
	}
}
