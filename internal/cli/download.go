package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"

	"github.com/jaa/ytf/internal/exitcode"
	"github.com/jaa/ytf/internal/playlist"
	"github.com/spf13/cobra"
)

// withSession opens a session for the command and cancels its context on
// an interrupt signal.
func withSession(app *AppContext, run func(ctx context.Context, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(app)
		if err != nil {
			return err
		}
		defer s.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), interruptSignals()...)
		defer stop()
		return run(ctx, s, args)
	}
}

func newSingleCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "single <url>",
		Short: "Download one video into the download root",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(app, func(ctx context.Context, s *session, args []string) error {
			downloader, err := s.downloader(ctx)
			if err != nil {
				return err
			}
			_, err = downloader.DownloadSingle(ctx, args[0])
			return outcomeError(err)
		}),
	}
}

func newPlaylistCommand(app *AppContext) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "playlist <url>",
		Short: "Download a playlist into its own folder",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(app, func(ctx context.Context, s *session, args []string) error {
			downloader, err := s.downloader(ctx)
			if err != nil {
				return err
			}
			_, err = downloader.DownloadPlaylist(ctx, args[0], title)
			return outcomeError(err)
		}),
	}

	cmd.Flags().StringVar(&title, "title", "", "Folder title to use instead of the playlist title")
	return cmd
}

func newSelectCommand(app *AppContext) *cobra.Command {
	var refresh bool
	var pick int

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Pick one of your playlists and download it",
		Args:  cobra.NoArgs,
		RunE: withSession(app, func(ctx context.Context, s *session, args []string) error {
			if pick < 0 {
				return withExitCode(exitcode.InvalidUsage, fmt.Errorf("--pick must be a positive playlist number"))
			}
			if pick == 0 && !canPrompt(app) {
				return withExitCode(exitcode.InvalidUsage, fmt.Errorf("input is disabled; choose a playlist with --pick"))
			}
			return s.selectAndDownload(ctx, refresh, pick)
		}),
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cached listing and query it again")
	cmd.Flags().IntVar(&pick, "pick", 0, "Playlist number to download without prompting")
	return cmd
}

// selectAndDownload lists playlists, takes pick or asks for one, and
// downloads the choice. Cancelling the prompt is not an error.
func (s *session) selectAndDownload(ctx context.Context, refresh bool, pick int) error {
	entries, err := s.playlists(ctx, refresh)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return withExitCode(exitcode.RuntimeFailure, fmt.Errorf("no playlists found at %s", s.cfg.Playlists.ListingURL))
	}

	index := pick
	if index > len(entries) {
		return withExitCode(exitcode.InvalidUsage, fmt.Errorf("--pick %d is out of range (1-%d)", index, len(entries)))
	}
	if index == 0 {
		index, err = choosePlaylist(s.app, newMenuStyles(s.app), entries, s.cfg.Playlists.PageSize, s.record.LastPlaylistID, s.record.LastPlaylistIndex)
		if err != nil || index == 0 {
			return ignoreEOF(err)
		}
	}

	entry := entries[index-1]
	s.record.LastPlaylistIndex = index
	s.record.LastPlaylistID = entry.ID
	s.persist()

	downloader, err := s.downloader(ctx)
	if err != nil {
		return err
	}
	_, err = downloader.DownloadFromSelection(ctx, entry)
	return outcomeError(err)
}

// choosePlaylist pages through entries and returns the 1-based listing
// position picked, or 0 when the user backs out.
func choosePlaylist(app *AppContext, styles menuStyles, entries []playlist.Entry, pageSize int, lastID string, lastIndex int) (int, error) {
	if pageSize <= 0 {
		pageSize = playlist.DefaultPageSize
	}
	number := 0
	if remembered := playlist.DefaultSelection(entries, 1, lastID, 0); remembered > 0 {
		number = (remembered - 1) / pageSize
	}

	for {
		page := playlist.Paginate(entries, pageSize, number)
		fmt.Fprintln(app.IO.Out, styles.title.Render(fmt.Sprintf("Playlists (page %d/%d)", page.Number+1, page.Count)))
		for i, entry := range page.Entries {
			fmt.Fprintf(app.IO.Out, "%s  %s\n", styles.key.Render(fmt.Sprintf("%3d", page.Offset+i+1)), entry.Title)
		}
		fmt.Fprintln(app.IO.Out, styles.hint.Render("n next page, p previous page, 0 back"))

		def := playlist.DefaultSelection(entries, page.Number, lastID, lastIndex)
		prompt := "Playlist: "
		if def > 0 {
			prompt = fmt.Sprintf("Playlist [%d]: ", def)
		}
		answer, err := promptLine(app, prompt)
		if err != nil {
			return 0, err
		}

		switch strings.ToLower(answer) {
		case "n":
			if page.Number+1 < page.Count {
				number = page.Number + 1
			}
			continue
		case "p":
			if page.Number > 0 {
				number = page.Number - 1
			}
			continue
		case "0", "q":
			return 0, nil
		case "":
			if def > 0 {
				return def, nil
			}
			fmt.Fprintln(app.IO.Out, "Enter a playlist number.")
			continue
		}

		n, convErr := strconv.Atoi(answer)
		if convErr != nil || n < 1 || n > len(entries) {
			fmt.Fprintf(app.IO.Out, "%q is not a playlist number between 1 and %d.\n", answer, len(entries))
			continue
		}
		return n, nil
	}
}

func ignoreEOF(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
