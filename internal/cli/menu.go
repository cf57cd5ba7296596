package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jaa/ytf/internal/engine"
	"github.com/jaa/ytf/internal/exitcode"
	"github.com/muesli/termenv"
)

type menuStyles struct {
	title lipgloss.Style
	key   lipgloss.Style
	hint  lipgloss.Style
}

func newMenuStyles(app *AppContext) menuStyles {
	renderer := lipgloss.NewRenderer(app.IO.Out)
	if app.Opts.NoColor || !isTerminal(app.IO.Out) {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return menuStyles{
		title: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		key:   renderer.NewStyle().Foreground(lipgloss.Color("213")),
		hint:  renderer.NewStyle().Faint(true),
	}
}

type menuItem struct {
	key   string
	label string
}

var menuItems = []menuItem{
	{key: "1", label: "Download a single video"},
	{key: "2", label: "Download a playlist by URL"},
	{key: "3", label: "Pick one of my playlists"},
	{key: "4", label: "Pick one of my playlists (refresh the listing)"},
	{key: "5", label: "Change the download root"},
	{key: "0", label: "Quit"},
}

func validMenuChoice(choice string) bool {
	for _, item := range menuItems {
		if item.key == choice && choice != "0" {
			return true
		}
	}
	return false
}

// runMenu loops over the numbered menu until the user quits or input ends.
// A failed action is reported and the menu comes back; an interrupt or a
// missing yt-dlp ends the run.
func runMenu(ctx context.Context, s *session) error {
	styles := newMenuStyles(s.app)
	out := s.app.IO.Out

	for {
		policy := "errors stop downloads"
		if s.record.ErrorsAsWarnings {
			policy = "errors are warnings"
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, styles.title.Render("ytf"))
		fmt.Fprintln(out, styles.hint.Render(fmt.Sprintf("root: %s | %s", s.root, policy)))
		for _, item := range menuItems {
			fmt.Fprintf(out, " %s  %s\n", styles.key.Render(item.key), item.label)
		}

		def := s.record.LastChoice
		if !validMenuChoice(def) {
			def = "1"
		}
		choice, err := promptLine(s.app, fmt.Sprintf("Choice [%s]: ", def))
		if err != nil {
			return ignoreEOF(err)
		}
		if choice == "" {
			choice = def
		}
		if choice == "0" || strings.EqualFold(choice, "q") {
			return nil
		}
		if !validMenuChoice(choice) {
			fmt.Fprintf(out, "%q is not a menu choice.\n", choice)
			continue
		}

		s.record.LastChoice = choice
		s.persist()

		if err := s.runMenuAction(ctx, choice); err != nil {
			if ctx.Err() != nil || mapExitCode(err) == exitcode.Interrupted {
				return withExitCode(exitcode.Interrupted, engine.ErrInterrupted)
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if code := mapExitCode(err); code == exitcode.MissingDependency || code == exitcode.InvalidConfig {
				return err
			}
			if !errors.Is(err, engine.ErrDownloadFailed) {
				fmt.Fprintln(s.app.IO.ErrOut, "ERROR:", err)
			}
		}
	}
}

func (s *session) runMenuAction(ctx context.Context, choice string) error {
	switch choice {
	case "1":
		url, err := promptLine(s.app, "Video URL: ")
		if err != nil || url == "" {
			return err
		}
		downloader, err := s.downloader(ctx)
		if err != nil {
			return err
		}
		_, err = downloader.DownloadSingle(ctx, url)
		return err
	case "2":
		url, err := promptLine(s.app, "Playlist URL: ")
		if err != nil || url == "" {
			return err
		}
		title, err := promptLine(s.app, "Folder title (blank uses the playlist title): ")
		if err != nil {
			return err
		}
		downloader, err := s.downloader(ctx)
		if err != nil {
			return err
		}
		_, err = downloader.DownloadPlaylist(ctx, url, title)
		return err
	case "3", "4":
		return s.selectAndDownload(ctx, choice == "4", 0)
	case "5":
		input, err := promptLine(s.app, "New download root (blank keeps the current one): ")
		if err != nil {
			return err
		}
		_, err = s.changeRoot(input)
		return err
	}
	return nil
}
