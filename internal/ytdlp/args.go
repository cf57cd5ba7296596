// Package ytdlp holds the argument contract with the yt-dlp executable and
// the parsing of its JSON output.
package ytdlp

import (
	"strings"

	"github.com/jaa/ytf/internal/archive"
)

const defaultMetadataArgs = "--embed-metadata --embed-thumbnail"

// Options are the settings shared by every download invocation.
type Options struct {
	CookieSource   string
	FFmpegLocation string
	OutputTemplate string
	ExtraArgs      []string
}

// Invocation is an argument vector plus a variant safe to print or log.
type Invocation struct {
	Args        []string
	DisplayArgs []string
}

func (inv *Invocation) add(args ...string) {
	inv.Args = append(inv.Args, args...)
	inv.DisplayArgs = append(inv.DisplayArgs, args...)
}

func (inv *Invocation) addCookies(source string) {
	if strings.TrimSpace(source) == "" {
		return
	}
	inv.Args = append(inv.Args, "--cookies-from-browser", source)
	inv.DisplayArgs = append(inv.DisplayArgs, "--cookies-from-browser", redactCookieSource(source))
}

// SingleArgs downloads one item into the root ledger scope.
func SingleArgs(opts Options, ledger archive.Ledger, url string) Invocation {
	return downloadArgs(opts, ledger, "--no-playlist", url)
}

// PlaylistArgs downloads every item of a playlist into its folder scope.
func PlaylistArgs(opts Options, ledger archive.Ledger, url string) Invocation {
	return downloadArgs(opts, ledger, "--yes-playlist", url)
}

func downloadArgs(opts Options, ledger archive.Ledger, playlistMode string, url string) Invocation {
	var inv Invocation
	inv.addCookies(opts.CookieSource)
	inv.add("--download-archive", ledger.Path)

	template := strings.TrimSpace(opts.OutputTemplate)
	if template == "" {
		template = "%(title)s [%(id)s].%(ext)s"
	}
	inv.add("-o", template)

	if strings.TrimSpace(opts.FFmpegLocation) != "" {
		inv.add("--ffmpeg-location", opts.FFmpegLocation)
	}
	if !containsArg(opts.ExtraArgs, "--embed-metadata") && !containsArg(opts.ExtraArgs, "--no-embed-metadata") {
		inv.add(strings.Fields(defaultMetadataArgs)...)
	}
	inv.add(playlistMode)
	inv.add(opts.ExtraArgs...)
	inv.add("--", url)
	return inv
}

// PlaylistMetadataArgs asks for the playlist title and id without listing
// any entries.
func PlaylistMetadataArgs(cookieSource, url string) Invocation {
	var inv Invocation
	inv.addCookies(cookieSource)
	inv.add("--flat-playlist", "--playlist-items", "0", "-J", "--", url)
	return inv
}

// ListingArgs dumps a flat listing (for example the user's playlists page).
func ListingArgs(cookieSource, url string) Invocation {
	var inv Invocation
	inv.addCookies(cookieSource)
	inv.add("--flat-playlist", "-J", "--", url)
	return inv
}

func VersionArgs() []string {
	return []string{"--version"}
}

func FormatCommand(bin string, args []string) string {
	parts := []string{bin}
	for _, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			arg = `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// redactCookieSource keeps the browser name and hides the profile, which may
// be a filesystem path.
func redactCookieSource(source string) string {
	browser, _, found := strings.Cut(source, ":")
	if !found {
		return source
	}
	return browser + ":***"
}

func containsArg(args []string, needle string) bool {
	for _, candidate := range args {
		trimmed := strings.TrimSpace(candidate)
		if trimmed == needle || strings.HasPrefix(trimmed, needle+"=") {
			return true
		}
	}
	return false
}
