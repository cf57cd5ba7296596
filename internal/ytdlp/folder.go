package ytdlp

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const UnknownPlaylistFolder = "Unknown Playlist"

// SanitizeFolderName makes a title safe as a single path element on every
// supported filesystem.
func SanitizeFolderName(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			b.WriteRune('_')
		case strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	cleaned := collapseRuns(b.String(), '_')
	cleaned = collapseRuns(cleaned, ' ')
	cleaned = strings.Trim(cleaned, " ._")
	if cleaned == "" {
		return "playlist"
	}
	return cleaned
}

// PlaylistFolderName is "<sanitized title> [<id>]". Without metadata the
// generic folder is used.
func PlaylistFolderName(title, id string) string {
	title = strings.TrimSpace(title)
	id = strings.TrimSpace(id)
	switch {
	case title == "" && id == "":
		return UnknownPlaylistFolder
	case id == "":
		return SanitizeFolderName(title)
	default:
		return SanitizeFolderName(title) + " [" + SanitizeFolderName(id) + "]"
	}
}

func collapseRuns(s string, r rune) string {
	var b strings.Builder
	previous := false
	for _, current := range s {
		if current == r {
			if previous {
				continue
			}
			previous = true
		} else {
			previous = false
		}
		b.WriteRune(current)
	}
	return b.String()
}
