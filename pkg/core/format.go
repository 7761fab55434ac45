// Package core holds the formatting and keyboard surfaces shared by every
// handler and the delivery pipeline.
package core

import (
	"fmt"
	"html"
	"strings"

	"github.com/scdlbot/scdl/pkg/core/soundcloud"
)

// noEmbed inserts a zero-width non-joiner after the scheme so Telegram keeps
// the link clickable but never renders a preview for it.
func noEmbed(url string) string {
	return strings.Replace(url, "://", "://\u200c", 1)
}

// TrackCaption is the caption under a delivered audio: track link, optional
// Spotify back-link, optional artwork link, bot attribution.
func TrackCaption(info soundcloud.TrackInfo, botUsername string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "♫ <a href='%s'>Link</a>", noEmbed(info.PermalinkURL))

	if info.SpotifyURL != "" {
		fmt.Fprintf(&b, " | ✷ <a href='%s'>Spotify</a>", noEmbed(info.SpotifyURL))
	}
	if info.ArtworkURL != "" {
		hq := soundcloud.HighQualityArtworkURL(info.ArtworkURL)
		fmt.Fprintf(&b, " | ꕤ <a href='%s'>Artwork</a>", noEmbed(hq))
	}

	fmt.Fprintf(&b, " | ✿ @%s", botUsername)
	return b.String()
}

// trackLine renders the linked "Title - Artist" line shared by the status
// captions.
func trackLine(info soundcloud.TrackInfo) string {
	return fmt.Sprintf("♫ <a href='%s'><b>%s</b> - <b>%s</b></a>",
		noEmbed(info.PermalinkURL), html.EscapeString(info.Title), html.EscapeString(info.Artist))
}

// ErrorCaption renders a failure message above the track line.
func ErrorCaption(message string, info soundcloud.TrackInfo) string {
	return fmt.Sprintf("❌ <b>%s</b>\n\n%s", html.EscapeString(message), trackLine(info))
}

// SuccessCaption renders a success message above the track line.
func SuccessCaption(message string, info soundcloud.TrackInfo) string {
	return fmt.Sprintf("✅ <b>%s</b>\n\n%s", html.EscapeString(message), trackLine(info))
}

// TrackDescription is the inline result description: artist plus duration.
func TrackDescription(info soundcloud.TrackInfo) string {
	return fmt.Sprintf("%s · %s", info.Artist, FormatDuration(info.Duration))
}

// FormatDuration renders milliseconds as M:SS or H:MM:SS.
func FormatDuration(ms int64) string {
	total := ms / 1000
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Filename builds the on-disk name for a downloaded track.
func Filename(info soundcloud.TrackInfo) string {
	name := fmt.Sprintf("%s - %s", info.Artist, info.Title)
	name = sanitizeFilename(name)
	return fmt.Sprintf("%s [%d].mp3", name, info.ID)
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	name = replacer.Replace(name)
	return strings.TrimSpace(name)
}
