package core

import (
	"fmt"

	"github.com/amarnathcjd/gogram/telegram"
)

// Callback data understood by the callback handler.
const (
	CbDownloadStatus = "download_status"
	CbErrorInfo      = "error_info"
	CbPermissionInfo = "permission_info"
	CbTooManyErrors  = "too_many_errors"
	CbNoTracks       = "no_tracks"
)

// DownloadPrefix + track id is the retry/download callback.
const DownloadPrefix = "download:"

// DownloadBtn triggers (or retries) a download of the given track.
func DownloadBtn(text string, trackID int64) *telegram.KeyboardButtonCallback {
	return telegram.Button.Data(text, fmt.Sprintf("%s%d", DownloadPrefix, trackID))
}

// TryAgainBtn retries a failed download.
func TryAgainBtn(trackID int64) *telegram.KeyboardButtonCallback {
	return DownloadBtn("🔄 Try Again", trackID)
}

// SoundCloudBtn links to the track page.
func SoundCloudBtn(url string) *telegram.KeyboardButtonURL {
	return telegram.Button.URL("🔊 SoundCloud", url)
}

// ArtistBtn links to the uploader profile.
func ArtistBtn(url string) *telegram.KeyboardButtonURL {
	return telegram.Button.URL("👤 Artist", url)
}

// StartChatBtn deep-links into a private chat with the bot so it gains
// permission to message the user.
func StartChatBtn(username string) *telegram.KeyboardButtonURL {
	return telegram.Button.URL("💬 Send /start", fmt.Sprintf("https://t.me/%s?start=open_dms", username))
}

// ProgressKeyboard shows the current delivery stage as a single inert button.
// Stages: "downloading" (default), "checking_silence", "removing_silence".
func ProgressKeyboard(stage string) *telegram.ReplyInlineMarkup {
	var text string
	switch stage {
	case "removing_silence":
		text = "✂️ Removing silence..."
	case "checking_silence":
		text = "🔍 Checking audio..."
	default:
		text = "⬇️ Downloading..."
	}

	return telegram.NewKeyboard().
		AddRow(telegram.Button.Data(text, CbDownloadStatus)).
		Build()
}

// TrackKeyboard is the resting keyboard under a delivered or pending track.
func TrackKeyboard(permalinkURL, artistURL string, pending bool, trackID int64) *telegram.ReplyInlineMarkup {
	kb := telegram.NewKeyboard().
		AddRow(SoundCloudBtn(permalinkURL), ArtistBtn(artistURL))
	if pending {
		kb.AddRow(DownloadBtn("⬇️ Download", trackID))
	}
	return kb.Build()
}

// ErrorKeyboard offers a retry plus a short error label. Permission errors
// get a lock icon and route to the permission explainer.
func ErrorKeyboard(permalinkURL string, trackID int64, permission bool, message string) *telegram.ReplyInlineMarkup {
	prefix, data := "❌ ", CbErrorInfo
	if permission {
		prefix, data = "🔒 ", CbPermissionInfo
	}
	if r := []rune(message); len(r) > 25 {
		message = string(r[:25]) + "..."
	}

	return telegram.NewKeyboard().
		AddRow(SoundCloudBtn(permalinkURL)).
		AddRow(TryAgainBtn(trackID)).
		AddRow(telegram.Button.Data(prefix+message, data)).
		Build()
}

// TooManyErrorsKeyboard replaces the retry button once a track has failed
// repeatedly, leaving only the track link and a dead-end explainer.
func TooManyErrorsKeyboard(permalinkURL string) *telegram.ReplyInlineMarkup {
	return telegram.NewKeyboard().
		AddRow(SoundCloudBtn(permalinkURL)).
		AddRow(telegram.Button.Data("❌ Too Many Errors - Try Different Track", CbTooManyErrors)).
		Build()
}

// PermissionKeyboard asks the user to open a private chat first.
func PermissionKeyboard(username string) *telegram.ReplyInlineMarkup {
	return telegram.NewKeyboard().
		AddRow(telegram.Button.Data("🔒 Permission Required", CbPermissionInfo)).
		AddRow(StartChatBtn(username)).
		Build()
}

// EmptyPlaylistKeyboard marks an inline playlist result with no usable tracks.
func EmptyPlaylistKeyboard() *telegram.ReplyInlineMarkup {
	return telegram.NewKeyboard().
		AddRow(telegram.Button.Data("❌ No tracks available", CbNoTracks)).
		Build()
}

// StartKeyboard is sent with /start: a tap-to-search button plus a pointer to
// an external tag editor bot.
func StartKeyboard() *telegram.ReplyInlineMarkup {
	search := &telegram.KeyboardButtonSwitchInline{
		Text:     "🔍 Click here to start searching",
		Query:    "drain gang",
		SamePeer: true,
	}

	return telegram.NewKeyboard().
		AddRow(search).
		AddRow(telegram.Button.URL("🏷️ Edit ID3 Tags with @id3_robot", "https://t.me/id3_robot?start=dlmus")).
		Build()
}

// PlaylistKeyboard lists playlist tracks as numbered download buttons with
// the playlist link at the bottom.
func PlaylistKeyboard(titles []string, ids []int64, permalinkURL string) *telegram.ReplyInlineMarkup {
	kb := telegram.NewKeyboard()
	for i := range titles {
		title := titles[i]
		if r := []rune(title); len(r) > 30 {
			title = string(r[:27]) + "..."
		}
		kb.AddRow(DownloadBtn(fmt.Sprintf("%d. %s", i+1, title), ids[i]))
	}
	kb.AddRow(SoundCloudBtn(permalinkURL))
	return kb.Build()
}
