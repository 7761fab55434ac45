package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Laky-64/gologging"
	"github.com/amarnathcjd/gogram/telegram"

	"github.com/scdlbot/scdl/pkg/core"
	"github.com/scdlbot/scdl/pkg/core/soundcloud"
	"github.com/scdlbot/scdl/pkg/core/spotify"
	"github.com/scdlbot/scdl/pkg/delivery"
)

// linkMessageHandler handles plain private messages. SoundCloud links
// resolve to a track or playlist, Spotify track links are matched via
// search, anything else gets a nudge towards inline mode.
func linkMessageHandler(m *telegram.NewMessage) error {
	if !m.IsPrivate() || m.IsCommand() {
		return nil
	}

	text := strings.TrimSpace(m.Text())
	if url := getUrl(m); url != "" && soundcloud.FindURL(text) == "" {
		text = url
	}
	if text == "" {
		return nil
	}

	switch {
	case soundcloud.FindURL(text) != "":
		return handleSoundCloudLink(m, soundcloud.FindURL(text))
	case spotify.IsTrackURL(text):
		return handleSpotifyLink(m, text)
	}

	_, err := m.Reply(
		"Send me a SoundCloud or Spotify track link, or search inline from any chat:",
		telegram.SendOptions{ReplyMarkup: core.StartKeyboard()},
	)
	return err
}

func handleSoundCloudLink(m *telegram.NewMessage, url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	res, err := soundcloud.Default.ResolveURL(ctx, url)
	if err != nil {
		if errors.Is(err, soundcloud.ErrNotFound) {
			_, _ = m.Reply("❌ That link does not point at a SoundCloud track or playlist.")
			return nil
		}
		gologging.WarnF("dm: resolve %q failed: %v", url, err)
		_, _ = m.Reply("❌ I could not resolve that link, try again later.")
		return nil
	}

	switch {
	case res.Track != nil:
		return deliverToChat(m, res.Track, "")
	case res.Playlist != nil:
		return replyPlaylist(ctx, m, res.Playlist)
	}
	_, _ = m.Reply("❌ That link does not point at a SoundCloud track or playlist.")
	return nil
}

// replyPlaylist lists the playlist's tracks with one download button each.
func replyPlaylist(ctx context.Context, m *telegram.NewMessage, pl *soundcloud.Playlist) error {
	tracks := playlistTracks(ctx, pl)
	if len(tracks) == 0 {
		_, err := m.Reply("😕 This playlist has no downloadable tracks.", telegram.SendOptions{
			ReplyMarkup: core.EmptyPlaylistKeyboard(),
		})
		return err
	}

	titles := make([]string, len(tracks))
	ids := make([]int64, len(tracks))
	for i, t := range tracks {
		info := t.Info()
		titles[i] = fmt.Sprintf("%s - %s", info.DisplayTitle, info.Artist)
		ids[i] = t.ID
	}

	header := fmt.Sprintf("🎵 <b>%s</b> — %d tracks. Pick one:", pl.Title, len(tracks))
	_, err := m.Reply(header, telegram.SendOptions{
		ParseMode:   "HTML",
		ReplyMarkup: core.PlaylistKeyboard(titles, ids, pl.PermalinkURL),
	})
	return err
}

func handleSpotifyLink(m *telegram.NewMessage, url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	meta, err := spotify.ExtractMetadata(url)
	if err != nil {
		gologging.WarnF("dm: spotify scrape %q failed: %v", url, err)
		_, _ = m.Reply("❌ I could not read that Spotify link.")
		return nil
	}

	tracks := soundcloud.Default.Search(ctx, meta.SearchQuery(), searchLimit)
	tracks = soundcloud.FilterTracks(tracks)
	if len(tracks) == 0 {
		_, _ = m.Reply("🔍 No SoundCloud match for that Spotify track.")
		return nil
	}
	return deliverToChat(m, &tracks[0], meta.URL)
}

// deliverToChat runs the private-chat delivery in the background so the
// update loop is not held for the length of a download.
func deliverToChat(m *telegram.NewMessage, track *soundcloud.Track, spotifyURL string) error {
	chatID := m.ChatID()
	client := m.Client
	trackID := track.ID
	go func() {
		if err := delivery.SendTrack(client, chatID, track, spotifyURL); err != nil {
			gologging.WarnF("dm: delivery of track %d failed: %v", trackID, err)
		}
	}()
	return nil
}
