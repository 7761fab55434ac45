package handlers

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Laky-64/gologging"
	"github.com/amarnathcjd/gogram/telegram"
	"golang.org/x/time/rate"

	"github.com/scdlbot/scdl/pkg/config"
	"github.com/scdlbot/scdl/pkg/core"
	"github.com/scdlbot/scdl/pkg/core/cache"
	"github.com/scdlbot/scdl/pkg/core/soundcloud"
	"github.com/scdlbot/scdl/pkg/core/spotify"
)

// searchLimit is how many results an inline search shows.
const searchLimit = 10

// inlineSeq tracks the latest query sequence per user so that a debounced
// search can tell whether it has been superseded by further typing. The
// limiter caps how many queries per user actually reach the API.
var (
	inlineMu       sync.Mutex
	inlineSeq      = make(map[int64]uint64)
	inlineLimiters = make(map[int64]*rate.Limiter)
)

func inlineLimiter(userID int64) *rate.Limiter {
	inlineMu.Lock()
	defer inlineMu.Unlock()
	l, ok := inlineLimiters[userID]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Second), 5)
		inlineLimiters[userID] = l
	}
	return l
}

func bumpInlineSeq(userID int64) uint64 {
	inlineMu.Lock()
	defer inlineMu.Unlock()
	inlineSeq[userID]++
	return inlineSeq[userID]
}

func currentInlineSeq(userID int64) uint64 {
	inlineMu.Lock()
	defer inlineMu.Unlock()
	return inlineSeq[userID]
}

// inlineSearchHandler answers inline queries: free-text search (debounced),
// SoundCloud track and playlist links, and Spotify track links.
func inlineSearchHandler(iq *telegram.InlineQuery) error {
	query := strings.TrimSpace(iq.Query)
	if query == "" {
		return answerUsage(iq)
	}
	if !inlineLimiter(iq.SenderID).Allow() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case soundcloud.IsURL(query):
		return answerSoundCloudLink(ctx, iq, query)
	case spotify.IsTrackURL(query):
		return answerSpotifyLink(ctx, iq, query)
	}

	// Debounce: wait out the typing pause and drop the query if the user
	// kept typing in the meantime.
	seq := bumpInlineSeq(iq.SenderID)
	time.Sleep(config.Conf.SearchTimeout)
	if currentInlineSeq(iq.SenderID) != seq {
		return nil
	}

	tracks := soundcloud.Default.Search(ctx, query, searchLimit)
	return answerTracks(iq, tracks, "🔍 No tracks found for that query.")
}

// answerUsage shows the how-to article on an empty query.
func answerUsage(iq *telegram.InlineQuery) error {
	b := iq.Builder()
	b.Article(
		"🔍 Search SoundCloud",
		"Type a track name, or paste a SoundCloud / Spotify link",
		"Type a search query after my username to find tracks on SoundCloud.",
		&telegram.ArticleOptions{ID: "usage"},
	)
	_, err := iq.Answer(b.Results())
	return err
}

// answerSoundCloudLink resolves a pasted SoundCloud URL to a track or a
// playlist and answers with one article per track.
func answerSoundCloudLink(ctx context.Context, iq *telegram.InlineQuery, query string) error {
	res, err := soundcloud.Default.ResolveURL(ctx, soundcloud.FindURL(query))
	if err != nil {
		gologging.WarnF("inline: resolve %q failed: %v", query, err)
		return answerTracks(iq, nil, "❌ Could not resolve that link.")
	}

	switch {
	case res.Track != nil:
		return answerTracks(iq, []soundcloud.Track{*res.Track}, "❌ Could not resolve that link.")
	case res.Playlist != nil:
		tracks := playlistTracks(ctx, res.Playlist)
		if len(tracks) == 0 {
			return answerEmptyPlaylist(iq)
		}
		return answerTracks(iq, tracks, "❌ This playlist has no tracks.")
	default:
		return answerTracks(iq, nil, "❌ Could not resolve that link.")
	}
}

// playlistTracks returns the playlist's tracks with full data, capped at the
// configured limit. Playlist payloads carry only the first few tracks in
// full; the rest are id-only stubs that need a batch fetch.
func playlistTracks(ctx context.Context, pl *soundcloud.Playlist) []soundcloud.Track {
	limit := config.Conf.MaxPlaylistTracks
	src := pl.Tracks
	if len(src) > limit {
		src = src[:limit]
	}

	var stubIDs []int64
	for _, t := range src {
		if t.Title == "" {
			stubIDs = append(stubIDs, t.ID)
		}
	}

	fetched := make(map[int64]soundcloud.Track, len(stubIDs))
	if len(stubIDs) > 0 {
		full, err := soundcloud.Default.GetTracksBatch(ctx, stubIDs)
		if err != nil {
			gologging.WarnF("playlist %d: batch fetch of %d stubs failed: %v", pl.ID, len(stubIDs), err)
		}
		for _, t := range full {
			fetched[t.ID] = t
		}
	}

	out := make([]soundcloud.Track, 0, len(src))
	for _, t := range src {
		if t.Title == "" {
			full, ok := fetched[t.ID]
			if !ok {
				continue
			}
			t = full
		}
		out = append(out, t)
	}
	return soundcloud.FilterTracks(out)
}

// answerEmptyPlaylist shows a dead-end article for playlists whose tracks
// are all filtered out, with the same keyboard the no-tracks callback serves.
func answerEmptyPlaylist(iq *telegram.InlineQuery) error {
	const text = "😕 This playlist has no downloadable tracks."
	b := iq.Builder()
	b.Article("😕 Empty playlist", text, text, &telegram.ArticleOptions{
		ID:          "emptyplaylist",
		ReplyMarkup: core.EmptyPlaylistKeyboard(),
	})
	_, err := iq.Answer(b.Results())
	return err
}

// answerSpotifyLink scrapes the Spotify page and searches SoundCloud with the
// extracted artist and title.
func answerSpotifyLink(ctx context.Context, iq *telegram.InlineQuery, query string) error {
	meta, err := spotify.ExtractMetadata(query)
	if err != nil {
		gologging.WarnF("inline: spotify scrape %q failed: %v", query, err)
		return answerTracks(iq, nil, "❌ Could not read that Spotify link.")
	}

	searchQuery := meta.SearchQuery()
	cache.Sessions.RememberSpotifyURL(searchQuery, meta.URL)
	cache.Sessions.RememberSpotifyURL(query, meta.URL)

	tracks := soundcloud.Default.Search(ctx, searchQuery, searchLimit)
	return answerTracks(iq, tracks, "🔍 No SoundCloud match for that Spotify track.")
}

// answerTracks renders tracks as inline articles. Each article id is the
// track id; the chosen-result handler turns it back into a download job.
func answerTracks(iq *telegram.InlineQuery, tracks []soundcloud.Track, emptyText string) error {
	b := iq.Builder()
	if len(tracks) == 0 {
		b.Article("😕 Nothing found", emptyText, emptyText, &telegram.ArticleOptions{ID: "noresults"})
		_, err := iq.Answer(b.Results())
		return err
	}

	bot := iq.Client.Me().Username
	for _, track := range tracks {
		info := track.Info()
		b.Article(
			info.DisplayTitle,
			core.TrackDescription(info),
			core.TrackCaption(info, bot),
			&telegram.ArticleOptions{
				ID:          strconv.FormatInt(track.ID, 10),
				ParseMode:   "HTML",
				ReplyMarkup: core.TrackKeyboard(info.PermalinkURL, artistLink(info), true, track.ID),
			},
		)
	}

	_, err := iq.Answer(b.Results())
	return err
}

// artistLink builds the uploader profile URL, pinned to the user URN when the
// API provides one.
func artistLink(info soundcloud.TrackInfo) string {
	if info.UserURN != "" {
		return info.UserURL + "?urn=" + info.UserURN
	}
	return info.UserURL
}
