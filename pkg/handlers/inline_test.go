package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/scdlbot/scdl/pkg/config"
	"github.com/scdlbot/scdl/pkg/core/soundcloud"
)

func TestInlineSeqSupersession(t *testing.T) {
	const user = int64(1001)

	first := bumpInlineSeq(user)
	second := bumpInlineSeq(user)
	if second <= first {
		t.Fatalf("sequence must grow: %d then %d", first, second)
	}
	if currentInlineSeq(user) != second {
		t.Fatal("an older query must see itself superseded")
	}
}

func TestInlineLimiterIsPerUser(t *testing.T) {
	a := inlineLimiter(2001)
	if inlineLimiter(2001) != a {
		t.Fatal("same user must get the same limiter")
	}
	if inlineLimiter(2002) == a {
		t.Fatal("distinct users must not share a limiter")
	}
	if !a.Allow() {
		t.Fatal("a fresh limiter must allow the first query")
	}
}

func TestPlaylistTracksCapAndFilter(t *testing.T) {
	config.Conf = &config.BotConfig{MaxPlaylistTracks: 2, SearchTimeout: 500 * time.Millisecond}

	pl := &soundcloud.Playlist{
		ID: 9,
		Tracks: []soundcloud.Track{
			{ID: 1, Kind: "track", Title: "One"},
			{ID: 2, Kind: "track", Title: "Two", Policy: soundcloud.PolicySnip},
			{ID: 3, Kind: "track", Title: "Three"},
		},
	}

	got := playlistTracks(context.Background(), pl)
	if len(got) != 1 {
		t.Fatalf("expected 1 track after cap and preview filter, got %d", len(got))
	}
	if got[0].ID != 1 {
		t.Fatalf("surviving track = %d, want 1", got[0].ID)
	}
}

func TestArtistLink(t *testing.T) {
	info := soundcloud.TrackInfo{UserURL: "https://soundcloud.com/artist"}
	if got := artistLink(info); got != "https://soundcloud.com/artist" {
		t.Fatalf("artistLink = %q", got)
	}
	info.UserURN = "soundcloud:users:42"
	if got := artistLink(info); got != "https://soundcloud.com/artist?urn=soundcloud:users:42" {
		t.Fatalf("artistLink with urn = %q", got)
	}
}
