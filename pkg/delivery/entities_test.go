package delivery

import (
	"testing"

	"github.com/amarnathcjd/gogram/telegram"

	"github.com/scdlbot/scdl/pkg/core/soundcloud"
)

func TestUtf16Length(t *testing.T) {
	tests := []struct {
		s    string
		want int32
	}{
		{"", 0},
		{"abc", 3},
		{"♫", 1},
		{"😀", 2}, // astral plane, surrogate pair
		{"a😀b", 4},
	}
	for _, tt := range tests {
		if got := utf16Length(tt.s); got != tt.want {
			t.Errorf("utf16Length(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
}

func TestCaptionBuilderOffsets(t *testing.T) {
	b := &captionBuilder{}
	b.plain("♫ ").link("Link", "https://example.com").plain(" | ").bold("Loud")
	text, ents := b.build()

	if text != "♫ Link | Loud" {
		t.Fatalf("text = %q", text)
	}
	if len(ents) != 2 {
		t.Fatalf("entities = %d, want 2", len(ents))
	}

	link, ok := ents[0].(*telegram.MessageEntityTextURL)
	if !ok || link.Offset != 2 || link.Length != 4 || link.URL != "https://example.com" {
		t.Fatalf("link entity = %+v", ents[0])
	}

	bold, ok := ents[1].(*telegram.MessageEntityBold)
	if !ok || bold.Offset != 9 || bold.Length != 4 {
		t.Fatalf("bold entity = %+v", ents[1])
	}
}

func TestAudioCaptionSpotifyLink(t *testing.T) {
	info := soundcloud.TrackInfo{
		PermalinkURL: "https://soundcloud.com/a/b",
		ArtworkURL:   "https://i1.sndcdn.com/artworks-x-large.jpg",
		SpotifyURL:   "https://open.spotify.com/track/abc",
	}
	_, ents := audioCaption(info, "scdlbot")

	var urls []string
	for _, e := range ents {
		if l, ok := e.(*telegram.MessageEntityTextURL); ok {
			urls = append(urls, l.URL)
		}
	}

	found := false
	for _, u := range urls {
		if u == info.SpotifyURL {
			found = true
		}
	}
	if !found {
		t.Fatalf("caption should link the Spotify source, got %v", urls)
	}
}
