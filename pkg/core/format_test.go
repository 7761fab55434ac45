package core

import (
	"strings"
	"testing"

	"github.com/scdlbot/scdl/pkg/core/soundcloud"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0:00"},
		{5000, "0:05"},
		{65000, "1:05"},
		{600000, "10:00"},
		{3661000, "1:01:01"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.ms); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestFilename(t *testing.T) {
	info := soundcloud.TrackInfo{ID: 5, Artist: "A/B", Title: "C:D?"}
	if got := Filename(info); got != "A_B - C_D_ [5].mp3" {
		t.Fatalf("Filename = %q", got)
	}
}

func TestNoEmbed(t *testing.T) {
	got := noEmbed("https://soundcloud.com/a/b")
	if got == "https://soundcloud.com/a/b" {
		t.Fatal("noEmbed should alter the URL")
	}
	if !strings.Contains(got, "\u200c") {
		t.Fatal("noEmbed should insert a zero-width non-joiner")
	}
	if !strings.HasPrefix(got, "https://") {
		t.Fatalf("scheme must stay intact: %q", got)
	}
}

func TestTrackCaptionEscapesNothingButLinks(t *testing.T) {
	info := soundcloud.TrackInfo{
		Title:        "Song",
		Artist:       "Artist",
		PermalinkURL: "https://soundcloud.com/a/b",
		ArtworkURL:   "https://i1.sndcdn.com/artworks-x-large.jpg",
	}
	caption := TrackCaption(info, "scdlbot")
	if !strings.Contains(caption, "@scdlbot") {
		t.Fatal("caption should carry the bot attribution")
	}
	if !strings.Contains(caption, "\u200c") {
		t.Fatal("caption links must be embed-suppressed")
	}
}

func TestTrackDescription(t *testing.T) {
	info := soundcloud.TrackInfo{Artist: "A", Duration: 65000}
	if got := TrackDescription(info); got != "A · 1:05" {
		t.Fatalf("TrackDescription = %q", got)
	}
}
