package soundcloud

import "testing"

func TestFindURL(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"check https://soundcloud.com/artist/track out", "https://soundcloud.com/artist/track"},
		{"https://m.soundcloud.com/artist/track", "https://m.soundcloud.com/artist/track"},
		{"https://on.soundcloud.com/abc123", "https://on.soundcloud.com/abc123"},
		{"no link here", ""},
		{"https://example.com/soundcloud", ""},
	}
	for _, tt := range tests {
		if got := FindURL(tt.text); got != tt.want {
			t.Errorf("FindURL(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestIsSetURL(t *testing.T) {
	if !IsSetURL("https://soundcloud.com/artist/sets/my-playlist") {
		t.Error("sets link should be detected as a playlist")
	}
	if IsSetURL("https://soundcloud.com/artist/track") {
		t.Error("track link must not be detected as a playlist")
	}
}

func TestHighQualityArtworkURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://i1.sndcdn.com/artworks-abc-large.jpg", "https://i1.sndcdn.com/artworks-abc-t1080x1080.jpg"},
		{"https://i1.sndcdn.com/artworks-abc-large.png", "https://i1.sndcdn.com/artworks-abc-t1080x1080.png"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := HighQualityArtworkURL(tt.in); got != tt.want {
			t.Errorf("HighQualityArtworkURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLowQualityArtworkURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://i1.sndcdn.com/artworks-abc-t1080x1080.jpg", "https://i1.sndcdn.com/artworks-abc-large.jpg"},
		{"https://i1.sndcdn.com/artworks-abc-t500x500.jpg", "https://i1.sndcdn.com/artworks-abc-large.jpg"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := LowQualityArtworkURL(tt.in); got != tt.want {
			t.Errorf("LowQualityArtworkURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
