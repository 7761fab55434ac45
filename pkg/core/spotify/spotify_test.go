package spotify

import "testing"

func TestIsTrackURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", true},
		{"https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=abcd", true},
		{"open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", true},
		{"spotify:track:4uLU6hMCjMI75M1A2tKUQC", true},
		{"https://open.spotify.com/album/4uLU6hMCjMI75M1A2tKUQC", false},
		{"https://soundcloud.com/a/b", false},
		{"not a url", false},
	}
	for _, tt := range tests {
		if got := IsTrackURL(tt.url); got != tt.want {
			t.Errorf("IsTrackURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestFirstArtist(t *testing.T) {
	tests := []struct {
		desc, want string
	}{
		{"Daft Punk, Pharrell Williams · Song · 2013", "Daft Punk"},
		{"Daft Punk · Song · 2013", "Daft Punk"},
		{"Solo Artist", "Solo Artist"},
	}
	for _, tt := range tests {
		if got := firstArtist(tt.desc); got != tt.want {
			t.Errorf("firstArtist(%q) = %q, want %q", tt.desc, got, tt.want)
		}
	}
}

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		meta Metadata
		want string
	}{
		{Metadata{Title: "Get Lucky", Artist: "Daft Punk"}, "Daft Punk Get Lucky"},
		{Metadata{Title: "Get Lucky (feat. Pharrell Williams)", Artist: "Daft Punk"}, "Daft Punk Get Lucky"},
		{Metadata{Title: "Song [2020 Remaster]", Artist: "A"}, "A Song"},
		{Metadata{Title: "Song - Single", Artist: "A"}, "A Song"},
	}
	for _, tt := range tests {
		if got := tt.meta.SearchQuery(); got != tt.want {
			t.Errorf("SearchQuery(%+v) = %q, want %q", tt.meta, got, tt.want)
		}
	}
}
