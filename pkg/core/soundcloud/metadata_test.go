package soundcloud

import "testing"

func TestExtractArtistTitle(t *testing.T) {
	tests := []struct {
		raw    string
		artist string
		title  string
	}{
		{"Daft Punk - One More Time", "Daft Punk", "One More Time"},
		{"Daft Punk — One More Time", "Daft Punk", "One More Time"},
		{"Daft Punk − One More Time", "Daft Punk", "One More Time"}, // minus sign
		{"Daft Punk ― One More Time", "Daft Punk", "One More Time"}, // horizontal bar
		{"Daft Punk- One More Time", "Daft Punk", "One More Time"},
		{"Daft Punk -One More Time", "Daft Punk", "One More Time"},
		{"Daft Punk-One More Time", "Daft Punk", "One More Time"},
		// A tier matching twice is ambiguous and aborts extraction.
		{"A - B - C", "", "A - B - C"},
		{"No Separator Here", "", "No Separator Here"},
		{" - Only Title", "", " - Only Title"},
	}

	for _, tt := range tests {
		artist, title := ExtractArtistTitle(tt.raw)
		if artist != tt.artist || title != tt.title {
			t.Errorf("ExtractArtistTitle(%q) = (%q, %q), want (%q, %q)",
				tt.raw, artist, title, tt.artist, tt.title)
		}
	}
}

func TestRemoveSkipMarkers(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Song (skip to 1:23)", "Song"},
		{"Song [Skip To 12:34:56] end", "Song end"},
		{"skip to 0:45 Intro", "Intro"},
		{"Plain Title", "Plain Title"},
	}
	for _, tt := range tests {
		if got := RemoveSkipMarkers(tt.in); got != tt.want {
			t.Errorf("RemoveSkipMarkers(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanTitleIfContainsArtist(t *testing.T) {
	tests := []struct {
		title, artist, want string
	}{
		{"Daft Punk - One More Time", "Daft Punk", "One More Time"},
		{"daft punk — One More Time", "Daft Punk", "One More Time"},
		// Prefix without a dash after it is not a redundant credit.
		{"Daft Punky Stuff", "Daft Punk", "Daft Punky Stuff"},
		{"Daft Punk", "Daft Punk", "Daft Punk"},
		{"One More Time", "", "One More Time"},
	}
	for _, tt := range tests {
		if got := CleanTitleIfContainsArtist(tt.title, tt.artist); got != tt.want {
			t.Errorf("CleanTitleIfContainsArtist(%q, %q) = %q, want %q",
				tt.title, tt.artist, got, tt.want)
		}
	}
}

func TestTrackInfoArtistPrecedence(t *testing.T) {
	tr := Track{
		ID:    1,
		Title: "Uploader Name - Real Song",
		User:  User{Username: "uploader"},
	}
	info := tr.Info()
	if info.Artist != "Uploader Name" || info.Title != "Real Song" {
		t.Fatalf("title extraction should win: got %q / %q", info.Artist, info.Title)
	}

	tr = Track{
		ID:                2,
		Title:             "Just A Song",
		PublisherMetadata: &PublisherMetadata{Artist: "Label Artist"},
		User:              User{Username: "uploader"},
	}
	info = tr.Info()
	if info.Artist != "Label Artist" {
		t.Fatalf("publisher metadata should beat uploader: got %q", info.Artist)
	}

	tr = Track{ID: 3, Title: "Just A Song", User: User{Username: "uploader"}}
	info = tr.Info()
	if info.Artist != "uploader" {
		t.Fatalf("uploader should be the fallback artist: got %q", info.Artist)
	}
}
