package soundcloud

import (
	"errors"
	"fmt"
	"strings"
)

// Policy values a track can carry. "SNIP" marks a Go+ preview-only track.
const (
	PolicySnip  = "SNIP"
	PolicyBlock = "BLOCK"
)

// Protocols a transcoding can use.
const (
	ProtocolProgressive = "progressive"
	ProtocolHLS         = "hls"
)

var (
	// ErrGoPlus marks a premium preview-only track that must never be downloaded.
	ErrGoPlus = errors.New("track is a Go+ preview")
	// ErrNoStream is returned when no transcoding could be exchanged for a working stream URL.
	ErrNoStream = errors.New("no playable stream found")
	// ErrAuth is returned when the credential is still rejected after a refresh.
	ErrAuth = errors.New("soundcloud rejected the client id")
	// ErrNotFound is returned when the API has no resource for the given id or URL.
	ErrNotFound = errors.New("resource not found")
)

// User is the uploader of a track.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PermalinkURL string `json:"permalink_url"`
	URN          string `json:"urn"`
}

// Format describes the container of one transcoding.
type Format struct {
	Protocol string `json:"protocol"`
	MimeType string `json:"mime_type"`
}

// Transcoding is one (format, quality, protocol) rendition of a track.
// Its URL must be exchanged (with client id and track authorization) for a
// temporary signed stream URL before it can be downloaded.
type Transcoding struct {
	URL     string `json:"url"`
	Preset  string `json:"preset"`
	Format  Format `json:"format"`
	Quality string `json:"quality"`
}

// Media holds all transcodings of a track.
type Media struct {
	Transcodings []Transcoding `json:"transcodings"`
}

// PublisherMetadata carries the label-supplied artist and release info, when present.
type PublisherMetadata struct {
	Artist       string `json:"artist"`
	ReleaseTitle string `json:"release_title"`
	AlbumTitle   string `json:"album_title"`
	Explicit     bool   `json:"explicit"`
}

// Track is the raw API-v2 track payload, fetched fresh per request and never persisted.
type Track struct {
	ID                 int64              `json:"id"`
	Kind               string             `json:"kind"`
	Title              string             `json:"title"`
	ArtworkURL         string             `json:"artwork_url"`
	PermalinkURL       string             `json:"permalink_url"`
	Duration           int64              `json:"duration"`
	FullDuration       int64              `json:"full_duration"`
	Downloadable       bool               `json:"downloadable"`
	HasDownloadsLeft   bool               `json:"has_downloads_left"`
	Policy             string             `json:"policy"`
	MonetizationModel  string             `json:"monetization_model"`
	WaveformURL        string             `json:"waveform_url"`
	TrackAuthorization string             `json:"track_authorization"`
	Genre              string             `json:"genre"`
	Description        string             `json:"description"`
	CreatedAt          string             `json:"created_at"`
	Media              Media              `json:"media"`
	PublisherMetadata  *PublisherMetadata `json:"publisher_metadata"`
	User               User               `json:"user"`
}

// Playlist is the raw API-v2 playlist payload. Only the first few tracks come
// with full data; the rest are id-only stubs that need a batch fetch.
type Playlist struct {
	ID           int64   `json:"id"`
	Kind         string  `json:"kind"`
	Title        string  `json:"title"`
	PermalinkURL string  `json:"permalink_url"`
	TrackCount   int     `json:"track_count"`
	Tracks       []Track `json:"tracks"`
}

// Stream is the response of a transcoding URL exchange.
type Stream struct {
	URL string `json:"url"`
}

// SilenceSection is one contiguous silent run, as percentages of the track.
type SilenceSection struct {
	StartPct float64
	EndPct   float64
	SizePct  float64
}

// SilenceAnalysis summarizes the waveform silence scan of a track.
type SilenceAnalysis struct {
	HasSilence        bool
	SilencePercentage float64
	Sections          []SilenceSection
}

// TrackInfo is the normalized view of a track used by every delivery surface.
type TrackInfo struct {
	ID           int64
	Title        string
	Artist       string
	DisplayTitle string
	Duration     int64 // milliseconds
	ArtworkURL   string
	PermalinkURL string
	WaveformURL  string
	IsGoPlus     bool
	IsSnipped    bool
	URN          string
	UserURL      string
	UserURN      string
	SpotifyURL   string
	Silence      *SilenceAnalysis
}

// IsSnip reports whether the track is a premium preview.
func (t *Track) IsSnip() bool {
	return t.Policy == PolicySnip || t.MonetizationModel == "SUB_HIGH_TIER"
}

// Info normalizes a raw track into the view the bot works with.
// Artist precedence: extracted-from-title, then publisher metadata, then uploader username.
func (t *Track) Info() TrackInfo {
	title := RemoveSkipMarkers(t.Title)
	artist, extracted := ExtractArtistTitle(title)
	if artist == "" {
		if t.PublisherMetadata != nil && t.PublisherMetadata.Artist != "" {
			artist = t.PublisherMetadata.Artist
		} else {
			artist = t.User.Username
		}
		title = CleanTitleIfContainsArtist(title, artist)
	} else {
		title = extracted
	}

	display := strings.TrimSpace(title)
	if display == "" {
		display = "Untitled Track"
	}

	return TrackInfo{
		ID:           t.ID,
		Title:        display,
		Artist:       artist,
		DisplayTitle: display,
		Duration:     t.Duration,
		ArtworkURL:   t.ArtworkURL,
		PermalinkURL: t.PermalinkURL,
		WaveformURL:  t.WaveformURL,
		IsGoPlus:     t.IsSnip(),
		IsSnipped:    t.FullDuration > t.Duration,
		URN:          fmt.Sprintf("soundcloud:tracks:%d", t.ID),
		UserURL:      t.User.PermalinkURL,
		UserURN:      t.User.URN,
	}
}
