// Package spotify turns Spotify track links into SoundCloud search queries by
// scraping the public Open Graph tags of the track page. No Spotify API
// credentials are involved.
package spotify

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.3"

var httpc = &fasthttp.Client{
	Name:          userAgent,
	DialDualStack: true,
	ReadTimeout:   30 * time.Second,
	WriteTimeout:  15 * time.Second,
}

var (
	trackURLRegexes = []*regexp.Regexp{
		regexp.MustCompile(`^https?://open\.spotify\.com/track/[a-zA-Z0-9]+$`),
		regexp.MustCompile(`^spotify:track:[a-zA-Z0-9]+`),
		regexp.MustCompile(`^(?:https?://)?open\.spotify\.com/track/[a-zA-Z0-9]+$`),
	}

	ogTitleRegex = regexp.MustCompile(`<meta property="og:title" content="([^"]+)"`)
	ogDescRegex  = regexp.MustCompile(`<meta property="og:description" content="([^"]+)"`)

	featRegex      = regexp.MustCompile(`\s*\(feat\.[^)]*\)`)
	bracketRegex   = regexp.MustCompile(`\s*\[.*?\]`)
	suffixTagRegex = regexp.MustCompile(`\s*-\s*\w+\s*$`)
)

// ErrNoMetadata means the track page had no usable Open Graph tags.
var ErrNoMetadata = errors.New("no metadata on spotify page")

// Metadata is what a Spotify track page reveals about its song.
type Metadata struct {
	Title  string
	Artist string
	URL    string
}

// normalize strips query parameters and prepends https:// on bare
// open.spotify.com links.
func normalize(rawURL string) string {
	rawURL, _, _ = strings.Cut(rawURL, "?")
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") &&
		strings.Contains(rawURL, "open.spotify.com") {
		rawURL = "https://" + rawURL
	}
	return rawURL
}

// IsTrackURL reports whether the text is a Spotify track link in any of its
// accepted shapes (full URL, protocol-less, spotify: URI).
func IsTrackURL(rawURL string) bool {
	rawURL = normalize(rawURL)
	for _, re := range trackURLRegexes {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// ExtractMetadata fetches the Spotify track page and reads title and artist
// from its og:title / og:description meta tags. The description lists artists
// first ("A, B · Album · Song · 2021"); only the first artist is kept.
func ExtractMetadata(rawURL string) (*Metadata, error) {
	rawURL = normalize(rawURL)
	if !IsTrackURL(rawURL) {
		return nil, fmt.Errorf("not a spotify track url: %s", rawURL)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rawURL)
	req.Header.Set("User-Agent", userAgent)

	if err := httpc.DoRedirects(req, resp, 5); err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("spotify page: status %d", resp.StatusCode())
	}

	body, err := resp.BodyUncompressed()
	if err != nil {
		body = resp.Body()
	}

	title := ogTitleRegex.FindSubmatch(body)
	desc := ogDescRegex.FindSubmatch(body)
	if title == nil || desc == nil {
		return nil, ErrNoMetadata
	}

	return &Metadata{
		Title:  strings.TrimSpace(string(title[1])),
		Artist: firstArtist(string(desc[1])),
		URL:    rawURL,
	}, nil
}

// firstArtist extracts the leading artist from an og:description value.
func firstArtist(desc string) string {
	if first, _, ok := strings.Cut(desc, ", "); ok {
		return strings.TrimSpace(first)
	}
	first, _, _ := strings.Cut(desc, " · ")
	return strings.TrimSpace(first)
}

// SearchQuery builds a SoundCloud search query from Spotify metadata,
// dropping feat-credits, bracketed tags and trailing "- Single" style
// suffixes that rarely appear in SoundCloud titles.
func (m *Metadata) SearchQuery() string {
	title := featRegex.ReplaceAllString(m.Title, "")
	title = bracketRegex.ReplaceAllString(title, "")
	title = suffixTagRegex.ReplaceAllString(title, "")
	return strings.TrimSpace(m.Artist) + " " + strings.TrimSpace(title)
}
