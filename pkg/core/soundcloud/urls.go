package soundcloud

import (
	"regexp"
	"strings"
)

var (
	trackURLRegex = regexp.MustCompile(`https?://(?:www\.|m\.|on\.)?soundcloud\.com/[^\s<>"']+`)
	setURLRegex   = regexp.MustCompile(`https?://(?:www\.|m\.)?soundcloud\.com/[^/\s]+/sets/[^\s<>"']+`)
)

// FindURL returns the first SoundCloud URL in text, or "".
func FindURL(text string) string {
	return trackURLRegex.FindString(text)
}

// IsURL reports whether text contains any SoundCloud link.
func IsURL(text string) bool {
	return trackURLRegex.MatchString(text)
}

// IsSetURL reports whether text contains a playlist (set) link.
func IsSetURL(text string) bool {
	return setURLRegex.MatchString(text)
}

// HighQualityArtworkURL upgrades an artwork URL to its 1080x1080 rendition.
// Older URLs end in "large.jpg"; newer ones carry "-large" mid-path.
func HighQualityArtworkURL(artworkURL string) string {
	if artworkURL == "" {
		return ""
	}
	if strings.HasSuffix(artworkURL, "large.jpg") {
		return strings.Replace(artworkURL, "large.jpg", "t1080x1080.jpg", 1)
	}
	return strings.Replace(artworkURL, "-large", "-t1080x1080", 1)
}

// LowQualityArtworkURL downgrades an artwork URL back to the small "large"
// (100x100) rendition, used for thumbnails where a big image is wasted bytes.
func LowQualityArtworkURL(artworkURL string) string {
	if artworkURL == "" {
		return ""
	}
	if strings.Contains(artworkURL, "t1080x1080") {
		return strings.Replace(artworkURL, "t1080x1080", "large", 1)
	}
	return strings.Replace(artworkURL, "t500x500", "large", 1)
}
