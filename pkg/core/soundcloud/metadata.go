package soundcloud

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// The five dash runes treated as equivalent artist/title separators.
const dashClass = `[-\x{2212}\x{2013}\x{2014}\x{2015}]`

// Separator tiers, tried in order. A tier that matches more than once makes
// the title ambiguous and aborts extraction entirely; later tiers are only
// reached when the current one matches zero times.
var separatorTiers = []*regexp.Regexp{
	regexp.MustCompile(` ` + dashClass + ` `),  // space-padded
	regexp.MustCompile(`\S` + dashClass + ` `), // trailing space only
	regexp.MustCompile(` ` + dashClass + `\S`), // leading space only
	regexp.MustCompile(dashClass),              // bare dash fallback
}

var (
	skipMarkerRegex = regexp.MustCompile(`(?i)[(\[{]?\s*skip\s*to\s*\d{1,2}:\d{2}(?::\d{2})?\s*[)\]}]?`)
	multiSpaceRegex = regexp.MustCompile(`\s{2,}`)
)

// ExtractArtistTitle derives an (artist, title) pair from a raw track title.
// It returns ("", raw) when no unambiguous separator exists: a tier with two
// or more separator occurrences aborts instead of trying the next tier.
func ExtractArtistTitle(raw string) (artist, title string) {
	for _, tier := range separatorTiers {
		matches := tier.FindAllStringIndex(raw, -1)
		if len(matches) == 0 {
			continue
		}
		if len(matches) > 1 {
			return "", raw
		}

		// The tier patterns may include one anchoring rune on either side of
		// the dash; locate the dash itself inside the match.
		seg := raw[matches[0][0]:matches[0][1]]
		off := strings.IndexAny(seg, "-−–—―")
		dashAt := matches[0][0] + off
		_, dashLen := utf8.DecodeRuneInString(raw[dashAt:])

		left := strings.TrimSpace(raw[:dashAt])
		right := strings.TrimSpace(raw[dashAt+dashLen:])
		if left == "" || right == "" {
			return "", raw
		}
		return left, right
	}
	return "", raw
}

// CleanTitleIfContainsArtist strips a redundant leading "Artist - " prefix
// from a title when the artist is already known from metadata.
func CleanTitleIfContainsArtist(title, artist string) string {
	if artist == "" {
		return title
	}

	lower := strings.ToLower(title)
	prefix := strings.ToLower(artist)
	if !strings.HasPrefix(lower, prefix) {
		return title
	}

	rest := strings.TrimLeft(title[len(artist):], " ")
	if rest == "" {
		return title
	}
	r, size := utf8.DecodeRuneInString(rest)
	if !isDash(r) {
		return title
	}
	cleaned := strings.TrimSpace(rest[size:])
	if cleaned == "" {
		return title
	}
	return cleaned
}

func isDash(r rune) bool {
	switch r {
	case '-', '–', '—', '−', '―':
		return true
	}
	return false
}

// RemoveSkipMarkers strips "skip to MM:SS" annotations in any bracket style
// and collapses the whitespace left behind.
func RemoveSkipMarkers(s string) string {
	cleaned := skipMarkerRegex.ReplaceAllString(s, " ")
	cleaned = multiSpaceRegex.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
