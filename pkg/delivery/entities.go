package delivery

import (
	"strings"
	"unicode/utf16"

	"github.com/amarnathcjd/gogram/telegram"

	"github.com/scdlbot/scdl/pkg/core/soundcloud"
)

// captionBuilder assembles plain text plus explicit MessageEntity offsets.
// Inline message edits go through the raw MTProto call, which takes no parse
// mode, so link and bold entities are computed here instead of from HTML.
type captionBuilder struct {
	text     strings.Builder
	utf16Len int32
	entities []telegram.MessageEntity
}

func (b *captionBuilder) plain(s string) *captionBuilder {
	b.text.WriteString(s)
	b.utf16Len += utf16Length(s)
	return b
}

func (b *captionBuilder) link(label, url string) *captionBuilder {
	b.entities = append(b.entities, &telegram.MessageEntityTextURL{
		Offset: b.utf16Len,
		Length: utf16Length(label),
		URL:    url,
	})
	return b.plain(label)
}

func (b *captionBuilder) bold(s string) *captionBuilder {
	b.entities = append(b.entities, &telegram.MessageEntityBold{
		Offset: b.utf16Len,
		Length: utf16Length(s),
	})
	return b.plain(s)
}

func (b *captionBuilder) build() (string, []telegram.MessageEntity) {
	return b.text.String(), b.entities
}

func utf16Length(s string) int32 {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return int32(n)
}

// audioCaption is the caption attached to a delivered inline audio: track
// link, optional Spotify back-link, optional artwork link, bot attribution.
func audioCaption(info soundcloud.TrackInfo, botUsername string) (string, []telegram.MessageEntity) {
	b := &captionBuilder{}
	b.plain("♫ ").link("Link", info.PermalinkURL)

	if info.SpotifyURL != "" {
		b.plain(" | ✷ ").link("Spotify", info.SpotifyURL)
	}
	if info.ArtworkURL != "" {
		b.plain(" | ꕤ ").link("Artwork", soundcloud.HighQualityArtworkURL(info.ArtworkURL))
	}

	b.plain(" | ✿ @" + botUsername)
	return b.build()
}

// statusText renders "<prefix> message" above a linked bold track line, the
// shared shape of error and progress captions on inline messages.
func statusText(prefix, message string, info soundcloud.TrackInfo) (string, []telegram.MessageEntity) {
	b := &captionBuilder{}
	if message != "" {
		b.plain(prefix + " ").bold(message).plain("\n\n")
	}
	b.plain("♫ ")

	line := info.Title + " - " + info.Artist
	b.entities = append(b.entities, &telegram.MessageEntityTextURL{
		Offset: b.utf16Len,
		Length: utf16Length(line),
		URL:    info.PermalinkURL,
	})
	b.bold(line)
	return b.build()
}
