package soundcloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/Laky-64/gologging"
	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/valyala/fasthttp"
)

// DownloadImage fetches an image and reports its bytes and content type.
func DownloadImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(imageURL)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br, zstd")

	if err := doWithRetry(ctx, req, resp); err != nil {
		return nil, "", err
	}
	if resp.StatusCode() != 200 {
		return nil, "", fmt.Errorf("image fetch: status %d", resp.StatusCode())
	}

	data, err := resp.BodyUncompressed()
	if err != nil {
		data = resp.Body()
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, string(resp.Header.Peek("Content-Type")), nil
}

// AddID3Tags writes title, artist, album, date, genre, description and the
// cover artwork into the file. Tagging is cosmetic: every failure logs and
// leaves the audio untouched.
func AddID3Tags(ctx context.Context, path string, t *Track) {
	info := t.Info()

	tag, err := id3v2.Open(path, id3v2.Options{Parse: false})
	if err != nil {
		gologging.WarnF("tags: cannot open %s: %v", path, err)
		return
	}
	defer tag.Close()

	tag.SetTitle(info.Title)
	tag.SetArtist(info.Artist)

	album := info.Artist
	if t.PublisherMetadata != nil {
		if t.PublisherMetadata.AlbumTitle != "" {
			album = t.PublisherMetadata.AlbumTitle
		} else if t.PublisherMetadata.ReleaseTitle != "" {
			album = t.PublisherMetadata.ReleaseTitle
		}
	}
	tag.SetAlbum(album)

	if t.Genre != "" {
		tag.SetGenre(t.Genre)
	}
	if date, _, ok := strings.Cut(t.CreatedAt, "T"); ok && len(date) >= 4 {
		tag.SetYear(date[:4])
	}

	if t.Description != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "Description",
			Text:        t.Description,
		})
	}

	if t.ArtworkURL != "" {
		data, mime, err := DownloadImage(ctx, HighQualityArtworkURL(t.ArtworkURL))
		if err != nil {
			gologging.WarnF("tags: artwork fetch failed for track %d: %v", t.ID, err)
		} else {
			tag.AddAttachedPicture(id3v2.PictureFrame{
				Encoding:    id3v2.EncodingUTF8,
				MimeType:    mime,
				PictureType: id3v2.PTFrontCover,
				Picture:     data,
			})
		}
	}

	if err := tag.Save(); err != nil {
		gologging.WarnF("tags: save failed for %s: %v", path, err)
	}
}
