package soundcloud

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Laky-64/gologging"
)

// maxThumbnailBytes is Telegram's audio thumbnail ceiling with a safety margin.
const maxThumbnailBytes = 200 * 1024

// mjpeg qualities tried in order until the thumbnail fits. Lower is better
// on ffmpeg's 2..31 scale, so this walks from near-lossless to heavy crush.
var thumbQualities = []int{2, 5, 8, 12, 16, 20, 25, 31}

// PrepareThumbnail downloads track artwork and produces a Telegram-compatible
// thumbnail: JPEG, at most 320x320, under 200 KiB. It returns the path of the
// generated file, or "" when the track has no artwork or processing fails.
// The caller owns cleanup of the returned file.
func PrepareThumbnail(ctx context.Context, t *Track, workDir string) string {
	if t.ArtworkURL == "" {
		return ""
	}

	data, _, err := DownloadImage(ctx, LowQualityArtworkURL(t.ArtworkURL))
	if err != nil {
		gologging.WarnF("thumbnail: artwork fetch failed for track %d: %v", t.ID, err)
		return ""
	}

	src := filepath.Join(workDir, fmt.Sprintf("%d.art", t.ID))
	if err := os.WriteFile(src, data, 0644); err != nil {
		gologging.WarnF("thumbnail: %v", err)
		return ""
	}
	defer os.Remove(src)

	dst := filepath.Join(workDir, fmt.Sprintf("%d.thumb.jpg", t.ID))
	for _, q := range thumbQualities {
		_, err := runFFmpeg(ctx,
			"-i", src,
			"-vf", "scale=320:320:force_original_aspect_ratio=decrease",
			"-q:v", fmt.Sprintf("%d", q),
			"-frames:v", "1",
			dst,
		)
		if err != nil {
			gologging.WarnF("thumbnail: ffmpeg failed for track %d: %v", t.ID, err)
			os.Remove(dst)
			return ""
		}

		fi, err := os.Stat(dst)
		if err == nil && fi.Size() <= maxThumbnailBytes {
			return dst
		}
	}

	// Even the crushed rendition is oversized; better no thumb than a reject.
	os.Remove(dst)
	return ""
}
