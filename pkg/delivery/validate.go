package delivery

import (
	"context"
	"fmt"
	"os"

	"github.com/scdlbot/scdl/pkg/core/soundcloud"
)

const (
	minValidSize     = 1024 // bytes
	minValidDuration = 0.1  // seconds
	minTrackDuration = 1000 // milliseconds, per track metadata
)

// Validate runs the mandatory gates on a downloaded file before upload.
// Every returned error wraps ErrValidation with the specific gate message.
func Validate(ctx context.Context, path string, trackDurationMs int64) error {
	if trackDurationMs <= minTrackDuration {
		return fmt.Errorf("%w: track is too short to be real audio", ErrValidation)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: downloaded file is missing", ErrValidation)
	}
	if fi.Size() < minValidSize {
		return fmt.Errorf("%w: file is only %d bytes", ErrValidation, fi.Size())
	}

	dur, err := soundcloud.AudioDuration(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: file is not parseable audio", ErrValidation)
	}
	if dur < minValidDuration {
		return fmt.Errorf("%w: audio duration is %.2fs", ErrValidation, dur)
	}
	return nil
}
