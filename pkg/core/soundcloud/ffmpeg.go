package soundcloud

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/scdlbot/scdl/pkg/config"
)

func ffmpegPath() string {
	if config.Conf.FfmpegPath != "" {
		return config.Conf.FfmpegPath
	}
	return "ffmpeg"
}

// ffprobePath derives the probe binary from the configured ffmpeg path, so a
// custom FFMPEG_PATH keeps both tools from the same install.
func ffprobePath() string {
	p := ffmpegPath()
	dir, base := filepath.Split(p)
	if strings.Contains(base, "ffmpeg") {
		return dir + strings.Replace(base, "ffmpeg", "ffprobe", 1)
	}
	return "ffprobe"
}

// runFFmpeg executes ffmpeg with the given args and returns its stderr, which
// carries filter output like silencedetect timestamps.
func runFFmpeg(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-hide_banner", "-y"}, args...)
	cmd := exec.CommandContext(ctx, ffmpegPath(), full...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stderr.String(), fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
	}
	return stderr.String(), nil
}

// AudioDuration returns the duration of an audio file in seconds via ffprobe.
// Unparseable or empty files return an error.
func AudioDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, ffprobePath(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", filepath.Base(path), err)
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: bad duration %q", filepath.Base(path), out)
	}
	return dur, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
