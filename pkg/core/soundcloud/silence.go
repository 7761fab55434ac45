package soundcloud

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Laky-64/gologging"
	"github.com/segmentio/encoding/json"
)

const (
	// Waveform samples at or below this value count as silence.
	waveformSilenceThreshold = 1
	// A run of silent samples must span at least this share of the track.
	minSilenceRunPct = 0.03
	// Overall silence share that flags the track even without a long run.
	significantSilencePct = 5.0
)

const (
	silenceNoiseDB   = -55.0
	minSilenceLenSec = 5.0
	minRemovableSec  = 1.0
	edgeBufferSec    = 0.1
	largeGapSec      = 10.0
	gapTransitionSec = 0.5
	minAnalyzableSec = 2.0
)

// AnalyzeWaveformForSilence fetches SoundCloud's waveform JSON and scans its
// samples for silent stretches. Any failure yields a no-silence analysis so
// delivery is never blocked on a cosmetic step.
func AnalyzeWaveformForSilence(ctx context.Context, waveformURL string) *SilenceAnalysis {
	none := &SilenceAnalysis{}
	if waveformURL == "" {
		return none
	}

	status, body, err := fetch(ctx, waveformURL, nil)
	if err != nil || status != 200 {
		gologging.WarnF("waveform fetch failed (status %d): %v", status, err)
		return none
	}

	var wf struct {
		Samples []int `json:"samples"`
	}
	if err := json.Unmarshal(body, &wf); err != nil || len(wf.Samples) == 0 {
		gologging.WarnF("waveform decode failed: %v", err)
		return none
	}

	return analyzeSamples(wf.Samples)
}

func analyzeSamples(samples []int) *SilenceAnalysis {
	total := len(samples)
	minRun := int(float64(total) * minSilenceRunPct)
	if minRun < 1 {
		minRun = 1
	}

	silentCount := 0
	var sections []SilenceSection
	runStart := -1

	flush := func(endIdx int) {
		runLen := endIdx - runStart
		if runStart >= 0 && runLen >= minRun {
			sections = append(sections, SilenceSection{
				StartPct: float64(runStart) / float64(total) * 100,
				EndPct:   float64(endIdx) / float64(total) * 100,
				SizePct:  float64(runLen) / float64(total) * 100,
			})
		}
		runStart = -1
	}

	for i, s := range samples {
		if s <= waveformSilenceThreshold {
			silentCount++
			if runStart < 0 {
				runStart = i
			}
		} else {
			flush(i)
		}
	}
	flush(total)

	pct := float64(silentCount) / float64(total) * 100
	return &SilenceAnalysis{
		HasSilence:        pct >= significantSilencePct || len(sections) > 0,
		SilencePercentage: pct,
		Sections:          sections,
	}
}

// span is a time range in seconds.
type span struct {
	start, end float64
}

var (
	silenceStartRegex = regexp.MustCompile(`silence_start:\s*(-?[\d.]+)`)
	silenceEndRegex   = regexp.MustCompile(`silence_end:\s*(-?[\d.]+)`)
)

// DetectAndRemoveSilence cuts long silent stretches out of an audio file.
// It returns the path to the processed file, or the original path when there
// was nothing worth removing. Processing errors fall back to the original.
func DetectAndRemoveSilence(ctx context.Context, path string) string {
	duration, err := AudioDuration(ctx, path)
	if err != nil {
		gologging.WarnF("silence: cannot probe %s: %v", path, err)
		return path
	}
	if duration < minAnalyzableSec {
		return path
	}

	silent, err := detectSilence(ctx, path)
	if err != nil {
		gologging.WarnF("silence: detection failed for %s: %v", path, err)
		return path
	}

	loud := complementSpans(silent, duration)
	if len(loud) == 0 {
		return path
	}

	removable := duration
	for _, sp := range loud {
		removable -= sp.end - sp.start
	}
	if removable < minRemovableSec {
		return path
	}

	out := trimmedPath(path)
	if err := rebuildWithoutSilence(ctx, path, out, loud, duration); err != nil {
		gologging.WarnF("silence: rebuild failed for %s: %v", path, err)
		return path
	}

	gologging.InfoF("silence: removed %.1fs from %s", removable, path)
	return out
}

// detectSilence runs ffmpeg silencedetect and parses its stderr into spans.
func detectSilence(ctx context.Context, path string) ([]span, error) {
	stderr, err := runFFmpeg(ctx,
		"-i", path,
		"-af", fmt.Sprintf("silencedetect=noise=%.0fdB:d=%g", silenceNoiseDB, minSilenceLenSec),
		"-f", "null", "-",
	)
	if err != nil {
		return nil, err
	}

	starts := silenceStartRegex.FindAllStringSubmatch(stderr, -1)
	ends := silenceEndRegex.FindAllStringSubmatch(stderr, -1)

	var spans []span
	for i, m := range starts {
		start, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		// A silence running to EOF has a start but no matching end.
		end := -1.0
		if i < len(ends) {
			if v, err := strconv.ParseFloat(ends[i][1], 64); err == nil {
				end = v
			}
		}
		if end < 0 {
			spans = append(spans, span{start: start, end: -1})
		} else {
			spans = append(spans, span{start: start, end: end})
		}
	}
	return spans, nil
}

// complementSpans turns silent spans into the non-silent spans of [0, duration],
// widening the first and last by a small edge buffer.
func complementSpans(silent []span, duration float64) []span {
	var loud []span
	cursor := 0.0
	for _, s := range silent {
		end := s.end
		if end < 0 {
			end = duration
		}
		if s.start > cursor {
			loud = append(loud, span{start: cursor, end: s.start})
		}
		if end > cursor {
			cursor = end
		}
	}
	if cursor < duration {
		loud = append(loud, span{start: cursor, end: duration})
	}

	if len(loud) > 0 {
		if loud[0].start > edgeBufferSec {
			loud[0].start -= edgeBufferSec
		} else {
			loud[0].start = 0
		}
		last := len(loud) - 1
		if loud[last].end+edgeBufferSec < duration {
			loud[last].end += edgeBufferSec
		} else {
			loud[last].end = duration
		}
	}
	return loud
}

// rebuildWithoutSilence concatenates the non-silent spans with ffmpeg,
// inserting a short synthetic pause wherever a removed gap was very long so
// transitions do not feel abrupt.
func rebuildWithoutSilence(ctx context.Context, in, out string, loud []span, duration float64) error {
	var filter strings.Builder
	var labels []string

	gaps := 0
	for i, sp := range loud {
		if i > 0 {
			gap := sp.start - loud[i-1].end
			if gap > largeGapSec {
				fmt.Fprintf(&filter, "aevalsrc=0:d=%g[g%d];", gapTransitionSec, gaps)
				labels = append(labels, fmt.Sprintf("[g%d]", gaps))
				gaps++
			}
		}
		fmt.Fprintf(&filter, "[0:a]atrim=start=%.3f:end=%.3f,asetpts=PTS-STARTPTS[s%d];", sp.start, sp.end, i)
		labels = append(labels, fmt.Sprintf("[s%d]", i))
	}
	fmt.Fprintf(&filter, "%sconcat=n=%d:v=0:a=1[out]", strings.Join(labels, ""), len(labels))

	_, err := runFFmpeg(ctx,
		"-i", in,
		"-filter_complex", filter.String(),
		"-map", "[out]",
		out,
	)
	return err
}

func trimmedPath(path string) string {
	ext := ".mp3"
	if i := strings.LastIndex(path, "."); i >= 0 {
		ext = path[i:]
	}
	return strings.TrimSuffix(path, ext) + ".trimmed" + ext
}
