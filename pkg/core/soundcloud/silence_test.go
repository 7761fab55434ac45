package soundcloud

import (
	"math"
	"testing"
)

func TestAnalyzeSamplesNoSilence(t *testing.T) {
	samples := make([]int, 100)
	for i := range samples {
		samples[i] = 50
	}
	a := analyzeSamples(samples)
	if a.HasSilence || a.SilencePercentage != 0 || len(a.Sections) != 0 {
		t.Fatalf("loud track flagged as silent: %+v", a)
	}
}

func TestAnalyzeSamplesLongRun(t *testing.T) {
	samples := make([]int, 100)
	for i := range samples {
		samples[i] = 50
	}
	for i := 0; i < 10; i++ {
		samples[i] = 0
	}
	a := analyzeSamples(samples)
	if !a.HasSilence {
		t.Fatal("10% silent run should flag the track")
	}
	if len(a.Sections) != 1 {
		t.Fatalf("expected one section, got %d", len(a.Sections))
	}
	if a.Sections[0].SizePct != 10 {
		t.Fatalf("section size = %.1f%%, want 10%%", a.Sections[0].SizePct)
	}
	if a.SilencePercentage != 10 {
		t.Fatalf("silence percentage = %.1f%%, want 10%%", a.SilencePercentage)
	}
}

func TestAnalyzeSamplesScatteredSinglesIgnored(t *testing.T) {
	samples := make([]int, 100)
	for i := range samples {
		samples[i] = 50
	}
	// Four isolated silent samples: below both the run and the overall
	// significance thresholds.
	for _, i := range []int{10, 30, 50, 70} {
		samples[i] = 1
	}
	a := analyzeSamples(samples)
	if a.HasSilence || len(a.Sections) != 0 {
		t.Fatalf("scattered silent samples must not flag the track: %+v", a)
	}
	if a.SilencePercentage != 4 {
		t.Fatalf("silence percentage = %.1f%%, want 4%%", a.SilencePercentage)
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComplementSpans(t *testing.T) {
	loud := complementSpans([]span{{start: 10, end: 20}}, 60)
	if len(loud) != 2 {
		t.Fatalf("expected 2 loud spans, got %d", len(loud))
	}
	if !approx(loud[0].start, 0) || !approx(loud[0].end, 10) {
		t.Errorf("first span = %+v", loud[0])
	}
	if !approx(loud[1].start, 20) || !approx(loud[1].end, 60) {
		t.Errorf("second span = %+v", loud[1])
	}
}

func TestComplementSpansTrailingSilence(t *testing.T) {
	// Silence running to EOF carries end=-1.
	loud := complementSpans([]span{{start: 50, end: -1}}, 60)
	if len(loud) != 1 {
		t.Fatalf("expected 1 loud span, got %d", len(loud))
	}
	if !approx(loud[0].start, 0) {
		t.Errorf("span start = %g, want 0", loud[0].start)
	}
	// The last span is widened by the edge buffer.
	if !approx(loud[0].end, 50+edgeBufferSec) {
		t.Errorf("span end = %g, want %g", loud[0].end, 50+edgeBufferSec)
	}
}

func TestComplementSpansAllLoud(t *testing.T) {
	loud := complementSpans(nil, 30)
	if len(loud) != 1 || !approx(loud[0].start, 0) || !approx(loud[0].end, 30) {
		t.Fatalf("no silence should yield the whole track: %+v", loud)
	}
}
