package soundcloud

import "testing"

func tc(preset, protocol string) Transcoding {
	return Transcoding{Preset: preset, Format: Format{Protocol: protocol}}
}

func TestScoreTranscoding(t *testing.T) {
	tests := []struct {
		preset   string
		protocol string
		want     int
	}{
		// The digit bonus sums every digit in the preset, including the
		// "3" of "mp3".
		{"mp3_0", ProtocolProgressive, 63},
		{"mp3_1", ProtocolProgressive, 74},
		{"mp3_2", ProtocolProgressive, 85},
		{"opus_0", ProtocolProgressive, 75},
		{"opus_1", ProtocolProgressive, 86},
		{"aac_0", ProtocolProgressive, 65},
		{"aac_1", ProtocolProgressive, 76},
		{"mp3_0", ProtocolHLS, 43},
		{"mp3_1", ProtocolHLS, 54},
		{"opus_1", ProtocolHLS, 66},
		{"aac_1", ProtocolHLS, 56},
		// Multi-part suffixes collapse to the highest digit for the family
		// key; the bonus still sums every digit.
		{"mp3_1_0", ProtocolProgressive, 74},
		{"mp3_0_1", ProtocolProgressive, 74},
		{"opus_0_1", ProtocolProgressive, 86},
		// Unknown families fall back to the per-protocol default.
		{"flac_9", ProtocolProgressive, 49},
		{"weird", ProtocolHLS, 30},
	}

	for _, tt := range tests {
		if got := ScoreTranscoding(tc(tt.preset, tt.protocol)); got != tt.want {
			t.Errorf("ScoreTranscoding(%s/%s) = %d, want %d", tt.preset, tt.protocol, got, tt.want)
		}
	}
}

func TestDigitBonusCap(t *testing.T) {
	if got := digitBonus("mp3_9_9"); got != 10 {
		t.Fatalf("digit bonus should cap at 10, got %d", got)
	}
}

func TestRankTranscodings(t *testing.T) {
	trs := []Transcoding{
		tc("mp3_1", ProtocolHLS),
		tc("mp3_1", ProtocolProgressive),
		tc("opus_1", ProtocolProgressive),
		tc("aac_0", ProtocolProgressive),
	}
	ranked := RankTranscodings(trs)

	wantOrder := []string{"opus_1", "mp3_1", "aac_0", "mp3_1"}
	wantProto := []string{ProtocolProgressive, ProtocolProgressive, ProtocolProgressive, ProtocolHLS}
	for i := range ranked {
		if ranked[i].Preset != wantOrder[i] || ranked[i].Format.Protocol != wantProto[i] {
			t.Fatalf("rank %d = %s/%s, want %s/%s",
				i, ranked[i].Preset, ranked[i].Format.Protocol, wantOrder[i], wantProto[i])
		}
	}

	// Input must not be reordered in place.
	if trs[0].Format.Protocol != ProtocolHLS {
		t.Fatal("RankTranscodings mutated its input")
	}
}
