package soundcloud

import (
	"sort"
	"strconv"
	"strings"
)

// Encoding quality scores keyed by preset family. Progressive renditions are
// always preferred over HLS at the same preset.
var progressiveScores = map[string]int{
	"mp3_0":  60,
	"mp3_1":  70,
	"mp3_2":  80,
	"opus_0": 75,
	"opus_1": 85,
	"aac_0":  65,
	"aac_1":  75,
}

var hlsScores = map[string]int{
	"mp3_0":  40,
	"mp3_1":  50,
	"opus_0": 55,
	"opus_1": 65,
	"aac_0":  45,
	"aac_1":  55,
}

const (
	defaultProgressiveScore = 40
	defaultHLSScore         = 30
	maxDigitBonus           = 10
)

// presetKey reduces a preset string like "mp3_1_0" or "opus_0_1" to a family
// key. Multi-part quality suffixes collapse to their highest digit, so
// "mp3_1_0" and "mp3_0_1" both score as "mp3_1".
func presetKey(preset string) string {
	parts := strings.Split(preset, "_")
	if len(parts) < 2 {
		return preset
	}
	if len(parts) == 2 {
		return parts[0] + "_" + parts[1]
	}

	best := -1
	for _, p := range parts[1:] {
		if n, err := strconv.Atoi(p); err == nil && n > best {
			best = n
		}
	}
	if best < 0 {
		best = 0
	}
	return parts[0] + "_" + strconv.Itoa(best)
}

// digitBonus sums the digits embedded in a preset string, capped at 10,
// nudging higher-numbered variants of the same family ahead.
func digitBonus(preset string) int {
	sum := 0
	for _, r := range preset {
		if r >= '0' && r <= '9' {
			sum += int(r - '0')
		}
	}
	if sum > maxDigitBonus {
		return maxDigitBonus
	}
	return sum
}

// ScoreTranscoding assigns the deterministic quality score used to rank
// available encodings. Two implementations of this table must agree exactly.
func ScoreTranscoding(tr Transcoding) int {
	key := presetKey(tr.Preset)

	var base int
	var ok bool
	if tr.Format.Protocol == ProtocolProgressive {
		base, ok = progressiveScores[key]
		if !ok {
			base = defaultProgressiveScore
		}
	} else {
		base, ok = hlsScores[key]
		if !ok {
			base = defaultHLSScore
		}
	}

	return base + digitBonus(tr.Preset)
}

// RankTranscodings returns the transcodings sorted by descending score.
// The sort is stable so equal scores keep the API's order.
func RankTranscodings(trs []Transcoding) []Transcoding {
	ranked := make([]Transcoding, len(trs))
	copy(ranked, trs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ScoreTranscoding(ranked[i]) > ScoreTranscoding(ranked[j])
	})
	return ranked
}
