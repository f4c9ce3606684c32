package metrics

import (
	"math"
	"sort"
	"strconv"
)

// DefaultTickCount is the approximate number of intervals on the sample axis.
const DefaultTickCount = 6

// BuildSampleTicks returns ascending sample positions in (0, 1] to label on
// the chart X axis. Short series get one tick per sample. Longer series get
// at most approx+1 ticks at evenly spaced sample indices.
//
// total <= 0 returns no ticks. approx < 1 is treated as 1.
func BuildSampleTicks(total, approx int) []float64 {
	if total <= 0 {
		return []float64{}
	}
	if approx < 1 {
		approx = 1
	}

	if total <= approx {
		ticks := make([]float64, total)
		for i := range ticks {
			ticks[i] = float64(i+1) / float64(total)
		}
		return ticks
	}

	seen := make(map[int]struct{}, approx+1)
	indices := make([]int, 0, approx+1)
	for j := 0; j <= approx; j++ {
		idx := int(math.Round(float64(j) / float64(approx) * float64(total)))
		idx = clampInt(idx, 1, total)
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	ticks := make([]float64, len(indices))
	for i, idx := range indices {
		ticks[i] = float64(idx) / float64(total)
	}
	return ticks
}

// SampleIndex converts a sample position back to its 1-based index. It is
// the inverse of the idx/total mapping used by BuildSampleTicks.
func SampleIndex(pos float64, total int) int {
	return clampInt(int(math.Round(pos*float64(total))), 1, total)
}

// FormatSamplePos labels a sample position as "idx/total".
func FormatSamplePos(pos float64, total int) string {
	return strconv.Itoa(SampleIndex(pos, total)) + "/" + strconv.Itoa(total)
}

// clampInt applies the lower bound first, then the upper, so total == 0
// yields 0 rather than 1.
func clampInt(v, lo, hi int) int {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}
