package metrics

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ChannelSummary aggregates the finite values of one channel.
type ChannelSummary struct {
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Summary aggregates a sample series. Channels with no finite values are
// absent from Channels.
type Summary struct {
	N        int                        `json:"n"`
	Channels map[Channel]ChannelSummary `json:"channels"`
}

// Get returns the summary for c, if any values were seen.
func (s Summary) Get(c Channel) (ChannelSummary, bool) {
	cs, ok := s.Channels[c]
	return cs, ok
}

// Summarize computes per-channel average, minimum, and maximum over the
// finite values in series. N counts every sample, including empty ones.
func Summarize(series []Sample) Summary {
	sum := Summary{N: len(series), Channels: make(map[Channel]ChannelSummary, numChannels)}
	vals := make([]float64, 0, len(series))
	for _, c := range Channels() {
		vals = vals[:0]
		for _, s := range series {
			if v, ok := s.Value(c); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}
		sum.Channels[c] = ChannelSummary{
			Avg:   stat.Mean(vals, nil),
			Min:   floats.Min(vals),
			Max:   floats.Max(vals),
			Count: len(vals),
		}
	}
	return sum
}

// LayerSeries is the metric series of one layer.
type LayerSeries struct {
	LayerID     string
	LayerNumber int
	Samples     []Sample
}

// LayerSummary is the Summary of one layer.
type LayerSummary struct {
	LayerID     string  `json:"layer_id"`
	LayerNumber int     `json:"layer_number"`
	Summary     Summary `json:"summary"`
}

// SummarizeGroup returns the summary over every sample of every layer, plus
// one summary per layer ordered by layer number.
func SummarizeGroup(layers []LayerSeries) (Summary, []LayerSummary) {
	var all []Sample
	perLayer := make([]LayerSummary, 0, len(layers))
	for _, l := range layers {
		all = append(all, l.Samples...)
		perLayer = append(perLayer, LayerSummary{
			LayerID:     l.LayerID,
			LayerNumber: l.LayerNumber,
			Summary:     Summarize(l.Samples),
		})
	}
	sort.SliceStable(perLayer, func(i, j int) bool {
		return perLayer[i].LayerNumber < perLayer[j].LayerNumber
	})
	return Summarize(all), perLayer
}
