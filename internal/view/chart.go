package view

import (
	"github.com/banshee-data/weld.report/internal/metrics"
	"github.com/banshee-data/weld.report/internal/units"
)

// SeriesStyle describes how one metric line is drawn.
type SeriesStyle struct {
	Key   metrics.Channel `json:"key"`
	Label string          `json:"label"`
	Unit  string          `json:"unit"`
	Color string          `json:"color"`
}

// ChartFrame is a layer's metric series aligned on the sample axis.
type ChartFrame struct {
	LayerID     string             `json:"layer_id"`
	LayerNumber int                `json:"layer_number"`
	Rows        []metrics.ChartRow `json:"rows"`
	Keys        []metrics.Channel  `json:"keys"`
	Total       int                `json:"total"`
	Ticks       []float64          `json:"ticks"`
	TickLabels  []string           `json:"tick_labels"`
	Series      []SeriesStyle      `json:"series"`
	Summary     metrics.Summary    `json:"summary"`
	Empty       bool               `json:"empty"`
}

// BuildChart normalizes snap's samples for charting. Travel speed is
// converted to cfg.SpeedUnits first, so rows, ticks, and summary share the
// display unit.
func BuildChart(snap *LayerSnapshot, cfg Config) ChartFrame {
	series := convertSpeed(snap.Samples, cfg.SpeedUnits)
	norm := metrics.Normalize(series)

	ticks := metrics.BuildSampleTicks(norm.Total, cfg.tickCount())
	labels := make([]string, len(ticks))
	for i, t := range ticks {
		labels[i] = metrics.FormatSamplePos(t, norm.Total)
	}

	styles := make([]SeriesStyle, len(norm.Keys))
	for i, k := range norm.Keys {
		styles[i] = SeriesStyle{
			Key:   k,
			Label: k.Label(),
			Unit:  channelUnit(k, cfg.SpeedUnits),
			Color: cfg.SeriesPalette.At(i),
		}
	}

	return ChartFrame{
		LayerID:     snap.LayerID,
		LayerNumber: snap.LayerNumber,
		Rows:        norm.Rows,
		Keys:        norm.Keys,
		Total:       norm.Total,
		Ticks:       ticks,
		TickLabels:  labels,
		Series:      styles,
		Summary:     metrics.Summarize(series),
		Empty:       norm.Empty(),
	}
}

func channelUnit(c metrics.Channel, speedUnits string) string {
	if c == metrics.TravelSpeed {
		return units.SpeedLabel(speedUnits)
	}
	return c.Unit()
}

// convertSpeed returns a copy of series with travel speed in unit. The
// input samples are left untouched.
func convertSpeed(series []metrics.Sample, unit string) []metrics.Sample {
	if unit == "" || unit == units.MMPS {
		return series
	}
	out := make([]metrics.Sample, len(series))
	for i, s := range series {
		c := metrics.NewSample(s.Seq)
		for ch, v := range s.Values {
			if ch == metrics.TravelSpeed {
				v = units.ConvertTravelSpeed(v, unit)
			}
			c = c.With(ch, v)
		}
		out[i] = c
	}
	return out
}
