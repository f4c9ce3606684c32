package metrics

import (
	"encoding/json"
)

// ChartRow is one aligned chart point. Values holds only the channels that
// were finite for this sample; gaps are omitted rather than zeroed so the
// renderer can skip them.
type ChartRow struct {
	SampleIndex int
	SamplePos   float64
	Values      map[Channel]float64
}

// MarshalJSON flattens channel values into the row object:
// {"sampleIndex":1,"samplePos":0.5,"voltage":21.3}.
func (r ChartRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Values)+2)
	out["sampleIndex"] = r.SampleIndex
	out["samplePos"] = r.SamplePos
	for c, v := range r.Values {
		out[c.Key()] = v
	}
	return json.Marshal(out)
}

// Normalized is a layer's metric series ready for charting.
type Normalized struct {
	Rows  []ChartRow `json:"rows"`
	Keys  []Channel  `json:"keys"`
	Total int        `json:"total"`
}

// Empty reports whether there is nothing to render.
func (n Normalized) Empty() bool {
	return n.Total == 0 || len(n.Keys) == 0
}

// DeriveKeys returns, in canonical order, the channels that have at least
// one finite value anywhere in series. The result does not depend on the
// order of series.
func DeriveKeys(series []Sample) []Channel {
	keys := make([]Channel, 0, numChannels)
	for _, c := range Channels() {
		for _, s := range series {
			if _, ok := s.Value(c); ok {
				keys = append(keys, c)
				break
			}
		}
	}
	return keys
}

// Normalize maps series onto 1-based chart rows positioned at
// sampleIndex/total. An empty series yields empty rows and keys with
// Total 0.
func Normalize(series []Sample) Normalized {
	total := len(series)
	if total == 0 {
		return Normalized{Rows: []ChartRow{}, Keys: []Channel{}, Total: 0}
	}

	keys := DeriveKeys(series)
	rows := make([]ChartRow, total)
	for i, s := range series {
		rows[i] = toChartRow(s, i, total, keys)
	}

	return Normalized{Rows: rows, Keys: keys, Total: total}
}

func toChartRow(s Sample, index, total int, keys []Channel) ChartRow {
	row := ChartRow{
		SampleIndex: index + 1,
		SamplePos:   float64(index+1) / float64(total),
		Values:      make(map[Channel]float64, len(keys)),
	}
	for _, c := range keys {
		if v, ok := s.Value(c); ok {
			row.Values[c] = v
		}
	}
	return row
}
