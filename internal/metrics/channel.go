// Package metrics turns per-sample weld sensor records into chart-ready rows.
//
// The four process channels form a closed set with a fixed canonical
// order. Legends, axes, and row fields always follow that order, whatever
// order the samples arrive in. Adding a channel means adding it to the
// table below and nowhere else.
package metrics

import (
	"fmt"
	"math"
)

// Channel identifies one process-sensor quantity.
type Channel int

const (
	TravelSpeed Channel = iota
	Voltage
	Current
	WireFeedRate

	numChannels
)

type channelInfo struct {
	key   string
	label string
	unit  string
}

// channelTable is indexed by Channel and defines the canonical order.
var channelTable = [numChannels]channelInfo{
	TravelSpeed:  {key: "travel_speed", label: "Travel speed", unit: "mm/s"},
	Voltage:      {key: "voltage", label: "Voltage", unit: "V"},
	Current:      {key: "current", label: "Current", unit: "A"},
	WireFeedRate: {key: "wire_feed_rate", label: "Wire feed rate", unit: "m/min"},
}

// Channels returns every channel in canonical order.
func Channels() []Channel {
	out := make([]Channel, numChannels)
	for i := range out {
		out[i] = Channel(i)
	}
	return out
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c >= 0 && c < numChannels
}

// Key is the stable wire name, e.g. "wire_feed_rate".
func (c Channel) Key() string {
	if !c.Valid() {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelTable[c].key
}

// Label is the human-readable legend name.
func (c Channel) Label() string {
	if !c.Valid() {
		return c.Key()
	}
	return channelTable[c].label
}

// Unit is the unit the channel is stored in.
func (c Channel) Unit() string {
	if !c.Valid() {
		return ""
	}
	return channelTable[c].unit
}

func (c Channel) String() string { return c.Key() }

// MarshalText encodes the channel as its key so it can be used in JSON
// objects and map keys.
func (c Channel) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown metric channel %d", int(c))
	}
	return []byte(c.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Channel) UnmarshalText(b []byte) error {
	ch, ok := ParseChannel(string(b))
	if !ok {
		return fmt.Errorf("unknown metric channel %q", string(b))
	}
	*c = ch
	return nil
}

// ParseChannel looks up a channel by key.
func ParseChannel(key string) (Channel, bool) {
	for i, info := range channelTable {
		if info.key == key {
			return Channel(i), true
		}
	}
	return 0, false
}

// Sample is one sensor record. Any channel may be missing.
type Sample struct {
	Seq    int
	Values map[Channel]float64
}

// NewSample returns a sample with the given sequence number and no values.
func NewSample(seq int) Sample {
	return Sample{Seq: seq, Values: make(map[Channel]float64, numChannels)}
}

// With returns s with channel c set to v. Non-finite values are stored but
// treated as absent by every reader.
func (s Sample) With(c Channel, v float64) Sample {
	if s.Values == nil {
		s.Values = make(map[Channel]float64, numChannels)
	}
	s.Values[c] = v
	return s
}

// WithOptional sets c only when v is non-nil.
func (s Sample) WithOptional(c Channel, v *float64) Sample {
	if v == nil {
		return s
	}
	return s.With(c, *v)
}

// Value returns the channel value when it is present and finite.
func (s Sample) Value(c Channel) (float64, bool) {
	v, ok := s.Values[c]
	if !ok || !isFinite(v) {
		return 0, false
	}
	return v, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
