// Package view turns stored layer records into render-ready frames: a 3D
// scene (framed point cloud with per-point colors) and a metrics chart
// (aligned rows, ticks, series colors). Frames are plain values; the api
// package encodes them as JSON or hands them to the renderers in this
// package.
package view

import (
	"fmt"
	"time"

	"github.com/banshee-data/weld.report/internal/db"
	"github.com/banshee-data/weld.report/internal/geometry"
	"github.com/banshee-data/weld.report/internal/metrics"
)

// PointRecord is a stored waypoint with its optional scan value.
type PointRecord struct {
	geometry.Waypoint
	Value *float64
}

// LayerSnapshot is everything needed to render one layer, captured
// together. A snapshot is never modified after construction.
type LayerSnapshot struct {
	LayerID     string
	GroupID     string
	LayerNumber int
	Points      []PointRecord
	Samples     []metrics.Sample
	CapturedAt  time.Time
}

// Source reads the records a snapshot is built from.
type Source interface {
	GetLayer(id string) (*db.Layer, error)
	LayerWaypoints(layerID string) ([]db.ScanPoint, error)
	LayerSamples(layerID string) ([]db.WeldSample, error)
}

// LoadSnapshot reads layerID's records from src.
func LoadSnapshot(src Source, layerID string, at time.Time) (*LayerSnapshot, error) {
	layer, err := src.GetLayer(layerID)
	if err != nil {
		return nil, err
	}
	points, err := src.LayerWaypoints(layerID)
	if err != nil {
		return nil, fmt.Errorf("load waypoints: %w", err)
	}
	samples, err := src.LayerSamples(layerID)
	if err != nil {
		return nil, fmt.Errorf("load samples: %w", err)
	}
	return NewSnapshot(layer, points, samples, at), nil
}

// NewSnapshot converts stored records into a LayerSnapshot.
func NewSnapshot(layer *db.Layer, points []db.ScanPoint, samples []db.WeldSample, at time.Time) *LayerSnapshot {
	snap := &LayerSnapshot{
		LayerID:     layer.ID,
		GroupID:     layer.GroupID,
		LayerNumber: layer.LayerNumber,
		Points:      make([]PointRecord, len(points)),
		Samples:     make([]metrics.Sample, len(samples)),
		CapturedAt:  at,
	}
	for i, p := range points {
		snap.Points[i] = PointRecord{
			Waypoint: geometry.Waypoint{Seq: p.Seq, X: p.X, Y: p.Y, Z: p.Z},
			Value:    p.ScanValue,
		}
	}
	for i, s := range samples {
		snap.Samples[i] = SampleFromRecord(s)
	}
	return snap
}

// SampleFromRecord maps a stored weld sample onto the metric channels.
func SampleFromRecord(s db.WeldSample) metrics.Sample {
	return metrics.NewSample(s.Seq).
		WithOptional(metrics.TravelSpeed, s.TravelSpeed).
		WithOptional(metrics.Voltage, s.Voltage).
		WithOptional(metrics.Current, s.Current).
		WithOptional(metrics.WireFeedRate, s.WireFeedRate)
}

// LayerSeriesFrom converts a group's stored samples for SummarizeGroup.
func LayerSeriesFrom(layers []db.LayerSamples) []metrics.LayerSeries {
	out := make([]metrics.LayerSeries, len(layers))
	for i, l := range layers {
		series := make([]metrics.Sample, len(l.Samples))
		for j, s := range l.Samples {
			series[j] = SampleFromRecord(s)
		}
		out[i] = metrics.LayerSeries{LayerID: l.LayerID, LayerNumber: l.LayerNumber, Samples: series}
	}
	return out
}
