package view

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/weld.report/internal/colormap"
	"github.com/banshee-data/weld.report/internal/db"
	"github.com/banshee-data/weld.report/internal/geometry"
	"github.com/banshee-data/weld.report/internal/metrics"
	"github.com/banshee-data/weld.report/internal/monitoring"
	"github.com/banshee-data/weld.report/internal/timeutil"
	"github.com/banshee-data/weld.report/internal/units"
)

var testTime = time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)

func init() {
	monitoring.SetLogger(nil)
}

func fp(v float64) *float64 { return &v }

func testSnapshot() *LayerSnapshot {
	return &LayerSnapshot{
		LayerID:     "layer-1",
		GroupID:     "group-1",
		LayerNumber: 2,
		Points: []PointRecord{
			{Waypoint: geometry.Waypoint{Seq: 2, X: 10, Y: 4, Z: 1}, Value: fp(30)},
			{Waypoint: geometry.Waypoint{Seq: 0, X: 0, Y: 0, Z: 1}, Value: fp(10)},
			{Waypoint: geometry.Waypoint{Seq: 1, X: 5, Y: 2, Z: 1}},
		},
		Samples: []metrics.Sample{
			metrics.NewSample(0).With(metrics.TravelSpeed, 10).With(metrics.Voltage, 20),
			metrics.NewSample(1).With(metrics.TravelSpeed, 12),
			metrics.NewSample(2).With(metrics.TravelSpeed, 11).With(metrics.Voltage, math.NaN()),
		},
		CapturedAt: testTime,
	}
}

func TestBuildScene(t *testing.T) {
	cfg := DefaultConfig()
	f, err := BuildScene(testSnapshot(), cfg)
	require.NoError(t, err)

	// Sorted by seq, remapped (x, z, y).
	wantPoints := []geometry.Point3{{X: 0, Y: 1, Z: 0}, {X: 5, Y: 1, Z: 2}, {X: 10, Y: 1, Z: 4}}
	if diff := cmp.Diff(wantPoints, f.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, geometry.ComputeBounds(wantPoints), f.Bounds)
	assert.Equal(t, geometry.Point3{X: -5, Y: -1, Z: -2}, f.Offset)
	assert.Equal(t, 10.0, f.Bounds.MaxSpan)

	wantDist := geometry.CameraDistance(f.Bounds.Radius, cfg.FOVDegrees, cfg.CameraMargin)
	assert.Equal(t, wantDist, f.Camera.Distance)
	assert.Equal(t, geometry.Point3{X: wantDist, Y: CameraHeight, Z: wantDist}, f.CameraPosition)
	assert.Equal(t, 200.0, f.GridSize)
	assert.Equal(t, GridDivisions, f.GridDivisions)
	assert.Equal(t, 50000.0, f.FarPlane)

	require.NotNil(t, f.ValueRange)
	assert.Equal(t, ValueRange{Min: 10, Max: 30}, *f.ValueRange)
	require.Len(t, f.Colors, 3)
	assert.Equal(t, colormap.DefaultLow.Hex(), f.Colors[0])
	assert.Equal(t, cfg.Palette.At(2), f.Colors[1], "points without a value use the layer color")
	assert.Equal(t, colormap.DefaultHigh.Hex(), f.Colors[2])

	// Footprint is machine-space with a fixed Z thickness.
	assert.Equal(t, geometry.Point3{X: 10, Y: 4, Z: cfg.ZThickness}, f.Footprint.Size)
	assert.Equal(t, geometry.Point3{X: 5, Y: 2, Z: 1}, f.Footprint.Center)
}

func TestBuildScene_Empty(t *testing.T) {
	f, err := BuildScene(&LayerSnapshot{LayerNumber: 0}, DefaultConfig())
	require.NoError(t, err)

	assert.Empty(t, f.Points)
	assert.Nil(t, f.ValueRange)
	assert.Equal(t, 1.0, f.Bounds.MaxSpan)
	assert.Equal(t, MinGridSize*10, f.GridSize, "ceil(1*20)")
	assert.Equal(t, MinFarPlane*5, f.FarPlane)
	assert.Equal(t, geometry.Point3{}, f.Offset)
}

func TestBuildScene_Degenerate(t *testing.T) {
	snap := &LayerSnapshot{Points: []PointRecord{{Waypoint: geometry.Waypoint{X: 3, Y: 3, Z: 3}}}}
	f, err := BuildScene(snap, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, MinGridSize, f.GridSize)
	assert.Equal(t, MinFarPlane, f.FarPlane)
	assert.Equal(t, geometry.MinCameraDistance, f.Camera.Distance)
	assert.Equal(t, 1.0, f.Footprint.Size.X, "display floor differs from the physical floor")
	assert.Equal(t, geometry.PhysicalSizeFloor, f.Bounds.Size.X)
}

func TestBuildScene_InvalidFOV(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FOVDegrees = 180
	_, err := BuildScene(testSnapshot(), cfg)
	assert.Error(t, err)
}

func TestBuildChart(t *testing.T) {
	cfg := DefaultConfig()
	f := BuildChart(testSnapshot(), cfg)

	assert.False(t, f.Empty)
	assert.Equal(t, 3, f.Total)
	assert.Equal(t, []metrics.Channel{metrics.TravelSpeed, metrics.Voltage}, f.Keys)
	assert.Equal(t, []float64{1.0 / 3, 2.0 / 3, 1}, f.Ticks)
	assert.Equal(t, []string{"1/3", "2/3", "3/3"}, f.TickLabels)

	require.Len(t, f.Series, 2)
	assert.Equal(t, SeriesStyle{Key: metrics.TravelSpeed, Label: "Travel speed", Unit: "mm/s", Color: colormap.DefaultSeriesPalette[0]}, f.Series[0])
	assert.Equal(t, colormap.DefaultSeriesPalette[1], f.Series[1].Color)

	require.Len(t, f.Rows, 3)
	assert.Equal(t, map[metrics.Channel]float64{metrics.TravelSpeed: 11}, f.Rows[2].Values, "NaN voltage is dropped")

	ts, ok := f.Summary.Get(metrics.TravelSpeed)
	require.True(t, ok)
	assert.Equal(t, 11.0, ts.Avg)
}

func TestBuildChart_SpeedUnits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpeedUnits = units.MMPM
	snap := testSnapshot()
	f := BuildChart(snap, cfg)

	assert.Equal(t, 600.0, f.Rows[0].Values[metrics.TravelSpeed])
	assert.Equal(t, 20.0, f.Rows[0].Values[metrics.Voltage])
	assert.Equal(t, "mm/min", f.Series[0].Unit)

	v, _ := snap.Samples[0].Value(metrics.TravelSpeed)
	assert.Equal(t, 10.0, v, "snapshot samples are not modified")
}

func TestBuildChart_Empty(t *testing.T) {
	f := BuildChart(&LayerSnapshot{}, DefaultConfig())
	assert.True(t, f.Empty)
	assert.Zero(t, f.Total)
	assert.Empty(t, f.Ticks)
	assert.Empty(t, f.Series)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"fov", func(c *Config) { c.FOVDegrees = 0 }},
		{"margin", func(c *Config) { c.CameraMargin = -1 }},
		{"thickness", func(c *Config) { c.ZThickness = 0 }},
		{"units", func(c *Config) { c.SpeedUnits = "furlongs" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewSnapshot(t *testing.T) {
	layer := &db.Layer{ID: "l1", GroupID: "g1", LayerNumber: 4}
	points := []db.ScanPoint{{Seq: 0, X: 1, Y: 2, Z: 3, ScanValue: fp(9)}}
	samples := []db.WeldSample{{Seq: 0, Current: fp(150), WireFeedRate: fp(8)}}

	snap := NewSnapshot(layer, points, samples, testTime)
	assert.Equal(t, "l1", snap.LayerID)
	assert.Equal(t, 4, snap.LayerNumber)
	assert.Equal(t, geometry.Waypoint{Seq: 0, X: 1, Y: 2, Z: 3}, snap.Points[0].Waypoint)
	assert.Equal(t, 9.0, *snap.Points[0].Value)

	keys := metrics.DeriveKeys(snap.Samples)
	assert.Equal(t, []metrics.Channel{metrics.Current, metrics.WireFeedRate}, keys)
}

func TestLayerSeriesFrom(t *testing.T) {
	got := LayerSeriesFrom([]db.LayerSamples{
		{LayerID: "b", LayerNumber: 2, Samples: []db.WeldSample{{Seq: 0, Voltage: fp(21)}}},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].LayerID)
	v, ok := got[0].Samples[0].Value(metrics.Voltage)
	assert.True(t, ok)
	assert.Equal(t, 21.0, v)
}

type fakeSource struct {
	mu    sync.Mutex
	loads int
	err   error
	volt  float64
}

func (f *fakeSource) GetLayer(id string) (*db.Layer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.loads++
	return &db.Layer{ID: id, LayerNumber: 1}, nil
}

func (f *fakeSource) LayerWaypoints(string) ([]db.ScanPoint, error) {
	return []db.ScanPoint{{Seq: 0, X: 1}}, nil
}

func (f *fakeSource) LayerSamples(string) ([]db.WeldSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.volt
	return []db.WeldSample{{Seq: 0, Voltage: &v}}, nil
}

func TestSnapshotCache(t *testing.T) {
	src := &fakeSource{volt: 20}
	clock := timeutil.NewMockClock(testTime)
	cache := NewSnapshotCache(src, clock, time.Minute)

	first, err := cache.Get("l1")
	require.NoError(t, err)
	again, err := cache.Get("l1")
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, src.loads)

	src.volt = 30
	clock.Advance(2 * time.Minute)
	reloaded, err := cache.Get("l1")
	require.NoError(t, err)
	assert.NotSame(t, first, reloaded)
	assert.Equal(t, 2, src.loads)

	v, _ := first.Samples[0].Value(metrics.Voltage)
	assert.Equal(t, 20.0, v, "a held snapshot never changes")
	v, _ = reloaded.Samples[0].Value(metrics.Voltage)
	assert.Equal(t, 30.0, v)

	cache.Invalidate("l1")
	assert.Zero(t, cache.Len())
}

func TestSnapshotCache_Sweep(t *testing.T) {
	clock := timeutil.NewMockClock(testTime)
	cache := NewSnapshotCache(&fakeSource{}, clock, time.Minute)

	_, err := cache.Get("a")
	require.NoError(t, err)
	clock.Advance(30 * time.Second)
	_, err = cache.Get("b")
	require.NoError(t, err)

	clock.Advance(45 * time.Second)
	assert.Equal(t, 1, cache.Sweep())
	assert.Equal(t, 1, cache.Len())
}

func TestSnapshotCache_Run(t *testing.T) {
	clock := timeutil.NewMockClock(testTime)
	cache := NewSnapshotCache(&fakeSource{}, clock, time.Minute)
	_, err := cache.Get("a")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cache.Run(ctx, 10*time.Second)
		close(done)
	}()

	// The sweeper's ticker may not exist yet, so keep advancing until it fires.
	require.Eventually(t, func() bool {
		clock.Advance(10 * time.Second)
		return cache.Len() == 0
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestSnapshotCache_LoadError(t *testing.T) {
	boom := errors.New("db closed")
	src := &fakeSource{}
	clock := timeutil.NewMockClock(testTime)
	cache := NewSnapshotCache(src, clock, time.Minute)

	_, err := cache.Get("kept")
	require.NoError(t, err)

	src.err = boom
	_, err = cache.Get("unknown")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, cache.Len(), "failed load must not add an entry")

	clock.Advance(2 * time.Minute)
	_, err = cache.Get("kept")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, cache.Len(), "failed reload leaves the stale entry for the sweeper")
}

func TestRenderChartHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderChartHTML(&buf, BuildChart(testSnapshot(), DefaultConfig()), "Layer 2"))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Layer 2")
	assert.Contains(t, html, "Travel speed (mm/s)")
	assert.Contains(t, html, "var total = 3;")
}

func TestRenderSceneHTML(t *testing.T) {
	f, err := BuildScene(testSnapshot(), DefaultConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderSceneHTML(&buf, f, "Scene"))
	assert.Contains(t, buf.String(), "scatter3D")
	assert.Contains(t, buf.String(), strings.ToLower(colormap.DefaultHigh.Hex()))
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRenderChartPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderChartPNG(&buf, BuildChart(testSnapshot(), DefaultConfig()), "Layer 2"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	buf.Reset()
	require.NoError(t, RenderChartPNG(&buf, BuildChart(&LayerSnapshot{}, DefaultConfig()), "Empty"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderFootprintPNG(t *testing.T) {
	f, err := BuildScene(testSnapshot(), DefaultConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderFootprintPNG(&buf, f, "Footprint"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestSampleTicker(t *testing.T) {
	ticks := sampleTicker{ticks: []float64{0.25, 0.5, 1}, total: 4}.Ticks(0.3, 1)
	require.Len(t, ticks, 2)
	assert.Equal(t, "2/4", ticks[0].Label)
	assert.Equal(t, "4/4", ticks[1].Label)
}
