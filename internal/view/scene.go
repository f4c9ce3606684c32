package view

import (
	"math"

	"github.com/banshee-data/weld.report/internal/geometry"
)

// Scene presentation constants.
const (
	GridDivisions   = 100
	CameraHeight    = 400.0
	MinGridSize     = 2.0
	GridPerSpan     = 20.0
	MinFarPlane     = 1000.0
	FarPlanePerSpan = 5000.0
	NearPlane       = 0.1
)

// ValueRange is the finite scan value span used for point colors.
type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SceneFrame is a layer's point cloud framed for a perspective viewer.
// Points are in render space, sorted by sequence; Colors is parallel to
// Points. Footprint is computed from machine coordinates with the fixed
// display thickness on the layer-height axis.
type SceneFrame struct {
	LayerID        string                 `json:"layer_id"`
	LayerNumber    int                    `json:"layer_number"`
	Points         []geometry.Point3      `json:"points"`
	Colors         []string               `json:"colors"`
	ValueRange     *ValueRange            `json:"value_range,omitempty"`
	Bounds         geometry.Bounds        `json:"bounds"`
	Offset         geometry.Point3        `json:"offset"`
	Camera         geometry.CameraFraming `json:"camera"`
	CameraPosition geometry.Point3        `json:"camera_position"`
	FOVDegrees     float64                `json:"fov_degrees"`
	NearPlane      float64                `json:"near_plane"`
	FarPlane       float64                `json:"far_plane"`
	GridSize       float64                `json:"grid_size"`
	GridDivisions  int                    `json:"grid_divisions"`
	Footprint      geometry.Bounds        `json:"footprint"`
}

// BuildScene frames snap's waypoints. cfg must pass Validate.
func BuildScene(snap *LayerSnapshot, cfg Config) (SceneFrame, error) {
	if err := geometry.ValidateFOV(cfg.FOVDegrees); err != nil {
		return SceneFrame{}, err
	}

	records := geometry.SortBySeq(snap.Points)
	waypoints := make([]geometry.Waypoint, len(records))
	for i, r := range records {
		waypoints[i] = r.Waypoint
	}
	points := geometry.RenderPoints(waypoints)
	machine := geometry.MachinePoints(waypoints)

	bounds := geometry.PhysicalBounds{}.Bounds(points)
	camera := geometry.FitCamera(bounds, cfg.FOVDegrees, cfg.CameraMargin)
	colors, vr := pointColors(records, snap.LayerNumber, cfg)

	return SceneFrame{
		LayerID:        snap.LayerID,
		LayerNumber:    snap.LayerNumber,
		Points:         points,
		Colors:         colors,
		ValueRange:     vr,
		Bounds:         bounds,
		Offset:         geometry.Offset(bounds),
		Camera:         camera,
		CameraPosition: geometry.Point3{X: camera.Distance, Y: CameraHeight, Z: camera.Distance},
		FOVDegrees:     cfg.FOVDegrees,
		NearPlane:      NearPlane,
		FarPlane:       math.Max(MinFarPlane, bounds.MaxSpan*FarPlanePerSpan),
		GridSize:       math.Max(MinGridSize, math.Ceil(bounds.MaxSpan*GridPerSpan)),
		GridDivisions:  GridDivisions,
		Footprint:      geometry.DisplayBounds{ZThickness: cfg.ZThickness}.Bounds(machine),
	}, nil
}

// pointColors colors points with a finite scan value on the gradient and the
// rest with the layer's palette color. The range is nil when no point has a
// finite value.
func pointColors(records []PointRecord, layerNumber int, cfg Config) ([]string, *ValueRange) {
	var vr *ValueRange
	for _, r := range records {
		v, ok := finiteValue(r.Value)
		if !ok {
			continue
		}
		if vr == nil {
			vr = &ValueRange{Min: v, Max: v}
			continue
		}
		vr.Min = math.Min(vr.Min, v)
		vr.Max = math.Max(vr.Max, v)
	}

	fallback := cfg.Palette.At(layerNumber)
	colors := make([]string, len(records))
	for i, r := range records {
		if v, ok := finiteValue(r.Value); ok && vr != nil {
			colors[i] = cfg.Gradient.At(v, vr.Min, vr.Max).Hex()
			continue
		}
		colors[i] = fallback
	}
	return colors, vr
}

func finiteValue(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}
