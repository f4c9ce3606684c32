package geometry

import (
	"fmt"
	"math"
)

const (
	// DefaultFOVDegrees is the vertical field of view of the layer viewer.
	DefaultFOVDegrees = 50.0

	// DefaultCameraMargin leaves headroom around the bounding sphere.
	DefaultCameraMargin = 1.2

	// MinCameraDistance keeps near-empty scenes viewable.
	MinCameraDistance = 2.0
)

// CameraFraming is the fitted viewing distance for a scene.
type CameraFraming struct {
	Distance float64 `json:"distance"`
}

// CameraDistance returns the distance at which a sphere of the given radius
// fills a perspective view with fovDegrees, scaled by margin and floored at
// MinCameraDistance.
//
// fovDegrees must lie in (0, 180); callers are expected to check it with
// ValidateFOV. Values outside that range are not rejected here.
func CameraDistance(radius, fovDegrees, margin float64) float64 {
	fov := fovDegrees * math.Pi / 180
	dist := radius / math.Tan(fov/2)
	return math.Max(MinCameraDistance, dist*margin)
}

// FitCamera frames bounds with CameraDistance.
func FitCamera(b Bounds, fovDegrees, margin float64) CameraFraming {
	return CameraFraming{Distance: CameraDistance(b.Radius, fovDegrees, margin)}
}

// ValidateFOV reports whether fovDegrees is usable for CameraDistance.
func ValidateFOV(fovDegrees float64) error {
	if math.IsNaN(fovDegrees) || fovDegrees <= 0 || fovDegrees >= 180 {
		return fmt.Errorf("field of view must be in (0, 180) degrees, got %v", fovDegrees)
	}
	return nil
}
