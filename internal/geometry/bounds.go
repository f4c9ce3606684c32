package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// PhysicalSizeFloor is the minimum extent of any axis under PhysicalBounds.
	PhysicalSizeFloor = 1e-6

	// DisplaySizeFloor is the minimum X/Y extent under DisplayBounds.
	DisplaySizeFloor = 1.0

	// DefaultZThickness is the Z extent used by DisplayBounds when none is given.
	DefaultZThickness = 2.0
)

// Point3 is a render-space position. Axis Y is "up".
type Point3 = r3.Vec

// Bounds is an axis-aligned bounding volume with a derived bounding sphere.
// Values are recomputed from scratch for every point set.
type Bounds struct {
	Min     Point3  `json:"min"`
	Max     Point3  `json:"max"`
	Center  Point3  `json:"center"`
	Size    Point3  `json:"size"`
	MaxSpan float64 `json:"max_span"`
	Radius  float64 `json:"radius"`
}

// Strategy computes bounds for a point set.
type Strategy interface {
	Bounds(points []Point3) Bounds
}

// PhysicalBounds is the data-derived strategy used to fit the camera.
type PhysicalBounds struct{}

// Bounds implements Strategy.
func (PhysicalBounds) Bounds(points []Point3) Bounds {
	return ComputeBounds(points)
}

// DisplayBounds is the planar footprint strategy with a fixed Z thickness.
// A zero ZThickness selects DefaultZThickness.
type DisplayBounds struct {
	ZThickness float64
}

// Bounds implements Strategy. MaxSpan and Radius are filled from the
// resulting size so the footprint can be framed like any other volume.
func (d DisplayBounds) Bounds(points []Point3) Bounds {
	z := d.ZThickness
	if z == 0 {
		z = DefaultZThickness
	}
	b := ComputeBoundsWithFixedZ(points, z)
	b.MaxSpan = maxComponent(b.Size)
	b.Radius = halfDiagonal(b.Size)
	return b
}

// ComputeBounds returns the axis-aligned bounds of points. Each size axis is
// floored independently at PhysicalSizeFloor so degenerate clouds never
// produce a zero scale. An empty input yields a unit box at the origin.
func ComputeBounds(points []Point3) Bounds {
	if len(points) == 0 {
		return Bounds{
			Min:     Point3{X: -0.5, Y: -0.5, Z: -0.5},
			Max:     Point3{X: 0.5, Y: 0.5, Z: 0.5},
			Center:  Point3{},
			Size:    Point3{X: 1, Y: 1, Z: 1},
			MaxSpan: 1,
			Radius:  math.Sqrt(3) / 2,
		}
	}

	lo, hi := extrema(points)
	size := Point3{
		X: math.Max(hi.X-lo.X, PhysicalSizeFloor),
		Y: math.Max(hi.Y-lo.Y, PhysicalSizeFloor),
		Z: math.Max(hi.Z-lo.Z, PhysicalSizeFloor),
	}

	return Bounds{
		Min:     lo,
		Max:     hi,
		Center:  midpoint(lo, hi),
		Size:    size,
		MaxSpan: maxComponent(size),
		Radius:  halfDiagonal(size),
	}
}

// ComputeBoundsWithFixedZ returns footprint bounds for a planar layer. X and Y
// extents are floored at DisplaySizeFloor, Z is exactly zThickness, and the
// center still tracks the true data midpoint on every axis. MaxSpan and Radius
// are left zero; use DisplayBounds when they are needed.
func ComputeBoundsWithFixedZ(points []Point3, zThickness float64) Bounds {
	if len(points) == 0 {
		return Bounds{
			Min:    Point3{X: -0.5, Y: -0.5, Z: -1},
			Max:    Point3{X: 0.5, Y: 0.5, Z: 1},
			Center: Point3{},
			Size:   Point3{X: 1, Y: 1, Z: zThickness},
		}
	}

	lo, hi := extrema(points)
	return Bounds{
		Min:    lo,
		Max:    hi,
		Center: midpoint(lo, hi),
		Size: Point3{
			X: math.Max(hi.X-lo.X, DisplaySizeFloor),
			Y: math.Max(hi.Y-lo.Y, DisplaySizeFloor),
			Z: zThickness,
		},
	}
}

// Offset is the translation that moves the bounds center to the origin.
func Offset(b Bounds) Point3 {
	return r3.Scale(-1, b.Center)
}

func extrema(points []Point3) (lo, hi Point3) {
	lo = Point3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi = Point3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range points {
		if p.X < lo.X {
			lo.X = p.X
		}
		if p.Y < lo.Y {
			lo.Y = p.Y
		}
		if p.Z < lo.Z {
			lo.Z = p.Z
		}
		if p.X > hi.X {
			hi.X = p.X
		}
		if p.Y > hi.Y {
			hi.Y = p.Y
		}
		if p.Z > hi.Z {
			hi.Z = p.Z
		}
	}
	return lo, hi
}

func midpoint(a, b Point3) Point3 {
	return Point3{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		Z: (a.Z + b.Z) / 2,
	}
}

func maxComponent(v Point3) float64 {
	return math.Max(v.X, math.Max(v.Y, v.Z))
}

// halfDiagonal sums squares in X, Y, Z order before the square root; r3.Norm
// uses Hypot, which rounds differently.
func halfDiagonal(size Point3) float64 {
	return 0.5 * math.Sqrt(r3.Dot(size, size))
}
