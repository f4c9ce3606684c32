package geometry

import (
	"math"
	"sort"
)

// Waypoint is one recorded toolpath position in machine coordinates.
// Seq orders waypoints within a layer but need not start at 0 or be
// contiguous.
type Waypoint struct {
	Seq int     `json:"seq"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
}

// Sequence returns w.Seq. Types embedding a Waypoint inherit it and can be
// passed to SortBySeq.
func (w Waypoint) Sequence() int { return w.Seq }

// Sequenced is anything ordered by a waypoint sequence number.
type Sequenced interface {
	Sequence() int
}

// RenderPoint remaps a waypoint into render space. Machine Z becomes the
// render "up" axis (Y) and machine Y becomes render depth (Z). Non-finite
// coordinates map to 0.
func RenderPoint(w Waypoint) Point3 {
	return Point3{
		X: FiniteOrZero(w.X),
		Y: FiniteOrZero(w.Z),
		Z: FiniteOrZero(w.Y),
	}
}

// MachinePoint is w in machine axes with non-finite coordinates mapped to 0.
func MachinePoint(w Waypoint) Point3 {
	return Point3{
		X: FiniteOrZero(w.X),
		Y: FiniteOrZero(w.Y),
		Z: FiniteOrZero(w.Z),
	}
}

// SortBySeq returns a copy of items ordered by sequence. Equal sequence
// numbers keep their input order.
func SortBySeq[T Sequenced](items []T) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Sequence() < sorted[j].Sequence()
	})
	return sorted
}

// RenderPoints sorts waypoints by Seq and remaps each into render space.
func RenderPoints(waypoints []Waypoint) []Point3 {
	return mapSorted(waypoints, RenderPoint)
}

// MachinePoints sorts waypoints by Seq and returns them in machine axes.
func MachinePoints(waypoints []Waypoint) []Point3 {
	return mapSorted(waypoints, MachinePoint)
}

func mapSorted(waypoints []Waypoint, fn func(Waypoint) Point3) []Point3 {
	sorted := SortBySeq(waypoints)
	points := make([]Point3, len(sorted))
	for i, w := range sorted {
		points[i] = fn(w)
	}
	return points
}

// FiniteOrZero returns v, or 0 when v is NaN or ±Inf. Infinite coordinates
// are zeroed along with NaN so bounds and camera framing stay finite.
func FiniteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
