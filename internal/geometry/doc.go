// Package geometry frames weld toolpath point clouds for 3D display.
//
// Responsibilities: waypoint-to-render-space remapping, axis-aligned
// bounds, bounding-sphere radius, and camera distance fitting.
// Key types: Waypoint, Point3, Bounds.
//
// Two bounds strategies exist and are deliberately distinct:
// PhysicalBounds floors every axis at 1e-6 and tracks the data extent,
// while DisplayBounds floors X/Y at 1.0 and pins Z to a fixed thickness
// for planar layer footprints.
//
// No I/O or SQL is allowed in this package.
package geometry
