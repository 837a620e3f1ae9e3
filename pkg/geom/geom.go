// Package geom provides the small amount of 3D vector and axis-aligned
// bounding box math used by scene loading and placement search.
//
// All quantities are float64 world units (meters for room scans) with Z as
// the vertical axis. "Planar" operations work on X and Y only and ignore Z.
package geom

import "math"

// Vec3 is a point or extent in world space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// V returns a Vec3 from its components.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// FromArray converts a [3]float64 (the wire form) to a Vec3.
func FromArray(a [3]float64) Vec3 {
	return Vec3{X: a[0], Y: a[1], Z: a[2]}
}

// Array returns v in its [3]float64 wire form.
func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Min returns the componentwise minimum of v and o.
func (v Vec3) Min(o Vec3) Vec3 {
	return Vec3{math.Min(v.X, o.X), math.Min(v.Y, o.Y), math.Min(v.Z, o.Z)}
}

// Max returns the componentwise maximum of v and o.
func (v Vec3) Max(o Vec3) Vec3 {
	return Vec3{math.Max(v.X, o.X), math.Max(v.Y, o.Y), math.Max(v.Z, o.Z)}
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// PlanarDistance is the Euclidean distance between a and b in the XY plane.
func PlanarDistance(a, b Vec3) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// AABB is an axis-aligned bounding box given by its min and max corners.
type AABB struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// Box returns the AABB centered on center with the given full extents.
func Box(center, size Vec3) AABB {
	half := size.Scale(0.5)
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Empty returns an inverted box that any Extend call will replace.
func Empty() AABB {
	inf := math.Inf(1)
	return AABB{Min: V(inf, inf, inf), Max: V(-inf, -inf, -inf)}
}

// Size returns Max - Min.
func (b AABB) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Union returns the smallest box containing both b and o.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// InflateXY grows the X and Y extents outward by margin on every side.
// Z is left untouched.
func (b AABB) InflateXY(margin float64) AABB {
	return AABB{
		Min: Vec3{b.Min.X - margin, b.Min.Y - margin, b.Min.Z},
		Max: Vec3{b.Max.X + margin, b.Max.Y + margin, b.Max.Z},
	}
}

// Overlaps reports whether b and o intersect. Touching faces count as
// overlap: for every axis b.Min <= o.Max and b.Max >= o.Min.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// ContainsXY reports whether p lies inside b in the XY plane, boundary included.
func (b AABB) ContainsXY(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// DistanceToEdgeXY is the smallest distance from p to any of the four
// vertical side planes of b, measured along X or Y.
func (b AABB) DistanceToEdgeXY(p Vec3) float64 {
	return min(
		math.Abs(p.X-b.Min.X),
		math.Abs(p.X-b.Max.X),
		math.Abs(p.Y-b.Min.Y),
		math.Abs(p.Y-b.Max.Y),
	)
}
