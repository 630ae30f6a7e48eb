package actor

import "github.com/go-gl/mathgl/mgl64"

// AABB represents an axis-aligned bounding box as a min/max corner pair. It is
// derived on demand from a body's position and half extents, never stored.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// AABBOf computes the axis-aligned box of a body. For spheres the half extents
// are the radius on every axis; orientation is ignored, since ShapeAABB boxes
// do not rotate for collision purposes.
func AABBOf(rb *RigidBody) AABB {
	he := rb.HalfExtents
	if rb.Shape == ShapeSphere {
		he = mgl64.Vec3{rb.Radius, rb.Radius, rb.Radius}
	}
	return AABB{
		Min: rb.Position.Sub(he),
		Max: rb.Position.Add(he),
	}
}

// Center returns the midpoint of the box.
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// HalfExtents returns the half-dimensions of the box.
func (a AABB) HalfExtents() mgl64.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// ContainsPoint checks if a point is inside the box (boundary inclusive).
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two boxes overlap on all three axes.
func (a AABB) Overlaps(other AABB) bool {
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Union returns the smallest box containing both a and other.
func (a AABB) Union(other AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{
			min(a.Min.X(), other.Min.X()),
			min(a.Min.Y(), other.Min.Y()),
			min(a.Min.Z(), other.Min.Z()),
		},
		Max: mgl64.Vec3{
			max(a.Max.X(), other.Max.X()),
			max(a.Max.Y(), other.Max.Y()),
			max(a.Max.Z(), other.Max.Z()),
		},
	}
}

// Expanded returns the box grown by amount in every direction.
func (a AABB) Expanded(amount float64) AABB {
	d := mgl64.Vec3{amount, amount, amount}
	return AABB{Min: a.Min.Sub(d), Max: a.Max.Add(d)}
}
