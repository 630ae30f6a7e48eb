package actor

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ballast-engine/ballast/mathx"
)

// OBB represents an oriented bounding box: a center, half extents, and the
// rotation carrying the local box axes into world space. Like AABB it is
// derived from a body on demand.
type OBB struct {
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3
	Rotation    mgl64.Mat3
}

// OBBOf computes the oriented box of a body from its position, half extents
// and orientation quaternion.
func OBBOf(rb *RigidBody) OBB {
	return OBB{
		Center:      rb.Position,
		HalfExtents: rb.HalfExtents,
		Rotation:    mathx.RotationMatrix(rb.Rotation),
	}
}

// OBBFromAABB treats an axis-aligned box as a degenerate OBB with identity
// rotation, so the OBB-OBB test covers mixed pairs.
func OBBFromAABB(a AABB) OBB {
	return OBB{
		Center:      a.Center(),
		HalfExtents: a.HalfExtents(),
		Rotation:    mgl64.Ident3(),
	}
}

// Axis returns the i-th world-space axis of the box (i in 0..2).
func (o OBB) Axis(i int) mgl64.Vec3 {
	return o.Rotation.Col(i)
}

// ProjectedRadius returns the half-length of the box's projection onto a unit
// axis: Σ |axis_i · dir| · halfExtent_i.
func (o OBB) ProjectedRadius(dir mgl64.Vec3) float64 {
	r := 0.0
	for i := 0; i < 3; i++ {
		d := o.Axis(i).Dot(dir)
		if d < 0 {
			d = -d
		}
		r += d * o.HalfExtents[i]
	}
	return r
}

// Corners returns the eight world-space vertices of the box, used by the
// debug-draw layer.
func (o OBB) Corners() [8]mgl64.Vec3 {
	var corners [8]mgl64.Vec3
	idx := 0
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				local := mgl64.Vec3{
					sx * o.HalfExtents.X(),
					sy * o.HalfExtents.Y(),
					sz * o.HalfExtents.Z(),
				}
				corners[idx] = o.Center.Add(o.Rotation.Mul3x1(local))
				idx++
			}
		}
	}
	return corners
}
