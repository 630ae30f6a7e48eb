package ballast

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ballast-engine/ballast/actor"
	"github.com/ballast-engine/ballast/mathx"
)

// Contact describes an overlap found by the narrow phase. Normal always
// points from body A toward body B; Penetration is the overlap depth along
// it and is strictly positive.
type Contact struct {
	Penetration float64
	Normal      mgl64.Vec3
}

// axes whose cross products collapse are skipped during SAT
const parallelAxisEpsilon = 1e-6

// SphereVsSphere tests two sphere bodies. Touching surfaces do not count as
// a collision.
func SphereVsSphere(a, b *actor.RigidBody) (Contact, bool) {
	delta := b.Position.Sub(a.Position)
	dist := delta.Len()
	overlap := a.Radius + b.Radius - dist
	if overlap <= 0 {
		return Contact{}, false
	}

	normal := mathx.SafeNormalize(delta)
	if normal == (mgl64.Vec3{}) {
		// Coincident centers give no direction; separate upward.
		normal = mgl64.Vec3{0, 1, 0}
	}
	return Contact{Penetration: overlap, Normal: normal}, true
}

// AABBVsAABB tests two axis-aligned box bodies, reporting the minimum
// translation along a coordinate axis.
func AABBVsAABB(a, b *actor.RigidBody) (Contact, bool) {
	boxA := actor.AABBOf(a)
	boxB := actor.AABBOf(b)

	bestOverlap := math.Inf(1)
	bestAxis := 0
	for axis := 0; axis < 3; axis++ {
		overlap := min(boxA.Max[axis]-boxB.Min[axis], boxB.Max[axis]-boxA.Min[axis])
		if overlap <= 0 {
			return Contact{}, false
		}
		if overlap < bestOverlap {
			bestOverlap = overlap
			bestAxis = axis
		}
	}

	var normal mgl64.Vec3
	if b.Position[bestAxis] >= a.Position[bestAxis] {
		normal[bestAxis] = 1
	} else {
		normal[bestAxis] = -1
	}
	return Contact{Penetration: bestOverlap, Normal: normal}, true
}

// OBBVsOBB tests two oriented box bodies with the separating axis theorem:
// the three face normals of each box plus the nine pairwise edge cross
// products, all evaluated in world space.
func OBBVsOBB(a, b *actor.RigidBody) (Contact, bool) {
	return satOBB(actor.OBBOf(a), actor.OBBOf(b))
}

// OBBVsAABB tests an oriented box against an axis-aligned one by lifting
// the AABB into an identity-rotation OBB.
func OBBVsAABB(a, b *actor.RigidBody) (Contact, bool) {
	return satOBB(actor.OBBOf(a), actor.OBBFromAABB(actor.AABBOf(b)))
}

func satOBB(a, b actor.OBB) (Contact, bool) {
	t := b.Center.Sub(a.Center)

	var candidates [15]mgl64.Vec3
	n := 0
	for i := 0; i < 3; i++ {
		candidates[n] = a.Axis(i)
		n++
	}
	for i := 0; i < 3; i++ {
		candidates[n] = b.Axis(i)
		n++
	}
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			cross := a.Axis(i).Cross(b.Axis(k))
			if cross.Len() < parallelAxisEpsilon {
				// Parallel edges: the face normals already cover this direction.
				continue
			}
			candidates[n] = cross.Normalize()
			n++
		}
	}

	bestOverlap := math.Inf(1)
	var bestAxis mgl64.Vec3
	for _, axis := range candidates[:n] {
		overlap := a.ProjectedRadius(axis) + b.ProjectedRadius(axis) - math.Abs(t.Dot(axis))
		if overlap <= 0 {
			return Contact{}, false
		}
		if overlap < bestOverlap {
			bestOverlap = overlap
			bestAxis = axis
		}
	}

	if t.Dot(bestAxis) < 0 {
		bestAxis = bestAxis.Mul(-1)
	}
	return Contact{Penetration: bestOverlap, Normal: bestAxis}, true
}

// Collide dispatches the narrow-phase test for the shapes of a and b. The
// returned contact normal points from a toward b. Sphere-box pairs have no
// narrow-phase test and never collide.
func Collide(a, b *actor.RigidBody) (Contact, bool) {
	switch {
	case a.Shape == actor.ShapeSphere && b.Shape == actor.ShapeSphere:
		return SphereVsSphere(a, b)
	case a.Shape == actor.ShapeAABB && b.Shape == actor.ShapeAABB:
		return AABBVsAABB(a, b)
	case a.Shape == actor.ShapeOBB && b.Shape == actor.ShapeOBB:
		return OBBVsOBB(a, b)
	case a.Shape == actor.ShapeOBB && b.Shape == actor.ShapeAABB:
		return OBBVsAABB(a, b)
	case a.Shape == actor.ShapeAABB && b.Shape == actor.ShapeOBB:
		contact, hit := OBBVsAABB(b, a)
		if hit {
			contact.Normal = contact.Normal.Mul(-1)
		}
		return contact, hit
	default:
		return Contact{}, false
	}
}

func combineRestitution(a, b *actor.RigidBody) float64 {
	return min(a.Restitution, b.Restitution)
}

func combineFriction(a, b *actor.RigidBody) float64 {
	return math.Sqrt(a.Friction * b.Friction)
}

// resolveContact separates the bodies and applies a restitution impulse with
// Coulomb friction. Positional correction removes the full penetration,
// split by inverse mass.
func resolveContact(a, b *actor.RigidBody, c Contact) {
	invSum := a.InvMass + b.InvMass
	if invSum <= 0 {
		return
	}

	correction := c.Normal.Mul(c.Penetration / invSum)
	a.Position = a.Position.Sub(correction.Mul(a.InvMass))
	b.Position = b.Position.Add(correction.Mul(b.InvMass))

	relVel := b.Velocity.Sub(a.Velocity)
	velAlongNormal := relVel.Dot(c.Normal)
	if velAlongNormal > 0 {
		// Already separating.
		return
	}

	e := combineRestitution(a, b)
	j := -(1 + e) * velAlongNormal / invSum
	impulse := c.Normal.Mul(j)
	a.Velocity = a.Velocity.Sub(impulse.Mul(a.InvMass))
	b.Velocity = b.Velocity.Add(impulse.Mul(b.InvMass))

	// Coulomb friction against the post-impulse tangential velocity.
	relVel = b.Velocity.Sub(a.Velocity)
	tangent := mathx.SafeNormalize(relVel.Sub(c.Normal.Mul(relVel.Dot(c.Normal))))
	if tangent == (mgl64.Vec3{}) {
		return
	}
	jt := -relVel.Dot(tangent) / invSum
	maxFriction := combineFriction(a, b) * math.Abs(j)
	jt = mathx.Clamp(jt, -maxFriction, maxFriction)

	frictionImpulse := tangent.Mul(jt)
	a.Velocity = a.Velocity.Sub(frictionImpulse.Mul(a.InvMass))
	b.Velocity = b.Velocity.Add(frictionImpulse.Mul(b.InvMass))
}
