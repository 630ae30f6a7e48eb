package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ballast-engine/ballast/mathx"
)

// ShapeType discriminates the collision shape of a body.
type ShapeType int

const (
	// ShapeSphere uses the body's Radius.
	ShapeSphere ShapeType = iota
	// ShapeAABB uses the body's HalfExtents; the box never rotates for
	// collision purposes.
	ShapeAABB
	// ShapeOBB uses the body's HalfExtents oriented by its rotation.
	ShapeOBB
)

// RigidBody represents a physical object in the simulation.
//
// A body with Mass <= 0 is static: its inverse mass and inverse inertia are
// zero, and integration, collision resolution and constraints never change its
// position or velocity. Bodies are owned by a PhysicsWorld and addressed by
// their stable index in it; nothing in this package holds a body past the call
// it receives one in.
type RigidBody struct {
	// Material properties
	Restitution float64 // 0 = no bounce, 1 = perfect bounce
	Friction    float64 // Coulomb friction coefficient, >= 0

	// Kinematics
	Position        mgl64.Vec3
	Velocity        mgl64.Vec3 // m/s
	Acceleration    mgl64.Vec3 // m/s², from the last Integrate call
	Rotation        mgl64.Quat
	AngularVelocity mgl64.Vec3 // rad/s

	// Mass properties
	Mass             float64
	InvMass          float64 // 1/Mass, or 0 for static bodies
	InertiaTensor    mgl64.Mat3
	InvInertiaTensor mgl64.Mat3 // zero for static bodies

	// Collision shape
	Shape       ShapeType
	Radius      float64
	HalfExtents mgl64.Vec3

	// Per-step accumulators, zeroed at the end of every Integrate call
	forceAccum  mgl64.Vec3
	torqueAccum mgl64.Vec3
}

// NewRigidBody returns a body with the default state: static, unit sphere,
// half extents (0.5, 0.5, 0.5), restitution 0.3, friction 0.5, identity
// rotation. Call SetMass to make it dynamic.
func NewRigidBody() *RigidBody {
	return &RigidBody{
		Restitution:   0.3,
		Friction:      0.5,
		Rotation:      mgl64.QuatIdent(),
		InertiaTensor: mgl64.Ident3(),
		Shape:         ShapeSphere,
		Radius:        1.0,
		HalfExtents:   mgl64.Vec3{0.5, 0.5, 0.5},
	}
}

// SetMass sets the mass and precomputes its inverse. A mass <= 0 marks the
// body static: zero inverse mass and zero inverse inertia, so no force,
// impulse or torque can move it. Dynamic bodies get a unit inertia tensor as a
// placeholder; call SetInertiaFromShape for the real one.
func (rb *RigidBody) SetMass(m float64) {
	rb.Mass = m
	if m <= 0 {
		rb.InvMass = 0
		rb.InvInertiaTensor = mgl64.Mat3{}
		return
	}
	rb.InvMass = 1.0 / m
	rb.InertiaTensor = mgl64.Ident3()
	rb.InvInertiaTensor = mgl64.Ident3()
}

// SetRadius sets the sphere collision radius.
func (rb *RigidBody) SetRadius(r float64) {
	rb.Radius = r
}

// SetHalfExtents sets the box half-dimensions used by AABB and OBB shapes.
func (rb *RigidBody) SetHalfExtents(he mgl64.Vec3) {
	rb.HalfExtents = he
}

// SetInertiaFromShape replaces the placeholder inertia tensor with the solid
// sphere or box tensor for the current mass and shape. No-op for static
// bodies.
func (rb *RigidBody) SetInertiaFromShape() {
	if rb.InvMass == 0 {
		return
	}

	switch rb.Shape {
	case ShapeSphere:
		// I = (2/5) m r², identical on all axes
		i := (2.0 / 5.0) * rb.Mass * rb.Radius * rb.Radius
		rb.InertiaTensor = mgl64.Diag3(mgl64.Vec3{i, i, i})
	case ShapeAABB, ShapeOBB:
		x := rb.HalfExtents.X() * 2
		y := rb.HalfExtents.Y() * 2
		z := rb.HalfExtents.Z() * 2
		factor := rb.Mass / 12.0
		rb.InertiaTensor = mgl64.Diag3(mgl64.Vec3{
			factor * (y*y + z*z),
			factor * (x*x + z*z),
			factor * (x*x + y*y),
		})
	}
	rb.InvInertiaTensor = rb.InertiaTensor.Inv()
}

// InverseInertiaWorld returns the inverse inertia tensor in world space,
// I⁻¹_world = R·I⁻¹_local·Rᵀ. Zero for static bodies.
func (rb *RigidBody) InverseInertiaWorld() mgl64.Mat3 {
	if rb.InvMass == 0 {
		return mgl64.Mat3{}
	}
	r := mathx.RotationMatrix(rb.Rotation)
	return r.Mul3(rb.InvInertiaTensor).Mul3(r.Transpose())
}

// ApplyForce accumulates a force at the center of mass.
func (rb *RigidBody) ApplyForce(force mgl64.Vec3) {
	rb.forceAccum = rb.forceAccum.Add(force)
}

// ApplyForceAtPoint accumulates a force applied at a world-space point,
// adding the torque (point - position) × force.
func (rb *RigidBody) ApplyForceAtPoint(force, point mgl64.Vec3) {
	rb.forceAccum = rb.forceAccum.Add(force)
	r := point.Sub(rb.Position)
	rb.torqueAccum = rb.torqueAccum.Add(r.Cross(force))
}

// ApplyTorque accumulates a torque.
func (rb *RigidBody) ApplyTorque(torque mgl64.Vec3) {
	rb.torqueAccum = rb.torqueAccum.Add(torque)
}

// ClearForces zeroes the force and torque accumulators.
func (rb *RigidBody) ClearForces() {
	rb.forceAccum = mgl64.Vec3{}
	rb.torqueAccum = mgl64.Vec3{}
}

// ForceAccum returns the currently accumulated force.
func (rb *RigidBody) ForceAccum() mgl64.Vec3 {
	return rb.forceAccum
}

// TorqueAccum returns the currently accumulated torque.
func (rb *RigidBody) TorqueAccum() mgl64.Vec3 {
	return rb.torqueAccum
}

// Integrate advances the body state by dt using semi-implicit (symplectic)
// Euler: velocity is updated first and the position moves with the
// post-update velocity. The ordering keeps energy bounded over long runs.
// Static bodies do not move, but the accumulators are zeroed unconditionally
// so forces never leak into the next step.
func (rb *RigidBody) Integrate(dt float64) {
	if rb.InvMass == 0 {
		rb.ClearForces()
		return
	}

	// Linear: a = F/m; v += a·dt; x += v·dt
	rb.Acceleration = rb.forceAccum.Mul(rb.InvMass)
	rb.Velocity = rb.Velocity.Add(rb.Acceleration.Mul(dt))
	rb.Position = rb.Position.Add(rb.Velocity.Mul(dt))

	// Angular: α = I⁻¹·τ; ω += α·dt
	angularAccel := rb.InvInertiaTensor.Mul3x1(rb.torqueAccum)
	rb.AngularVelocity = rb.AngularVelocity.Add(angularAccel.Mul(dt))
	rb.Rotation = mathx.IntegrateOrientation(rb.Rotation, rb.AngularVelocity, dt)

	rb.ClearForces()
}

// Static reports whether the body is immovable.
func (rb *RigidBody) Static() bool {
	return rb.InvMass == 0
}

// KineticEnergy returns ½m|v|² + ½ω·Iω, useful for stability checks.
func (rb *RigidBody) KineticEnergy() float64 {
	if rb.InvMass == 0 {
		return 0
	}
	linear := 0.5 * rb.Mass * rb.Velocity.Dot(rb.Velocity)
	angular := 0.5 * rb.AngularVelocity.Dot(rb.InertiaTensor.Mul3x1(rb.AngularVelocity))
	return linear + angular
}

// Speed returns the magnitude of the linear velocity.
func (rb *RigidBody) Speed() float64 {
	return math.Sqrt(rb.Velocity.Dot(rb.Velocity))
}
