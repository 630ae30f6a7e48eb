// Package constraint implements impulse-based joints between rigid bodies.
//
// Joints reference bodies by their world index rather than by pointer; the
// owning world resolves indices to bodies each step before calling PreSolve
// and Solve. A BodyB of WorldAnchor attaches the joint to a fixed point in
// world space instead of a second body.
package constraint

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ballast-engine/ballast/actor"
	"github.com/ballast-engine/ballast/mathx"
)

// WorldAnchor marks a joint's second attachment as a fixed world-space
// point. PivotB is then interpreted as a position in world coordinates.
const WorldAnchor = -1

// Kind identifies a joint behavior.
type Kind int

const (
	// PointToPoint pins a point on each body together (ball-and-socket).
	PointToPoint Kind = iota
	// Hinge pins the pivots together and aligns one axis on each body,
	// leaving rotation about that axis free.
	Hinge
	// Slider keeps the pivots on a shared axis, free to translate along it.
	Slider
	// Distance keeps the pivots at a fixed separation.
	Distance
	// ConeTwist pins the pivots and limits swing and twist of the body
	// axes relative to each other.
	ConeTwist
)

func (k Kind) String() string {
	switch k {
	case PointToPoint:
		return "point-to-point"
	case Hinge:
		return "hinge"
	case Slider:
		return "slider"
	case Distance:
		return "distance"
	case ConeTwist:
		return "cone-twist"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Baumgarte stabilization factor: the fraction of positional error fed back
// into the velocity constraint each step.
const positionBias = 0.2

// Joint couples two bodies (or one body and a world anchor). Pivots and axes
// are given in each body's local frame; for a WorldAnchor attachment PivotB
// is a world-space position and AxisB a world-space direction.
type Joint struct {
	Kind  Kind
	BodyA int
	BodyB int

	PivotA mgl64.Vec3
	PivotB mgl64.Vec3
	AxisA  mgl64.Vec3
	AxisB  mgl64.Vec3

	// TargetDistance is the separation held by Distance joints.
	TargetDistance float64

	// Swing and twist limits in radians, used by ConeTwist joints.
	SwingSpan1 float64
	SwingSpan2 float64
	TwistSpan  float64

	// Per-step state computed by PreSolve.
	rA         mgl64.Vec3 // world-space lever arm from A's center to its pivot
	rB         mgl64.Vec3
	worldAxisA mgl64.Vec3
	worldAxisB mgl64.Vec3
}

// NewPointToPoint pins pivotA on body a to pivotB on body b.
func NewPointToPoint(a, b int, pivotA, pivotB mgl64.Vec3) *Joint {
	return &Joint{Kind: PointToPoint, BodyA: a, BodyB: b, PivotA: pivotA, PivotB: pivotB}
}

// NewHinge pins the pivots and aligns axisA on body a with axisB on body b.
func NewHinge(a, b int, pivotA, pivotB, axisA, axisB mgl64.Vec3) *Joint {
	return &Joint{Kind: Hinge, BodyA: a, BodyB: b,
		PivotA: pivotA, PivotB: pivotB, AxisA: axisA, AxisB: axisB}
}

// NewSlider lets body a translate along axisA through its pivot while the
// pivots stay on the axis.
func NewSlider(a, b int, pivotA, pivotB, axisA, axisB mgl64.Vec3) *Joint {
	return &Joint{Kind: Slider, BodyA: a, BodyB: b,
		PivotA: pivotA, PivotB: pivotB, AxisA: axisA, AxisB: axisB}
}

// NewDistance holds the pivots at the given separation.
func NewDistance(a, b int, pivotA, pivotB mgl64.Vec3, distance float64) *Joint {
	return &Joint{Kind: Distance, BodyA: a, BodyB: b,
		PivotA: pivotA, PivotB: pivotB, TargetDistance: distance}
}

// NewConeTwist pins the pivots and limits the relative orientation of the
// body axes. Spans default to π (unlimited) until set.
func NewConeTwist(a, b int, pivotA, pivotB, axisA, axisB mgl64.Vec3) *Joint {
	return &Joint{Kind: ConeTwist, BodyA: a, BodyB: b,
		PivotA: pivotA, PivotB: pivotB, AxisA: axisA, AxisB: axisB,
		SwingSpan1: math.Pi, SwingSpan2: math.Pi, TwistSpan: math.Pi}
}

// Validate reports whether the joint's body indices are usable against a
// world holding bodyCount bodies.
func (j *Joint) Validate(bodyCount int) error {
	if j.BodyA < 0 || j.BodyA >= bodyCount {
		return fmt.Errorf("joint %s: body A index %d out of range [0,%d)", j.Kind, j.BodyA, bodyCount)
	}
	if j.BodyB == WorldAnchor {
		return nil
	}
	if j.BodyB < 0 || j.BodyB >= bodyCount {
		return fmt.Errorf("joint %s: body B index %d out of range [0,%d)", j.Kind, j.BodyB, bodyCount)
	}
	if j.BodyA == j.BodyB {
		return fmt.Errorf("joint %s: cannot join body %d to itself", j.Kind, j.BodyA)
	}
	return nil
}

// PreSolve computes the world-space lever arms and axes for this step.
// When BodyB is a world anchor, b must be a static body at the origin so
// PivotB passes through as a world position.
func (j *Joint) PreSolve(a, b *actor.RigidBody, dt float64) {
	rotA := mathx.RotationMatrix(a.Rotation)
	rotB := mathx.RotationMatrix(b.Rotation)

	j.rA = rotA.Mul3x1(j.PivotA)
	j.rB = rotB.Mul3x1(j.PivotB)
	j.worldAxisA = mathx.SafeNormalize(rotA.Mul3x1(j.AxisA))
	j.worldAxisB = mathx.SafeNormalize(rotB.Mul3x1(j.AxisB))
}

// Solve applies one sequential-impulse iteration for the joint.
func (j *Joint) Solve(a, b *actor.RigidBody, dt float64) {
	switch j.Kind {
	case PointToPoint:
		j.solvePointToPoint(a, b, dt)
	case Hinge:
		j.solvePointToPoint(a, b, dt)
		j.solveAxisAlignment(a, b, dt)
	case Slider:
		j.solveSlider(a, b, dt)
		j.solveAxisAlignment(a, b, dt)
	case Distance:
		j.solveDistance(a, b, dt)
	case ConeTwist:
		j.solvePointToPoint(a, b, dt)
		j.solveSwingLimit(a, b, dt)
		j.solveTwistLimit(a, b, dt)
	}
}

// PostSolve runs after all iterations. The solver carries no accumulated
// impulses across steps, so there is nothing to flush yet.
func (j *Joint) PostSolve(a, b *actor.RigidBody) {}

func (j *Joint) pivotError(a, b *actor.RigidBody) mgl64.Vec3 {
	return b.Position.Add(j.rB).Sub(a.Position.Add(j.rA))
}

func (j *Joint) solvePointToPoint(a, b *actor.RigidBody, dt float64) {
	err := j.pivotError(a, b)
	axes := [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for _, n := range axes {
		bias := positionBias / dt * err.Dot(n)
		applyLinearImpulse(a, b, j.rA, j.rB, n, bias, false)
	}
}

func (j *Joint) solveDistance(a, b *actor.RigidBody, dt float64) {
	d := j.pivotError(a, b)
	length := d.Len()
	n := mathx.SafeNormalize(d)
	if n == (mgl64.Vec3{}) {
		// Coincident pivots with a nonzero target: no direction to push
		// along; pick one so the joint can re-establish separation.
		if j.TargetDistance == 0 {
			return
		}
		n = mgl64.Vec3{0, 1, 0}
	}
	bias := positionBias / dt * (length - j.TargetDistance)
	applyLinearImpulse(a, b, j.rA, j.rB, n, bias, false)
}

func (j *Joint) solveSlider(a, b *actor.RigidBody, dt float64) {
	axis := j.worldAxisA
	if axis == (mgl64.Vec3{}) {
		return
	}
	d := j.pivotError(a, b)
	// Only the offset perpendicular to the axis is an error; motion along
	// the axis is the joint's degree of freedom.
	t1, t2 := tangentBasis(axis)
	for _, n := range [2]mgl64.Vec3{t1, t2} {
		bias := positionBias / dt * d.Dot(n)
		applyLinearImpulse(a, b, j.rA, j.rB, n, bias, false)
	}
}

// solveAxisAlignment drives worldAxisB onto worldAxisA with two angular
// constraints perpendicular to the axis. Rotation about the axis stays free.
func (j *Joint) solveAxisAlignment(a, b *actor.RigidBody, dt float64) {
	aA, aB := j.worldAxisA, j.worldAxisB
	if aA == (mgl64.Vec3{}) || aB == (mgl64.Vec3{}) {
		return
	}
	err := aA.Cross(aB)
	t1, t2 := tangentBasis(aA)
	for _, t := range [2]mgl64.Vec3{t1, t2} {
		bias := positionBias / dt * err.Dot(t)
		applyAngularImpulse(a, b, t, bias, false)
	}
}

func (j *Joint) solveSwingLimit(a, b *actor.RigidBody, dt float64) {
	aA, aB := j.worldAxisA, j.worldAxisB
	if aA == (mgl64.Vec3{}) || aB == (mgl64.Vec3{}) {
		return
	}
	limit := min(j.SwingSpan1, j.SwingSpan2)
	swing := math.Acos(mathx.Clamp(aA.Dot(aB), -1, 1))
	if swing <= limit {
		return
	}
	// Positive rotation of B about this axis increases the swing angle.
	t := mathx.SafeNormalize(aA.Cross(aB))
	if t == (mgl64.Vec3{}) {
		return
	}
	bias := positionBias / dt * (swing - limit)
	applyAngularImpulse(a, b, t, bias, true)
}

func (j *Joint) solveTwistLimit(a, b *actor.RigidBody, dt float64) {
	axis := mathx.SafeNormalize(j.AxisA)
	if axis == (mgl64.Vec3{}) {
		return
	}
	// Twist is the component of the relative rotation about the joint axis,
	// extracted by swing-twist decomposition in A's frame.
	qRel := a.Rotation.Inverse().Mul(b.Rotation)
	twist := 2 * math.Atan2(qRel.V.Dot(axis), qRel.W)
	if twist > math.Pi {
		twist -= 2 * math.Pi
	} else if twist < -math.Pi {
		twist += 2 * math.Pi
	}
	excess := math.Abs(twist) - j.TwistSpan
	if excess <= 0 {
		return
	}
	t := j.worldAxisA.Mul(sign(twist))
	bias := positionBias / dt * excess
	applyAngularImpulse(a, b, t, bias, true)
}

// applyLinearImpulse solves a scalar velocity constraint along n at the
// joint pivots and applies equal and opposite impulses. With limitOnly set
// the impulse is clamped to only ever push the bodies back inside a limit.
func applyLinearImpulse(a, b *actor.RigidBody, rA, rB, n mgl64.Vec3, bias float64, limitOnly bool) {
	iA := a.InverseInertiaWorld()
	iB := b.InverseInertiaWorld()

	vA := a.Velocity.Add(a.AngularVelocity.Cross(rA))
	vB := b.Velocity.Add(b.AngularVelocity.Cross(rB))
	jv := vB.Sub(vA).Dot(n)

	rAxN := rA.Cross(n)
	rBxN := rB.Cross(n)
	k := a.InvMass + b.InvMass +
		iA.Mul3x1(rAxN).Cross(rA).Dot(n) +
		iB.Mul3x1(rBxN).Cross(rB).Dot(n)
	if k <= 0 {
		return
	}

	lambda := -(jv + bias) / k
	if limitOnly && lambda > 0 {
		return
	}
	impulse := n.Mul(lambda)

	a.Velocity = a.Velocity.Sub(impulse.Mul(a.InvMass))
	a.AngularVelocity = a.AngularVelocity.Sub(iA.Mul3x1(rA.Cross(impulse)))
	b.Velocity = b.Velocity.Add(impulse.Mul(b.InvMass))
	b.AngularVelocity = b.AngularVelocity.Add(iB.Mul3x1(rB.Cross(impulse)))
}

// applyAngularImpulse solves a scalar angular velocity constraint about t.
func applyAngularImpulse(a, b *actor.RigidBody, t mgl64.Vec3, bias float64, limitOnly bool) {
	iA := a.InverseInertiaWorld()
	iB := b.InverseInertiaWorld()

	jv := b.AngularVelocity.Sub(a.AngularVelocity).Dot(t)
	k := iA.Mul3x1(t).Dot(t) + iB.Mul3x1(t).Dot(t)
	if k <= 0 {
		return
	}

	lambda := -(jv + bias) / k
	if limitOnly && lambda > 0 {
		return
	}

	a.AngularVelocity = a.AngularVelocity.Sub(iA.Mul3x1(t).Mul(lambda))
	b.AngularVelocity = b.AngularVelocity.Add(iB.Mul3x1(t).Mul(lambda))
}

// tangentBasis returns two unit vectors orthogonal to n and to each other.
func tangentBasis(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(n.X()) > 0.9 {
		ref = mgl64.Vec3{0, 1, 0}
	}
	t1 := mathx.SafeNormalize(n.Cross(ref))
	t2 := n.Cross(t1)
	return t1, t2
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
