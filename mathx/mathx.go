// Package mathx holds the numerical policies the simulation depends on, built
// on top of mgl64. The algebra itself (vectors, matrices, quaternions) is
// mgl64's; what lives here are the conventions that must be identical at every
// call site: zero-length vectors normalize to zero, and orientations compose
// with the angular velocity quaternion on the left.
package mathx

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SafeNormalize returns the unit vector of v, or the zero vector when v has
// (near) zero length. Callers never see NaN.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	length := v.Len()
	if length < 1e-12 {
		return mgl64.Vec3{}
	}
	return v.Mul(1.0 / length)
}

// IntegrateOrientation advances q by the world-space angular velocity omega
// over dt:
//
//	q' = normalize(q + 0.5*dt*(omegaQuat * q))
//
// The angular velocity quaternion multiplies on the LEFT. This is the single
// composition convention used everywhere; renormalization is part of the
// operation, not an optimization, because the additive update drifts off the
// unit sphere.
func IntegrateOrientation(q mgl64.Quat, omega mgl64.Vec3, dt float64) mgl64.Quat {
	omegaQuat := mgl64.Quat{W: 0, V: omega}
	qDot := omegaQuat.Mul(q).Scale(0.5)
	return q.Add(qDot.Scale(dt)).Normalize()
}

// RotationMatrix returns the 3x3 rotation matrix of q.
func RotationMatrix(q mgl64.Quat) mgl64.Mat3 {
	return q.Mat4().Mat3()
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
