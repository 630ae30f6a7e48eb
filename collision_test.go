package ballast

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ballast-engine/ballast/actor"
)

func vec3AlmostEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return math.Abs(a.X()-b.X()) < epsilon &&
		math.Abs(a.Y()-b.Y()) < epsilon &&
		math.Abs(a.Z()-b.Z()) < epsilon
}

func sphereAt(pos mgl64.Vec3, radius float64) *actor.RigidBody {
	rb := actor.NewRigidBody()
	rb.Shape = actor.ShapeSphere
	rb.SetRadius(radius)
	rb.Position = pos
	return rb
}

func boxAt(pos, halfExtents mgl64.Vec3) *actor.RigidBody {
	rb := actor.NewRigidBody()
	rb.Shape = actor.ShapeAABB
	rb.SetHalfExtents(halfExtents)
	rb.Position = pos
	return rb
}

func obbAt(pos, halfExtents mgl64.Vec3, rotation mgl64.Quat) *actor.RigidBody {
	rb := actor.NewRigidBody()
	rb.Shape = actor.ShapeOBB
	rb.SetHalfExtents(halfExtents)
	rb.Position = pos
	rb.Rotation = rotation
	return rb
}

func TestSphereVsSphere(t *testing.T) {
	tests := []struct {
		name            string
		posA, posB      mgl64.Vec3
		radiusA         float64
		radiusB         float64
		wantHit         bool
		wantPenetration float64
		wantNormal      mgl64.Vec3
	}{
		{
			name: "overlapping", posA: mgl64.Vec3{0, 0, 0}, posB: mgl64.Vec3{1.5, 0, 0},
			radiusA: 1, radiusB: 1,
			wantHit: true, wantPenetration: 0.5, wantNormal: mgl64.Vec3{1, 0, 0},
		},
		{
			name: "touching is not colliding", posA: mgl64.Vec3{0, 0, 0}, posB: mgl64.Vec3{2, 0, 0},
			radiusA: 1, radiusB: 1,
			wantHit: false,
		},
		{
			name: "separated", posA: mgl64.Vec3{0, 0, 0}, posB: mgl64.Vec3{5, 0, 0},
			radiusA: 1, radiusB: 1,
			wantHit: false,
		},
		{
			name: "normal points from A to B", posA: mgl64.Vec3{0, 2, 0}, posB: mgl64.Vec3{0, 0.5, 0},
			radiusA: 1, radiusB: 1,
			wantHit: true, wantPenetration: 0.5, wantNormal: mgl64.Vec3{0, -1, 0},
		},
		{
			name: "coincident centers separate upward", posA: mgl64.Vec3{1, 1, 1}, posB: mgl64.Vec3{1, 1, 1},
			radiusA: 1, radiusB: 0.5,
			wantHit: true, wantPenetration: 1.5, wantNormal: mgl64.Vec3{0, 1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := sphereAt(tt.posA, tt.radiusA)
			b := sphereAt(tt.posB, tt.radiusB)

			contact, hit := SphereVsSphere(a, b)
			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if !hit {
				return
			}
			if math.Abs(contact.Penetration-tt.wantPenetration) > 1e-9 {
				t.Errorf("penetration = %v, want %v", contact.Penetration, tt.wantPenetration)
			}
			if !vec3AlmostEqual(contact.Normal, tt.wantNormal, 1e-9) {
				t.Errorf("normal = %v, want %v", contact.Normal, tt.wantNormal)
			}
		})
	}
}

func TestAABBVsAABB(t *testing.T) {
	tests := []struct {
		name            string
		posB            mgl64.Vec3
		wantHit         bool
		wantPenetration float64
		wantNormal      mgl64.Vec3
	}{
		{
			// Unit cubes, B shifted 1.5 on x: overlap 0.5 on x, 2 on y and z.
			name: "overlap picks minimum axis", posB: mgl64.Vec3{1.5, 0, 0},
			wantHit: true, wantPenetration: 0.5, wantNormal: mgl64.Vec3{1, 0, 0},
		},
		{
			name: "negative direction", posB: mgl64.Vec3{0, -1.5, 0},
			wantHit: true, wantPenetration: 0.5, wantNormal: mgl64.Vec3{0, -1, 0},
		},
		{
			name: "touching faces is not colliding", posB: mgl64.Vec3{2, 0, 0},
			wantHit: false,
		},
		{
			name: "separated", posB: mgl64.Vec3{5, 5, 5},
			wantHit: false,
		},
	}

	he := mgl64.Vec3{1, 1, 1}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := boxAt(mgl64.Vec3{}, he)
			b := boxAt(tt.posB, he)

			contact, hit := AABBVsAABB(a, b)
			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if !hit {
				return
			}
			if math.Abs(contact.Penetration-tt.wantPenetration) > 1e-9 {
				t.Errorf("penetration = %v, want %v", contact.Penetration, tt.wantPenetration)
			}
			if !vec3AlmostEqual(contact.Normal, tt.wantNormal, 1e-9) {
				t.Errorf("normal = %v, want %v", contact.Normal, tt.wantNormal)
			}
		})
	}
}

func TestOBBVsOBB(t *testing.T) {
	he := mgl64.Vec3{1, 1, 1}

	t.Run("axis-aligned overlap", func(t *testing.T) {
		a := obbAt(mgl64.Vec3{}, he, mgl64.QuatIdent())
		b := obbAt(mgl64.Vec3{1.5, 0, 0}, he, mgl64.QuatIdent())

		contact, hit := OBBVsOBB(a, b)
		if !hit {
			t.Fatal("expected a collision")
		}
		if math.Abs(contact.Penetration-0.5) > 1e-9 {
			t.Errorf("penetration = %v, want 0.5", contact.Penetration)
		}
		if !vec3AlmostEqual(contact.Normal, mgl64.Vec3{1, 0, 0}, 1e-9) {
			t.Errorf("normal = %v, want (1,0,0)", contact.Normal)
		}
	})

	t.Run("rotation separates where bounding boxes overlap", func(t *testing.T) {
		// A unit cube rotated 45° about z has corners at x = ±√2 but its
		// faces pull in: at the height of the second cube's face the profiles
		// clear each other even though the world-space bounds intersect.
		a := obbAt(mgl64.Vec3{}, he, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1}))
		b := obbAt(mgl64.Vec3{2.3, 2.3, 0}, he, mgl64.QuatIdent())

		boxA := actor.AABBOf(a).Expanded(math.Sqrt2 - 1) // conservative bounds do overlap
		if !boxA.Overlaps(actor.AABBOf(b)) {
			t.Fatal("test setup: bounds should overlap")
		}
		if _, hit := OBBVsOBB(a, b); hit {
			t.Error("separating axis missed: rotated cubes do not touch")
		}
	})

	t.Run("rotated cubes colliding", func(t *testing.T) {
		a := obbAt(mgl64.Vec3{}, he, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1}))
		b := obbAt(mgl64.Vec3{2.2, 0, 0}, he, mgl64.QuatIdent())

		// The rotated cube's corner reaches x = √2; the other face sits at
		// x = 1.2, so they interpenetrate by √2 - 1.2 along x.
		contact, hit := OBBVsOBB(a, b)
		if !hit {
			t.Fatal("expected a collision")
		}
		if contact.Normal.X() <= 0 {
			t.Errorf("normal = %v, want +x component toward B", contact.Normal)
		}
	})

	t.Run("parallel boxes skip degenerate cross axes", func(t *testing.T) {
		a := obbAt(mgl64.Vec3{}, he, mgl64.QuatIdent())
		b := obbAt(mgl64.Vec3{0.5, 0.5, 0.5}, he, mgl64.QuatIdent())

		contact, hit := OBBVsOBB(a, b)
		if !hit {
			t.Fatal("expected a collision")
		}
		if math.Abs(contact.Penetration-1.5) > 1e-9 {
			t.Errorf("penetration = %v, want 1.5", contact.Penetration)
		}
	})
}

func TestCollide_Dispatch(t *testing.T) {
	he := mgl64.Vec3{1, 1, 1}

	t.Run("swapped mixed pair flips the normal", func(t *testing.T) {
		obb := obbAt(mgl64.Vec3{}, he, mgl64.QuatIdent())
		aabb := boxAt(mgl64.Vec3{1.5, 0, 0}, he)

		c1, hit1 := Collide(obb, aabb)
		c2, hit2 := Collide(aabb, obb)
		if !hit1 || !hit2 {
			t.Fatal("expected collisions both ways")
		}
		if !vec3AlmostEqual(c1.Normal, c2.Normal.Mul(-1), 1e-9) {
			t.Errorf("normals not antiparallel: %v vs %v", c1.Normal, c2.Normal)
		}
		if math.Abs(c1.Penetration-c2.Penetration) > 1e-9 {
			t.Errorf("penetrations differ: %v vs %v", c1.Penetration, c2.Penetration)
		}
	})

	t.Run("sphere against box is unsupported", func(t *testing.T) {
		sphere := sphereAt(mgl64.Vec3{}, 1)
		box := boxAt(mgl64.Vec3{0.5, 0, 0}, he)

		if _, hit := Collide(sphere, box); hit {
			t.Error("sphere-box pair should report no contact")
		}
		if _, hit := Collide(box, sphere); hit {
			t.Error("box-sphere pair should report no contact")
		}
	})

	t.Run("does not mutate the bodies", func(t *testing.T) {
		a := sphereAt(mgl64.Vec3{}, 1)
		b := sphereAt(mgl64.Vec3{1, 0, 0}, 1)
		a.Velocity = mgl64.Vec3{1, 2, 3}

		Collide(a, b)

		if a.Position != (mgl64.Vec3{}) || b.Position != (mgl64.Vec3{1, 0, 0}) {
			t.Error("detection moved a body")
		}
		if a.Velocity != (mgl64.Vec3{1, 2, 3}) {
			t.Error("detection changed a velocity")
		}
	})
}

func TestResolveContact(t *testing.T) {
	t.Run("equal spheres head-on", func(t *testing.T) {
		a := sphereAt(mgl64.Vec3{}, 0.5)
		b := sphereAt(mgl64.Vec3{0.8, 0, 0}, 0.5)
		a.SetMass(1)
		b.SetMass(1)
		a.Restitution, b.Restitution = 0.5, 0.5
		a.Velocity = mgl64.Vec3{1, 0, 0}
		b.Velocity = mgl64.Vec3{-1, 0, 0}

		contact, hit := SphereVsSphere(a, b)
		if !hit {
			t.Fatal("expected a collision")
		}
		resolveContact(a, b, contact)

		// Positional correction splits the 0.2 penetration evenly.
		if !vec3AlmostEqual(a.Position, mgl64.Vec3{-0.1, 0, 0}, 1e-9) {
			t.Errorf("position A = %v, want (-0.1,0,0)", a.Position)
		}
		if !vec3AlmostEqual(b.Position, mgl64.Vec3{0.9, 0, 0}, 1e-9) {
			t.Errorf("position B = %v, want (0.9,0,0)", b.Position)
		}
		// Outgoing speed = restitution × incoming speed.
		if !vec3AlmostEqual(a.Velocity, mgl64.Vec3{-0.5, 0, 0}, 1e-9) {
			t.Errorf("velocity A = %v, want (-0.5,0,0)", a.Velocity)
		}
		if !vec3AlmostEqual(b.Velocity, mgl64.Vec3{0.5, 0, 0}, 1e-9) {
			t.Errorf("velocity B = %v, want (0.5,0,0)", b.Velocity)
		}
	})

	t.Run("static pair untouched", func(t *testing.T) {
		a := sphereAt(mgl64.Vec3{}, 1)
		b := sphereAt(mgl64.Vec3{1, 0, 0}, 1)

		contact, _ := SphereVsSphere(a, b)
		resolveContact(a, b, contact)

		if a.Position != (mgl64.Vec3{}) || b.Position != (mgl64.Vec3{1, 0, 0}) {
			t.Error("static bodies were moved")
		}
	})

	t.Run("static body absorbs no correction", func(t *testing.T) {
		ground := sphereAt(mgl64.Vec3{}, 1)
		ball := sphereAt(mgl64.Vec3{0, 1.5, 0}, 1)
		ball.SetMass(1)
		ball.Restitution = 0
		ground.Restitution = 0
		ball.Velocity = mgl64.Vec3{0, -3, 0}

		contact, _ := SphereVsSphere(ground, ball)
		resolveContact(ground, ball, contact)

		if ground.Position != (mgl64.Vec3{}) {
			t.Errorf("static ground moved to %v", ground.Position)
		}
		// The dynamic body takes the full 0.5 correction.
		if !vec3AlmostEqual(ball.Position, mgl64.Vec3{0, 2, 0}, 1e-9) {
			t.Errorf("ball position = %v, want (0,2,0)", ball.Position)
		}
		// Zero restitution kills the approach velocity.
		if !vec3AlmostEqual(ball.Velocity, mgl64.Vec3{}, 1e-9) {
			t.Errorf("ball velocity = %v, want zero", ball.Velocity)
		}
	})

	t.Run("separating bodies get position fix only", func(t *testing.T) {
		a := sphereAt(mgl64.Vec3{}, 1)
		b := sphereAt(mgl64.Vec3{1, 0, 0}, 1)
		a.SetMass(1)
		b.SetMass(1)
		b.Velocity = mgl64.Vec3{4, 0, 0} // already moving apart

		contact, _ := SphereVsSphere(a, b)
		resolveContact(a, b, contact)

		if !vec3AlmostEqual(b.Velocity, mgl64.Vec3{4, 0, 0}, 1e-9) {
			t.Errorf("separating velocity changed to %v", b.Velocity)
		}
		if vec3AlmostEqual(b.Position, mgl64.Vec3{1, 0, 0}, 1e-12) {
			t.Error("penetration was not corrected")
		}
	})

	t.Run("friction slows tangential motion", func(t *testing.T) {
		ground := boxAt(mgl64.Vec3{0, -1, 0}, mgl64.Vec3{10, 1, 10})
		box := boxAt(mgl64.Vec3{0, 0.4, 0}, mgl64.Vec3{0.5, 0.5, 0.5})
		box.SetMass(1)
		box.Restitution = 0
		ground.Restitution = 0
		box.Friction, ground.Friction = 0.5, 0.5
		box.Velocity = mgl64.Vec3{2, -1, 0}

		contact, hit := AABBVsAABB(ground, box)
		if !hit {
			t.Fatal("expected ground contact")
		}
		resolveContact(ground, box, contact)

		if box.Velocity.X() >= 2 {
			t.Errorf("tangential velocity %v not reduced by friction", box.Velocity.X())
		}
		if box.Velocity.X() < 0 {
			t.Errorf("friction reversed the motion: %v", box.Velocity.X())
		}
	})
}

func TestCombineRules(t *testing.T) {
	a := actor.NewRigidBody()
	b := actor.NewRigidBody()
	a.Restitution, b.Restitution = 0.2, 0.8
	a.Friction, b.Friction = 0.25, 1.0

	if got := combineRestitution(a, b); got != 0.2 {
		t.Errorf("combineRestitution = %v, want the minimum 0.2", got)
	}
	if got := combineFriction(a, b); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("combineFriction = %v, want sqrt(0.25·1.0) = 0.5", got)
	}
}
