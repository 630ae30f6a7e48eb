// Package ballast is a real-time rigid-body physics engine: semi-implicit
// Euler integration, a uniform-grid broad phase, separating-axis narrow
// phase, impulse-based contact resolution, and joint constraints.
package ballast

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ballast-engine/ballast/actor"
	"github.com/ballast-engine/ballast/constraint"
)

const (
	defaultFixedDeltaTime = 1.0 / 60.0

	// With no impulses carried across steps, a single sequential-impulse
	// pass leaves visible pivot drift; iterating the velocity solve within
	// the step restores convergence. PreSolve and PostSolve still run once.
	constraintIterations = 8
)

// PhysicsWorld owns the bodies and joints of one simulation and advances
// them in fixed time steps. Bodies are addressed by the index returned from
// AddBody; indices stay stable for the life of the world.
type PhysicsWorld struct {
	bodies []*actor.RigidBody
	joints []*constraint.Joint

	gravity        mgl64.Vec3
	fixedDeltaTime float64

	grid   *SpatialGrid
	events *Events

	// stand-in body for joints attached to a fixed world point
	worldAnchor *actor.RigidBody
}

// NewWorld creates an empty world with gravity (0, -9.81, 0) and a step of
// 1/60 s.
func NewWorld() *PhysicsWorld {
	return &PhysicsWorld{
		gravity:        mgl64.Vec3{0, -9.81, 0},
		fixedDeltaTime: defaultFixedDeltaTime,
		events:         newEvents(),
		worldAnchor:    actor.NewRigidBody(),
	}
}

// AddBody adds a body and returns its index.
func (w *PhysicsWorld) AddBody(rb *actor.RigidBody) int {
	w.bodies = append(w.bodies, rb)
	return len(w.bodies) - 1
}

// Body returns the body at index i, or nil if out of range.
func (w *PhysicsWorld) Body(i int) *actor.RigidBody {
	if i < 0 || i >= len(w.bodies) {
		return nil
	}
	return w.bodies[i]
}

// Bodies returns the world's bodies. The slice is shared, not copied.
func (w *PhysicsWorld) Bodies() []*actor.RigidBody {
	return w.bodies
}

// AddJoint validates the joint against the current body set and adds it.
func (w *PhysicsWorld) AddJoint(j *constraint.Joint) error {
	if err := j.Validate(len(w.bodies)); err != nil {
		return err
	}
	w.joints = append(w.joints, j)
	return nil
}

// Joints returns the world's joints. The slice is shared, not copied.
func (w *PhysicsWorld) Joints() []*constraint.Joint {
	return w.joints
}

// SetGravity replaces the acceleration applied to every dynamic body.
func (w *PhysicsWorld) SetGravity(g mgl64.Vec3) {
	w.gravity = g
}

// Gravity returns the current gravity vector.
func (w *PhysicsWorld) Gravity() mgl64.Vec3 {
	return w.gravity
}

// SetFixedDeltaTime changes the simulation step.
func (w *PhysicsWorld) SetFixedDeltaTime(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("world: fixed delta time must be positive, got %v", dt)
	}
	w.fixedDeltaTime = dt
	return nil
}

// FixedDeltaTime returns the simulation step.
func (w *PhysicsWorld) FixedDeltaTime() float64 {
	return w.fixedDeltaTime
}

// UseSpatialGrid enables the uniform-grid broad phase with the given cell
// size. Without it, every body pair is tested.
func (w *PhysicsWorld) UseSpatialGrid(cellSize float64) error {
	grid, err := NewSpatialGrid(cellSize)
	if err != nil {
		return err
	}
	w.grid = grid
	return nil
}

// Events returns the world's collision event hub.
func (w *PhysicsWorld) Events() *Events {
	return w.events
}

// Step advances the simulation by one fixed time step: gravity, integration,
// joint solving, collision detection and response, then event delivery.
func (w *PhysicsWorld) Step() {
	dt := w.fixedDeltaTime

	for _, rb := range w.bodies {
		if rb.Static() {
			continue
		}
		rb.ApplyForce(w.gravity.Mul(rb.Mass))
	}

	for _, rb := range w.bodies {
		rb.Integrate(dt)
	}

	w.solveJoints(dt)

	for _, pair := range w.candidatePairs() {
		a := w.bodies[pair.A]
		b := w.bodies[pair.B]
		if a.Static() && b.Static() {
			continue
		}
		contact, hit := Collide(a, b)
		if !hit {
			continue
		}
		resolveContact(a, b, contact)
		w.events.recordContact(pair.A, pair.B, contact)
	}

	w.events.finishStep()
	w.events.flush()
}

func (w *PhysicsWorld) solveJoints(dt float64) {
	for _, j := range w.joints {
		a := w.bodies[j.BodyA]
		b := w.worldAnchor
		if j.BodyB != constraint.WorldAnchor {
			b = w.bodies[j.BodyB]
		}

		j.PreSolve(a, b, dt)
		for i := 0; i < constraintIterations; i++ {
			j.Solve(a, b, dt)
		}
		j.PostSolve(a, b)
	}
}

func (w *PhysicsWorld) candidatePairs() []BodyPair {
	if w.grid != nil {
		w.grid.Update(w.bodies)
		pairs := w.grid.PotentialPairs()
		// Contact resolution is sequential, so the grid map's iteration
		// order must not leak into the simulation.
		sort.Slice(pairs, func(i, k int) bool {
			if pairs[i].A != pairs[k].A {
				return pairs[i].A < pairs[k].A
			}
			return pairs[i].B < pairs[k].B
		})
		return pairs
	}

	var pairs []BodyPair
	for i := 0; i < len(w.bodies); i++ {
		for k := i + 1; k < len(w.bodies); k++ {
			pairs = append(pairs, BodyPair{A: i, B: k})
		}
	}
	return pairs
}
