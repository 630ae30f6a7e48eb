package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ballast-engine/ballast"
	"github.com/ballast-engine/ballast/actor"
	"github.com/ballast-engine/ballast/constraint"
	"github.com/ballast-engine/ballast/debugdraw"
)

func newBob(pos mgl64.Vec3) *actor.RigidBody {
	rb := actor.NewRigidBody()
	rb.SetRadius(0.3)
	rb.SetMass(1)
	rb.SetInertiaFromShape()
	rb.Position = pos
	return rb
}

func main() {
	world := ballast.NewWorld()

	// A two-link pendulum: the first bob hangs from a fixed world point,
	// the second swings below it on a distance joint.
	upper := world.AddBody(newBob(mgl64.Vec3{2, 5, 0}))
	lower := world.AddBody(newBob(mgl64.Vec3{2, 3, 0}))

	anchor := constraint.NewPointToPoint(upper, constraint.WorldAnchor,
		mgl64.Vec3{}, mgl64.Vec3{0, 5, 0})
	if err := world.AddJoint(anchor); err != nil {
		panic(err)
	}

	link := constraint.NewDistance(upper, lower, mgl64.Vec3{}, mgl64.Vec3{}, 2)
	if err := world.AddJoint(link); err != nil {
		panic(err)
	}

	// A third body hangs on a cone-twist joint with a tight swing cone.
	swinger := world.AddBody(newBob(mgl64.Vec3{-3, 4, 0}))
	cone := constraint.NewConeTwist(swinger, constraint.WorldAnchor,
		mgl64.Vec3{0, 1, 0}, mgl64.Vec3{-3, 5, 0},
		mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 0})
	cone.SwingSpan1 = 0.4
	cone.SwingSpan2 = 0.4
	if err := world.AddJoint(cone); err != nil {
		panic(err)
	}

	draw := debugdraw.NewBuffer()
	for step := 0; step < 600; step++ {
		world.Step()

		if step%120 != 0 {
			continue
		}

		draw.Reset()
		for _, rb := range world.Bodies() {
			draw.AddBody(rb, debugdraw.White)
			draw.AddVelocity(rb, debugdraw.Green)
		}
		draw.AddPoint(mgl64.Vec3{0, 5, 0}, debugdraw.Red, 0.1)
		draw.AddPoint(mgl64.Vec3{-3, 5, 0}, debugdraw.Red, 0.1)

		fmt.Printf("t=%.1fs  draw buffer: %d lines, %d points\n",
			float64(step)*world.FixedDeltaTime(), len(draw.Lines()), len(draw.Points()))
		for i, rb := range world.Bodies() {
			fmt.Printf("  bob %d: pos=(%+.2f, %+.2f, %+.2f)\n",
				i, rb.Position.X(), rb.Position.Y(), rb.Position.Z())
		}
	}

	fmt.Println("\nJoint summary:")
	for _, j := range world.Joints() {
		fmt.Printf("  %s joint: body %d", j.Kind, j.BodyA)
		if j.BodyB == constraint.WorldAnchor {
			fmt.Printf(" anchored at %v\n", j.PivotB)
		} else {
			fmt.Printf(" linked to body %d\n", j.BodyB)
		}
	}
}
