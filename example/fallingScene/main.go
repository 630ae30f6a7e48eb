package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/ballast-engine/ballast"
	"github.com/ballast-engine/ballast/scene"
	"github.com/ballast-engine/ballast/timer"
)

const sceneYAML = `
gravity: [0, -9.81, 0]
fixed_delta_time: 0.016666
cell_size: 4

bodies:
  - name: ground
    shape: aabb
    half_extents: [50, 1, 50]
    position: [0, -1, 0]
    friction: 0.8

  - name: crate-a
    shape: aabb
    half_extents: [0.5, 0.5, 0.5]
    mass: 1
    restitution: 0.2
    position: [0, 4, 0]

  - name: crate-b
    shape: aabb
    half_extents: [0.5, 0.5, 0.5]
    mass: 1
    restitution: 0.2
    position: [0.2, 6, 0]

  - name: ball
    shape: sphere
    radius: 0.5
    mass: 2
    restitution: 0.6
    position: [3, 8, 0]
`

type bodySample struct {
	ID       int        `json:"id"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
}

type trajectorySample struct {
	Time   float64      `json:"time"`
	Bodies []bodySample `json:"bodies"`
}

// trajectory accumulates per-step samples of every dynamic body for later
// inspection or plotting.
type trajectory struct {
	samples []trajectorySample
}

func (tr *trajectory) record(world *ballast.PhysicsWorld, t float64) {
	sample := trajectorySample{Time: t}
	for i, rb := range world.Bodies() {
		if rb.Static() {
			continue
		}
		sample.Bodies = append(sample.Bodies, bodySample{
			ID:       i,
			Position: [3]float64{rb.Position.X(), rb.Position.Y(), rb.Position.Z()},
			Velocity: [3]float64{rb.Velocity.X(), rb.Velocity.Y(), rb.Velocity.Z()},
		})
	}
	tr.samples = append(tr.samples, sample)
}

func (tr *trajectory) writeTo(path string) error {
	data, err := json.MarshalIndent(tr.samples, "", "  ")
	if err != nil {
		return fmt.Errorf("trajectory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("trajectory: %w", err)
	}
	return nil
}

func main() {
	s, err := scene.Parse([]byte(sceneYAML))
	if err != nil {
		log.Fatalf("parse scene: %v", err)
	}
	world, err := s.Build()
	if err != nil {
		log.Fatalf("build scene: %v", err)
	}

	world.Events().Subscribe(func(e ballast.CollisionEvent) {
		if e.Type == ballast.CollisionEnter {
			fmt.Printf("  contact: body %d hit body %d (penetration %.4f)\n",
				e.BodyA, e.BodyB, e.Contact.Penetration)
		}
	})

	// Drive the fixed-step world from simulated 30 Hz frames.
	acc := timer.NewAccumulator(world.FixedDeltaTime())
	const frameDelta = 1.0 / 30.0

	var track trajectory
	elapsed := 0.0

	fmt.Println("Dropping crates and a ball onto the ground...")
	for frame := 0; frame < 150; frame++ {
		for i := 0; i < acc.Steps(frameDelta); i++ {
			world.Step()
			elapsed += world.FixedDeltaTime()
			track.record(world, elapsed)
		}

		if frame%30 == 0 {
			fmt.Printf("t=%.1fs\n", float64(frame)*frameDelta)
			for i, rb := range world.Bodies() {
				if rb.Static() {
					continue
				}
				fmt.Printf("  body %d: pos=(%.2f, %.2f, %.2f) speed=%.2f\n",
					i, rb.Position.X(), rb.Position.Y(), rb.Position.Z(), rb.Speed())
			}
		}
	}

	fmt.Println("\nFinal resting state:")
	for i, rb := range world.Bodies() {
		fmt.Printf("  body %d: pos=(%.2f, %.2f, %.2f)\n",
			i, rb.Position.X(), rb.Position.Y(), rb.Position.Z())
	}

	const trajectoryFile = "trajectory.json"
	if err := track.writeTo(trajectoryFile); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nWrote %d samples to %s\n", len(track.samples), trajectoryFile)
}
