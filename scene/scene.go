// Package scene loads simulation setups from YAML files and builds worlds
// from them. Bodies are named; joints refer to bodies by name, with an
// empty second body meaning a fixed world anchor.
package scene

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/ballast-engine/ballast"
	"github.com/ballast-engine/ballast/actor"
	"github.com/ballast-engine/ballast/constraint"
)

// Scene is the on-disk description of a world.
type Scene struct {
	Gravity        *[3]float64 `yaml:"gravity"`
	FixedDeltaTime float64     `yaml:"fixed_delta_time"`
	CellSize       float64     `yaml:"cell_size"`
	Bodies         []BodySpec  `yaml:"bodies"`
	Joints         []JointSpec `yaml:"joints"`
}

// BodySpec describes one rigid body. A zero or missing mass makes the body
// static.
type BodySpec struct {
	Name        string     `yaml:"name"`
	Shape       string     `yaml:"shape"`
	Position    [3]float64 `yaml:"position"`
	Velocity    [3]float64 `yaml:"velocity"`
	Mass        float64    `yaml:"mass"`
	Radius      float64    `yaml:"radius"`
	HalfExtents [3]float64 `yaml:"half_extents"`
	Restitution *float64   `yaml:"restitution"`
	Friction    *float64   `yaml:"friction"`
	Rotation    *AxisAngle `yaml:"rotation"`
}

// AxisAngle is a rotation given as an axis and an angle in radians.
type AxisAngle struct {
	Axis  [3]float64 `yaml:"axis"`
	Angle float64    `yaml:"angle"`
}

// JointSpec describes one joint between named bodies. An empty BodyB
// attaches the joint to a fixed world point given by PivotB.
type JointSpec struct {
	Type       string     `yaml:"type"`
	BodyA      string     `yaml:"body_a"`
	BodyB      string     `yaml:"body_b"`
	PivotA     [3]float64 `yaml:"pivot_a"`
	PivotB     [3]float64 `yaml:"pivot_b"`
	AxisA      [3]float64 `yaml:"axis_a"`
	AxisB      [3]float64 `yaml:"axis_b"`
	Distance   float64    `yaml:"distance"`
	SwingSpan1 float64    `yaml:"swing_span1"`
	SwingSpan2 float64    `yaml:"swing_span2"`
	TwistSpan  float64    `yaml:"twist_span"`
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML scene description.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return &s, nil
}

func vec3(v [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// Build constructs a world from the scene, validating every reference.
func (s *Scene) Build() (*ballast.PhysicsWorld, error) {
	w := ballast.NewWorld()

	if s.Gravity != nil {
		w.SetGravity(vec3(*s.Gravity))
	}
	if s.FixedDeltaTime != 0 {
		if err := w.SetFixedDeltaTime(s.FixedDeltaTime); err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
	}
	if s.CellSize != 0 {
		if err := w.UseSpatialGrid(s.CellSize); err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
	}

	indices := make(map[string]int, len(s.Bodies))
	for i, spec := range s.Bodies {
		rb, err := buildBody(spec)
		if err != nil {
			return nil, fmt.Errorf("scene: body %d (%q): %w", i, spec.Name, err)
		}
		if spec.Name != "" {
			if _, dup := indices[spec.Name]; dup {
				return nil, fmt.Errorf("scene: duplicate body name %q", spec.Name)
			}
			indices[spec.Name] = w.AddBody(rb)
		} else {
			w.AddBody(rb)
		}
	}

	for i, spec := range s.Joints {
		j, err := buildJoint(spec, indices)
		if err != nil {
			return nil, fmt.Errorf("scene: joint %d: %w", i, err)
		}
		if err := w.AddJoint(j); err != nil {
			return nil, fmt.Errorf("scene: joint %d: %w", i, err)
		}
	}

	return w, nil
}

func buildBody(spec BodySpec) (*actor.RigidBody, error) {
	rb := actor.NewRigidBody()

	switch spec.Shape {
	case "sphere", "":
		rb.Shape = actor.ShapeSphere
		if spec.Radius > 0 {
			rb.SetRadius(spec.Radius)
		}
	case "aabb":
		rb.Shape = actor.ShapeAABB
	case "obb":
		rb.Shape = actor.ShapeOBB
	default:
		return nil, fmt.Errorf("unknown shape %q", spec.Shape)
	}
	if spec.Shape == "aabb" || spec.Shape == "obb" {
		he := vec3(spec.HalfExtents)
		if he == (mgl64.Vec3{}) {
			return nil, fmt.Errorf("box body needs half_extents")
		}
		rb.SetHalfExtents(he)
	}

	rb.Position = vec3(spec.Position)
	rb.Velocity = vec3(spec.Velocity)
	if spec.Rotation != nil {
		axis := vec3(spec.Rotation.Axis)
		if axis.Len() == 0 {
			return nil, fmt.Errorf("rotation axis must be nonzero")
		}
		rb.Rotation = mgl64.QuatRotate(spec.Rotation.Angle, axis.Normalize())
	}
	if spec.Restitution != nil {
		rb.Restitution = *spec.Restitution
	}
	if spec.Friction != nil {
		rb.Friction = *spec.Friction
	}

	if spec.Mass > 0 {
		rb.SetMass(spec.Mass)
		rb.SetInertiaFromShape()
	}
	return rb, nil
}

func buildJoint(spec JointSpec, indices map[string]int) (*constraint.Joint, error) {
	a, ok := indices[spec.BodyA]
	if !ok {
		return nil, fmt.Errorf("unknown body %q", spec.BodyA)
	}
	b := constraint.WorldAnchor
	if spec.BodyB != "" {
		if b, ok = indices[spec.BodyB]; !ok {
			return nil, fmt.Errorf("unknown body %q", spec.BodyB)
		}
	}

	pivotA := vec3(spec.PivotA)
	pivotB := vec3(spec.PivotB)
	axisA := vec3(spec.AxisA)
	axisB := vec3(spec.AxisB)

	switch spec.Type {
	case "point_to_point":
		return constraint.NewPointToPoint(a, b, pivotA, pivotB), nil
	case "hinge":
		return constraint.NewHinge(a, b, pivotA, pivotB, axisA, axisB), nil
	case "slider":
		return constraint.NewSlider(a, b, pivotA, pivotB, axisA, axisB), nil
	case "distance":
		return constraint.NewDistance(a, b, pivotA, pivotB, spec.Distance), nil
	case "cone_twist":
		j := constraint.NewConeTwist(a, b, pivotA, pivotB, axisA, axisB)
		if spec.SwingSpan1 > 0 {
			j.SwingSpan1 = spec.SwingSpan1
		}
		if spec.SwingSpan2 > 0 {
			j.SwingSpan2 = spec.SwingSpan2
		}
		if spec.TwistSpan > 0 {
			j.TwistSpan = spec.TwistSpan
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unknown joint type %q", spec.Type)
	}
}
