// Package debugdraw collects simple visualization primitives from a
// running simulation. It renders nothing itself; a frontend drains the
// buffers each frame.
package debugdraw

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ballast-engine/ballast/actor"
)

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

var (
	White = Color{1, 1, 1, 1}
	Red   = Color{1, 0, 0, 1}
	Green = Color{0, 1, 0, 1}
	Blue  = Color{0, 0, 1, 1}
)

// Line is a colored world-space segment.
type Line struct {
	From, To mgl64.Vec3
	Color    Color
}

// Point is a colored world-space marker.
type Point struct {
	Position mgl64.Vec3
	Color    Color
	Size     float64
}

// Text is a label anchored at a world-space position.
type Text struct {
	Position mgl64.Vec3
	Value    string
	Color    Color
}

// Buffer accumulates primitives for one frame.
type Buffer struct {
	lines  []Line
	points []Point
	texts  []Text
}

// NewBuffer creates an empty draw buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// AddLine queues a segment.
func (b *Buffer) AddLine(from, to mgl64.Vec3, c Color) {
	b.lines = append(b.lines, Line{From: from, To: to, Color: c})
}

// AddPoint queues a marker.
func (b *Buffer) AddPoint(pos mgl64.Vec3, c Color, size float64) {
	b.points = append(b.points, Point{Position: pos, Color: c, Size: size})
}

// AddText queues a label.
func (b *Buffer) AddText(pos mgl64.Vec3, value string, c Color) {
	b.texts = append(b.texts, Text{Position: pos, Value: value, Color: c})
}

// Lines returns the queued segments.
func (b *Buffer) Lines() []Line {
	return b.lines
}

// Points returns the queued markers.
func (b *Buffer) Points() []Point {
	return b.points
}

// Texts returns the queued labels.
func (b *Buffer) Texts() []Text {
	return b.texts
}

// Reset clears the buffer for the next frame, keeping capacity.
func (b *Buffer) Reset() {
	b.lines = b.lines[:0]
	b.points = b.points[:0]
	b.texts = b.texts[:0]
}

// Edge pairs of a box's corner array, as produced by actor.OBB.Corners.
var boxEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0}, // -x face
	{4, 5}, {5, 7}, {7, 6}, {6, 4}, // +x face
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // connecting edges
}

// AddBody queues a wireframe of the body's collision shape.
func (b *Buffer) AddBody(rb *actor.RigidBody, c Color) {
	switch rb.Shape {
	case actor.ShapeSphere:
		b.addSphere(rb.Position, rb.Radius, c)
	case actor.ShapeAABB:
		b.addBox(actor.OBBFromAABB(actor.AABBOf(rb)), c)
	case actor.ShapeOBB:
		b.addBox(actor.OBBOf(rb), c)
	}
}

func (b *Buffer) addBox(obb actor.OBB, c Color) {
	corners := obb.Corners()
	for _, e := range boxEdges {
		b.AddLine(corners[e[0]], corners[e[1]], c)
	}
}

const sphereSegments = 16

func (b *Buffer) addSphere(center mgl64.Vec3, radius float64, c Color) {
	// Three great circles, one per coordinate plane.
	circle := func(u, v mgl64.Vec3) {
		prev := center.Add(u.Mul(radius))
		for i := 1; i <= sphereSegments; i++ {
			angle := 2 * math.Pi * float64(i) / sphereSegments
			next := center.Add(u.Mul(radius * math.Cos(angle))).Add(v.Mul(radius * math.Sin(angle)))
			b.AddLine(prev, next, c)
			prev = next
		}
	}
	circle(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})
	circle(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1})
	circle(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 0})
}

// AddContactNormal queues an arrow from the contact point along the normal,
// scaled by the penetration depth.
func (b *Buffer) AddContactNormal(point, normal mgl64.Vec3, penetration float64, c Color) {
	b.AddPoint(point, c, penetration)
	b.AddLine(point, point.Add(normal.Mul(penetration)), c)
}

// AddVelocity queues a line from the body's center along its velocity.
func (b *Buffer) AddVelocity(rb *actor.RigidBody, c Color) {
	b.AddLine(rb.Position, rb.Position.Add(rb.Velocity), c)
}
