package ballast

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ballast-engine/ballast/actor"
)

// CellKey addresses one cell of the uniform broad-phase grid.
type CellKey struct {
	X, Y, Z int
}

// BodyPair is an unordered candidate pair of body indices, normalized A < B.
type BodyPair struct {
	A, B int
}

// SpatialGrid is a uniform hash grid over body positions. Each body occupies
// exactly the cell containing its center; candidate pairs come from shared
// cells and the 26 surrounding neighbors. The grid is rebuilt from scratch
// every step, so removal never needs to be tracked.
type SpatialGrid struct {
	cellSize float64
	cells    map[CellKey][]int
}

// NewSpatialGrid creates a grid with the given cell edge length.
func NewSpatialGrid(cellSize float64) (*SpatialGrid, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("spatial grid: cell size must be positive, got %v", cellSize)
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[CellKey][]int),
	}, nil
}

// CellSize returns the grid's cell edge length.
func (g *SpatialGrid) CellSize() float64 {
	return g.cellSize
}

func (g *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / g.cellSize)),
		Y: int(math.Floor(pos.Y() / g.cellSize)),
		Z: int(math.Floor(pos.Z() / g.cellSize)),
	}
}

// Update rebuilds the grid from the current body positions.
func (g *SpatialGrid) Update(bodies []*actor.RigidBody) {
	clear(g.cells)
	for i, rb := range bodies {
		key := g.worldToCell(rb.Position)
		g.cells[key] = append(g.cells[key], i)
	}
}

// Each unordered neighbor pair of cells is visited once: a cell pairs with
// itself and with the 13 "forward" offsets; the other 13 neighbors reach it
// from their own forward sweep.
var forwardOffsets = [13]CellKey{
	{1, -1, -1}, {1, -1, 0}, {1, -1, 1},
	{1, 0, -1}, {1, 0, 0}, {1, 0, 1},
	{1, 1, -1}, {1, 1, 0}, {1, 1, 1},
	{0, 1, -1}, {0, 1, 0}, {0, 1, 1},
	{0, 0, 1},
}

// PotentialPairs returns every candidate pair of bodies whose cells touch.
// Pairs are normalized (A < B) and never duplicated.
func (g *SpatialGrid) PotentialPairs() []BodyPair {
	var pairs []BodyPair

	for key, occupants := range g.cells {
		for i := 0; i < len(occupants); i++ {
			for k := i + 1; k < len(occupants); k++ {
				pairs = append(pairs, makePair(occupants[i], occupants[k]))
			}
		}

		for _, off := range forwardOffsets {
			neighbor := CellKey{X: key.X + off.X, Y: key.Y + off.Y, Z: key.Z + off.Z}
			others, ok := g.cells[neighbor]
			if !ok {
				continue
			}
			for _, a := range occupants {
				for _, b := range others {
					pairs = append(pairs, makePair(a, b))
				}
			}
		}
	}

	return pairs
}

func makePair(a, b int) BodyPair {
	if a > b {
		a, b = b, a
	}
	return BodyPair{A: a, B: b}
}
