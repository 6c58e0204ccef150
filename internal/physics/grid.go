package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// Spatial grid cell size - bodies within same or neighboring cells are checked
const cellSize = 5.0

// cellKey for spatial hashing
type cellKey struct {
	X, Y, Z int
}

func posToCell(pos rl.Vector3) cellKey {
	return cellKey{
		X: int(pos.X / cellSize),
		Y: int(pos.Y / cellSize),
		Z: int(pos.Z / cellSize),
	}
}

type spatialGrid struct {
	cells map[cellKey][]*RigidBody
}

func newSpatialGrid() *spatialGrid {
	return &spatialGrid{cells: make(map[cellKey][]*RigidBody)}
}

// rebuild clears the grid and reinserts every dynamic body.
func (g *spatialGrid) rebuild(bodies []*RigidBody) {
	for k := range g.cells {
		delete(g.cells, k)
	}
	for _, b := range bodies {
		if b.Mass == 0 {
			continue
		}
		cell := posToCell(b.Position())
		g.cells[cell] = append(g.cells[cell], b)
	}
}

// neighbors returns all bodies in the same cell and the 26 neighboring cells.
func (g *spatialGrid) neighbors(b *RigidBody) []*RigidBody {
	cell := posToCell(b.Position())
	var out []*RigidBody

	// Check 3x3x3 cube of cells centered on the body's cell
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				key := cellKey{cell.X + dx, cell.Y + dy, cell.Z + dz}
				out = append(out, g.cells[key]...)
			}
		}
	}
	return out
}
