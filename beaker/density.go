package beaker

import "github.com/chewxy/math32"

// DensityGrid counts plume particles per XZ cell so the spawner can throttle
// cells that are already crowded. It is rebuilt from live particles at the
// start of every update; nothing in it survives a tick.
type DensityGrid struct {
	counts   []int16
	side     int
	cellSize float32
	radius   float32
}

// NewDensityGrid creates a grid covering the square beaker footprint
// [-radius, +radius] on both axes.
func NewDensityGrid(radius, cellSize float32) *DensityGrid {
	g := &DensityGrid{}
	g.Resize(radius, cellSize)
	return g
}

// Resize rebuilds the grid geometry and zeroes all counts.
func (g *DensityGrid) Resize(radius, cellSize float32) {
	if cellSize <= 0 {
		cellSize = radius / 8
	}
	side := int(math32.Ceil(2 * radius / cellSize))
	if side < 1 {
		side = 1
	}
	g.side = side
	g.cellSize = cellSize
	g.radius = radius
	g.counts = make([]int16, side*side)
}

// Clear zeroes all counts without reallocating.
func (g *DensityGrid) Clear() {
	for i := range g.counts {
		g.counts[i] = 0
	}
}

// Insert counts one particle at local position (x, z).
func (g *DensityGrid) Insert(x, z float32) {
	g.counts[g.cellIndex(x, z)]++
}

// CountAt returns the current count in the cell containing (x, z).
func (g *DensityGrid) CountAt(x, z float32) int {
	return int(g.counts[g.cellIndex(x, z)])
}

// cellIndex clamps out-of-footprint positions into the border cells so
// queries right at the wall stay valid.
func (g *DensityGrid) cellIndex(x, z float32) int {
	cx := int((x + g.radius) / g.cellSize)
	cz := int((z + g.radius) / g.cellSize)
	if cx < 0 {
		cx = 0
	} else if cx >= g.side {
		cx = g.side - 1
	}
	if cz < 0 {
		cz = 0
	} else if cz >= g.side {
		cz = g.side - 1
	}
	return cz*g.side + cx
}

// Side returns the grid edge length in cells.
func (g *DensityGrid) Side() int {
	return g.side
}

// CellSize returns the configured cell edge length.
func (g *DensityGrid) CellSize() float32 {
	return g.cellSize
}

// Counts returns the raw counter slice in row-major order, for overlays.
func (g *DensityGrid) Counts() []int16 {
	return g.counts
}
