package core

import (
	"errors"
	"fmt"
)

// MaxCells bounds the number of cells a single buffer may hold.
const MaxCells = 1 << 30

// ErrGridSize reports grid dimensions that cannot be allocated.
var ErrGridSize = errors.New("invalid grid size")

// Grid is one worker's slab: W real columns of height H, surrounded by a
// ghost column on each side. Storage is column-major so every column is a
// contiguous run of H cells. Two buffers of equal shape are owned by the
// grid; the active one holds the current generation.
type Grid struct {
	W, H   int
	bufs   [2][]uint8
	active int
}

// NewGrid allocates both buffers for a slab of w real columns and height h.
func NewGrid(w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrGridSize, w, h)
	}
	if h > MaxCells/(w+2) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells", ErrGridSize, w+2, h, MaxCells)
	}
	n := (w + 2) * h
	return &Grid{W: w, H: h, bufs: [2][]uint8{make([]uint8, n), make([]uint8, n)}}, nil
}

// Index maps cell (i, j), i in [-1, W], to its storage position. The row
// index wraps around the height.
func (g *Grid) Index(i, j int) int {
	return (i+1)*g.H + (j%g.H+g.H)%g.H
}

// Active returns the buffer holding the current generation.
func (g *Grid) Active() []uint8 { return g.bufs[g.active] }

// Inactive returns the buffer the next generation is written to.
func (g *Grid) Inactive() []uint8 { return g.bufs[1-g.active] }

// Swap exchanges the active and inactive roles. No cells are copied.
func (g *Grid) Swap() { g.active = 1 - g.active }

// Get reads cell (i, j) from the active buffer.
func (g *Grid) Get(i, j int) uint8 { return g.bufs[g.active][g.Index(i, j)] }

// Set writes cell (i, j) in the active buffer. Any non-zero v stores 1.
func (g *Grid) Set(i, j int, v uint8) {
	if v != 0 {
		v = 1
	}
	g.bufs[g.active][g.Index(i, j)] = v
}

// Column returns column i of the active buffer as a slice aliasing storage.
func (g *Grid) Column(i int) []uint8 {
	start := (i + 1) * g.H
	return g.bufs[g.active][start : start+g.H : start+g.H]
}

// Region returns the real columns of the active buffer, column-major,
// aliasing storage.
func (g *Grid) Region() []uint8 {
	return g.bufs[g.active][g.H : (g.W+1)*g.H]
}

// Population counts live real cells in the active buffer.
func (g *Grid) Population() int {
	n := 0
	for _, c := range g.Region() {
		n += int(c)
	}
	return n
}

// Clear zeroes both buffers.
func (g *Grid) Clear() {
	for _, buf := range g.bufs {
		for i := range buf {
			buf[i] = 0
		}
	}
}
