// Package life is a plain single-grid Game of Life on a torus. It serves as
// the reference the distributed engine is checked against.
package life

import (
	"halo-life/pkg/core"
)

// Life implements Conway's Game of Life with toroidal wrapping.
type Life struct {
	w, h int
	cur  []uint8
	nxt  []uint8
}

// New returns a Life simulation with the provided dimensions.
func New(w, h int) *Life {
	cells := make([]uint8, w*h)
	return &Life{w: w, h: h, cur: cells, nxt: make([]uint8, len(cells))}
}

// FromCells wraps a row-major grid of 0/1 values. The slice is copied.
func FromCells(w, h int, cells []uint8) *Life {
	l := New(w, h)
	copy(l.cur, cells)
	return l
}

// Size returns the grid dimensions.
func (l *Life) Size() (int, int) { return l.w, l.h }

// Cells exposes the current grid values in row-major order.
func (l *Life) Cells() []uint8 { return l.cur }

// Set marks cell (x, y) alive.
func (l *Life) Set(x, y int) { l.cur[y*l.w+x] = 1 }

// Reset fills the board with a random soup of the given density.
func (l *Life) Reset(seed int64, density float64) {
	core.NewRNG(seed).Soup(l.cur, density)
}

// Step advances the simulation by one generation.
func (l *Life) Step() {
	w, h := l.w, l.h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			neighbors := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx := (x + dx + w) % w
					ny := (y + dy + h) % h
					neighbors += int(l.cur[ny*w+nx])
				}
			}
			idx := y*w + x
			alive := l.cur[idx] == 1
			l.nxt[idx] = 0
			if (alive && (neighbors == 2 || neighbors == 3)) || (!alive && neighbors == 3) {
				l.nxt[idx] = 1
			}
		}
	}
	l.cur, l.nxt = l.nxt, l.cur
}

// Run advances the simulation by n generations.
func (l *Life) Run(n int) {
	for i := 0; i < n; i++ {
		l.Step()
	}
}
