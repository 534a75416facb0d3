package core

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Sim is what the viewer needs from a running simulation.
type Sim interface {
	Name() string
	Size() Size
	Generation() int
	Step() error
	// Cells returns W*H values in row-major order.
	Cells() []uint8
}
