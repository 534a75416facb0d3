package partition

import (
	"errors"
	"fmt"
)

// ErrLayout reports global dimensions or a worker identity that cannot be
// partitioned.
var ErrLayout = errors.New("invalid layout")

// Layout describes one worker's slab of the global grid. Columns are split
// into vertical slabs, one per worker; the height is never partitioned.
type Layout struct {
	Width   int // global width
	Height  int // global height
	Workers int
	Rank    int
}

// New validates the dimensions and worker identity and returns the layout.
func New(width, height, workers, rank int) (Layout, error) {
	l := Layout{Width: width, Height: height, Workers: workers, Rank: rank}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks that every worker receives at least one column.
func (l Layout) Validate() error {
	switch {
	case l.Width <= 0 || l.Height <= 0:
		return fmt.Errorf("%w: grid %dx%d", ErrLayout, l.Width, l.Height)
	case l.Workers < 1:
		return fmt.Errorf("%w: %d workers", ErrLayout, l.Workers)
	case l.Workers > l.Width:
		return fmt.Errorf("%w: %d workers for %d columns", ErrLayout, l.Workers, l.Width)
	case l.Rank < 0 || l.Rank >= l.Workers:
		return fmt.Errorf("%w: rank %d of %d", ErrLayout, l.Rank, l.Workers)
	}
	return nil
}

// LocalWidth returns the number of real columns owned by rank. Every rank
// gets width/workers columns; the last rank also takes the whole remainder.
func LocalWidth(width, workers, rank int) int {
	base := width / workers
	if rank == workers-1 {
		return base + width%workers
	}
	return base
}

// Base is the column count of every rank but the last.
func (l Layout) Base() int { return l.Width / l.Workers }

// LocalWidth is the number of real columns owned by this rank.
func (l Layout) LocalWidth() int { return LocalWidth(l.Width, l.Workers, l.Rank) }

// Offset is the global index of this rank's first real column.
func (l Layout) Offset() int { return l.Base() * l.Rank }

// Left is the rank of the ring neighbour holding the columns before ours.
func (l Layout) Left() int { return (l.Workers + l.Rank - 1) % l.Workers }

// Right is the rank of the ring neighbour holding the columns after ours.
func (l Layout) Right() int { return (l.Rank + 1) % l.Workers }

// Owns reports whether global column col is one of this rank's real columns.
func (l Layout) Owns(col int) bool {
	local := col - l.Offset()
	return col >= 0 && col < l.Width && local >= 0 && local < l.LocalWidth()
}

// ToLocal maps a global column to a local one in [-1, LocalWidth()].
//
// The last global column lands in rank 0's left ghost and column 0 lands in
// the last rank's right ghost, closing the torus. Any other column is shifted
// by Base*Rank, so the columns just outside an interior slab land in its
// ghosts. ok is false when the result falls outside [-1, LocalWidth()].
func (l Layout) ToLocal(col int) (local int, ok bool) {
	switch {
	case col == l.Width-1 && l.Rank == 0:
		local = -1
	case col == 0 && l.Rank == l.Workers-1:
		local = l.LocalWidth()
	default:
		local = col - l.Base()*l.Rank
	}
	if local < -1 || local > l.LocalWidth() {
		return 0, false
	}
	return local, true
}

// Targets lists every local column a seed at global column col must be
// written to on this rank: the owned real column, plus the ghost slot chosen
// by ToLocal when it differs.
func (l Layout) Targets(col int) []int {
	if col < 0 || col >= l.Width {
		return nil
	}
	var out []int
	if l.Owns(col) {
		out = append(out, col-l.Offset())
	}
	if local, ok := l.ToLocal(col); ok && (local == -1 || local == l.LocalWidth()) {
		out = append(out, local)
	}
	return out
}

// Widths returns the local width of every rank in order.
func Widths(width, workers int) []int {
	out := make([]int, workers)
	for r := range out {
		out[r] = LocalWidth(width, workers, r)
	}
	return out
}
