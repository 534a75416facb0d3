package engine

import (
	"golang.org/x/sync/errgroup"

	"halo-life/internal/core"
)

// Stepper advances a grid by one generation. With Threads > 1 the real
// columns are split into contiguous bands computed concurrently; the result
// is identical to a single-threaded pass.
type Stepper struct {
	Threads int
}

// Step computes the next generation of every real cell into the inactive
// buffer and swaps buffer roles. Ghost columns of the inactive buffer are left
// untouched; they hold stale data until the next halo exchange.
func (s Stepper) Step(g *core.Grid) {
	bands := s.Threads
	if bands > g.W {
		bands = g.W
	}
	if bands <= 1 {
		stepColumns(g, 0, g.W)
		g.Swap()
		return
	}

	var eg errgroup.Group
	for b := 0; b < bands; b++ {
		lo := b * g.W / bands
		hi := (b + 1) * g.W / bands
		eg.Go(func() error {
			stepColumns(g, lo, hi)
			return nil
		})
	}
	_ = eg.Wait()
	g.Swap()
}

// Step advances g by one generation on the calling goroutine.
func Step(g *core.Grid) { Stepper{}.Step(g) }

// stepColumns applies the transition rule to real columns [lo, hi).
func stepColumns(g *core.Grid, lo, hi int) {
	cur := g.Active()
	nxt := g.Inactive()
	h := g.H
	for i := lo; i < hi; i++ {
		left := g.Column(i - 1)
		mid := g.Column(i)
		right := g.Column(i + 1)
		base := (i + 1) * h
		for j := 0; j < h; j++ {
			up := j - 1
			if up < 0 {
				up = h - 1
			}
			down := j + 1
			if down == h {
				down = 0
			}
			n := left[up] + left[j] + left[down] +
				mid[up] + mid[down] +
				right[up] + right[j] + right[down]
			nxt[base+j] = rule(cur[base+j], n)
		}
	}
}

// rule is the B3/S23 transition: birth on exactly 3 live neighbours,
// survival on 2 or 3.
func rule(alive, neighbours uint8) uint8 {
	if neighbours == 3 || (neighbours == 2 && alive == 1) {
		return 1
	}
	return 0
}
