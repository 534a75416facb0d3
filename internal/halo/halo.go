// Package halo keeps ghost columns in step with ring neighbours.
//
// Workers form a ring: rank r sends its rightmost real column to rank r+1 and
// its leftmost real column to rank r-1 (both modulo the worker count) after
// every generation. A Link moves one column per call; Exchange performs the
// two shifts that refresh both ghost columns of a grid.
package halo

import (
	"context"
	"errors"
	"fmt"

	"halo-life/internal/core"
)

var (
	// ErrGenerationSkew reports a column received for a different generation
	// than the one being exchanged.
	ErrGenerationSkew = errors.New("generation skew")
	// ErrClosed reports use of a link after Close.
	ErrClosed = errors.New("link closed")
)

// Direction is the way a column travels around the ring.
type Direction int

const (
	// Rightward sends to the right neighbour and receives from the left one.
	Rightward Direction = iota
	// Leftward sends to the left neighbour and receives from the right one.
	Leftward
)

func (d Direction) String() string {
	switch d {
	case Rightward:
		return "rightward"
	case Leftward:
		return "leftward"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

func (d Direction) valid() bool { return d == Rightward || d == Leftward }

// Column is one boundary column in flight.
type Column struct {
	Gen   int
	From  int
	Dir   Direction
	Cells []uint8
}

// Link is a worker's connection to its two ring neighbours.
type Link interface {
	Rank() int
	Size() int
	// Shift sends send to the neighbour in direction dir and fills recv with
	// the column arriving from the opposite neighbour. Both must belong to
	// generation gen. It blocks until recv is filled.
	Shift(ctx context.Context, dir Direction, gen int, send, recv []uint8) error
	Close() error
}

// Exchange refreshes both ghost columns of g from the active buffers of the
// ring neighbours. It must run after every step and before the next one.
func Exchange(ctx context.Context, link Link, g *core.Grid, gen int) error {
	if err := link.Shift(ctx, Rightward, gen, g.Column(g.W-1), g.Column(-1)); err != nil {
		return fmt.Errorf("exchange generation %d %s: %w", gen, Rightward, err)
	}
	if err := link.Shift(ctx, Leftward, gen, g.Column(0), g.Column(g.W)); err != nil {
		return fmt.Errorf("exchange generation %d %s: %w", gen, Leftward, err)
	}
	return nil
}

// accept checks an incoming column against what the receiver expects and
// copies it into recv.
func accept(msg Column, dir Direction, gen int, recv []uint8) error {
	if msg.Gen != gen {
		return fmt.Errorf("%w: got generation %d from rank %d, want %d", ErrGenerationSkew, msg.Gen, msg.From, gen)
	}
	if msg.Dir != dir {
		return fmt.Errorf("halo: got %s column from rank %d while shifting %s", msg.Dir, msg.From, dir)
	}
	if len(msg.Cells) != len(recv) {
		return fmt.Errorf("halo: column from rank %d has %d cells, want %d", msg.From, len(msg.Cells), len(recv))
	}
	copy(recv, msg.Cells)
	return nil
}

// neighbour returns the rank a column travelling in dir is sent to.
func neighbour(rank, size int, dir Direction) int {
	if dir == Rightward {
		return (rank + 1) % size
	}
	return (size + rank - 1) % size
}
