package halo

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
)

// Mesh connects workers running in one process through channels. Each rank
// has one inbox per direction; a worker never runs more than one generation
// ahead of its neighbours, so a single slot per inbox is enough.
type Mesh struct {
	inboxes [][2]chan Column
}

// NewMesh builds the inboxes for size workers.
func NewMesh(size int) *Mesh {
	m := &Mesh{inboxes: make([][2]chan Column, size)}
	for r := range m.inboxes {
		m.inboxes[r] = [2]chan Column{make(chan Column, 1), make(chan Column, 1)}
	}
	return m
}

// Size is the number of ranks on the mesh.
func (m *Mesh) Size() int { return len(m.inboxes) }

// Link returns the endpoint for rank.
func (m *Mesh) Link(rank int) Link {
	if rank < 0 || rank >= len(m.inboxes) {
		panic(fmt.Sprintf("halo: rank %d outside mesh of %d", rank, len(m.inboxes)))
	}
	return &meshLink{mesh: m, rank: rank}
}

type meshLink struct {
	mesh   *Mesh
	rank   int
	closed atomic.Bool
}

func (l *meshLink) Rank() int { return l.rank }

func (l *meshLink) Size() int { return l.mesh.Size() }

func (l *meshLink) Shift(ctx context.Context, dir Direction, gen int, send, recv []uint8) error {
	if l.closed.Load() {
		return ErrClosed
	}
	if !dir.valid() {
		return fmt.Errorf("halo: invalid direction %d", int(dir))
	}
	to := neighbour(l.rank, l.mesh.Size(), dir)
	msg := Column{Gen: gen, From: l.rank, Dir: dir, Cells: slices.Clone(send)}
	select {
	case l.mesh.inboxes[to][dir] <- msg:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case in := <-l.mesh.inboxes[l.rank][dir]:
		return accept(in, dir, gen, recv)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *meshLink) Close() error {
	l.closed.Store(true)
	return nil
}
