package halo

import (
	"context"
	"errors"
	"net"
	"slices"
	"sync"
	"testing"
	"time"

	"halo-life/internal/core"
)

// fillColumns gives every real column of rank r a distinct pattern so the
// ghost contents reveal which neighbour column they came from.
func fillColumns(t *testing.T, rank, width, height int) *core.Grid {
	t.Helper()
	g, err := core.NewGrid(width, height)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < width; i++ {
		for j := 0; j < height; j++ {
			if (rank+i+j)%3 == 0 {
				g.Set(i, j, 1)
			}
		}
	}
	return g
}

func exchangeAll(t *testing.T, links []Link, grids []*core.Grid, gen int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var wg sync.WaitGroup
	errs := make([]error, len(links))
	for r := range links {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			errs[r] = Exchange(ctx, links[r], grids[r], gen)
		}(r)
	}
	wg.Wait()
	for r, err := range errs {
		if err != nil {
			t.Fatalf("rank %d: %v", r, err)
		}
	}
}

func checkGhosts(t *testing.T, grids []*core.Grid) {
	t.Helper()
	p := len(grids)
	for r, g := range grids {
		left := grids[(p+r-1)%p]
		right := grids[(r+1)%p]
		if !slices.Equal(g.Column(-1), left.Column(left.W-1)) {
			t.Fatalf("rank %d left ghost %v != rank %d rightmost column %v",
				r, g.Column(-1), (p+r-1)%p, left.Column(left.W-1))
		}
		if !slices.Equal(g.Column(g.W), right.Column(0)) {
			t.Fatalf("rank %d right ghost %v != rank %d leftmost column %v",
				r, g.Column(g.W), (r+1)%p, right.Column(0))
		}
	}
}

func TestMeshExchangeFillsGhostsFromRingNeighbours(t *testing.T) {
	for _, p := range []int{1, 2, 3, 5} {
		mesh := NewMesh(p)
		links := make([]Link, p)
		grids := make([]*core.Grid, p)
		for r := 0; r < p; r++ {
			links[r] = mesh.Link(r)
			grids[r] = fillColumns(t, r, 2+r%2, 7)
		}
		for gen := 0; gen < 3; gen++ {
			exchangeAll(t, links, grids, gen)
			checkGhosts(t, grids)
			// Perturb the real columns so the next round carries new data.
			for _, g := range grids {
				g.Set(0, gen, 1-g.Get(0, gen))
				g.Set(g.W-1, gen+1, 1-g.Get(g.W-1, gen+1))
			}
		}
	}
}

func TestMeshExchangeDoesNotAliasSenderColumns(t *testing.T) {
	mesh := NewMesh(2)
	links := []Link{mesh.Link(0), mesh.Link(1)}
	grids := []*core.Grid{fillColumns(t, 0, 2, 4), fillColumns(t, 1, 2, 4)}
	exchangeAll(t, links, grids, 0)
	before := slices.Clone(grids[1].Column(-1))
	grids[0].Column(1)[0] ^= 1
	if !slices.Equal(before, grids[1].Column(-1)) {
		t.Fatal("ghost column changed when the sender mutated its own column")
	}
}

func TestMeshShiftHonoursCancellation(t *testing.T) {
	mesh := NewMesh(2)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		recv := make([]uint8, 3)
		errc <- mesh.Link(0).Shift(ctx, Rightward, 0, []uint8{1, 0, 1}, recv)
	}()
	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Shift returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Shift did not return after cancellation")
	}
}

func TestMeshDetectsGenerationSkew(t *testing.T) {
	mesh := NewMesh(2)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errc := make(chan error, 2)
	go func() {
		errc <- mesh.Link(0).Shift(ctx, Rightward, 4, make([]uint8, 2), make([]uint8, 2))
	}()
	go func() {
		errc <- mesh.Link(1).Shift(ctx, Rightward, 5, make([]uint8, 2), make([]uint8, 2))
	}()
	for i := 0; i < 2; i++ {
		if err := <-errc; !errors.Is(err, ErrGenerationSkew) {
			t.Fatalf("expected ErrGenerationSkew, got %v", err)
		}
	}
}

func TestMeshLinkRejectsUseAfterClose(t *testing.T) {
	link := NewMesh(1).Link(0)
	if err := link.Close(); err != nil {
		t.Fatal(err)
	}
	err := link.Shift(context.Background(), Leftward, 0, []uint8{1}, make([]uint8, 1))
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Shift after Close = %v, want ErrClosed", err)
	}
}

func TestTCPExchangeOverLoopback(t *testing.T) {
	for _, p := range []int{1, 2, 3} {
		listeners := make([]net.Listener, p)
		peers := make([]string, p)
		for r := range listeners {
			ln, err := Listen("127.0.0.1:0")
			if err != nil {
				t.Fatal(err)
			}
			listeners[r] = ln
			peers[r] = ln.Addr().String()
		}

		links := make([]Link, p)
		var wg sync.WaitGroup
		errs := make([]error, p)
		for r := 0; r < p; r++ {
			wg.Add(1)
			go func(r int) {
				defer wg.Done()
				link, err := DialTCP(context.Background(), TCPConfig{Rank: r, Peers: peers, DialTimeout: 5 * time.Second}, listeners[r])
				links[r], errs[r] = link, err
			}(r)
		}
		wg.Wait()
		for r, err := range errs {
			if err != nil {
				t.Fatalf("P=%d rank %d dial: %v", p, r, err)
			}
		}

		grids := make([]*core.Grid, p)
		for r := range grids {
			grids[r] = fillColumns(t, r, 3, 5)
		}
		for gen := 0; gen < 2; gen++ {
			exchangeAll(t, links, grids, gen)
			checkGhosts(t, grids)
		}

		var closing sync.WaitGroup
		for _, link := range links {
			closing.Add(1)
			go func(link Link) {
				defer closing.Done()
				if err := link.Close(); err != nil {
					t.Errorf("close: %v", err)
				}
			}(link)
		}
		closing.Wait()
	}
}

func TestDialTCPRejectsRankOutsideRing(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	_, err = DialTCP(context.Background(), TCPConfig{Rank: 2, Peers: []string{ln.Addr().String()}}, ln)
	if err == nil {
		t.Fatal("expected an error for a rank outside the ring")
	}
}
