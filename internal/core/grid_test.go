package core

import (
	"errors"
	"testing"
	"time"
)

func TestNewGridRejectsBadSizes(t *testing.T) {
	for _, dims := range [][2]int{{0, 4}, {4, 0}, {-1, 3}, {MaxCells, 2}} {
		if _, err := NewGrid(dims[0], dims[1]); !errors.Is(err, ErrGridSize) {
			t.Fatalf("NewGrid(%d, %d) err = %v, want ErrGridSize", dims[0], dims[1], err)
		}
	}
}

func TestIndexLayoutAndRowWrap(t *testing.T) {
	g, err := NewGrid(3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Active()) != 5*4 || len(g.Inactive()) != 5*4 {
		t.Fatalf("buffers sized %d/%d, want 20", len(g.Active()), len(g.Inactive()))
	}
	if got := g.Index(-1, 0); got != 0 {
		t.Fatalf("left ghost starts at %d", got)
	}
	if got := g.Index(3, 0); got != 16 {
		t.Fatalf("right ghost starts at %d, want 16", got)
	}
	if g.Index(1, -1) != g.Index(1, 3) {
		t.Fatal("row -1 must wrap to the last row")
	}
	if g.Index(1, 4) != g.Index(1, 0) {
		t.Fatal("row H must wrap to row 0")
	}
	if g.Index(0, -9) != g.Index(0, 3) {
		t.Fatal("rows far below zero must still wrap")
	}
}

func TestSetStoresBinaryValues(t *testing.T) {
	g, _ := NewGrid(2, 2)
	g.Set(0, 0, 255)
	if got := g.Get(0, 0); got != 1 {
		t.Fatalf("Set(255) stored %d", got)
	}
	g.Set(0, 0, 0)
	if got := g.Get(0, 0); got != 0 {
		t.Fatalf("Set(0) stored %d", got)
	}
}

func TestSwapExchangesRolesWithoutCopy(t *testing.T) {
	g, _ := NewGrid(2, 3)
	g.Set(1, 2, 1)
	first := g.Active()
	g.Swap()
	if &g.Inactive()[0] != &first[0] {
		t.Fatal("swap must hand the previous active buffer over as inactive")
	}
	if g.Get(1, 2) != 0 {
		t.Fatal("fresh active buffer should be empty")
	}
	g.Swap()
	if g.Get(1, 2) != 1 {
		t.Fatal("swapping back must restore the original cells")
	}
}

func TestColumnAndRegionAliasStorage(t *testing.T) {
	g, _ := NewGrid(3, 2)
	g.Column(-1)[1] = 1
	if g.Get(-1, 1) != 1 {
		t.Fatal("left ghost column does not alias storage")
	}
	g.Column(3)[0] = 1
	if g.Get(3, 0) != 1 {
		t.Fatal("right ghost column does not alias storage")
	}
	g.Set(0, 0, 1)
	g.Set(2, 1, 1)
	region := g.Region()
	if len(region) != 6 {
		t.Fatalf("region has %d cells, want 6", len(region))
	}
	if region[0] != 1 || region[5] != 1 {
		t.Fatalf("region = %v", region)
	}
	if got := g.Population(); got != 2 {
		t.Fatalf("Population() = %d, want 2 (ghosts excluded)", got)
	}
	g.Clear()
	if g.Population() != 0 || g.Get(-1, 1) != 0 {
		t.Fatal("Clear must zero ghosts and real cells")
	}
}

func TestFixedStepPacesGenerations(t *testing.T) {
	clock := time.Unix(0, 0)
	fs := NewFixedStep(10)
	fs.now = func() time.Time { return clock }

	if got := fs.Due(5); got != 1 {
		t.Fatalf("first Due = %d, want 1 primed generation", got)
	}
	clock = clock.Add(50 * time.Millisecond)
	if got := fs.Due(5); got != 0 {
		t.Fatalf("Due after 50ms = %d, want 0", got)
	}
	clock = clock.Add(250 * time.Millisecond)
	if got := fs.Due(5); got != 3 {
		t.Fatalf("Due after 300ms total = %d, want 3", got)
	}
	clock = clock.Add(10 * time.Second)
	if got := fs.Due(5); got != 5 {
		t.Fatalf("Due must cap at the limit, got %d", got)
	}
	if got := fs.Due(5); got != 0 {
		t.Fatalf("backlog must be dropped after hitting the limit, got %d", got)
	}
}

func TestParameterLookup(t *testing.T) {
	snap := ParameterSnapshot{Groups: []ParameterGroup{
		{Name: "Grid", Params: []Parameter{IntParam("w", "Width", 8)}},
	}}
	if v, ok := snap.Lookup("w"); !ok || v != "8" {
		t.Fatalf("Lookup(w) = %q, %v", v, ok)
	}
	if _, ok := snap.Lookup("h"); ok {
		t.Fatal("Lookup(h) should miss")
	}
}
