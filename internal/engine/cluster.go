package engine

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"halo-life/internal/core"
	"halo-life/internal/halo"
	"halo-life/internal/partition"
	"halo-life/internal/scenario"
)

// Cluster runs every worker of a ring inside one process, one goroutine per
// worker, connected by a channel mesh. Workers share nothing but the mesh.
type Cluster struct {
	sc      *scenario.Scenario
	workers []*Worker

	mu      sync.Mutex
	history []int
}

// NewCluster partitions sc over n workers and seeds each slab.
func NewCluster(sc *scenario.Scenario, n int, opts Options) (*Cluster, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if _, err := partition.New(sc.Width, sc.Height, n, 0); err != nil {
		return nil, err
	}
	c := &Cluster{sc: sc}
	mesh := halo.NewMesh(n)
	for r := 0; r < n; r++ {
		layout, err := partition.New(sc.Width, sc.Height, n, r)
		if err != nil {
			return nil, err
		}
		wopts := opts
		wopts.Steps = sc.Steps
		wopts.SaveEvery = sc.SaveEvery
		wopts.Logger = rankLogger(opts.Logger, r)
		wopts.OnGeneration = c.record
		if r != opts.Designated {
			wopts.Writers = nil
		}
		w, err := NewWorker(layout, mesh.Link(r), wopts)
		if err != nil {
			return nil, err
		}
		w.Seed(sc.Cells)
		c.workers = append(c.workers, w)
	}
	c.history = []int{c.Population()}
	return c, nil
}

func rankLogger(base *log.Logger, rank int) *log.Logger {
	if base == nil {
		base = log.Default()
	}
	return log.New(base.Writer(), fmt.Sprintf("%s[rank %d] ", base.Prefix(), rank), base.Flags())
}

// record sums per-worker populations into the generation history.
func (c *Cluster) record(gen, population int) {
	c.mu.Lock()
	for len(c.history) <= gen {
		c.history = append(c.history, 0)
	}
	c.history[gen] += population
	c.mu.Unlock()
}

// Run drives every worker through the scenario's steps. The first worker
// error cancels the others.
func (c *Cluster) Run(ctx context.Context) error {
	return c.each(ctx, func(ctx context.Context, w *Worker) error {
		return w.Run(ctx)
	})
}

// Advance moves every worker one generation forward.
func (c *Cluster) Advance(ctx context.Context) error {
	return c.each(ctx, func(ctx context.Context, w *Worker) error {
		return w.Advance(ctx)
	})
}

func (c *Cluster) each(ctx context.Context, fn func(context.Context, *Worker) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range c.workers {
		g.Go(func() error { return fn(gctx, w) })
	}
	return g.Wait()
}

func (c *Cluster) historyAt(gen int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen < len(c.history) {
		return c.history[gen]
	}
	return 0
}

// History returns the total population after each completed generation,
// starting with the seeded population at index 0.
func (c *Cluster) History() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.history...)
}

// Workers exposes the ring members in rank order.
func (c *Cluster) Workers() []*Worker { return c.workers }

// Population counts live cells across every slab.
func (c *Cluster) Population() int {
	n := 0
	for _, w := range c.workers {
		n += w.Grid().Population()
	}
	return n
}

// Global assembles every slab into a row-major width x height grid.
func (c *Cluster) Global() []uint8 {
	width, height := c.sc.Width, c.sc.Height
	out := make([]uint8, width*height)
	for _, w := range c.workers {
		g := w.Grid()
		offset := w.Layout().Offset()
		for i := 0; i < g.W; i++ {
			col := g.Column(i)
			for j, v := range col {
				out[j*width+offset+i] = v
			}
		}
	}
	return out
}

// Close releases every worker's link.
func (c *Cluster) Close() error {
	var first error
	for _, w := range c.workers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Name identifies the simulation.
func (c *Cluster) Name() string { return fmt.Sprintf("life x%d", len(c.workers)) }

// Size returns the global grid dimensions.
func (c *Cluster) Size() core.Size { return core.Size{W: c.sc.Width, H: c.sc.Height} }

// Generation is the number of generations every worker has completed.
func (c *Cluster) Generation() int { return c.workers[0].Generation() }

// Step advances the whole ring by one generation.
func (c *Cluster) Step() error { return c.Advance(context.Background()) }

// Cells returns the assembled global grid.
func (c *Cluster) Cells() []uint8 { return c.Global() }

// Parameters describes the run for display.
func (c *Cluster) Parameters() core.ParameterSnapshot {
	part := make([]core.Parameter, 0, len(c.workers)+1)
	part = append(part, core.IntParam("workers", "Workers", len(c.workers)))
	for _, w := range c.workers {
		l := w.Layout()
		part = append(part, core.IntParam(fmt.Sprintf("w%d", l.Rank), fmt.Sprintf("Rank %d columns", l.Rank), l.LocalWidth()))
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{Name: "Grid", Params: []core.Parameter{
			core.IntParam("w", "Width", c.sc.Width),
			core.IntParam("h", "Height", c.sc.Height),
		}},
		{Name: "Partition", Params: part},
		{Name: "Run", Params: []core.Parameter{
			core.IntParam("gen", "Generation", c.Generation()),
			core.IntParam("steps", "Steps", c.sc.Steps),
			core.IntParam("pop", "Population", c.historyAt(c.Generation())),
		}},
	}}
}

// Boundaries returns the first global column of every rank after rank 0.
func (c *Cluster) Boundaries() []int {
	out := make([]int, 0, len(c.workers)-1)
	for _, w := range c.workers[1:] {
		out = append(out, w.Layout().Offset())
	}
	return out
}
