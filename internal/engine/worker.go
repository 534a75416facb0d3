package engine

import (
	"context"
	"fmt"
	"log"

	"halo-life/internal/core"
	"halo-life/internal/halo"
	"halo-life/internal/partition"
	"halo-life/internal/scenario"
	"halo-life/internal/snapshot"
)

// Options configures a worker's run.
type Options struct {
	Steps     int
	SaveEvery int // snapshot cadence in generations; 0 disables
	Threads   int // step goroutines per worker

	// Writers receive the slab of the designated rank only.
	Writers    []snapshot.Writer
	Designated int

	Logger *log.Logger
	// OnGeneration is called after every completed generation with this
	// worker's live real cells.
	OnGeneration func(gen, population int)
}

// Worker owns one slab and advances it in lockstep with its ring neighbours.
type Worker struct {
	layout  partition.Layout
	grid    *core.Grid
	link    halo.Link
	stepper Stepper
	opts    Options
	logger  *log.Logger

	gen    int
	primed bool
}

// NewWorker allocates the slab described by layout. link must connect the
// same rank on a ring of layout.Workers.
func NewWorker(layout partition.Layout, link halo.Link, opts Options) (*Worker, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if link.Rank() != layout.Rank || link.Size() != layout.Workers {
		return nil, fmt.Errorf("link is rank %d of %d, layout is rank %d of %d",
			link.Rank(), link.Size(), layout.Rank, layout.Workers)
	}
	grid, err := core.NewGrid(layout.LocalWidth(), layout.Height)
	if err != nil {
		return nil, fmt.Errorf("rank %d: %w", layout.Rank, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Worker{
		layout:  layout,
		grid:    grid,
		link:    link,
		stepper: Stepper{Threads: opts.Threads},
		opts:    opts,
		logger:  logger,
	}, nil
}

// Seed marks the given global cells alive in this worker's slab and ghosts.
// Cells belonging to other workers are skipped. It returns how many cells
// landed in this slab.
func (w *Worker) Seed(cells []scenario.Cell) int {
	loaded := 0
	for _, c := range cells {
		targets := w.layout.Targets(c.Col)
		for _, i := range targets {
			w.grid.Set(i, c.Row, 1)
		}
		if len(targets) > 0 {
			loaded++
		}
	}
	w.logger.Printf("Loaded %d life cells.", loaded)
	return loaded
}

// Prime runs the initial halo exchange so every ghost column matches the
// seeded neighbour columns before the first step.
func (w *Worker) Prime(ctx context.Context) error {
	if w.primed {
		return nil
	}
	if err := halo.Exchange(ctx, w.link, w.grid, w.gen); err != nil {
		return fmt.Errorf("rank %d: %w", w.layout.Rank, err)
	}
	w.primed = true
	return nil
}

// Advance steps the slab one generation and refreshes its ghosts.
func (w *Worker) Advance(ctx context.Context) error {
	if err := w.Prime(ctx); err != nil {
		return err
	}
	w.stepper.Step(w.grid)
	w.gen++
	if err := halo.Exchange(ctx, w.link, w.grid, w.gen); err != nil {
		return fmt.Errorf("rank %d: %w", w.layout.Rank, err)
	}
	if w.opts.OnGeneration != nil {
		w.opts.OnGeneration(w.gen, w.grid.Population())
	}
	return nil
}

// Run advances the slab until Steps generations have completed, saving a
// snapshot of the designated rank at every SaveEvery-th generation.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.Prime(ctx); err != nil {
		return err
	}
	for w.gen < w.opts.Steps {
		if w.saveDue() {
			if err := w.save(); err != nil {
				return err
			}
		}
		if err := w.Advance(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) saveDue() bool {
	return w.opts.SaveEvery > 0 && w.gen%w.opts.SaveEvery == 0
}

func (w *Worker) save() error {
	w.logger.Printf("Saving step %d to '%s'.", w.gen, snapshot.Path("", w.gen, "vtk"))
	if w.layout.Rank != w.opts.Designated {
		return nil
	}
	frame := w.Frame()
	for _, sw := range w.opts.Writers {
		if _, err := sw.WriteFrame(frame); err != nil {
			return fmt.Errorf("rank %d: save generation %d: %w", w.layout.Rank, w.gen, err)
		}
	}
	return nil
}

// Frame returns the current real columns. Cells alias the grid.
func (w *Worker) Frame() snapshot.Frame {
	return snapshot.Frame{Gen: w.gen, Width: w.grid.W, Height: w.grid.H, Cells: w.grid.Region()}
}

// Generation is the number of completed generations.
func (w *Worker) Generation() int { return w.gen }

// Grid exposes the slab storage.
func (w *Worker) Grid() *core.Grid { return w.grid }

// Layout returns the worker's partition.
func (w *Worker) Layout() partition.Layout { return w.layout }

// Close releases the halo link.
func (w *Worker) Close() error { return w.link.Close() }
