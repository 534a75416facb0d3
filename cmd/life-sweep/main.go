package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"slices"
	"sort"
	"sync"
	"time"

	"halo-life/internal/engine"
	"halo-life/internal/scenario"
	"halo-life/pkg/sims/life"
)

type job struct {
	workers int
	threads int
}

func (j job) String() string { return fmt.Sprintf("P=%d threads=%d", j.workers, j.threads) }

type sweepResult struct {
	job        job
	elapsed    time.Duration
	population int
	matches    bool
	err        error
}

func main() {
	width := flag.Int("width", 256, "grid width")
	height := flag.Int("height", 256, "grid height")
	steps := flag.Int("steps", 200, "generations per run")
	density := flag.Float64("density", 0.3, "initial soup density")
	seed := flag.Int64("seed", 1337, "soup seed")
	maxWorkers := flag.Int("max-np", 8, "largest worker count to try")
	pool := flag.Int("pool", runtime.NumCPU(), "runs executed at once")
	flag.Parse()

	sc := scenario.Random(*width, *height, *steps, 0, *density, *seed)

	start := time.Now()
	ref := life.FromCells(sc.Width, sc.Height, sc.Dense())
	ref.Run(sc.Steps)
	want := ref.Cells()
	fmt.Printf("Reference %dx%d, %d steps, %d seeded cells: %s\n",
		sc.Width, sc.Height, sc.Steps, len(sc.Cells), time.Since(start).Round(time.Millisecond))

	var jobs []job
	for np := 1; np <= *maxWorkers && np <= sc.Width; np *= 2 {
		for _, threads := range []int{1, 4} {
			jobs = append(jobs, job{workers: np, threads: threads})
		}
	}
	fmt.Printf("Sweeping %d configurations (%d at a time)\n", len(jobs), *pool)

	queue := make(chan job)
	results := make(chan sweepResult)
	var wg sync.WaitGroup

	for i := 0; i < *pool; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				results <- runJob(sc, j, want)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, j := range jobs {
			queue <- j
		}
		close(queue)
	}()

	var all []sweepResult
	failed := false
	for res := range results {
		all = append(all, res)
		if res.err != nil || !res.matches {
			failed = true
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].job.workers != all[j].job.workers {
			return all[i].job.workers < all[j].job.workers
		}
		return all[i].job.threads < all[j].job.threads
	})

	fmt.Println()
	for _, res := range all {
		switch {
		case res.err != nil:
			fmt.Printf("%-18s error: %v\n", res.job, res.err)
		case !res.matches:
			fmt.Printf("%-18s DIVERGED after %s (population %d)\n", res.job, res.elapsed.Round(time.Millisecond), res.population)
		default:
			fmt.Printf("%-18s %10s population %d\n", res.job, res.elapsed.Round(time.Millisecond), res.population)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func runJob(sc *scenario.Scenario, j job, want []uint8) sweepResult {
	res := sweepResult{job: j}
	c, err := engine.NewCluster(sc, j.workers, engine.Options{
		Threads: j.threads,
		Logger:  log.New(io.Discard, "", 0),
	})
	if err != nil {
		res.err = err
		return res
	}
	defer c.Close()

	start := time.Now()
	if err := c.Run(context.Background()); err != nil {
		res.err = err
		return res
	}
	res.elapsed = time.Since(start)
	res.population = c.Population()
	res.matches = slices.Equal(c.Global(), want)
	return res
}
