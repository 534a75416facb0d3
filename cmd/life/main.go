package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"halo-life/internal/app"
	"halo-life/internal/engine"
	"halo-life/internal/halo"
	"halo-life/internal/partition"
	"halo-life/internal/scenario"
	"halo-life/internal/snapshot"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: life [flags] <scenario>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, flag.Arg(0)); err != nil {
		log.Fatalf("life: %v", err)
	}
}

func run(ctx context.Context, cfg *app.Config, path string) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}
	log.Printf("Steps %d, save every %d step.", sc.Steps, sc.SaveEvery)
	log.Printf("Field size: %dx%d", sc.Width, sc.Height)

	writers, err := snapshot.New(cfg.Formats, snapshot.Options{Dir: cfg.Out, Scale: cfg.Scale})
	if err != nil {
		return err
	}
	if sc.SaveEvery > 0 {
		if err := os.MkdirAll(cfg.Out, 0o755); err != nil {
			return err
		}
	}
	opts := engine.Options{Threads: cfg.Threads, Writers: writers, Logger: log.Default()}

	id, distributed, err := app.IdentityFromEnv(os.Getenv)
	if err != nil {
		return err
	}
	var history []int
	if distributed {
		history, err = runProcess(ctx, cfg, sc, id, opts)
	} else {
		history, err = runCluster(ctx, cfg, sc, opts)
	}
	if err != nil {
		return err
	}

	if cfg.Chart != "" && len(history) > 1 {
		if err := snapshot.SavePopulationChart(cfg.Chart, history); err != nil {
			return err
		}
		log.Printf("Population chart written to '%s'.", cfg.Chart)
	}
	return nil
}

// runCluster runs every worker in this process over a channel mesh.
func runCluster(ctx context.Context, cfg *app.Config, sc *scenario.Scenario, opts engine.Options) ([]int, error) {
	c, err := engine.NewCluster(sc, cfg.NP, opts)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	if err := c.Run(ctx); err != nil {
		return nil, err
	}
	return c.History(), nil
}

// runProcess runs this process's single rank over TCP. Only rank 0 reports a
// population history, covering its own slab.
func runProcess(ctx context.Context, cfg *app.Config, sc *scenario.Scenario, id app.Identity, opts engine.Options) ([]int, error) {
	layout, err := partition.New(sc.Width, sc.Height, id.Size, id.Rank)
	if err != nil {
		return nil, err
	}
	logger := log.New(os.Stderr, fmt.Sprintf("[rank %d] ", id.Rank), log.LstdFlags)

	ln, err := halo.Listen(id.Peers[id.Rank])
	if err != nil {
		return nil, err
	}
	link, err := halo.DialTCP(ctx, halo.TCPConfig{
		Rank:        id.Rank,
		Peers:       id.Peers,
		DialTimeout: cfg.DialTimeout,
		Logger:      logger,
	}, ln)
	if err != nil {
		ln.Close()
		return nil, err
	}

	var history []int
	opts.Steps = sc.Steps
	opts.SaveEvery = sc.SaveEvery
	opts.Logger = logger
	opts.OnGeneration = func(_, population int) { history = append(history, population) }
	w, err := engine.NewWorker(layout, link, opts)
	if err != nil {
		link.Close()
		return nil, err
	}
	defer w.Close()
	w.Seed(sc.Cells)
	history = append(history, w.Grid().Population())

	if err := w.Run(ctx); err != nil {
		return nil, err
	}
	if id.Rank != opts.Designated {
		return nil, nil
	}
	return history, nil
}
