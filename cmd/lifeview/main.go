//go:build ebiten

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"halo-life/internal/app"
	"halo-life/internal/engine"
	"halo-life/internal/scenario"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	gps := flag.Int("gps", 15, "generations per second")
	width := flag.Int("width", 160, "random soup width when no scenario is given")
	height := flag.Int("height", 120, "random soup height when no scenario is given")
	density := flag.Float64("density", 0.3, "random soup density")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random soup seed")
	flag.Parse()

	var sc *scenario.Scenario
	if flag.NArg() > 0 {
		var err error
		if sc, err = scenario.Load(flag.Arg(0)); err != nil {
			log.Fatal(err)
		}
	} else {
		sc = scenario.Random(*width, *height, 0, 0, *density, *seed)
	}

	cluster, err := engine.NewCluster(sc, cfg.NP, engine.Options{Threads: cfg.Threads})
	if err != nil {
		log.Fatal(err)
	}
	defer cluster.Close()

	game := app.New(cluster, cfg.Scale, *gps)
	w, h := game.Layout(0, 0)

	ebiten.SetWindowTitle(fmt.Sprintf("halo-life (%d workers)", cfg.NP))
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
