package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// EncodePopulationChart renders live-cell counts per generation as a PNG line
// chart. history[g] is the population after generation g.
func EncodePopulationChart(w io.Writer, history []int) error {
	if len(history) < 2 {
		return errors.New("snapshot: population chart needs at least two generations")
	}
	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	peak := 0
	for g, n := range history {
		xs[g] = float64(g)
		ys[g] = float64(n)
		if n > peak {
			peak = n
		}
	}

	graph := chart.Chart{
		Title:  "Population",
		Width:  960,
		Height: 480,
		XAxis:  chart.XAxis{Name: "generation"},
		YAxis: chart.YAxis{
			Name:  "live cells",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(peak + 1)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "live cells",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("2a6f97"),
					StrokeWidth: 2,
				},
			},
		},
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("snapshot: render chart: %w", err)
	}
	return nil
}

// SavePopulationChart writes the chart to path.
func SavePopulationChart(path string, history []int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := EncodePopulationChart(f, history); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
