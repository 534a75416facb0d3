// Package scenario reads and writes the plain-text scenario format:
//
//	<steps>
//	<save_interval>
//	<width> <height>
//	<col> <row>        one live cell per line, until end of file
package scenario

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"halo-life/pkg/core"
)

// ErrMalformed reports a scenario that cannot be parsed.
var ErrMalformed = errors.New("malformed scenario")

// Cell is a seeded live cell in global coordinates.
type Cell struct {
	Col, Row int
}

// Scenario is the shared global description every worker starts from.
type Scenario struct {
	Steps     int
	SaveEvery int // 0 disables snapshots
	Width     int
	Height    int
	Cells     []Cell
}

// Load opens and parses the scenario at path.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	sc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse reads a scenario. Blank lines are skipped; seed lines are kept as
// written, even when they fall outside the grid.
func Parse(r io.Reader) (*Scenario, error) {
	s := bufio.NewScanner(r)
	line := 0
	next := func() ([]string, bool) {
		for s.Scan() {
			line++
			if fields := strings.Fields(s.Text()); len(fields) > 0 {
				return fields, true
			}
		}
		return nil, false
	}
	header := func(name string, n int) ([]int, error) {
		fields, ok := next()
		if !ok {
			if err := s.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: missing %s", ErrMalformed, name)
		}
		return ints(fields, n, line, name)
	}

	sc := &Scenario{}
	v, err := header("steps", 1)
	if err != nil {
		return nil, err
	}
	sc.Steps = v[0]
	if v, err = header("save interval", 1); err != nil {
		return nil, err
	}
	sc.SaveEvery = v[0]
	if v, err = header("grid size", 2); err != nil {
		return nil, err
	}
	sc.Width, sc.Height = v[0], v[1]
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	for {
		fields, ok := next()
		if !ok {
			break
		}
		v, err := ints(fields, 2, line, "cell")
		if err != nil {
			return nil, err
		}
		sc.Cells = append(sc.Cells, Cell{Col: v[0], Row: v[1]})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return sc, nil
}

func ints(fields []string, n, line int, name string) ([]int, error) {
	if len(fields) != n {
		return nil, fmt.Errorf("%w: line %d: %s wants %d fields, got %d", ErrMalformed, line, name, n, len(fields))
	}
	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %v", ErrMalformed, line, name, err)
		}
		out[i] = v
	}
	return out, nil
}

// Validate checks the header fields.
func (sc *Scenario) Validate() error {
	switch {
	case sc.Steps < 0:
		return fmt.Errorf("%w: negative step count %d", ErrMalformed, sc.Steps)
	case sc.SaveEvery < 0:
		return fmt.Errorf("%w: negative save interval %d", ErrMalformed, sc.SaveEvery)
	case sc.Width <= 0 || sc.Height <= 0:
		return fmt.Errorf("%w: grid size %dx%d", ErrMalformed, sc.Width, sc.Height)
	}
	return nil
}

// Write encodes sc in the scenario format.
func Write(w io.Writer, sc *Scenario) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%d\n%d %d\n", sc.Steps, sc.SaveEvery, sc.Width, sc.Height)
	for _, c := range sc.Cells {
		fmt.Fprintf(bw, "%d %d\n", c.Col, c.Row)
	}
	return bw.Flush()
}

// Save writes sc to path.
func Save(path string, sc *Scenario) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, sc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Random seeds each cell of a width x height grid alive with probability
// density, deterministically for a given seed.
func Random(width, height, steps, saveEvery int, density float64, seed int64) *Scenario {
	sc := &Scenario{Steps: steps, SaveEvery: saveEvery, Width: width, Height: height}
	rng := core.NewRNG(seed)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if rng.Chance(density) {
				sc.Cells = append(sc.Cells, Cell{Col: col, Row: row})
			}
		}
	}
	return sc
}

// Dense returns the seeded cells as a row-major width x height grid. Columns
// outside the grid are dropped; rows wrap around the height.
func (sc *Scenario) Dense() []uint8 {
	out := make([]uint8, sc.Width*sc.Height)
	for _, c := range sc.Cells {
		if c.Col < 0 || c.Col >= sc.Width {
			continue
		}
		row := (c.Row%sc.Height + sc.Height) % sc.Height
		out[row*sc.Width+c.Col] = 1
	}
	return out
}
