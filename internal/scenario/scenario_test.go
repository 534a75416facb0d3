package scenario

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const blinker = `4
2
4 4
1 1
1 2
1 3
`

func TestParseReadsHeaderAndCells(t *testing.T) {
	sc, err := Parse(strings.NewReader(blinker))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Steps != 4 || sc.SaveEvery != 2 || sc.Width != 4 || sc.Height != 4 {
		t.Fatalf("header parsed as %+v", sc)
	}
	want := []Cell{{1, 1}, {1, 2}, {1, 3}}
	if !slices.Equal(sc.Cells, want) {
		t.Fatalf("cells = %v, want %v", sc.Cells, want)
	}
}

func TestParseToleratesBlankLinesAndMissingCells(t *testing.T) {
	sc, err := Parse(strings.NewReader("10\n\n1\n8 6\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Cells) != 0 || sc.Width != 8 || sc.Height != 6 {
		t.Fatalf("parsed %+v", sc)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":             "",
		"missing size":      "5\n1\n",
		"size one field":    "5\n1\n8\n",
		"non-numeric steps": "five\n1\n8 8\n",
		"zero width":        "5\n1\n0 8\n",
		"negative steps":    "-1\n1\n8 8\n",
		"negative interval": "5\n-2\n8 8\n",
		"bad cell":          "5\n1\n8 8\n1 x\n",
		"short cell":        "5\n1\n8 8\n3\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(input)); !errors.Is(err, ErrMalformed) {
				t.Fatalf("Parse err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load err = %v, want os.ErrNotExist", err)
	}
}

func TestWriteThenParseKeepsScenario(t *testing.T) {
	sc := Random(16, 9, 30, 5, 0.3, 7)
	if len(sc.Cells) == 0 {
		t.Fatal("random scenario has no live cells")
	}
	var buf bytes.Buffer
	if err := Write(&buf, sc); err != nil {
		t.Fatal(err)
	}
	got, err := Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Steps != 30 || got.SaveEvery != 5 || !slices.Equal(got.Cells, sc.Cells) {
		t.Fatalf("round trip changed scenario: %+v", got)
	}

	path := filepath.Join(t.TempDir(), "random.txt")
	if err := Save(path, sc); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(loaded.Dense(), sc.Dense()) {
		t.Fatal("saved scenario loads different cells")
	}
}

func TestRandomIsDeterministic(t *testing.T) {
	a := Random(20, 20, 1, 1, 0.4, 99)
	b := Random(20, 20, 1, 1, 0.4, 99)
	if !slices.Equal(a.Cells, b.Cells) {
		t.Fatal("same seed produced different scenarios")
	}
	if empty := Random(20, 20, 1, 1, 0, 99); len(empty.Cells) != 0 {
		t.Fatalf("zero density produced %d cells", len(empty.Cells))
	}
}

func TestDenseDropsForeignColumnsAndWrapsRows(t *testing.T) {
	sc := &Scenario{Width: 3, Height: 2, Cells: []Cell{{0, 0}, {5, 1}, {-1, 0}, {2, 3}, {1, -1}}}
	want := []uint8{
		1, 0, 0,
		0, 1, 1,
	}
	if got := sc.Dense(); !slices.Equal(got, want) {
		t.Fatalf("Dense() = %v, want %v", got, want)
	}
}
