package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// EncodeVTK writes a legacy ASCII VTK structured-points file with one "life"
// scalar per cell. cells holds width columns of height values each,
// column-major, as stored in a grid region.
func EncodeVTK(w io.Writer, cells []uint8, width, height int) error {
	if len(cells) != width*height {
		return fmt.Errorf("snapshot: %d cells for a %dx%d region", len(cells), width, height)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# vtk DataFile Version 3.0\n")
	fmt.Fprintf(bw, "Created by write_to_vtk2d\n")
	fmt.Fprintf(bw, "ASCII\n")
	fmt.Fprintf(bw, "DATASET STRUCTURED_POINTS\n")
	fmt.Fprintf(bw, "DIMENSIONS %d %d 1\n", width+1, height+1)
	fmt.Fprintf(bw, "SPACING %d %d 0.0\n", 1, 1)
	fmt.Fprintf(bw, "ORIGIN %d %d 0.0\n", 0, 0)
	fmt.Fprintf(bw, "CELL_DATA %d\n", width*height)

	fmt.Fprintf(bw, "SCALARS life int 1\n")
	fmt.Fprintf(bw, "LOOKUP_TABLE life_table\n")
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			fmt.Fprintf(bw, "%d\n", cells[i*height+j])
		}
	}
	return bw.Flush()
}

// SaveVTK writes the region to path.
func SaveVTK(path string, cells []uint8, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := EncodeVTK(f, cells, width, height); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type vtkWriter struct {
	dir string
}

func (v vtkWriter) Ext() string { return "vtk" }

func (v vtkWriter) WriteFrame(f Frame) (string, error) {
	path := Path(v.dir, f.Gen, v.Ext())
	return path, SaveVTK(path, f.Cells, f.Width, f.Height)
}

func init() {
	Register("vtk", func(opts Options) Writer { return vtkWriter{dir: opts.Dir} })
}
