package snapshot

import (
	"fmt"
	"image/color"
	"image/png"
	"os"

	"halo-life/internal/render"
)

type pngWriter struct {
	dir   string
	scale int
}

func (p pngWriter) Ext() string { return "png" }

func (p pngWriter) WriteFrame(f Frame) (string, error) {
	if len(f.Cells) != f.Width*f.Height {
		return "", fmt.Errorf("snapshot: %d cells for a %dx%d region", len(f.Cells), f.Width, f.Height)
	}
	img := render.Image(render.RowMajor(f.Cells, f.Width, f.Height), f.Width, f.Height, color.White, color.Black)
	path := Path(p.dir, f.Gen, p.Ext())
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	if err := png.Encode(out, render.Scaled(img, p.scale)); err != nil {
		out.Close()
		return "", fmt.Errorf("snapshot: encode %s: %w", path, err)
	}
	return path, out.Close()
}

func init() {
	Register("png", func(opts Options) Writer { return pngWriter{dir: opts.Dir, scale: opts.Scale} })
}
