package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// fillBinaryRGBA converts binary cell data (0/1) into RGBA pixels in buf.
func fillBinaryRGBA(buf []byte, cells []uint8, on, off color.Color) {
	rOn, gOn, bOn, aOn := on.RGBA()
	rOff, gOff, bOff, aOff := off.RGBA()
	for i, c := range cells {
		base := i * 4
		if c != 0 {
			buf[base+0] = uint8(rOn >> 8)
			buf[base+1] = uint8(gOn >> 8)
			buf[base+2] = uint8(bOn >> 8)
			buf[base+3] = uint8(aOn >> 8)
			continue
		}
		buf[base+0] = uint8(rOff >> 8)
		buf[base+1] = uint8(gOff >> 8)
		buf[base+2] = uint8(bOff >> 8)
		buf[base+3] = uint8(aOff >> 8)
	}
}

// RowMajor transposes a column-major w x h region (cell (i, j) at i*h+j)
// into row-major order (cell (i, j) at j*w+i).
func RowMajor(cells []uint8, w, h int) []uint8 {
	out := make([]uint8, w*h)
	for i := 0; i < w; i++ {
		col := cells[i*h : (i+1)*h]
		for j, c := range col {
			out[j*w+i] = c
		}
	}
	return out
}

// Image paints row-major cells into an RGBA image, one pixel per cell.
func Image(cells []uint8, w, h int, on, off color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillBinaryRGBA(img.Pix, cells, on, off)
	return img
}

// Scaled enlarges src by an integer factor with nearest-neighbour sampling so
// cell edges stay sharp.
func Scaled(src image.Image, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
