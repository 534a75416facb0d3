//go:build ebiten

package ui

import (
	"image/color"

	"halo-life/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type boundaryProvider interface {
	Boundaries() []int
}

// Overlay marks the slab boundaries between workers on top of the grid.
// B toggles it.
type Overlay struct {
	sim   core.Sim
	scale int
	show  bool
	pixel *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: scale, show: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update handles the toggle key.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		o.show = !o.show
	}
}

// Draw renders one translucent vertical line per boundary.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.show {
		return
	}
	provider, ok := o.sim.(boundaryProvider)
	if !ok {
		return
	}
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	height := float64(o.sim.Size().H * scale)
	for _, col := range provider.Boundaries() {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(1, height)
		op.GeoM.Translate(float64(col*scale), 0)
		op.ColorScale.Scale(1, 0.35, 0.2, 0.6)
		screen.DrawImage(o.pixel, op)
	}
}
