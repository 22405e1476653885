// Package viz renders the diagnostic figures of the course pipelines as
// PNG files: traces, densities, interval plots, fitted curves with credible
// bands, and posterior-predictive overlays. Everything is composed from
// gonum/plot primitives.
package viz

import (
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/anhnguyendepocen/bayes-course/errors"
)

// Style carries the shared look of every figure.
type Style struct {
	// Palette colors series by index, wrapping around.
	Palette []color.Color
	// DataColor marks observed data points.
	DataColor color.Color
	// BandColor fills credible bands; keep it translucent.
	BandColor color.Color
	// FaintColor draws replicate and spaghetti curves.
	FaintColor color.Color
	// LineWidth is the stroke width of primary lines.
	LineWidth vg.Length
	// PointRadius is the glyph radius of scatter points.
	PointRadius vg.Length
}

// DefaultStyle returns the house palette.
func DefaultStyle() Style {
	return Style{
		Palette: []color.Color{
			color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
			color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
			color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
			color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
			color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
			color.RGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
		},
		DataColor:   color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
		BandColor:   color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0x40},
		FaintColor:  color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0x50},
		LineWidth:   vg.Points(1.5),
		PointRadius: vg.Points(2),
	}
}

func (s Style) color(i int) color.Color {
	if len(s.Palette) == 0 {
		return color.Black
	}
	return s.Palette[i%len(s.Palette)]
}

// SavePNG writes a plot as a PNG with the given size in inches, creating
// parent directories as needed.
func SavePNG(p *plot.Plot, w, h float64, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create figure directory for %s", path)
		}
	}
	if err := p.Save(vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save figure %s", path)
	}
	return nil
}
