package plot

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/linkeddata/internal/table"
)

// ErrTooFewColumns is returned when the frame has fewer than two numeric columns.
var ErrTooFewColumns = errors.New("scatter plot needs at least two numeric columns")

// viridis anchors, sampled evenly from the matplotlib colormap.
var viridis = []color.RGBA{
	{R: 0x44, G: 0x01, B: 0x54, A: 0xff},
	{R: 0x46, G: 0x33, B: 0x7e, A: 0xff},
	{R: 0x36, G: 0x5c, B: 0x8d, A: 0xff},
	{R: 0x27, G: 0x7f, B: 0x8e, A: 0xff},
	{R: 0x1f, G: 0xa1, B: 0x87, A: 0xff},
	{R: 0x4a, G: 0xc1, B: 0x6d, A: 0xff},
	{R: 0x9f, G: 0xda, B: 0x3a, A: 0xff},
	{R: 0xfd, G: 0xe7, B: 0x25, A: 0xff},
}

// Palette returns k colors spread across the viridis range.
func Palette(k int) []color.RGBA {
	out := make([]color.RGBA, k)
	for i := range out {
		idx := 0
		if k > 1 {
			idx = i * (len(viridis) - 1) / (k - 1)
		}
		out[i] = viridis[idx]
	}
	return out
}

// Options controls the rendered figure.
type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	Format string // png, svg, pdf...
}

// DefaultOptions matches an 8x6 inch PNG figure.
func DefaultOptions() Options {
	return Options{
		Title:  "Patrones de comportamiento (K-Means)",
		Width:  8 * vg.Inch,
		Height: 6 * vg.Inch,
		Format: "png",
	}
}

// Scatter plots the first two numeric columns of f against each other,
// coloring points by the integer value of labelColumn. The encoded image is
// returned; nothing is written to disk.
func Scatter(f *table.Frame, labelColumn string, opt Options) ([]byte, error) {
	nums := f.NumericColumns()
	if len(nums) < 2 {
		return nil, ErrTooFewColumns
	}
	labels, ok := f.Column(labelColumn)
	if !ok {
		return nil, fmt.Errorf("label column %q not found", labelColumn)
	}
	xcol, ycol := nums[0], nums[1]

	groups := map[int]plotter.XYs{}
	maxLabel := -1
	for i := 0; i < f.Rows(); i++ {
		x, y, l := xcol.Cells[i], ycol.Cells[i], labels.Cells[i]
		if !x.Valid || !y.Valid || !l.Valid {
			continue
		}
		k := int(l.Num)
		groups[k] = append(groups[k], plotter.XY{X: x.Num, Y: y.Num})
		if k > maxLabel {
			maxLabel = k
		}
	}

	p := plot.New()
	p.Title.Text = opt.Title
	p.X.Label.Text = xcol.Name
	p.Y.Label.Text = ycol.Name
	p.Legend.Top = true
	p.Legend.Add(labelColumn)

	colors := Palette(maxLabel + 1)
	for k := 0; k <= maxLabel; k++ {
		pts, ok := groups[k]
		if !ok {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("scatter for cluster %d: %w", k, err)
		}
		s.GlyphStyle.Color = colors[k]
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("%d", k), s)
	}

	w, h := opt.Width, opt.Height
	if w <= 0 || h <= 0 {
		w, h = 8*vg.Inch, 6*vg.Inch
	}
	format := opt.Format
	if format == "" {
		format = "png"
	}
	wt, err := p.WriterTo(w, h, format)
	if err != nil {
		return nil, fmt.Errorf("plot writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render plot: %w", err)
	}
	return buf.Bytes(), nil
}
