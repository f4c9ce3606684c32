package view

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/weld.report/internal/colormap"
	"github.com/banshee-data/weld.report/internal/metrics"
)

// Default PNG export size.
const (
	DefaultPNGWidth  = 14 * vg.Inch
	DefaultPNGHeight = 6 * vg.Inch
)

// sampleTicker labels the X axis with the frame's sample ticks as "i/N".
type sampleTicker struct {
	ticks []float64
	total int
}

// Ticks implements plot.Ticker.
func (t sampleTicker) Ticks(min, max float64) []plot.Tick {
	out := make([]plot.Tick, 0, len(t.ticks))
	for _, v := range t.ticks {
		if v < min || v > max {
			continue
		}
		out = append(out, plot.Tick{Value: v, Label: metrics.FormatSamplePos(v, t.total)})
	}
	return out
}

// ChartPlot builds the static line chart for f.
func ChartPlot(f ChartFrame, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Sample (i/N)"
	p.Y.Label.Text = "Value"
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if f.Empty {
		p.Title.Text = title + " (no metrics to display)"
		return p, nil
	}

	p.X.Min, p.X.Max = 0, 1
	p.X.Tick.Marker = sampleTicker{ticks: f.Ticks, total: f.Total}

	for _, s := range f.Series {
		pts := make(plotter.XYs, 0, len(f.Rows))
		for _, r := range f.Rows {
			if v, ok := r.Values[s.Key]; ok {
				pts = append(pts, plotter.XY{X: r.SamplePos, Y: v})
			}
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Key, err)
		}
		line.Color = hexColor(s.Color)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s (%s)", s.Label, s.Unit), line)
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// FootprintPlot builds a plan view of the scene: points by their machine
// X/Y position, colored as in the frame, with the display footprint
// outlined.
func FootprintPlot(f SceneFrame, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	if len(f.Points) > 0 {
		pts := make(plotter.XYs, len(f.Points))
		for i, pt := range f.Points {
			// Render Z is machine Y.
			pts[i] = plotter.XY{X: pt.X, Y: pt.Z}
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: hexColor(f.Colors[i]), Radius: vg.Points(1.5), Shape: draw.CircleGlyph{}}
		}
		p.Add(sc)
	}

	fp := f.Footprint
	hx, hy := fp.Size.X/2, fp.Size.Y/2
	outline, err := plotter.NewLine(plotter.XYs{
		{X: fp.Center.X - hx, Y: fp.Center.Y - hy},
		{X: fp.Center.X + hx, Y: fp.Center.Y - hy},
		{X: fp.Center.X + hx, Y: fp.Center.Y + hy},
		{X: fp.Center.X - hx, Y: fp.Center.Y + hy},
		{X: fp.Center.X - hx, Y: fp.Center.Y - hy},
	})
	if err != nil {
		return nil, err
	}
	outline.Color = color.Gray{Y: 0x55}
	outline.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(outline)
	p.Add(plotter.NewGrid())
	return p, nil
}

// WritePNG renders p as a PNG of the given size.
func WritePNG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// RenderChartPNG writes f as a PNG line chart at the default size.
func RenderChartPNG(w io.Writer, f ChartFrame, title string) error {
	p, err := ChartPlot(f, title)
	if err != nil {
		return err
	}
	return WritePNG(w, p, DefaultPNGWidth, DefaultPNGHeight)
}

// RenderFootprintPNG writes the plan view of f as a square PNG.
func RenderFootprintPNG(w io.Writer, f SceneFrame, title string) error {
	p, err := FootprintPlot(f, title)
	if err != nil {
		return err
	}
	return WritePNG(w, p, 8*vg.Inch, 8*vg.Inch)
}

func hexColor(hex string) color.Color {
	c, err := colormap.ParseHex(hex)
	if err != nil {
		return color.Black
	}
	return c
}
