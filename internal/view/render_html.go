package view

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/spatial/r3"
)

// EChartsAssetsHost is where rendered pages load the echarts scripts from.
var EChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// samplePosFormatter renders axis positions as "idx/total" in the browser,
// matching metrics.FormatSamplePos.
const samplePosFormatter = `function (pos) {
	var total = %d;
	var idx = Math.min(Math.max(Math.round(pos * total), 1), total);
	return idx + '/' + total;
}`

// RenderChartHTML writes an interactive line chart page for f.
func RenderChartHTML(w io.Writer, f ChartFrame, title string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "100%", Height: "640px", AssetsHost: EChartsAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("layer=%d samples=%d", f.LayerNumber, f.Total)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:         "value",
			Name:         "Sample (i/N)",
			NameLocation: "middle",
			NameGap:      30,
			Min:          "dataMin",
			Max:          "dataMax",
			AxisLabel:    &opts.AxisLabel{Formatter: opts.FuncOpts(fmt.Sprintf(samplePosFormatter, f.Total))},
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	for _, s := range f.Series {
		data := make([]opts.LineData, 0, len(f.Rows))
		for _, r := range f.Rows {
			v, ok := r.Values[s.Key]
			if !ok {
				continue
			}
			data = append(data, opts.LineData{Value: []interface{}{r.SamplePos, v}})
		}
		name := fmt.Sprintf("%s (%s)", s.Label, s.Unit)
		line.AddSeries(name, data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color, Width: 2}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
		)
	}

	return renderTo(w, line)
}

// RenderSceneHTML writes an interactive 3D scatter page for f. Points are
// drawn centered on the origin using the frame's offset.
func RenderSceneHTML(w io.Writer, f SceneFrame, title string) error {
	half := f.Bounds.MaxSpan / 2
	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "100%", Height: "720px", AssetsHost: EChartsAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("layer=%d points=%d span=%.3g", f.LayerNumber, len(f.Points), f.Bounds.MaxSpan)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X", Min: -half, Max: half}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Depth", Min: -half, Max: half}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Up", Min: -half, Max: half}),
		charts.WithGrid3DOpts(opts.Grid3D{ViewControl: &opts.ViewControl{AutoRotate: opts.Bool(false)}}),
	)

	data := make([]opts.Chart3DData, len(f.Points))
	for i, p := range f.Points {
		c := r3.Add(p, f.Offset)
		// echarts-gl treats its third axis as up; render Y is up.
		data[i] = opts.Chart3DData{
			Value:     []interface{}{c.X, c.Z, c.Y},
			ItemStyle: &opts.ItemStyle{Color: f.Colors[i]},
		}
	}
	scatter.AddSeries("waypoints", data)

	return renderTo(w, scatter)
}

type renderer interface {
	Render(w io.Writer) error
}

func renderTo(w io.Writer, c renderer) error {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
