package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/corpstory/starmap/internal/planner"
)

// AssetsHost is where the rendered HTML loads echarts from. Empty uses the
// go-echarts default CDN.
var AssetsHost = ""

func initOpts(title string) opts.Initialization {
	return opts.Initialization{PageTitle: title, Width: "100%", Height: "600px", AssetsHost: AssetsHost}
}

// TimelineChart builds the per-day camera chart: centre X, centre Z and
// width, with region activations as mark points on the centre X series.
func TimelineChart(p *planner.Plan) *charts.Line {
	days := make([]string, len(p.Days))
	cx := make([]opts.LineData, len(p.Days))
	cz := make([]opts.LineData, len(p.Days))
	width := make([]opts.LineData, len(p.Days))
	index := make(map[string]int, len(p.Days))
	for i, v := range p.Days {
		days[i] = v.Day.String()
		index[days[i]] = i
		cx[i] = opts.LineData{Value: v.CenterX}
		cz[i] = opts.LineData{Value: v.CenterZ}
		width[i] = opts.LineData{Value: v.Width}
	}

	marks := make([]opts.MarkPointNameCoordItem, 0, len(p.Activations))
	for _, a := range p.Activations {
		i, ok := index[a.Day.String()]
		if !ok {
			continue
		}
		name := a.RegionName
		if name == "" {
			name = fmt.Sprintf("region %d", a.RegionID)
		}
		marks = append(marks, opts.MarkPointNameCoordItem{
			Name:       name,
			Coordinate: []interface{}{days[i], p.Days[i].CenterX},
		})
	}

	mode := "dynamic"
	if !p.Dynamic {
		mode = "static"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts("Camera timeline")),
		charts.WithTitleOpts(opts.Title{
			Title:    "Camera timeline",
			Subtitle: fmt.Sprintf("run=%s days=%d frames_per_day=%d %s", p.RunID, len(p.Days), p.FramesPerDay, mode),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	line.SetXAxis(days).
		AddSeries("center_x", cx,
			charts.WithMarkPointNameCoordItemOpts(marks...),
			charts.WithMarkPointStyleOpts(opts.MarkPointStyle{Label: &opts.Label{Show: opts.Bool(true), Formatter: "{b}"}}),
		).
		AddSeries("center_z", cz).
		AddSeries("width", width)
	return line
}

// PathChart builds a scatter of the daily camera centres in universe
// coordinates.
func PathChart(p *planner.Plan) *charts.Scatter {
	data := make([]opts.ScatterData, len(p.Days))
	for i, v := range p.Days {
		data[i] = opts.ScatterData{Value: []interface{}{v.CenterX, v.CenterZ, v.Day.String()}}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts("Camera path")),
		charts.WithTitleOpts(opts.Title{Title: "Camera path", Subtitle: "daily viewport centre"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X", Min: p.Bounds.MinX, Max: p.Bounds.MaxX}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Z", Min: p.Bounds.MinZ, Max: p.Bounds.MaxZ}),
	)
	scatter.AddSeries("centre", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	return scatter
}

// WriteTimeline renders the timeline and path charts as one HTML page.
func WriteTimeline(w io.Writer, p *planner.Plan) error {
	page := components.NewPage()
	if AssetsHost != "" {
		page.SetAssetsHost(AssetsHost)
	}
	page.AddCharts(TimelineChart(p), PathChart(p))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render timeline: %w", err)
	}
	return nil
}
