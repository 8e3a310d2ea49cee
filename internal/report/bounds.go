// Package report draws diagnostic charts of a finished viewport plan: the
// per-side bound tracks as a PNG and the camera timeline as HTML.
package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/corpstory/starmap/internal/planner"
)

// ErrNoTracks is returned when a plan carries no rough or smoothed tracks,
// as with the static full-universe plan.
var ErrNoTracks = errors.New("plan has no bound tracks")

var sideColors = map[planner.Side]color.Color{
	planner.SideMinX: color.RGBA{R: 31, G: 119, B: 180, A: 255},
	planner.SideMaxX: color.RGBA{R: 255, G: 127, B: 14, A: 255},
	planner.SideMinZ: color.RGBA{R: 44, G: 160, B: 44, A: 255},
	planner.SideMaxZ: color.RGBA{R: 214, G: 39, B: 40, A: 255},
}

// Plot size. Wide enough for a few years of days at a glance.
const (
	plotWidth  = 14 * vg.Inch
	plotHeight = 6 * vg.Inch
)

// BoundsPlot builds the bound-track plot: one dashed line per side for the
// rough track and one solid line per side for the smoothed track, against
// the day index.
func BoundsPlot(p *planner.Plan) (*plot.Plot, error) {
	if !HasTracks(p) {
		return nil, ErrNoTracks
	}

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Camera bounds %s to %s", p.FirstDay(), p.LastDay())
	pl.X.Label.Text = "Day"
	pl.Y.Label.Text = "Universe units"

	for _, s := range []planner.Side{planner.SideMinX, planner.SideMaxX, planner.SideMinZ, planner.SideMaxZ} {
		rough := make(plotter.XYs, len(p.Rough))
		moved := make(plotter.XYs, len(p.Moved))
		for i := range p.Rough {
			rough[i] = plotter.XY{X: float64(i), Y: s.Of(p.Rough[i].Box)}
			moved[i] = plotter.XY{X: float64(i), Y: s.Of(p.Moved[i])}
		}

		roughLine, err := plotter.NewLine(rough)
		if err != nil {
			return nil, fmt.Errorf("rough %s: %w", s, err)
		}
		roughLine.Color = sideColors[s]
		roughLine.Width = vg.Points(0.5)
		roughLine.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}

		movedLine, err := plotter.NewLine(moved)
		if err != nil {
			return nil, fmt.Errorf("moved %s: %w", s, err)
		}
		movedLine.Color = sideColors[s]
		movedLine.Width = vg.Points(1.5)

		pl.Add(roughLine, movedLine)
		pl.Legend.Add(s.String()+" rough", roughLine)
		pl.Legend.Add(s.String(), movedLine)
	}

	pl.Add(plotter.NewGrid())
	pl.Legend.Top = true
	pl.Legend.Left = false
	pl.Legend.XOffs = -10
	pl.Legend.YOffs = -10
	return pl, nil
}

// HasTracks reports whether p carries rough and smoothed tracks to plot.
func HasTracks(p *planner.Plan) bool {
	return len(p.Rough) > 0 && len(p.Rough) == len(p.Moved)
}

// WriteBoundsPlot renders BoundsPlot as PNG to w.
func WriteBoundsPlot(w io.Writer, p *planner.Plan) error {
	pl, err := BoundsPlot(p)
	if err != nil {
		return err
	}
	wt, err := pl.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("bounds plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write bounds plot: %w", err)
	}
	return nil
}
