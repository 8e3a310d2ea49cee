// Package render draws the animated star map: one PNG per camera frame with
// the systems in view, recent activity fading out, a rolling event list and
// the date caption.
package render

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/corpstory/starmap/internal/activity"
	"github.com/corpstory/starmap/internal/fsutil"
	"github.com/corpstory/starmap/internal/monitoring"
	"github.com/corpstory/starmap/internal/planner"
	"github.com/corpstory/starmap/internal/timeutil"
	"github.com/corpstory/starmap/internal/universe"
)

// ErrPlanMismatch is returned when a plan was computed for a different
// surface or frame rate than the renderer draws.
var ErrPlanMismatch = errors.New("plan does not match renderer options")

const (
	dpi = 96

	// Star shading bounds on the gray scale.
	shadeMin = 50
	shadeMax = 255

	starRadiusPx  = 1.5
	eventRadiusPx = 6

	defaultMaxLabels = 50
	progressEvery    = 500
)

var (
	captionColor = color.NRGBA{R: 140, G: 140, B: 140, A: 255}

	categoryColors = map[activity.Category]color.NRGBA{
		activity.CategoryCombat:   {R: 255, G: 60, B: 60, A: 255},
		activity.CategoryMember:   {R: 0, G: 128, B: 0, A: 255},
		activity.CategoryIndustry: {R: 230, G: 180, B: 60, A: 255},
		activity.CategoryTrade:    {R: 80, G: 170, B: 255, A: 255},
		activity.CategoryStation:  {R: 190, G: 120, B: 255, A: 255},
	}
	defaultEventColor = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
)

// Options controls frame output.
type Options struct {
	Surface      planner.Surface
	FadeDays     int // days an event stays visible; below one means one
	MaxLabels    int // rows in the event list; zero means 50
	Workers      int // concurrent frame encoders; zero means GOMAXPROCS
	FramesPerDay int // must match the plan being rendered

	// Clock times RenderAll for the progress log; nil means the wall clock.
	Clock timeutil.Clock
}

type star struct {
	x, z  float64
	shade color.Gray
}

type mark struct {
	day    timeutil.Day
	x, z   float64
	placed bool
	label  string
	color  color.NRGBA
}

// Renderer draws frames for one catalog and event log. It is read-only after
// New and safe for concurrent use.
type Renderer struct {
	fs    fsutil.FileSystem
	opts  Options
	stars []star
	marks []mark // ordered by day

	width, height vg.Length
	labelFont     font.Font
}

// New prepares a renderer. Records need not be sorted; events in systems the
// catalog does not know are listed but not placed on the map.
func New(fsys fsutil.FileSystem, cat *universe.Catalog, records []activity.Record, opts Options) (*Renderer, error) {
	if opts.Surface.Width <= 0 || opts.Surface.Height <= 0 {
		return nil, fmt.Errorf("invalid surface %dx%d", opts.Surface.Width, opts.Surface.Height)
	}
	if opts.FadeDays < 1 {
		opts.FadeDays = 1
	}
	if opts.MaxLabels <= 0 {
		opts.MaxLabels = defaultMaxLabels
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.FramesPerDay < 1 {
		opts.FramesPerDay = 1
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}

	r := &Renderer{
		fs:     fsys,
		opts:   opts,
		stars:  shadeStars(cat.Systems()),
		width:  pixels(float64(opts.Surface.Width)),
		height: pixels(float64(opts.Surface.Height)),
	}
	// Size the list font so MaxLabels rows fill the frame height.
	r.labelFont = font.From(plot.DefaultFont, r.height/vg.Length(opts.MaxLabels)*0.8)

	sorted := make([]activity.Record, len(records))
	copy(sorted, records)
	activity.SortByDay(sorted)

	unplaced := 0
	r.marks = make([]mark, 0, len(sorted))
	for _, rec := range sorted {
		m := mark{day: rec.When, label: rec.Label, color: defaultEventColor}
		if c, ok := categoryColors[rec.Category]; ok {
			m.color = c
		}
		if id, ok := rec.SystemID(); ok {
			if sys, ok := cat.System(id); ok {
				m.x, m.z, m.placed = sys.Pos.X, sys.Pos.Z, true
			} else {
				unplaced++
			}
		}
		r.marks = append(r.marks, m)
	}
	if unplaced > 0 {
		monitoring.Logf("[Render] %d events reference unknown systems and are not placed", unplaced)
	}
	return r, nil
}

// shadeStars maps sqrt(luminosity) linearly onto [shadeMin, shadeMax].
func shadeStars(systems []*universe.System) []star {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range systems {
		l := math.Sqrt(math.Max(s.Luminosity, 0))
		lo = math.Min(lo, l)
		hi = math.Max(hi, l)
	}
	scale := 0.0
	if hi > lo {
		scale = (shadeMax - shadeMin) / (hi - lo)
	}

	out := make([]star, len(systems))
	for i, s := range systems {
		shade := float64(shadeMax)
		if scale > 0 {
			shade = shadeMin + (math.Sqrt(math.Max(s.Luminosity, 0))-lo)*scale
		}
		out[i] = star{x: s.Pos.X, z: s.Pos.Z, shade: color.Gray{Y: uint8(math.Round(shade))}}
	}
	return out
}

// pixels converts a surface pixel length to vg units at the output DPI.
func pixels(px float64) vg.Length {
	return vg.Length(px) * vg.Inch / dpi
}

// fadeAlpha is the opacity of an event age days old at sub-frame sub.
func fadeAlpha(age, sub, framesPerDay, fadeDays int) float64 {
	if age < 0 {
		return 0
	}
	a := 1 - (float64(age)+float64(sub)/float64(framesPerDay))/float64(fadeDays)
	return math.Max(a, 0)
}

// visible returns the marks whose day lies in (day-FadeDays, day].
func (r *Renderer) visible(day timeutil.Day) []mark {
	from := day.AddDays(-r.opts.FadeDays + 1)
	lo := sort.Search(len(r.marks), func(i int) bool { return r.marks[i].day >= from })
	hi := sort.Search(len(r.marks), func(i int) bool { return r.marks[i].day > day })
	return r.marks[lo:hi]
}

// Draw paints frame f onto a fresh canvas.
func (r *Renderer) Draw(f planner.CameraFrame) *vgimg.Canvas {
	c := vgimg.NewWith(
		vgimg.UseWH(r.width, r.height),
		vgimg.UseDPI(dpi),
		vgimg.UseBackgroundColor(color.Black),
	)
	dc := draw.New(c)
	s := r.opts.Surface

	// Surface pixels have a top-left origin; vg has a bottom-left one.
	at := func(x, z float64) (vg.Point, bool) {
		px, py := f.Project(x, z, s)
		if px < 0 || py < 0 || px > float64(s.Width) || py > float64(s.Height) {
			return vg.Point{}, false
		}
		return vg.Point{X: pixels(px), Y: r.height - pixels(py)}, true
	}

	// Activity halos go underneath so the stars stay visible.
	marks := r.visible(f.Day)
	eventStyle := draw.GlyphStyle{Radius: pixels(eventRadiusPx), Shape: draw.CircleGlyph{}}
	for _, m := range marks {
		if !m.placed {
			continue
		}
		alpha := fadeAlpha(f.Day.Sub(m.day), f.SubFrame, r.opts.FramesPerDay, r.opts.FadeDays)
		pt, ok := at(m.x, m.z)
		if !ok || alpha == 0 {
			continue
		}
		eventStyle.Color = withAlpha(m.color, alpha)
		dc.DrawGlyph(eventStyle, pt)
	}

	starStyle := draw.GlyphStyle{Radius: pixels(starRadiusPx), Shape: draw.CircleGlyph{}}
	for _, st := range r.stars {
		pt, ok := at(st.x, st.z)
		if !ok {
			continue
		}
		starStyle.Color = st.shade
		dc.DrawGlyph(starStyle, pt)
	}

	r.drawList(dc, f, marks)

	dc.FillText(text.Style{
		Color:   captionColor,
		Font:    r.labelFont,
		XAlign:  text.XLeft,
		YAlign:  text.YTop,
		Handler: plot.DefaultTextHandler,
	}, vg.Point{X: pixels(10), Y: r.height - pixels(10)}, f.Day.String())

	return c
}

// drawList writes the newest labelled events bottom-up along the right side.
func (r *Renderer) drawList(dc draw.Canvas, f planner.CameraFrame, marks []mark) {
	row := 0
	rowHeight := r.height / vg.Length(r.opts.MaxLabels)
	x := r.width * 3 / 4
	for i := len(marks) - 1; i >= 0 && row < r.opts.MaxLabels; i-- {
		m := marks[i]
		if m.label == "" {
			continue
		}
		alpha := fadeAlpha(f.Day.Sub(m.day), f.SubFrame, r.opts.FramesPerDay, r.opts.FadeDays)
		if alpha == 0 {
			continue
		}
		dc.FillText(text.Style{
			Color:   withAlpha(m.color, alpha),
			Font:    r.labelFont,
			XAlign:  text.XLeft,
			YAlign:  text.YBottom,
			Handler: plot.DefaultTextHandler,
		}, vg.Point{X: x, Y: rowHeight * vg.Length(row)}, m.label)
		row++
	}
}

func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * a))
	return c
}

// WriteFrame encodes frame f as PNG to w.
func (r *Renderer) WriteFrame(w io.Writer, f planner.CameraFrame) error {
	if _, err := (vgimg.PngCanvas{Canvas: r.Draw(f)}).WriteTo(w); err != nil {
		return fmt.Errorf("encode frame %d/%d: %w", f.DayIndex, f.SubFrame, err)
	}
	return nil
}

// RenderFrame writes frame f as a PNG file at path.
func (r *Renderer) RenderFrame(f planner.CameraFrame, path string) error {
	return fsutil.WriteWith(r.fs, path, func(w io.Writer) error {
		return r.WriteFrame(w, f)
	})
}

// FrameName is the file name of the n-th frame.
func FrameName(n int) string {
	return fmt.Sprintf("frame_%06d.png", n)
}

// RenderAll writes every frame of p into dir and returns the number written.
// Frames are encoded concurrently; the first failure cancels the rest.
func (r *Renderer) RenderAll(ctx context.Context, p *planner.Plan, dir string) (int, error) {
	if p.Surface != r.opts.Surface || p.FramesPerDay != r.opts.FramesPerDay {
		return 0, fmt.Errorf("%w: plan %dx%d@%d, renderer %dx%d@%d", ErrPlanMismatch,
			p.Surface.Width, p.Surface.Height, p.FramesPerDay,
			r.opts.Surface.Width, r.opts.Surface.Height, r.opts.FramesPerDay)
	}
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	ip := p.Interpolator()
	total := ip.TotalFrames()
	monitoring.Logf("[Render] run=%s writing %d frames to %s workers=%d", p.RunID, total, dir, r.opts.Workers)

	started := r.opts.Clock.Now()
	var written atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for c := ip.Cursor(); c.Valid(); c = c.Next() {
		if gctx.Err() != nil {
			break
		}
		c := c
		g.Go(func() error {
			if err := r.RenderFrame(c.Frame(), filepath.Join(dir, FrameName(c.Index()))); err != nil {
				return err
			}
			if n := written.Add(1); n%progressEvery == 0 {
				monitoring.Logf("[Render] run=%s progress %d/%d", p.RunID, n, total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(written.Load()), err
	}
	if err := ctx.Err(); err != nil {
		return int(written.Load()), err
	}

	monitoring.Logf("[Render] run=%s done frames=%d elapsed=%s", p.RunID, written.Load(), r.opts.Clock.Since(started))
	return int(written.Load()), nil
}
