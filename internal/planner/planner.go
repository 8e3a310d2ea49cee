package planner

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/corpstory/starmap/internal/activity"
	"github.com/corpstory/starmap/internal/config"
	"github.com/corpstory/starmap/internal/monitoring"
	"github.com/corpstory/starmap/internal/timeutil"
	"github.com/corpstory/starmap/internal/universe"
)

// Plan is the finished precompute for one run. Days, Rough and Moved are
// index-aligned, one element per calendar day.
type Plan struct {
	RunID        uuid.UUID
	Surface      Surface
	FramesPerDay int
	Bounds       universe.Box
	Days         []Viewport
	Rough        []RoughPosition
	Moved        []universe.Box
	Activations  []Activation
	Magnifier    []MagnifierEntry
	// Dynamic is false when the run uses the static full-universe view.
	Dynamic bool
}

// Interpolator returns the frame interpolator over the plan's days.
func (p *Plan) Interpolator() *Interpolator {
	return NewInterpolator(p.Days, p.FramesPerDay, p.Surface)
}

// FirstDay returns the first planned day.
func (p *Plan) FirstDay() timeutil.Day {
	if len(p.Days) == 0 {
		return 0
	}
	return p.Days[0].Day
}

// LastDay returns the last planned day.
func (p *Plan) LastDay() timeutil.Day {
	if len(p.Days) == 0 {
		return 0
	}
	return p.Days[len(p.Days)-1].Day
}

// Planner runs the viewport pipeline for one catalog and configuration.
type Planner struct {
	cfg *config.Config
	cat *universe.Catalog
}

// New returns a planner. A nil cfg uses the defaults.
func New(cfg *config.Config, cat *universe.Catalog) *Planner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Planner{cfg: cfg, cat: cat}
}

type window struct {
	start, end       timeutil.Day
	hasStart, hasEnd bool
}

// Plan computes the viewport for every day of the run. Events need not be
// sorted. The only failure modes are an unusable configuration, an empty
// universe and an internal ordering violation; nothing is returned partially.
func (pl *Planner) Plan(events []activity.Event) (*Plan, error) {
	if err := pl.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("planner config: %w", err)
	}
	bounds := pl.cat.Bounds()
	if bounds.Empty() {
		return nil, ErrEmptyUniverse
	}

	var w window
	var err error
	if w.start, w.hasStart, err = pl.cfg.GetStartDay(); err != nil {
		return nil, err
	}
	if w.end, w.hasEnd, err = pl.cfg.GetEndDay(); err != nil {
		return nil, err
	}

	extent := math.Max(bounds.Width(), bounds.Height())
	surface := Surface{Width: pl.cfg.GetSurfaceWidth(), Height: pl.cfg.GetSurfaceHeight()}
	corrector := NewAspectCorrector(bounds, surface.Aspect(),
		pl.cfg.GetMarginFraction()*extent, pl.cfg.GetMinSpanFraction()*extent)

	plan := &Plan{
		RunID:        uuid.New(),
		Surface:      surface,
		FramesPerDay: pl.cfg.GetFramesPerDay(),
		Bounds:       bounds,
	}

	if !pl.cfg.GetEnabled() {
		pl.static(plan, corrector, w, events)
		monitoring.Logf("[Planner] run=%s bypassed days=%d", plan.RunID, len(plan.Days))
		return plan, nil
	}

	freeze := pl.cfg.GetFreezeDays()
	entries := BuildMagnifier(events, pl.cat)
	if len(entries) == 0 {
		pl.static(plan, corrector, w, events)
		monitoring.Logf("[Planner] run=%s no resolvable activity, static days=%d", plan.RunID, len(plan.Days))
		return plan, nil
	}

	first, last := entries[0].Day, entries[len(entries)-1].Day
	roughStart := first
	if w.hasStart && w.start < first {
		roughStart = w.start
	}
	rough, err := BuildRough(entries, roughStart, freeze)
	if err != nil {
		return nil, fmt.Errorf("rough positions: %w", err)
	}
	moved := Smooth(rough, freeze, pl.cfg.GetHorizonDays())

	days := make([]Viewport, len(rough))
	for i, pos := range rough {
		days[i] = corrector.Correct(pos.Day, moved[i])
	}

	// Trim to the requested window. An end past the last entry holds the
	// final viewport.
	lo, hi := 0, len(days)
	if w.hasStart && w.start > roughStart {
		lo = clampInt(w.start.Sub(roughStart), 0, len(days))
	}
	if w.hasEnd && w.end < last {
		hi = clampInt(w.end.Sub(roughStart)+1, lo, len(days))
	}
	days, rough, moved = days[lo:hi], rough[lo:hi], moved[lo:hi]
	if w.hasEnd && w.end > last && len(days) > 0 {
		tailV, tailR, tailM := days[len(days)-1], rough[len(rough)-1], moved[len(moved)-1]
		for d := last.AddDays(1); d <= w.end; d = d.AddDays(1) {
			tailV.Day = d
			tailR = prolong(tailR, d)
			days = append(days, tailV)
			rough = append(rough, tailR)
			moved = append(moved, tailM)
		}
	}
	if len(days) == 0 {
		pl.static(plan, corrector, w, events)
		monitoring.Logf("[Planner] run=%s window outside activity, static days=%d", plan.RunID, len(plan.Days))
		return plan, nil
	}

	plan.Days, plan.Rough, plan.Moved = days, rough, moved
	plan.Magnifier = entries
	plan.Dynamic = true
	for _, a := range DetectActivations(entries, pl.cat, freeze) {
		if a.Day >= plan.FirstDay() && a.Day <= plan.LastDay() {
			plan.Activations = append(plan.Activations, a)
		}
	}

	monitoring.Logf("[Planner] run=%s planned days=%d first=%s last=%s activations=%d",
		plan.RunID, len(plan.Days), plan.FirstDay(), plan.LastDay(), len(plan.Activations))
	return plan, nil
}

// static fills plan with the full-universe viewport over the run window.
// Without a configured window the span of the events is used, and without
// events a single day.
func (pl *Planner) static(plan *Plan, c AspectCorrector, w window, events []activity.Event) {
	start, end, ok := eventSpan(events)
	if w.hasStart {
		start = w.start
	}
	if w.hasEnd {
		end = w.end
	}
	if !ok && !w.hasEnd {
		end = start
	}
	if !ok && !w.hasStart {
		start = end
	}
	if end < start {
		end = start
	}

	plan.Dynamic = false
	plan.Days = plan.Days[:0]
	plan.Rough, plan.Moved, plan.Activations, plan.Magnifier = nil, nil, nil, nil
	for d := start; d <= end; d = d.AddDays(1) {
		plan.Days = append(plan.Days, c.Full(d))
	}
}

func eventSpan(events []activity.Event) (first, last timeutil.Day, ok bool) {
	for i, ev := range events {
		d := ev.Day()
		if i == 0 || d < first {
			first = d
		}
		if i == 0 || d > last {
			last = d
		}
	}
	return first, last, len(events) > 0
}
