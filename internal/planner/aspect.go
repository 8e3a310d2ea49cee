package planner

import (
	"github.com/corpstory/starmap/internal/timeutil"
	"github.com/corpstory/starmap/internal/universe"
)

// fallbackMinSpan floors degenerate boxes when no usable minimum is given.
const fallbackMinSpan = 1.0

// AspectCorrector turns a box into a viewport of the render surface's aspect
// ratio that stays inside Outer.
type AspectCorrector struct {
	Aspect  float64      // width / height
	Outer   universe.Box // the viewport is translated to stay inside this
	MinSpan float64      // minimum width and height before ratio correction
	Margin  float64      // padding added on every side
}

// NewAspectCorrector builds a corrector whose outer bound is the full
// universe view: bounds padded by margin and grown to the aspect ratio.
// Every corrected box from inside bounds fits in it.
func NewAspectCorrector(bounds universe.Box, aspect, margin, minSpan float64) AspectCorrector {
	c := AspectCorrector{Aspect: aspect, MinSpan: minSpan, Margin: margin}
	full := c.fit(bounds.Grow(margin, margin))
	c.Outer = full.Box()
	return c
}

// Full returns the static full-universe viewport for day.
func (c AspectCorrector) Full(day timeutil.Day) Viewport {
	v := c.fit(c.Outer)
	v.Day = day
	return v
}

// Correct returns the viewport for box on day. The box is padded, floored
// to MinSpan, grown (never shrunk) to the aspect ratio, then translated
// inward by any overflow past Outer. A dimension larger than Outer is
// centred on it instead.
func (c AspectCorrector) Correct(day timeutil.Day, box universe.Box) Viewport {
	v := c.fit(box.Grow(c.Margin, c.Margin))
	v.Day = day
	if !c.Outer.Empty() {
		v.CenterX = clampCenter(v.CenterX, v.Width, c.Outer.MinX, c.Outer.MaxX)
		v.CenterZ = clampCenter(v.CenterZ, v.Height, c.Outer.MinZ, c.Outer.MaxZ)
	}
	return v
}

func (c AspectCorrector) fit(box universe.Box) Viewport {
	minSpan := c.MinSpan
	if minSpan <= 0 {
		minSpan = fallbackMinSpan
	}
	cx, cz := box.Center()
	w, h := box.Width(), box.Height()
	if w < minSpan {
		w = minSpan
	}
	if h < minSpan {
		h = minSpan
	}
	if w/h < c.Aspect {
		w = h * c.Aspect
	} else {
		h = w / c.Aspect
	}
	return Viewport{CenterX: cx, CenterZ: cz, Width: w, Height: h}
}

func clampCenter(center, size, lo, hi float64) float64 {
	if size >= hi-lo {
		return lo + (hi-lo)/2
	}
	if center-size/2 < lo {
		return lo + size/2
	}
	if center+size/2 > hi {
		return hi - size/2
	}
	return center
}

// Correct is the one-shot form of AspectCorrector.Correct for callers that
// already know the outer extent. The returned viewport carries no day.
func Correct(box universe.Box, aspect float64, outer universe.Box, minSpan, margin float64) Viewport {
	c := AspectCorrector{Aspect: aspect, Outer: outer, MinSpan: minSpan, Margin: margin}
	return c.Correct(0, box)
}
