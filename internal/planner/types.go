// Package planner decides where the map camera looks on every day and every
// sub-day frame. It is a staged batch pipeline: each stage takes the
// previous stage's finished slice and returns a new one.
//
//	events -> Magnifier -> Rough -> Smooth -> Correct -> Interpolator
package planner

import (
	"errors"

	"github.com/corpstory/starmap/internal/timeutil"
	"github.com/corpstory/starmap/internal/universe"
)

var (
	// ErrMagnifierOrder is returned when magnifier days are not strictly
	// increasing. It aborts the whole precompute.
	ErrMagnifierOrder = errors.New("magnifier days out of order")

	// ErrEmptyUniverse is returned when the catalog has no systems to frame.
	ErrEmptyUniverse = errors.New("universe has no systems")
)

// Side identifies one of the four boundaries of a box.
type Side int

const (
	SideMinX Side = iota
	SideMaxX
	SideMinZ
	SideMaxZ
)

var allSides = [4]Side{SideMinX, SideMaxX, SideMinZ, SideMaxZ}

func (s Side) String() string {
	switch s {
	case SideMinX:
		return "min_x"
	case SideMaxX:
		return "max_x"
	case SideMinZ:
		return "min_z"
	case SideMaxZ:
		return "max_z"
	}
	return "unknown"
}

// Of returns the side's coordinate in b.
func (s Side) Of(b universe.Box) float64 {
	switch s {
	case SideMinX:
		return b.MinX
	case SideMaxX:
		return b.MaxX
	case SideMinZ:
		return b.MinZ
	default:
		return b.MaxZ
	}
}

func (s Side) set(b *universe.Box, v float64) {
	switch s {
	case SideMinX:
		b.MinX = v
	case SideMaxX:
		b.MaxX = v
	case SideMinZ:
		b.MinZ = v
	default:
		b.MaxZ = v
	}
}

// outward maps a coordinate so that larger always means wider. Min sides
// widen towards -inf, max sides towards +inf; the mapping is its own inverse.
func (s Side) outward(v float64) float64 {
	if s == SideMinX || s == SideMinZ {
		return -v
	}
	return v
}

// MagnifierEntry is the union box of every region touched on one day.
type MagnifierEntry struct {
	Day     timeutil.Day
	Box     universe.Box
	Regions []int64
}

// RoughPosition is the day-level box before smoothing. Age holds, per side,
// the days since that side last took new data: an entry reaching its extreme,
// or a release from a stale extreme. Released marks the sides that were
// tightened from a stale extreme on this day. Fresh marks days that carry a
// magnifier entry.
type RoughPosition struct {
	Day      timeutil.Day
	Box      universe.Box
	Age      [4]int
	Released [4]bool
	Fresh    bool
}

// Viewport is an aspect-corrected camera rectangle for one day.
type Viewport struct {
	Day     timeutil.Day
	CenterX float64
	CenterZ float64
	Width   float64
	Height  float64
}

// Box returns the rectangle the viewport covers.
func (v Viewport) Box() universe.Box {
	return universe.Box{
		MinX: v.CenterX - v.Width/2,
		MinZ: v.CenterZ - v.Height/2,
		MaxX: v.CenterX + v.Width/2,
		MaxZ: v.CenterZ + v.Height/2,
	}
}

// Surface is the render target size in pixels.
type Surface struct {
	Width  int
	Height int
}

// Aspect returns width/height.
func (s Surface) Aspect() float64 {
	return float64(s.Width) / float64(s.Height)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
