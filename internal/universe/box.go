// Package universe holds the static map: system positions, the regions that
// group them, and the single historical patch that reshapes regions at a
// cutover day. Everything here is immutable once loaded.
package universe

import "math"

// Point is a position in universe coordinates. Only X and Z are projected
// onto the map; Y is carried for completeness.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Box is an axis-aligned rectangle on the X/Z plane. The zero Box is a
// single point at the origin; use EmptyBox for "nothing yet".
type Box struct {
	MinX float64 `json:"min_x"`
	MinZ float64 `json:"min_z"`
	MaxX float64 `json:"max_x"`
	MaxZ float64 `json:"max_z"`
}

// EmptyBox returns an inverted box that any Union replaces entirely.
func EmptyBox() Box {
	return Box{
		MinX: math.Inf(1),
		MinZ: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxZ: math.Inf(-1),
	}
}

// BoxAround returns the degenerate box covering a single point.
func BoxAround(p Point) Box {
	return Box{MinX: p.X, MinZ: p.Z, MaxX: p.X, MaxZ: p.Z}
}

// Empty reports whether the box covers nothing (inverted on either axis).
func (b Box) Empty() bool {
	return b.MinX > b.MaxX || b.MinZ > b.MaxZ
}

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	if o.Empty() {
		return b
	}
	if b.Empty() {
		return o
	}
	return Box{
		MinX: math.Min(b.MinX, o.MinX),
		MinZ: math.Min(b.MinZ, o.MinZ),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxZ: math.Max(b.MaxZ, o.MaxZ),
	}
}

func (b Box) Width() float64  { return b.MaxX - b.MinX }
func (b Box) Height() float64 { return b.MaxZ - b.MinZ }

// Center returns the midpoint of the box.
func (b Box) Center() (x, z float64) {
	return b.MinX + b.Width()/2, b.MinZ + b.Height()/2
}

// Contains reports whether o lies entirely within b, allowing eps of slack
// on every side for accumulated floating-point error.
func (b Box) Contains(o Box, eps float64) bool {
	return o.MinX >= b.MinX-eps && o.MaxX <= b.MaxX+eps &&
		o.MinZ >= b.MinZ-eps && o.MaxZ <= b.MaxZ+eps
}

// Grow returns b padded by dx on the left and right and dz on the top and
// bottom.
func (b Box) Grow(dx, dz float64) Box {
	return Box{MinX: b.MinX - dx, MinZ: b.MinZ - dz, MaxX: b.MaxX + dx, MaxZ: b.MaxZ + dz}
}
