package planner

import "github.com/corpstory/starmap/internal/timeutil"

// CameraFrame is the camera transform for one output frame. Scale maps
// universe units to surface pixels.
type CameraFrame struct {
	DayIndex int
	SubFrame int
	Day      timeutil.Day
	CenterX  float64
	CenterZ  float64
	Width    float64
	Height   float64
	ScaleX   float64
	ScaleZ   float64
}

// Project maps a universe position to surface pixel coordinates. The origin
// is the top-left corner and larger Z is drawn higher up.
func (f CameraFrame) Project(x, z float64, surface Surface) (px, py float64) {
	px = float64(surface.Width)/2 + (x-f.CenterX)*f.ScaleX
	py = float64(surface.Height)/2 - (z-f.CenterZ)*f.ScaleZ
	return px, py
}

// Interpolator blends consecutive daily viewports into sub-day frames. It
// only reads the viewport slice and is safe for concurrent use.
type Interpolator struct {
	days         []Viewport
	framesPerDay int
	surface      Surface
}

// NewInterpolator returns an interpolator over days. framesPerDay below one
// is treated as one.
func NewInterpolator(days []Viewport, framesPerDay int, surface Surface) *Interpolator {
	if framesPerDay < 1 {
		framesPerDay = 1
	}
	return &Interpolator{days: days, framesPerDay: framesPerDay, surface: surface}
}

// FramesPerDay returns the number of sub-frames per day.
func (ip *Interpolator) FramesPerDay() int { return ip.framesPerDay }

// TotalFrames returns the number of frames covering every planned day.
func (ip *Interpolator) TotalFrames() int { return len(ip.days) * ip.framesPerDay }

// At returns the frame for sub-frame sub of day dayIndex. Sub-frame 0 is
// the day's viewport exactly; later sub-frames move linearly towards the
// next day. Indices outside the plan hold the nearest end viewport and
// report its index. At is pure and may be called in any order.
func (ip *Interpolator) At(dayIndex, sub int) CameraFrame {
	if len(ip.days) == 0 {
		return CameraFrame{DayIndex: dayIndex, SubFrame: sub}
	}
	last := len(ip.days) - 1
	sub = clampInt(sub, 0, ip.framesPerDay-1)
	i := clampInt(dayIndex, 0, last)

	v := ip.days[i]
	if i == dayIndex && i < last && sub > 0 {
		next := ip.days[i+1]
		t := float64(sub) / float64(ip.framesPerDay)
		v.CenterX = lerp(v.CenterX, next.CenterX, t)
		v.CenterZ = lerp(v.CenterZ, next.CenterZ, t)
		v.Width = lerp(v.Width, next.Width, t)
		v.Height = lerp(v.Height, next.Height, t)
	}

	return CameraFrame{
		DayIndex: i,
		SubFrame: sub,
		Day:      ip.days[i].Day,
		CenterX:  v.CenterX,
		CenterZ:  v.CenterZ,
		Width:    v.Width,
		Height:   v.Height,
		ScaleX:   float64(ip.surface.Width) / v.Width,
		ScaleZ:   float64(ip.surface.Height) / v.Height,
	}
}

// Cursor returns a forward cursor positioned at the first frame.
func (ip *Interpolator) Cursor() Cursor {
	return Cursor{ip: ip}
}

// Cursor walks the frames of an Interpolator one at a time. It is a value:
// copying it forks the position, and Frame has no side effects.
type Cursor struct {
	ip    *Interpolator
	day   int
	sub   int
	index int
}

// Valid reports whether the cursor points at a frame.
func (c Cursor) Valid() bool {
	return c.ip != nil && c.index < c.ip.TotalFrames()
}

// Index returns the zero-based frame number.
func (c Cursor) Index() int { return c.index }

// Frame returns the frame under the cursor.
func (c Cursor) Frame() CameraFrame {
	return c.ip.At(c.day, c.sub)
}

// Next returns the cursor advanced by one frame.
func (c Cursor) Next() Cursor {
	c.index++
	c.sub++
	if c.sub >= c.ip.framesPerDay {
		c.sub = 0
		c.day++
	}
	return c
}
