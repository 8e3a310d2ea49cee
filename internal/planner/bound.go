package planner

import "math"

// MovingBound is the smoothing state machine for one side of the camera
// box. It only ever reads the rough track it is advanced over.
type MovingBound struct {
	side    Side
	freeze  int
	value   float64
	started bool
}

// NewMovingBound returns a bound for side that keeps a side frozen for
// freeze days after fresh data.
func NewMovingBound(side Side, freeze int) *MovingBound {
	return &MovingBound{side: side, freeze: freeze}
}

// Side returns the boundary this state machine tracks.
func (b *MovingBound) Side() Side { return b.side }

// Value returns the most recent position of the boundary.
func (b *MovingBound) Value() float64 { return b.value }

// Advance moves the boundary for track[day] looking at most horizon days
// ahead, and returns the new position. Days must be advanced in order
// starting from 0.
//
// Expansion wins over shrinking and is never gated by the freeze: the
// boundary moves linearly so it arrives on the day the widest requirement
// within the horizon falls due. Shrinking happens only when today's side is
// stale or released, towards the nearest day where the side is released to a
// tighter extreme, and never past any requirement still inside the horizon.
func (b *MovingBound) Advance(track []RoughPosition, day, horizon int) float64 {
	s := b.side
	if !b.started || day == 0 {
		b.value = s.Of(track[day].Box)
		b.started = true
		return b.value
	}

	cur := s.outward(b.value)
	end := day + horizon
	if end > len(track)-1 {
		end = len(track) - 1
	}

	rate, expand := 0.0, false
	for j := day; j <= end; j++ {
		if !b.required(track[j]) {
			continue
		}
		need := s.outward(s.Of(track[j].Box))
		if need <= cur {
			continue
		}
		// Strictly steeper only, so the nearest of equal rates wins.
		if r := (need - cur) / float64(j-day+1); r > rate {
			rate, expand = r, true
		}
	}
	if expand {
		b.value = s.outward(cur + rate)
		return b.value
	}

	if !b.shrinkable(track[day]) {
		return b.value
	}

	floor := math.Inf(-1)
	for j := day; j <= end; j++ {
		if b.required(track[j]) {
			floor = math.Max(floor, s.outward(s.Of(track[j].Box)))
		}
	}
	for j := day; j <= end; j++ {
		pos := track[j]
		if !pos.Fresh || !pos.Released[s] {
			continue
		}
		need := s.outward(s.Of(pos.Box))
		if need >= cur {
			continue
		}
		next := cur + (need-cur)/float64(j-day+1)
		b.value = s.outward(math.Max(next, floor))
		break
	}
	return b.value
}

// required reports whether the side's rough value on p must be inside the
// camera: entry days always, prolonged days only while still frozen.
func (b *MovingBound) required(p RoughPosition) bool {
	return p.Fresh || p.Age[b.side] <= b.freeze
}

// shrinkable reports whether the side may contract on p: it has gone more
// than freeze days without new data, or it is released there.
func (b *MovingBound) shrinkable(p RoughPosition) bool {
	return p.Age[b.side] > b.freeze || p.Released[b.side]
}
