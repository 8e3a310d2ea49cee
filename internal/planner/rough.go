package planner

import (
	"fmt"

	"github.com/corpstory/starmap/internal/monitoring"
	"github.com/corpstory/starmap/internal/timeutil"
)

// BuildRough expands the sparse magnifier entries into one position per
// calendar day from start (or the first entry, whichever is earlier) to the
// last entry.
//
// On an entry day each side either reaches the entry's extreme (lock-age
// resets to 1) or holds the running extreme and ages. A side whose age has
// passed freeze is stale and is released to the entry's tighter extreme
// instead of being held; the release counts as new data, so its age also
// resets to 1 and the side is marked Released. Between entries the running box is prolonged for up to freeze
// days; after that it is abandoned and the next entry starts from scratch.
// Remaining gaps are filled by prolonging the preceding day, so the result
// has exactly one position per day.
func BuildRough(entries []MagnifierEntry, start timeutil.Day, freeze int) ([]RoughPosition, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Day <= entries[i-1].Day {
			return nil, fmt.Errorf("%w: %s follows %s", ErrMagnifierOrder, entries[i].Day, entries[i-1].Day)
		}
	}

	coarse := make([]RoughPosition, 0, 2*len(entries))
	var last RoughPosition
	hasLast := false
	abandoned := 0

	for _, e := range entries {
		gapAbandoned := false
		if hasLast {
			idle := 0
			for d := last.Day.AddDays(1); d < e.Day; d = d.AddDays(1) {
				if idle >= freeze {
					gapAbandoned = true
					break
				}
				last = prolong(last, d)
				coarse = append(coarse, last)
				idle++
			}
		}
		if gapAbandoned {
			abandoned++
		}

		pos := RoughPosition{Day: e.Day, Box: e.Box, Fresh: true}
		if !hasLast {
			pos.Age = [4]int{1, 1, 1, 1}
		} else {
			elapsed := e.Day.Sub(last.Day)
			for _, s := range allSides {
				prev, next := s.outward(s.Of(last.Box)), s.outward(s.Of(e.Box))
				switch {
				case next >= prev:
					pos.Age[s] = 1
				case gapAbandoned || last.Age[s]+elapsed-1 > freeze:
					pos.Age[s] = 1
					pos.Released[s] = true
				default:
					s.set(&pos.Box, s.Of(last.Box))
					pos.Age[s] = last.Age[s] + elapsed
				}
			}
		}
		coarse = append(coarse, pos)
		last = pos
		hasLast = true
	}

	first := coarse[0]
	total := coarse[len(coarse)-1].Day.Sub(first.Day) + 1
	lead := 0
	if start < first.Day {
		lead = first.Day.Sub(start)
	}

	out := make([]RoughPosition, 0, lead+total)
	for d := start; d < first.Day; d = d.AddDays(1) {
		back := first
		back.Day = d
		back.Fresh = false
		out = append(out, back)
	}
	for i, pos := range coarse {
		if i > 0 {
			prev := out[len(out)-1]
			for d := prev.Day.AddDays(1); d < pos.Day; d = d.AddDays(1) {
				prev = prolong(prev, d)
				out = append(out, prev)
			}
		}
		out = append(out, pos)
	}

	monitoring.Logf("[RoughPositioner] built days=%d entries=%d backfilled=%d abandoned=%d freeze=%d",
		len(out), len(entries), lead, abandoned, freeze)
	return out, nil
}

// prolong carries p forward to day d unchanged, aging every side by one.
func prolong(p RoughPosition, d timeutil.Day) RoughPosition {
	next := p
	next.Day = d
	next.Fresh = false
	next.Released = [4]bool{}
	for i := range next.Age {
		next.Age[i]++
	}
	return next
}
