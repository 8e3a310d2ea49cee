package planner

import (
	"github.com/corpstory/starmap/internal/timeutil"
	"github.com/corpstory/starmap/internal/universe"
)

// Activation marks a region becoming active after being dormant.
type Activation struct {
	Day        timeutil.Day
	RegionID   int64
	RegionName string
}

// DetectActivations walks the magnifier entries and reports every region
// that appears for the first time, or for the first time after more than
// freeze quiet days.
func DetectActivations(entries []MagnifierEntry, cat *universe.Catalog, freeze int) []Activation {
	lastSeen := make(map[int64]timeutil.Day)
	var out []Activation
	for _, e := range entries {
		for _, id := range e.Regions {
			prev, seen := lastSeen[id]
			lastSeen[id] = e.Day
			if seen && e.Day.Sub(prev) <= freeze {
				continue
			}
			a := Activation{Day: e.Day, RegionID: id}
			if r, ok := cat.Region(id, e.Day); ok {
				a.RegionName = r.Name
			}
			out = append(out, a)
		}
	}
	return out
}
