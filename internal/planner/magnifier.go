package planner

import (
	"sort"

	"github.com/corpstory/starmap/internal/activity"
	"github.com/corpstory/starmap/internal/monitoring"
	"github.com/corpstory/starmap/internal/timeutil"
	"github.com/corpstory/starmap/internal/universe"
)

// BuildMagnifier reduces the event timeline to one union box per day.
//
// Events resolve against the base catalog before the patch cutover and the
// patched catalog on or after it. Events without a system, or whose system
// belongs to no region, contribute nothing. When activity exists on both
// sides of the cutover an entry is forced on the cutover day holding the
// regions the patch changed, so the camera visits them.
func BuildMagnifier(events []activity.Event, cat *universe.Catalog) []MagnifierEntry {
	byDay := make(map[timeutil.Day]*MagnifierEntry)
	regions := make(map[timeutil.Day]map[int64]struct{})

	add := func(day timeutil.Day, r *universe.Region) {
		e, ok := byDay[day]
		if !ok {
			e = &MagnifierEntry{Day: day, Box: universe.EmptyBox()}
			byDay[day] = e
			regions[day] = make(map[int64]struct{})
		}
		e.Box = e.Box.Union(r.Box)
		regions[day][r.ID] = struct{}{}
	}

	patch := cat.Patch()
	var pre, post bool
	unresolved := 0

	for _, ev := range events {
		sid, ok := ev.SystemID()
		if !ok {
			unresolved++
			continue
		}
		day := ev.Day()
		r, ok := cat.RegionOf(sid, day)
		if !ok {
			unresolved++
			continue
		}
		add(day, r)
		if patch != nil {
			if day < patch.Effective {
				pre = true
			} else {
				post = true
			}
		}
	}

	if pre && post {
		for _, r := range cat.ChangedRegions() {
			add(patch.Effective, r)
		}
	}

	out := make([]MagnifierEntry, 0, len(byDay))
	for day, e := range byDay {
		ids := make([]int64, 0, len(regions[day]))
		for id := range regions[day] {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		e.Regions = ids
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })

	monitoring.Logf("[Magnifier] built entries=%d events=%d unresolved=%d cutover_forced=%v",
		len(out), len(events), unresolved, pre && post)
	return out
}
