package universe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"gonum.org/v1/gonum/floats"

	"github.com/corpstory/starmap/internal/timeutil"
)

// System is a single star system on the map.
type System struct {
	ID         int64
	Name       string
	Pos        Point
	Luminosity float64
}

// Region is a named group of systems with a bounding box derived from its
// members' X/Z positions.
type Region struct {
	ID      int64
	Name    string
	Box     Box
	CenterX float64
	CenterZ float64
	Systems []int64
}

// Patch replaces or introduces regions from Effective onwards. Regions not
// listed keep their base definition.
type Patch struct {
	Effective timeutil.Day
	Regions   map[int64]*Region
}

// Catalog is the immutable universe: systems, base regions and an optional
// patch. Membership lookups are resolved once at construction time.
type Catalog struct {
	systems map[int64]*System
	base    map[int64]*Region
	patch   *Patch

	baseOf    map[int64]int64 // system -> base region
	patchedOf map[int64]int64 // system -> region on/after the cutover
	changed   []int64         // regions the patch introduced or altered
}

// NewCatalog builds a Catalog. Region boxes and centres are (re)computed from
// member positions; a member id with no system fails construction.
func NewCatalog(systems []System, regions []Region, patch *Patch) (*Catalog, error) {
	c := &Catalog{
		systems:   make(map[int64]*System, len(systems)),
		base:      make(map[int64]*Region, len(regions)),
		baseOf:    make(map[int64]int64),
		patchedOf: make(map[int64]int64),
	}
	for i := range systems {
		s := systems[i]
		if _, dup := c.systems[s.ID]; dup {
			return nil, fmt.Errorf("duplicate system id %d", s.ID)
		}
		c.systems[s.ID] = &s
	}

	for i := range regions {
		r := regions[i]
		if _, dup := c.base[r.ID]; dup {
			return nil, fmt.Errorf("duplicate region id %d", r.ID)
		}
		if err := c.fillRegion(&r); err != nil {
			return nil, err
		}
		c.base[r.ID] = &r
		for _, sid := range r.Systems {
			c.baseOf[sid] = r.ID
		}
	}

	for sid, rid := range c.baseOf {
		c.patchedOf[sid] = rid
	}

	if patch != nil {
		p := &Patch{Effective: patch.Effective, Regions: make(map[int64]*Region, len(patch.Regions))}
		for id, pr := range patch.Regions {
			r := *pr
			r.ID = id
			if err := c.fillRegion(&r); err != nil {
				return nil, fmt.Errorf("patch: %w", err)
			}
			p.Regions[id] = &r
			if old, ok := c.base[id]; !ok || old.Box != r.Box || !sameMembers(old.Systems, r.Systems) {
				c.changed = append(c.changed, id)
			}
		}
		// A system dropped from a patched region has no region after the
		// cutover unless another patched region claims it.
		for sid, rid := range c.patchedOf {
			if pr, ok := p.Regions[rid]; ok && !containsID(pr.Systems, sid) {
				delete(c.patchedOf, sid)
			}
		}
		for id, r := range p.Regions {
			for _, sid := range r.Systems {
				c.patchedOf[sid] = id
			}
		}
		sort.Slice(c.changed, func(i, j int) bool { return c.changed[i] < c.changed[j] })
		c.patch = p
	}

	return c, nil
}

func (c *Catalog) fillRegion(r *Region) error {
	box := EmptyBox()
	for _, sid := range r.Systems {
		s, ok := c.systems[sid]
		if !ok {
			return fmt.Errorf("region %d (%s) references unknown system %d", r.ID, r.Name, sid)
		}
		box = box.Union(BoxAround(s.Pos))
	}
	if box.Empty() {
		return fmt.Errorf("region %d (%s) has no systems", r.ID, r.Name)
	}
	r.Box = box
	r.CenterX, r.CenterZ = box.Center()
	return nil
}

// System returns the system with the given id.
func (c *Catalog) System(id int64) (*System, bool) {
	s, ok := c.systems[id]
	return s, ok
}

// Systems returns all systems ordered by id.
func (c *Catalog) Systems() []*System {
	out := make([]*System, 0, len(c.systems))
	for _, s := range c.systems {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Patch returns the catalog patch, or nil if none is configured.
func (c *Catalog) Patch() *Patch {
	return c.patch
}

// Region returns the region with the given id as it is defined on day.
func (c *Catalog) Region(id int64, day timeutil.Day) (*Region, bool) {
	if c.patch != nil && day >= c.patch.Effective {
		if r, ok := c.patch.Regions[id]; ok {
			return r, true
		}
	}
	r, ok := c.base[id]
	return r, ok
}

// RegionOf resolves the region a system belongs to on the given day. Days
// before the patch cutover use the base catalog, days on or after it use the
// patched one.
func (c *Catalog) RegionOf(systemID int64, day timeutil.Day) (*Region, bool) {
	lookup := c.baseOf
	if c.patch != nil && day >= c.patch.Effective {
		lookup = c.patchedOf
	}
	rid, ok := lookup[systemID]
	if !ok {
		return nil, false
	}
	return c.Region(rid, day)
}

// ChangedRegions returns the regions the patch introduced or altered, in
// their patched form.
func (c *Catalog) ChangedRegions() []*Region {
	if c.patch == nil {
		return nil
	}
	out := make([]*Region, 0, len(c.changed))
	for _, id := range c.changed {
		out = append(out, c.patch.Regions[id])
	}
	return out
}

// RegionByName finds a base or patched region by exact name. On a miss the
// error lists the closest known names.
func (c *Catalog) RegionByName(name string) (*Region, error) {
	var names []string
	seen := make(map[string]bool)
	check := func(r *Region) *Region {
		if r.Name == name {
			return r
		}
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
		return nil
	}
	for _, r := range c.base {
		if hit := check(r); hit != nil {
			return hit, nil
		}
	}
	if c.patch != nil {
		for _, r := range c.patch.Regions {
			if hit := check(r); hit != nil {
				return hit, nil
			}
		}
	}

	sort.Slice(names, func(i, j int) bool {
		di := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(names[i]))
		dj := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(names[j]))
		if di != dj {
			return di < dj
		}
		return names[i] < names[j]
	})
	if len(names) > 3 {
		names = names[:3]
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("unknown region %q", name)
	}
	return nil, fmt.Errorf("unknown region %q (did you mean %s?)", name, strings.Join(names, ", "))
}

// Bounds returns the outer extent of the universe: every system position and
// every base or patched region box.
func (c *Catalog) Bounds() Box {
	n := len(c.systems)
	if n == 0 {
		return EmptyBox()
	}
	xs := make([]float64, 0, n)
	zs := make([]float64, 0, n)
	for _, s := range c.systems {
		xs = append(xs, s.Pos.X)
		zs = append(zs, s.Pos.Z)
	}
	b := Box{MinX: floats.Min(xs), MinZ: floats.Min(zs), MaxX: floats.Max(xs), MaxZ: floats.Max(zs)}
	for _, r := range c.base {
		b = b.Union(r.Box)
	}
	if c.patch != nil {
		for _, r := range c.patch.Regions {
			b = b.Union(r.Box)
		}
	}
	return b
}

func sameMembers(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int64]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
