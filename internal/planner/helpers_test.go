package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpstory/starmap/internal/activity"
	"github.com/corpstory/starmap/internal/timeutil"
	"github.com/corpstory/starmap/internal/universe"
)

const eps = 1e-9

var (
	boxAlpha = universe.Box{MinX: 0, MinZ: 0, MaxX: 10, MaxZ: 10}
	boxBeta  = universe.Box{MinX: 100, MinZ: 0, MaxX: 110, MaxZ: 10}
)

// testCatalog is a 1000x1000 universe with three regions and one system
// outside any region.
func testCatalog(t *testing.T, patch *universe.Patch) *universe.Catalog {
	t.Helper()
	systems := []universe.System{
		{ID: 1, Name: "Jita", Pos: universe.Point{X: 0, Z: 0}},
		{ID: 2, Name: "Perimeter", Pos: universe.Point{X: 10, Z: 10}},
		{ID: 3, Name: "Amarr", Pos: universe.Point{X: 100, Z: 0}},
		{ID: 4, Name: "Ashab", Pos: universe.Point{X: 110, Z: 10}},
		{ID: 5, Name: "Rens", Pos: universe.Point{X: 900, Z: 900}},
		{ID: 6, Name: "Frarn", Pos: universe.Point{X: 1000, Z: 1000}},
		{ID: 7, Name: "Thera", Pos: universe.Point{X: 50, Z: 500}},
	}
	regions := []universe.Region{
		{ID: 10, Name: "The Forge", Systems: []int64{1, 2}},
		{ID: 20, Name: "Domain", Systems: []int64{3, 4}},
		{ID: 30, Name: "Heimatar", Systems: []int64{5, 6}},
	}
	cat, err := universe.NewCatalog(systems, regions, patch)
	require.NoError(t, err)
	return cat
}

func day(n int) timeutil.Day {
	return timeutil.Date(2020, 1, 1).AddDays(n - 1)
}

func rec(n int, system int64) activity.Record {
	return activity.Record{When: day(n), System: system, Category: activity.CategoryCombat}
}

func events(records ...activity.Record) []activity.Event {
	return activity.Events(records)
}
