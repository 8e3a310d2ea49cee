package planner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpstory/starmap/internal/universe"
)

func TestBuildMagnifier_UnionPerDay(t *testing.T) {
	t.Parallel()
	cat := testCatalog(t, nil)

	got := BuildMagnifier(events(
		rec(3, 3),
		rec(1, 1),
		rec(1, 4),
		rec(1, 2),
		rec(2, 7), // no region
		rec(2, 0), // no system
		rec(2, 99),
	), cat)

	want := []MagnifierEntry{
		{Day: day(1), Box: boxAlpha.Union(boxBeta), Regions: []int64{10, 20}},
		{Day: day(3), Box: boxBeta, Regions: []int64{20}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildMagnifier mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildMagnifier_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, BuildMagnifier(nil, testCatalog(t, nil)))
}

func TestBuildMagnifier_Cutover(t *testing.T) {
	t.Parallel()
	patch := &universe.Patch{
		Effective: day(10),
		Regions: map[int64]*universe.Region{
			20: {Name: "Domain", Systems: []int64{3}},
			40: {Name: "Pochven", Systems: []int64{4}},
		},
	}
	cat := testCatalog(t, patch)

	t.Run("activity on both sides forces a cutover entry", func(t *testing.T) {
		t.Parallel()
		got := BuildMagnifier(events(rec(5, 4), rec(15, 4)), cat)
		require.Len(t, got, 3)

		assert.Equal(t, day(5), got[0].Day)
		assert.Equal(t, boxBeta, got[0].Box, "before cutover system 4 is in Domain")

		assert.Equal(t, day(10), got[1].Day)
		assert.Equal(t, []int64{20, 40}, got[1].Regions)
		assert.Equal(t, boxBeta, got[1].Box)

		assert.Equal(t, day(15), got[2].Day)
		assert.Equal(t, []int64{40}, got[2].Regions)
		assert.Equal(t, universe.Box{MinX: 110, MinZ: 10, MaxX: 110, MaxZ: 10}, got[2].Box)
	})

	t.Run("activity on one side only", func(t *testing.T) {
		t.Parallel()
		got := BuildMagnifier(events(rec(11, 4), rec(15, 3)), cat)
		require.Len(t, got, 2)
		assert.Equal(t, day(11), got[0].Day)
	})

	t.Run("cutover entry merges with existing day", func(t *testing.T) {
		t.Parallel()
		got := BuildMagnifier(events(rec(5, 1), rec(10, 1), rec(12, 1)), cat)
		require.Len(t, got, 3)
		assert.Equal(t, []int64{10, 20, 40}, got[1].Regions)
		assert.Equal(t, boxAlpha.Union(boxBeta), got[1].Box)
	})
}
