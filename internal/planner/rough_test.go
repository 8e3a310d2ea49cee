package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpstory/starmap/internal/universe"
)

func entry(n int, b universe.Box) MagnifierEntry {
	return MagnifierEntry{Day: day(n), Box: b}
}

func TestBuildRough_OnePerDay(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		entries []MagnifierEntry
		start   int
		want    int
	}{
		{"single", []MagnifierEntry{entry(1, boxAlpha)}, 1, 1},
		{"adjacent", []MagnifierEntry{entry(1, boxAlpha), entry(2, boxBeta)}, 1, 2},
		{"short gap", []MagnifierEntry{entry(1, boxAlpha), entry(4, boxBeta)}, 1, 4},
		{"abandoned gap", []MagnifierEntry{entry(1, boxAlpha), entry(30, boxBeta), entry(31, boxAlpha)}, 1, 31},
		{"backfilled start", []MagnifierEntry{entry(5, boxAlpha), entry(9, boxBeta)}, 2, 8},
		{"start after first entry", []MagnifierEntry{entry(5, boxAlpha), entry(9, boxBeta)}, 7, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildRough(tt.entries, day(tt.start), 3)
			require.NoError(t, err)
			require.Len(t, got, tt.want)
			for i := 1; i < len(got); i++ {
				assert.Equal(t, 1, got[i].Day.Sub(got[i-1].Day), "day %d", i)
			}
			for _, e := range tt.entries {
				idx := e.Day.Sub(got[0].Day)
				require.True(t, got[idx].Fresh, "entry day %s must be fresh", e.Day)
				assert.True(t, got[idx].Box.Contains(e.Box, 0))
			}
		})
	}
}

func TestBuildRough_OrderViolation(t *testing.T) {
	t.Parallel()
	for _, entries := range [][]MagnifierEntry{
		{entry(5, boxAlpha), entry(3, boxBeta)},
		{entry(5, boxAlpha), entry(5, boxBeta)},
	} {
		got, err := BuildRough(entries, day(1), 3)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMagnifierOrder))
		assert.Nil(t, got)
	}
}

func TestBuildRough_Empty(t *testing.T) {
	t.Parallel()
	got, err := BuildRough(nil, day(1), 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBuildRough_LockAge(t *testing.T) {
	t.Parallel()
	wide := universe.Box{MinX: 0, MinZ: 0, MaxX: 100, MaxZ: 100}
	inner := universe.Box{MinX: 40, MinZ: 40, MaxX: 60, MaxZ: 60}
	right := universe.Box{MinX: 50, MinZ: 40, MaxX: 150, MaxZ: 60}

	got, err := BuildRough([]MagnifierEntry{
		entry(1, wide),
		entry(2, inner),
		entry(3, right),
	}, day(1), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, [4]int{1, 1, 1, 1}, got[0].Age)

	// Tighter data while frozen: the rectangle holds and every side ages.
	assert.Equal(t, wide, got[1].Box)
	assert.Equal(t, [4]int{2, 2, 2, 2}, got[1].Age)

	// Only max-x reaches past the running extreme.
	assert.Equal(t, universe.Box{MinX: 0, MinZ: 0, MaxX: 150, MaxZ: 100}, got[2].Box)
	assert.Equal(t, [4]int{3, 1, 3, 3}, got[2].Age)
	for i := range got {
		assert.Equal(t, [4]bool{}, got[i].Released, "day %d", i+1)
	}
}

func TestBuildRough_ProlongAges(t *testing.T) {
	t.Parallel()
	got, err := BuildRough([]MagnifierEntry{entry(1, boxAlpha), entry(4, boxAlpha)}, day(1), 5)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.False(t, got[1].Fresh)
	assert.False(t, got[2].Fresh)
	for i, want := range []int{1, 2, 3} {
		assert.Equal(t, boxAlpha, got[i].Box)
		assert.Equal(t, want, got[i].Age[SideMinX])
	}
	// Equal extremes count as reaching the running extreme.
	assert.Equal(t, [4]int{1, 1, 1, 1}, got[3].Age)
}

func TestBuildRough_StaleSideReleased(t *testing.T) {
	t.Parallel()
	wide := universe.Box{MinX: 0, MinZ: 0, MaxX: 100, MaxZ: 100}
	inner := universe.Box{MinX: 40, MinZ: 40, MaxX: 60, MaxZ: 60}

	t.Run("gap within freeze but side already stale", func(t *testing.T) {
		t.Parallel()
		got, err := BuildRough([]MagnifierEntry{entry(1, wide), entry(4, wide), entry(5, inner)}, day(1), 2)
		require.NoError(t, err)
		require.Len(t, got, 5)
		// Days 2 and 3 prolong, day 4 resets, day 5 holds.
		assert.Equal(t, wide, got[4].Box)

		got, err = BuildRough([]MagnifierEntry{entry(1, wide), entry(3, wide), entry(6, inner)}, day(1), 2)
		require.NoError(t, err)
		require.Len(t, got, 6)
		assert.Equal(t, inner, got[5].Box, "side aged past freeze is released")
		assert.Equal(t, [4]int{1, 1, 1, 1}, got[5].Age)
		assert.Equal(t, [4]bool{true, true, true, true}, got[5].Released)
	})

	t.Run("abandoned rectangle", func(t *testing.T) {
		t.Parallel()
		got, err := BuildRough([]MagnifierEntry{entry(1, wide), entry(20, inner)}, day(1), 3)
		require.NoError(t, err)
		require.Len(t, got, 20)
		assert.Equal(t, wide, got[3].Box)
		assert.Equal(t, [4]int{4, 4, 4, 4}, got[3].Age)
		// Past the freeze the gap is still filled one day at a time.
		assert.Equal(t, wide, got[18].Box)
		assert.False(t, got[18].Fresh)
		assert.Equal(t, inner, got[19].Box)
		assert.True(t, got[19].Fresh)
		assert.Equal(t, [4]int{1, 1, 1, 1}, got[19].Age)
		assert.Equal(t, [4]bool{true, true, true, true}, got[19].Released)
	})

	t.Run("released side freezes again", func(t *testing.T) {
		t.Parallel()
		got, err := BuildRough([]MagnifierEntry{
			entry(1, universe.Box{MaxX: 100, MaxZ: 10}),
			entry(10, universe.Box{MaxX: 50, MaxZ: 10}),
			entry(12, universe.Box{MaxX: 30, MaxZ: 10}),
		}, day(1), 3)
		require.NoError(t, err)
		require.Len(t, got, 12)

		assert.Equal(t, 50.0, got[9].Box.MaxX)
		assert.Equal(t, 1, got[9].Age[SideMaxX])
		assert.True(t, got[9].Released[SideMaxX])
		assert.False(t, got[9].Released[SideMaxZ], "unchanged extreme is reached, not released")

		assert.False(t, got[10].Released[SideMaxX], "prolonged days are never released")
		assert.Equal(t, 2, got[10].Age[SideMaxX])

		// Two days after the release the side is frozen and holds.
		assert.Equal(t, 50.0, got[11].Box.MaxX)
		assert.Equal(t, 3, got[11].Age[SideMaxX])
		assert.False(t, got[11].Released[SideMaxX])
	})
}

func TestBuildRough_Backfill(t *testing.T) {
	t.Parallel()
	got, err := BuildRough([]MagnifierEntry{entry(5, boxBeta)}, day(2), 3)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, day(2+i), got[i].Day)
		assert.Equal(t, boxBeta, got[i].Box)
		assert.False(t, got[i].Fresh)
	}
	assert.True(t, got[3].Fresh)
}
