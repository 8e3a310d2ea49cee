package db

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpstory/starmap/internal/activity"
	"github.com/corpstory/starmap/internal/planner"
	"github.com/corpstory/starmap/internal/timeutil"
	"github.com/corpstory/starmap/internal/universe"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "starmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDB_Pragmas(t *testing.T) {
	db := setupTestDB(t)

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var busyTimeout int
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, 5000, busyTimeout)

	var foreignKeys int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)
}

func TestMigrations(t *testing.T) {
	db := setupTestDB(t)

	latest, err := LatestMigrationVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(4), latest)

	version, dirty, err := db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, latest, version)
	assert.False(t, dirty)

	// Reopening an up-to-date database is a no-op.
	require.NoError(t, db.MigrateUp(MigrationsFS()))

	require.NoError(t, db.MigrateDown(MigrationsFS()))
	version, _, err = db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(3), version)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('plan_tracks') WHERE name LIKE 'released_%'`).Scan(&n))
	assert.Equal(t, 0, n)

	require.NoError(t, db.MigrateDown(MigrationsFS()))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='plan_tracks'`).Scan(&n))
	assert.Equal(t, 0, n)

	require.NoError(t, db.MigrateForce(MigrationsFS(), 4))
	version, dirty, err = db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(4), version)
	assert.False(t, dirty)
}

func TestMigrationsErrors(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "raw.db"))
	require.NoError(t, err)
	defer db.Close()

	version, dirty, err := db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	assert.Error(t, db.MigrateUp(nil))

	_, err = LatestMigrationVersion(fstest.MapFS{"README.md": {Data: []byte("x")}})
	assert.Error(t, err)
}

func TestEvents(t *testing.T) {
	db := setupTestDB(t)
	d := timeutil.Date(2021, 3, 1)

	n, err := db.InsertEvents([]activity.Record{
		{When: d.AddDays(2), System: 30000142, Category: activity.CategoryCombat, Label: "Loss", Payload: json.RawMessage(`{"isk":1}`)},
		{When: d, System: 30002187, Category: activity.CategoryIndustry, Label: "Job"},
		{When: d.AddDays(5), Category: activity.CategoryMember, Label: "Joined"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := db.CountEvents()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	all, err := db.AllEvents()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, d, all[0].When)
	assert.Equal(t, "Loss", all[1].Label)
	assert.JSONEq(t, `{"isk":1}`, string(all[1].Payload))
	_, ok := all[2].SystemID()
	assert.False(t, ok, "NULL system reads back as no system")
	assert.Nil(t, all[0].Payload)

	ranged, err := db.Events(d.AddDays(1), d.AddDays(2))
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, int64(30000142), ranged[0].System)
	assert.Equal(t, activity.CategoryCombat, ranged[0].Category)
	assert.NotZero(t, ranged[0].ID)
}

func testPlan(t *testing.T) *planner.Plan {
	t.Helper()
	d := timeutil.Date(2021, 3, 1)
	box := universe.Box{MinX: 1, MinZ: 2, MaxX: 3, MaxZ: 4}
	return &planner.Plan{
		RunID:        uuid.New(),
		Surface:      planner.Surface{Width: 1920, Height: 1080},
		FramesPerDay: 12,
		Bounds:       universe.Box{MinX: -10, MinZ: -10, MaxX: 10, MaxZ: 10},
		Dynamic:      true,
		Days: []planner.Viewport{
			{Day: d, CenterX: 2, CenterZ: 3, Width: 16, Height: 9},
			{Day: d.AddDays(1), CenterX: 2.5, CenterZ: 3, Width: 17.6, Height: 9.9},
		},
		Rough: []planner.RoughPosition{
			{Day: d, Box: box, Age: [4]int{1, 1, 1, 1}, Fresh: true},
			{Day: d.AddDays(1), Box: box, Age: [4]int{1, 2, 2, 2}, Released: [4]bool{true}, Fresh: true},
		},
		Moved: []universe.Box{box, box.Grow(1, 0)},
		Activations: []planner.Activation{
			{Day: d, RegionID: 10000002, RegionName: "The Forge"},
		},
	}
}

func TestSavePlan_RoundTrip(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.LatestRunID()
	assert.True(t, errors.Is(err, ErrNoPlans))

	created := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
	clock := timeutil.NewMockClock(created)
	db.Clock = clock

	first := testPlan(t)
	require.NoError(t, db.SavePlan(first))
	clock.Advance(time.Hour)
	second := testPlan(t)
	second.Activations = nil
	require.NoError(t, db.SavePlan(second))

	latest, err := db.LatestRunID()
	require.NoError(t, err)
	assert.Equal(t, second.RunID, latest)

	viewports, err := db.PlanViewports(first.RunID)
	require.NoError(t, err)
	if diff := cmp.Diff(first.Days, viewports); diff != "" {
		t.Errorf("PlanViewports mismatch (-want +got):\n%s", diff)
	}

	activations, err := db.PlanActivations(first.RunID)
	require.NoError(t, err)
	assert.Equal(t, first.Activations, activations)

	loaded, err := db.LoadPlan(first.RunID)
	require.NoError(t, err)
	first.Magnifier = nil
	if diff := cmp.Diff(first, loaded); diff != "" {
		t.Errorf("LoadPlan mismatch (-want +got):\n%s", diff)
	}

	runs, err := db.PlanRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.RunID, runs[0].RunID)
	assert.Equal(t, created.Add(time.Hour), runs[0].Created)
	assert.Equal(t, created, runs[1].Created)
	assert.Equal(t, first.Days[0].Day, runs[1].FirstDay)
	assert.Equal(t, first.Days[1].Day, runs[1].LastDay)
	assert.True(t, runs[1].Dynamic)

	_, err = db.LoadPlan(uuid.New())
	assert.True(t, errors.Is(err, ErrNoPlans))

	require.Error(t, db.SavePlan(first), "run ids are unique")
}
