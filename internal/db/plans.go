package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corpstory/starmap/internal/planner"
	"github.com/corpstory/starmap/internal/timeutil"
	"github.com/corpstory/starmap/internal/universe"
)

// ErrNoPlans is returned when a lookup needs a plan run and none is stored.
var ErrNoPlans = errors.New("no plan runs stored")

// PlanRun is the summary row of a stored plan.
type PlanRun struct {
	RunID        uuid.UUID
	Created      time.Time
	FirstDay     timeutil.Day
	LastDay      timeutil.Day
	FramesPerDay int
	Surface      planner.Surface
	Dynamic      bool
	Bounds       universe.Box
}

// SavePlan stores the plan's run row, viewports, tracks and activations in
// one transaction.
func (db *DB) SavePlan(plan *planner.Plan) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	runID := plan.RunID.String()
	_, err = tx.Exec(`INSERT INTO plan_runs (
			run_id, created_unix, first_day, last_day, frames_per_day,
			surface_width, surface_height, dynamic,
			bounds_min_x, bounds_min_z, bounds_max_x, bounds_max_z
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, db.Clock.Now().Unix(), int64(plan.FirstDay()), int64(plan.LastDay()), plan.FramesPerDay,
		plan.Surface.Width, plan.Surface.Height, plan.Dynamic,
		plan.Bounds.MinX, plan.Bounds.MinZ, plan.Bounds.MaxX, plan.Bounds.MaxZ,
	)
	if err != nil {
		return fmt.Errorf("failed to insert plan run %s: %w", runID, err)
	}

	vpStmt, err := tx.Prepare(`INSERT INTO planned_viewports (run_id, day_index, day, center_x, center_z, width, height)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare viewport insert: %w", err)
	}
	defer vpStmt.Close()
	for i, v := range plan.Days {
		if _, err := vpStmt.Exec(runID, i, int64(v.Day), v.CenterX, v.CenterZ, v.Width, v.Height); err != nil {
			return fmt.Errorf("failed to insert viewport %d: %w", i, err)
		}
	}

	if len(plan.Rough) == len(plan.Days) && len(plan.Moved) == len(plan.Days) {
		trackStmt, err := tx.Prepare(`INSERT INTO plan_tracks (
				run_id, day_index, fresh,
				rough_min_x, rough_min_z, rough_max_x, rough_max_z,
				age_min_x, age_max_x, age_min_z, age_max_z,
				released_min_x, released_max_x, released_min_z, released_max_z,
				moved_min_x, moved_min_z, moved_max_x, moved_max_z
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare track insert: %w", err)
		}
		defer trackStmt.Close()
		for i, r := range plan.Rough {
			m := plan.Moved[i]
			if _, err := trackStmt.Exec(runID, i, r.Fresh,
				r.Box.MinX, r.Box.MinZ, r.Box.MaxX, r.Box.MaxZ,
				r.Age[planner.SideMinX], r.Age[planner.SideMaxX], r.Age[planner.SideMinZ], r.Age[planner.SideMaxZ],
				r.Released[planner.SideMinX], r.Released[planner.SideMaxX], r.Released[planner.SideMinZ], r.Released[planner.SideMaxZ],
				m.MinX, m.MinZ, m.MaxX, m.MaxZ,
			); err != nil {
				return fmt.Errorf("failed to insert track %d: %w", i, err)
			}
		}
	}

	for _, a := range plan.Activations {
		if _, err := tx.Exec(`INSERT INTO region_activations (run_id, day, region_id, region_name) VALUES (?, ?, ?, ?)`,
			runID, int64(a.Day), a.RegionID, a.RegionName); err != nil {
			return fmt.Errorf("failed to insert activation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plan %s: %w", runID, err)
	}
	return nil
}

// PlanRuns lists stored plans, newest first.
func (db *DB) PlanRuns() ([]PlanRun, error) {
	rows, err := db.Query(`SELECT run_id, created_unix, first_day, last_day, frames_per_day,
			surface_width, surface_height, dynamic,
			bounds_min_x, bounds_min_z, bounds_max_x, bounds_max_z
		FROM plan_runs ORDER BY created_unix DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan runs: %w", err)
	}
	defer rows.Close()

	var runs []PlanRun
	for rows.Next() {
		run, err := scanPlanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlanRun(row rowScanner) (*PlanRun, error) {
	var (
		run               PlanRun
		id                string
		created           int64
		firstDay, lastDay int64
	)
	if err := row.Scan(&id, &created, &firstDay, &lastDay, &run.FramesPerDay,
		&run.Surface.Width, &run.Surface.Height, &run.Dynamic,
		&run.Bounds.MinX, &run.Bounds.MinZ, &run.Bounds.MaxX, &run.Bounds.MaxZ); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	run.RunID = parsed
	run.Created = time.Unix(created, 0).UTC()
	run.FirstDay = timeutil.Day(firstDay)
	run.LastDay = timeutil.Day(lastDay)
	return &run, nil
}

// LatestRunID returns the most recently saved plan's id, or ErrNoPlans.
func (db *DB) LatestRunID() (uuid.UUID, error) {
	var id string
	err := db.QueryRow(`SELECT run_id FROM plan_runs ORDER BY created_unix DESC, rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrNoPlans
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return uuid.Parse(id)
}

// PlanViewports returns the planned viewports of a run in day order.
func (db *DB) PlanViewports(runID uuid.UUID) ([]planner.Viewport, error) {
	rows, err := db.Query(`SELECT day, center_x, center_z, width, height
		FROM planned_viewports WHERE run_id = ? ORDER BY day_index`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query viewports: %w", err)
	}
	defer rows.Close()

	var out []planner.Viewport
	for rows.Next() {
		var v planner.Viewport
		var day int64
		if err := rows.Scan(&day, &v.CenterX, &v.CenterZ, &v.Width, &v.Height); err != nil {
			return nil, fmt.Errorf("failed to scan viewport: %w", err)
		}
		v.Day = timeutil.Day(day)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// PlanActivations returns the region activations of a run in day order.
func (db *DB) PlanActivations(runID uuid.UUID) ([]planner.Activation, error) {
	rows, err := db.Query(`SELECT day, region_id, region_name
		FROM region_activations WHERE run_id = ? ORDER BY day, region_id`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query activations: %w", err)
	}
	defer rows.Close()

	var out []planner.Activation
	for rows.Next() {
		var a planner.Activation
		var day int64
		if err := rows.Scan(&day, &a.RegionID, &a.RegionName); err != nil {
			return nil, fmt.Errorf("failed to scan activation: %w", err)
		}
		a.Day = timeutil.Day(day)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadPlan rebuilds a stored plan. Magnifier entries are not stored, so the
// returned plan has none.
func (db *DB) LoadPlan(runID uuid.UUID) (*planner.Plan, error) {
	run, err := scanPlanRun(db.QueryRow(`SELECT run_id, created_unix, first_day, last_day, frames_per_day,
			surface_width, surface_height, dynamic,
			bounds_min_x, bounds_min_z, bounds_max_x, bounds_max_z
		FROM plan_runs WHERE run_id = ?`, runID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan %s: %w", runID, ErrNoPlans)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", runID, err)
	}

	plan := &planner.Plan{
		RunID:        run.RunID,
		Surface:      run.Surface,
		FramesPerDay: run.FramesPerDay,
		Bounds:       run.Bounds,
		Dynamic:      run.Dynamic,
	}
	if plan.Days, err = db.PlanViewports(runID); err != nil {
		return nil, err
	}
	if plan.Activations, err = db.PlanActivations(runID); err != nil {
		return nil, err
	}
	if err := db.loadTracks(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (db *DB) loadTracks(plan *planner.Plan) error {
	rows, err := db.Query(`SELECT day_index, fresh,
			rough_min_x, rough_min_z, rough_max_x, rough_max_z,
			age_min_x, age_max_x, age_min_z, age_max_z,
			released_min_x, released_max_x, released_min_z, released_max_z,
			moved_min_x, moved_min_z, moved_max_x, moved_max_z
		FROM plan_tracks WHERE run_id = ? ORDER BY day_index`, plan.RunID.String())
	if err != nil {
		return fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idx int
			r   planner.RoughPosition
			m   universe.Box
		)
		if err := rows.Scan(&idx, &r.Fresh,
			&r.Box.MinX, &r.Box.MinZ, &r.Box.MaxX, &r.Box.MaxZ,
			&r.Age[planner.SideMinX], &r.Age[planner.SideMaxX], &r.Age[planner.SideMinZ], &r.Age[planner.SideMaxZ],
			&r.Released[planner.SideMinX], &r.Released[planner.SideMaxX], &r.Released[planner.SideMinZ], &r.Released[planner.SideMaxZ],
			&m.MinX, &m.MinZ, &m.MaxX, &m.MaxZ); err != nil {
			return fmt.Errorf("failed to scan track: %w", err)
		}
		if idx < 0 || idx >= len(plan.Days) {
			return fmt.Errorf("track day index %d outside plan of %d days", idx, len(plan.Days))
		}
		r.Day = plan.Days[idx].Day
		plan.Rough = append(plan.Rough, r)
		plan.Moved = append(plan.Moved, m)
	}
	return rows.Err()
}
