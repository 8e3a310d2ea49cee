package db

import (
	"database/sql"
	"fmt"

	"github.com/corpstory/starmap/internal/activity"
	"github.com/corpstory/starmap/internal/timeutil"
)

// InsertEvents stores records in a single transaction and returns the number
// inserted. Record IDs are ignored; the store assigns its own.
func (db *DB) InsertEvents(records []activity.Record) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO events (day, system_id, category, label, payload) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var system sql.NullInt64
		if id, ok := r.SystemID(); ok {
			system = sql.NullInt64{Int64: id, Valid: true}
		}
		var payload sql.NullString
		if len(r.Payload) > 0 {
			payload = sql.NullString{String: string(r.Payload), Valid: true}
		}
		if _, err := stmt.Exec(int64(r.When), system, string(r.Category), r.Label, payload); err != nil {
			return 0, fmt.Errorf("failed to insert event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit events: %w", err)
	}
	return len(records), nil
}

// Events returns the stored events with from <= day <= to, ordered by day
// then insertion order.
func (db *DB) Events(from, to timeutil.Day) ([]activity.Record, error) {
	return db.queryEvents(`SELECT event_id, day, system_id, category, label, payload
		FROM events WHERE day >= ? AND day <= ? ORDER BY day, event_id`, int64(from), int64(to))
}

// AllEvents returns every stored event in day order.
func (db *DB) AllEvents() ([]activity.Record, error) {
	return db.queryEvents(`SELECT event_id, day, system_id, category, label, payload
		FROM events ORDER BY day, event_id`)
}

// CountEvents returns the number of stored events.
func (db *DB) CountEvents() (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

func (db *DB) queryEvents(query string, args ...interface{}) ([]activity.Record, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var records []activity.Record
	for rows.Next() {
		var (
			r        activity.Record
			day      int64
			system   sql.NullInt64
			category string
			payload  sql.NullString
		)
		if err := rows.Scan(&r.ID, &day, &system, &category, &r.Label, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		r.When = timeutil.Day(day)
		r.System = system.Int64
		r.Category = activity.Category(category)
		if payload.Valid {
			r.Payload = []byte(payload.String)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
