// Package activity models the dated corporation log that drives the map.
// The planner only ever sees the Event interface; category payloads ride
// along opaquely for the renderer and the store.
package activity

import (
	"encoding/json"
	"sort"

	"github.com/corpstory/starmap/internal/timeutil"
)

// Event is the minimal capability the viewport planner needs: when did it
// happen and, optionally, in which system.
type Event interface {
	Day() timeutil.Day
	SystemID() (int64, bool)
}

// Category names the kind of activity. Unknown categories are kept verbatim.
type Category string

const (
	CategoryCombat   Category = "combat"
	CategoryIndustry Category = "industry"
	CategoryTrade    Category = "trade"
	CategoryMember   Category = "member"
	CategoryStation  Category = "station"
)

// Record is the concrete event type read from CSV and the store.
type Record struct {
	ID       int64
	When     timeutil.Day
	System   int64 // 0 when the event has no location
	Category Category
	Label    string
	Payload  json.RawMessage
}

func (r Record) Day() timeutil.Day { return r.When }

func (r Record) SystemID() (int64, bool) {
	return r.System, r.System != 0
}

// Events adapts a record slice to the planner's interface slice.
func Events(records []Record) []Event {
	out := make([]Event, len(records))
	for i := range records {
		out[i] = records[i]
	}
	return out
}

// SortByDay orders records chronologically, keeping input order within a day.
func SortByDay(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].When < records[j].When
	})
}
