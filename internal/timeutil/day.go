package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the canonical text form of a Day.
const DayLayout = "2006-01-02"

// Day is a calendar day counted from the Unix epoch (1970-01-01 is day 0).
// All arithmetic is done in UTC so that daylight saving transitions never
// produce a 23 or 25 hour "day".
type Day int32

// FromTime returns the UTC calendar day containing t.
func FromTime(t time.Time) Day {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return Day(midnight.Unix() / 86400)
}

// Date builds a Day from its calendar components.
func Date(year int, month time.Month, day int) Day {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDay accepts "2006-01-02" or a full RFC3339 timestamp.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DayLayout, s); err == nil {
		return FromTime(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("invalid day %q: expected %s or RFC3339", s, DayLayout)
	}
	return FromTime(t), nil
}

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

// AddDays returns the day n days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	return d + Day(n)
}

// Sub returns the number of days from o to d.
func (d Day) Sub(o Day) int {
	return int(d - o)
}

func (d Day) String() string {
	return d.Time().Format(DayLayout)
}

// MarshalText implements encoding.TextMarshaler so days read naturally in
// JSON and YAML.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
