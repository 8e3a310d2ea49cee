package timeutil

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFromTime_TruncatesToUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	// 01:30 local is still the previous day in UTC.
	local := time.Date(2021, 3, 10, 1, 30, 0, 0, loc)

	got := FromTime(local)
	if got.String() != "2021-03-09" {
		t.Errorf("FromTime(%v) = %s, want 2021-03-09", local, got)
	}
}

func TestDate_Epoch(t *testing.T) {
	if d := Date(1970, time.January, 1); d != 0 {
		t.Errorf("Date(1970-01-01) = %d, want 0", d)
	}
	if d := Date(1970, time.January, 2); d != 1 {
		t.Errorf("Date(1970-01-02) = %d, want 1", d)
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2020-02-29", "2020-02-29", false},
		{" 2020-02-29 ", "2020-02-29", false},
		{"2020-02-29T23:59:59Z", "2020-02-29", false},
		{"2020-02-29T23:00:00-02:00", "2020-03-01", false},
		{"29/02/2020", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDay(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDay(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDay(%q) error: %v", tt.in, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseDay(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestDayArithmetic(t *testing.T) {
	d := Date(2021, time.December, 30)

	if got := d.AddDays(3).String(); got != "2022-01-02" {
		t.Errorf("AddDays(3) = %s, want 2022-01-02", got)
	}
	if got := d.AddDays(-30).String(); got != "2021-11-30" {
		t.Errorf("AddDays(-30) = %s, want 2021-11-30", got)
	}
	if got := d.AddDays(10).Sub(d); got != 10 {
		t.Errorf("Sub = %d, want 10", got)
	}
}

func TestDay_TextRoundTrip(t *testing.T) {
	type wrapper struct {
		Start Day `json:"start"`
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"start":"2019-05-06"}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.Start != Date(2019, time.May, 6) {
		t.Errorf("Start = %s, want 2019-05-06", w.Start)
	}

	out, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"start":"2019-05-06"}` {
		t.Errorf("marshal = %s", out)
	}

	if err := json.Unmarshal([]byte(`{"start":"nope"}`), &w); err == nil {
		t.Error("expected error for invalid day")
	}
}
