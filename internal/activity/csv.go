package activity

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/corpstory/starmap/internal/timeutil"
)

var requiredColumns = []string{"date", "category", "system_id", "label"}

// ReadCSV parses an activity log with the header
// date,category,system_id,label[,payload]. Column order is free; names are
// matched case-insensitively. An empty system_id means the event has no
// location. The payload column, when present, must hold JSON.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty CSV: missing header")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("CSV header missing column %q", name)
		}
	}
	payloadCol, hasPayload := col["payload"]

	var records []Record
	for row := 2; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		day, err := timeutil.ParseDay(fields[col["date"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		var system int64
		if s := strings.TrimSpace(fields[col["system_id"]]); s != "" {
			system, err = strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid system_id %q: %w", row, s, err)
			}
		}

		rec := Record{
			When:     day,
			System:   system,
			Category: Category(strings.ToLower(strings.TrimSpace(fields[col["category"]]))),
			Label:    fields[col["label"]],
		}
		if hasPayload {
			if p := strings.TrimSpace(fields[payloadCol]); p != "" {
				if !json.Valid([]byte(p)) {
					return nil, fmt.Errorf("row %d: payload is not valid JSON", row)
				}
				rec.Payload = json.RawMessage(p)
			}
		}
		records = append(records, rec)
	}

	return records, nil
}
