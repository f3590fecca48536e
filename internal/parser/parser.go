// Package parser loads the three-column sensor CSV into memory.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"cruncher/internal/models"
)

// FieldCount is the fixed schema width: Timestamp,SensorID,Value.
const FieldCount = 3

var errFieldCount = errors.New("wrong field count")

// ParseRow converts one data row into a Record. It is a pure function: a
// malformed numeric field or a wrong field count yields an error and no
// other effect. Fields are trimmed of surrounding whitespace.
func ParseRow(fields []string) (models.Record, error) {
	if len(fields) != FieldCount {
		return models.Record{}, fmt.Errorf("%w: got %d, want %d", errFieldCount, len(fields), FieldCount)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return models.Record{}, fmt.Errorf("bad value field %q: %w", fields[2], err)
	}

	return models.Record{
		Timestamp: strings.TrimSpace(fields[0]),
		SensorID:  strings.TrimSpace(fields[1]),
		Value:     value,
	}, nil
}

// Load reads the whole file at path into a record slice. The first line is
// consumed as a header and not validated. Rows that fail to decode are
// skipped and tallied, not fatal; skipped reports how many were dropped.
//
// Load fails when the file cannot be opened or read, and also when the file
// contained data rows but not a single one decoded.
func Load(path string) (records []models.Record, skipped uint64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("cannot open input file %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // field-count errors are handled per row
	r.TrimLeadingSpace = true
	r.ReuseRecord = true

	// The header line is consumed and not validated; even a malformed one
	// must never cost a data row.
	if _, readErr := r.Read(); readErr == io.EOF {
		return nil, 0, nil
	}

	for {
		fields, readErr := r.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			// csv.Reader only errors here on malformed quoting; treat it
			// like any other undecodable row.
			skipped++
			continue
		}

		rec, parseErr := ParseRow(fields)
		if parseErr != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 && skipped > 0 {
		return nil, skipped, fmt.Errorf("no row in %q could be decoded (%d malformed)", path, skipped)
	}

	return records, skipped, nil
}
