// Package export writes harvested records as CSV or JSON through a column
// projection.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/pevans/newsharvest/record"
)

// Projection selects the columns written for a record kind. Columns are
// the kind's base columns followed by Include, minus Exclude, in that
// order. Aliases renames a column in the header only.
type Projection struct {
	Include []string
	Exclude []string
	Aliases map[string]string
}

// Columns returns the projected columns for records shaped like r.
func Columns(r record.Record, p Projection) []string {
	var cols []string
	for _, c := range append(slices.Clone(r.Columns()), p.Include...) {
		if slices.Contains(p.Exclude, c) || slices.Contains(cols, c) {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// Header returns the header names for cols after applying aliases.
func (p Projection) Header(cols []string) []string {
	header := make([]string, len(cols))
	for i, c := range cols {
		if alias, ok := p.Aliases[c]; ok {
			header[i] = alias
		} else {
			header[i] = c
		}
	}
	return header
}

// WriteCSV writes records as CSV with a header row. Nothing is written
// for an empty batch since there is no record to derive columns from.
func WriteCSV[T record.Record](w io.Writer, records []T, p Projection) error {
	if len(records) == 0 {
		return nil
	}

	cols := Columns(records[0], p)
	cw := csv.NewWriter(w)

	if err := cw.Write(p.Header(cols)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(cols))
	for _, r := range records {
		fields := r.Fields()
		for i, c := range cols {
			row[i] = fields[c]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.Key(), err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WriteJSON writes records as an indented JSON array of objects keyed by
// the projected (aliased) column names.
func WriteJSON[T record.Record](w io.Writer, records []T, p Projection) error {
	rows := make([]map[string]string, 0, len(records))
	if len(records) > 0 {
		cols := Columns(records[0], p)
		header := p.Header(cols)
		for _, r := range records {
			fields := r.Fields()
			row := make(map[string]string, len(cols))
			for i, c := range cols {
				row[header[i]] = fields[c]
			}
			rows = append(rows, row)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
