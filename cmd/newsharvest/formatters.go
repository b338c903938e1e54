package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pevans/newsharvest/export"
	"github.com/pevans/newsharvest/record"
)

// writeRecords writes records to w in the requested format.
func writeRecords[T record.Record](w io.Writer, format string, records []T, p export.Projection) error {
	switch format {
	case "csv":
		return export.WriteCSV(w, records, p)
	case "json":
		return export.WriteJSON(w, records, p)
	case "table":
		printRecordsTable(w, records, p)
		return nil
	default:
		return fmt.Errorf("unknown format: %s (want csv, json or table)", format)
	}
}

// printRecordsTable prints records in human-readable block format
func printRecordsTable[T record.Record](w io.Writer, records []T, p export.Projection) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records to display.")
		return
	}

	fmt.Fprintf(w, "%d records\n\n", len(records))

	cols := export.Columns(records[0], p)
	header := p.Header(cols)
	for _, r := range records {
		fields := r.Fields()
		fmt.Fprintln(w, r.Key())
		for i, c := range cols {
			if c == "url" {
				continue
			}
			fmt.Fprintf(w, "   %-20s %s\n", header[i]+":", truncate(fields[c], 100))
		}
		fmt.Fprintln(w)
	}
}

// openOutput returns the destination for results: stdout when path is
// empty or "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
