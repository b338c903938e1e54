package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pevans/newsharvest/export"
	"github.com/pevans/newsharvest/harvest"
	"github.com/pevans/newsharvest/record"
)

// handleResults exports a saved batch of structured search results.
func handleResults(args []string) {
	fs := flag.NewFlagSet("results", flag.ExitOnError)
	format := fs.String("format", "csv", "Output format: csv, json, table")
	output := fs.String("output", "", "Write results to a file instead of stdout")
	all := fs.Bool("all", false, "Export every field instead of the default subset")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: results file is required\n")
		fmt.Fprintf(os.Stderr, "Usage: newsharvest results [flags] <file.json>\n")
		os.Exit(1)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open results: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	results, err := harvest.LoadSearchResults(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	projection := export.Projection{
		Include: record.SearchResultInclude,
		Exclude: record.SearchResultExclude,
	}
	if *all {
		projection = export.Projection{Include: record.SearchResultInclude}
	}

	out, err := openOutput(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeRecords(out, *format, results, projection); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write results: %v\n", err)
		os.Exit(1)
	}
}
