package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/newsharvest/export"
	"github.com/pevans/newsharvest/harvest"
	"github.com/pevans/newsharvest/metrics"
	"github.com/pevans/newsharvest/profiles"
	"github.com/prometheus/client_golang/prometheus"
)

func handleRun(s *settings, args []string) {
	// Parse flags for run command
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	siteName := fs.String("site", "", "Site to harvest (see 'newsharvest sites')")
	var keywords stringList
	fs.Var(&keywords, "keyword", "Search keyword (repeatable)")
	start := fs.String("start", "", "Keep articles published after this date")
	end := fs.String("end", "", "Keep articles published before this date")
	format := fs.String("format", "table", "Output format: csv, json, table")
	output := fs.String("output", "", "Write results to a file instead of stdout")
	metricsFile := fs.String("metrics-file", "", "Write harvest counters to a Prometheus textfile")
	verbose := fs.Bool("verbose", false, "Log articles that yield no record")
	fs.Parse(args)

	var (
		req     harvest.Request
		profile *profiles.Profile
		store   *profiles.ProfileStore
	)

	if fs.NArg() > 0 {
		// Harvest a saved profile
		var err error
		store, err = profiles.NewProfileStore(s.profilesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open profile store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		profile, err = findProfile(store, fs.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		*siteName = profile.Site
		req = harvest.Request{Keywords: profile.Keywords, Start: profile.Start, End: profile.End}
	} else {
		if *siteName == "" || len(keywords) == 0 || *start == "" || *end == "" {
			fmt.Fprintf(os.Stderr, "Error: --site, --keyword, --start and --end are required without a profile\n")
			fs.Usage()
			os.Exit(1)
		}

		startTime, err := parseDate(*start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: --start: %v\n", err)
			os.Exit(1)
		}
		endTime, err := parseDate(*end)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: --end: %v\n", err)
			os.Exit(1)
		}
		if !startTime.Before(endTime) {
			fmt.Fprintf(os.Stderr, "Error: --start must be before --end\n")
			os.Exit(1)
		}
		req = harvest.Request{Keywords: keywords, Start: startTime, End: endTime}
	}

	site, err := s.file.Site(*siteName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: site %q: %v\n", *siteName, err)
		os.Exit(1)
	}

	out, err := openOutput(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	harvestConfig := *s.harvest
	harvestConfig.Verbose = *verbose

	reg := prometheus.NewRegistry()
	harvester := harvest.NewHarvester(site, &harvestConfig, metrics.New(reg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result := harvester.Run(ctx, req)

	if err := writeRecords(out, *format, result.Records, export.Projection{}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write results: %v\n", err)
		os.Exit(1)
	}

	if *metricsFile != "" {
		if err := metrics.WriteTextfile(*metricsFile, reg); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write metrics: %v\n", err)
		}
	}

	if profile != nil {
		if err := store.RecordRun(profile.ProfileID, time.Now(), len(result.Records)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Harvested %d records from %s in %v (run %s)\n",
		len(result.Records), site.Name, result.Duration.Round(time.Millisecond), result.RunID)
}

// findProfile resolves a profile by ID or, failing that, by name.
func findProfile(store *profiles.ProfileStore, ref string) (*profiles.Profile, error) {
	if id, err := uuid.Parse(ref); err == nil {
		profile, err := store.GetProfile(id)
		if err == nil || !errors.Is(err, profiles.ErrProfileNotFound) {
			return profile, err
		}
	}

	profile, err := store.GetProfileByName(ref)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", ref, err)
	}
	return profile, nil
}
