package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pevans/newsharvest/profiles"
)

func handleProfilesCommand(action string, s *settings, args []string) {
	if action == "help" || action == "--help" || action == "-h" {
		printProfilesUsage()
		return
	}

	// Initialize profile store
	store, err := profiles.NewProfileStore(s.profilesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open profile store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch action {
	case "list":
		handleProfilesList(store, args)
	case "add":
		handleProfilesAdd(store, s, args)
	case "show":
		handleProfilesShow(store, args)
	case "delete":
		handleProfilesDelete(store, args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown profiles command: %s\n\n", action)
		printProfilesUsage()
		os.Exit(1)
	}
}

func printProfilesUsage() {
	fmt.Println("newsharvest profiles - Manage saved harvest profiles")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  newsharvest profiles <action> [arguments]")
	fmt.Println()
	fmt.Println("Actions:")
	fmt.Println("  list       List all profiles")
	fmt.Println("  add        Save a new profile")
	fmt.Println("  show       Show a profile's details")
	fmt.Println("  delete     Delete a profile")
	fmt.Println("  help       Show this help message")
}

func handleProfilesList(store *profiles.ProfileStore, args []string) {
	fs := flag.NewFlagSet("profiles list", flag.ExitOnError)
	format := fs.String("format", "table", "Output format: table, json")
	fs.Parse(args)

	list, err := store.ListProfiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list profiles: %v\n", err)
		os.Exit(1)
	}

	if *format == "json" {
		printJSON(list)
		return
	}

	if len(list) == 0 {
		fmt.Println("No profiles saved.")
		return
	}

	fmt.Printf("%-36s %-20s %-10s %-23s %s\n", "ID", "NAME", "SITE", "WINDOW", "KEYWORDS")
	fmt.Println("----------------------------------------------------------------------------------------------------")

	for _, p := range list {
		fmt.Printf("%-36s %-20s %-10s %-23s %s\n",
			p.ProfileID.String(),
			truncate(p.Name, 20),
			p.Site,
			p.Start.Format("2006-01-02")+" - "+p.End.Format("2006-01-02"),
			truncate(strings.Join(p.Keywords, ", "), 40),
		)
	}
}

func handleProfilesAdd(store *profiles.ProfileStore, s *settings, args []string) {
	fs := flag.NewFlagSet("profiles add", flag.ExitOnError)
	name := fs.String("name", "", "Profile name")
	siteName := fs.String("site", "", "Site to harvest")
	var keywords stringList
	fs.Var(&keywords, "keyword", "Search keyword (repeatable)")
	start := fs.String("start", "", "Keep articles published after this date")
	end := fs.String("end", "", "Keep articles published before this date")
	fs.Parse(args)

	// Validate required flags
	if *name == "" {
		fmt.Fprintf(os.Stderr, "Error: --name is required\n")
		fs.Usage()
		os.Exit(1)
	}
	if *siteName == "" {
		fmt.Fprintf(os.Stderr, "Error: --site is required\n")
		fs.Usage()
		os.Exit(1)
	}
	if *start == "" || *end == "" {
		fmt.Fprintf(os.Stderr, "Error: --start and --end are required\n")
		fs.Usage()
		os.Exit(1)
	}

	site, err := s.file.Site(*siteName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: site %q: %v\n", *siteName, err)
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

	profile, err := store.CreateProfile(*name, site.Name, keywords, startTime, endTime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Created profile: %s\n", profile.ProfileID.String())
	printProfileDetails(profile)
}

func handleProfilesShow(store *profiles.ProfileStore, args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Error: profile name or ID is required\n")
		fmt.Fprintf(os.Stderr, "Usage: newsharvest profiles show <profile>\n")
		os.Exit(1)
	}

	profile, err := findProfile(store, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("ID: %s\n", profile.ProfileID.String())
	printProfileDetails(profile)
	fmt.Printf("  Created: %s\n", profile.CreatedAt.Format("2006-01-02 15:04"))
	if profile.LastRunAt != nil {
		fmt.Printf("  Last run: %s (%d records)\n",
			profile.LastRunAt.Format("2006-01-02 15:04"), profile.LastRecordCount)
	} else {
		fmt.Println("  Last run: never")
	}
}

func handleProfilesDelete(store *profiles.ProfileStore, args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Error: profile name or ID is required\n")
		fmt.Fprintf(os.Stderr, "Usage: newsharvest profiles delete <profile>\n")
		os.Exit(1)
	}

	profile, err := findProfile(store, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := store.DeleteProfile(profile.ProfileID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to delete profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Deleted profile: %s\n", profile.Name)
}

func printProfileDetails(p *profiles.Profile) {
	fmt.Printf("  Name: %s\n", p.Name)
	fmt.Printf("  Site: %s\n", p.Site)
	fmt.Printf("  Keywords: %s\n", strings.Join(p.Keywords, ", "))
	fmt.Printf("  Window: %s to %s\n", p.Start.Format("2006-01-02 15:04"), p.End.Format("2006-01-02 15:04"))
}

// printJSON prints v as indented JSON
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(data))
}
