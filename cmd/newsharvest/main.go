package main

import (
	"fmt"
	"os"

	"github.com/pevans/newsharvest/scraper"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	settings := loadSettings()

	// Get subcommand
	subcommand := os.Args[1]

	switch subcommand {
	case "run":
		handleRun(settings, os.Args[2:])
	case "profiles":
		if len(os.Args) < 3 {
			printProfilesUsage()
			os.Exit(1)
		}
		handleProfilesCommand(os.Args[2], settings, os.Args[3:])
	case "results":
		handleResults(os.Args[2:])
	case "sites":
		handleSites(settings)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("newsharvest - Keyword news harvester for mirror-style news sites")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  newsharvest <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run        Harvest articles for keywords or a saved profile")
	fmt.Println("  profiles   Manage saved harvest profiles")
	fmt.Println("  results    Export a batch of structured search results")
	fmt.Println("  sites      List known sites")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  NEWSHARVEST_PROFILES_DSN    Path to profile database (default: profiles.db)")
	fmt.Println("  NEWSHARVEST_TIMEOUT         HTTP timeout per request (default: 10s)")
	fmt.Println("  NEWSHARVEST_PARSE_WORKERS   Parse worker count (default: one per CPU)")
	fmt.Println()
	fmt.Println("Configuration is also read from ~/.newsharvest/config.yaml.")
}

func handleSites(s *settings) {
	names := s.file.SiteNames()

	fmt.Printf("%-12s %-8s %-8s %s\n", "NAME", "MODE", "PAGES", "URL")
	fmt.Println("--------------------------------------------------------------------------------")

	for _, name := range names {
		site, err := s.file.Site(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to resolve site %s: %v\n", name, err)
			continue
		}

		url := site.BaseURL
		if site.DiscoveryMode == scraper.DiscoveryFeed {
			url = site.FeedURL
		}

		fmt.Printf("%-12s %-8s %-8s %s\n",
			site.Name,
			site.DiscoveryMode,
			fmt.Sprintf("%d-%d", site.PageStart, site.PageEnd-1),
			url,
		)
	}
}
