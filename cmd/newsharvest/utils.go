package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pevans/newsharvest/config"
	"github.com/pevans/newsharvest/harvest"
	"github.com/pevans/newsharvest/record"
)

// settings is the resolved runtime configuration shared by the commands.
type settings struct {
	file         *config.FileConfig
	profilesPath string
	harvest      *harvest.HarvestConfig
}

// loadSettings loads configuration with precedence:
// 1. Environment variables (highest priority)
// 2. Configuration file (~/.newsharvest/config.yaml)
// 3. Default values (lowest priority)
func loadSettings() *settings {
	s := &settings{
		profilesPath: "profiles.db",
		harvest:      harvest.DefaultHarvestConfig(),
	}

	cfg, err := config.LoadConfigFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Continuing with defaults and environment variables...\n\n")
	}

	if cfg != nil {
		s.file = cfg
		if cfg.Profiles.DSN != "" {
			s.profilesPath = cfg.Profiles.DSN
		}
		if cfg.Harvest.Timeout > 0 {
			s.harvest.FetchTimeout = cfg.Harvest.Timeout
		}
		if cfg.Harvest.UserAgent != "" {
			s.harvest.UserAgent = cfg.Harvest.UserAgent
		}
		if cfg.Harvest.ParseWorkers > 0 {
			s.harvest.ParseWorkers = cfg.Harvest.ParseWorkers
		}
	}

	s.profilesPath = getEnv("NEWSHARVEST_PROFILES_DSN", s.profilesPath)
	s.harvest.FetchTimeout = getEnvDuration("NEWSHARVEST_TIMEOUT", s.harvest.FetchTimeout)
	s.harvest.ParseWorkers = getEnvInt("NEWSHARVEST_PARSE_WORKERS", s.harvest.ParseWorkers)

	return s
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration returns a duration from an environment variable or a
// default value if unset or invalid.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s %q, using %v\n", key, value, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvInt returns an integer from an environment variable or a default
// value if unset or invalid.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s %q, using %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// parseDate parses a window bound such as 2024-01-02 or a full
// timestamp. Dates without a zone are UTC; ambiguous day/month order is
// rejected.
func parseDate(s string) (time.Time, error) {
	t, err := record.ParseTimestamp(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// stringList is a flag value that may be given more than once.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("empty value")
	}
	*l = append(*l, value)
	return nil
}

// truncate shortens s to at most n runes for table output.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
