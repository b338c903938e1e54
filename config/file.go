package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pevans/newsharvest/scraper"
	"gopkg.in/yaml.v3"
)

// ProfilesConfig represents profile storage configuration from the config
// file.
type ProfilesConfig struct {
	DSN string `yaml:"dsn"`
}

// HarvestConfig represents harvest tuning from the config file. Zero
// values mean "use the built-in default".
type HarvestConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	ParseWorkers int           `yaml:"parse_workers"`
	PageStart    int           `yaml:"page_start"`
	PageEnd      int           `yaml:"page_end"`
}

// FileConfig represents the structure of ~/.newsharvest/config.yaml.
type FileConfig struct {
	Profiles ProfilesConfig       `yaml:"profiles"`
	Harvest  HarvestConfig        `yaml:"harvest"`
	Sites    []scraper.SiteConfig `yaml:"sites"`
}

// LoadConfigFile loads configuration from ~/.newsharvest/config.yaml.
// Returns nil if the file doesn't exist (not an error). Returns error if
// the file exists but cannot be parsed.
func LoadConfigFile() (*FileConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	return LoadConfigPath(filepath.Join(homeDir, ".newsharvest", "config.yaml"))
}

// LoadConfigPath loads configuration from an explicit path with the same
// missing-file semantics as LoadConfigFile.
func LoadConfigPath(configPath string) (*FileConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, nil // File doesn't exist -- not an error
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return &cfg, nil
}

func (c *FileConfig) validate() error {
	if c.Harvest.PageStart < 0 || c.Harvest.PageEnd < 0 {
		return fmt.Errorf("harvest page range must not be negative")
	}
	if c.Harvest.PageEnd != 0 && c.Harvest.PageEnd <= c.Harvest.PageStart {
		return fmt.Errorf("harvest page_end must be greater than page_start")
	}

	seen := make(map[string]bool)
	for i, site := range c.Sites {
		name := strings.ToLower(site.Name)
		if name == "" {
			return fmt.Errorf("site %d has no name", i)
		}
		if site.BaseURL == "" && site.FeedURL == "" {
			return fmt.Errorf("site %q needs a base_url or feed_url", site.Name)
		}
		if seen[name] {
			return fmt.Errorf("site %q is defined twice", site.Name)
		}
		seen[name] = true
	}
	return nil
}

// Site resolves a site by name. Sites defined in the config file take
// precedence over the built-in ones. A configured harvest page range
// replaces the built-in default range but never a site's own range. A nil
// FileConfig resolves built-in sites only.
func (c *FileConfig) Site(name string) (*scraper.SiteConfig, error) {
	if c == nil {
		return scraper.Lookup(name)
	}

	for _, site := range c.Sites {
		if strings.EqualFold(site.Name, name) {
			resolved := site.WithDefaults()
			if site.PageStart == 0 && site.PageEnd == 0 {
				c.applyPageRange(resolved)
			}
			return resolved, nil
		}
	}

	site, err := scraper.Lookup(name)
	if err != nil {
		return nil, err
	}
	c.applyPageRange(site)
	return site, nil
}

func (c *FileConfig) applyPageRange(site *scraper.SiteConfig) {
	if c.Harvest.PageEnd > 0 {
		site.PageStart, site.PageEnd = c.Harvest.PageStart, c.Harvest.PageEnd
	}
}

// SiteNames returns every resolvable site name: built-in sites followed by
// configured ones that are not overrides.
func (c *FileConfig) SiteNames() []string {
	names := scraper.Names()
	if c == nil {
		return names
	}
	for _, site := range c.Sites {
		if _, err := scraper.Lookup(site.Name); err == nil {
			continue
		}
		names = append(names, strings.ToLower(site.Name))
	}
	return names
}
