// Package config provides shared configuration types for testrig.
// It is decoupled from CLI concerns so fixtures and other tools can
// load project configuration without pulling in cobra.
package config

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/testrig/pkg/dbclient"
	"github.com/leapstack-labs/testrig/pkg/httpclient"
)

// Config is the project configuration loaded from testrig.yaml.
type Config struct {
	// Default names the Databases entry used when no --db flag is
	// given.
	Default string `koanf:"default"`

	// Databases holds one connection config per logical name.
	Databases map[string]dbclient.Config `koanf:"databases"`

	// HTTP configures the API client used by the doctor command and
	// the HTTP fixture.
	HTTP httpclient.Config `koanf:"http"`

	// MigrationsDir and SeedsDir are resolved relative to the project
	// root at load time.
	MigrationsDir string `koanf:"migrations_dir"`
	SeedsDir      string `koanf:"seeds_dir"`

	Verbose bool   `koanf:"verbose"`
	Format  string `koanf:"format"`
}

// Target resolves a logical database name to its connection config.
// An empty name falls back to Default, then to the sole entry when
// exactly one database is configured.
func (c *Config) Target(name string) (dbclient.Config, error) {
	if name == "" {
		name = c.Default
	}
	if name == "" && len(c.Databases) == 1 {
		for only := range c.Databases {
			name = only
		}
	}
	if name == "" {
		return dbclient.Config{}, fmt.Errorf("no database selected: set 'default' in testrig.yaml or pass --db")
	}

	cfg, ok := c.Databases[name]
	if !ok {
		return dbclient.Config{}, fmt.Errorf("unknown database %q\nAvailable databases: %v", name, c.DatabaseNames())
	}
	return cfg, nil
}

// DatabaseNames returns the configured database names, sorted.
func (c *Config) DatabaseNames() []string {
	names := make([]string, 0, len(c.Databases))
	for name := range c.Databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the loaded configuration. Provider existence against
// the registry is checked when a client is constructed.
func (c *Config) Validate() error {
	for name, db := range c.Databases {
		if db.Provider == "" {
			return fmt.Errorf("database %q: provider is required", name)
		}
	}
	if c.Default != "" {
		if _, ok := c.Databases[c.Default]; !ok {
			return fmt.Errorf("default database %q is not defined\nAvailable databases: %v", c.Default, c.DatabaseNames())
		}
	}
	return nil
}
