package config

import (
	"fmt"
	"os"
)

// ValidateMigrationsDir checks if the migrations directory exists.
// Called by commands that read it, so help and init work without one.
func ValidateMigrationsDir(c *Config) error {
	if _, err := os.Stat(c.MigrationsDir); os.IsNotExist(err) {
		return fmt.Errorf("migrations directory does not exist: %s\nHint: Create the directory or use --migrations-dir to specify a different path", c.MigrationsDir)
	}
	return nil
}

// ValidateSeedsDir checks if the seeds directory exists.
func ValidateSeedsDir(c *Config) error {
	if _, err := os.Stat(c.SeedsDir); os.IsNotExist(err) {
		return fmt.Errorf("seeds directory does not exist: %s\nHint: Create the directory or use --seeds-dir to specify a different path", c.SeedsDir)
	}
	return nil
}
