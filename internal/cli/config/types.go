// Package config provides configuration management for the testrig CLI.
//
// The shared configuration types live in internal/config and are
// re-exported here via type aliases so command code can use
// config.Config without a second import.
package config

import (
	sharedcfg "github.com/leapstack-labs/testrig/internal/config"
)

// Config is an alias for the shared project configuration.
type Config = sharedcfg.Config

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultMigrationsDir = sharedcfg.DefaultMigrationsDir
	DefaultSeedsDir      = sharedcfg.DefaultSeedsDir
	DefaultFormat        = sharedcfg.DefaultFormat
)
