package config

// Default configuration values.
const (
	DefaultMigrationsDir = "migrations"
	DefaultSeedsDir      = "seeds"
	DefaultFormat        = "table"
)

// ApplyDefaults applies default values to a Config.
func ApplyDefaults(c *Config) {
	if c == nil {
		return
	}
	if c.MigrationsDir == "" {
		c.MigrationsDir = DefaultMigrationsDir
	}
	if c.SeedsDir == "" {
		c.SeedsDir = DefaultSeedsDir
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
}
