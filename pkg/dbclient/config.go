package dbclient

// Config describes one database target.
type Config struct {
	// Provider selects the client implementation (registry tag).
	Provider string `koanf:"provider" yaml:"provider"`

	// Network backends.
	Host     string `koanf:"host" yaml:"host,omitempty"`
	Port     int    `koanf:"port" yaml:"port,omitempty"`
	Database string `koanf:"database" yaml:"database,omitempty"`
	Username string `koanf:"username" yaml:"username,omitempty"`
	Password string `koanf:"password" yaml:"password,omitempty"`

	// File-based backends (sqlite, duckdb). Empty means in-memory.
	Path string `koanf:"path" yaml:"path,omitempty"`

	// URL is a full connection string. When set it overrides the
	// discrete fields above.
	URL string `koanf:"url" yaml:"url,omitempty"`

	// TLS enables transport encryption where the provider supports it.
	TLS bool `koanf:"tls" yaml:"tls,omitempty"`

	// Pool bounds, applied to the database/sql pool. Zero keeps the
	// driver default.
	PoolMin int `koanf:"pool_min" yaml:"pool_min,omitempty"`
	PoolMax int `koanf:"pool_max" yaml:"pool_max,omitempty"`

	// Options holds additional driver-specific connection parameters.
	Options map[string]string `koanf:"options" yaml:"options,omitempty"`
}

// Validate checks the fields the factory depends on. Provider existence
// against the registry is checked by New.
func (c Config) Validate() error {
	if c.Provider == "" {
		return &ConfigurationError{Field: "provider", Message: "not specified"}
	}
	if c.Port < 0 || c.Port > 65535 {
		return &ConfigurationError{Field: "port", Message: "out of range"}
	}
	return nil
}
