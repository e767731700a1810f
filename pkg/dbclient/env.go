package dbclient

import (
	"log/slog"
	"os"
	"strconv"
)

// Environment variables consumed by the env-derived construction path.
// Everything except the provider selector is optional.
const (
	EnvProvider = "TESTRIG_DB_PROVIDER"
	EnvHost     = "TESTRIG_DB_HOST"
	EnvPort     = "TESTRIG_DB_PORT"
	EnvName     = "TESTRIG_DB_NAME"
	EnvDatabase = "TESTRIG_DB_DATABASE"
	EnvUser     = "TESTRIG_DB_USER"
	EnvPassword = "TESTRIG_DB_PASSWORD"
	EnvPath     = "TESTRIG_DB_PATH"
	EnvURL      = "TESTRIG_DB_URL"
	EnvTLS      = "TESTRIG_DB_TLS"
	EnvPoolMin  = "TESTRIG_DB_POOL_MIN"
	EnvPoolMax  = "TESTRIG_DB_POOL_MAX"
)

// ConfigFromEnv builds a Config from the TESTRIG_DB_* variables.
// A missing provider selector fails with MissingConfigurationError
// before any client is constructed.
func ConfigFromEnv() (Config, error) {
	provider := os.Getenv(EnvProvider)
	if provider == "" {
		return Config{}, &MissingConfigurationError{Key: EnvProvider}
	}

	cfg := Config{
		Provider: provider,
		Host:     os.Getenv(EnvHost),
		Database: os.Getenv(EnvName),
		Username: os.Getenv(EnvUser),
		Password: os.Getenv(EnvPassword),
		Path:     os.Getenv(EnvPath),
		URL:      os.Getenv(EnvURL),
	}
	if cfg.Database == "" {
		cfg.Database = os.Getenv(EnvDatabase)
	}

	var err error
	if cfg.Port, err = envInt(EnvPort); err != nil {
		return Config{}, err
	}
	if cfg.PoolMin, err = envInt(EnvPoolMin); err != nil {
		return Config{}, err
	}
	if cfg.PoolMax, err = envInt(EnvPoolMax); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(EnvTLS); v != "" {
		t, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, &ConfigurationError{Field: EnvTLS, Message: "must be a boolean"}
		}
		cfg.TLS = t
	}

	return cfg, nil
}

// NewFromEnv constructs an unconnected client from the process
// environment. See ConfigFromEnv for the variables consumed.
func NewFromEnv(logger *slog.Logger) (Client, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return New(cfg, logger)
}

func envInt(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ConfigurationError{Field: key, Message: "must be an integer"}
	}
	return n, nil
}
