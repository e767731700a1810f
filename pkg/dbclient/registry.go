package dbclient

import (
	"log/slog"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a provider factory to the registry.
// Called by provider implementations in their init() functions.
func Register(provider string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[provider] = factory
}

// Get retrieves a provider factory by tag.
func Get(provider string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[provider]
	return f, ok
}

// New constructs an unconnected client for cfg.Provider. No I/O happens
// here; the client connects on Connect. The logger is passed through to
// the provider constructor (nil uses a discard logger).
func New(cfg Config, logger *slog.Logger) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factory, ok := Get(cfg.Provider)
	if !ok {
		return nil, &UnsupportedProviderError{
			Provider:  cfg.Provider,
			Available: Providers(),
		}
	}
	return factory(cfg, logger), nil
}

// Providers returns all registered provider tags (sorted).
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a provider tag is registered.
func IsRegistered(provider string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[provider]
	return ok
}
