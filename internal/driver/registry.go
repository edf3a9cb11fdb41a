package driver

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Driver)
)

// Register adds a driver implementation for its kind. Drivers register
// themselves in init(); the CLI pulls them in with blank imports.
func Register(d Driver) error {
	if d == nil {
		return fmt.Errorf("driver is nil")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	kind := d.Kind()
	if _, exists := registry[kind]; exists {
		return fmt.Errorf("driver for kind %q already registered", kind)
	}

	registry[kind] = d
	return nil
}

// Get retrieves the driver for a kind.
func Get(kind string) (Driver, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	d, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("no driver registered for kind %q", kind)
	}

	return d, nil
}

// Kinds returns the registered kinds in sorted order.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Reset clears registrations (for tests).
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Driver)
}
