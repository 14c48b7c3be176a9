package scenario

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]Definition)
	registryMu sync.RWMutex
)

// Register adds a scenario definition to the registry.
// Panics if the definition is incomplete or the name is already taken;
// registration happens from init() so both are programming errors.
func Register(def Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if def.Name == "" {
		panic("scenario registered without a name")
	}
	if def.Table == "" {
		panic(fmt.Sprintf("scenario %s registered without a destination table", def.Name))
	}
	if def.Defaults.ID == "" {
		panic(fmt.Sprintf("scenario %s registered without a load params id", def.Name))
	}
	if def.NewFetcher == nil || def.NewTransformer == nil || def.NewRepository == nil {
		panic(fmt.Sprintf("scenario %s registered with missing capabilities", def.Name))
	}
	if _, exists := registry[def.Name]; exists {
		panic(fmt.Sprintf("scenario already registered: %s", def.Name))
	}

	registry[def.Name] = def
}

// Get returns a scenario definition by name.
// Returns false if not found.
func Get(name string) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[name]
	return def, ok
}

// Names returns all registered scenario names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered scenarios.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered scenarios.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Definition)
}
