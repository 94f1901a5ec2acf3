package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownImport is returned for an import kind that was never registered.
var ErrUnknownImport = errors.New("unknown import")

var (
	registry   = make(map[ImportKind]ImportDefinition)
	registryMu sync.RWMutex
)

// Register adds an import definition to the registry.
// Panics if the kind is already registered.
func Register(def ImportDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Kind]; exists {
		panic(fmt.Sprintf("import already registered: %s", def.Info.Kind))
	}

	if len(def.Info.Columns) == 0 && len(def.Columns) > 0 {
		def.Info.Columns = ColumnNames(def.Columns)
	}

	registry[def.Info.Kind] = def
}

// Get returns an import definition by kind.
func Get(kind ImportKind) (ImportDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[kind]
	return def, ok
}

// Lookup is Get with an error that wraps ErrUnknownImport.
func Lookup(kind ImportKind) (ImportDefinition, error) {
	def, ok := Get(kind)
	if !ok {
		return ImportDefinition{}, fmt.Errorf("%w: %q", ErrUnknownImport, kind)
	}
	return def, nil
}

// All returns all registered import definitions sorted by kind.
func All() []ImportDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]ImportDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Kind < result[j].Info.Kind
	})

	return result
}

// ImportCount returns the number of registered import kinds.
func ImportCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered imports.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[ImportKind]ImportDefinition)
}
