package common

import (
	"fmt"
	"sync"
)

// EngineRegistry manages the available route-search engines by name.
// Engines are registered as factories so every Best-of-N run can get a
// fresh instance with no learned state carried over.
type EngineRegistry struct {
	factories map[string]EngineFactory
	mu        sync.RWMutex
}

// Global engine registry instance
var globalRegistry = &EngineRegistry{
	factories: make(map[string]EngineFactory),
}

// Register registers a new engine factory with the given name
func (er *EngineRegistry) Register(name string, factory EngineFactory) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	if _, exists := er.factories[name]; exists {
		return fmt.Errorf("engine '%s' is already registered", name)
	}

	er.factories[name] = factory
	return nil
}

// Get retrieves an engine factory by name
func (er *EngineRegistry) Get(name string) (EngineFactory, error) {
	er.mu.RLock()
	defer er.mu.RUnlock()

	factory, exists := er.factories[name]
	if !exists {
		return nil, fmt.Errorf("engine '%s' not found in registry", name)
	}

	return factory, nil
}

// List returns all registered engine names
func (er *EngineRegistry) List() []string {
	er.mu.RLock()
	defer er.mu.RUnlock()

	names := make([]string, 0, len(er.factories))
	for name := range er.factories {
		names = append(names, name)
	}

	return names
}

// GetGlobalRegistry returns the global engine registry
func GetGlobalRegistry() *EngineRegistry {
	return globalRegistry
}

// RegisterGlobal registers an engine factory in the global registry
func RegisterGlobal(name string, factory EngineFactory) error {
	return globalRegistry.Register(name, factory)
}

// GetGlobal retrieves an engine factory from the global registry
func GetGlobal(name string) (EngineFactory, error) {
	return globalRegistry.Get(name)
}

// ListGlobal returns all registered engine names in the global registry
func ListGlobal() []string {
	return globalRegistry.List()
}
