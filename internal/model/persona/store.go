package persona

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Store exposes persona retrieval for handlers and the orchestrator.
// Personas are loaded once at startup and never mutated.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
// Duplicate ids keep the first occurrence.
func NewMemoryStore(items []Persona) *MemoryStore {
	seen := make(map[string]bool, len(items))
	deduped := make([]Persona, 0, len(items))
	for _, item := range items {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		deduped = append(deduped, item)
	}
	return &MemoryStore{items: deduped}
}

// List returns the configured persona list in registration order.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Persona{}, false
}

// LoadFile reads a persona list from a YAML file, letting operators replace
// the built-in seed without a rebuild.
func LoadFile(path string) ([]Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read personas file: %w", err)
	}

	var items []Persona
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse personas file %s: %w", path, err)
	}

	for i, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("personas file %s: entry %d has no id", path, i)
		}
		if item.DisplayName == "" {
			return nil, fmt.Errorf("personas file %s: persona %q has no displayName", path, item.ID)
		}
	}
	return items, nil
}
