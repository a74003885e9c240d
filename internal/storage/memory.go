package storage

import (
	"context"
	"sync"

	"github.com/AisKreme/brot-backer/internal/domain"
)

// Compile-time interface checks.
var (
	_ domain.ProcessStore = (*MemoryProcessStore)(nil)
	_ domain.RecipeSource = (*MemoryRecipeSource)(nil)
	_ domain.FlourStore   = (*MemoryFlourStore)(nil)
)

// MemoryProcessStore is an in-memory process store. Safe for
// concurrent access.
type MemoryProcessStore struct {
	mu        sync.RWMutex
	processes []*domain.Process
}

// NewMemoryProcessStore creates an empty in-memory process store.
func NewMemoryProcessStore() *MemoryProcessStore {
	return &MemoryProcessStore{}
}

// LoadAll returns the stored processes in insertion order.
func (s *MemoryProcessStore) LoadAll(ctx context.Context) ([]*domain.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Process, len(s.processes))
	copy(out, s.processes)
	return out, nil
}

// SaveAll replaces the stored process list.
func (s *MemoryProcessStore) SaveAll(ctx context.Context, processes []*domain.Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processes = make([]*domain.Process, len(processes))
	copy(s.processes, processes)
	return nil
}

// MemoryRecipeSource serves a fixed recipe list.
type MemoryRecipeSource struct {
	mu      sync.RWMutex
	recipes []*domain.Recipe
}

// NewMemoryRecipeSource creates a recipe source over the given list.
func NewMemoryRecipeSource(recipes ...*domain.Recipe) *MemoryRecipeSource {
	return &MemoryRecipeSource{recipes: recipes}
}

// List returns all recipes.
func (s *MemoryRecipeSource) List(ctx context.Context) ([]*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Recipe, len(s.recipes))
	copy(out, s.recipes)
	return out, nil
}

// FindByID returns the recipe with the given id.
func (s *MemoryRecipeSource) FindByID(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.recipes {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

// MemoryFlourStore is an in-memory flour inventory.
type MemoryFlourStore struct {
	mu    sync.RWMutex
	items []*domain.Flour
}

// NewMemoryFlourStore creates an inventory over the given items.
func NewMemoryFlourStore(items ...*domain.Flour) *MemoryFlourStore {
	return &MemoryFlourStore{items: items}
}

// ListItems returns all inventory items.
func (s *MemoryFlourStore) ListItems(ctx context.Context) ([]*domain.Flour, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Flour, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Save replaces the stored inventory.
func (s *MemoryFlourStore) Save(ctx context.Context, items []*domain.Flour) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]*domain.Flour, len(items))
	copy(s.items, items)
	return nil
}
