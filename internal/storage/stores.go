package storage

import (
	"context"

	"github.com/AisKreme/brot-backer/internal/domain"
	"github.com/AisKreme/brot-backer/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.ProcessStore = (*ProcessFile)(nil)
	_ domain.RecipeSource = (*RecipeFile)(nil)
	_ domain.FlourStore   = (*FlourFile)(nil)
)

// ProcessFile persists baking processes in one JSON file.
type ProcessFile struct {
	file *FileStore[*domain.Process]
}

// NewProcessFile creates a file-backed process store.
func NewProcessFile(path string, clk domain.Clock, log *logger.Logger) *ProcessFile {
	return &ProcessFile{file: NewFileStore[*domain.Process](path, clk, log)}
}

// LoadAll returns every stored process in file order.
func (s *ProcessFile) LoadAll(ctx context.Context) ([]*domain.Process, error) {
	return s.file.Load()
}

// SaveAll replaces the stored process list.
func (s *ProcessFile) SaveAll(ctx context.Context, processes []*domain.Process) error {
	return s.file.Save(processes)
}

// RecipeFile reads recipes from one JSON file. The engine never writes
// recipes; authoring lives outside this module.
type RecipeFile struct {
	file *FileStore[*domain.Recipe]
}

// NewRecipeFile creates a file-backed recipe source.
func NewRecipeFile(path string, clk domain.Clock, log *logger.Logger) *RecipeFile {
	return &RecipeFile{file: NewFileStore[*domain.Recipe](path, clk, log)}
}

// List returns every stored recipe in file order.
func (s *RecipeFile) List(ctx context.Context) ([]*domain.Recipe, error) {
	return s.file.Load()
}

// FindByID returns the recipe with the given id.
func (s *RecipeFile) FindByID(ctx context.Context, id string) (*domain.Recipe, error) {
	recipes, err := s.file.Load()
	if err != nil {
		return nil, err
	}
	for _, r := range recipes {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

// FlourFile persists the flour inventory in one JSON file.
type FlourFile struct {
	file *FileStore[*domain.Flour]
}

// NewFlourFile creates a file-backed flour store.
func NewFlourFile(path string, clk domain.Clock, log *logger.Logger) *FlourFile {
	return &FlourFile{file: NewFileStore[*domain.Flour](path, clk, log)}
}

// ListItems returns every inventory item in file order.
func (s *FlourFile) ListItems(ctx context.Context) ([]*domain.Flour, error) {
	return s.file.Load()
}

// Save replaces the stored inventory.
func (s *FlourFile) Save(ctx context.Context, items []*domain.Flour) error {
	return s.file.Save(items)
}
