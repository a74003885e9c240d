package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AisKreme/brot-backer/internal/domain"
	"github.com/AisKreme/brot-backer/internal/logger"
	"github.com/AisKreme/brot-backer/internal/testutil"
)

func newTestStore(t *testing.T) (*FileStore[*domain.Flour], string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mehle.json")
	clk := testutil.NewFakeClock(time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC))
	return NewFileStore[*domain.Flour](path, clk, logger.New(logger.LevelOff, nil)), path
}

func TestFileStoreMissingFile(t *testing.T) {
	store, _ := newTestStore(t)

	items, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFileStoreLegacyBareList(t *testing.T) {
	store, path := newTestStore(t)
	legacy := `[{"id": "mehl_550", "mehlArt": "Weizen", "vorhanden": true, "vorhandenGramm": 1000}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	items, err := store.Load()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "mehl_550", items[0].ID)
	assert.Equal(t, 1000, items[0].OnHandGrams)
}

func TestFileStoreSaveWrapsDocument(t *testing.T) {
	store, path := newTestStore(t)

	require.NoError(t, store.Save([]*domain.Flour{
		{ID: "mehl_550", Kind: "Weizen", OnHand: true, OnHandGrams: 500},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "schema_version")
	assert.Contains(t, doc, "updated_at")
	assert.Contains(t, doc, "items")

	var updated string
	require.NoError(t, json.Unmarshal(doc["updated_at"], &updated))
	assert.Equal(t, "2025-05-02T09:00:00Z", updated)

	items, err := store.Load()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "mehl_550", items[0].ID)
}

func TestFileStorePreservesUnknownTopLevelKeys(t *testing.T) {
	store, path := newTestStore(t)
	existing := `{"schema_version": 3, "migration_note": "von v2", "items": []}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	require.NoError(t, store.Save([]*domain.Flour{{ID: "mehl_550"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))

	var version int
	require.NoError(t, json.Unmarshal(doc["schema_version"], &version))
	assert.Equal(t, 3, version, "existing schema version kept")

	var note string
	require.NoError(t, json.Unmarshal(doc["migration_note"], &note))
	assert.Equal(t, "von v2", note)
}

func TestFileStoreUnreadableFileTreatedAsEmpty(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("kein json"), 0o644))

	items, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFileStoreCreatesDataDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daten", "mehle.json")
	clk := testutil.NewFakeClock(time.Now())
	store := NewFileStore[*domain.Flour](path, clk, logger.New(logger.LevelOff, nil))

	require.NoError(t, store.Save([]*domain.Flour{{ID: "mehl_550"}}))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestProcessRoundTripKeepsExtras(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backvorgaenge.json")
	clk := testutil.NewFakeClock(time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC))
	store := NewProcessFile(path, clk, logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	raw := `[{
        "id": "bv_2025_05_02_001",
        "recipe_id": "rez_landbrot",
        "status": "paused",
        "scale_factor": 1.5,
        "ingredient_usage": [
            {"mehl_id": "mehl_550", "planned_g": 800, "lieferant": "Muehle Meyer"}
        ],
        "experimentelles_feld": {"a": 1}
    }]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	processes, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, processes, 1)

	proc := processes[0]
	assert.Equal(t, domain.StatusPaused, proc.Status)
	assert.Equal(t, 1.5, proc.ScaleFactor)
	require.Len(t, proc.IngredientUsage, 1)

	proc.Notes = "angepasst"
	require.NoError(t, store.SaveAll(ctx, processes))

	reloaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, reloaded, 1)
	assert.Equal(t, "angepasst", reloaded[0].Notes)

	// Unknown fields survive the round trip on the record and the entry.
	assert.Contains(t, reloaded[0].Extra, "experimentelles_feld")
	assert.Contains(t, reloaded[0].IngredientUsage[0].Extra, "lieferant")
}

func TestRecipeFileFindByID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brote.json")
	clk := testutil.NewFakeClock(time.Now())
	store := NewRecipeFile(path, clk, logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	raw := `[{"id": "rez_landbrot", "name": "Landbrot"}, {"id": "rez_dinkel", "name": "Dinkelkruste"}]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	recipe, err := store.FindByID(ctx, "rez_dinkel")
	require.NoError(t, err)
	assert.Equal(t, "Dinkelkruste", recipe.Name)
	assert.Equal(t, "active", recipe.Status, "missing status defaults to active")
	assert.Equal(t, 1, recipe.Version)

	_, err = store.FindByID(ctx, "rez_fehlt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
