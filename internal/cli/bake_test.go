package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AisKreme/brot-backer/internal/domain"
	"github.com/AisKreme/brot-backer/internal/logger"
	"github.com/AisKreme/brot-backer/internal/testutil"
)

func editorApp(input *testutil.ScriptedInput, notify *testutil.RecordingNotifier) *app {
	return &app{
		log:     logger.New(logger.LevelOff, nil),
		console: notify,
		input:   input,
	}
}

func editorProcess() *domain.Process {
	hydration := 70.0
	return &domain.Process{
		ID: "bv_2025_05_02_001",
		RecipeSnapshot: domain.RecipeSnapshot{
			Name:             "Landbrot",
			HydrationPercent: &hydration,
		},
		IngredientUsage: []*domain.IngredientUsage{
			{IngredientID: "mehl_550", PlannedG: 800},
			{IngredientID: "mehl_roggen_1150", PlannedG: 200},
		},
		Custom: map[string]any{},
	}
}

func TestEditLedgerBulkActualToPlanned(t *testing.T) {
	input := testutil.NewScriptedInput(nil)
	notify := &testutil.RecordingNotifier{}
	a := editorApp(input, notify)
	proc := editorProcess()

	input.QueueLines("s", "q")

	require.NoError(t, a.editLedger(context.Background(), proc))
	for _, entry := range proc.IngredientUsage {
		assert.Equal(t, entry.PlannedG, entry.ActualG)
		assert.Equal(t, entry.PlannedG, entry.StockDeductedG)
	}
	assert.True(t, notify.Contains("Ist-Mengen auf Soll gesetzt."))
}

func TestEditLedgerEditEntry(t *testing.T) {
	input := testutil.NewScriptedInput(nil)
	a := editorApp(input, &testutil.RecordingNotifier{})
	proc := editorProcess()

	// Edit entry 1: keep the id, change planned/actual/deduction.
	input.QueueLines("b", "1", "", "850", "830", "820", "q")

	require.NoError(t, a.editLedger(context.Background(), proc))
	entry := proc.IngredientUsage[0]
	assert.Equal(t, "mehl_550", entry.IngredientID)
	assert.Equal(t, 850.0, entry.PlannedG)
	assert.Equal(t, 830.0, entry.ActualG)
	assert.Equal(t, 820.0, entry.StockDeductedG)
}

func TestEditLedgerAddAndRemove(t *testing.T) {
	input := testutil.NewScriptedInput(nil)
	a := editorApp(input, &testutil.RecordingNotifier{})
	proc := editorProcess()

	input.QueueLines(
		"a", "mehl_dinkel_630", "150",
		"d", "2",
		"q",
	)

	require.NoError(t, a.editLedger(context.Background(), proc))
	require.Len(t, proc.IngredientUsage, 2)
	assert.Equal(t, "mehl_550", proc.IngredientUsage[0].IngredientID)

	added := proc.IngredientUsage[1]
	assert.Equal(t, "mehl_dinkel_630", added.IngredientID)
	assert.Equal(t, 150.0, added.PlannedG)
	assert.Equal(t, 150.0, added.ActualG)
}

func TestEditLedgerResyncsTotalsOnExit(t *testing.T) {
	input := testutil.NewScriptedInput(nil)
	a := editorApp(input, &testutil.RecordingNotifier{})
	proc := editorProcess()

	input.QueueLines("a", "mehl_vollkorn", "250", "q")

	require.NoError(t, a.editLedger(context.Background(), proc))
	assert.Equal(t, 1250.0, proc.Custom[domain.CustomFlourTotal])
	assert.Equal(t, 875.0, proc.Custom[domain.CustomHydrationWater])
}

func TestEditLedgerInvalidAction(t *testing.T) {
	input := testutil.NewScriptedInput(nil)
	notify := &testutil.RecordingNotifier{}
	a := editorApp(input, notify)
	proc := editorProcess()

	// Unknown action, then an exhausted script quits the editor.
	input.QueueLines("x")

	require.NoError(t, a.editLedger(context.Background(), proc))
	assert.True(t, notify.Contains("Ungueltige Aktion."))
	assert.Len(t, proc.IngredientUsage, 2)
}
