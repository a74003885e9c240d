package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessDecodeDefaults(t *testing.T) {
	var p Process
	require.NoError(t, json.Unmarshal([]byte(`{"id": "bv_2025_05_02_001"}`), &p))

	assert.Equal(t, StatusPlanned, p.Status)
	assert.Equal(t, 1.0, p.ScaleFactor)
	assert.Nil(t, p.StartedAt)
}

func TestIngredientUsageLegacyKey(t *testing.T) {
	var u IngredientUsage
	require.NoError(t, json.Unmarshal([]byte(`{"ingredient_id": "mehl_550", "planned_g": 800}`), &u))
	assert.Equal(t, "mehl_550", u.IngredientID)

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"mehl_id":"mehl_550"`)
	assert.NotContains(t, string(out), "ingredient_id")

	// The current key wins when both are present.
	require.NoError(t, json.Unmarshal([]byte(`{"mehl_id": "mehl_neu", "ingredient_id": "mehl_alt"}`), &u))
	assert.Equal(t, "mehl_neu", u.IngredientID)
}

func TestExtrasRoundTrip(t *testing.T) {
	raw := `{"key": "autolyse", "planned_duration_min": 30, "geraete_id": "thermo_1"}`

	var s StepRun
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, "autolyse", s.Key)
	require.Contains(t, s.Extra, "geraete_id")

	out, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, `"thermo_1"`, string(decoded["geraete_id"]))
}

func TestExtrasNeverShadowKnownKeys(t *testing.T) {
	var s StepRun
	require.NoError(t, json.Unmarshal([]byte(`{"key": "backen"}`), &s))
	s.Extra = map[string]json.RawMessage{"key": json.RawMessage(`"manipuliert"`)}

	out, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded struct {
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "backen", decoded.Key)
}

func TestStepRunState(t *testing.T) {
	step := &StepRun{Key: "autolyse", PlannedDurationMin: 30}
	assert.True(t, step.Open())
	assert.False(t, step.Skipped())
	assert.Equal(t, "autolyse", step.DisplayName())

	step.Label = "Autolyse"
	assert.Equal(t, "Autolyse", step.DisplayName())

	zero := 0
	step.ActualDurationMin = &zero
	assert.False(t, step.Open())
	assert.True(t, step.Skipped())

	one := 1
	step.ActualDurationMin = &one
	assert.False(t, step.Skipped())
}

func TestProcessStockDeducted(t *testing.T) {
	p := &Process{}
	assert.False(t, p.StockDeducted())

	p.Custom = map[string]any{CustomStockDeducted: false}
	assert.False(t, p.StockDeducted())

	p.Custom[CustomStockDeducted] = true
	assert.True(t, p.StockDeducted())

	// A decoded JSON value can arrive as a non-bool.
	p.Custom[CustomStockDeducted] = "true"
	assert.False(t, p.StockDeducted())
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPlanned.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.False(t, StatusPaused.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusAborted.Terminal())
}
