// Package ledger implements the ingredient-usage ledger of a baking
// process: planned, actual, and deducted gram quantities per
// ingredient, and the derived totals kept on the process record.
//
// All operations are pure mutations on the process aggregate; nothing
// here persists. Call ResyncDerivedTotals after any structural edit so
// downstream consumers never see stale totals.
package ledger

import (
	"encoding/json"
	"math"

	"github.com/AisKreme/brot-backer/internal/domain"
)

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clamp(v float64) float64 {
	return round3(math.Max(0, v))
}

// Add appends a new entry. Amounts are clamped to >= 0. When
// stockDeducted is nil it defaults to the actual amount.
func Add(p *domain.Process, ingredientID string, plannedG, actualG float64, stockDeductedG *float64) {
	if ingredientID == "" {
		return
	}
	entry := &domain.IngredientUsage{
		IngredientID: ingredientID,
		PlannedG:     clamp(plannedG),
		ActualG:      clamp(actualG),
	}
	if stockDeductedG != nil {
		entry.StockDeductedG = clamp(*stockDeductedG)
	} else {
		entry.StockDeductedG = entry.ActualG
	}
	p.IngredientUsage = append(p.IngredientUsage, entry)
}

// Update describes an in-place edit of one entry. Nil fields stay
// unchanged; provided amounts are clamped to >= 0.
type Update struct {
	IngredientID   *string
	PlannedG       *float64
	ActualG        *float64
	StockDeductedG *float64
}

// Apply updates the entry at index. Out-of-range indexes are ignored.
func Apply(p *domain.Process, index int, u Update) {
	if index < 0 || index >= len(p.IngredientUsage) {
		return
	}
	entry := p.IngredientUsage[index]
	if u.IngredientID != nil && *u.IngredientID != "" {
		entry.IngredientID = *u.IngredientID
	}
	if u.PlannedG != nil {
		entry.PlannedG = clamp(*u.PlannedG)
	}
	if u.ActualG != nil {
		entry.ActualG = clamp(*u.ActualG)
	}
	if u.StockDeductedG != nil {
		entry.StockDeductedG = clamp(*u.StockDeductedG)
	}
}

// Remove deletes the entry at index. Out-of-range indexes are ignored.
func Remove(p *domain.Process, index int) {
	if index < 0 || index >= len(p.IngredientUsage) {
		return
	}
	p.IngredientUsage = append(p.IngredientUsage[:index], p.IngredientUsage[index+1:]...)
}

// SetActualToPlannedAll copies every planned amount into the actual
// amount and the deduction amount.
func SetActualToPlannedAll(p *domain.Process) {
	for _, entry := range p.IngredientUsage {
		entry.ActualG = clamp(entry.PlannedG)
		entry.StockDeductedG = entry.ActualG
	}
}

// FlourTotalPlannedG is the sum of planned amounts across all
// non-water entries.
func FlourTotalPlannedG(p *domain.Process) float64 {
	sum := 0.0
	for _, entry := range p.IngredientUsage {
		if entry.IsWater() {
			continue
		}
		sum += math.Max(0, entry.PlannedG)
	}
	return round3(sum)
}

// PlannedWaterG returns the planned water for the process. Preference
// order: the dedicated water entry, the stored derived total, then the
// snapshot hydration over the non-water planned sum. Zero when nothing
// applies.
func PlannedWaterG(p *domain.Process) float64 {
	for _, entry := range p.IngredientUsage {
		if entry.IsWater() {
			return clamp(entry.PlannedG)
		}
	}

	// Older records may carry the amount only in the bookkeeping map.
	if v, ok := p.Custom[domain.CustomHydrationWater]; ok {
		if f, ok := toFloat(v); ok {
			return clamp(f)
		}
	}

	hydration := p.RecipeSnapshot.HydrationPercent
	flourSum := FlourTotalPlannedG(p)
	if hydration != nil && *hydration > 0 && flourSum > 0 {
		return round3(flourSum * *hydration / 100)
	}
	return 0
}

// ResyncDerivedTotals recomputes the derived totals stored on the
// process from the current ledger contents.
func ResyncDerivedTotals(p *domain.Process) {
	if p.Custom == nil {
		p.Custom = map[string]any{}
	}
	p.Custom[domain.CustomFlourTotal] = FlourTotalPlannedG(p)
	p.Custom[domain.CustomHydrationWater] = PlannedWaterG(p)
}

// toFloat widens the numeric types a decoded JSON custom map can hold.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
