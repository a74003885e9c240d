package engine

import (
	"math"
	"time"

	"github.com/AisKreme/brot-backer/internal/domain"
)

// round3 rounds to three decimals, the precision used for all planned
// gram quantities.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Build constructs a fully populated Process from a recipe and a scale
// factor. Pure computation, no I/O. A scale factor <= 0 is clamped to
// 1.0; rejecting bad input is the caller's job, the clamp is the safe
// default.
func Build(recipe *domain.Recipe, scaleFactor float64, plannedBakeDate string, existingIDs []string, now time.Time) *domain.Process {
	if scaleFactor <= 0 {
		scaleFactor = 1.0
	}

	usage := make([]*domain.IngredientUsage, 0, len(recipe.Formula.Flours)+1)
	for _, share := range recipe.Formula.Flours {
		usage = append(usage, &domain.IngredientUsage{
			IngredientID: share.FlourID,
			PlannedG:     round3(share.AmountG * scaleFactor),
		})
	}

	flourTotal := FlourTotalG(recipe, scaleFactor)
	water := HydrationWaterG(recipe, scaleFactor, flourTotal)
	if water > 0 {
		usage = append(usage, &domain.IngredientUsage{
			IngredientID: domain.WaterID,
			PlannedG:     water,
		})
	}

	steps := make([]*domain.StepRun, 0, len(recipe.ProcessTemplate))
	for _, tmpl := range recipe.ProcessTemplate {
		steps = append(steps, &domain.StepRun{
			Key:                tmpl.Key,
			Label:              tmpl.Label,
			PlannedDurationMin: tmpl.DurationMin,
		})
	}

	loafCount := int(math.Round(float64(recipe.Yield.LoafCountDefault) * scaleFactor))
	if loafCount < 1 {
		loafCount = 1
	}

	hydration := recipe.Targets.HydrationPercent

	return &domain.Process{
		ID:            AllocateID(now, existingIDs),
		RecipeID:      recipe.ID,
		RecipeVersion: recipe.Version,
		RecipeSnapshot: domain.RecipeSnapshot{
			Name:             recipe.Name,
			HydrationPercent: &hydration,
		},
		Status:          domain.StatusPlanned,
		PlannedBakeDate: plannedBakeDate,
		ScaleFactor:     scaleFactor,
		Target: domain.Target{
			LoafCount:          loafCount,
			TargetDoughWeightG: round3(recipe.Yield.TargetDoughWeightG * scaleFactor),
		},
		IngredientUsage: usage,
		StepRuns:        steps,
		Measurements:    []map[string]any{},
		Issues:          []string{},
		Attachments:     []any{},
		Custom: map[string]any{
			domain.CustomHydrationUsed:  hydration,
			domain.CustomFlourTotal:     flourTotal,
			domain.CustomHydrationWater: water,
		},
	}
}

// FlourTotalG is the scaled sum of all non-negative flour share
// amounts, rounded to three decimals.
func FlourTotalG(recipe *domain.Recipe, scaleFactor float64) float64 {
	sum := 0.0
	for _, share := range recipe.Formula.Flours {
		sum += math.Max(0, share.AmountG) * scaleFactor
	}
	return round3(sum)
}

// HydrationWaterG derives the planned water from the hydration target
// over the total flour. Recipes without a usable hydration fall back
// to the scaled base water amount.
func HydrationWaterG(recipe *domain.Recipe, scaleFactor, flourTotalG float64) float64 {
	hydration := recipe.Targets.HydrationPercent
	if hydration > 0 && flourTotalG > 0 {
		return round3(flourTotalG * hydration / 100)
	}
	return round3(math.Max(0, recipe.Formula.WaterG) * scaleFactor)
}
