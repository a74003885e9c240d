// Package domain defines the core types and interfaces for the baking
// process engine. All other packages depend on domain; domain depends
// on nothing.
package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// WaterID is the sentinel ingredient id for hydration water. It is
// never matched against the flour inventory.
const WaterID = "wasser"

// Custom keys used for derived-total and settlement bookkeeping on
// Process.Custom.
const (
	CustomHydrationUsed   = "hydration_percent_used"
	CustomFlourTotal      = "flour_total_planned_g"
	CustomHydrationWater  = "hydration_water_planned_g"
	CustomStockDeducted   = "stock_deducted"
	CustomStockDeductedAt = "stock_deducted_at"
	CustomStockMissing    = "stock_missing_ids"
)

// ProcessStatus tracks the lifecycle of a baking process. Transitions
// are monotone except running <-> paused; aborted and completed are
// terminal.
type ProcessStatus string

const (
	StatusPlanned   ProcessStatus = "planned"
	StatusRunning   ProcessStatus = "running"
	StatusPaused    ProcessStatus = "paused"
	StatusCompleted ProcessStatus = "completed"
	StatusAborted   ProcessStatus = "aborted"
)

// Terminal reports whether the status permits no further transitions.
func (s ProcessStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusAborted
}

// RecipeSnapshot is the frozen copy of recipe name and hydration taken
// at process creation. Later recipe edits never affect an existing
// process.
type RecipeSnapshot struct {
	Name             string   `json:"name"`
	HydrationPercent *float64 `json:"hydration_percent"`
}

// Target describes the planned yield of a process.
type Target struct {
	LoafCount          int     `json:"loaf_count"`
	TargetDoughWeightG float64 `json:"target_dough_weight_g"`
}

// IngredientUsage is one ledger entry: planned, actual, and deducted
// grams for a single ingredient. Water is modeled as an entry with
// IngredientID == WaterID.
type IngredientUsage struct {
	IngredientID   string  `json:"mehl_id"`
	PlannedG       float64 `json:"planned_g"`
	ActualG        float64 `json:"actual_g"`
	StockDeductedG float64 `json:"stock_deducted_g"`

	Extra map[string]json.RawMessage `json:"-"`
}

// IsWater reports whether this entry is the hydration water sentinel.
// The comparison ignores case so a hand-edited "Wasser" entry is still
// kept out of the flour totals and the inventory matching.
func (u *IngredientUsage) IsWater() bool {
	return strings.EqualFold(u.IngredientID, WaterID)
}

// StepRun records one execution (or skip) of a process-template step.
type StepRun struct {
	Key                string     `json:"key"`
	Label              string     `json:"label,omitempty"`
	PlannedDurationMin int        `json:"planned_duration_min"`
	ActualStartAt      *time.Time `json:"actual_start_at"`
	ActualEndAt        *time.Time `json:"actual_end_at"`
	ActualDurationMin  *int       `json:"actual_duration_min"`
	AvgTempC           *float64   `json:"avg_temp_c"`
	Note               string     `json:"note"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Open reports whether the step has not been executed or skipped yet.
func (s *StepRun) Open() bool {
	return s.ActualEndAt == nil && s.ActualDurationMin == nil
}

// Skipped reports whether the step was explicitly skipped.
func (s *StepRun) Skipped() bool {
	return s.ActualDurationMin != nil && *s.ActualDurationMin == 0
}

// DisplayName returns the label if set, otherwise the key.
func (s *StepRun) DisplayName() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Key
}

// Outcome holds the optional post-bake rating and quality notes.
type Outcome struct {
	Rating    *int   `json:"rating"`
	Crumb     string `json:"crumb"`
	Crust     string `json:"crust"`
	Volume    string `json:"volume"`
	TasteNote string `json:"taste_note"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Process is the central aggregate: one tracked baking attempt derived
// from a recipe. It is exclusively owned by the caller that created it
// until persisted.
type Process struct {
	ID              string             `json:"id"`
	RecipeID        string             `json:"recipe_id"`
	RecipeVersion   int                `json:"recipe_version"`
	RecipeSnapshot  RecipeSnapshot     `json:"recipe_snapshot"`
	Status          ProcessStatus      `json:"status"`
	PlannedBakeDate string             `json:"planned_bake_date"`
	StartedAt       *time.Time         `json:"started_at"`
	EndedAt         *time.Time         `json:"ended_at"`
	ScaleFactor     float64            `json:"scale_factor"`
	Target          Target             `json:"target"`
	IngredientUsage []*IngredientUsage `json:"ingredient_usage"`
	StepRuns        []*StepRun         `json:"step_runs"`
	Measurements    []map[string]any   `json:"measurements"`
	Outcome         Outcome            `json:"outcome"`
	Issues          []string           `json:"issues"`
	Notes           string             `json:"notes"`
	Attachments     []any              `json:"attachments"`
	Custom          map[string]any     `json:"custom"`
	CreatedAt       *time.Time         `json:"created_at"`
	UpdatedAt       *time.Time         `json:"updated_at"`

	Extra map[string]json.RawMessage `json:"-"`
}

// OpenStepCount returns the number of steps that are still open.
func (p *Process) OpenStepCount() int {
	n := 0
	for _, s := range p.StepRuns {
		if s.Open() {
			n++
		}
	}
	return n
}

// OpenSteps returns the open steps in list order.
func (p *Process) OpenSteps() []*StepRun {
	var out []*StepRun
	for _, s := range p.StepRuns {
		if s.Open() {
			out = append(out, s)
		}
	}
	return out
}

// StockDeducted reports whether inventory has already been deducted
// for this process.
func (p *Process) StockDeducted() bool {
	v, ok := p.Custom[CustomStockDeducted]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}
