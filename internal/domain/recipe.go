package domain

import (
	"encoding/json"
	"time"
)

// FlourShare is one flour position in the recipe formula.
type FlourShare struct {
	FlourID string  `json:"mehl_id"`
	Percent float64 `json:"percent"`
	AmountG float64 `json:"amount_g"`
}

// Starter describes an optional sourdough starter.
type Starter struct {
	AmountG          float64 `json:"amount_g"`
	HydrationPercent float64 `json:"hydration_percent"`
}

// ExtraIngredient is an additional non-flour ingredient (seeds, oil,
// spices).
type ExtraIngredient struct {
	Name    string  `json:"name"`
	AmountG float64 `json:"amount_g"`
	Unit    string  `json:"unit,omitempty"`
	Note    string  `json:"note,omitempty"`
}

// Formula holds the recipe's base quantities at scale factor 1.0.
type Formula struct {
	Flours                []FlourShare      `json:"flours"`
	WaterG                float64           `json:"water_g"`
	SaltG                 float64           `json:"salt_g"`
	Starter               *Starter          `json:"starter"`
	AdditionalIngredients []ExtraIngredient `json:"additional_ingredients"`
}

// Yield holds the recipe's default output.
type Yield struct {
	LoafCountDefault   int     `json:"loaf_count_default"`
	TargetDoughWeightG float64 `json:"target_dough_weight_g"`
}

// Targets holds the recipe's dough targets.
type Targets struct {
	HydrationPercent float64  `json:"hydration_percent"`
	DoughTempC       *float64 `json:"dough_temp_c"`
}

// TemplateStep is one planned step in the recipe's process template.
type TemplateStep struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	DurationMin int      `json:"duration_min"`
	TargetTempC *float64 `json:"target_temp_c"`
}

// BakePhase is one phase of the bake profile, used only for operator
// guidance during the "backen" step.
type BakePhase struct {
	Phase       string  `json:"phase"`
	DurationMin int     `json:"duration_min"`
	TempC       float64 `json:"temp_c"`
	Steam       bool    `json:"steam"`
}

// Recipe is a bread recipe. The process engine only reads recipes;
// authoring and editing live outside this module.
type Recipe struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Status          string         `json:"status"`
	Version         int            `json:"version"`
	Tags            []string       `json:"tags"`
	Yield           Yield          `json:"yield"`
	Formula         Formula        `json:"formula"`
	Targets         Targets        `json:"targets"`
	ProcessTemplate []TemplateStep `json:"process_template"`
	BakeProfile     []BakePhase    `json:"bake_profile"`
	Notes           string         `json:"notes"`
	Custom          map[string]any `json:"custom"`
	CreatedAt       *time.Time     `json:"created_at"`
	UpdatedAt       *time.Time     `json:"updated_at"`
	ArchivedAt      *time.Time     `json:"archived_at"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Archived reports whether the recipe is no longer offered for new
// processes.
func (r *Recipe) Archived() bool {
	return r.Status == "archived"
}

// TemplateStepByKey returns the template step with the given key, or
// nil if the recipe has no such step.
func (r *Recipe) TemplateStepByKey(key string) *TemplateStep {
	for i := range r.ProcessTemplate {
		if r.ProcessTemplate[i].Key == key {
			return &r.ProcessTemplate[i]
		}
	}
	return nil
}

func (r *Recipe) UnmarshalJSON(data []byte) error {
	type alias Recipe
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Recipe(a)
	if r.Status == "" {
		r.Status = "active"
	}
	if r.Version == 0 {
		r.Version = 1
	}
	extras, err := captureExtras(data, alias(*r))
	if err != nil {
		return err
	}
	r.Extra = extras
	return nil
}

func (r Recipe) MarshalJSON() ([]byte, error) {
	type alias Recipe
	return marshalWithExtras(alias(r), r.Extra)
}
