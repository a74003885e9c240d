// Package settlement implements process finalization: ledger
// reconciliation, outcome capture, and the idempotent deduction of
// consumed quantities from the flour inventory.
package settlement

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/AisKreme/brot-backer/internal/domain"
	"github.com/AisKreme/brot-backer/internal/ledger"
	"github.com/AisKreme/brot-backer/internal/logger"
	"github.com/AisKreme/brot-backer/internal/prompt"
)

// StockChange records one applied inventory deduction.
type StockChange struct {
	FlourID   string
	BeforeG   int
	AfterG    int
	DeductedG int
}

// DeductionResult summarizes one settlement's inventory effects.
type DeductionResult struct {
	// AlreadyDeducted is true when the idempotence guard fired and
	// nothing was touched.
	AlreadyDeducted bool
	Changes         []StockChange
	MissingIDs      []string
}

// Service finalizes baking processes against the flour inventory.
// Single-writer per settlement call; the stock_deducted flag on the
// process record is the only double-deduction safeguard.
type Service struct {
	flours domain.FlourStore
	clock  domain.Clock
	input  domain.OperatorInput
	notify domain.Notifier
	log    *logger.Logger
}

// New creates a settlement service.
func New(flours domain.FlourStore, clk domain.Clock, input domain.OperatorInput, notify domain.Notifier, log *logger.Logger) *Service {
	return &Service{
		flours: flours,
		clock:  clk,
		input:  input,
		notify: notify,
		log:    log,
	}
}

// Finalize completes a process: status, timestamps, ledger actuals,
// outcome, and the inventory deduction. Finalization is the only path
// that sets ended_at for a normal completion.
func (s *Service) Finalize(ctx context.Context, proc *domain.Process) error {
	if proc.Status == domain.StatusAborted {
		return domain.ErrProcessFinished
	}

	now := s.clock.Now()
	proc.Status = domain.StatusCompleted
	if proc.StartedAt == nil {
		proc.StartedAt = &now
	}
	proc.EndedAt = &now

	if err := s.reconcileLedger(ctx, proc); err != nil {
		return err
	}
	s.captureOutcome(proc)

	_, err := s.DeductStock(ctx, proc)
	if err != nil {
		return err
	}

	s.log.Info("process %s finalized", proc.ID)
	return nil
}

// reconcileLedger fills the actual consumption. Bulk accept copies
// every planned amount; otherwise each entry is prompted with the
// planned value as default.
func (s *Service) reconcileLedger(ctx context.Context, proc *domain.Process) error {
	if len(proc.IngredientUsage) == 0 {
		return nil
	}

	sig, err := s.input.ReadSignal("Soll geplante Mehlmenge als Ist-Verbrauch uebernommen werden? (j/n) [j]: ")
	if err != nil {
		return err
	}
	// Only an explicit yes (or ENTER) takes the bulk path; anything
	// else falls through to per-entry prompting.
	if sig == domain.SignalConfirm {
		ledger.SetActualToPlannedAll(proc)
		return nil
	}

	for _, entry := range proc.IngredientUsage {
		raw, err := s.input.ReadLine(fmt.Sprintf("Ist-Verbrauch fuer %s in g [%v]: ", entry.IngredientID, entry.PlannedG))
		if err != nil {
			return err
		}
		actual := entry.PlannedG
		if v := prompt.FloatOrNil(raw); v != nil {
			actual = *v
		}
		entry.ActualG = round3(math.Max(0, actual))
		entry.StockDeductedG = entry.ActualG
	}
	return nil
}

// captureOutcome asks for the optional rating and quality notes.
// Malformed numbers fall back to "unset"; supplied notes overwrite the
// process notes.
func (s *Service) captureOutcome(proc *domain.Process) {
	read := func(p string) string {
		line, err := s.input.ReadLine(p)
		if err != nil {
			return ""
		}
		return line
	}

	if r := prompt.IntOrNil(read("Bewertung 1-5: ")); r != nil {
		rating := *r
		if rating < 1 {
			rating = 1
		}
		if rating > 5 {
			rating = 5
		}
		proc.Outcome.Rating = &rating
	}
	if v := read("Krume: "); v != "" {
		proc.Outcome.Crumb = v
	}
	if v := read("Kruste: "); v != "" {
		proc.Outcome.Crust = v
	}
	if v := read("Volumen: "); v != "" {
		proc.Outcome.Volume = v
	}
	if v := read("Geschmacksnotiz: "); v != "" {
		proc.Outcome.TasteNote = v
	}
	if v := read("Notizen zum Backvorgang: "); v != "" {
		proc.Notes = v
	}
}

// DeductStock subtracts the consumed quantities from the flour
// inventory exactly once per process lifetime. Entries without an
// inventory match are collected, not failed; the water sentinel is
// never matched.
func (s *Service) DeductStock(ctx context.Context, proc *domain.Process) (DeductionResult, error) {
	var result DeductionResult

	if proc.StockDeducted() {
		s.say(ctx, "Mehlbestand wurde fuer diesen Backvorgang bereits abgebucht.")
		result.AlreadyDeducted = true
		return result, nil
	}

	items, err := s.flours.ListItems(ctx)
	if err != nil {
		return result, fmt.Errorf("listing inventory: %w", err)
	}

	index := make(map[string]*domain.Flour, len(items))
	for _, item := range items {
		if item.ID != "" {
			index[item.ID] = item
		}
	}

	missing := map[string]struct{}{}
	for _, entry := range proc.IngredientUsage {
		item, ok := index[entry.IngredientID]
		if !ok {
			if entry.IngredientID != "" && !entry.IsWater() {
				missing[entry.IngredientID] = struct{}{}
			}
			continue
		}

		target := entry.StockDeductedG
		if target <= 0 {
			target = entry.ActualG
		}
		amount := int(math.Round(math.Max(0, target)))
		if amount <= 0 {
			continue
		}

		before := item.OnHandGrams
		after := before - amount
		if after < 0 {
			after = 0
		}
		item.OnHandGrams = after
		item.OnHand = after > 0

		result.Changes = append(result.Changes, StockChange{
			FlourID:   item.ID,
			BeforeG:   before,
			AfterG:    after,
			DeductedG: amount,
		})
	}

	if proc.Custom == nil {
		proc.Custom = map[string]any{}
	}

	if len(result.Changes) > 0 {
		if err := s.flours.Save(ctx, items); err != nil {
			return result, fmt.Errorf("saving inventory: %w", err)
		}
		proc.Custom[domain.CustomStockDeducted] = true
		proc.Custom[domain.CustomStockDeductedAt] = s.clock.Now().Format(time.RFC3339)
	} else {
		proc.Custom[domain.CustomStockDeducted] = false
	}

	if len(missing) > 0 {
		ids := make([]string, 0, len(missing))
		for id := range missing {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		result.MissingIDs = ids
		proc.Custom[domain.CustomStockMissing] = ids
	}

	s.report(ctx, result)
	return result, nil
}

func (s *Service) report(ctx context.Context, result DeductionResult) {
	if len(result.Changes) > 0 {
		s.say(ctx, "Mehlbestand aktualisiert:")
		for _, c := range result.Changes {
			s.say(ctx, fmt.Sprintf("- %s: %dg -> %dg (-%dg)", c.FlourID, c.BeforeG, c.AfterG, c.DeductedG))
		}
	} else if !result.AlreadyDeducted {
		s.say(ctx, "Keine Mehl-Abbuchung notwendig.")
	}
	if len(result.MissingIDs) > 0 {
		s.say(ctx, "Nicht im Bestand gefuehrt:")
		for _, id := range result.MissingIDs {
			s.say(ctx, "- "+id)
		}
	}
}

func (s *Service) say(ctx context.Context, msg string) {
	if err := s.notify.Notify(ctx, msg); err != nil {
		s.log.Error("notify: %v", err)
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
