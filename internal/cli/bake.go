package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AisKreme/brot-backer/internal/display"
	"github.com/AisKreme/brot-backer/internal/domain"
	"github.com/AisKreme/brot-backer/internal/ledger"
	"github.com/AisKreme/brot-backer/internal/prompt"
	"github.com/AisKreme/brot-backer/internal/tracker"
)

func newBakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bake",
		Short: "Manage baking runs",
	}
	cmd.AddCommand(newBakeNewCmd())
	cmd.AddCommand(newBakeResumeCmd())
	cmd.AddCommand(newBakeListCmd())
	cmd.AddCommand(newBakeAbortCmd())
	return cmd
}

func newBakeNewCmd() *cobra.Command {
	var (
		scale float64
		date  string
	)
	cmd := &cobra.Command{
		Use:   "new [recipe-id]",
		Short: "Start a new baking run from a recipe",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.closeLog()
			ctx := cmd.Context()

			recipeID := ""
			if len(args) > 0 {
				recipeID = args[0]
			}
			if recipeID == "" {
				recipeID, err = a.chooseRecipe(ctx)
				if err != nil {
					return err
				}
			}

			proc, err := a.engine.CreateProcess(ctx, recipeID, scale, date)
			if err != nil {
				return err
			}
			a.say(ctx, display.ProcessSummary(proc, ledger.PlannedWaterG(proc)))
			a.say(ctx, display.IngredientTable(proc))

			if err := a.maybeEditLedger(ctx, proc); err != nil {
				return err
			}
			return a.runGuided(ctx, proc)
		},
	}
	cmd.Flags().Float64Var(&scale, "scale", 0, "scale factor (invalid values fall back to the configured default)")
	cmd.Flags().StringVar(&date, "date", "", "planned bake date (YYYY-MM-DD)")
	return cmd
}

func newBakeResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume [process-id]",
		Short: "Resume a planned, running, or paused baking run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.closeLog()
			ctx := cmd.Context()

			var proc *domain.Process
			if len(args) > 0 {
				proc, err = a.engine.Process(ctx, args[0])
				if err != nil {
					return err
				}
				if proc.Status.Terminal() {
					return domain.ErrProcessFinished
				}
			} else {
				proc, err = a.chooseResumable(ctx)
				if err != nil {
					return err
				}
				if proc == nil {
					return nil
				}
			}

			a.say(ctx, display.StepTable(proc))
			return a.runGuided(ctx, proc)
		},
	}
}

func newBakeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List resumable baking runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.closeLog()
			ctx := cmd.Context()

			processes, err := a.engine.Resumable(ctx)
			if err != nil {
				return err
			}
			a.say(ctx, display.ProcessTable(processes))
			return nil
		},
	}
}

func newBakeAbortCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "abort <process-id>",
		Short: "Abort a baking run without touching the inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.closeLog()
			ctx := cmd.Context()

			proc, err := a.engine.Process(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.engine.Abort(proc, reason); err != nil {
				return err
			}
			if err := a.engine.SaveProcess(ctx, proc); err != nil {
				return err
			}
			a.say(ctx, fmt.Sprintf("Backvorgang %s abgebrochen.", proc.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "abort reason appended to the notes")
	return cmd
}

// runGuided executes the tracking loop and, when every step is done,
// offers finalization. State is persisted after each phase so a pause
// or crash loses at most the open step.
func (a *app) runGuided(ctx context.Context, proc *domain.Process) error {
	recipe, err := a.engine.Recipe(ctx, proc.RecipeID)
	if err != nil {
		a.log.Warn("recipe %s not found, tracking without guidance", proc.RecipeID)
		recipe = nil
	}

	sig, err := a.input.ReadSignal("Tracking jetzt starten? (j/n) [j]: ")
	if err != nil {
		return err
	}
	if sig == domain.SignalCancel {
		return a.engine.SaveProcess(ctx, proc)
	}

	outcome, err := a.tracker.Run(ctx, proc, recipe)
	if err != nil {
		if saveErr := a.engine.SaveProcess(ctx, proc); saveErr != nil {
			return saveErr
		}
		return err
	}
	if err := a.engine.SaveProcess(ctx, proc); err != nil {
		return err
	}

	switch outcome {
	case tracker.OutcomePaused:
		a.say(ctx, fmt.Sprintf("Backvorgang %s pausiert. Fortsetzen mit: brotbacker bake resume %s", proc.ID, proc.ID))
		return nil
	case tracker.OutcomeNoSteps:
		return nil
	}

	sig, err = a.input.ReadSignal("Alle Schritte erledigt. Backvorgang jetzt abschliessen? (j/n) [j]: ")
	if err != nil {
		return err
	}
	if sig == domain.SignalCancel {
		a.say(ctx, "Abschluss spaeter moeglich mit: brotbacker bake resume "+proc.ID)
		return nil
	}

	if err := a.settlement.Finalize(ctx, proc); err != nil {
		return err
	}
	if err := a.engine.SaveProcess(ctx, proc); err != nil {
		return err
	}
	a.say(ctx, fmt.Sprintf("Backvorgang %s abgeschlossen.", proc.ID))
	return nil
}

// chooseRecipe lists the active recipes and reads a selection.
func (a *app) chooseRecipe(ctx context.Context) (string, error) {
	recipes, err := a.engine.ActiveRecipes(ctx)
	if err != nil {
		return "", err
	}
	if len(recipes) == 0 {
		return "", fmt.Errorf("keine aktiven Rezepte: %w", domain.ErrNotFound)
	}

	a.say(ctx, "Rezepte:")
	for i, r := range recipes {
		a.say(ctx, fmt.Sprintf("%2d. %s (%s)", i+1, r.Name, r.ID))
	}

	for {
		raw, err := a.input.ReadLine("Rezept waehlen (Nummer): ")
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err == nil && n >= 1 && n <= len(recipes) {
			return recipes[n-1].ID, nil
		}
		a.say(ctx, "Ungueltige Auswahl.")
	}
}

// chooseResumable lists the resumable processes and reads a selection.
// Returns nil when nothing is resumable.
func (a *app) chooseResumable(ctx context.Context) (*domain.Process, error) {
	processes, err := a.engine.Resumable(ctx)
	if err != nil {
		return nil, err
	}
	a.say(ctx, display.ProcessTable(processes))
	if len(processes) == 0 {
		return nil, nil
	}

	for {
		raw, err := a.input.ReadLine("Backvorgang waehlen (Nummer, leer bricht ab): ")
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(raw) == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err == nil && n >= 1 && n <= len(processes) {
			return processes[n-1], nil
		}
		a.say(ctx, "Ungueltige Auswahl.")
	}
}

// maybeEditLedger offers the interactive ledger editor before tracking
// starts and persists the result.
func (a *app) maybeEditLedger(ctx context.Context, proc *domain.Process) error {
	sig, err := a.input.ReadSignal("Zutatenliste anpassen? (j/n) [j]: ")
	if err != nil {
		return err
	}
	if sig != domain.SignalConfirm {
		return nil
	}
	if err := a.editLedger(ctx, proc); err != nil {
		return err
	}
	return a.engine.SaveProcess(ctx, proc)
}

// editLedger runs the add/edit/remove loop over the ingredient ledger.
// Derived totals are resynced once on exit.
func (a *app) editLedger(ctx context.Context, proc *domain.Process) error {
	for {
		a.say(ctx, display.IngredientTable(proc))
		raw, err := a.input.ReadLine("Aktion: [a] hinzufuegen, [b] bearbeiten, [d] loeschen, [s] Ist=Soll fuer alle, [q] fertig: ")
		if err != nil {
			return err
		}

		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "a":
			if err := a.ledgerAdd(proc); err != nil {
				return err
			}
		case "b":
			if err := a.ledgerEdit(ctx, proc); err != nil {
				return err
			}
		case "d":
			if err := a.ledgerRemove(ctx, proc); err != nil {
				return err
			}
		case "s":
			ledger.SetActualToPlannedAll(proc)
			a.say(ctx, "Ist-Mengen auf Soll gesetzt.")
		case "q", "":
			ledger.ResyncDerivedTotals(proc)
			return nil
		default:
			a.say(ctx, "Ungueltige Aktion.")
		}
	}
}

func (a *app) ledgerAdd(proc *domain.Process) error {
	id, err := a.input.ReadLine("Zutat-Id: ")
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	raw, err := a.input.ReadLine("Geplante Menge in g: ")
	if err != nil {
		return err
	}
	planned := 0.0
	if v := prompt.FloatOrNil(raw); v != nil {
		planned = *v
	}
	ledger.Add(proc, id, planned, planned, nil)
	return nil
}

func (a *app) ledgerEdit(ctx context.Context, proc *domain.Process) error {
	index, ok, err := a.ledgerIndex(ctx, proc)
	if err != nil || !ok {
		return err
	}
	entry := proc.IngredientUsage[index]
	var u ledger.Update

	rawID, err := a.input.ReadLine(fmt.Sprintf("Zutat-Id [%s]: ", entry.IngredientID))
	if err != nil {
		return err
	}
	if rawID != "" {
		u.IngredientID = &rawID
	}

	raw, err := a.input.ReadLine(fmt.Sprintf("Geplante Menge in g [%v]: ", entry.PlannedG))
	if err != nil {
		return err
	}
	u.PlannedG = prompt.FloatOrNil(raw)

	raw, err = a.input.ReadLine(fmt.Sprintf("Ist-Menge in g [%v]: ", entry.ActualG))
	if err != nil {
		return err
	}
	u.ActualG = prompt.FloatOrNil(raw)

	raw, err = a.input.ReadLine(fmt.Sprintf("Abzug in g [%v]: ", entry.StockDeductedG))
	if err != nil {
		return err
	}
	u.StockDeductedG = prompt.FloatOrNil(raw)

	ledger.Apply(proc, index, u)
	return nil
}

func (a *app) ledgerRemove(ctx context.Context, proc *domain.Process) error {
	index, ok, err := a.ledgerIndex(ctx, proc)
	if err != nil || !ok {
		return err
	}
	ledger.Remove(proc, index)
	return nil
}

// ledgerIndex reads a 1-based entry number and converts it to an index.
func (a *app) ledgerIndex(ctx context.Context, proc *domain.Process) (int, bool, error) {
	raw, err := a.input.ReadLine("Eintrag (Nummer): ")
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > len(proc.IngredientUsage) {
		a.say(ctx, "Ungueltige Nummer.")
		return 0, false, nil
	}
	return n - 1, true, nil
}

func (a *app) say(ctx context.Context, msg string) {
	if err := a.console.Notify(ctx, msg); err != nil {
		a.log.Error("notify: %v", err)
	}
}
