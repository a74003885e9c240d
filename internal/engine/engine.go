// Package engine implements the baking process lifecycle: building new
// processes from recipes, allocating ids, and the process-level status
// transitions.
package engine

import (
	"context"
	"fmt"

	"github.com/AisKreme/brot-backer/internal/domain"
	"github.com/AisKreme/brot-backer/internal/logger"
)

// Option configures the engine.
type Option func(*Engine)

// WithDefaultScale sets the scale factor substituted for invalid
// (<= 0) input. Defaults to 1.0.
func WithDefaultScale(f float64) Option {
	return func(e *Engine) {
		if f > 0 {
			e.defaultScale = f
		}
	}
}

// Engine manages baking processes. It depends only on interfaces and
// is fully testable with fakes.
type Engine struct {
	recipes      domain.RecipeSource
	store        domain.ProcessStore
	clock        domain.Clock
	log          *logger.Logger
	defaultScale float64
}

// New creates a process engine with the given dependencies and options.
func New(recipes domain.RecipeSource, store domain.ProcessStore, clock domain.Clock, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		recipes:      recipes,
		store:        store,
		clock:        clock,
		log:          log,
		defaultScale: 1.0,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ActiveRecipes returns all recipes available for new processes.
func (e *Engine) ActiveRecipes(ctx context.Context) ([]*domain.Recipe, error) {
	all, err := e.recipes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	var out []*domain.Recipe
	for _, r := range all {
		if !r.Archived() {
			out = append(out, r)
		}
	}
	return out, nil
}

// Recipe returns a full recipe by id.
func (e *Engine) Recipe(ctx context.Context, id string) (*domain.Recipe, error) {
	return e.recipes.FindByID(ctx, id)
}

// CreateProcess builds a new process for the given recipe, persists
// it, and returns it. A scale factor <= 0 is replaced with the
// configured default.
func (e *Engine) CreateProcess(ctx context.Context, recipeID string, scaleFactor float64, plannedBakeDate string) (*domain.Process, error) {
	recipe, err := e.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("getting recipe: %w", err)
	}

	if scaleFactor <= 0 {
		e.log.Warn("invalid scale factor %v, using %v", scaleFactor, e.defaultScale)
		scaleFactor = e.defaultScale
	}

	existing, err := e.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading processes: %w", err)
	}
	ids := make([]string, 0, len(existing))
	for _, p := range existing {
		ids = append(ids, p.ID)
	}

	now := e.clock.Now()
	proc := Build(recipe, scaleFactor, plannedBakeDate, ids, now)
	proc.CreatedAt = &now
	proc.UpdatedAt = &now

	existing = append(existing, proc)
	if err := e.store.SaveAll(ctx, existing); err != nil {
		return nil, fmt.Errorf("saving processes: %w", err)
	}

	e.log.Info("created process %s for recipe %q (scale=%v)", proc.ID, recipe.Name, scaleFactor)
	return proc, nil
}

// SaveProcess persists the current state of a process, replacing the
// stored record with the same id (appending if it is new).
func (e *Engine) SaveProcess(ctx context.Context, proc *domain.Process) error {
	all, err := e.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading processes: %w", err)
	}

	now := e.clock.Now()
	proc.UpdatedAt = &now

	replaced := false
	for i, p := range all {
		if p.ID == proc.ID {
			all[i] = proc
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, proc)
	}

	if err := e.store.SaveAll(ctx, all); err != nil {
		return fmt.Errorf("saving processes: %w", err)
	}
	e.log.Debug("saved process %s (status=%s)", proc.ID, proc.Status)
	return nil
}

// Process returns a stored process by id.
func (e *Engine) Process(ctx context.Context, id string) (*domain.Process, error) {
	all, err := e.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading processes: %w", err)
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Resumable returns the processes a guided run can be (re)entered on:
// planned, running, or paused, with at least one step run.
func (e *Engine) Resumable(ctx context.Context) ([]*domain.Process, error) {
	all, err := e.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading processes: %w", err)
	}
	var out []*domain.Process
	for _, p := range all {
		switch p.Status {
		case domain.StatusPlanned, domain.StatusRunning, domain.StatusPaused:
			if len(p.StepRuns) > 0 {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

// Abort terminates a process early. EndedAt is only stamped when the
// process had actually started; an optional reason is appended to the
// notes. No ledger or inventory effects.
func (e *Engine) Abort(proc *domain.Process, reason string) error {
	if proc.Status.Terminal() {
		return domain.ErrProcessFinished
	}

	if proc.StartedAt != nil {
		now := e.clock.Now()
		proc.EndedAt = &now
	}
	proc.Status = domain.StatusAborted

	if reason != "" {
		if proc.Notes != "" {
			proc.Notes += "\nAbbruch: " + reason
		} else {
			proc.Notes = "Abbruch: " + reason
		}
	}

	e.log.Info("process %s aborted", proc.ID)
	return nil
}
