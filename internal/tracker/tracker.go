// Package tracker drives the guided step-by-step execution of a baking
// process: one countdown at a time, cancellable by the operator at any
// poll cycle.
//
// The countdown is a cooperative polling loop over an injected clock
// and a bounded-wait input source. There are no background timers; a
// pause signal observed at any cycle aborts the countdown immediately,
// and reaching zero remaining time auto-completes the step.
package tracker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/AisKreme/brot-backer/internal/domain"
	"github.com/AisKreme/brot-backer/internal/logger"
	"github.com/AisKreme/brot-backer/internal/prompt"
)

// Renderer draws the countdown state. Implementations write to the
// terminal; tests record the calls.
type Renderer interface {
	Countdown(proc *domain.Process, step *domain.StepRun, index, total int, remaining time.Duration, expired bool)
}

// Outcome reports how a tracking run ended.
type Outcome int

const (
	// OutcomeAllDone means no open steps remain; the caller should
	// offer finalization.
	OutcomeAllDone Outcome = iota
	// OutcomePaused means the operator paused; the run exited early.
	OutcomePaused
	// OutcomeNoSteps means the process has no step runs at all.
	OutcomeNoSteps
)

// Option configures the tracker.
type Option func(*Tracker)

// WithPollInterval sets the bounded wait used per countdown poll
// cycle. Defaults to 250ms.
func WithPollInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.poll = d
		}
	}
}

// Tracker walks the open steps of a process in list order.
type Tracker struct {
	clock  domain.Clock
	input  domain.OperatorInput
	render Renderer
	notify domain.Notifier
	log    *logger.Logger
	poll   time.Duration
}

// New creates a tracker with the given dependencies and options.
func New(clock domain.Clock, input domain.OperatorInput, render Renderer, notify domain.Notifier, log *logger.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		clock:  clock,
		input:  input,
		render: render,
		notify: notify,
		log:    log,
		poll:   250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run visits every currently-open step in order. The recipe may be nil;
// tracking then proceeds with reduced guidance. Completed and aborted
// processes are rejected.
func (t *Tracker) Run(ctx context.Context, proc *domain.Process, recipe *domain.Recipe) (Outcome, error) {
	if proc.Status.Terminal() {
		return OutcomeNoSteps, domain.ErrProcessFinished
	}

	if len(proc.StepRuns) == 0 {
		t.say(ctx, "Dieses Rezept hat keine Prozessschritte.")
		proc.Status = domain.StatusPlanned
		return OutcomeNoSteps, nil
	}

	open := proc.OpenSteps()
	if len(open) == 0 {
		return OutcomeAllDone, nil
	}

	for i, step := range open {
		cont, err := t.runStep(ctx, proc, recipe, step, i+1, len(open))
		if err != nil {
			return OutcomePaused, err
		}
		if !cont {
			return OutcomePaused, nil
		}
	}

	return OutcomeAllDone, nil
}

// runStep handles one open step: start prompt, countdown, post-step
// capture. Returns false when the run should exit (pause).
func (t *Tracker) runStep(ctx context.Context, proc *domain.Process, recipe *domain.Recipe, step *domain.StepRun, index, total int) (bool, error) {
	for {
		t.say(ctx, fmt.Sprintf("Schritt %d/%d: %s (%s), geplante Dauer %d Min.",
			index, total, step.DisplayName(), step.Key, step.PlannedDurationMin))
		t.showGuidance(ctx, recipe, step.Key)

		sig, err := t.input.ReadSignal("ENTER Schritt starten | s ueberspringen | p pausieren: ")
		if err != nil {
			return false, err
		}

		switch sig {
		case domain.SignalConfirm:
			// fall through to the countdown
		case domain.SignalSkip:
			zero := 0
			step.ActualDurationMin = &zero
			step.Note = "Uebersprungen."
			t.log.Info("process %s step %s skipped", proc.ID, step.Key)
			return true, nil
		case domain.SignalPause:
			t.pause(proc)
			return false, nil
		default:
			t.say(ctx, "Ungueltige Eingabe. Bitte nur ENTER, s oder p verwenden.")
			continue
		}
		break
	}

	start := t.clock.Now()
	if proc.StartedAt == nil {
		proc.StartedAt = &start
	}
	proc.Status = domain.StatusRunning
	step.ActualStartAt = &start
	t.log.Debug("process %s step %s started", proc.ID, step.Key)

	completed, err := t.countdown(ctx, proc, step, index, total)
	if err != nil {
		return false, err
	}
	if !completed {
		// Pause during the countdown: the step stays open with only
		// its start timestamp set.
		return false, nil
	}

	end := t.clock.Now()
	step.ActualEndAt = &end

	minutes := int(math.Round(end.Sub(start).Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	step.ActualDurationMin = &minutes

	t.captureStepDetails(step)
	t.log.Info("process %s step %s completed (%d min)", proc.ID, step.Key, minutes)
	return true, nil
}

// countdown runs the poll loop for one started step. Returns true when
// the step completed (naturally or early), false on pause.
func (t *Tracker) countdown(ctx context.Context, proc *domain.Process, step *domain.StepRun, index, total int) (bool, error) {
	if step.PlannedDurationMin <= 0 {
		t.say(ctx, "Kein Timer gestartet (geplante Dauer <= 0).")
		return true, nil
	}

	duration := time.Duration(step.PlannedDurationMin) * time.Minute
	deadline := t.clock.Monotonic() + duration

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		remaining := deadline - t.clock.Monotonic()
		expired := remaining <= 0
		if expired {
			remaining = 0
		}
		t.render.Countdown(proc, step, index, total, remaining, expired)

		if expired {
			return true, nil
		}

		sig, err := t.input.AwaitSignal(t.poll)
		if err != nil {
			return false, err
		}
		switch sig {
		case domain.SignalConfirm:
			return true, nil
		case domain.SignalPause:
			proc.Status = domain.StatusPaused
			t.log.Info("process %s paused during step %s", proc.ID, step.Key)
			return false, nil
		}
	}
}

// captureStepDetails asks for the optional average temperature and a
// note. Malformed numbers are dropped, never fatal.
func (t *Tracker) captureStepDetails(step *domain.StepRun) {
	raw, err := t.input.ReadLine("Durchschnittstemperatur in C (optional): ")
	if err == nil {
		step.AvgTempC = prompt.FloatOrNil(raw)
	}
	note, err := t.input.ReadLine("Notiz zu diesem Schritt (optional): ")
	if err == nil && note != "" {
		step.Note = note
	}
}

// pause records the pause decision made at a start prompt. A process
// that never started falls back to planned.
func (t *Tracker) pause(proc *domain.Process) {
	if proc.StartedAt != nil {
		proc.Status = domain.StatusPaused
	} else {
		proc.Status = domain.StatusPlanned
	}
	t.log.Info("process %s paused (status=%s)", proc.ID, proc.Status)
}

// showGuidance prints the template step's target temperature and, for
// the bake step, the bake-profile phases. Missing recipes just reduce
// the guidance.
func (t *Tracker) showGuidance(ctx context.Context, recipe *domain.Recipe, stepKey string) {
	if recipe == nil {
		return
	}
	if tmpl := recipe.TemplateStepByKey(stepKey); tmpl != nil && tmpl.TargetTempC != nil {
		t.say(ctx, fmt.Sprintf("Zieltemperatur: %.0fC", *tmpl.TargetTempC))
	}
	if stepKey == "backen" && len(recipe.BakeProfile) > 0 {
		t.say(ctx, "Backphasen:")
		for _, phase := range recipe.BakeProfile {
			steam := "kein Dampf"
			if phase.Steam {
				steam = "Dampf"
			}
			t.say(ctx, fmt.Sprintf("- %s: %d Min. bei %.0fC (%s)", phase.Phase, phase.DurationMin, phase.TempC, steam))
		}
	}
}

func (t *Tracker) say(ctx context.Context, msg string) {
	if err := t.notify.Notify(ctx, msg); err != nil {
		t.log.Error("notify: %v", err)
	}
}
