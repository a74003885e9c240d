package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AisKreme/brot-backer/internal/domain"
	"github.com/AisKreme/brot-backer/internal/logger"
	"github.com/AisKreme/brot-backer/internal/testutil"
)

func trackedProcess(durations ...int) *domain.Process {
	steps := make([]*domain.StepRun, 0, len(durations))
	for i, d := range durations {
		steps = append(steps, &domain.StepRun{
			Key:                []string{"autolyse", "stockgare", "backen"}[i%3],
			PlannedDurationMin: d,
		})
	}
	return &domain.Process{
		ID:       "bv_2025_05_02_001",
		RecipeID: "rez_landbrot",
		Status:   domain.StatusPlanned,
		StepRuns: steps,
	}
}

func newTestTracker(t *testing.T) (*Tracker, *testutil.FakeClock, *testutil.ScriptedInput, *testutil.RecordingNotifier, *testutil.RecordingRenderer) {
	t.Helper()
	clk := testutil.NewFakeClock(time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC))
	input := testutil.NewScriptedInput(clk)
	notify := &testutil.RecordingNotifier{}
	render := &testutil.RecordingRenderer{}
	trk := New(clk, input, render, notify, logger.New(logger.LevelOff, nil),
		WithPollInterval(30*time.Second))
	return trk, clk, input, notify, render
}

func TestRunCompletesStepsInOrder(t *testing.T) {
	trk, _, _, _, render := newTestTracker(t)
	proc := trackedProcess(1, 2)

	// Exhausted script: ENTER at every prompt, the countdown runs to
	// expiry via the advancing fake clock.
	outcome, err := trk.Run(context.Background(), proc, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAllDone, outcome)

	assert.Equal(t, 0, proc.OpenStepCount())
	assert.Equal(t, domain.StatusRunning, proc.Status)
	require.NotNil(t, proc.StartedAt)

	for _, step := range proc.StepRuns {
		require.NotNil(t, step.ActualStartAt)
		require.NotNil(t, step.ActualEndAt)
		require.NotNil(t, step.ActualDurationMin)
		assert.GreaterOrEqual(t, *step.ActualDurationMin, 1)
	}

	require.NotEmpty(t, render.Frames)
	last := render.Frames[len(render.Frames)-1]
	assert.True(t, last.Expired)
	assert.Equal(t, time.Duration(0), last.Remaining)
}

func TestRunZeroDurationStepAutoCompletes(t *testing.T) {
	trk, _, _, notify, render := newTestTracker(t)
	proc := trackedProcess(0)

	outcome, err := trk.Run(context.Background(), proc, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAllDone, outcome)

	step := proc.StepRuns[0]
	require.NotNil(t, step.ActualDurationMin)
	assert.Equal(t, 1, *step.ActualDurationMin, "elapsed time below a minute clamps to 1")
	assert.Empty(t, render.Frames, "no countdown for zero duration")
	assert.True(t, notify.Contains("Kein Timer"))
}

func TestRunEarlyComplete(t *testing.T) {
	trk, clk, input, _, _ := newTestTracker(t)
	proc := trackedProcess(60)

	input.QueueSignals(domain.SignalConfirm)              // start the step
	input.QueueWaits(domain.SignalNone, domain.SignalConfirm) // finish after two polls

	outcome, err := trk.Run(context.Background(), proc, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAllDone, outcome)

	step := proc.StepRuns[0]
	require.NotNil(t, step.ActualDurationMin)
	// Two 30s polls elapsed, rounds to 1 minute.
	assert.Equal(t, 1, *step.ActualDurationMin)
	assert.Equal(t, time.Minute, clk.Monotonic())
}

func TestRunSkipStep(t *testing.T) {
	trk, _, input, _, _ := newTestTracker(t)
	proc := trackedProcess(30, 0)

	input.QueueSignals(domain.SignalSkip) // skip the first step

	outcome, err := trk.Run(context.Background(), proc, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAllDone, outcome)

	first := proc.StepRuns[0]
	assert.True(t, first.Skipped())
	assert.Equal(t, "Uebersprungen.", first.Note)
	assert.Nil(t, first.ActualStartAt)

	second := proc.StepRuns[1]
	assert.False(t, second.Open())
	assert.False(t, second.Skipped(), "completed zero-plan step is not a skip")
}

func TestRunPauseAtStartPrompt(t *testing.T) {
	t.Run("before any step started", func(t *testing.T) {
		trk, _, input, _, _ := newTestTracker(t)
		proc := trackedProcess(30)
		input.QueueSignals(domain.SignalPause)

		outcome, err := trk.Run(context.Background(), proc, nil)
		require.NoError(t, err)
		assert.Equal(t, OutcomePaused, outcome)
		assert.Equal(t, domain.StatusPlanned, proc.Status, "never-started run falls back to planned")
		assert.Nil(t, proc.StartedAt)
	})

	t.Run("after a completed step", func(t *testing.T) {
		trk, _, input, _, _ := newTestTracker(t)
		proc := trackedProcess(0, 30)
		input.QueueSignals(domain.SignalConfirm, domain.SignalPause)

		outcome, err := trk.Run(context.Background(), proc, nil)
		require.NoError(t, err)
		assert.Equal(t, OutcomePaused, outcome)
		assert.Equal(t, domain.StatusPaused, proc.Status)
		require.NotNil(t, proc.StartedAt)
	})
}

func TestRunPauseDuringCountdown(t *testing.T) {
	trk, _, input, _, _ := newTestTracker(t)
	proc := trackedProcess(60)

	input.QueueSignals(domain.SignalConfirm)
	input.QueueWaits(domain.SignalNone, domain.SignalPause)

	outcome, err := trk.Run(context.Background(), proc, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomePaused, outcome)
	assert.Equal(t, domain.StatusPaused, proc.Status)

	step := proc.StepRuns[0]
	assert.True(t, step.Open(), "paused step stays open")
	require.NotNil(t, step.ActualStartAt)
	assert.Nil(t, step.ActualEndAt)
	assert.Equal(t, 1, proc.OpenStepCount())
}

func TestRunInvalidStartInputRetries(t *testing.T) {
	trk, _, input, notify, _ := newTestTracker(t)
	proc := trackedProcess(0)

	input.QueueSignals(domain.SignalNone, domain.SignalConfirm)

	outcome, err := trk.Run(context.Background(), proc, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAllDone, outcome)
	assert.True(t, notify.Contains("Ungueltige Eingabe"))
}

func TestRunCapturesStepDetails(t *testing.T) {
	trk, _, input, _, _ := newTestTracker(t)
	proc := trackedProcess(0)

	input.QueueLines("24,5", "lief gut")

	_, err := trk.Run(context.Background(), proc, nil)
	require.NoError(t, err)

	step := proc.StepRuns[0]
	require.NotNil(t, step.AvgTempC)
	assert.Equal(t, 24.5, *step.AvgTempC)
	assert.Equal(t, "lief gut", step.Note)
}

func TestRunRejectsTerminalProcess(t *testing.T) {
	trk, _, _, _, _ := newTestTracker(t)

	for _, status := range []domain.ProcessStatus{domain.StatusCompleted, domain.StatusAborted} {
		proc := trackedProcess(10)
		proc.Status = status
		_, err := trk.Run(context.Background(), proc, nil)
		assert.ErrorIs(t, err, domain.ErrProcessFinished)
	}
}

func TestRunNoSteps(t *testing.T) {
	trk, _, _, notify, _ := newTestTracker(t)
	proc := trackedProcess()
	proc.Status = domain.StatusPaused

	outcome, err := trk.Run(context.Background(), proc, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoSteps, outcome)
	assert.Equal(t, domain.StatusPlanned, proc.Status)
	assert.True(t, notify.Contains("keine Prozessschritte"))
}

func TestRunSkipsAlreadyClosedSteps(t *testing.T) {
	trk, _, _, _, _ := newTestTracker(t)
	proc := trackedProcess(0, 0)
	done := 5
	proc.StepRuns[0].ActualDurationMin = &done

	outcome, err := trk.Run(context.Background(), proc, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAllDone, outcome)
	assert.Equal(t, 5, *proc.StepRuns[0].ActualDurationMin, "closed step untouched")
	assert.False(t, proc.StepRuns[1].Open())
}

func TestRunShowsGuidance(t *testing.T) {
	trk, _, _, notify, _ := newTestTracker(t)
	proc := trackedProcess(0)
	proc.StepRuns[0].Key = "backen"

	temp := 240.0
	recipe := &domain.Recipe{
		ID: "rez_landbrot",
		ProcessTemplate: []domain.TemplateStep{
			{Key: "backen", DurationMin: 45, TargetTempC: &temp},
		},
		BakeProfile: []domain.BakePhase{
			{Phase: "anbacken", DurationMin: 15, TempC: 250, Steam: true},
			{Phase: "ausbacken", DurationMin: 30, TempC: 210},
		},
	}

	_, err := trk.Run(context.Background(), proc, recipe)
	require.NoError(t, err)
	assert.True(t, notify.Contains("Zieltemperatur: 240C"))
	assert.True(t, notify.Contains("Backphasen:"))
	assert.True(t, notify.Contains("anbacken"))
}

func TestRunContextCancelled(t *testing.T) {
	trk, _, input, _, _ := newTestTracker(t)
	proc := trackedProcess(60)
	input.QueueSignals(domain.SignalConfirm)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := trk.Run(ctx, proc, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
