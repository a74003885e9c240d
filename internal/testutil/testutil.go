// Package testutil provides deterministic fakes for the injected
// ports: a manually-advanced clock, a scripted operator, and a
// recording notifier/renderer.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AisKreme/brot-backer/internal/domain"
)

// Compile-time interface checks.
var (
	_ domain.Clock         = (*FakeClock)(nil)
	_ domain.OperatorInput = (*ScriptedInput)(nil)
	_ domain.Notifier      = (*RecordingNotifier)(nil)
)

// FakeClock is a manually-advanced clock.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	elapsed time.Duration
}

// NewFakeClock creates a clock frozen at the given time.
func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now.Truncate(time.Second)}
}

// Now returns the current fake wall time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Monotonic returns the fake elapsed duration.
func (c *FakeClock) Monotonic() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Advance moves both the wall time and the monotonic reading forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.elapsed += d
}

// ScriptedInput replays queued lines and signals. AwaitSignal advances
// the attached clock by its timeout so fake countdowns make progress;
// an exhausted script keeps answering empty/confirm, matching an
// operator who just presses ENTER.
type ScriptedInput struct {
	mu      sync.Mutex
	lines   []string
	signals []domain.Signal
	waits   []domain.Signal
	clock   *FakeClock

	Prompts []string
}

// NewScriptedInput creates an input fake coupled to the given clock.
func NewScriptedInput(clock *FakeClock) *ScriptedInput {
	return &ScriptedInput{clock: clock}
}

// QueueLines appends replies for ReadLine.
func (s *ScriptedInput) QueueLines(lines ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, lines...)
}

// QueueSignals appends replies for ReadSignal.
func (s *ScriptedInput) QueueSignals(signals ...domain.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = append(s.signals, signals...)
}

// QueueWaits appends replies for AwaitSignal. SignalNone models a poll
// cycle without operator input.
func (s *ScriptedInput) QueueWaits(signals ...domain.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, signals...)
}

// ReadLine returns the next queued line, or "" when exhausted.
func (s *ScriptedInput) ReadLine(promptText string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, promptText)
	if len(s.lines) == 0 {
		return "", nil
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

// ReadSignal returns the next queued signal, or confirm when exhausted.
func (s *ScriptedInput) ReadSignal(promptText string) (domain.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, promptText)
	if len(s.signals) == 0 {
		return domain.SignalConfirm, nil
	}
	sig := s.signals[0]
	s.signals = s.signals[1:]
	return sig, nil
}

// AwaitSignal advances the clock by timeout and returns the next
// queued wait reply, or none when exhausted.
func (s *ScriptedInput) AwaitSignal(timeout time.Duration) (domain.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock != nil {
		s.clock.Advance(timeout)
	}
	if len(s.waits) == 0 {
		return domain.SignalNone, nil
	}
	sig := s.waits[0]
	s.waits = s.waits[1:]
	return sig, nil
}

// RecordingNotifier collects every notified message.
type RecordingNotifier struct {
	mu       sync.Mutex
	Messages []string
}

// Notify records the message.
func (n *RecordingNotifier) Notify(ctx context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, message)
	return nil
}

// Contains reports whether any recorded message contains sub.
func (n *RecordingNotifier) Contains(sub string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range n.Messages {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

// RecordedFrame captures one renderer call.
type RecordedFrame struct {
	StepKey   string
	Index     int
	Total     int
	Remaining time.Duration
	Expired   bool
}

// RecordingRenderer collects countdown frames.
type RecordingRenderer struct {
	mu     sync.Mutex
	Frames []RecordedFrame
}

// Countdown records the frame.
func (r *RecordingRenderer) Countdown(proc *domain.Process, step *domain.StepRun, index, total int, remaining time.Duration, expired bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Frames = append(r.Frames, RecordedFrame{
		StepKey:   step.Key,
		Index:     index,
		Total:     total,
		Remaining: remaining,
		Expired:   expired,
	})
}

// String helps failure output.
func (f RecordedFrame) String() string {
	return fmt.Sprintf("%s %d/%d remaining=%s expired=%v", f.StepKey, f.Index, f.Total, f.Remaining, f.Expired)
}
