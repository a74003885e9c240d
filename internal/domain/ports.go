package domain

import (
	"context"
	"time"
)

// RecipeSource provides recipes. Implementations can be file-based,
// in-memory, or API-backed.
type RecipeSource interface {
	List(ctx context.Context) ([]*Recipe, error)
	FindByID(ctx context.Context, id string) (*Recipe, error)
}

// ProcessStore persists baking processes. The engine always works on
// the full record set because id allocation scans existing ids.
type ProcessStore interface {
	LoadAll(ctx context.Context) ([]*Process, error)
	SaveAll(ctx context.Context, processes []*Process) error
}

// FlourStore persists the flour inventory.
type FlourStore interface {
	ListItems(ctx context.Context) ([]*Flour, error)
	Save(ctx context.Context, items []*Flour) error
}

// Clock supplies wall time and a monotonic reading. Injectable so the
// countdown loop is deterministic in tests.
type Clock interface {
	// Now returns the current wall time with timezone offset.
	Now() time.Time
	// Monotonic returns an opaque increasing reading used for
	// countdown math. Differences between readings are meaningful;
	// absolute values are not.
	Monotonic() time.Duration
}

// Signal is one discrete operator decision.
type Signal int

const (
	// SignalNone means no input arrived within the wait window.
	SignalNone Signal = iota
	// SignalConfirm starts or completes the current action (ENTER).
	SignalConfirm
	// SignalCancel declines the current prompt.
	SignalCancel
	// SignalPause suspends the tracking run.
	SignalPause
	// SignalSkip skips the current step.
	SignalSkip
)

// String returns the operator-facing name of the signal.
func (s Signal) String() string {
	switch s {
	case SignalConfirm:
		return "confirm"
	case SignalCancel:
		return "cancel"
	case SignalPause:
		return "pause"
	case SignalSkip:
		return "skip"
	default:
		return "none"
	}
}

// OperatorInput is the channel for operator decisions and free-text
// answers. Implementations block on the terminal; tests script the
// answers.
type OperatorInput interface {
	// ReadLine prompts for a free-text or numeric answer. An empty
	// string means the operator accepted the shown default.
	ReadLine(prompt string) (string, error)
	// ReadSignal blocks until the operator makes one decision.
	ReadSignal(prompt string) (Signal, error)
	// AwaitSignal waits up to timeout for a signal and returns
	// SignalNone when none arrived. This is the countdown loop's
	// cancellation mechanism.
	AwaitSignal(timeout time.Duration) (Signal, error)
}

// Notifier delivers user-visible messages. Implementations write to
// the terminal; tests capture the output.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
