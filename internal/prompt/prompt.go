// Package prompt implements the operator input channel on a terminal:
// blocking line reads, discrete decisions, and the bounded wait the
// countdown loop polls on.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AisKreme/brot-backer/internal/domain"
)

// Terminal reads operator input from an io.Reader (normally stdin) and
// writes prompts to an io.Writer. A background goroutine feeds lines
// into a channel so AwaitSignal can time out without losing input.
// Once the reader is exhausted the error is sticky: every further call
// returns it instead of blocking.
type Terminal struct {
	out   io.Writer
	lines chan string

	mu  sync.Mutex
	err error
}

// NewTerminal creates a terminal input source and starts its reader
// goroutine. The goroutine exits when in reaches EOF.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{
		out:   out,
		lines: make(chan string),
	}
	go t.pump(in)
	return t
}

func (t *Terminal) pump(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		t.lines <- strings.TrimSpace(scanner.Text())
	}
	t.mu.Lock()
	if err := scanner.Err(); err != nil {
		t.err = err
	} else {
		t.err = io.EOF
	}
	t.mu.Unlock()
	close(t.lines)
}

// readErr returns the terminal error. The error is written before
// lines closes, so a receive from the closed channel always sees it.
func (t *Terminal) readErr() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// ReadLine prompts and blocks for one line of input.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)
	line, ok := <-t.lines
	if !ok {
		return "", t.readErr()
	}
	return line, nil
}

// ReadSignal prompts and blocks for one decision.
func (t *Terminal) ReadSignal(prompt string) (domain.Signal, error) {
	line, err := t.ReadLine(prompt)
	if err != nil {
		return domain.SignalNone, err
	}
	return parseSignal(line), nil
}

// AwaitSignal waits up to timeout for a decision and returns
// SignalNone when none arrived in time.
func (t *Terminal) AwaitSignal(timeout time.Duration) (domain.Signal, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case line, ok := <-t.lines:
		if !ok {
			return domain.SignalNone, t.readErr()
		}
		return parseSignal(line), nil
	case <-timer.C:
		return domain.SignalNone, nil
	}
}

// parseSignal maps a raw line to a signal. ENTER confirms, matching
// the guided-run key bindings.
func parseSignal(line string) domain.Signal {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "j", "ja", "y", "yes":
		return domain.SignalConfirm
	case "p":
		return domain.SignalPause
	case "s":
		return domain.SignalSkip
	case "n", "nein", "q", "no":
		return domain.SignalCancel
	default:
		return domain.SignalNone
	}
}

// FloatOrNil parses a lenient decimal (comma accepted as separator).
// Empty or malformed input yields nil, never an error.
func FloatOrNil(raw string) *float64 {
	text := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if text == "" {
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &v
}

// IntOrNil parses a non-negative integer. Empty or malformed input
// yields nil.
func IntOrNil(raw string) *int {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}
	v, err := strconv.Atoi(text)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}
