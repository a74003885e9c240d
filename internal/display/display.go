// Package display renders the terminal output: the countdown footer,
// step and ingredient tables, and plain notifications.
package display

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/AisKreme/brot-backer/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4e7")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0a0a0a")).
			Background(lipgloss.Color("#fde047"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#86efac"))

	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	openStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4e7"))

	timerRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#86efac"))

	timerLowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	timerDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)
)

var _ domain.Notifier = (*Console)(nil)

// Console writes styled output to a terminal. It implements the
// tracker's renderer and the notifier port.
type Console struct {
	out       io.Writer
	countdown bool // a countdown line is pending a newline
}

// NewConsole creates a console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Notify prints one user-visible message.
func (c *Console) Notify(ctx context.Context, message string) error {
	c.endCountdown()
	_, err := fmt.Fprintln(c.out, message)
	return err
}

// Countdown redraws the in-place countdown line for the running step.
// The line ends with a bell and a newline once the timer expires.
func (c *Console) Countdown(proc *domain.Process, step *domain.StepRun, index, total int, remaining time.Duration, expired bool) {
	secs := int(remaining.Round(time.Second).Seconds())
	if secs < 0 {
		secs = 0
	}
	clock := fmt.Sprintf("%02d:%02d", secs/60, secs%60)

	var status string
	switch {
	case expired:
		status = timerDoneStyle.Render("Timer abgelaufen")
	case remaining <= time.Minute:
		status = timerLowStyle.Render("Timer laeuft " + clock)
	default:
		status = timerRunStyle.Render("Timer laeuft " + clock)
	}

	line := fmt.Sprintf("%s %s  %s  %s",
		headerStyle.Render(fmt.Sprintf("Schritt %d/%d:", index, total)),
		step.DisplayName(),
		status,
		dimStyle.Render("ENTER beenden | p pausieren"))

	fmt.Fprintf(c.out, "\r\033[K%s", line)
	c.countdown = true
	if expired {
		fmt.Fprint(c.out, "\a\n")
		c.countdown = false
	}
}

// endCountdown terminates a pending in-place countdown line so normal
// output starts on a fresh line.
func (c *Console) endCountdown() {
	if c.countdown {
		fmt.Fprintln(c.out)
		c.countdown = false
	}
}

// ProcessSummary renders the pre-tracking overview panel.
func ProcessSummary(proc *domain.Process, plannedWaterG float64) string {
	name := proc.RecipeSnapshot.Name
	if name == "" {
		name = proc.RecipeID
	}
	hydration := "-"
	if proc.RecipeSnapshot.HydrationPercent != nil {
		hydration = fmt.Sprintf("%v%%", *proc.RecipeSnapshot.HydrationPercent)
	}

	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render("Backvorgang "+proc.ID))
	fmt.Fprintf(&b, "Rezept: %s   Scale: %v   Hydration: %s\n", name, proc.ScaleFactor, hydration)
	fmt.Fprintf(&b, "Wasser (Hydration): %.1fg\n", plannedWaterG)
	fmt.Fprintf(&b, "Ziel: %d Laib(e), %vg Teig", proc.Target.LoafCount, proc.Target.TargetDoughWeightG)
	return b.String()
}

// StepTable renders the step runs with their status.
func StepTable(proc *domain.Process) string {
	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render(fmt.Sprintf("Schritte | %s | offen %d / gesamt %d",
		proc.Status, proc.OpenStepCount(), len(proc.StepRuns))))

	for i, step := range proc.StepRuns {
		actual := "-"
		if step.ActualDurationMin != nil {
			actual = fmt.Sprintf("%d", *step.ActualDurationMin)
		}
		row := fmt.Sprintf("%2d. %-24s %-13s Soll %3d  Ist %s",
			i+1, step.DisplayName(), stepStatus(step), step.PlannedDurationMin, actual)
		fmt.Fprintln(&b, stepStyle(step).Render(row))
	}
	return strings.TrimRight(b.String(), "\n")
}

func stepStatus(step *domain.StepRun) string {
	switch {
	case step.Skipped():
		return "uebersprungen"
	case step.ActualEndAt != nil || step.ActualDurationMin != nil:
		return "erledigt"
	case step.ActualStartAt != nil:
		return "in Arbeit"
	default:
		return "offen"
	}
}

func stepStyle(step *domain.StepRun) lipgloss.Style {
	switch {
	case step.Skipped():
		return skippedStyle
	case !step.Open():
		return doneStyle
	case step.ActualStartAt != nil:
		return activeStyle
	default:
		return openStyle
	}
}

// IngredientTable renders the ledger entries with index numbers for
// the editor.
func IngredientTable(proc *domain.Process) string {
	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render("Zutaten | Soll g / Ist g / Abzug g"))
	if len(proc.IngredientUsage) == 0 {
		fmt.Fprint(&b, dimStyle.Render("Keine Zutaten vorhanden"))
		return b.String()
	}
	for i, entry := range proc.IngredientUsage {
		fmt.Fprintf(&b, "%2d. %-24s %8.1f %8.1f %8.1f\n",
			i+1, entry.IngredientID, entry.PlannedG, entry.ActualG, entry.StockDeductedG)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FlourTable renders the inventory listing.
func FlourTable(items []*domain.Flour) string {
	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render("Mehlbestand"))
	if len(items) == 0 {
		fmt.Fprint(&b, dimStyle.Render("Keine Mehle im Bestand"))
		return b.String()
	}
	for _, item := range items {
		onHand := dimStyle.Render("nicht vorhanden")
		if item.OnHand {
			onHand = fmt.Sprintf("%dg", item.OnHandGrams)
		}
		fmt.Fprintf(&b, "%-24s %-28s %s\n", item.ID, item.Display(), onHand)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ProcessTable renders the resumable process listing.
func ProcessTable(processes []*domain.Process) string {
	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render("Backvorgaenge"))
	if len(processes) == 0 {
		fmt.Fprint(&b, dimStyle.Render("Keine fortsetzbaren Backvorgaenge"))
		return b.String()
	}
	for i, proc := range processes {
		name := proc.RecipeSnapshot.Name
		if name == "" {
			name = proc.RecipeID
		}
		start := "-"
		if proc.StartedAt != nil {
			start = proc.StartedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "%2d. %-20s %-20s %-9s offen %d  Start %s\n",
			i+1, name, proc.ID, proc.Status, proc.OpenStepCount(), start)
	}
	return strings.TrimRight(b.String(), "\n")
}
