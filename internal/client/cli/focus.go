package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/focustank/internal/client/services"
	"github.com/dmitrijs2005/focustank/internal/commitment"
)

// Start begins the commitment named by args[0]. Without arguments it lists
// the available kinds.
func (a *App) Start(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: start <kind>")
		a.printDefinitions()
		return nil
	}

	started, err := a.focusService.Start(ctx, commitment.Kind(args[0]))
	if err != nil {
		return err
	}
	if started.Warning != nil {
		fmt.Fprintf(a.out, "Warning: %v\n", started.Warning)
	}
	fmt.Fprintf(a.out, "Focus started. Come back at %s.\n", started.CompletesAt.Local().Format(time.Kitchen))
	return nil
}

func (a *App) printDefinitions() {
	for _, d := range a.focusService.Definitions() {
		fmt.Fprintf(a.out, "  %-8s %-24s %s\n", d.Kind, d.Title, d.Duration)
	}
}

// Status shows the running commitment and its progress bar.
func (a *App) Status(ctx context.Context) error {
	st := a.focusService.Status()
	if st.State != commitment.Active {
		fmt.Fprintln(a.out, "No active commitment. Type 'start' to see the options.")
		return nil
	}
	fmt.Fprintf(a.out, "%s: %s %3.0f%%, %s left\n",
		st.Title, progressBar(st.Progress, 20), st.Progress*100, st.Remaining.Round(time.Second))
	return nil
}

// Cancel abandons the running commitment without a reward.
func (a *App) Cancel(ctx context.Context) error {
	kind, ok, err := a.focusService.Cancel(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Nothing to cancel.")
		return nil
	}
	fmt.Fprintf(a.out, "Cancelled %s. No reward this time.\n", kind)
	return nil
}

// Skip buys an early finish for the running commitment.
func (a *App) Skip(ctx context.Context) error {
	c, err := a.focusService.Skip(ctx)
	if errors.Is(err, services.ErrIdle) {
		fmt.Fprintln(a.out, "Nothing to skip.")
		return nil
	}
	if err != nil {
		return err
	}
	a.printCompletion(c)
	return nil
}

// printCompletion plays the reel and lists what landed in the tank.
func (a *App) printCompletion(c *services.Completion) {
	if c == nil {
		return
	}

	slot := min(max(a.winnerSlot, 0), len(c.Reward.Decoys))
	strip := c.Reward.Spin(slot)
	names := make([]string, 0, len(strip))
	for i, it := range strip {
		if i == slot && len(c.Reward.Items) > 0 {
			names = append(names, "["+it.Name+"]")
			continue
		}
		names = append(names, it.Name)
	}

	head := "Commitment complete"
	if c.Skipped {
		head = "Commitment skipped"
	}
	fmt.Fprintf(a.out, "\n%s: %s (%s box)\n", head, c.Title, c.Reward.Tier.Name)
	fmt.Fprintln(a.out, strings.Join(names, " · "))

	for _, it := range c.Added {
		mark := ""
		if it.Exceptional {
			mark = " *exceptional*"
		}
		fmt.Fprintf(a.out, "  + %s (%s, %s)%s\n", it.Name, it.Rarity, it.Size, mark)
	}
	for _, it := range c.AutoHidden {
		fmt.Fprintf(a.out, "  tank is full, %s moved to storage\n", it.Name)
	}
}

func progressBar(p float64, width int) string {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	done := int(p * float64(width))
	return "[" + strings.Repeat("#", done) + strings.Repeat(".", width-done) + "]"
}
