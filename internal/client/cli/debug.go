//go:build debug

package cli

import (
	"context"
	"fmt"
)

// DebugFinish completes the running commitment immediately.
func (a *App) DebugFinish(ctx context.Context) error {
	c, err := a.focusService.ForceComplete(ctx)
	if err != nil {
		return err
	}
	if c == nil {
		fmt.Fprintln(a.out, "No active commitment.")
		return nil
	}
	a.printCompletion(c)
	return nil
}
