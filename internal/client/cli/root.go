package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/focustank/internal/commitment"
)

func (a *App) getStatus() string {
	a.mu.Lock()
	user, mode := a.userName, a.Mode
	a.mu.Unlock()

	s := ""
	if user != "" {
		s = user + " "
	}
	if mode != "" {
		s = s + string(mode)
	}
	if a.focusService != nil {
		if fs := a.focusService.Status(); fs.State == commitment.Active {
			s = s + fmt.Sprintf(" %s %.0f%%", fs.Kind, fs.Progress*100)
		}
	}
	if s != "" {
		s = fmt.Sprintf(" (%s)", s)
	}
	return s
}

// Root greets the user, reports a commitment that finished while the app
// was closed and runs the REPL until exit.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to FocusTank (type 'help' for commands)")

	if name, _, err := a.authService.CachedUser(ctx); err == nil && name != "" {
		fmt.Fprintf(a.out, "Last signed in as %s. Type 'login' to sync your tank.\n", name)
	}

	c, err := a.focusService.CheckCompletion(ctx)
	if err != nil {
		a.log.Error(ctx, "completion check failed", "error", err)
	}
	a.printCompletion(c)

	runREPL(ctx, a, a.getStatus, a.reader)
}
