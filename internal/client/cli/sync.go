package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/focustank/internal/common"
)

// Sync runs a merge with the server in the foreground and reports what
// changed locally.
func (a *App) Sync(ctx context.Context) error {
	res, err := a.syncer.Merge(ctx)
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		return errors.New("sign in online to sync")
	case errors.Is(err, common.ErrTransport):
		a.setMode(ModeOffline)
		return fmt.Errorf("upload failed, local tank unchanged: %w", err)
	case err != nil:
		return err
	}

	a.setMode(ModeOnline)
	if res.RemoteUnavailable {
		fmt.Fprintf(a.out, "Synced at %s, server copy unreadable, uploaded %d local items.\n", res.At.Local().Format(time.TimeOnly), res.Items)
		return nil
	}
	if res.Changed {
		fmt.Fprintf(a.out, "Synced at %s, %d items after merge.\n", res.At.Local().Format(time.TimeOnly), res.Items)
	} else {
		fmt.Fprintf(a.out, "Synced at %s, already up to date.\n", res.At.Local().Format(time.TimeOnly))
	}
	return nil
}
