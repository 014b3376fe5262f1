//go:build !debug

package cli

import (
	"context"
	"errors"
)

func (a *App) DebugFinish(context.Context) error {
	return errors.New("debug-finish is only available in debug builds")
}
