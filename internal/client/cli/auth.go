package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/focustank/internal/common"
)

// Interactive input, swapped out in tests.
var (
	getSimpleText  = GetSimpleText
	getPassword    = GetPassword
	getNewPassword = GetNewPassword
)

// Register prompts for a username and password and creates an account on
// the server. The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getNewPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success! Type 'login' to sign in.")
	return nil
}

// Login prompts for credentials and signs in.
//
// An online login is tried first; it turns sync on. When the server cannot
// be reached the credentials are checked against the data cached by the last
// online login instead, which unlocks the prompt but leaves sync off.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	_, err = a.authService.OnlineLogin(ctx, userName, password)
	switch {
	case err == nil:
		a.setUser(userName)
		a.setMode(ModeOnline)
		fmt.Fprintln(a.out, "Signed in. Your tank will sync with the server.")
		return nil

	case errors.Is(err, common.ErrTransport):
		a.log.Warn(ctx, "server unavailable, trying offline login", "error", err)
		if err := a.authService.OfflineLogin(ctx, userName, password); err != nil {
			a.setMode(ModeDisabled)
			return fmt.Errorf("offline login: %w", err)
		}
		a.setUser(userName)
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "Signed in offline. Sync resumes after an online login.")
		return nil

	default:
		return err
	}
}

// Logout signs out. With --wipe the local collection is cleared as well.
func (a *App) Logout(ctx context.Context, args []string) error {
	wipe := false
	for _, arg := range args {
		switch arg {
		case "--wipe", "-w":
			wipe = true
		default:
			return fmt.Errorf("unknown logout flag %q", arg)
		}
	}

	if err := a.authService.Logout(ctx, wipe); err != nil {
		return err
	}
	a.setUser("")
	a.setMode(ModeDisabled)

	if wipe {
		fmt.Fprintln(a.out, "Signed out. Local data wiped.")
	} else {
		fmt.Fprintln(a.out, "Signed out. Your tank stays on this device.")
	}
	return nil
}
