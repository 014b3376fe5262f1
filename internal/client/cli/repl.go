package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context, args []string) error

	Start(ctx context.Context, args []string) error
	Status(ctx context.Context) error
	Cancel(ctx context.Context) error
	Skip(ctx context.Context) error
	DebugFinish(ctx context.Context) error

	Tank(ctx context.Context) error
	Hidden(ctx context.Context) error
	Info(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Hide(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Sync(ctx context.Context) error
}

var _ execIface = (*App)(nil)

const (
	helpCommon   = "Focus: start <kind>, status, cancel, skip | Tank: tank, hidden, info <id>, show <id>, hide <id>, rename <id> <name>, remove <id>, export [file], stats"
	helpSignedIn = "Account: sync, logout [--wipe] | exit"
	helpGuest    = "Account: register, login | exit"
)

// runREPL reads commands line by line and dispatches them to a.
//
// The prompt shows statusFn(). A handler error is printed and the loop goes
// on; only EOF, ctx cancellation or "exit"/"quit" end it. The collection and
// focus commands work signed out as well, everything is stored locally.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("ft%s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpCommon)
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx, args)

		case "start":
			cmdErr = a.Start(ctx, args)
		case "status":
			cmdErr = a.Status(ctx)
		case "cancel":
			cmdErr = a.Cancel(ctx)
		case "skip":
			cmdErr = a.Skip(ctx)
		case "debug-finish":
			cmdErr = a.DebugFinish(ctx)

		case "tank", "t":
			cmdErr = a.Tank(ctx)
		case "hidden":
			cmdErr = a.Hidden(ctx)
		case "info":
			cmdErr = a.Info(ctx, args)
		case "show":
			cmdErr = a.Show(ctx, args)
		case "hide":
			cmdErr = a.Hide(ctx, args)
		case "rename":
			cmdErr = a.Rename(ctx, args)
		case "remove", "rm":
			cmdErr = a.Remove(ctx, args)
		case "export":
			cmdErr = a.Export(ctx, args)
		case "stats":
			cmdErr = a.Stats(ctx)
		case "sync":
			cmdErr = a.Sync(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
