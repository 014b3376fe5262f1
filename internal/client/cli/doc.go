// Package cli provides the interactive FocusTank command-line client.
//
// It wires configuration, local storage, the focus and collection services,
// the sync coordinator and an interactive REPL. The tank lives on the device
// and works signed out; signing in online turns on background sync.
//
// Key features:
//   - Start / Status / Cancel / Skip a focus commitment
//   - Open the lootbox when a commitment completes
//   - Tank / Hidden / Show / Hide / Rename / Remove collected items
//   - Register / Login / Logout (online with offline fallback)
//   - Sync with the server on demand
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
