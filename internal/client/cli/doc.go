// Package cli provides the interactive GoTodo command-line client.
//
// It wires configuration, the session-backed HTTP client and a REPL. The
// REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends.
//
// Commands:
//   - register, login, logout, refresh
//   - list, add, show, done, undone, rename, due, delete
//   - help, exit
package cli
