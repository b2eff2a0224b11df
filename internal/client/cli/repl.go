package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gotodo/internal/client/client"
)

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Refresh(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Done(ctx context.Context, args []string) error
	Undone(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Due(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register [user], login [user], exit"
	helpLoggedIn  = "Available commands: (l)ist, add <name>, show <id>, done <id>, undone <id>, " +
		"rename <id> <name>, due <id> <YYYY-MM-DD|none>, delete <id>, refresh, logout, exit"
)

// runREPL reads one command per line from reader and dispatches it until
// input ends or the user types "exit" or "quit". Command errors are
// printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "gotodo %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var run func(context.Context, []string) error

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpLoggedIn)
			} else {
				fmt.Fprintln(w, helpLoggedOut)
			}
			continue
		case "register":
			run = a.Register
		case "login":
			run = a.Login
		case "logout":
			run = a.Logout
		case "refresh":
			run = a.Refresh
		case "l", "list":
			run = a.List
		case "add":
			run = a.Add
		case "show":
			run = a.Show
		case "done":
			run = a.Done
		case "undone":
			run = a.Undone
		case "rename":
			run = a.Rename
		case "due":
			run = a.Due
		case "delete", "rm":
			run = a.Delete
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
			continue
		}

		if err := run(ctx, args); err != nil {
			fmt.Fprintln(w, "Error:", describe(err))
		}
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return client.ErrUnavailable.Error()
	case errors.Is(err, client.ErrNotLoggedIn):
		return "not logged in, use 'login' first"
	}
	return err.Error()
}
