package cli

import (
	"context"
	"fmt"
)

func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to GoTodo CLI (type 'help' for commands)")

	if err := a.client.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Warning: %s is not reachable: %s\n", a.config.ServerURL, describe(err))
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
