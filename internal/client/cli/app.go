package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gotodo/internal/client/client"
	"github.com/dmitrijs2005/gotodo/internal/client/config"
)

type App struct {
	config *config.Config
	client client.Client
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	store := client.NewFileSessionStore(c.SessionFile)

	apiClient, err := client.NewHTTPClient(c.ServerURL, store, client.WithTimeout(c.RequestTimeout))
	if err != nil {
		return nil, err
	}

	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, api client.Client, in io.Reader, out io.Writer) *App {
	return &App{config: c, client: api, reader: bufio.NewReader(in), out: out}
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) getStatus() string {
	if !a.client.LoggedIn() {
		return ""
	}
	return fmt.Sprintf("(%s)", a.client.Username())
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
