package cli

import (
	"context"
	"errors"
	"fmt"
)

var errBlankUsername = errors.New("username can not be blank")

func (a *App) credentials(args []string) (string, string, error) {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		u, err := GetSimpleText(a.reader, "Enter username", a.out)
		if err != nil {
			return "", "", err
		}
		username = u
	}
	if username == "" {
		return "", "", errBlankUsername
	}

	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func (a *App) Register(ctx context.Context, args []string) error {
	username, password, err := a.credentials(args)
	if err != nil {
		return err
	}

	msg, err := a.client.Register(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) Login(ctx context.Context, args []string) error {
	username, password, err := a.credentials(args)
	if err != nil {
		return err
	}

	msg, err := a.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	username := a.client.Username()
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	a.printf("Logged out %s\n", username)
	return nil
}

func (a *App) Refresh(ctx context.Context, _ []string) error {
	if err := a.client.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Access token refreshed")
	return nil
}
