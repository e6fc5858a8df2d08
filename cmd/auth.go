package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bookywarm/wyrm/internal/controller"
	"github.com/bookywarm/wyrm/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// promptPassword reads a password without echo when the input is a terminal,
// falling back to a plain line read otherwise (pipes, tests).
func (r *Runner) promptPassword() (string, error) {
	if f, ok := r.input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.writePlain("Contraseña: ")
		data, err := term.ReadPassword(int(f.Fd()))
		r.writePlain("\n")
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(data), nil
	}

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// AuthRegister creates a new account. Registration does not log in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("username")
	email := cmd.String("email")
	password := cmd.String("password")

	if password == "" {
		var err error
		if password, err = r.promptPassword(); err != nil {
			return err
		}
	}

	snap := r.session.Register(ctx, username, email, password)
	if snap.Error != "" {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, snap.Error)
	}

	r.logger.Info("account created", "username", username)
	r.writePlain("✓ %s\n", snap.Notice)
	return r.writePlain("Inicia sesión con 'wyrm auth login -e %s'\n", email)
}

// AuthLogin exchanges credentials for a bearer token and persists it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password := cmd.String("password")

	if password == "" {
		var err error
		if password, err = r.promptPassword(); err != nil {
			return err
		}
	}

	snap := r.session.Login(ctx, email, password)
	if snap.State != controller.Authenticated {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, snap.Error)
	}

	return r.writePlain("✓ %s\n", snap.Greeting())
}

// AuthLogout destroys the persisted token. No network call is involved.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.session.Logout()
	return r.writePlain("✓ Sesión cerrada\n")
}

// AuthWhoami validates the stored session with a profile fetch and prints it.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	snap := r.session.Restore(ctx)
	if snap.State != controller.Authenticated {
		if snap.Error != "" {
			return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, snap.Error)
		}
		return fmt.Errorf("%w: no stored session", shared.ErrNotAuthenticated)
	}

	if cmd.Bool("json") {
		return r.writeJSON(snap.Profile, true)
	}

	r.writePlain("%s\n", snap.Greeting())
	r.writePlain("ID:    %d\n", snap.Profile.ID)
	r.writePlain("Email: %s\n", snap.Profile.Email)
	return nil
}
