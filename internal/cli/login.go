// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// login.go - terminal sign-in without the TUI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/morganforge/driftchat-tui/internal/backend"
	"github.com/morganforge/driftchat-tui/internal/session"
)

// loginTimeout bounds the whole interactive exchange with the backend.
const loginTimeout = 60 * time.Second

// RunLogin prompts for credentials on the terminal and signs in, or creates
// an account when signUp is set. Returns an exit code.
func RunLogin(mgr *session.Manager, signUp bool) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	email, err := line.Prompt("email: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "aborted")
		return 1
	}
	email = strings.TrimSpace(email)

	fmt.Print("password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		fmt.Fprintln(os.Stderr, "aborted")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()

	if signUp {
		name, err := line.Prompt("display name: ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "aborted")
			return 1
		}
		if err := mgr.SignUp(ctx, email, string(pw), name); err != nil {
			fmt.Fprintf(os.Stderr, "sign-up failed: %v\n", err)
			return 1
		}
		fmt.Println("Account created. Check your email for the verification link, then run `driftchat login`.")
		return 0
	}

	if err := mgr.SignIn(ctx, email, string(pw)); err != nil {
		switch {
		case errors.Is(err, backend.ErrEmailNotVerified):
			fmt.Fprintln(os.Stderr, "email not verified; a new verification mail was sent")
		case errors.Is(err, backend.ErrInvalidCredentials):
			fmt.Fprintln(os.Stderr, "invalid email or password")
		default:
			fmt.Fprintf(os.Stderr, "sign-in failed: %v\n", err)
		}
		return 1
	}

	fmt.Printf("Signed in as %s.\n", mgr.Profile().Email)
	return 0
}

// RunLogout forgets the saved session.
func RunLogout(mgr *session.Manager) int {
	if err := mgr.SignOut(); err != nil {
		fmt.Fprintf(os.Stderr, "logout failed: %v\n", err)
		return 1
	}
	fmt.Println("Signed out.")
	return 0
}
