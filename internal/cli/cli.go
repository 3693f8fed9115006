// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - command parsing and dispatch for driftchat.
package cli

import "fmt"

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the CLI command to execute.
type Command int

const (
	// CmdTUI launches the chat interface (the default).
	CmdTUI Command = iota
	// CmdLogin signs in (or up) from the terminal without the TUI.
	CmdLogin
	// CmdLogout drops the saved session.
	CmdLogout
	// CmdStatus prints config and session state.
	CmdStatus
	// CmdVersion prints version information.
	CmdVersion
	// CmdHelp prints usage.
	CmdHelp
)

// Options carries parsed command-line state into main.
type Options struct {
	Command Command
	// ConfigPath overrides the default config file location.
	ConfigPath string
	// SignUp switches `login` into account creation.
	SignUp bool
}

// Parse maps os.Args[1:] onto a command.
func Parse(args []string) Options {
	p := NewArgParser(args)
	opts := Options{
		ConfigPath: p.Flag("config"),
		SignUp:     p.BoolFlag("signup"),
	}

	if p.BoolFlag("help") || p.BoolFlag("h") {
		opts.Command = CmdHelp
		return opts
	}
	if p.BoolFlag("version") || p.BoolFlag("v") {
		opts.Command = CmdVersion
		return opts
	}

	switch p.Subcommand() {
	case "", "chat":
		opts.Command = CmdTUI
	case "login":
		opts.Command = CmdLogin
	case "logout":
		opts.Command = CmdLogout
	case "status":
		opts.Command = CmdStatus
	case "version":
		opts.Command = CmdVersion
	default:
		opts.Command = CmdHelp
	}
	return opts
}

// PrintVersion writes the version line.
func PrintVersion() {
	fmt.Printf("driftchat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// PrintHelp writes usage information.
func PrintHelp() {
	fmt.Print(`driftchat - a terminal chat client

Usage:
  driftchat [command] [flags]

Commands:
  (none)     open the chat interface
  login      sign in from the terminal
  logout     drop the saved session
  status     show config and session state
  version    print version information

Flags:
  --config PATH   use an alternate config file
  --signup        with login: create a new account
  --help          show this help

Environment:
  DRIFTCHAT_API_KEY, DRIFTCHAT_PROJECT_ID, DRIFTCHAT_STORAGE_BUCKET,
  DRIFTCHAT_ROOM, DRIFTCHAT_LOG_LEVEL, DRIFTCHAT_NO_MOUSE
`)
}
