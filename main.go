// driftchat - a terminal chat client.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/morganforge/driftchat-tui/internal/backend"
	"github.com/morganforge/driftchat-tui/internal/cli"
	"github.com/morganforge/driftchat-tui/internal/config"
	"github.com/morganforge/driftchat-tui/internal/history"
	"github.com/morganforge/driftchat-tui/internal/logging"
	"github.com/morganforge/driftchat-tui/internal/session"
	"github.com/morganforge/driftchat-tui/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := cli.Parse(os.Args[1:])

	switch opts.Command {
	case cli.CmdHelp:
		cli.PrintHelp()
		return 0
	case cli.CmdVersion:
		cli.PrintVersion()
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "driftchat: %v\n", err)
		return 1
	}

	log, closeLog, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "driftchat: %v\n", err)
		return 1
	}
	defer closeLog()

	if opts.Command == cli.CmdStatus && !cfg.HasProject() {
		return cli.RunStatus(cfg, nil)
	}
	if !cfg.HasProject() {
		fmt.Fprintln(os.Stderr, "driftchat: no project configured; fill in the [project] block of the config file or set DRIFTCHAT_* env vars")
		return 1
	}

	project := backend.Project{
		APIKey:        cfg.Project.APIKey,
		ProjectID:     cfg.Project.ProjectID,
		StorageBucket: cfg.Project.StorageBucket,
	}
	identity := backend.NewIdentityClient(project, log)

	store, err := session.NewStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "driftchat: %v\n", err)
		return 1
	}
	mgr := session.NewManager(identity, store, log)

	switch opts.Command {
	case cli.CmdLogin:
		return cli.RunLogin(mgr, opts.SignUp)
	case cli.CmdLogout:
		return cli.RunLogout(mgr)
	}

	// Resume the saved session, if any; the TUI shows the login form when
	// this fails.
	restoreCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mgr.Restore(restoreCtx); err != nil && !errors.Is(err, session.ErrNoSession) {
		log.Warn().Err(err).Msg("session restore failed")
	}
	cancel()

	if opts.Command == cli.CmdStatus {
		return cli.RunStatus(cfg, mgr)
	}

	return runTUI(cfg, mgr, project, log)
}

func loadConfig(opts cli.Options) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.LoadFrom(opts.ConfigPath)
	}
	return config.Load()
}

func runTUI(cfg *config.Config, mgr *session.Manager, project backend.Project, log zerolog.Logger) int {
	firestore := backend.NewFirestoreClient(project, mgr, log)
	storage := backend.NewStorageClient(project, mgr, log)

	cache, err := history.OpenDefault(log)
	if err != nil {
		// The cache is an optimization; chat works without it.
		log.Warn().Err(err).Msg("history cache unavailable")
		cache = nil
	} else {
		defer cache.Close()
	}

	app := ui.NewApp(cfg, mgr, firestore, storage, cache, log)

	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		// Cell motion delivers the drag events swipe-to-reply needs.
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}

	// Config edits apply on the next start; the watcher only logs them so
	// a running session is never reshaped underneath the user.
	if path, err := config.Path(); err == nil {
		w, werr := config.Watch(path, func(*config.Config) {
			log.Info().Msg("config changed on disk; restart to apply")
		}, log)
		if werr == nil {
			defer w.Close()
		}
	}

	if _, err := tea.NewProgram(app, progOpts...).Run(); err != nil {
		log.Error().Err(err).Msg("program exited with error")
		fmt.Fprintf(os.Stderr, "driftchat: %v\n", err)
		return 1
	}
	return 0
}
