// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - config and session state output.
package cli

import (
	"fmt"

	"github.com/morganforge/driftchat-tui/internal/config"
	"github.com/morganforge/driftchat-tui/internal/session"
)

// RunStatus prints the effective configuration and session state.
func RunStatus(cfg *config.Config, mgr *session.Manager) int {
	fmt.Println("driftchat status")
	fmt.Println()

	if cfg.HasProject() {
		fmt.Printf("  project:  %s\n", cfg.Project.ProjectID)
		fmt.Printf("  bucket:   %s\n", cfg.Project.StorageBucket)
	} else {
		fmt.Println("  project:  not configured (set the [project] block or DRIFTCHAT_* env)")
	}
	fmt.Printf("  room:     %s\n", cfg.Room.ID)
	fmt.Printf("  poll:     %s\n", cfg.PollInterval())
	fmt.Printf("  theme:    %s\n", cfg.UI.Theme)

	fmt.Println()
	if mgr != nil && mgr.SignedIn() {
		p := mgr.Profile()
		fmt.Printf("  signed in as %s (%s)\n", p.DisplayName, p.Email)
	} else {
		fmt.Println("  not signed in (run `driftchat login`)")
	}
	return 0
}
