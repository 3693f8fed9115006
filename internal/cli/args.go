// args.go - argument parsing for the driftchat CLI.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "strings"

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser handles the flag formats the CLI accepts:
//
//	--flag value     long flag with space-separated value
//	--flag=value     long flag with equals sign
//	--flag           boolean flag
//	positional       arguments without dashes
type ArgParser struct {
	subcommand string
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses raw arguments. The first positional argument is the
// subcommand.
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			p.positional = append(p.positional, arg)
			i++
			continue
		}

		if name, value, ok := strings.Cut(arg, "="); ok {
			name = strings.TrimLeft(name, "-")
			if value == "true" || value == "false" {
				p.boolFlags[name] = value == "true"
			} else {
				p.flags[name] = value
			}
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			p.flags[name] = raw[i+1]
			i += 2
		} else {
			p.boolFlags[name] = true
			i++
		}
	}

	if len(p.positional) > 0 {
		p.subcommand = p.positional[0]
	}
	return p
}

// Subcommand returns the first positional argument, or "".
func (p *ArgParser) Subcommand() string { return p.subcommand }

// Flag returns a string flag value, or "".
func (p *ArgParser) Flag(name string) string { return p.flags[name] }

// BoolFlag reports whether a boolean flag was set.
func (p *ArgParser) BoolFlag(name string) bool { return p.boolFlags[name] }
