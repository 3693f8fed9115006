// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history caches room messages in a local SQLite database.
//
// The chat screen renders from the live stream; the cache exists so a fresh
// start can paint the recent backlog immediately while the first poll is in
// flight, and so scrollback survives offline stretches. It is a cache, not a
// source of truth: rows are upserted from stream events and pruned to a
// bounded tail per room.
package history
