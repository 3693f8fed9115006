// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history caches room messages in a local SQLite database.
package history

// SchemaVersion tracks the cache schema for forward migrations.
const SchemaVersion = 1

// Schema is the message-cache layout. Timestamps are stored as Unix
// microseconds so ordering survives the round trip.
const Schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS messages (
    room_id   TEXT NOT NULL,
    id        TEXT NOT NULL,
    sender_id TEXT NOT NULL,
    ts        INTEGER NOT NULL,
    text      TEXT NOT NULL,
    reply_to  TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (room_id, id)
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_messages_room_ts ON messages(room_id, ts);
`
