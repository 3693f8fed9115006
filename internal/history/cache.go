// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history caches room messages in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/morganforge/driftchat-tui/internal/model"
	"github.com/morganforge/driftchat-tui/internal/util"
)

// defaultKeep is how many messages are retained per room after pruning.
const defaultKeep = 500

// =============================================================================
// MESSAGE CACHE
// =============================================================================

// Cache is a bounded per-room message cache on SQLite.
type Cache struct {
	db   *sql.DB
	log  zerolog.Logger
	keep int
}

// Open opens (or creates) the cache at path and applies the schema.
func Open(path string, log zerolog.Logger) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}
	if _, err := db.Exec(
		`INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(SchemaVersion),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("record schema version: %w", err)
	}

	return &Cache{
		db:   db,
		log:  log.With().Str("component", "history").Logger(),
		keep: defaultKeep,
	}, nil
}

// OpenDefault opens the cache at its usual place in the data directory.
func OpenDefault(log zerolog.Logger) (*Cache, error) {
	dir, err := util.HomeDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(dir, "history.db"), log)
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// =============================================================================
// WRITES
// =============================================================================

// Upsert records a message, replacing any previous row with the same ID.
// Pending optimistic messages are skipped; they get cached when the durable
// copy comes back on the stream.
func (c *Cache) Upsert(ctx context.Context, roomID string, m model.Message) error {
	if m.Pending {
		return nil
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO messages (room_id, id, sender_id, ts, text, reply_to)
		VALUES (?, ?, ?, ?, ?, ?)`,
		roomID, m.ID, m.SenderID, m.Timestamp.UnixMicro(), m.Text, m.ReplyTo,
	)
	if err != nil {
		return fmt.Errorf("cache message: %w", err)
	}
	return nil
}

// Delete removes a message from the cache. Missing rows are not an error.
func (c *Cache) Delete(ctx context.Context, roomID, id string) error {
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM messages WHERE room_id = ? AND id = ?`, roomID, id)
	if err != nil {
		return fmt.Errorf("delete cached message: %w", err)
	}
	return nil
}

// Prune trims the room to the newest keep messages.
func (c *Cache) Prune(ctx context.Context, roomID string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM messages WHERE room_id = ? AND id NOT IN (
			SELECT id FROM messages WHERE room_id = ?
			ORDER BY ts DESC LIMIT ?
		)`, roomID, roomID, c.keep)
	if err != nil {
		return fmt.Errorf("prune cache: %w", err)
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

// Recent returns the newest limit messages in a room, oldest first, ready to
// paint directly into the chat view.
func (c *Cache) Recent(ctx context.Context, roomID string, limit int) ([]model.Message, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, sender_id, ts, text, reply_to FROM messages
		WHERE room_id = ?
		ORDER BY ts DESC LIMIT ?`, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		var ts int64
		if err := rows.Scan(&m.ID, &m.SenderID, &ts, &m.Text, &m.ReplyTo); err != nil {
			return nil, fmt.Errorf("scan cached message: %w", err)
		}
		m.Timestamp = time.UnixMicro(ts)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache: %w", err)
	}

	// Query returned newest-first; the view wants chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
