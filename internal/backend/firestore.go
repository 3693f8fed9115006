// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend talks to the managed platform's public REST surfaces.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/morganforge/driftchat-tui/internal/model"
)

const defaultFirestoreURL = "https://firestore.googleapis.com/v1"

// ErrNotFound marks a document that does not exist.
var ErrNotFound = errors.New("document not found")

// =============================================================================
// FIRESTORE CLIENT
// =============================================================================

// FirestoreClient wraps the Firestore documents REST API for the two
// collections the client touches: users/<uid> and rooms/<room>/messages.
type FirestoreClient struct {
	project Project
	tokens  TokenSource
	run     runner

	// BaseURL override for tests.
	BaseURL string
}

// NewFirestoreClient creates a document store client.
func NewFirestoreClient(project Project, tokens TokenSource, log zerolog.Logger) *FirestoreClient {
	return &FirestoreClient{
		project: project,
		tokens:  tokens,
		run:     newRunner(log),
		BaseURL: defaultFirestoreURL,
	}
}

// root returns the database document root path.
func (c *FirestoreClient) root() string {
	return fmt.Sprintf("projects/%s/databases/(default)/documents", c.project.ProjectID)
}

// =============================================================================
// USER DOCUMENTS
// =============================================================================

// GetUserDoc fetches the user document, or ErrNotFound.
func (c *FirestoreClient) GetUserDoc(ctx context.Context, uid string) (model.UserProfile, error) {
	headers, err := authHeader(ctx, c.tokens)
	if err != nil {
		return model.UserProfile{}, err
	}

	var doc fsDocument
	url := fmt.Sprintf("%s/%s/users/%s", c.BaseURL, c.root(), uid)
	if err := c.run.doJSON(ctx, "GET", url, headers, nil, &doc); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			return model.UserProfile{}, ErrNotFound
		}
		return model.UserProfile{}, err
	}
	return decodeUserProfile(uid, doc), nil
}

// SetUserDoc writes the full user document, creating it if absent.
func (c *FirestoreClient) SetUserDoc(ctx context.Context, profile model.UserProfile) error {
	patch := map[string]any{
		"email":       profile.Email,
		"displayName": profile.DisplayName,
		"photoURL":    profile.PhotoURL,
		"online":      profile.Online,
		"lastSeen":    profile.LastSeen,
		"createdAt":   profile.CreatedAt,
		"updatedAt":   profile.UpdatedAt,
	}
	// A masked PATCH with every field doubles as create-or-replace.
	return c.UpdateUserDoc(ctx, profile.UID, patch)
}

// UpdateUserDoc shallow-merges the patch into users/<uid>. Only the patched
// fields appear in the update mask, so unnamed fields survive.
func (c *FirestoreClient) UpdateUserDoc(ctx context.Context, uid string, patch map[string]any) error {
	headers, err := authHeader(ctx, c.tokens)
	if err != nil {
		return err
	}

	doc := fsDocument{Fields: map[string]fsValue{}}
	mask := make([]string, 0, len(patch))
	for field, value := range patch {
		doc.Fields[field] = encodeValue(value)
		mask = append(mask, field)
	}
	// Deterministic mask order keeps request logs and tests stable.
	sort.Strings(mask)

	q := make(url.Values)
	for _, field := range mask {
		q.Add("updateMask.fieldPaths", field)
	}
	endpoint := fmt.Sprintf("%s/%s/users/%s?%s", c.BaseURL, c.root(), uid, q.Encode())
	return c.run.doJSON(ctx, "PATCH", endpoint, headers, doc, nil)
}

// =============================================================================
// MESSAGES
// =============================================================================

// SendMessage writes the message document under the room's collection, using
// the message's client-generated ID as the document ID so optimistic echoes
// and stream events reconcile.
func (c *FirestoreClient) SendMessage(ctx context.Context, roomID string, msg *model.Message) error {
	headers, err := authHeader(ctx, c.tokens)
	if err != nil {
		return err
	}

	doc := fsDocument{Fields: map[string]fsValue{
		"text":      encodeValue(msg.Text),
		"senderId":  encodeValue(msg.SenderID),
		"timestamp": encodeValue(msg.Timestamp),
	}}
	if msg.ReplyTo != "" {
		doc.Fields["replyTo"] = encodeValue(msg.ReplyTo)
	}

	endpoint := fmt.Sprintf("%s/%s/rooms/%s/messages?documentId=%s",
		c.BaseURL, c.root(), roomID, url.QueryEscape(msg.ID))
	return c.run.doJSON(ctx, "POST", endpoint, headers, doc, nil)
}

// DeleteMessage removes a message document. Authorization (only the sender
// may delete) is enforced by the platform's security rules.
func (c *FirestoreClient) DeleteMessage(ctx context.Context, roomID, messageID string) error {
	headers, err := authHeader(ctx, c.tokens)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/%s/rooms/%s/messages/%s", c.BaseURL, c.root(), roomID, messageID)
	return c.run.doJSON(ctx, "DELETE", endpoint, headers, nil, nil)
}

// ListMessages returns up to limit messages ordered by timestamp ascending.
func (c *FirestoreClient) ListMessages(ctx context.Context, roomID string, limit int) ([]*model.Message, error) {
	headers, err := authHeader(ctx, c.tokens)
	if err != nil {
		return nil, err
	}

	query := map[string]any{
		"structuredQuery": map[string]any{
			"from": []map[string]any{{"collectionId": "messages"}},
			"orderBy": []map[string]any{{
				"field":     map[string]any{"fieldPath": "timestamp"},
				"direction": "ASCENDING",
			}},
			"limit": limit,
		},
	}

	var rows []struct {
		Document fsDocument `json:"document"`
	}
	endpoint := fmt.Sprintf("%s/%s/rooms/%s:runQuery", c.BaseURL, c.root(), roomID)
	if err := c.run.doJSON(ctx, "POST", endpoint, headers, query, &rows); err != nil {
		return nil, err
	}

	messages := make([]*model.Message, 0, len(rows))
	for _, row := range rows {
		if row.Document.Name == "" {
			// runQuery pads its result array with readTime-only entries.
			continue
		}
		messages = append(messages, decodeMessage(row.Document))
	}
	return messages, nil
}

// =============================================================================
// DOCUMENT CODEC
// =============================================================================

// fsDocument is the REST wire shape of a Firestore document.
type fsDocument struct {
	Name   string             `json:"name,omitempty"`
	Fields map[string]fsValue `json:"fields,omitempty"`
}

// fsValue is one typed Firestore value.
type fsValue struct {
	StringValue    *string  `json:"stringValue,omitempty"`
	BooleanValue   *bool    `json:"booleanValue,omitempty"`
	IntegerValue   *string  `json:"integerValue,omitempty"`
	TimestampValue *string  `json:"timestampValue,omitempty"`
	DoubleValue    *float64 `json:"doubleValue,omitempty"`
}

// encodeValue maps a Go value onto the Firestore value envelope.
func encodeValue(v any) fsValue {
	switch val := v.(type) {
	case string:
		return fsValue{StringValue: &val}
	case bool:
		return fsValue{BooleanValue: &val}
	case int:
		s := fmt.Sprintf("%d", val)
		return fsValue{IntegerValue: &s}
	case int64:
		s := fmt.Sprintf("%d", val)
		return fsValue{IntegerValue: &s}
	case float64:
		return fsValue{DoubleValue: &val}
	case time.Time:
		s := val.UTC().Format(time.RFC3339Nano)
		return fsValue{TimestampValue: &s}
	default:
		s := fmt.Sprintf("%v", val)
		return fsValue{StringValue: &s}
	}
}

func (v fsValue) str() string {
	if v.StringValue != nil {
		return *v.StringValue
	}
	return ""
}

func (v fsValue) boolean() bool {
	return v.BooleanValue != nil && *v.BooleanValue
}

func (v fsValue) timestamp() time.Time {
	if v.TimestampValue != nil {
		if t, err := time.Parse(time.RFC3339Nano, *v.TimestampValue); err == nil {
			return t
		}
	}
	// Some writers store instants as RFC 3339 strings.
	if v.StringValue != nil {
		if t, err := time.Parse(time.RFC3339Nano, *v.StringValue); err == nil {
			return t
		}
	}
	return time.Time{}
}

// decodeMessage converts a message document into the domain type. The
// document ID is the trailing path segment of the resource name.
func decodeMessage(doc fsDocument) *model.Message {
	return &model.Message{
		ID:        docID(doc.Name),
		Text:      doc.Fields["text"].str(),
		SenderID:  doc.Fields["senderId"].str(),
		Timestamp: doc.Fields["timestamp"].timestamp(),
		ReplyTo:   doc.Fields["replyTo"].str(),
	}
}

// decodeUserProfile converts a user document into the domain type.
func decodeUserProfile(uid string, doc fsDocument) model.UserProfile {
	return model.UserProfile{
		UID:         uid,
		Email:       doc.Fields["email"].str(),
		DisplayName: doc.Fields["displayName"].str(),
		PhotoURL:    doc.Fields["photoURL"].str(),
		Online:      doc.Fields["online"].boolean(),
		LastSeen:    doc.Fields["lastSeen"].timestamp(),
		CreatedAt:   doc.Fields["createdAt"].timestamp(),
		UpdatedAt:   doc.Fields["updatedAt"].timestamp(),
	}
}

// docID extracts the document ID from a full resource name.
func docID(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}
