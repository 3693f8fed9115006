// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for room messages and user
// profiles.
//
// # Key Types
//
//   - Message: a single message in the shared room, optionally carrying a
//     denormalized snapshot of the message it replies to
//   - UserProfile: the per-user document mirrored in the document store
//
// # Validation
//
// Display names are validated here (2-50 characters after NFC normalization)
// so the auth and profile screens share one rule.
package model
