// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the signed-in user.
//
// The Manager wraps the identity client with the policy the rest of the app
// relies on: accounts must have a verified email before they may sign in, ID
// tokens are refreshed shortly before they expire, and profile changes fan
// out to subscribed screens. It is the app's backend.TokenSource.
//
// The Store persists the refresh token between runs, encrypted at rest under
// a locally generated key, so a restart lands back in the chat screen without
// re-typing the password.
package session
