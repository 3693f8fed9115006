// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend talks to the managed platform's public REST surfaces.
//
// driftchat has no server of its own: identity, the realtime document store,
// and the blob store are all Firebase. This package wraps the three REST
// APIs the client consumes:
//
//   - Identity Toolkit (accounts:signUp, accounts:signInWithPassword,
//     accounts:update, accounts:lookup, accounts:sendOobCode) and the
//     securetoken refresh endpoint
//   - Firestore documents (user profiles, the room's message collection)
//   - Cloud Storage for Firebase (avatar blobs)
//
// All sub-clients share one pooled HTTP client with TLS 1.2 minimum and a
// bounded retry policy for transient failures. Requests that mutate on behalf
// of a user carry the ID token from a TokenSource.
//
// MessageStream turns the message collection into an event stream by polling
// under a rate limiter; the platform's push channel is not reachable from a
// plain REST consumer.
package backend
