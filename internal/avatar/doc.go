// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package avatar implements the profile-picture upload workflow.
//
// One Uploader lives per profile screen session. SelectFile validates the
// chosen image, shows it immediately as a local preview, replaces the previous
// avatar in the managed blob store, and updates both the identity profile and
// the user document with the durable URL. On any failure the displayed preview
// rolls back to the photo URL captured when the workflow started.
//
// # Design
//
//   - The local preview is an owned resource (a temp file handle), released on
//     every exit path: success, failure, and screen teardown.
//   - Deleting the old asset is best effort. A failed delete is logged and the
//     upload continues; an orphan blob is cheaper than a wedged user.
//   - The two commit writes (identity profile, user document) are issued
//     concurrently and both must succeed. Divergence under partial failure is
//     accepted and logged; the external stores offer no transaction spanning
//     both.
//
// External collaborators are consumed through small interfaces so the whole
// workflow runs under test with in-memory fakes.
package avatar
