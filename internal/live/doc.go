// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

// Package live implements the viewer-side synchronization engine for the
// reviews feed: the persistent live-update channel, optimistic local
// mutation, reconciliation against the session snapshot cache, and the
// thread-page view reconstructor.
//
// A Channel is scoped to one page view: open it once the viewer's
// identity is known, close it on teardown. When the connection cannot be
// established or drops, the engine keeps working in a local-only degraded
// mode; optimistic mutations then remain the only record. There is no
// automatic reconnection, matching the product's observed behavior (see
// DESIGN.md for the explicit decision).
package live
