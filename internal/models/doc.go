// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

// Package models defines the domain types shared across the feed engine:
// posts, comments, users and the REST response envelopes.
//
// A Post owns a flat list of every comment anywhere in its reply tree.
// Nesting is never part of the wire representation; the Children field on
// Comment is populated only by the tree package and must be treated as a
// derived, disposable view. The flat list is the single source of truth
// for mutation.
package models
