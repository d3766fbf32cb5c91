// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

// Package api exposes the REST surface and the websocket upgrade.
//
// REST responses share a {success, ...} envelope. The feed snapshot is
// served on GET /api/v1/posts, decorated for the viewer named by the
// userId query parameter; GET /api/v1/comments/{commentId} is the
// single-comment fallback used by thread pages.
package api
