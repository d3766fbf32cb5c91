// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

// Package supervisor builds the suture supervision tree that keeps the
// hub, the HTTP server and the snapshot flusher running and restarts
// them with backoff when they fail.
package supervisor
