// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

// Package services wraps the server's long-running components as
// suture services: the HTTP listener, the live-update hub and the
// snapshot flusher.
package services
