// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

// Package middleware provides the HTTP middleware chain: request id
// tagging, CORS, per-IP rate limiting, Prometheus instrumentation and
// structured request logging.
package middleware
