// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

// Package websocket implements the server side of the live-update channel.
//
// A single Hub owns the set of connected clients and fans authoritative
// events (post, comment, likeUpdate) out to all of them. Each client runs
// the usual gorilla read/write pump pair; inbound frames are decoded into
// protocol messages once at the boundary, applied to the feed store, and
// echoed back as broadcasts. Malformed frames are logged and dropped
// without closing the connection.
package websocket
