// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

// Package config loads server configuration from layered sources:
// built-in defaults, an optional YAML file, then environment variables,
// with later layers overriding earlier ones.
package config
