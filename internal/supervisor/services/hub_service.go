// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package services

import (
	"context"
)

// ContextHub matches the hub's RunWithContext without importing the
// websocket package, keeping this layer dependency-free.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// HubService supervises the live-update hub. The hub's run loop already
// follows the suture pattern, so the wrapper only adds the name.
type HubService struct {
	hub ContextHub
}

// NewHubService wraps a hub for supervision.
func NewHubService(hub ContextHub) *HubService {
	return &HubService{hub: hub}
}

// Serve implements suture.Service.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

func (s *HubService) String() string {
	return "live-hub"
}
