// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package services

import (
	"context"
	"time"

	"github.com/reliva-app/reliva-feed/internal/feed"
	"github.com/reliva-app/reliva-feed/internal/logging"
	"github.com/reliva-app/reliva-feed/internal/metrics"
	"github.com/reliva-app/reliva-feed/internal/session"
)

// SnapshotService periodically flushes the authoritative post array to
// the snapshot store, and once more on shutdown. A failed flush is
// logged and counted; the next tick retries with current state.
type SnapshotService struct {
	store    *feed.Store
	cache    session.SnapshotCache
	interval time.Duration
}

// NewSnapshotService wires the flusher.
func NewSnapshotService(store *feed.Store, cache session.SnapshotCache, interval time.Duration) *SnapshotService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SnapshotService{store: store, cache: cache, interval: interval}
}

// Serve implements suture.Service.
func (s *SnapshotService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush()
		case <-ctx.Done():
			s.flush()
			return ctx.Err()
		}
	}
}

func (s *SnapshotService) flush() {
	if err := s.cache.Store(s.store.All()); err != nil {
		metrics.SnapshotSaves.WithLabelValues("error").Inc()
		logging.Error().Err(err).Msg("snapshot flush failed")
		return
	}
	metrics.SnapshotSaves.WithLabelValues("ok").Inc()
	logging.Debug().Int("posts", s.store.Len()).Msg("snapshot flushed")
}

func (s *SnapshotService) String() string {
	return "snapshot-flusher"
}
