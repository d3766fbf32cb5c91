// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

// Package session persists the serialized post array under the
// "reliva_posts" key.
//
// The cache is a fast-path read on page mount and a best-effort mirror of
// optimistic mutations; it is never the source of truth. Two
// implementations exist: a Badger-backed store for the server (and any
// client that wants persistence across restarts) and a plain in-memory
// store matching the session-scoped semantics of the original engine.
package session

import (
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/reliva-app/reliva-feed/internal/models"
)

// SnapshotKey is the cache key holding the full JSON-serialized post array.
const SnapshotKey = "reliva_posts"

// SnapshotCache is the contract the mutation engine writes through.
// Load reports ok=false when no snapshot has been stored yet.
type SnapshotCache interface {
	Load() (posts []*models.Post, ok bool, err error)
	Store(posts []*models.Post) error
}

// MemoryCache is a session-scoped SnapshotCache.
type MemoryCache struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

// Load implements SnapshotCache.
func (m *MemoryCache) Load() ([]*models.Post, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, false, nil
	}
	var posts []*models.Post
	if err := json.Unmarshal(m.data, &posts); err != nil {
		return nil, false, fmt.Errorf("decode cached posts: %w", err)
	}
	return posts, true, nil
}

// Store implements SnapshotCache. The posts are serialized immediately so
// later mutation of the caller's slice cannot corrupt the cache.
func (m *MemoryCache) Store(posts []*models.Post) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("encode posts: %w", err)
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// BadgerStore is a SnapshotCache persisted in an embedded Badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (creating if needed) the snapshot database at path.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Load implements SnapshotCache.
func (b *BadgerStore) Load() ([]*models.Post, bool, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(SnapshotKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}

	var posts []*models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return posts, true, nil
}

// Store implements SnapshotCache.
func (b *BadgerStore) Store(posts []*models.Post) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(SnapshotKey), data)
	})
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}
