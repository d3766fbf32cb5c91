// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package feed

import (
	"sync"

	"github.com/reliva-app/reliva-feed/internal/models"
)

// Registry is an in-memory UserResolver. Identities are registered as
// viewers authenticate on the live channel; the upstream identity provider
// stays out of scope.
type Registry struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewRegistry creates an empty identity registry.
func NewRegistry() *Registry {
	return &Registry{users: make(map[string]models.User)}
}

// Put records or refreshes an identity.
func (r *Registry) Put(u models.User) {
	if u.ID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}

// Resolve implements UserResolver.
func (r *Registry) Resolve(authorID string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[authorID]
	return u, ok
}
