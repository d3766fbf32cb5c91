// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/reliva-app/reliva-feed/internal/feed"
	"github.com/reliva-app/reliva-feed/internal/logging"
	"github.com/reliva-app/reliva-feed/internal/metrics"
	"github.com/reliva-app/reliva-feed/internal/models"
	"github.com/reliva-app/reliva-feed/internal/protocol"
)

// Hub maintains the set of active clients and broadcasts authoritative
// events to them. Intents from clients are applied to the feed store and
// the resulting events re-enter through the broadcast channel, so every
// connected viewer converges on the same state.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan protocol.Message
	Register   chan *Client
	Unregister chan *Client
	feed       *feed.Store
	mu         sync.RWMutex
}

// NewHub creates a hub bound to the authoritative feed store.
func NewHub(store *feed.Store) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan protocol.Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		feed:       store,
	}
}

// Feed exposes the store for handlers that share it.
func (h *Hub) Feed() *feed.Store {
	return h.feed
}

// RunWithContext processes client lifecycle events and broadcasts until
// the context is canceled, then closes every client and returns ctx.Err().
// Designed for suture supervision.
//
// Selection is priority ordered (shutdown, then lifecycle, then
// broadcasts) so client state is consistent before messages are fanned
// out; Go's select picks randomly when several channels are ready.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()
	metrics.ChannelClients.Set(float64(count))
	logging.Info().Int("total_clients", count).Msg("channel client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.closeSend()
	}
	count := len(h.clients)
	h.mu.Unlock()
	metrics.ChannelClients.Set(float64(count))
	logging.Info().Int("total_clients", count).Msg("channel client disconnected")
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	for _, client := range clients {
		client.closeSend()
		delete(h.clients, client)
	}
	h.mu.Unlock()

	metrics.ChannelClients.Set(0)
	logging.Info().
		Str("component", "channel-hub").
		AnErr("reason", ctx.Err()).
		Int("clients_closed", len(clients)).
		Msg("channel hub stopped")
}

// broadcastToClients fans one message out in client-id order. A client
// whose send buffer is full is dropped; a reader that slow is better off
// reconnecting than holding the hub back.
func (h *Hub) broadcastToClients(message protocol.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}
	for _, client := range toRemove {
		client.closeSend()
		delete(h.clients, client)
	}

	metrics.ChannelBroadcasts.WithLabelValues(message.MessageType()).Inc()
}

// BroadcastPost announces a newly created post to every client.
func (h *Hub) BroadcastPost(post *models.Post) {
	h.enqueue(protocol.PostEvent{Type: protocol.TypePost, Post: post})
}

// BroadcastComment announces a newly created comment to every client.
func (h *Hub) BroadcastComment(postID string, comment *models.Comment) {
	h.enqueue(protocol.CommentEvent{Type: protocol.TypeComment, PostID: postID, Comment: comment})
}

// BroadcastLikeUpdate publishes the authoritative like-count for a target.
func (h *Hub) BroadcastLikeUpdate(targetID string, likeCount int) {
	h.enqueue(protocol.LikeUpdate{Type: protocol.TypeLikeUpdate, TargetID: targetID, LikeCount: likeCount})
}

func (h *Hub) enqueue(message protocol.Message) {
	select {
	case h.broadcast <- message:
	default:
		metrics.ChannelDropped.Inc()
		logging.Warn().Str("message_type", message.MessageType()).Msg("broadcast channel full, dropping message")
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
