// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/reliva-app/reliva-feed/internal/logging"
	"github.com/reliva-app/reliva-feed/internal/metrics"
	"github.com/reliva-app/reliva-feed/internal/models"
	"github.com/reliva-app/reliva-feed/internal/protocol"
	"github.com/reliva-app/reliva-feed/internal/validation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB

	// intentRate caps how fast one connection may submit intents.
	intentRate  = rate.Limit(10)
	intentBurst = 20
)

// clientIDCounter hands out monotonically increasing ids so broadcast
// iteration order is stable.
var clientIDCounter atomic.Uint64

// Client is the middleman between one websocket connection and the hub.
// Identity is unknown until the auth handshake arrives; intents received
// before it are dropped.
type Client struct {
	id      uint64
	hub     *Hub
	conn    *websocket.Conn
	send    chan protocol.Message
	limiter *rate.Limiter

	// sendMu excludes deliver (readPump goroutine) from closeSend (hub
	// goroutine); a send on a closed channel panics.
	sendMu     sync.Mutex
	sendClosed bool

	// viewer scoping, set by the auth handshake in readPump and read
	// only from that goroutine afterwards.
	userID    string
	postID    string
	commentID string
}

// NewClient wraps an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:      clientIDCounter.Add(1),
		hub:     hub,
		conn:    conn,
		send:    make(chan protocol.Message, 256),
		limiter: rate.NewLimiter(intentRate, intentBurst),
	}
}

// ID returns the client's ordering id.
func (c *Client) ID() uint64 {
	return c.id
}

// Start begins the read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close")
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			// Malformed frames are dropped; the connection stays open.
			logging.Warn().Err(err).Msg("dropping malformed channel message")
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg protocol.Message) {
	metrics.ChannelIntents.WithLabelValues(msg.MessageType()).Inc()

	if auth, ok := msg.(protocol.Auth); ok {
		c.handleAuth(auth)
		return
	}

	if c.userID == "" {
		logging.Warn().Str("type", msg.MessageType()).Msg("dropping intent before auth handshake")
		return
	}
	if !c.limiter.Allow() {
		metrics.ChannelRejected.Inc()
		logging.Warn().Str("user_id", c.userID).Str("type", msg.MessageType()).Msg("intent rate limit exceeded, dropping")
		return
	}

	switch m := msg.(type) {
	case protocol.NewPost:
		if err := validation.ValidateStruct(&m); err != nil {
			logging.Warn().Err(err).Msg("rejecting invalid newPost intent")
			return
		}
		post := c.hub.feed.CreatePost(m)
		c.hub.BroadcastPost(post)

	case protocol.NewReply:
		if err := validation.ValidateStruct(&m); err != nil {
			logging.Warn().Err(err).Msg("rejecting invalid newReply intent")
			return
		}
		comment, err := c.hub.feed.CreateComment(m)
		if err != nil {
			logging.Warn().Err(err).Str("post_id", m.PostID).Msg("newReply intent failed")
			return
		}
		c.hub.BroadcastComment(m.PostID, comment)

	case protocol.Like:
		count, ok := c.hub.feed.ApplyLike(m)
		if !ok {
			logging.Warn().Str("target_id", m.TargetID()).Msg("like intent for unknown target")
			return
		}
		c.hub.BroadcastLikeUpdate(m.TargetID(), count)

	default:
		// Server-to-client event types arriving inbound are protocol
		// misuse; drop them.
		logging.Warn().Str("type", msg.MessageType()).Msg("dropping unexpected inbound event")
	}
}

// handleAuth records the viewer's identity and scoping, then replies with
// the init snapshot and the viewer's like-sets. The snapshot is paginated
// for feed pages and post-scoped for thread pages.
func (c *Client) handleAuth(auth protocol.Auth) {
	if err := validation.ValidateStruct(&auth); err != nil {
		logging.Warn().Err(err).Msg("rejecting invalid auth handshake")
		return
	}
	c.userID = auth.UserID
	c.postID = auth.PostID
	c.commentID = auth.CommentID

	posts := c.hub.feed.Snapshot(auth.UserID, auth.Page, auth.Limit)
	if auth.PostID != "" {
		if post, err := c.hub.feed.PostByID(auth.PostID, auth.UserID); err == nil {
			posts = []*models.Post{post}
		}
	}
	likedPosts, likedReplies := c.hub.feed.LikeSets(auth.UserID)

	c.deliver(protocol.Init{Type: protocol.TypeInit, Posts: posts})
	c.deliver(protocol.InitLikes{Type: protocol.TypeInitLikes, LikedPosts: likedPosts, LikedReplies: likedReplies})
}

// deliver queues a message for this client only. It runs on the readPump
// goroutine while the hub may be closing the channel, so it checks the
// closed flag under sendMu.
func (c *Client) deliver(msg protocol.Message) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	select {
	case c.send <- msg:
	default:
		metrics.ChannelDropped.Inc()
		logging.Warn().Uint64("client_id", c.id).Msg("client send buffer full, dropping message")
	}
}

// closeSend closes the send channel exactly once. Only the hub calls it.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := protocol.Encode(message)
			if err != nil {
				logging.Error().Err(err).Msg("failed to encode channel message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Error().Err(err).Msg("failed to write channel message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
