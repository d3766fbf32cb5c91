// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package live

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/reliva-app/reliva-feed/internal/logging"
	"github.com/reliva-app/reliva-feed/internal/models"
	"github.com/reliva-app/reliva-feed/internal/protocol"
	"github.com/reliva-app/reliva-feed/internal/session"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultPageLimit      = 20

	channelWriteWait = 10 * time.Second
)

// Options configures a Channel.
type Options struct {
	// SocketURL is the ws:// or wss:// endpoint of the live channel.
	SocketURL string

	// APIBase is the REST base used for fallback fetches, e.g.
	// "https://feed.reliva.app/api/v1".
	APIBase string

	// Viewer is the identity intents are attributed to.
	Viewer models.User

	// PostID and CommentID scope a thread-page channel. Both empty means
	// a feed-page channel with Page/Limit pagination.
	PostID    string
	CommentID string
	Page      int
	Limit     int

	// ConnectTimeout bounds the websocket handshake. Defaults to 5s.
	ConnectTimeout time.Duration

	// Cache mirrors optimistic state across page mounts. Optional.
	Cache session.SnapshotCache

	// HTTPClient is used for REST fallbacks. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Channel is one page's live connection plus its local state. A Channel
// never reconnects: once the socket drops it stays in local-only mode
// until the page remounts with a fresh Channel.
type Channel struct {
	opts  Options
	state *State

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	closed    bool
	done      chan struct{}

	// breaker guards the fallback comment fetch so a failing REST
	// endpoint cannot be hammered by every thread mount.
	breaker *gobreaker.CircuitBreaker[*models.Comment]
}

// NewChannel creates a channel in the disconnected state. Call Connect to
// go live; every operation works without it, in local-only mode.
func NewChannel(opts Options) *Channel {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultPageLimit
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	settings := gobreaker.Settings{
		Name:    "comment-fallback",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
	return &Channel{
		opts:    opts,
		state:   NewState(),
		done:    make(chan struct{}),
		breaker: gobreaker.NewCircuitBreaker[*models.Comment](settings),
	}
}

// State exposes the channel's local feed state.
func (c *Channel) State() *State {
	return c.state
}

// Load seeds local state before (or instead of) the live snapshot: the
// session cache when present, the REST feed otherwise. Either source
// failing is not fatal; the channel simply starts empty.
func (c *Channel) Load() {
	if c.opts.Cache != nil {
		posts, ok, err := c.opts.Cache.Load()
		if err != nil {
			logging.Warn().Err(err).Msg("session cache read failed")
		} else if ok {
			c.state.Replace(posts)
			return
		}
	}

	posts, err := c.fetchPosts()
	if err != nil {
		logging.Warn().Err(err).Msg("feed bootstrap fetch failed, starting empty")
		return
	}
	c.state.Replace(posts)
	c.writeCache(posts)
}

// Connect dials the socket, sends the auth handshake and starts the read
// loop. On any failure the channel logs and stays in local-only mode;
// Connect reports the error so callers can surface degraded state, but
// the channel remains fully usable either way.
func (c *Channel) Connect() error {
	dialer := websocket.Dialer{HandshakeTimeout: c.opts.ConnectTimeout}
	conn, _, err := dialer.Dial(c.opts.SocketURL, nil)
	if err != nil {
		logging.Warn().Err(err).Str("url", c.opts.SocketURL).
			Msg("live channel unavailable, continuing local-only")
		return fmt.Errorf("dial live channel: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return fmt.Errorf("channel already closed")
	}
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	auth := protocol.Auth{
		UserID:    c.opts.Viewer.ID,
		PostID:    c.opts.PostID,
		CommentID: c.opts.CommentID,
		Page:      c.opts.Page,
		Limit:     c.opts.Limit,
	}
	if err := c.send(auth); err != nil {
		c.markDisconnected()
		return fmt.Errorf("auth handshake: %w", err)
	}

	go c.readLoop(conn)
	return nil
}

// Connected reports whether the socket is currently live.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Close tears down the socket. Local state stays readable after Close.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.connected = false
	close(c.done)
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// Done is closed when the channel shuts down.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// readLoop applies authoritative events until the socket drops. Malformed
// frames are logged and dropped; the connection stays open.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn().Err(err).Msg("live channel dropped, continuing local-only")
			}
			c.markDisconnected()
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			logging.Warn().Err(err).Msg("dropping malformed live message")
			continue
		}
		c.state.Apply(msg)

		// Snapshots flow through to the session cache so the next page
		// mount starts from fresh authoritative state.
		if _, ok := msg.(protocol.Init); ok {
			c.writeCache(c.state.Posts())
		}
	}
}

// send encodes and writes one intent. Callers treat failures as
// fire-and-forget: the optimistic mutation has already been applied.
func (c *Channel) send(msg protocol.Message) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()

	if !connected || conn == nil {
		return fmt.Errorf("channel not connected")
	}

	data, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.MessageType(), err)
	}
	conn.SetWriteDeadline(time.Now().Add(channelWriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.markDisconnected()
		return fmt.Errorf("write %s: %w", msg.MessageType(), err)
	}
	return nil
}

func (c *Channel) markDisconnected() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

// writeCache mirrors posts into the session cache, best effort.
func (c *Channel) writeCache(posts []*models.Post) {
	if c.opts.Cache == nil {
		return
	}
	if err := c.opts.Cache.Store(posts); err != nil {
		logging.Warn().Err(err).Msg("session cache write failed")
	}
}
