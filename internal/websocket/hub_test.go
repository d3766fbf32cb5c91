// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package websocket

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/reliva-app/reliva-feed/internal/feed"
	"github.com/reliva-app/reliva-feed/internal/logging"
	"github.com/reliva-app/reliva-feed/internal/protocol"
)

//nolint:gochecknoinits // keep test logging quiet
func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

func setupHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(feed.NewStore(nil))
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.RunWithContext(ctx) }()
	time.Sleep(10 * time.Millisecond)
	return hub, cancel
}

func registerClient(hub *Hub, client *Client) {
	hub.Register <- client
	time.Sleep(20 * time.Millisecond)
}

func TestNewHub(t *testing.T) {
	hub := NewHub(feed.NewStore(nil))

	if hub.clients == nil || hub.broadcast == nil || hub.Register == nil || hub.Unregister == nil {
		t.Fatal("hub channels not initialized")
	}
	if hub.GetClientCount() != 0 {
		t.Error("new hub should have no clients")
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub, cancel := setupHub(t)
	defer cancel()

	client := NewClient(hub, nil)
	registerClient(hub, client)
	if hub.GetClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.GetClientCount())
	}

	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)
	if hub.GetClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.GetClientCount())
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub, cancel := setupHub(t)
	defer cancel()

	c1 := NewClient(hub, nil)
	c2 := NewClient(hub, nil)
	registerClient(hub, c1)
	registerClient(hub, c2)

	hub.BroadcastLikeUpdate("p1", 3)
	time.Sleep(20 * time.Millisecond)

	for i, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.send:
			update, ok := msg.(protocol.LikeUpdate)
			if !ok || update.TargetID != "p1" || update.LikeCount != 3 {
				t.Errorf("client %d received wrong message: %+v", i, msg)
			}
		default:
			t.Errorf("client %d received nothing", i)
		}
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub, cancel := setupHub(t)

	client := NewClient(hub, nil)
	registerClient(hub, client)

	cancel()
	time.Sleep(30 * time.Millisecond)

	if hub.GetClientCount() != 0 {
		t.Error("shutdown must close every client")
	}
	select {
	case _, open := <-client.send:
		if open {
			t.Error("client send channel should be closed")
		}
	default:
		t.Error("client send channel should be closed, not empty-open")
	}
}

// deliver runs on the readPump goroutine while the hub may be closing the
// same channel on unregister or shutdown; neither side may panic.
func TestDeliverDuringClientTeardown(t *testing.T) {
	hub, cancel := setupHub(t)

	client := NewClient(hub, nil)
	registerClient(hub, client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			client.deliver(protocol.LikeUpdate{Type: protocol.TypeLikeUpdate, TargetID: "p1", LikeCount: i})
		}
	}()

	hub.Unregister <- client
	cancel()
	<-done

	time.Sleep(20 * time.Millisecond)
	if hub.GetClientCount() != 0 {
		t.Errorf("expected 0 clients after teardown, got %d", hub.GetClientCount())
	}
	// A second close attempt must be a no-op as well.
	client.closeSend()
}

func TestIntentFlowCreatesAndBroadcasts(t *testing.T) {
	hub, cancel := setupHub(t)
	defer cancel()

	author := NewClient(hub, nil)
	observer := NewClient(hub, nil)
	registerClient(hub, author)
	registerClient(hub, observer)

	// Handshake identifies the author and yields init + initLikes.
	author.handleMessage(protocol.Auth{Type: protocol.TypeAuth, UserID: "u1", Limit: 10})
	if got := (<-author.send).MessageType(); got != protocol.TypeInit {
		t.Fatalf("first handshake reply = %s, want init", got)
	}
	if got := (<-author.send).MessageType(); got != protocol.TypeInitLikes {
		t.Fatalf("second handshake reply = %s, want initLikes", got)
	}

	author.handleMessage(protocol.NewPost{Type: protocol.TypeNewPost, AuthorID: "u1", Content: "new review"})
	time.Sleep(20 * time.Millisecond)

	msg := <-observer.send
	postEv, ok := msg.(protocol.PostEvent)
	if !ok {
		t.Fatalf("observer got %T, want PostEvent", msg)
	}
	if postEv.Post.Content != "new review" || postEv.Post.ID == "" {
		t.Errorf("authoritative post malformed: %+v", postEv.Post)
	}

	author.handleMessage(protocol.NewReply{Type: protocol.TypeNewReply, PostID: postEv.Post.ID, Content: "a reply", AuthorID: "u1"})
	time.Sleep(20 * time.Millisecond)

	// Drain the author's copy of the post event first.
	<-author.send
	msg = <-observer.send
	commentEv, ok := msg.(protocol.CommentEvent)
	if !ok {
		t.Fatalf("observer got %T, want CommentEvent", msg)
	}
	if commentEv.PostID != postEv.Post.ID || commentEv.Comment.Content != "a reply" {
		t.Errorf("comment event malformed: %+v", commentEv)
	}
}

func TestIntentBeforeAuthDropped(t *testing.T) {
	hub, cancel := setupHub(t)
	defer cancel()

	client := NewClient(hub, nil)
	registerClient(hub, client)

	client.handleMessage(protocol.NewPost{Type: protocol.TypeNewPost, AuthorID: "u1", Content: "x"})
	time.Sleep(20 * time.Millisecond)

	if hub.feed.Len() != 0 {
		t.Error("intents before the auth handshake must be dropped")
	}
}

func TestInvalidIntentRejected(t *testing.T) {
	hub, cancel := setupHub(t)
	defer cancel()

	client := NewClient(hub, nil)
	registerClient(hub, client)
	client.handleMessage(protocol.Auth{Type: protocol.TypeAuth, UserID: "u1"})
	<-client.send
	<-client.send

	// Empty content fails validation before touching the store.
	client.handleMessage(protocol.NewPost{Type: protocol.TypeNewPost, AuthorID: "u1"})
	time.Sleep(20 * time.Millisecond)

	if hub.feed.Len() != 0 {
		t.Error("invalid intent must not create a post")
	}
}

func TestLikeIntentBroadcastsAuthoritativeCount(t *testing.T) {
	hub, cancel := setupHub(t)
	defer cancel()

	client := NewClient(hub, nil)
	registerClient(hub, client)
	client.handleMessage(protocol.Auth{Type: protocol.TypeAuth, UserID: "u1"})
	<-client.send
	<-client.send

	client.handleMessage(protocol.NewPost{Type: protocol.TypeNewPost, AuthorID: "u1", Content: "p"})
	time.Sleep(20 * time.Millisecond)
	postEv := (<-client.send).(protocol.PostEvent)

	client.handleMessage(protocol.Like{Type: protocol.TypeLikePost, UserID: "u1", PostID: postEv.Post.ID, TargetType: protocol.TargetPost})
	time.Sleep(20 * time.Millisecond)

	update := (<-client.send).(protocol.LikeUpdate)
	if update.TargetID != postEv.Post.ID || update.LikeCount != 1 {
		t.Errorf("likeUpdate = %+v, want count 1 for %s", update, postEv.Post.ID)
	}
}
