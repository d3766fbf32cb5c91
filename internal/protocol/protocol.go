// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

// Package protocol defines the live-update channel wire format.
//
// Every message is a JSON object with a "type" discriminator. Decode turns
// raw bytes into exactly one concrete Message variant at the transport
// boundary; nothing downstream ever handles an untyped map.
package protocol

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/reliva-app/reliva-feed/internal/models"
)

// Message type discriminators.
const (
	// Outbound intents (client -> server).
	TypeAuth        = "auth"
	TypeNewPost     = "newPost"
	TypeNewReply    = "newReply"
	TypeLikePost    = "likePost"
	TypeUnlikePost  = "unlikePost"
	TypeLikeReply   = "likeReply"
	TypeUnlikeReply = "unlikeReply"

	// Authoritative events (server -> client).
	TypeInit       = "init"
	TypeInitLikes  = "initLikes"
	TypePost       = "post"
	TypeComment    = "comment"
	TypeLikeUpdate = "likeUpdate"
)

// Like target types.
const (
	TargetPost    = "Post"
	TargetComment = "Comment"
)

// Message is implemented by every wire message variant.
type Message interface {
	MessageType() string
}

// Auth is the handshake sent immediately after the connection opens.
// Feed pages carry pagination; thread pages carry post/comment scoping.
type Auth struct {
	Type      string `json:"type"`
	UserID    string `json:"userId" validate:"required"`
	PostID    string `json:"postId,omitempty"`
	CommentID string `json:"commentId,omitempty"`
	Page      int    `json:"page,omitempty" validate:"min=0"`
	Limit     int    `json:"limit,omitempty" validate:"min=0,max=100"`
}

func (Auth) MessageType() string { return TypeAuth }

// NewPost asks the server to create a post attributed to AuthorID.
type NewPost struct {
	Type         string  `json:"type"`
	AuthorID     string  `json:"authorId" validate:"required"`
	AuthorType   string  `json:"authorType,omitempty"`
	Content      string  `json:"content" validate:"required"`
	MediaID      string  `json:"mediaId,omitempty"`
	MediaTitle   string  `json:"mediaTitle,omitempty"`
	MediaCover   string  `json:"mediaCover,omitempty"`
	MediaType    string  `json:"mediaType,omitempty"`
	MediaYear    string  `json:"mediaYear,omitempty"`
	MediaAuthor  string  `json:"mediaAuthor,omitempty"`
	MediaArtist  string  `json:"mediaArtist,omitempty"`
	MediaSubType string  `json:"mediaSubType,omitempty"`
	Rating       float64 `json:"rating,omitempty" validate:"min=0,max=10"`
}

func (NewPost) MessageType() string { return TypeNewPost }

// NewReply asks the server to create a comment under PostID, optionally
// nested under ParentReplyID.
type NewReply struct {
	Type          string `json:"type"`
	PostID        string `json:"postId" validate:"required"`
	ParentReplyID string `json:"parentReplyId,omitempty"`
	Content       string `json:"content" validate:"required"`
	AuthorID      string `json:"authorId" validate:"required"`
}

func (NewReply) MessageType() string { return TypeNewReply }

// Like is the shared shape of the four like/unlike intents. The concrete
// Type field distinguishes likePost, unlikePost, likeReply and unlikeReply.
type Like struct {
	Type       string `json:"type"`
	UserID     string `json:"userId" validate:"required"`
	PostID     string `json:"postId,omitempty"`
	ReplyID    string `json:"replyId,omitempty"`
	TargetType string `json:"targetType"`
}

func (l Like) MessageType() string { return l.Type }

// TargetID returns the id the like applies to: the reply for comment
// targets, the post otherwise.
func (l Like) TargetID() string {
	if l.TargetType == TargetComment {
		return l.ReplyID
	}
	return l.PostID
}

// Liked reports whether the intent adds (true) or removes (false) a like.
func (l Like) Liked() bool {
	return l.Type == TypeLikePost || l.Type == TypeLikeReply
}

// Init carries a full paginated snapshot of posts. It replaces local feed
// state wholesale.
type Init struct {
	Type  string         `json:"type"`
	Posts []*models.Post `json:"posts"`
}

func (Init) MessageType() string { return TypeInit }

// InitLikes carries the viewer's like-sets. It replaces local like-set
// state wholesale.
type InitLikes struct {
	Type         string   `json:"type"`
	LikedPosts   []string `json:"likedPosts"`
	LikedReplies []string `json:"likedReplies"`
}

func (InitLikes) MessageType() string { return TypeInitLikes }

// PostEvent announces a newly created post by any user.
type PostEvent struct {
	Type string       `json:"type"`
	Post *models.Post `json:"post"`
}

func (PostEvent) MessageType() string { return TypePost }

// CommentEvent announces a newly created comment, matched to its owning
// post by PostID.
type CommentEvent struct {
	Type    string          `json:"type"`
	PostID  string          `json:"postId"`
	Comment *models.Comment `json:"comment"`
}

func (CommentEvent) MessageType() string { return TypeComment }

// LikeUpdate carries the authoritative like-count for a target. Receivers
// overwrite their local count; they must never increment from it, which
// guards against optimistic drift.
type LikeUpdate struct {
	Type      string `json:"type"`
	TargetID  string `json:"targetId"`
	LikeCount int    `json:"likeCount"`
}

func (LikeUpdate) MessageType() string { return TypeLikeUpdate }

// Decode parses raw bytes into the concrete Message variant named by the
// type discriminator. Unknown or missing types are an error; malformed
// payloads for a known type are an error too. Callers on the receive path
// log and drop on error, keeping the connection open.
func Decode(data []byte) (Message, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var (
		msg Message
		err error
	)
	switch envelope.Type {
	case TypeAuth:
		var m Auth
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeNewPost:
		var m NewPost
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeNewReply:
		var m NewReply
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeLikePost, TypeUnlikePost, TypeLikeReply, TypeUnlikeReply:
		var m Like
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeInit:
		var m Init
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeInitLikes:
		var m InitLikes
		err = json.Unmarshal(data, &m)
		msg = m
	case TypePost:
		var m PostEvent
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeComment:
		var m CommentEvent
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeLikeUpdate:
		var m LikeUpdate
		err = json.Unmarshal(data, &m)
		msg = m
	default:
		return nil, fmt.Errorf("unknown message type %q", envelope.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", envelope.Type, err)
	}
	return msg, nil
}

// Encode marshals a message for the wire, forcing the discriminator to
// match the variant so a zero Type field cannot produce an untyped frame.
func Encode(msg Message) ([]byte, error) {
	switch m := msg.(type) {
	case Auth:
		m.Type = TypeAuth
		return json.Marshal(m)
	case NewPost:
		m.Type = TypeNewPost
		return json.Marshal(m)
	case NewReply:
		m.Type = TypeNewReply
		return json.Marshal(m)
	case Like:
		if m.Type == "" {
			return nil, fmt.Errorf("like message requires an explicit type")
		}
		return json.Marshal(m)
	case Init:
		m.Type = TypeInit
		return json.Marshal(m)
	case InitLikes:
		m.Type = TypeInitLikes
		return json.Marshal(m)
	case PostEvent:
		m.Type = TypePost
		return json.Marshal(m)
	case CommentEvent:
		m.Type = TypeComment
		return json.Marshal(m)
	case LikeUpdate:
		m.Type = TypeLikeUpdate
		return json.Marshal(m)
	default:
		return nil, fmt.Errorf("unsupported message %T", msg)
	}
}
