// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

// Package feed holds the authoritative in-memory feed state: the post list
// (newest first), each post's flat comment list, and per-viewer like-sets.
//
// The original engine relied on a single-threaded event loop for write
// safety. Here the hub's client goroutines mutate the store concurrently,
// so every access goes through one RWMutex; there are no partial-lock fast
// paths.
package feed

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/reliva-app/reliva-feed/internal/models"
	"github.com/reliva-app/reliva-feed/internal/protocol"
)

var (
	// ErrPostNotFound is returned when a post id matches nothing.
	ErrPostNotFound = errors.New("post not found")

	// ErrCommentNotFound is returned when a comment id matches nothing.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrParentMismatch is returned when a reply names a parent comment
	// that belongs to a different post.
	ErrParentMismatch = errors.New("parent comment belongs to a different post")
)

// UserResolver maps an author id to a display identity. The identity
// provider itself is an external collaborator; the store only consumes
// this interface.
type UserResolver interface {
	Resolve(authorID string) (models.User, bool)
}

// Store is the authoritative feed state.
type Store struct {
	mu    sync.RWMutex
	posts []*models.Post // newest first

	// likes holds per-target like-sets: target id -> set of user ids.
	// The authoritative count for a target is the size of its set.
	postLikes    map[string]map[string]struct{}
	commentLikes map[string]map[string]struct{}

	users UserResolver
}

// NewStore creates an empty store. The resolver may be nil, in which case
// authors keep whatever display name the intent carried.
func NewStore(users UserResolver) *Store {
	return &Store{
		postLikes:    make(map[string]map[string]struct{}),
		commentLikes: make(map[string]map[string]struct{}),
		users:        users,
	}
}

// ReplaceAll swaps in a full post list, newest first. Used when seeding
// from a persisted snapshot at startup. Like counts already present on the
// records are preserved as opaque counters until fresh likes arrive.
func (s *Store) ReplaceAll(posts []*models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = models.ClonePosts(posts)
}

// Snapshot returns a deep copy of one page of the feed, newest first, with
// viewer-relative IsLiked flags filled in. page is zero-based; a limit of
// zero means everything.
func (s *Store) Snapshot(viewerID string, page, limit int) []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start, end := 0, len(s.posts)
	if limit > 0 {
		// page*limit can overflow for hostile page values; any page
		// past the end is just an empty page.
		if page < 0 || page > len(s.posts)/limit {
			start = len(s.posts)
		} else {
			start = page * limit
		}
		end = start + limit
		if end > len(s.posts) {
			end = len(s.posts)
		}
	}

	out := make([]*models.Post, 0, end-start)
	for _, p := range s.posts[start:end] {
		out = append(out, s.decorate(p, viewerID))
	}
	return out
}

// PostByID returns a deep copy of one post for the viewer.
func (s *Store) PostByID(postID, viewerID string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.findPost(postID)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, postID)
	}
	return s.decorate(p, viewerID), nil
}

// CommentByID locates a comment anywhere in the feed. This backs the
// thread page's fallback lookup when the comment is missing from a cached
// post.
func (s *Store) CommentByID(commentID string) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		for _, c := range p.Comments {
			if c.ID == commentID {
				out := c.Clone()
				out.LikeCount = len(s.commentLikes[c.ID])
				return out, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCommentNotFound, commentID)
}

// CreatePost materializes a newPost intent: assigns a server id and
// timestamp, resolves the author, and prepends the post to the feed.
func (s *Store) CreatePost(intent protocol.NewPost) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	post := &models.Post{
		ID:           uuid.NewString(),
		AuthorID:     intent.AuthorID,
		AuthorName:   s.displayName(intent.AuthorID),
		AuthorType:   intent.AuthorType,
		Content:      intent.Content,
		MediaID:      intent.MediaID,
		MediaTitle:   intent.MediaTitle,
		MediaCover:   intent.MediaCover,
		MediaType:    intent.MediaType,
		MediaYear:    intent.MediaYear,
		MediaAuthor:  intent.MediaAuthor,
		MediaArtist:  intent.MediaArtist,
		MediaSubType: intent.MediaSubType,
		Rating:       intent.Rating,
		Timestamp:    models.Now(),
		Comments:     []*models.Comment{},
	}

	s.posts = append([]*models.Post{post}, s.posts...)
	return post.Clone()
}

// CreateComment materializes a newReply intent: assigns a server id and
// timestamp and appends the comment to the owning post's flat list. The
// parent, when named, must belong to the same post.
func (s *Store) CreateComment(intent protocol.NewReply) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post := s.findPost(intent.PostID)
	if post == nil {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, intent.PostID)
	}

	if intent.ParentReplyID != "" {
		parent := findComment(post.Comments, intent.ParentReplyID)
		if parent == nil {
			// The parent may live on another post; that violates the
			// same-post invariant.
			for _, other := range s.posts {
				if other != post && findComment(other.Comments, intent.ParentReplyID) != nil {
					return nil, fmt.Errorf("%w: %s", ErrParentMismatch, intent.ParentReplyID)
				}
			}
			return nil, fmt.Errorf("%w: %s", ErrCommentNotFound, intent.ParentReplyID)
		}
	}

	comment := &models.Comment{
		ID:              uuid.NewString(),
		PostID:          post.ID,
		ParentCommentID: intent.ParentReplyID,
		AuthorID:        intent.AuthorID,
		AuthorName:      s.displayName(intent.AuthorID),
		Content:         intent.Content,
		Timestamp:       models.Now(),
	}

	post.Comments = append(post.Comments, comment)
	return comment.Clone(), nil
}

// ApplyLike applies a like/unlike intent and returns the authoritative
// count for the target. The bool result reports whether the target exists.
func (s *Store) ApplyLike(intent protocol.Like) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targetID := intent.TargetID()
	var sets map[string]map[string]struct{}
	switch {
	case intent.TargetType == protocol.TargetComment:
		if s.findCommentAnywhere(targetID) == nil {
			return 0, false
		}
		sets = s.commentLikes
	default:
		if s.findPost(targetID) == nil {
			return 0, false
		}
		sets = s.postLikes
	}

	set := sets[targetID]
	if set == nil {
		set = make(map[string]struct{})
		sets[targetID] = set
	}
	if intent.Liked() {
		set[intent.UserID] = struct{}{}
	} else {
		delete(set, intent.UserID)
	}
	return len(set), true
}

// LikeSets returns the ids of the posts and comments the viewer has liked,
// for the initLikes handshake reply.
func (s *Store) LikeSets(viewerID string) (posts, comments []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, set := range s.postLikes {
		if _, ok := set[viewerID]; ok {
			posts = append(posts, id)
		}
	}
	for id, set := range s.commentLikes {
		if _, ok := set[viewerID]; ok {
			comments = append(comments, id)
		}
	}
	return posts, comments
}

// Len returns the number of posts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// All returns a deep copy of every post without viewer decoration, with
// authoritative like counts baked in. Used by the snapshot flusher.
func (s *Store) All() []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, s.decorate(p, ""))
	}
	return out
}

// decorate deep-copies a post, baking in authoritative like counts and the
// viewer-relative IsLiked flags. Must be called with the lock held.
func (s *Store) decorate(p *models.Post, viewerID string) *models.Post {
	out := p.Clone()
	if set, ok := s.postLikes[p.ID]; ok {
		out.LikeCount = len(set)
		_, out.IsLiked = set[viewerID]
	}
	for _, c := range out.Comments {
		if set, ok := s.commentLikes[c.ID]; ok {
			c.LikeCount = len(set)
			_, c.IsLiked = set[viewerID]
		}
	}
	return out
}

func (s *Store) displayName(authorID string) string {
	if s.users == nil {
		return ""
	}
	if u, ok := s.users.Resolve(authorID); ok {
		return u.DisplayName
	}
	return ""
}

func (s *Store) findPost(postID string) *models.Post {
	for _, p := range s.posts {
		if p.ID == postID {
			return p
		}
	}
	return nil
}

func (s *Store) findCommentAnywhere(commentID string) *models.Comment {
	for _, p := range s.posts {
		if c := findComment(p.Comments, commentID); c != nil {
			return c
		}
	}
	return nil
}

func findComment(comments []*models.Comment, id string) *models.Comment {
	for _, c := range comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}
