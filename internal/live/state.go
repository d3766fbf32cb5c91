// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package live

import (
	"sync"

	"github.com/reliva-app/reliva-feed/internal/logging"
	"github.com/reliva-app/reliva-feed/internal/models"
	"github.com/reliva-app/reliva-feed/internal/protocol"
)

// State is the viewer-local feed state: the post list and the viewer's
// like-sets. Authoritative events and optimistic mutations both land
// here. The read loop and the caller run on different goroutines, so all
// access is mutex-guarded.
type State struct {
	mu           sync.RWMutex
	posts        []*models.Post
	likedPosts   map[string]bool
	likedReplies map[string]bool
}

// NewState creates empty local state.
func NewState() *State {
	return &State{
		likedPosts:   make(map[string]bool),
		likedReplies: make(map[string]bool),
	}
}

// Apply reconciles one authoritative event into local state. Events are
// applied strictly in arrival order; the protocol provides no sequence
// numbers. Intent messages arriving inbound are ignored.
func (s *State) Apply(msg protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch m := msg.(type) {
	case protocol.Init:
		// Full snapshot replaces the feed wholesale.
		s.posts = models.ClonePosts(m.Posts)

	case protocol.InitLikes:
		s.likedPosts = make(map[string]bool, len(m.LikedPosts))
		for _, id := range m.LikedPosts {
			s.likedPosts[id] = true
		}
		s.likedReplies = make(map[string]bool, len(m.LikedReplies))
		for _, id := range m.LikedReplies {
			s.likedReplies[id] = true
		}

	case protocol.PostEvent:
		if m.Post == nil {
			return
		}
		s.posts = append([]*models.Post{m.Post.Clone()}, s.posts...)

	case protocol.CommentEvent:
		if m.Comment == nil {
			return
		}
		post := s.findPost(m.PostID)
		if post == nil {
			logging.Warn().Str("post_id", m.PostID).Msg("comment event for unknown post, dropping")
			return
		}
		// Appended as-is. An optimistic local copy of the same logical
		// reply is NOT deduplicated against this echo; the two carry
		// different ids and both remain in the list. See DESIGN.md.
		post.Comments = append(post.Comments, m.Comment.Clone())

	case protocol.LikeUpdate:
		// The count is authoritative: overwrite, never increment, so
		// optimistic drift cannot compound.
		if post := s.findPost(m.TargetID); post != nil {
			post.LikeCount = m.LikeCount
			return
		}
		for _, p := range s.posts {
			for _, c := range p.Comments {
				if c.ID == m.TargetID {
					c.LikeCount = m.LikeCount
					return
				}
			}
		}
	}
}

// Replace seeds the state from a snapshot (cache fast-path or REST).
func (s *State) Replace(posts []*models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = models.ClonePosts(posts)
}

// InsertReply appends an optimistic reply to the owning post's flat list.
// Reports false when the post is unknown locally.
func (s *State) InsertReply(reply *models.Comment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	post := s.findPost(reply.PostID)
	if post == nil {
		return false
	}
	post.Comments = append(post.Comments, reply.Clone())
	return true
}

// TogglePostLike flips the viewer's like on a post and adjusts the local
// count immediately. Returns the new liked state and false when the post
// is unknown.
func (s *State) TogglePostLike(postID string) (liked, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post := s.findPost(postID)
	if post == nil {
		return false, false
	}
	if s.likedPosts[postID] {
		delete(s.likedPosts, postID)
		if post.LikeCount > 0 {
			post.LikeCount--
		}
		return false, true
	}
	s.likedPosts[postID] = true
	post.LikeCount++
	return true, true
}

// ToggleReplyLike flips the viewer's like on a comment.
func (s *State) ToggleReplyLike(replyID string) (liked, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		for _, c := range p.Comments {
			if c.ID != replyID {
				continue
			}
			if s.likedReplies[replyID] {
				delete(s.likedReplies, replyID)
				if c.LikeCount > 0 {
					c.LikeCount--
				}
				return false, true
			}
			s.likedReplies[replyID] = true
			c.LikeCount++
			return true, true
		}
	}
	return false, false
}

// Posts returns a deep copy of the feed with viewer-relative IsLiked
// flags derived from the like-sets.
func (s *State) Posts() []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		cp := p.Clone()
		cp.IsLiked = s.likedPosts[p.ID]
		for _, c := range cp.Comments {
			c.IsLiked = s.likedReplies[c.ID]
		}
		out = append(out, cp)
	}
	return out
}

// Post returns a deep decorated copy of one post, or nil.
func (s *State) Post(postID string) *models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.findPost(postID)
	if p == nil {
		return nil
	}
	cp := p.Clone()
	cp.IsLiked = s.likedPosts[p.ID]
	for _, c := range cp.Comments {
		c.IsLiked = s.likedReplies[c.ID]
	}
	return cp
}

// LikedPost reports the viewer's local like state for a post.
func (s *State) LikedPost(postID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.likedPosts[postID]
}

// LikedReply reports the viewer's local like state for a comment.
func (s *State) LikedReply(replyID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.likedReplies[replyID]
}

// findPost must be called with the lock held.
func (s *State) findPost(postID string) *models.Post {
	for _, p := range s.posts {
		if p.ID == postID {
			return p
		}
	}
	return nil
}
