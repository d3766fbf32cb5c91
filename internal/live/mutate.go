// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package live

import (
	"fmt"
	"time"

	"github.com/reliva-app/reliva-feed/internal/logging"
	"github.com/reliva-app/reliva-feed/internal/models"
	"github.com/reliva-app/reliva-feed/internal/protocol"
)

// localID mints a provisional id for an optimistic record. The id is
// never reconciled against the server-assigned one; when the channel is
// live the authoritative echo arrives as a second record.
func localID() string {
	return fmt.Sprintf("local-%d", time.Now().UnixNano())
}

// AddReply applies an optimistic reply and fires the intent at the
// server without waiting. The returned comment carries a local- id and
// is already visible in State and, when a cache is configured, in the
// session cache. Fails only when the post is unknown locally or, for a
// nested reply, the parent cannot be found.
func (c *Channel) AddReply(postID, parentID, content string) (*models.Comment, error) {
	// The server rejects empty content anyway; blocking it here keeps the
	// doomed record out of local state and the cache, with no round trip.
	if content == "" {
		return nil, fmt.Errorf("reply content required")
	}
	reply := &models.Comment{
		ID:              localID(),
		PostID:          postID,
		ParentCommentID: parentID,
		AuthorID:        c.opts.Viewer.ID,
		AuthorName:      c.opts.Viewer.DisplayName,
		Content:         content,
		Timestamp:       models.Now(),
	}

	if parentID != "" {
		post := c.state.Post(postID)
		if post == nil {
			return nil, fmt.Errorf("post %s not found locally", postID)
		}
		if !commentKnown(post.Comments, parentID) {
			return nil, fmt.Errorf("parent comment %s not found in post %s", parentID, postID)
		}
	}

	if !c.state.InsertReply(reply) {
		return nil, fmt.Errorf("post %s not found locally", postID)
	}
	c.spliceCachedReply(reply)

	if err := c.send(protocol.NewReply{
		PostID:        postID,
		ParentReplyID: parentID,
		Content:       content,
		AuthorID:      c.opts.Viewer.ID,
	}); err != nil {
		logging.Debug().Err(err).Str("post_id", postID).
			Msg("reply intent not delivered, kept locally")
	}
	return reply, nil
}

// AddPost applies an optimistic post and fires the intent.
func (c *Channel) AddPost(draft models.Post) (*models.Post, error) {
	if draft.Content == "" {
		return nil, fmt.Errorf("post content required")
	}
	post := draft.Clone()
	post.ID = localID()
	post.AuthorID = c.opts.Viewer.ID
	post.AuthorName = c.opts.Viewer.DisplayName
	post.Timestamp = models.Now()
	post.Comments = []*models.Comment{}

	c.state.Apply(protocol.PostEvent{Post: post})
	c.writeCache(c.state.Posts())

	if err := c.send(protocol.NewPost{
		AuthorID:     c.opts.Viewer.ID,
		AuthorType:   draft.AuthorType,
		Content:      draft.Content,
		MediaID:      draft.MediaID,
		MediaTitle:   draft.MediaTitle,
		MediaCover:   draft.MediaCover,
		MediaType:    draft.MediaType,
		MediaYear:    draft.MediaYear,
		MediaAuthor:  draft.MediaAuthor,
		MediaArtist:  draft.MediaArtist,
		MediaSubType: draft.MediaSubType,
		Rating:       draft.Rating,
	}); err != nil {
		logging.Debug().Err(err).Msg("post intent not delivered, kept locally")
	}
	return post.Clone(), nil
}

// TogglePostLike flips the viewer's like on a post: the count moves
// immediately and the matching intent is fired at the server. The later
// likeUpdate broadcast overwrites the optimistic count.
func (c *Channel) TogglePostLike(postID string) (bool, error) {
	liked, ok := c.state.TogglePostLike(postID)
	if !ok {
		return false, fmt.Errorf("post %s not found locally", postID)
	}
	c.writeCache(c.state.Posts())

	intentType := protocol.TypeUnlikePost
	if liked {
		intentType = protocol.TypeLikePost
	}
	if err := c.send(protocol.Like{
		Type:       intentType,
		UserID:     c.opts.Viewer.ID,
		PostID:     postID,
		TargetType: protocol.TargetPost,
	}); err != nil {
		logging.Debug().Err(err).Str("post_id", postID).
			Msg("like intent not delivered, kept locally")
	}
	return liked, nil
}

// ToggleReplyLike flips the viewer's like on a comment.
func (c *Channel) ToggleReplyLike(postID, replyID string) (bool, error) {
	liked, ok := c.state.ToggleReplyLike(replyID)
	if !ok {
		return false, fmt.Errorf("comment %s not found locally", replyID)
	}
	c.writeCache(c.state.Posts())

	intentType := protocol.TypeUnlikeReply
	if liked {
		intentType = protocol.TypeLikeReply
	}
	if err := c.send(protocol.Like{
		Type:       intentType,
		UserID:     c.opts.Viewer.ID,
		PostID:     postID,
		ReplyID:    replyID,
		TargetType: protocol.TargetComment,
	}); err != nil {
		logging.Debug().Err(err).Str("reply_id", replyID).
			Msg("like intent not delivered, kept locally")
	}
	return liked, nil
}

// spliceCachedReply rewrites the session cache with the optimistic reply
// appended to its post's flat list. The cache copy may be staler than
// State (another page may have written it), so the splice re-verifies
// the post and parent against the cached snapshot and skips silently
// when either is missing there.
func (c *Channel) spliceCachedReply(reply *models.Comment) {
	if c.opts.Cache == nil {
		return
	}
	posts, ok, err := c.opts.Cache.Load()
	if err != nil || !ok {
		if err != nil {
			logging.Warn().Err(err).Msg("session cache read failed during splice")
		}
		return
	}

	for _, p := range posts {
		if p.ID != reply.PostID {
			continue
		}
		if reply.ParentCommentID != "" && !commentKnown(p.Comments, reply.ParentCommentID) {
			return
		}
		p.Comments = append(p.Comments, reply.Clone())
		c.writeCache(posts)
		return
	}
}

// commentKnown searches a flat list recursively; cached snapshots may
// carry pre-built children, so both layers are walked.
func commentKnown(comments []*models.Comment, id string) bool {
	for _, c := range comments {
		if c.ID == id {
			return true
		}
		if commentKnown(c.Children, id) {
			return true
		}
	}
	return false
}
