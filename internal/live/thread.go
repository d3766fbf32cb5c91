// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package live

import (
	"fmt"

	"github.com/reliva-app/reliva-feed/internal/logging"
	"github.com/reliva-app/reliva-feed/internal/models"
	"github.com/reliva-app/reliva-feed/internal/tree"
)

// ThreadView is the reconstructed page for one comment: the owning post,
// the focused parent comment, and its direct replies sorted viewer-first
// then newest-first. Each reply carries its full nested subtree.
type ThreadView struct {
	Post    *models.Post
	Parent  *models.Comment
	Replies []*models.Comment

	// ParentMissing is set when the parent could not be resolved from
	// local state or the fallback fetch and Parent is a placeholder.
	ParentMissing bool
}

// Thread reconstructs the view for commentID within postID.
//
// The post must resolve, from local state, the session cache or a REST
// fetch, or the whole view fails. The parent comment degrades softly: if
// it is absent from the post's flat list and the fallback fetch fails
// too, the view renders around a placeholder instead of erroring, so a
// deep link to a just-deleted comment still shows its surviving replies.
func (c *Channel) Thread(postID, commentID string) (*ThreadView, error) {
	post, err := c.resolvePost(postID)
	if err != nil {
		return nil, err
	}

	view := &ThreadView{Post: post}

	if parent := tree.Find(post.Comments, commentID); parent != nil {
		view.Parent = parent.Clone()
	} else {
		fetched, err := c.breaker.Execute(func() (*models.Comment, error) {
			return c.fetchComment(commentID)
		})
		if err != nil {
			logging.Warn().Err(err).Str("comment_id", commentID).
				Msg("parent comment unresolvable, rendering placeholder")
			view.Parent = placeholderComment(postID, commentID)
			view.ParentMissing = true
		} else {
			view.Parent = fetched
		}
	}
	view.Parent.IsLiked = c.state.LikedReply(view.Parent.ID)

	view.Replies = tree.DirectReplies(post.Comments, commentID)
	for _, r := range view.Replies {
		decorateSubtree(r, c.state)
	}
	tree.SortThread(view.Replies, c.opts.Viewer.ID)
	return view, nil
}

// resolvePost tries local state, then the session cache, then REST.
func (c *Channel) resolvePost(postID string) (*models.Post, error) {
	if post := c.state.Post(postID); post != nil {
		return post, nil
	}

	if c.opts.Cache != nil {
		posts, ok, err := c.opts.Cache.Load()
		if err != nil {
			logging.Warn().Err(err).Msg("session cache read failed")
		} else if ok {
			for _, p := range posts {
				if p.ID == postID {
					return p.Clone(), nil
				}
			}
		}
	}

	posts, err := c.fetchPosts()
	if err != nil {
		return nil, fmt.Errorf("resolve post %s: %w", postID, err)
	}
	for _, p := range posts {
		if p.ID == postID {
			return p.Clone(), nil
		}
	}
	return nil, fmt.Errorf("post %s not found", postID)
}

// placeholderComment stands in for an unresolvable thread parent. It
// carries the requested id so reply submission still targets the right
// parent, and non-empty content so the page has something to render.
func placeholderComment(postID, commentID string) *models.Comment {
	return &models.Comment{
		ID:      commentID,
		PostID:  postID,
		Content: "This comment could not be found.",
	}
}

func decorateSubtree(c *models.Comment, state *State) {
	c.IsLiked = state.LikedReply(c.ID)
	for _, child := range c.Children {
		decorateSubtree(child, state)
	}
}
