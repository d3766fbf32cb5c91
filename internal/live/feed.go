// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package live

import (
	"github.com/reliva-app/reliva-feed/internal/models"
	"github.com/reliva-app/reliva-feed/internal/tree"
)

// FeedEntry is one rendered feed item: the post plus its comment forest,
// nested and sorted oldest-first at every level.
type FeedEntry struct {
	Post   *models.Post
	Forest []*models.Comment
}

// Feed renders the current local state for the feed page. The flat
// comment lists are built into trees and recursively sorted ascending;
// the post order itself is whatever the server (or the optimistic
// prepend) established.
func (c *Channel) Feed() []*FeedEntry {
	posts := c.state.Posts()
	out := make([]*FeedEntry, 0, len(posts))
	for _, p := range posts {
		forest := tree.Build(p.Comments)
		tree.SortFeed(forest)
		out = append(out, &FeedEntry{Post: p, Forest: forest})
	}
	return out
}
