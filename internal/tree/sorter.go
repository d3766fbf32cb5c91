// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package tree

import (
	"sort"

	"github.com/reliva-app/reliva-feed/internal/models"
)

// SortFeed orders a forest for the main feed: strictly ascending by
// timestamp (oldest first), applied recursively at every level. Comments
// with a missing or unparseable timestamp carry the zero time and sort
// before everything else.
func SortFeed(forest []*models.Comment) {
	sort.SliceStable(forest, func(i, j int) bool {
		return forest[i].Timestamp.Before(forest[j].Timestamp.Time)
	})
	for _, c := range forest {
		SortFeed(c.Children)
	}
}

// SortThread orders one sibling list for the thread-detail page: comments
// authored by the viewer sort before all others, and within each partition
// newest first. The viewer's own fresh contribution surfaces at the top.
//
// Unlike SortFeed this is deliberately NOT recursive; nested sub-reply
// lists keep their server/insertion order. Callers apply it to the direct
// replies of the thread's parent comment only.
func SortThread(siblings []*models.Comment, viewerID string) {
	sort.SliceStable(siblings, func(i, j int) bool {
		iMine := siblings[i].AuthorID == viewerID
		jMine := siblings[j].AuthorID == viewerID
		if iMine != jMine {
			return iMine
		}
		return siblings[i].Timestamp.After(siblings[j].Timestamp.Time)
	})
}
