// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package tree

import "github.com/reliva-app/reliva-feed/internal/models"

// Find locates a comment by id anywhere in a flat comment list, at any
// depth of the logical tree. Returns nil when absent.
func Find(comments []*models.Comment, id string) *models.Comment {
	for _, c := range comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// DirectReplies derives the thread-detail sub-tree for a target comment:
// every comment whose ParentCommentID equals targetID, each carrying its
// own nested replies so reply counts render without a second pass. The
// returned nodes are fully built copies, walkable to unbounded depth.
func DirectReplies(comments []*models.Comment, targetID string) []*models.Comment {
	var direct []*models.Comment
	for _, c := range comments {
		if c.ParentCommentID != targetID {
			continue
		}
		node := *c
		node.Children = buildDescendants(comments, c.ID, map[string]bool{targetID: true, c.ID: true})
		direct = append(direct, &node)
	}
	return direct
}

// buildDescendants attaches the reply sub-tree below parentID. The seen
// set guards against cyclic parent references in malformed input.
func buildDescendants(comments []*models.Comment, parentID string, seen map[string]bool) []*models.Comment {
	var children []*models.Comment
	for _, c := range comments {
		if c.ParentCommentID != parentID || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		node := *c
		node.Children = buildDescendants(comments, c.ID, seen)
		children = append(children, &node)
	}
	return children
}
