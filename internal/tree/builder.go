// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

// Package tree derives nested reply views from a post's flat comment list.
//
// The flat list is the source of truth; everything this package returns is
// a disposable copy. Build reconstructs the forest, the sorters apply the
// per-view ordering policies, and the thread helpers slice out the sub-tree
// a thread-detail page renders.
package tree

import "github.com/reliva-app/reliva-feed/internal/models"

// Build reconstructs the nested forest from a flat comment list.
//
// Comments with an empty ParentCommentID become roots. A comment whose
// parent id matches no record in the input (the parent may have been
// fetched separately) is promoted to a root rather than dropped. Build is
// total: it terminates on any input, including dangling and cyclic parent
// references, and every input comment appears exactly once in the output.
//
// Child ordering is whatever the input order produced; ordering is the
// sorters' job, applied after construction.
func Build(comments []*models.Comment) []*models.Comment {
	if len(comments) == 0 {
		return nil
	}

	index := make(map[string]*models.Comment, len(comments))
	nodes := make([]*models.Comment, len(comments))
	for i, c := range comments {
		node := *c
		node.Children = nil
		nodes[i] = &node
		index[node.ID] = &node
	}

	var roots []*models.Comment
	parentOf := make(map[string]*models.Comment, len(comments))
	for _, node := range nodes {
		parent, ok := index[node.ParentCommentID]
		if node.ParentCommentID == "" || !ok || parent == node {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
		parentOf[node.ID] = parent
	}

	// A cycle of parent references leaves its members attached to each
	// other but unreachable from any root. Promote the first such node
	// (in input order) per cycle so nothing is silently lost.
	reached := make(map[string]bool, len(nodes))
	for _, root := range roots {
		markReached(root, reached)
	}
	for _, node := range nodes {
		if reached[node.ID] {
			continue
		}
		if parent := parentOf[node.ID]; parent != nil {
			parent.Children = removeChild(parent.Children, node)
		}
		roots = append(roots, node)
		markReached(node, reached)
	}

	return roots
}

func markReached(node *models.Comment, reached map[string]bool) {
	if reached[node.ID] {
		return
	}
	reached[node.ID] = true
	for _, child := range node.Children {
		markReached(child, reached)
	}
}

func removeChild(children []*models.Comment, node *models.Comment) []*models.Comment {
	for i, c := range children {
		if c == node {
			return append(children[:i], children[i+1:]...)
		}
	}
	return children
}

// Count returns the number of nodes in a forest, descendants included.
func Count(forest []*models.Comment) int {
	n := 0
	for _, c := range forest {
		n += 1 + Count(c.Children)
	}
	return n
}
