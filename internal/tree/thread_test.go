// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package tree

import (
	"testing"
	"time"

	"github.com/reliva-app/reliva-feed/internal/models"
)

func TestDirectRepliesMidChain(t *testing.T) {
	now := time.Now()
	flat := []*models.Comment{
		comment("c1", "", now),
		comment("c2", "c1", now),
		comment("c3", "c2", now),
	}

	direct := DirectReplies(flat, "c2")

	if len(direct) != 1 || direct[0].ID != "c3" {
		t.Fatalf("directReplies of c2 = %v, want [c3]", ids(direct))
	}
	if len(direct[0].Children) != 0 {
		t.Errorf("c3 has no nested replies, got %d", len(direct[0].Children))
	}
}

func TestDirectRepliesAttachNestedLevels(t *testing.T) {
	now := time.Now()
	flat := []*models.Comment{
		comment("root", "", now),
		comment("a", "root", now),
		comment("a1", "a", now),
		comment("a1x", "a1", now),
		comment("b", "root", now),
	}

	direct := DirectReplies(flat, "root")

	if len(direct) != 2 {
		t.Fatalf("want 2 direct replies, got %d", len(direct))
	}
	a := direct[0]
	if a.ID != "a" || len(a.Children) != 1 {
		t.Fatalf("reply a should carry its nested reply a1")
	}
	// Output stays walkable below the eagerly counted level.
	if len(a.Children[0].Children) != 1 || a.Children[0].Children[0].ID != "a1x" {
		t.Error("nested replies must remain walkable to arbitrary depth")
	}
}

func TestFindAnyDepth(t *testing.T) {
	now := time.Now()
	flat := []*models.Comment{
		comment("c1", "", now),
		comment("c2", "c1", now),
		comment("c3", "c2", now),
	}

	if got := Find(flat, "c3"); got == nil || got.ID != "c3" {
		t.Error("Find should locate a deeply nested comment in the flat list")
	}
	if got := Find(flat, "nope"); got != nil {
		t.Error("Find of an absent id must return nil")
	}
}

func ids(comments []*models.Comment) []string {
	out := make([]string, len(comments))
	for i, c := range comments {
		out[i] = c.ID
	}
	return out
}
