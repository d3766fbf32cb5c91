// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package tree

import (
	"testing"
	"time"

	"github.com/reliva-app/reliva-feed/internal/models"
)

func comment(id, parent string, at time.Time) *models.Comment {
	return &models.Comment{
		ID:              id,
		PostID:          "p1",
		ParentCommentID: parent,
		AuthorID:        "u1",
		Content:         "c/" + id,
		Timestamp:       models.At(at),
	}
}

func flatten(forest []*models.Comment) map[string]int {
	seen := make(map[string]int)
	var walk func(nodes []*models.Comment)
	walk = func(nodes []*models.Comment) {
		for _, n := range nodes {
			seen[n.ID]++
			walk(n.Children)
		}
	}
	walk(forest)
	return seen
}

func TestBuildNesting(t *testing.T) {
	now := time.Now()
	flat := []*models.Comment{
		comment("c1", "", now),
		comment("c2", "c1", now),
		comment("c3", "c2", now),
		comment("c4", "c1", now),
		comment("c5", "", now),
	}

	forest := Build(flat)

	if len(forest) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(forest))
	}
	if forest[0].ID != "c1" || forest[1].ID != "c5" {
		t.Fatalf("unexpected roots: %s, %s", forest[0].ID, forest[1].ID)
	}
	if len(forest[0].Children) != 2 {
		t.Fatalf("c1 should have 2 children, got %d", len(forest[0].Children))
	}
	if forest[0].Children[0].ID != "c2" || len(forest[0].Children[0].Children) != 1 {
		t.Error("c2 should nest under c1 with c3 below it")
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	flat := []*models.Comment{
		comment("c1", "", time.Now()),
		comment("c2", "c1", time.Now()),
	}

	Build(flat)

	for _, c := range flat {
		if c.Children != nil {
			t.Errorf("input comment %s gained children; the flat list must stay flat", c.ID)
		}
	}
}

func TestBuildOrphanPromotedToRoot(t *testing.T) {
	flat := []*models.Comment{
		comment("c1", "", time.Now()),
		comment("c2", "missing", time.Now()),
	}

	forest := Build(flat)

	if len(forest) != 2 {
		t.Fatalf("orphan must become a root; got %d roots", len(forest))
	}
	seen := flatten(forest)
	if seen["c2"] != 1 {
		t.Errorf("orphan c2 appeared %d times, want 1", seen["c2"])
	}
}

func TestBuildTotality(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		flat []*models.Comment
	}{
		{"empty", nil},
		{"single", []*models.Comment{comment("c1", "", now)}},
		{"self parent", []*models.Comment{comment("c1", "c1", now)}},
		{"two cycle", []*models.Comment{
			comment("a", "b", now),
			comment("b", "a", now),
		}},
		{"cycle with tail", []*models.Comment{
			comment("a", "b", now),
			comment("b", "a", now),
			comment("c", "a", now),
			comment("d", "", now),
		}},
		{"dangling", []*models.Comment{
			comment("x", "gone", now),
			comment("y", "x", now),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := Build(tt.flat)
			seen := flatten(forest)
			if len(seen) != len(tt.flat) {
				t.Fatalf("output has %d distinct comments, input had %d", len(seen), len(tt.flat))
			}
			for _, c := range tt.flat {
				if seen[c.ID] != 1 {
					t.Errorf("comment %s appeared %d times, want exactly 1", c.ID, seen[c.ID])
				}
			}
			if got := Count(forest); got != len(tt.flat) {
				t.Errorf("Count = %d, want %d", got, len(tt.flat))
			}
		})
	}
}
