// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package tree

import (
	"testing"
	"time"

	"github.com/reliva-app/reliva-feed/internal/models"
)

func TestSortFeedChronologicalAtEveryLevel(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t1, t2, t3 := base.Add(1*time.Minute), base.Add(2*time.Minute), base.Add(3*time.Minute)

	flat := []*models.Comment{
		comment("r3", "", t3),
		comment("r1", "", t1),
		comment("r2", "", t2),
		comment("k2", "r1", t2),
		comment("k1", "r1", t1),
	}
	forest := Build(flat)

	SortFeed(forest)

	wantRoots := []string{"r1", "r2", "r3"}
	for i, want := range wantRoots {
		if forest[i].ID != want {
			t.Fatalf("root[%d] = %s, want %s", i, forest[i].ID, want)
		}
	}
	if forest[0].Children[0].ID != "k1" || forest[0].Children[1].ID != "k2" {
		t.Error("nested level must be oldest-first too")
	}
}

func TestSortFeedZeroTimestampFirst(t *testing.T) {
	now := time.Now()
	forest := []*models.Comment{
		comment("a", "", now),
		comment("z", "", time.Time{}),
	}

	SortFeed(forest)

	if forest[0].ID != "z" {
		t.Error("a comment with a missing timestamp sorts as time zero, before everything")
	}
}

func TestSortThreadViewerFirstThenNewest(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mine5 := comment("mine5", "", base.Add(5*time.Second))
	other10 := comment("other10", "", base.Add(10*time.Second))
	mine1 := comment("mine1", "", base.Add(1*time.Second))
	other10.AuthorID = "someone-else"

	siblings := []*models.Comment{mine5, other10, mine1}
	SortThread(siblings, "u1")

	want := []string{"mine5", "mine1", "other10"}
	for i, id := range want {
		if siblings[i].ID != id {
			t.Fatalf("siblings[%d] = %s, want %s", i, siblings[i].ID, id)
		}
	}
}

func TestSortThreadIsNotRecursive(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	parent := comment("p", "", base)
	// Nested replies deliberately out of any sorted order.
	parent.Children = []*models.Comment{
		comment("n2", "p", base.Add(2*time.Second)),
		comment("n1", "p", base.Add(1*time.Second)),
	}

	siblings := []*models.Comment{parent}
	SortThread(siblings, "u1")

	if parent.Children[0].ID != "n2" || parent.Children[1].ID != "n1" {
		t.Error("nested reply lists keep insertion order in the thread view")
	}
}
