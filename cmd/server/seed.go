// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package main

import (
	"github.com/reliva-app/reliva-feed/internal/feed"
	"github.com/reliva-app/reliva-feed/internal/logging"
	"github.com/reliva-app/reliva-feed/internal/models"
	"github.com/reliva-app/reliva-feed/internal/protocol"
)

// seedMockData loads a small review feed with a nested thread, for
// local development and screenshot builds.
func seedMockData(store *feed.Store, users *feed.Registry) {
	users.Put(models.User{ID: "seed-maya", DisplayName: "Maya"})
	users.Put(models.User{ID: "seed-jon", DisplayName: "Jon"})
	users.Put(models.User{ID: "seed-rin", DisplayName: "Rin"})

	post := store.CreatePost(protocol.NewPost{
		AuthorID:   "seed-maya",
		Content:    "Finally finished this one. The last act alone is worth the watch.",
		MediaID:    "mock-dune-2",
		MediaTitle: "Dune: Part Two",
		MediaType:  "movie",
		MediaYear:  "2024",
		Rating:     9,
	})

	root, err := store.CreateComment(protocol.NewReply{
		PostID:   post.ID,
		AuthorID: "seed-jon",
		Content:  "Agreed, though the middle dragged for me.",
	})
	if err != nil {
		logging.Warn().Err(err).Msg("seed comment failed")
		return
	}
	if _, err := store.CreateComment(protocol.NewReply{
		PostID:        post.ID,
		ParentReplyID: root.ID,
		AuthorID:      "seed-rin",
		Content:       "The middle is where all the worldbuilding pays off!",
	}); err != nil {
		logging.Warn().Err(err).Msg("seed reply failed")
	}

	store.CreatePost(protocol.NewPost{
		AuthorID:   "seed-rin",
		Content:    "Picked this up on a whim and read it in two sittings.",
		MediaID:    "mock-piranesi",
		MediaTitle: "Piranesi",
		MediaType:  "book",
		MediaYear:  "2020",
		Rating:     8,
	})
}
