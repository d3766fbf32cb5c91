// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package models

// User is the external identity attributed to posts and comments.
// Authentication itself is out of scope; the identity provider hands
// the engine a stable {id, displayName} pair.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Comment is a single reply record as it travels on the wire.
//
// ParentCommentID is empty for a top-level comment on the post. When
// present it must reference another comment with the same PostID. The
// flat list received from the server contains no embedded children;
// Children is populated client-side by the tree builder and is never
// serialized back to the server.
type Comment struct {
	ID              string    `json:"id"`
	PostID          string    `json:"postId"`
	ParentCommentID string    `json:"parentCommentId,omitempty"`
	AuthorID        string    `json:"authorId"`
	AuthorName      string    `json:"authorName,omitempty"`
	Content         string    `json:"content"`
	Timestamp       Timestamp `json:"timestamp"`
	LikeCount       int       `json:"likeCount"`

	// IsLiked is viewer-relative and derived from the viewer's like-set.
	// It is filled in per-connection snapshots, never stored globally.
	IsLiked bool `json:"isLiked,omitempty"`

	Children []*Comment `json:"children,omitempty"`
}

// Clone returns a deep copy of the comment, including any derived children.
func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	out := *c
	if c.Children != nil {
		out.Children = make([]*Comment, len(c.Children))
		for i, child := range c.Children {
			out.Children[i] = child.Clone()
		}
	}
	return &out
}

// Post is a review entry in the feed. Comments holds the full flat list of
// every comment anywhere in the post's tree, not just the top level.
type Post struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"authorId"`
	AuthorName   string    `json:"authorName,omitempty"`
	AuthorType   string    `json:"authorType,omitempty"`
	Content      string    `json:"content"`
	MediaID      string    `json:"mediaId,omitempty"`
	MediaTitle   string    `json:"mediaTitle,omitempty"`
	MediaCover   string    `json:"mediaCover,omitempty"`
	MediaType    string    `json:"mediaType,omitempty"`
	MediaYear    string    `json:"mediaYear,omitempty"`
	MediaAuthor  string    `json:"mediaAuthor,omitempty"`
	MediaArtist  string    `json:"mediaArtist,omitempty"`
	MediaSubType string    `json:"mediaSubType,omitempty"`
	Rating       float64   `json:"rating,omitempty"`
	Timestamp    Timestamp `json:"timestamp"`
	LikeCount    int       `json:"likeCount"`
	IsLiked      bool      `json:"isLiked,omitempty"`

	Comments []*Comment `json:"comments"`
}

// Clone returns a deep copy of the post and its flat comment list.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	out := *p
	if p.Comments != nil {
		out.Comments = make([]*Comment, len(p.Comments))
		for i, c := range p.Comments {
			out.Comments[i] = c.Clone()
		}
	}
	return &out
}

// ClonePosts deep-copies a post slice.
func ClonePosts(posts []*Post) []*Post {
	if posts == nil {
		return nil
	}
	out := make([]*Post, len(posts))
	for i, p := range posts {
		out[i] = p.Clone()
	}
	return out
}
