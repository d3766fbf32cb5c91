// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package models

// PostsResponse is the envelope for GET /api/v1/posts.
type PostsResponse struct {
	Success bool    `json:"success"`
	Posts   []*Post `json:"posts"`
}

// CommentResponse is the envelope for GET /api/v1/comments/{commentId}.
type CommentResponse struct {
	Success bool     `json:"success"`
	Comment *Comment `json:"comment,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ErrorResponse is the generic failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error"`
}
