// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package live

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/reliva-app/reliva-feed/internal/models"
)

// fetchPosts retrieves the feed snapshot over REST, used when the cache
// is empty and the channel has not delivered an init yet.
func (c *Channel) fetchPosts() ([]*models.Post, error) {
	endpoint := fmt.Sprintf("%s/posts?userId=%s", c.opts.APIBase, url.QueryEscape(c.opts.Viewer.ID))
	resp, err := c.opts.HTTPClient.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch posts: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read posts response: %w", err)
	}

	var out models.PostsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode posts response: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("fetch posts: server reported failure")
	}
	return out.Posts, nil
}

// fetchComment retrieves a single comment by id, the fallback when a
// thread's target comment is absent from the post's flat list.
func (c *Channel) fetchComment(commentID string) (*models.Comment, error) {
	endpoint := fmt.Sprintf("%s/comments/%s", c.opts.APIBase, url.PathEscape(commentID))
	resp, err := c.opts.HTTPClient.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch comment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("comment %s not found", commentID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch comment: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read comment response: %w", err)
	}

	var out models.CommentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode comment response: %w", err)
	}
	if !out.Success || out.Comment == nil {
		return nil, fmt.Errorf("fetch comment: %s", out.Error)
	}
	return out.Comment, nil
}
