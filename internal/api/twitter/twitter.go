// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package twitter provides a client for the parts of the X API v2 that
// tweetwatch needs: resolving a handle into a user ID and listing a user's
// recent posts.
package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tweetwatch/internal/feed"
	"tweetwatch/internal/request"
)

const defaultAPI = "https://api.twitter.com/2"

// Client represents an X API v2 client.
type Client struct {
	// Token is the bearer token used for authentication.
	Token string
	// Handle is the account handle, used to build post URLs.
	Handle string
	// BaseURL overrides the API base URL. If empty, the production API is used.
	BaseURL string
	// HTTPClient is an optional custom HTTP client object to use for requests.
	// If not provided, request.DefaultClient will be used.
	HTTPClient *http.Client
	// Scrubber is an optional strings.Replacer that scrubs unwanted data from
	// error messages.
	Scrubber *strings.Replacer
}

func (c *Client) api() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultAPI
}

// ResolveSubject implements the [feed.Source] interface.
func (c *Client) ResolveSubject(ctx context.Context, handle string) (string, error) {
	resp, err := request.Make[struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"data"`
	}](ctx, request.Params{
		Method: http.MethodGet,
		URL:    c.api() + "/users/by/username/" + url.PathEscape(handle),
		Headers: map[string]string{
			"Authorization": "Bearer " + c.Token,
		},
		HTTPClient: c.HTTPClient,
		Scrubber:   c.Scrubber,
	})
	if err != nil {
		return "", fmt.Errorf("resolving user %q: %w", handle, mapRateExhausted(err))
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("resolving user %q: user not found", handle)
	}
	return resp.Data.ID, nil
}

// RecentPosts implements the [feed.Source] interface. It returns up to 10 of
// the subject's most recent original posts (no retweets or replies), newest
// first. A 429 from the API is reported as [feed.ErrRateExhausted].
func (c *Client) RecentPosts(ctx context.Context, subjectID, sinceID string) ([]feed.Post, error) {
	q := url.Values{
		"max_results":  {"10"},
		"exclude":      {"retweets,replies"},
		"tweet.fields": {"created_at"},
	}
	if sinceID != "" {
		q.Set("since_id", sinceID)
	}

	resp, err := request.Make[struct {
		Data []struct {
			ID        string    `json:"id"`
			Text      string    `json:"text"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"data"`
	}](ctx, request.Params{
		Method: http.MethodGet,
		URL:    c.api() + "/users/" + url.PathEscape(subjectID) + "/tweets?" + q.Encode(),
		Headers: map[string]string{
			"Authorization": "Bearer " + c.Token,
		},
		HTTPClient: c.HTTPClient,
		Scrubber:   c.Scrubber,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching posts of user %s: %w", subjectID, mapRateExhausted(err))
	}

	posts := make([]feed.Post, 0, len(resp.Data))
	for _, tw := range resp.Data {
		posts = append(posts, feed.Post{
			ID:        tw.ID,
			Text:      tw.Text,
			URL:       "https://twitter.com/" + c.Handle + "/status/" + tw.ID,
			CreatedAt: tw.CreatedAt,
		})
	}
	return posts, nil
}

func mapRateExhausted(err error) error {
	var statusErr *request.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
		return feed.ErrRateExhausted
	}
	return err
}

var _ feed.Source = (*Client)(nil)
