// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"tweetwatch/internal/request"
	"tweetwatch/internal/version"

	"github.com/mmcdole/gofeed"
)

// RSS is a [Source] backed by an RSS or Atom feed, typically an RSS bridge in
// front of the monitored account. The feed URL itself acts as the subject ID.
type RSS struct {
	// URL is the feed URL.
	URL string
	// HTTPClient is an optional custom HTTP client object to use for requests.
	// If not provided, request.DefaultClient will be used.
	HTTPClient *http.Client

	parser *gofeed.Parser
}

// NewRSS returns an [RSS] source for the given feed URL.
func NewRSS(url string, httpc *http.Client) *RSS {
	return &RSS{
		URL:        url,
		HTTPClient: httpc,
		parser:     gofeed.NewParser(),
	}
}

// ResolveSubject implements the [Source] interface. The feed URL is the
// subject; the handle is ignored.
func (r *RSS) ResolveSubject(_ context.Context, _ string) (string, error) {
	return r.URL, nil
}

// RecentPosts implements the [Source] interface.
//
// RSS has no server-side since marker, so the newest-first item list is cut
// off at the first item whose ID equals sinceID. If the marker is not found,
// the whole batch is returned; the caller's freshness bound keeps that from
// replaying history.
func (r *RSS) RecentPosts(ctx context.Context, _ string, sinceID string) ([]Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())

	httpc := request.DefaultClient
	if r.HTTPClient != nil {
		httpc = r.HTTPClient
	}
	res, err := httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, res.Body)
		return nil, fmt.Errorf("fetching %q: %w", r.URL, ErrRateExhausted)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %q: want 200, got %d", r.URL, res.StatusCode)
	}

	parsed, err := r.parser.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", r.URL, err)
	}

	posts := make([]Post, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		posts = append(posts, rssPost(it))
	}
	// Feeds mostly come newest-first already, but that is a convention, not
	// a guarantee.
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	if sinceID == "" {
		return posts, nil
	}
	for i, p := range posts {
		if p.ID == sinceID {
			return posts[:i], nil
		}
	}
	return posts, nil
}

func rssPost(it *gofeed.Item) Post {
	id := it.GUID
	if id == "" {
		id = it.Link
	}
	text := it.Title
	if text == "" {
		text = it.Description
	}
	var created time.Time
	if it.PublishedParsed != nil {
		created = *it.PublishedParsed
	} else if it.UpdatedParsed != nil {
		created = *it.UpdatedParsed
	}
	return Post{
		ID:        id,
		Text:      text,
		URL:       it.Link,
		CreatedAt: created,
	}
}

var _ Source = (*RSS)(nil)
