// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package feed

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultBaseURL is where post pages live
const DefaultBaseURL = "https://weibo.com"

// 🌐 HTTPRetriever fetches post pages and extracts the requested feed
type HTTPRetriever struct {
	baseURL string
	client  *http.Client
	header  http.Header
}

// 🏭 NewHTTPRetriever creates a retriever. A nil client uses http.DefaultClient.
func NewHTTPRetriever(baseURL string, client *http.Client) *HTTPRetriever {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRetriever{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		header:  http.Header{},
	}
}

// WithHeader sets a header sent with every request, e.g. a session cookie
func (r *HTTPRetriever) WithHeader(key, value string) *HTTPRetriever {
	r.header.Set(key, value)
	return r
}

// 📥 GetItem downloads the page of author's post id and parses it
func (r *HTTPRetriever) GetItem(ctx context.Context, author, id string) (*Item, error) {
	if author == "" || id == "" {
		return nil, errors.Errorf("author and id are required")
	}

	pageURL := r.baseURL + "/" + url.PathEscape(author) + "/" + url.PathEscape(id)
	zerolog.Ctx(ctx).Debug().Str("url", pageURL).Msg("fetching feed page")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Errorf("creating request: %w", err)
	}
	for k, v := range r.header {
		req.Header[k] = v
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Errorf("fetching feed page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	item, err := Parse(resp.Body, id)
	if err != nil {
		return nil, errors.Errorf("reading feed %s/%s: %w", author, id, err)
	}
	return item, nil
}

// 🔎 Ref identifies one post
type Ref struct {
	Author string
	ID     string
}

func (r Ref) String() string {
	return r.Author + "/" + r.ID
}

// ParseRef reads "author/id" or a post URL such as https://weibo.com/author/id
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		s = u.Path
	}
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Ref{}, errors.Errorf("invalid feed reference %q (expected author/id)", s)
	}
	return Ref{Author: parts[0], ID: parts[1]}, nil
}
