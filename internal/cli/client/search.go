package client

import (
	"context"
	"net/url"
)

// SearchService covers global search
type SearchService struct {
	c *Client
}

// Search returns the search service
func (c *Client) Search() *SearchService { return &SearchService{c: c} }

// Query searches across resources. An empty kind searches everything.
func (s *SearchService) Query(ctx context.Context, query, kind string) (*SearchResult, error) {
	q := url.Values{"query": {query}}
	if kind != "" {
		q.Set("type", kind)
	}
	out, err := getJSON[SearchResult](ctx, s.c, "/search", q)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Suggestions returns completions for a partial query
func (s *SearchService) Suggestions(ctx context.Context, query string) ([]string, error) {
	return getJSON[[]string](ctx, s.c, "/search/suggestions", url.Values{"query": {query}})
}
