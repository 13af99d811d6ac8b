package client

import (
	"context"
	"net/http"
	"net/url"
)

// ReviewService covers review moderation
type ReviewService struct {
	c *Client
}

// Reviews returns the review service
func (c *Client) Reviews() *ReviewService { return &ReviewService{c: c} }

// List returns reviews, optionally filtered by status
func (s *ReviewService) List(ctx context.Context, status string) ([]Review, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	return getJSON[[]Review](ctx, s.c, "/review", q)
}

// ByProduct returns the reviews of one product
func (s *ReviewService) ByProduct(ctx context.Context, productID string) ([]Review, error) {
	return getJSON[[]Review](ctx, s.c, pathf("/review/product/%s", productID), nil)
}

// ByUser returns the reviews written by one user
func (s *ReviewService) ByUser(ctx context.Context, userID string) ([]Review, error) {
	return getJSON[[]Review](ctx, s.c, pathf("/review/user/%s", userID), nil)
}

// Delete removes a review
func (s *ReviewService) Delete(ctx context.Context, id string) error {
	return deleteJSON(ctx, s.c, pathf("/review/%s", id))
}

// UpdateStatus approves or rejects a review
func (s *ReviewService) UpdateStatus(ctx context.Context, id, status string) (*Review, error) {
	r, err := sendJSON[Review](ctx, s.c, http.MethodPut, pathf("/review/%s/status", id), map[string]string{"status": status})
	if err != nil {
		return nil, err
	}
	return &r, nil
}
