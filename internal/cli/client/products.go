package client

import (
	"context"
	"net/http"
	"net/url"
)

// ProductService covers the /snacks endpoints
type ProductService struct {
	c *Client
}

// Products returns the product service
func (c *Client) Products() *ProductService { return &ProductService{c: c} }

// List returns every product
func (s *ProductService) List(ctx context.Context) ([]Product, error) {
	return getJSON[[]Product](ctx, s.c, "/snacks", nil)
}

// ListByCategory returns the products of one category
func (s *ProductService) ListByCategory(ctx context.Context, categoryID string) ([]Product, error) {
	return getJSON[[]Product](ctx, s.c, pathf("/snacks/category/%s", categoryID), nil)
}

// Get returns one product
func (s *ProductService) Get(ctx context.Context, id string) (*Product, error) {
	p, err := getJSON[Product](ctx, s.c, pathf("/snacks/%s", id), nil)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create adds a product
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*Product, error) {
	p, err := sendJSON[Product](ctx, s.c, http.MethodPost, "/snacks", in)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update replaces a product
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*Product, error) {
	p, err := sendJSON[Product](ctx, s.c, http.MethodPut, pathf("/snacks/%s", id), in)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, id string) error {
	return deleteJSON(ctx, s.c, pathf("/snacks/%s", id))
}

// Search finds products by name or description
func (s *ProductService) Search(ctx context.Context, query string) ([]Product, error) {
	return getJSON[[]Product](ctx, s.c, "/snack/search", url.Values{"query": {query}})
}

// TopSelling returns the best sellers
func (s *ProductService) TopSelling(ctx context.Context) ([]Product, error) {
	return getJSON[[]Product](ctx, s.c, "/snack/top-selling", nil)
}

// LowStock returns products that are about to run out
func (s *ProductService) LowStock(ctx context.Context) ([]Product, error) {
	return getJSON[[]Product](ctx, s.c, "/snack/low-stock", nil)
}
