package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
)

// CategoryService covers the /categories endpoints
type CategoryService struct {
	c *Client
}

// Categories returns the category service
func (c *Client) Categories() *CategoryService { return &CategoryService{c: c} }

// CategoryInput is the multipart form for a category. Image is optional.
type CategoryInput struct {
	Name        string
	Description string
	ImageName   string
	Image       io.Reader
}

func (in CategoryInput) call(method, path string) call {
	cl := call{
		method: method,
		path:   path,
		form: map[string]string{
			"name":        in.Name,
			"description": in.Description,
		},
	}
	if in.Image != nil {
		cl.files = []upload{{field: "image", fileName: filepath.Base(in.ImageName), reader: in.Image}}
	}
	return cl
}

// List returns every category
func (s *CategoryService) List(ctx context.Context) ([]Category, error) {
	return getJSON[[]Category](ctx, s.c, "/categories", nil)
}

// Get returns one category
func (s *CategoryService) Get(ctx context.Context, id string) (*Category, error) {
	cat, err := getJSON[Category](ctx, s.c, pathf("/categories/%s", id), nil)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// Create adds a category, uploading the image as multipart form data
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*Category, error) {
	return s.send(ctx, in.call(http.MethodPost, "/categories"))
}

// Update changes a category
func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*Category, error) {
	return s.send(ctx, in.call(http.MethodPut, pathf("/categories/%s", id)))
}

// Delete removes a category
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return deleteJSON(ctx, s.c, pathf("/categories/%s", id))
}

func (s *CategoryService) send(ctx context.Context, cl call) (*Category, error) {
	var out Category
	cl.result = &out
	if _, err := s.c.do(ctx, cl); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}
	return &out, nil
}
