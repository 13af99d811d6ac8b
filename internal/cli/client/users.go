package client

import (
	"context"
	"net/http"
	"net/url"
)

// UserService covers user administration
type UserService struct {
	c *Client
}

// Users returns the user service
func (c *Client) Users() *UserService { return &UserService{c: c} }

// List returns every user
func (s *UserService) List(ctx context.Context) ([]User, error) {
	return getJSON[[]User](ctx, s.c, "/admin/users", nil)
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, id string) (*User, error) {
	u, err := getJSON[User](ctx, s.c, pathf("/admin/users/%s", id), nil)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create registers a new user
func (s *UserService) Create(ctx context.Context, in UserInput) (*User, error) {
	u, err := sendJSON[User](ctx, s.c, http.MethodPost, "/user", in)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update changes a user's profile and role
func (s *UserService) Update(ctx context.Context, id string, in UserInput) (*User, error) {
	in.Password = ""
	u, err := sendJSON[User](ctx, s.c, http.MethodPut, pathf("/admin/users/%s", id), in)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes a user
func (s *UserService) Delete(ctx context.Context, id string) error {
	return deleteJSON(ctx, s.c, pathf("/admin/users/%s", id))
}

// UpdateStatus blocks or unblocks a user
func (s *UserService) UpdateStatus(ctx context.Context, id, status string) (*User, error) {
	u, err := sendJSON[User](ctx, s.c, http.MethodPut, pathf("/admin/users/%s/status", id), map[string]string{"status": status})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ResetPassword triggers a password reset for a user
func (s *UserService) ResetPassword(ctx context.Context, id string) error {
	_, err := s.c.do(ctx, call{method: http.MethodPost, path: pathf("/admin/users/%s/reset-password", id), body: struct{}{}})
	return err
}

// UpdateRole changes a user's role
func (s *UserService) UpdateRole(ctx context.Context, id, role string) (*User, error) {
	u, err := sendJSON[User](ctx, s.c, http.MethodPut, pathf("/auth/users/%s/role", id), map[string]string{"role": role})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Search finds users by name, email or phone
func (s *UserService) Search(ctx context.Context, query string) ([]User, error) {
	return getJSON[[]User](ctx, s.c, "/user/search", url.Values{"query": {query}})
}
