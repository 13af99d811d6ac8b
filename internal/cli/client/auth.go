package client

import (
	"context"
	"net/http"
)

// AuthService covers the /auth endpoints
type AuthService struct {
	c *Client
}

// Auth returns the auth service
func (c *Client) Auth() *AuthService { return &AuthService{c: c} }

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Source   string `json:"source"`
}

// Login authenticates admin credentials. The request never carries the stored token, and a 401
// answer is reported as bad credentials, not as an expired session.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var out LoginResponse
	_, err := s.c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      loginRequest{Email: creds.Email, Password: creds.Password, Source: "admin"},
		result:    &out,
		anonymous: true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user behind the current token, or nil when the API answers with no user
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	out, err := getJSON[struct {
		User *User `json:"user"`
	}](ctx, s.c, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

// Logout tells the API the session is over. Failures are never shown to the user.
func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.c.do(ctx, call{method: http.MethodPost, path: "/auth/logout", silent: true})
	return err
}

// ChangePassword changes the current user's password
func (s *AuthService) ChangePassword(ctx context.Context, current, next string) error {
	_, err := s.c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/change-password",
		body:   map[string]string{"currentPassword": current, "newPassword": next},
	})
	return err
}

// ForgotPassword asks the API to send a reset email
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/forgot-password",
		body:      map[string]string{"email": email},
		anonymous: true,
	})
	return err
}

// ResetPassword completes a reset with the emailed token
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, password string) error {
	_, err := s.c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/reset-password",
		body:      map[string]string{"token": resetToken, "password": password},
		anonymous: true,
	})
	return err
}
