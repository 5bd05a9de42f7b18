package client

import (
	"context"
	"net/http"

	"inkwell/internal/models"
	"inkwell/internal/session"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the body of PUT /api/users/profile. Empty fields are
// left unchanged by the server.
type ProfileUpdate struct {
	Name   string `json:"name,omitempty"`
	Bio    string `json:"bio,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Register creates an account and stores the returned session.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*session.Session, error) {
	return c.authenticate(ctx, "/auth/register", in)
}

// Login signs in and stores the returned session.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*session.Session, error) {
	return c.authenticate(ctx, "/auth/login", in)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*session.Session, error) {
	var out session.Session
	if err := c.do(ctx, http.MethodPost, path, false, body, &out); err != nil {
		return nil, err
	}
	if err := c.sessions.Save(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout forgets the stored session. Tokens are not revoked server-side.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

// Me returns the user the stored token belongs to.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", true, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// UpdateProfile changes the caller's profile and refreshes the stored user.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*models.User, error) {
	var out struct {
		Data *models.User `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/users/profile", true, in, &out); err != nil {
		return nil, err
	}

	if s, err := c.sessions.Load(); err == nil && s.Valid() {
		s.User = out.Data
		if err := c.sessions.Save(s); err != nil {
			return nil, err
		}
	}
	return out.Data, nil
}

// ListUsers returns every registered user.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var out struct {
		Data []models.User `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", true, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
