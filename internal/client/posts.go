package client

import (
	"context"
	"net/http"
	"net/url"

	"inkwell/internal/models"
)

// PostInput is the body of POST /api/posts.
type PostInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Image   string   `json:"image,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// PostPatch is the body of PUT /api/posts/:id. Nil fields are not sent.
type PostPatch struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Image   *string   `json:"image,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

type postEnvelope struct {
	Data *models.Post `json:"data"`
}

type likesEnvelope struct {
	Data []string `json:"data"`
}

func postPath(id string) string {
	return "/posts/" + url.PathEscape(id)
}

// ListPosts returns every post, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	var out struct {
		Data []models.Post `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/posts", false, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var out postEnvelope
	if err := c.do(ctx, http.MethodGet, postPath(id), false, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) CreatePost(ctx context.Context, in PostInput) (*models.Post, error) {
	var out postEnvelope
	if err := c.do(ctx, http.MethodPost, "/posts", true, in, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) UpdatePost(ctx context.Context, id string, patch PostPatch) (*models.Post, error) {
	var out postEnvelope
	if err := c.do(ctx, http.MethodPut, postPath(id), true, patch, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, postPath(id), true, nil, nil)
}

// LikePost returns the post's new likes, most recent first.
func (c *Client) LikePost(ctx context.Context, id string) ([]string, error) {
	var out likesEnvelope
	if err := c.do(ctx, http.MethodPut, "/posts/like/"+url.PathEscape(id), true, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) UnlikePost(ctx context.Context, id string) ([]string, error) {
	var out likesEnvelope
	if err := c.do(ctx, http.MethodPut, "/posts/unlike/"+url.PathEscape(id), true, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
