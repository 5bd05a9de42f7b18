package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want Tags
	}{
		{name: "nil", in: nil, want: Tags{}},
		{name: "trims and drops empty", in: []string{" go ", "", "  "}, want: Tags{"go"}},
		{name: "keeps first duplicate", in: []string{"go", "web", "go", " web"}, want: Tags{"go", "web"}},
		{name: "case sensitive", in: []string{"Go", "go"}, want: Tags{"Go", "go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.in))
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewValidationError("x"), http.StatusBadRequest},
		{NewAlreadyLikedError(), http.StatusBadRequest},
		{NewNotLikedError(), http.StatusBadRequest},
		{NewUnauthorizedError("x"), http.StatusUnauthorized},
		{NewInvalidCredentialsError(), http.StatusUnauthorized},
		{NewForbiddenError("x"), http.StatusForbidden},
		{NewNotFoundError("Post", "abc"), http.StatusNotFound},
		{NewConflictError("x"), http.StatusConflict},
		{NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NewNotFoundError("Post", 1)), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestFieldValidationErrorMessage(t *testing.T) {
	err := NewFieldValidationError(
		FieldError{Field: "title", Message: "Title is required"},
		FieldError{Field: "content", Message: "Content is required"},
	)
	assert.Equal(t, "Title is required", err.Message)
	assert.Len(t, err.Fields, 2)
	assert.Equal(t, CodeValidation, ErrorCode(err))
}

func TestPostHydrate(t *testing.T) {
	p := &Post{
		AuthorID:   "u1",
		AuthorUser: &User{ID: "u1", Name: "Ada", Email: "ada@example.com", Password: "hash"},
		LikeRows:   []Like{{PostID: "p", UserID: "u2"}, {PostID: "p", UserID: "u1"}},
	}
	p.Hydrate()

	require.NotNil(t, p.Author)
	assert.Equal(t, "Ada", p.Author.Name)
	assert.Equal(t, []string{"u2", "u1"}, p.Likes)
	assert.Equal(t, Tags{}, p.Tags)
	assert.True(t, p.LikedBy("u2"))
	assert.False(t, p.LikedBy("u3"))

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.Contains(t, string(raw), `"likes":["u2","u1"]`)
}

func TestUserPasswordNeverSerialized(t *testing.T) {
	raw, err := json.Marshal(User{ID: "1", Name: "A", Email: "a@x.com", Password: "secret-hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-hash")
	assert.NotContains(t, string(raw), "password")
}
