package service

import "inkwell/internal/models"

// Identity is the authenticated caller as seen by authorization checks.
type Identity struct {
	UserID string
}

// Policy decides whether identity may edit or delete post.
type Policy func(post *models.Post, identity Identity) bool

// CanModify allows only the post's author.
func CanModify(post *models.Post, identity Identity) bool {
	return post != nil && identity.UserID != "" && post.AuthorID == identity.UserID
}
