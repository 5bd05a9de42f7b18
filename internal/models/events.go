package models

import "encoding/json"

// Live feed event types.
const (
	EventPostCreated      = "post_created"
	EventPostUpdated      = "post_updated"
	EventPostDeleted      = "post_deleted"
	EventPostLikesUpdated = "post_likes_updated"
)

// FeedEvent is the envelope written to feed subscribers. Payload is a Post
// for created/updated, a PostRef for deleted and a LikesChange for likes.
type FeedEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PostRef names a post that no longer exists.
type PostRef struct {
	ID string `json:"id"`
}

// LikesChange carries the new likes set of a post, most recent first.
type LikesChange struct {
	ID    string   `json:"id"`
	Likes []string `json:"likes"`
}
