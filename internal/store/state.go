// Package store holds client state: the signed-in user, the loaded posts and
// per-action progress. State changes go through Reduce; network calls live
// in the Store's action methods.
package store

import (
	"inkwell/internal/models"
)

// Status is the phase of one async action.
type Status int

const (
	Idle Status = iota
	Pending
	Fulfilled
	Rejected
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "idle"
	}
}

// ActionKey names an async action.
type ActionKey string

const (
	AuthRegister      ActionKey = "auth/register"
	AuthLogin         ActionKey = "auth/login"
	AuthLoadUser      ActionKey = "auth/loadUser"
	AuthUpdateProfile ActionKey = "auth/updateProfile"
	AuthLogout        ActionKey = "auth/logout"
	PostsGetAll       ActionKey = "posts/getAll"
	PostsGetByID      ActionKey = "posts/getById"
	PostsCreate       ActionKey = "posts/create"
	PostsUpdate       ActionKey = "posts/update"
	PostsDelete       ActionKey = "posts/delete"
	PostsLike         ActionKey = "posts/like"
	PostsUnlike       ActionKey = "posts/unlike"

	// FeedEvent applies a live feed event; it has no async lifecycle.
	FeedEvent ActionKey = "feed/event"
)

// AsyncKeys lists every action with a loading flag.
var AsyncKeys = []ActionKey{
	AuthRegister, AuthLogin, AuthLoadUser, AuthUpdateProfile, AuthLogout,
	PostsGetAll, PostsGetByID, PostsCreate, PostsUpdate, PostsDelete, PostsLike, PostsUnlike,
}

func (k ActionKey) isAuth() bool {
	switch k {
	case AuthRegister, AuthLogin, AuthLoadUser, AuthUpdateProfile, AuthLogout:
		return true
	}
	return false
}

// AsyncState is the last known phase of one action. Data is set when
// Fulfilled and Err when Rejected.
type AsyncState struct {
	Status Status
	Data   any
	Err    error
}

// AuthState is the auth slice.
type AuthState struct {
	Token           string
	User            *models.User
	IsAuthenticated bool
	Error           string
}

// PostsState is the posts slice. Post is the single post being viewed.
type PostsState struct {
	Posts []models.Post
	Post  *models.Post
	Error string
}

// Notice is a transient message for the user.
type Notice struct {
	Key     ActionKey
	Message string
}

// UIState is the ui slice.
type UIState struct {
	Loading map[ActionKey]bool
	Ops     map[ActionKey]AsyncState
	Notices []Notice
}

// State is the whole client state. Treat it as read-only; Reduce never
// modifies a State it was given.
type State struct {
	Auth  AuthState
	Posts PostsState
	UI    UIState
}

// Action is one dispatched state change.
type Action struct {
	Key     ActionKey
	Phase   Status
	Payload any
	Err     error
}

// IsLoading reports whether key is in flight.
func (s State) IsLoading(key ActionKey) bool {
	return s.UI.Loading[key]
}

// AnyLoading reports whether any action is in flight.
func (s State) AnyLoading() bool {
	for _, v := range s.UI.Loading {
		if v {
			return true
		}
	}
	return false
}

// Op returns the last known state of key.
func (s State) Op(key ActionKey) AsyncState {
	return s.UI.Ops[key]
}

// UserPosts returns the loaded posts written by userID, in list order.
func (s State) UserPosts(userID string) []models.Post {
	out := make([]models.Post, 0)
	for _, p := range s.Posts.Posts {
		if p.AuthorID == userID {
			out = append(out, p)
		}
	}
	return out
}

// FindPost returns the loaded post with id from the list or the single slot.
func (s State) FindPost(id string) (models.Post, bool) {
	if s.Posts.Post != nil && s.Posts.Post.ID == id {
		return *s.Posts.Post, true
	}
	for _, p := range s.Posts.Posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}
