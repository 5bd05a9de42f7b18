package store

import (
	"encoding/json"
	"errors"

	"inkwell/internal/client"
	"inkwell/internal/models"
	"inkwell/internal/session"
)

// maxNotices bounds UI.Notices; older notices fall off.
const maxNotices = 5

// ErrorMessage is the text shown for err: the server's message when there is
// one.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// Reduce returns the state after a. It never modifies s.
func Reduce(s State, a Action) State {
	if a.Key == FeedEvent {
		if ev, ok := a.Payload.(models.FeedEvent); ok {
			s.Posts = reduceFeed(s.Posts, ev)
		}
		return s
	}

	s.UI = withOp(s.UI, a)

	switch a.Phase {
	case Pending:
		if a.Key.isAuth() {
			s.Auth.Error = ""
		} else {
			s.Posts.Error = ""
		}
	case Fulfilled:
		if a.Key.isAuth() {
			s.Auth = reduceAuth(s.Auth, a)
		} else {
			s.Posts = reducePosts(s.Posts, a)
		}
	case Rejected:
		msg := ErrorMessage(a.Err)
		switch {
		case a.Key == AuthLoadUser:
			// A token the server no longer accepts means signed out.
			s.Auth = AuthState{Error: msg}
		case a.Key.isAuth():
			s.Auth.Error = msg
		default:
			s.Posts.Error = msg
		}
		s.UI.Notices = appendNotice(s.UI.Notices, Notice{Key: a.Key, Message: msg})
	}
	return s
}

func withOp(ui UIState, a Action) UIState {
	loading := make(map[ActionKey]bool, len(ui.Loading)+1)
	for k, v := range ui.Loading {
		loading[k] = v
	}
	ops := make(map[ActionKey]AsyncState, len(ui.Ops)+1)
	for k, v := range ui.Ops {
		ops[k] = v
	}

	loading[a.Key] = a.Phase == Pending
	op := AsyncState{Status: a.Phase}
	switch a.Phase {
	case Fulfilled:
		op.Data = a.Payload
	case Rejected:
		op.Err = a.Err
	}
	ops[a.Key] = op

	return UIState{Loading: loading, Ops: ops, Notices: ui.Notices}
}

func appendNotice(in []Notice, n Notice) []Notice {
	out := make([]Notice, 0, len(in)+1)
	out = append(out, in...)
	out = append(out, n)
	if len(out) > maxNotices {
		out = out[len(out)-maxNotices:]
	}
	return out
}

func reduceAuth(a AuthState, act Action) AuthState {
	switch act.Key {
	case AuthRegister, AuthLogin:
		if s, ok := act.Payload.(*session.Session); ok && s != nil {
			return AuthState{Token: s.Token, User: s.User, IsAuthenticated: true}
		}
	case AuthLoadUser:
		if u, ok := act.Payload.(*models.User); ok {
			a.User = u
			a.IsAuthenticated = true
			a.Error = ""
		}
	case AuthUpdateProfile:
		if u, ok := act.Payload.(*models.User); ok {
			a.User = u
			a.Error = ""
		}
	case AuthLogout:
		return AuthState{}
	}
	return a
}

func reducePosts(p PostsState, act Action) PostsState {
	p.Error = ""
	switch act.Key {
	case PostsGetAll:
		if posts, ok := act.Payload.([]models.Post); ok {
			p.Posts = append([]models.Post(nil), posts...)
		}
	case PostsGetByID:
		if post, ok := act.Payload.(*models.Post); ok {
			p.Post = post
		}
	case PostsCreate:
		if post, ok := act.Payload.(*models.Post); ok && post != nil {
			p.Posts = prependPost(p.Posts, *post)
		}
	case PostsUpdate:
		if post, ok := act.Payload.(*models.Post); ok && post != nil {
			p.Posts = replacePost(p.Posts, *post)
			cp := *post
			p.Post = &cp
		}
	case PostsDelete:
		if ref, ok := act.Payload.(models.PostRef); ok {
			p = removePost(p, ref.ID)
		}
	case PostsLike, PostsUnlike:
		if change, ok := act.Payload.(models.LikesChange); ok {
			p = setLikes(p, change)
		}
	}
	return p
}

// reduceFeed merges a live event. Unlike the action reducers it never
// touches the error or the loading flags.
func reduceFeed(p PostsState, ev models.FeedEvent) PostsState {
	switch ev.Type {
	case models.EventPostCreated:
		var post models.Post
		if json.Unmarshal(ev.Payload, &post) == nil && post.ID != "" {
			p.Posts = prependPost(p.Posts, post)
		}
	case models.EventPostUpdated:
		var post models.Post
		if json.Unmarshal(ev.Payload, &post) == nil && post.ID != "" {
			p.Posts = replacePost(p.Posts, post)
			if p.Post != nil && p.Post.ID == post.ID {
				p.Post = &post
			}
		}
	case models.EventPostDeleted:
		var ref models.PostRef
		if json.Unmarshal(ev.Payload, &ref) == nil {
			p = removePost(p, ref.ID)
		}
	case models.EventPostLikesUpdated:
		var change models.LikesChange
		if json.Unmarshal(ev.Payload, &change) == nil {
			p = setLikes(p, change)
		}
	}
	return p
}

// prependPost puts post first, dropping any older copy with the same id.
func prependPost(posts []models.Post, post models.Post) []models.Post {
	out := make([]models.Post, 0, len(posts)+1)
	out = append(out, post)
	for _, existing := range posts {
		if existing.ID != post.ID {
			out = append(out, existing)
		}
	}
	return out
}

func replacePost(posts []models.Post, post models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	for i, existing := range posts {
		if existing.ID == post.ID {
			out[i] = post
		} else {
			out[i] = existing
		}
	}
	return out
}

func removePost(p PostsState, id string) PostsState {
	out := make([]models.Post, 0, len(p.Posts))
	for _, existing := range p.Posts {
		if existing.ID != id {
			out = append(out, existing)
		}
	}
	p.Posts = out
	if p.Post != nil && p.Post.ID == id {
		p.Post = nil
	}
	return p
}

func setLikes(p PostsState, change models.LikesChange) PostsState {
	likes := append([]string{}, change.Likes...)
	out := make([]models.Post, len(p.Posts))
	for i, existing := range p.Posts {
		if existing.ID == change.ID {
			existing.Likes = likes
		}
		out[i] = existing
	}
	p.Posts = out
	if p.Post != nil && p.Post.ID == change.ID {
		cp := *p.Post
		cp.Likes = likes
		p.Post = &cp
	}
	return p
}
