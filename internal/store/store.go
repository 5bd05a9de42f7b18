package store

import (
	"context"
	"errors"
	"sync"

	"inkwell/internal/client"
	"inkwell/internal/models"
	"inkwell/internal/session"
)

// ErrNoToken rejects loadUser when nobody is signed in.
var ErrNoToken = errors.New("No token found")

// API is the subset of *client.Client the store calls.
type API interface {
	Register(ctx context.Context, in client.RegisterRequest) (*session.Session, error)
	Login(ctx context.Context, in client.LoginRequest) (*session.Session, error)
	Logout() error
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, in client.ProfileUpdate) (*models.User, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, in client.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, patch client.PostPatch) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	LikePost(ctx context.Context, id string) ([]string, error)
	UnlikePost(ctx context.Context, id string) ([]string, error)
}

var _ API = (*client.Client)(nil)

// Store serializes dispatches and notifies subscribers after each one.
type Store struct {
	api API

	mu    sync.Mutex
	state State

	// notifyMu is taken before mu is released so subscribers see states in
	// the order they were reduced.
	notifyMu sync.Mutex

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

// New returns a Store whose auth slice starts from saved, which may be nil.
func New(api API, saved *session.Session) *Store {
	st := State{UI: UIState{
		Loading: map[ActionKey]bool{},
		Ops:     map[ActionKey]AsyncState{},
	}}
	if saved.Valid() {
		st.Auth = AuthState{Token: saved.Token, User: saved.User, IsAuthenticated: true}
	}
	return &Store{api: api, state: st, subs: map[int]func(State){}}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every dispatch and returns a function
// that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Dispatch applies a and notifies subscribers with the resulting state.
// Subscribers must not dispatch.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	next := Reduce(s.state, a)
	s.state = next
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.subMu.Lock()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// ClearNotices drops shown notices.
func (s *Store) ClearNotices() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UI.Notices = nil
}

// ApplyFeedEvent merges a live feed event into the posts slice.
func (s *Store) ApplyFeedEvent(ev models.FeedEvent) {
	s.Dispatch(Action{Key: FeedEvent, Phase: Fulfilled, Payload: ev})
}

// run drives key through Pending and then Fulfilled or Rejected.
func (s *Store) run(ctx context.Context, key ActionKey, call func(context.Context) (any, error)) error {
	s.Dispatch(Action{Key: key, Phase: Pending})
	payload, err := call(ctx)
	if err != nil {
		s.Dispatch(Action{Key: key, Phase: Rejected, Err: err})
		return err
	}
	s.Dispatch(Action{Key: key, Phase: Fulfilled, Payload: payload})
	return nil
}

func (s *Store) Register(ctx context.Context, in client.RegisterRequest) error {
	return s.run(ctx, AuthRegister, func(ctx context.Context) (any, error) {
		return s.api.Register(ctx, in)
	})
}

func (s *Store) Login(ctx context.Context, in client.LoginRequest) error {
	return s.run(ctx, AuthLogin, func(ctx context.Context) (any, error) {
		return s.api.Login(ctx, in)
	})
}

// LoadUser refreshes the current user. Any failure signs the user out,
// including the persisted session.
func (s *Store) LoadUser(ctx context.Context) error {
	return s.run(ctx, AuthLoadUser, func(ctx context.Context) (any, error) {
		if s.State().Auth.Token == "" {
			return nil, ErrNoToken
		}
		user, err := s.api.Me(ctx)
		if err != nil {
			_ = s.api.Logout()
			return nil, err
		}
		return user, nil
	})
}

func (s *Store) UpdateProfile(ctx context.Context, in client.ProfileUpdate) error {
	return s.run(ctx, AuthUpdateProfile, func(ctx context.Context) (any, error) {
		return s.api.UpdateProfile(ctx, in)
	})
}

func (s *Store) Logout(ctx context.Context) error {
	return s.run(ctx, AuthLogout, func(context.Context) (any, error) {
		return nil, s.api.Logout()
	})
}

func (s *Store) GetPosts(ctx context.Context) error {
	return s.run(ctx, PostsGetAll, func(ctx context.Context) (any, error) {
		return s.api.ListPosts(ctx)
	})
}

func (s *Store) GetPostByID(ctx context.Context, id string) error {
	return s.run(ctx, PostsGetByID, func(ctx context.Context) (any, error) {
		return s.api.GetPost(ctx, id)
	})
}

func (s *Store) CreatePost(ctx context.Context, in client.PostInput) error {
	return s.run(ctx, PostsCreate, func(ctx context.Context) (any, error) {
		return s.api.CreatePost(ctx, in)
	})
}

func (s *Store) UpdatePost(ctx context.Context, id string, patch client.PostPatch) error {
	return s.run(ctx, PostsUpdate, func(ctx context.Context) (any, error) {
		return s.api.UpdatePost(ctx, id, patch)
	})
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.run(ctx, PostsDelete, func(ctx context.Context) (any, error) {
		if err := s.api.DeletePost(ctx, id); err != nil {
			return nil, err
		}
		return models.PostRef{ID: id}, nil
	})
}

func (s *Store) LikePost(ctx context.Context, id string) error {
	return s.run(ctx, PostsLike, func(ctx context.Context) (any, error) {
		likes, err := s.api.LikePost(ctx, id)
		if err != nil {
			return nil, err
		}
		return models.LikesChange{ID: id, Likes: likes}, nil
	})
}

func (s *Store) UnlikePost(ctx context.Context, id string) error {
	return s.run(ctx, PostsUnlike, func(ctx context.Context) (any, error) {
		likes, err := s.api.UnlikePost(ctx, id)
		if err != nil {
			return nil, err
		}
		return models.LikesChange{ID: id, Likes: likes}, nil
	})
}
