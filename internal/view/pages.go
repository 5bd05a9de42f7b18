package view

import (
	"context"
	"errors"
	"fmt"

	"inkwell/internal/client"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

var (
	// ErrInvalidForm is returned after the field errors have been rendered.
	ErrInvalidForm = errors.New("please correct the errors above")
	// ErrSignedOut is returned by pages that require a signed-in user.
	ErrSignedOut = errors.New("please log in first")
	// ErrNotAuthor is returned when editing or deleting someone else's post.
	ErrNotAuthor = errors.New("User not authorized")
)

// Pages drives the store for each screen and renders the result. It never
// calls the API itself.
type Pages struct {
	store *store.Store
	r     *Renderer
}

func NewPages(s *store.Store, r *Renderer) *Pages {
	return &Pages{store: s, r: r}
}

func (p *Pages) viewerID() string {
	if u := p.store.State().Auth.User; u != nil {
		return u.ID
	}
	return ""
}

func (p *Pages) requireAuth() error {
	if !p.store.State().Auth.IsAuthenticated {
		return ErrSignedOut
	}
	return nil
}

// done flushes notices raised by a failed action and passes err through.
func (p *Pages) done(err error) error {
	if err != nil {
		p.r.Status(p.store.State())
		p.store.ClearNotices()
	}
	return err
}

func (p *Pages) invalid(errs FieldErrors) error {
	p.r.FieldErrors(errs)
	return ErrInvalidForm
}

func (p *Pages) Home(ctx context.Context) error {
	if err := p.store.GetPosts(ctx); err != nil {
		return p.done(err)
	}
	p.r.PostList(p.store.State().Posts.Posts, p.viewerID())
	return nil
}

func (p *Pages) Post(ctx context.Context, id string) error {
	if err := p.store.GetPostByID(ctx, id); err != nil {
		return p.done(err)
	}
	if post := p.store.State().Posts.Post; post != nil {
		p.r.PostDetail(*post, p.viewerID())
	}
	return nil
}

// Dashboard loads the feed and shows only the viewer's posts.
func (p *Pages) Dashboard(ctx context.Context) error {
	if err := p.requireAuth(); err != nil {
		return err
	}
	if err := p.store.GetPosts(ctx); err != nil {
		return p.done(err)
	}
	p.r.Dashboard(p.store.State())
	return nil
}

func (p *Pages) Profile(ctx context.Context) error {
	if err := p.store.LoadUser(ctx); err != nil {
		return p.done(err)
	}
	p.r.Profile(p.store.State().Auth.User)
	return nil
}

func (p *Pages) EditProfile(ctx context.Context, form ProfileForm) error {
	if err := p.requireAuth(); err != nil {
		return err
	}
	if errs := form.Validate(); !errs.OK() {
		return p.invalid(errs)
	}
	if err := p.store.UpdateProfile(ctx, form.Update()); err != nil {
		return p.done(err)
	}
	p.r.printf("Profile updated\n")
	p.r.Profile(p.store.State().Auth.User)
	return nil
}

func (p *Pages) Login(ctx context.Context, form LoginForm) error {
	if errs := form.Validate(); !errs.OK() {
		return p.invalid(errs)
	}
	if err := p.store.Login(ctx, form.Request()); err != nil {
		return p.done(err)
	}
	p.r.printf("Logged in as %s\n", p.store.State().Auth.User.Name)
	return nil
}

func (p *Pages) Register(ctx context.Context, form RegisterForm) error {
	if errs := form.Validate(); !errs.OK() {
		return p.invalid(errs)
	}
	if err := p.store.Register(ctx, form.Request()); err != nil {
		return p.done(err)
	}
	p.r.printf("Welcome %s\n", p.store.State().Auth.User.Name)
	return nil
}

func (p *Pages) Logout(ctx context.Context) error {
	if err := p.store.Logout(ctx); err != nil {
		return p.done(err)
	}
	p.r.printf("Logged out\n")
	return nil
}

func (p *Pages) CreatePost(ctx context.Context, form PostForm) error {
	if err := p.requireAuth(); err != nil {
		return err
	}
	if errs := form.Validate(); !errs.OK() {
		return p.invalid(errs)
	}
	if err := p.store.CreatePost(ctx, form.Input()); err != nil {
		return p.done(err)
	}
	if created, ok := p.store.State().Op(store.PostsCreate).Data.(*models.Post); ok && created != nil {
		p.r.printf("Post created\n\n")
		p.r.PostDetail(*created, p.viewerID())
	}
	return nil
}

// EditPost loads id, lets edit change the form and sends only the fields that
// changed. Only the author may edit.
func (p *Pages) EditPost(ctx context.Context, id string, edit func(*PostForm)) error {
	orig, err := p.ownPost(ctx, id)
	if err != nil {
		return err
	}
	form := EditForm(orig)
	edit(form)
	if errs := form.Validate(); !errs.OK() {
		return p.invalid(errs)
	}
	patch := form.Patch(orig)
	if patch == (client.PostPatch{}) {
		p.r.printf("Nothing to update\n")
		return nil
	}
	if err := p.store.UpdatePost(ctx, id, patch); err != nil {
		return p.done(err)
	}
	p.r.printf("Post updated\n\n")
	p.r.PostDetail(*p.store.State().Posts.Post, p.viewerID())
	return nil
}

func (p *Pages) DeletePost(ctx context.Context, id string) error {
	if _, err := p.ownPost(ctx, id); err != nil {
		return err
	}
	if err := p.store.DeletePost(ctx, id); err != nil {
		return p.done(err)
	}
	p.r.printf("Post removed\n")
	return nil
}

func (p *Pages) ownPost(ctx context.Context, id string) (models.Post, error) {
	if err := p.requireAuth(); err != nil {
		return models.Post{}, err
	}
	if err := p.store.GetPostByID(ctx, id); err != nil {
		return models.Post{}, p.done(err)
	}
	post := p.store.State().Posts.Post
	if post == nil {
		return models.Post{}, fmt.Errorf("post %s not loaded", id)
	}
	if post.AuthorID != p.viewerID() {
		return models.Post{}, ErrNotAuthor
	}
	return *post, nil
}

func (p *Pages) Like(ctx context.Context, id string) error {
	if err := p.requireAuth(); err != nil {
		return err
	}
	if err := p.store.LikePost(ctx, id); err != nil {
		return p.done(err)
	}
	p.printLikes(store.PostsLike)
	return nil
}

func (p *Pages) Unlike(ctx context.Context, id string) error {
	if err := p.requireAuth(); err != nil {
		return err
	}
	if err := p.store.UnlikePost(ctx, id); err != nil {
		return p.done(err)
	}
	p.printLikes(store.PostsUnlike)
	return nil
}

// ToggleLike likes the post unless the viewer already does, in which case
// it unlikes it. The post is loaded first when it is not in the state.
func (p *Pages) ToggleLike(ctx context.Context, id string) error {
	if err := p.requireAuth(); err != nil {
		return err
	}
	post, ok := p.store.State().FindPost(id)
	if !ok {
		if err := p.store.GetPostByID(ctx, id); err != nil {
			return p.done(err)
		}
		post, _ = p.store.State().FindPost(id)
	}
	if post.LikedBy(p.viewerID()) {
		return p.Unlike(ctx, id)
	}
	return p.Like(ctx, id)
}

func (p *Pages) printLikes(key store.ActionKey) {
	st := p.store.State()
	change, ok := st.Op(key).Data.(models.LikesChange)
	if !ok {
		return
	}
	label := change.ID
	if post, found := st.FindPost(change.ID); found {
		label = post.Title
	}
	p.r.printf("%s: %s\n", label, likeLabel(len(change.Likes)))
}
