// Package service holds the business rules between handlers and repositories.
package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	postRepo  repository.PostRepository
	canModify Policy
}

type CreatePostInput struct {
	AuthorID string
	Title    string
	Content  string
	Image    string
	Tags     []string
}

// UpdatePostInput carries only the fields the caller sent; nil means untouched.
type UpdatePostInput struct {
	UserID  string
	PostID  string
	Title   *string
	Content *string
	Image   *string
	Tags    *[]string
}

// NewPostService wires the post rules. A nil policy falls back to CanModify.
func NewPostService(postRepo repository.PostRepository, policy Policy) *PostService {
	if policy == nil {
		policy = CanModify
	}
	return &PostService{postRepo: postRepo, canModify: policy}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	span, ctx := observability.NewSpan(ctx, "PostService.CreatePost", attribute.String("author.id", in.AuthorID))
	defer func() { span.End(err) }()

	if err := validatePostFields(in.Title, in.Content, in.Image); err != nil {
		return nil, err
	}

	created := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		Image:    in.Image,
		Tags:     models.NormalizeTags(in.Tags),
		AuthorID: in.AuthorID,
	}
	if err := s.postRepo.Create(ctx, created); err != nil {
		return nil, err
	}
	observability.PostsCreated.Inc()

	return s.postRepo.GetByID(ctx, created.ID)
}

func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.List(ctx)
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// UpdatePost checks existence, then ownership, then the merged field values.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (post *models.Post, err error) {
	span, ctx := observability.NewSpan(ctx, "PostService.UpdatePost", attribute.String("post.id", in.PostID))
	defer func() { span.End(err) }()

	post, err = s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !s.canModify(post, Identity{UserID: in.UserID}) {
		return nil, models.NewForbiddenError("User not authorized")
	}

	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.Image != nil {
		post.Image = *in.Image
	}
	if in.Tags != nil {
		post.Tags = models.NormalizeTags(*in.Tags)
	}
	if err := validatePostFields(post.Title, post.Content, post.Image); err != nil {
		return nil, err
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) DeletePost(ctx context.Context, postID, userID string) (err error) {
	span, ctx := observability.NewSpan(ctx, "PostService.DeletePost", attribute.String("post.id", postID))
	defer func() { span.End(err) }()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if !s.canModify(post, Identity{UserID: userID}) {
		return models.NewForbiddenError("User not authorized")
	}
	return s.postRepo.Delete(ctx, postID)
}

// LikePost adds userID to the likes set and returns the new set, newest first.
func (s *PostService) LikePost(ctx context.Context, postID, userID string) (likes []string, err error) {
	span, ctx := observability.NewSpan(ctx, "PostService.LikePost", attribute.String("post.id", postID))
	defer func() { span.End(err) }()

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	added, err := s.postRepo.Like(ctx, postID, userID)
	if err != nil {
		observability.LikeOperations.WithLabelValues("like", "error").Inc()
		return nil, err
	}
	if !added {
		observability.LikeOperations.WithLabelValues("like", "duplicate").Inc()
		return nil, models.NewAlreadyLikedError()
	}
	observability.LikeOperations.WithLabelValues("like", "ok").Inc()
	return s.postRepo.Likes(ctx, postID)
}

func (s *PostService) UnlikePost(ctx context.Context, postID, userID string) (likes []string, err error) {
	span, ctx := observability.NewSpan(ctx, "PostService.UnlikePost", attribute.String("post.id", postID))
	defer func() { span.End(err) }()

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	removed, err := s.postRepo.Unlike(ctx, postID, userID)
	if err != nil {
		observability.LikeOperations.WithLabelValues("unlike", "error").Inc()
		return nil, err
	}
	if !removed {
		observability.LikeOperations.WithLabelValues("unlike", "absent").Inc()
		return nil, models.NewNotLikedError()
	}
	observability.LikeOperations.WithLabelValues("unlike", "ok").Inc()
	return s.postRepo.Likes(ctx, postID)
}

func validatePostFields(title, content, image string) error {
	var errs validation.Errors
	errs.Check("title", validation.ValidateTitle(title))
	errs.Check("content", validation.ValidateContent(content))
	errs.Check("image", validation.ValidateImage(image))
	return errs.Err()
}
