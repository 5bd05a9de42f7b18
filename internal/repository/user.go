package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id string, fields map[string]any) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db    *gorm.DB
	cache *cache.Cache
	log   *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation. c may be nil.
func NewUserRepository(db *gorm.DB, c *cache.Cache) UserRepository {
	return &userRepository{db: db, cache: c, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, models.NewNotFoundError("User", id)
	}

	var user models.User
	err := r.cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return r.first(ctx, &user, "id = ?", id)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail bypasses the cache: the cached form omits the password hash.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.first(ctx, &user, "email = ?", email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) first(ctx context.Context, dest *models.User, query string, arg any) error {
	if err := r.db.WithContext(ctx).Where(query, arg).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User", arg)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"user_id": user.ID})
	return nil
}

// UpdateProfile writes only the given columns and returns the fresh row.
func (r *userRepository) UpdateProfile(ctx context.Context, id string, fields map[string]any) (*models.User, error) {
	if !validID(id) {
		return nil, models.NewNotFoundError("User", id)
	}
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			r.log.LogError(ctx, res.Error, "update")
			return nil, models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, models.NewNotFoundError("User", id)
		}
		r.cache.InvalidateUser(ctx, id)
		if touchesAuthor(fields) {
			r.invalidateAuthoredPosts(ctx, id)
		}
		r.log.LogUpdate(ctx, map[string]any{"user_id": id, "fields": len(fields)})
	}

	var user models.User
	if err := r.first(ctx, &user, "id = ?", id); err != nil {
		return nil, err
	}
	return &user, nil
}

// touchesAuthor reports whether fields change the Author projection that
// cached posts embed.
func touchesAuthor(fields map[string]any) bool {
	for _, col := range []string{"name", "email", "avatar"} {
		if _, ok := fields[col]; ok {
			return true
		}
	}
	return false
}

func (r *userRepository) invalidateAuthoredPosts(ctx context.Context, authorID string) {
	var postIDs []string
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Pluck("id", &postIDs).Error
	if err != nil {
		r.log.LogError(ctx, err, "list authored posts")
	}
	r.cache.InvalidateAuthorPosts(ctx, postIDs)
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
