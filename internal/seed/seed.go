package seed

import (
	"context"
	"fmt"
	"log"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers int
	NumPosts int
	// MaxLikes caps how many users like any one post.
	MaxLikes int
	// MaxDays spreads post timestamps over this many days back.
	MaxDays int
	DryRun  bool
	// BcryptCost overrides bcrypt.DefaultCost; tests use bcrypt.MinCost.
	BcryptCost int
	// RandSeed makes generated data reproducible when non-zero.
	RandSeed int64
}

// DefaultOptions is what `cmd/seed` uses without flags.
func DefaultOptions() Options {
	return Options{NumUsers: 10, NumPosts: 40, MaxLikes: 6, MaxDays: 90}
}

// Result counts what a seeding run created.
type Result struct {
	Users []*models.User
	Posts []*models.Post
	Likes int
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder returns a Seeder writing through db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// Factory exposes the underlying entity factory.
func (s *Seeder) Factory() *Factory { return s.factory }

// Seed creates users, then posts spread across them, then likes.
func (s *Seeder) Seed(ctx context.Context) (*Result, error) {
	log.Printf("🌱 Seeding %d users and %d posts (dry-run=%v)", s.opts.NumUsers, s.opts.NumPosts, s.opts.DryRun)

	res := &Result{}
	for i := 0; i < s.opts.NumUsers; i++ {
		user, err := s.factory.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create users: %w", err)
		}
		res.Users = append(res.Users, user)
	}
	log.Printf("✓ %d users created", len(res.Users))

	if len(res.Users) == 0 || s.opts.NumPosts <= 0 {
		return res, nil
	}

	posts := make([]*models.Post, 0, s.opts.NumPosts)
	for i := 0; i < s.opts.NumPosts; i++ {
		author := res.Users[s.factory.rng.Intn(len(res.Users))]
		posts = append(posts, s.factory.BuildPost(author))
	}
	if err := s.factory.CreatePostsBatch(ctx, posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	res.Posts = posts
	log.Printf("✓ %d posts created", len(posts))

	var likes []models.Like
	for _, p := range posts {
		likes = append(likes, s.factory.BuildLikes(p, res.Users, s.opts.MaxLikes)...)
	}
	if err := s.factory.CreateLikesBatch(ctx, likes); err != nil {
		return nil, fmt.Errorf("failed to create likes: %w", err)
	}
	res.Likes = len(likes)
	log.Printf("✓ %d likes created", res.Likes)

	return res, nil
}

// ClearAll removes likes, posts and users, in that order.
func (s *Seeder) ClearAll(ctx context.Context) error {
	if s.opts.DryRun {
		log.Println("[dry-run] ClearAll: skipped")
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Like{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}
		return nil
	})
}

// IsEmpty reports whether no user exists yet.
func IsEmpty(ctx context.Context, db *gorm.DB) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return false, err
	}
	return n == 0, nil
}
