// Package seed creates demo data for the application database. It is
// intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every generated user.
const DemoPassword = "password123"

var demoTags = []string{
	"go", "databases", "devops", "frontend", "career", "testing", "security",
	"design", "writing", "productivity", "cloud", "linux", "open-source",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	hash string
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed))}
}

// hashPassword hashes once per factory; every generated user shares
// DemoPassword so one hash is enough.
func (f *Factory) hashPassword(password string) (string, error) {
	if password == DemoPassword && f.hash != "" {
		return f.hash, nil
	}
	cost := f.opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if password == DemoPassword {
		f.hash = string(hashed)
	}
	return string(hashed), nil
}

// BuildUser constructs a user with fake profile data without saving it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	user := &models.User{
		Name:   first + " " + last,
		Email:  strings.ToLower(fmt.Sprintf("%s.%s.%d@example.com", first, last, gofakeit.Number(100, 9999))),
		Bio:    gofakeit.Sentence(10),
		Avatar: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	hashed, err := f.hashPassword(DemoPassword)
	if err != nil {
		return nil, err
	}
	user.Password = hashed

	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(overrides...)
	if err != nil {
		return nil, err
	}

	if f.opts.DryRun {
		user.ID = uuid.NewString()
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Name, user.Email)
		return user, nil
	}
	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post by author with a realistic created_at spread.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	title := strings.TrimSuffix(gofakeit.Sentence(f.rng.Intn(6)+3), ".")
	if len([]rune(title)) > models.MaxTitleLength {
		title = string([]rune(title)[:models.MaxTitleLength])
	}

	post := &models.Post{
		Title:    title,
		Content:  gofakeit.Paragraph(f.rng.Intn(3)+1, 4, 12, "\n\n"),
		AuthorID: author.ID,
		Tags:     f.pickTags(),
	}
	if f.rng.Intn(3) == 0 {
		post.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/450", gofakeit.UUID())
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	post.CreatedAt = time.Now().Add(-back)
	post.UpdatedAt = post.CreatedAt

	for _, override := range overrides {
		override(post)
	}
	return post
}

func (f *Factory) pickTags() models.Tags {
	n := f.rng.Intn(4)
	picked := make([]string, 0, n)
	for i := 0; i < n; i++ {
		picked = append(picked, demoTags[f.rng.Intn(len(demoTags))])
	}
	return models.NormalizeTags(picked)
}

// CreatePostsBatch persists posts in one statement.
func (f *Factory) CreatePostsBatch(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			p.ID = uuid.NewString()
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.WithContext(ctx).Create(&posts).Error
}

// BuildLikes picks a random subset of users to like post. Each like lands
// after the post was written.
func (f *Factory) BuildLikes(post *models.Post, users []*models.User, max int) []models.Like {
	if max <= 0 || len(users) == 0 {
		return nil
	}
	n := f.rng.Intn(min(max, len(users)) + 1)
	perm := f.rng.Perm(len(users))[:n]

	since := time.Since(post.CreatedAt)
	likes := make([]models.Like, 0, n)
	for _, idx := range perm {
		at := post.CreatedAt
		if since > 0 {
			at = at.Add(time.Duration(f.rng.Int63n(int64(since))))
		}
		likes = append(likes, models.Like{PostID: post.ID, UserID: users[idx].ID, CreatedAt: at})
	}
	return likes
}

// CreateLikesBatch persists like rows in one statement.
func (f *Factory) CreateLikesBatch(ctx context.Context, likes []models.Like) error {
	if len(likes) == 0 {
		return nil
	}
	if f.opts.DryRun {
		log.Printf("[dry-run] CreateLikesBatch: %d likes (no DB write)", len(likes))
		return nil
	}
	return f.db.WithContext(ctx).Create(&likes).Error
}
