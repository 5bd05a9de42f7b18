package seed

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/validation"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written data set loaded from YAML:
//
//	users:
//	  - name: Ada
//	    email: ada@example.com
//	posts:
//	  - author: ada@example.com
//	    title: Hello
//	    content: First post
//	    tags: [intro]
//	    liked_by: [bob@example.com]
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
	Posts []FixturePost `yaml:"posts"`
}

// FixtureUser describes one account. Password defaults to DemoPassword.
type FixtureUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Bio      string `yaml:"bio"`
	Avatar   string `yaml:"avatar"`
}

// FixturePost references its author and likers by email.
type FixturePost struct {
	Author  string   `yaml:"author"`
	Title   string   `yaml:"title"`
	Content string   `yaml:"content"`
	Image   string   `yaml:"image"`
	Tags    []string `yaml:"tags"`
	LikedBy []string `yaml:"liked_by"`
	// AgeHours backdates the post.
	AgeHours int `yaml:"age_hours"`
}

// ParseFixture decodes and validates a fixture document.
func ParseFixture(r io.Reader) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fx.validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// LoadFixture reads a fixture from path.
func LoadFixture(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ParseFixture(f)
}

func (fx *Fixture) validate() error {
	emails := make(map[string]struct{}, len(fx.Users))
	for i := range fx.Users {
		u := &fx.Users[i]
		u.Email = strings.ToLower(strings.TrimSpace(u.Email))
		if err := validation.ValidateName(u.Name); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		if err := validation.ValidateEmail(u.Email); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		if _, dup := emails[u.Email]; dup {
			return fmt.Errorf("users[%d]: duplicate email %s", i, u.Email)
		}
		emails[u.Email] = struct{}{}
	}

	for i := range fx.Posts {
		p := &fx.Posts[i]
		p.Author = strings.ToLower(strings.TrimSpace(p.Author))
		if _, ok := emails[p.Author]; !ok {
			return fmt.Errorf("posts[%d]: unknown author %q", i, p.Author)
		}
		for _, check := range []error{
			validation.ValidateTitle(p.Title),
			validation.ValidateContent(p.Content),
			validation.ValidateImage(p.Image),
		} {
			if check != nil {
				return fmt.Errorf("posts[%d]: %w", i, check)
			}
		}
		for j, liker := range p.LikedBy {
			liker = strings.ToLower(strings.TrimSpace(liker))
			if _, ok := emails[liker]; !ok {
				return fmt.Errorf("posts[%d]: unknown liker %q", i, liker)
			}
			p.LikedBy[j] = liker
		}
	}
	return nil
}

// ApplyFixture writes every user, post and like in fx.
func (s *Seeder) ApplyFixture(ctx context.Context, fx *Fixture) (*Result, error) {
	res := &Result{}
	byEmail := make(map[string]*models.User, len(fx.Users))

	for _, fu := range fx.Users {
		password := fu.Password
		if password == "" {
			password = DemoPassword
		}
		hashed, err := s.factory.hashPassword(password)
		if err != nil {
			return nil, err
		}
		user, err := s.factory.CreateUser(ctx, func(u *models.User) {
			u.Name = strings.TrimSpace(fu.Name)
			u.Email = fu.Email
			u.Bio = fu.Bio
			u.Avatar = fu.Avatar
			u.Password = hashed
		})
		if err != nil {
			return nil, fmt.Errorf("create user %s: %w", fu.Email, err)
		}
		byEmail[user.Email] = user
		res.Users = append(res.Users, user)
	}

	now := time.Now()
	posts := make([]*models.Post, 0, len(fx.Posts))
	for _, fp := range fx.Posts {
		created := now.Add(-time.Duration(fp.AgeHours) * time.Hour)
		posts = append(posts, &models.Post{
			Title:     fp.Title,
			Content:   fp.Content,
			Image:     fp.Image,
			Tags:      models.NormalizeTags(fp.Tags),
			AuthorID:  byEmail[fp.Author].ID,
			CreatedAt: created,
			UpdatedAt: created,
		})
	}
	if err := s.factory.CreatePostsBatch(ctx, posts); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	res.Posts = posts

	var likes []models.Like
	for i, fp := range fx.Posts {
		seen := make(map[string]struct{}, len(fp.LikedBy))
		for j, email := range fp.LikedBy {
			if _, dup := seen[email]; dup {
				continue
			}
			seen[email] = struct{}{}
			likes = append(likes, models.Like{
				PostID:    posts[i].ID,
				UserID:    byEmail[email].ID,
				CreatedAt: posts[i].CreatedAt.Add(time.Duration(j+1) * time.Minute),
			})
		}
	}
	if err := s.factory.CreateLikesBatch(ctx, likes); err != nil {
		return nil, fmt.Errorf("create likes: %w", err)
	}
	res.Likes = len(likes)

	log.Printf("✓ fixture applied: %d users, %d posts, %d likes", len(res.Users), len(res.Posts), res.Likes)
	return res, nil
}
