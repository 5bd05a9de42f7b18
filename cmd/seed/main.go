// Command seed fills the database with demo users, posts and likes.
package main

import (
	"context"
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numPosts := flag.Int("posts", defaults.NumPosts, "Number of posts to create")
	maxLikes := flag.Int("max-likes", defaults.MaxLikes, "Most likes any one post receives")
	fixture := flag.String("fixture", "", "Load users and posts from a YAML fixture instead of generating them")
	dryRun := flag.Bool("dry-run", false, "Print what would be created without writing")
	shouldClean := flag.Bool("clean", false, "Remove existing users, posts and likes first")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, seed.Options{
		NumUsers: *numUsers,
		NumPosts: *numPosts,
		MaxLikes: *maxLikes,
		MaxDays:  defaults.MaxDays,
		DryRun:   *dryRun,
	})

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if *fixture != "" {
		fx, err := seed.LoadFixture(*fixture)
		if err != nil {
			log.Fatalf("❌ Fixture %s: %v", *fixture, err)
		}
		if _, err := s.ApplyFixture(ctx, fx); err != nil {
			log.Fatalf("❌ Fixture seeding failed: %v", err)
		}
	} else if _, err := s.Seed(ctx); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 Generated users have the password: %s", seed.DemoPassword)
}
