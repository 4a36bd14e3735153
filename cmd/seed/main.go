// Command seed populates the database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"relay/internal/config"
	"relay/internal/database"
	"relay/internal/seed"
)

func main() {
	users := flag.Int("users", 50, "number of users to create")
	posts := flag.Int("posts", 200, "number of posts to create")
	comments := flag.Int("comments", 2, "comments per post")
	clean := flag.Bool("clean", true, "clear existing data before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "use a placeholder password hash (faster, accounts cannot log in)")
	preset := flag.String("preset", "", "path to a preset YAML file (overrides count flags)")
	randomSeed := flag.Int64("seed", 0, "random seed, 0 means time-based")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	seeder := seed.NewSeeder(db, seed.Options{
		Users:           *users,
		Posts:           *posts,
		CommentsPerPost: *comments,
		Clean:           *clean,
		SkipBcrypt:      *skipBcrypt,
		RandomSeed:      *randomSeed,
	})

	ctx := context.Background()
	if *preset != "" {
		p, err := seed.LoadPreset(*preset)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
		log.Printf("Seeding from preset %q", p.Name)
		if err := seeder.Apply(ctx, p); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	} else {
		log.Printf("Seeding %d users, %d posts, clean=%v", *users, *posts, *clean)
		if err := seeder.Run(ctx); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	if !*skipBcrypt {
		log.Printf("Done. Every seeded account uses the password %q", seed.DefaultPassword)
	} else {
		log.Println("Done.")
	}
}
