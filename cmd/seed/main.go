// Command main runs the database seeder for Microblog.
package main

import (
	"flag"
	"log"
	"os"

	"microblog/internal/config"
	"microblog/internal/database"
	"microblog/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	postsPerUser := flag.Int("posts", 8, "Number of posts per user")
	followsPerUser := flag.Int("follows", 6, "Number of accounts each user follows")
	numMetrics := flag.Int("metrics", 25, "Number of registry metrics to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixture := flag.String("fixture", "", "Load a YAML fixture instead of generating random data")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible runs (0 picks one)")
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
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		NumUsers:       *numUsers,
		PostsPerUser:   *postsPerUser,
		FollowsPerUser: *followsPerUser,
		NumMetrics:     *numMetrics,
		RandomSeed:     *randomSeed,
	})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if *fixture != "" {
		log.Printf("Applying fixture: %s (ignoring other flags)\n", *fixture)
		f, err := os.Open(*fixture)
		if err != nil {
			log.Fatalf("❌ Opening fixture failed: %v", err)
		}
		defer func() { _ = f.Close() }()

		fx, err := seed.LoadFixture(f)
		if err != nil {
			log.Fatalf("❌ Reading fixture failed: %v", err)
		}
		if err := s.ApplyFixture(fx); err != nil {
			log.Fatalf("❌ Fixture seeding failed: %v", err)
		}
	} else {
		log.Printf("Target: %d users, %d posts and %d follows each, %d metrics, clean=%v\n",
			*numUsers, *postsPerUser, *followsPerUser, *numMetrics, *shouldClean)
		if _, err := s.Run(); err != nil {
			log.Fatalf("❌ Seeding failed: %v", err)
		}
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Println("📧 All generated users have the password: " + seed.DefaultPassword)
}
