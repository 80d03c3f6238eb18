// Command seed fills the database with demo groups, users, posts, comments and follows.
package main

import (
	"context"
	"flag"
	"log"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "Number of users to create")
	flag.IntVar(&opts.PostsPerUser, "posts", opts.PostsPerUser, "Posts per user")
	flag.IntVar(&opts.CommentsPerPost, "comments", opts.CommentsPerPost, "Comments per post")
	flag.IntVar(&opts.FollowsPerUser, "follows", opts.FollowsPerUser, "Follow attempts per user")
	flag.IntVar(&opts.MaxDays, "days", opts.MaxDays, "Spread publication dates over this many past days")
	flag.Int64Var(&opts.Seed, "seed", 0, "Faker seed (0 picks one from the clock)")
	flag.StringVar(&opts.Password, "password", seed.DefaultPassword, "Password for every seeded user")
	flag.BoolVar(&opts.Clean, "clean", false, "Delete existing data before seeding")
	groupsFile := flag.String("groups", "", "YAML group fixtures (built-in groups when empty)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	fixtures := seed.DefaultGroups
	if *groupsFile != "" {
		if fixtures, err = seed.LoadGroupsFile(*groupsFile); err != nil {
			log.Fatalf("Failed to load group fixtures: %v", err)
		}
	}

	sum, err := seed.Run(context.Background(), db, opts, fixtures)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d groups, %d users, %d posts, %d comments, %d follows",
		sum.Groups, sum.Users, sum.Posts, sum.Comments, sum.Follows)
	log.Printf("All seeded users have the password: %s", opts.Password)
}
