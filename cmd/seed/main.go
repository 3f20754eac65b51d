// Command main runs the database seeder for inkwell.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
	"inkwell/internal/session"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	storiesPerUser := flag.Int("stories", defaults.StoriesPerUser, "Stories per user")
	maxComments := flag.Int("comments", defaults.MaxCommentsPerStory, "Maximum comments per story")
	likeChance := flag.Int("like-chance", defaults.LikeChance, "Percent chance a user likes a story")
	shouldClean := flag.Bool("clean", defaults.ShouldClean, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Store plain-text passwords (development only)")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	seeder := seed.NewSeeder(db, seed.Options{
		NumUsers:            *numUsers,
		StoriesPerUser:      *storiesPerUser,
		MaxCommentsPerStory: *maxComments,
		LikeChance:          *likeChance,
		ShouldClean:         *shouldClean,
		SkipBcrypt:          *fast,
		RandSeed:            *randSeed,
	})

	res, err := seeder.Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	sessions := session.NewManager(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	fmt.Printf("Seeded %d users, %d stories, %d comments, %d likes\n",
		len(res.Users), res.Stories, res.Comments, res.Likes)
	fmt.Printf("All users have the password: %s\n", seed.DemoPassword)
	fmt.Printf("Session tokens below are valid for %s\n\n", sessions.TTL())
	for _, u := range res.Users {
		token, err := sessions.Issue(u.ID)
		if err != nil {
			log.Fatalf("Issue session for %s: %v", u.Username, err)
		}
		fmt.Printf("%-24s Authorization: Bearer %s\n", u.Username, token)
	}
}
