// Command seed populates the database with sample users, communities,
// memberships, and threads for development.
package main

import (
	"flag"
	"log"

	"tapestry/internal/config"
	"tapestry/internal/database"
	"tapestry/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numCommunities := flag.Int("communities", 10, "Number of communities to create")
	numThreads := flag.Int("threads", 200, "Number of top-level threads to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d communities, %d threads, clean=%v\n",
		*numUsers, *numCommunities, *numThreads, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	s := seed.NewSeeder(db)
	if err := s.Run(seed.Options{
		NumUsers:       *numUsers,
		NumCommunities: *numCommunities,
		NumThreads:     *numThreads,
		ShouldClean:    *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
