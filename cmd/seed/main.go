// Command main runs the database seeder for Recipebox.
package main

import (
	"flag"
	"log"

	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	numRecipes := flag.Int("recipes", 40, "Number of recipes to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	seedValue := flag.Int64("seed", 0, "Random seed (0 picks one)")
	fixture := flag.String("fixture", "", "Load users and recipes from a YAML fixture instead")
	flag.Parse()

	log.Println("Database Seeder")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	s := seed.NewSeeder(db)

	if *fixture != "" {
		fx, err := seed.LoadFixture(*fixture)
		if err != nil {
			log.Fatalf("Failed to load fixture: %v", err)
		}
		if *shouldClean {
			if err := s.ClearAll(); err != nil {
				log.Fatalf("Cleanup failed: %v", err)
			}
		}
		res, err := s.ApplyFixture(fx)
		if err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
		log.Printf("Loaded %d users and %d recipes from %s", res.Users, res.Recipes, *fixture)
		return
	}

	log.Printf("Target: %d users, %d recipes, clean=%v", *numUsers, *numRecipes, *shouldClean)
	res, err := s.Run(seed.Options{
		NumUsers:    *numUsers,
		NumRecipes:  *numRecipes,
		ShouldClean: *shouldClean,
		Seed:        *seedValue,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users and %d recipes", res.Users, res.Recipes)
	log.Printf("All generated users have the password: %s", seed.DefaultPassword)
}
